package cmd

import (
	"io"

	"github.com/spf13/cobra"

	v1 "github.com/hawkops/hawkops/api/v1"
	"github.com/hawkops/hawkops/pkg/hawkops/output"
)

func NewTeamCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "team",
		Aliases: []string{"teams"},
		Short:   "Manage teams",
	}
	cmd.AddCommand(
		newTeamListCommand(),
		newTeamGetCommand(),
		newTeamCreateCommand(),
	)
	return cmd
}

func newTeamListCommand() *cobra.Command {
	var orgID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List teams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			printer, err := rt.Printer()
			if err != nil {
				return err
			}
			apiClient, err := buildClient(rt)
			if err != nil {
				return err
			}
			teams, err := apiClient.Teams().List(cmd.Context(), rt.orgID(orgID))
			if err != nil {
				return err
			}
			return printer.Write(rt.Writer(), teams, func(w io.Writer) {
				output.WriteTeamTable(w, teams)
			})
		},
	}
	cmd.Flags().StringVar(&orgID, "org-id", "", "Organization ID")
	return cmd
}

func newTeamGetCommand() *cobra.Command {
	var teamID string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show a team",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			printer, err := rt.Printer()
			if err != nil {
				return err
			}
			apiClient, err := buildClient(rt)
			if err != nil {
				return err
			}
			team, err := apiClient.Teams().Get(cmd.Context(), teamID)
			if err != nil {
				return err
			}
			return printer.Write(rt.Writer(), team, func(w io.Writer) {
				output.WriteTeamTable(w, []v1.Team{*team})
			})
		},
	}
	cmd.Flags().StringVar(&teamID, "team-id", "", "Team ID (required)")
	return cmd
}

func newTeamCreateCommand() *cobra.Command {
	var (
		orgID string
		name  string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a team",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			printer, err := rt.Printer()
			if err != nil {
				return err
			}
			apiClient, err := buildClient(rt)
			if err != nil {
				return err
			}
			team, err := apiClient.Teams().Create(cmd.Context(), rt.orgID(orgID), name)
			if err != nil {
				return err
			}
			return printer.Write(rt.Writer(), team, func(w io.Writer) {
				output.WriteTeamTable(w, []v1.Team{*team})
			})
		},
	}
	cmd.Flags().StringVar(&orgID, "org-id", "", "Organization ID")
	cmd.Flags().StringVar(&name, "name", "", "Team name (required)")
	return cmd
}

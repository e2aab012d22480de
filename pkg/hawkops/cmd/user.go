package cmd

import (
	"io"

	"github.com/spf13/cobra"

	v1 "github.com/hawkops/hawkops/api/v1"
	"github.com/hawkops/hawkops/pkg/hawkops/output"
)

func NewUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "user",
		Aliases: []string{"users"},
		Short:   "Inspect users",
	}
	cmd.AddCommand(newUserListCommand(), newUserGetCommand())
	return cmd
}

func newUserListCommand() *cobra.Command {
	var orgID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
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
			users, err := apiClient.Users().List(cmd.Context(), rt.orgID(orgID))
			if err != nil {
				return err
			}
			return printer.Write(rt.Writer(), users, func(w io.Writer) {
				output.WriteUserTable(w, users)
			})
		},
	}
	cmd.Flags().StringVar(&orgID, "org-id", "", "Organization ID")
	return cmd
}

func newUserGetCommand() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show a user",
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
			user, err := apiClient.Users().Get(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return printer.Write(rt.Writer(), user, func(w io.Writer) {
				output.WriteUserTable(w, []v1.User{*user})
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user-id", "", "User ID (required)")
	return cmd
}

package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/hawkops/hawkops/pkg/hawkops/output"
)

func NewAppsCommand() *cobra.Command {
	var orgID string

	cmd := &cobra.Command{
		Use:     "apps",
		Aliases: []string{"applications"},
		Short:   "List applications",
		Long:    "Lists the applications visible to the caller. With --org-id, or api.org_id in the config, only that organization's applications are listed.",
		Args:    cobra.NoArgs,
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
			apps, err := apiClient.Applications().List(cmd.Context(), rt.orgID(orgID))
			if err != nil {
				return err
			}
			return printer.Write(rt.Writer(), apps, func(w io.Writer) {
				output.WriteApplicationTable(w, apps)
			})
		},
	}
	cmd.Flags().StringVar(&orgID, "org-id", "", "Organization ID")
	return cmd
}

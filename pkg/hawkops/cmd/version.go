package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hawkops/hawkops/pkg/hawkops/output"
	"github.com/hawkops/hawkops/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show hawkops version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.GetBuildInfo()

			// The runtime is missing when the command runs outside the root tree.
			writer := cmd.OutOrStdout()
			printer := output.Printer{Format: output.FormatTable}
			if rt, err := getRuntime(cmd); err == nil {
				writer = rt.Writer()
				if printer, err = rt.Printer(); err != nil {
					return err
				}
			}

			return printer.Write(writer, info, func(w io.Writer) {
				_, _ = fmt.Fprintf(w, "%s %s (commit: %s, built: %s)\n", info.Name, info.Version, info.GitCommit, info.BuildDate)
			})
		},
	}
}

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hawkops/hawkops/pkg/hawkops/client"
	"github.com/hawkops/hawkops/pkg/hawkops/output"
)

func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "scan",
		Aliases: []string{"scans"},
		Short:   "Inspect and delete scans",
	}
	cmd.AddCommand(
		newScanListCommand(),
		newScanGetCommand(),
		newScanDeleteCommand(),
	)
	return cmd
}

func newScanListCommand() *cobra.Command {
	var (
		appID string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent scans of an application",
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
			scans, err := apiClient.Scans().List(cmd.Context(), appID, limit)
			if err != nil {
				return err
			}
			return printer.Write(rt.Writer(), scans, func(w io.Writer) {
				output.WriteScanTable(w, scans)
			})
		},
	}
	cmd.Flags().StringVar(&appID, "app-id", "", "Application ID (required)")
	cmd.Flags().IntVar(&limit, "limit", client.DefaultScanLimit, "Maximum number of scans to return")
	return cmd
}

func newScanGetCommand() *cobra.Command {
	var scanID string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show a scan",
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
			scan, err := apiClient.Scans().Get(cmd.Context(), scanID)
			if err != nil {
				return err
			}
			return printer.Write(rt.Writer(), scan, func(w io.Writer) {
				output.WriteScanDetail(w, scan)
			})
		},
	}
	cmd.Flags().StringVar(&scanID, "scan-id", "", "Scan ID (required)")
	return cmd
}

func newScanDeleteCommand() *cobra.Command {
	var scanID string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a scan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			apiClient, err := buildClient(rt)
			if err != nil {
				return err
			}
			if err := apiClient.Scans().Delete(cmd.Context(), scanID); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Scan %s deleted successfully\n", scanID)
			return nil
		},
	}
	cmd.Flags().StringVar(&scanID, "scan-id", "", "Scan ID (required)")
	return cmd
}

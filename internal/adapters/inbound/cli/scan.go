package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkraft/encmend/internal/adapters/outbound/tui"
)

func newScanCmd() *cobra.Command {
	var (
		jsonOutput bool
		ciMode     bool
	)

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Report the encoding state of every XML file",
		Long:  "Detect declared and actual encodings, byte order marks and suspicious characters. Nothing is modified.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, args)
			if err != nil {
				return err
			}

			report, err := a.scan.Scan(cmd.Context(), a.root(), a.cfg.Extension, nil, a.backupDir())
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}

			if jsonOutput {
				if err := renderJSON(cmd, report); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderScanReport(report))
			}

			if ciMode && report.Problems > 0 {
				return fmt.Errorf("%d of %d files have encoding problems", report.Problems, report.Total)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output report as JSON")
	cmd.Flags().BoolVar(&ciMode, "ci", false, "CI mode: exit 1 if any file has problems")

	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkraft/encmend/internal/adapters/outbound/tui"
)

func newValidateCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "validate [dir]",
		Short: "Check that every XML file is well-formed",
		Long:  "Parse every file with its declared encoding and report the first structural error per file.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, args)
			if err != nil {
				return err
			}

			report, err := a.validate.Validate(cmd.Context(), a.root(), a.cfg.Extension, a.backupDir())
			if err != nil {
				return fmt.Errorf("validate failed: %w", err)
			}

			if jsonOutput {
				if err := renderJSON(cmd, report); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderValidationReport(report))
			}

			if report.Failed > 0 {
				return fmt.Errorf("%d of %d files are not well-formed", report.Failed, len(report.Results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output report as JSON")

	return cmd
}

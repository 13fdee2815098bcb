package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkraft/encmend/internal/adapters/outbound/progress"
	"github.com/openkraft/encmend/internal/adapters/outbound/tui"
	"github.com/openkraft/encmend/internal/application"
	"github.com/openkraft/encmend/internal/domain"
)

func newRunCmd() *cobra.Command {
	var (
		dryRun       bool
		jsonOutput   bool
		showProgress bool
		showHistory  bool
		noContextual bool
	)

	cmd := &cobra.Command{
		Use:   "run [dir]",
		Short: "Run the full remediation pipeline",
		Long: "Scan, back up, fix declarations, repair replacement characters and validate every file that needs it. " +
			"Exits non-zero when any file still needs manual attention.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			if noContextual {
				cfg.Contextual.Enabled = false
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}

			if showHistory {
				entries, err := a.history.Load(a.backupDir())
				if err != nil {
					return fmt.Errorf("loading history: %w", err)
				}
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(entries))
				return nil
			}

			opts := application.RunOptions{
				Root:      a.root(),
				Extension: a.cfg.Extension,
				BackupDir: a.backupDir(),
				DryRun:    dryRun,
			}
			if showProgress {
				opts.Progress = progress.New(cmd.ErrOrStderr())
			}

			report, err := a.pipeline.Run(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("run failed: %w", err)
			}

			if jsonOutput {
				if err := renderJSON(cmd, report); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderRunReport(report))
			}

			if !report.Success {
				return fmt.Errorf("%w: %d files", domain.ErrManualAttention, len(report.ManualAttention))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute every stage without writing files, backups or history")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output report as JSON")
	cmd.Flags().BoolVar(&showProgress, "progress", false, "Show per-stage progress bars on stderr")
	cmd.Flags().BoolVar(&showHistory, "history", false, "Show past runs instead of running")
	cmd.Flags().BoolVar(&noContextual, "no-contextual", false, "Skip the contextual repair pass even if configured")
	cmd.Flags().String("backup-dir", "", "Backup directory (default: <dir>-backup)")

	return cmd
}

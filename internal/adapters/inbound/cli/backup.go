package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkraft/encmend/internal/adapters/outbound/tui"
	"github.com/openkraft/encmend/internal/domain"
)

func newBackupCmd() *cobra.Command {
	var (
		jsonOutput bool
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "backup [dir]",
		Short: "Copy files that need repair into the backup directory",
		Long:  "Scan the directory and write a verified, timestamped copy of every file the pipeline would touch, plus a JSON manifest for restore.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, args)
			if err != nil {
				return err
			}

			scan, err := a.scan.Scan(cmd.Context(), a.root(), a.cfg.Extension, nil, a.backupDir())
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
			issues := scan.Selected()
			if all {
				issues = scan.Issues
			}
			paths := make([]string, 0, len(issues))
			for _, i := range issues {
				paths = append(paths, i.Path)
			}

			m, manifestPath, err := a.backups.Backup(cmd.Context(), "", a.root(), a.backupDir(), paths, nil)
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}

			if jsonOutput {
				if err := renderJSON(cmd, m); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderBackupRecords(m, manifestPath))
			}

			if failed := len(m.Records) - len(m.Verified()); failed > 0 {
				return fmt.Errorf("%w: %d of %d files", domain.ErrNoVerifiedBackup, failed, len(m.Records))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output manifest as JSON")
	cmd.Flags().BoolVar(&all, "all", false, "Back up every scanned file, not only the ones needing repair")
	cmd.Flags().String("backup-dir", "", "Backup directory (default: <dir>-backup)")

	return cmd
}

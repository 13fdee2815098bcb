package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/openkraft/encmend/internal/adapters/outbound/tui"
)

func newRestoreCmd() *cobra.Command {
	var (
		jsonOutput bool
		files      []string
	)

	cmd := &cobra.Command{
		Use:   "restore [manifest]",
		Short: "Copy backed-up files back over their originals",
		Long: "Restore the files recorded in a backup manifest. Without an argument the newest manifest in the " +
			"configured backup directory is used. Backups whose checksum no longer matches are refused.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, nil)
			if err != nil {
				return err
			}

			manifestPath := ""
			if len(args) > 0 {
				manifestPath = args[0]
			} else {
				if manifestPath, err = a.manifests.Latest(a.backupDir()); err != nil {
					return fmt.Errorf("finding manifest: %w", err)
				}
				if manifestPath == "" {
					return fmt.Errorf("no backup manifest in %s", a.backupDir())
				}
			}

			only := make([]string, 0, len(files))
			for _, f := range files {
				abs, err := filepath.Abs(f)
				if err != nil {
					return fmt.Errorf("resolving path: %w", err)
				}
				only = append(only, abs)
			}

			results, err := a.backups.Restore(cmd.Context(), manifestPath, only...)
			if err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}

			if jsonOutput {
				if err := renderJSON(cmd, results); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderRestoreResults(results))
			}

			failed := 0
			for _, r := range results {
				if !r.Success {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files could not be restored", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().StringSliceVar(&files, "file", nil, "Restore only these original paths (repeatable)")
	cmd.Flags().String("backup-dir", "", "Backup directory to search for the newest manifest")

	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkraft/encmend/internal/adapters/outbound/tui"
	"github.com/openkraft/encmend/internal/application"
	"github.com/openkraft/encmend/internal/domain"
)

func newFixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Run a single repair stage",
		Long:  "Apply one repair stage to every file that needs it. Files are backed up first unless --dry-run is set.",
	}
	cmd.AddCommand(newFixDeclarationCmd())
	cmd.AddCommand(newFixReplacementCmd())
	return cmd
}

type fixFlags struct {
	dryRun     bool
	jsonOutput bool
}

func (f *fixFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Compute repairs without writing files or backups")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().String("backup-dir", "", "Backup directory (default: <dir>-backup)")
}

func newFixDeclarationCmd() *cobra.Command {
	var flags fixFlags

	cmd := &cobra.Command{
		Use:   "declaration [dir]",
		Short: "Re-encode to UTF-8, strip BOMs and rewrite XML declarations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFix(cmd, args, []domain.Strategy{domain.StrategyDeclaration}, flags)
		},
	}
	flags.register(cmd)

	return cmd
}

func newFixReplacementCmd() *cobra.Command {
	var (
		flags fixFlags
		mode  string
	)

	cmd := &cobra.Command{
		Use:   "replacement [dir]",
		Short: "Repair U+FFFD replacement characters",
		Long: "Repair U+FFFD replacement characters in UTF-8 files. The dictionary mode applies the configured " +
			"dictionary; the contextual mode fills statement and comment text with the configured default character.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategies, err := replacementStrategies(mode)
			if err != nil {
				return err
			}
			return runFix(cmd, args, strategies, flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&mode, "mode", "dictionary", "Repair mode: dictionary, contextual or all")

	return cmd
}

func replacementStrategies(mode string) ([]domain.Strategy, error) {
	if mode == "all" {
		return []domain.Strategy{domain.StrategyDictionary, domain.StrategyContextual}, nil
	}
	s, err := domain.ParseStrategy(mode)
	if err != nil {
		return nil, err
	}
	if s == domain.StrategyDeclaration {
		return nil, fmt.Errorf("%w: %q is not a replacement mode, use \"fix declaration\"", domain.ErrUnknownStrategy, mode)
	}
	return []domain.Strategy{s}, nil
}

func runFix(cmd *cobra.Command, args []string, strategies []domain.Strategy, flags fixFlags) error {
	a, err := loadApp(cmd, args)
	if err != nil {
		return err
	}

	scan, err := a.scan.Scan(cmd.Context(), a.root(), a.cfg.Extension, nil, a.backupDir())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	opts := domain.FixOptions{DryRun: flags.dryRun, Strategies: strategies}
	report, err := a.fixes.Run(cmd.Context(), a.root(), a.backupDir(), application.Candidates(scan.Issues, strategies), opts)
	if err != nil {
		return fmt.Errorf("fix failed: %w", err)
	}

	if flags.jsonOutput {
		if err := renderJSON(cmd, report); err != nil {
			return err
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderFixResults(report.Results, report.DryRun))
		if report.ManifestPath != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "\nBackup manifest: %s\n", report.ManifestPath)
		}
	}

	if n := report.NeedsReview(); n > 0 {
		return fmt.Errorf("%w: %d of %d files", domain.ErrManualAttention, n, len(report.Results))
	}
	return nil
}

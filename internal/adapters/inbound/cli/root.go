package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	cmd := &cobra.Command{
		Use:   "encmend",
		Short: "Find and repair broken encodings in XML resource files",
		Long: "encmend scans a directory of XML resource files, backs up the ones that need work, " +
			"normalises their declarations to UTF-8, repairs U+FFFD replacement characters and validates the result.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd.ErrOrStderr(), logLevel, logFormat)
		},
	}
	cmd.PersistentFlags().String("config", "", "Config file, or directory holding .encmend.yaml (default: current directory)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format: console or json")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newBackupCmd())
	cmd.AddCommand(newFixCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newRestoreCmd())
	cmd.AddCommand(newMCPCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the CLI. An interrupt cancels the command's context so a
// run stops between files.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

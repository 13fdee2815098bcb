package cli

import (
	mcpadapter "github.com/openkraft/encmend/internal/adapters/inbound/mcp"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the encmend MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd())
	return cmd
}

func newMCPServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Start encmend MCP server (stdio)",
		Long: "Start the encmend MCP server using stdio transport. Tools are read-only: assistants can scan, " +
			"inspect and validate files and preview repairs, but nothing is written.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			s, err := mcpadapter.NewEncmendMCPServer(cfg)
			if err != nil {
				return err
			}
			return server.ServeStdio(s)
		},
	}

	return cmd
}

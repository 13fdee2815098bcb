package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/encmend/internal/domain"
)

// NewEncmendMCPServer creates an MCP server over cfg.TargetDir with every
// encmend tool and resource registered. The tools only read: repairs are
// previewed in memory and never written.
func NewEncmendMCPServer(cfg domain.Config) (*server.MCPServer, error) {
	svc, err := newServices(cfg)
	if err != nil {
		return nil, err
	}

	s := server.NewMCPServer(
		"encmend",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, svc)
	registerResources(s, svc)

	return s, nil
}

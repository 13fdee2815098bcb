package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/encmend/internal/domain"
)

const (
	configURI     = "encmend://config"
	dictionaryURI = "encmend://dictionary"
)

// registerResources registers all encmend MCP resources on the given server.
func registerResources(s *server.MCPServer, svc *services) {
	s.AddResource(
		mcplib.NewResource(
			configURI,
			"Configuration",
			mcplib.WithResourceDescription("Effective encmend configuration: target and backup directories, candidate encodings, contextual settings"),
			mcplib.WithMIMEType("application/json"),
		),
		handleConfigResource(svc),
	)

	s.AddResource(
		mcplib.NewResource(
			dictionaryURI,
			"Repair Dictionary",
			mcplib.WithResourceDescription("Dictionary entries in the order they are applied (longest pattern first)"),
			mcplib.WithMIMEType("application/json"),
		),
		handleDictionaryResource(svc),
	)
}

type configView struct {
	domain.Config
	ResolvedBackupDir string `json:"resolved_backup_dir"`
}

func handleConfigResource(svc *services) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		return jsonResource(configURI, configView{Config: svc.cfg, ResolvedBackupDir: svc.ws.BackupDir()})
	}
}

type dictionaryView struct {
	Source  string                   `json:"source,omitempty"`
	Entries []domain.DictionaryEntry `json:"entries"`
}

func handleDictionaryResource(svc *services) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		d := svc.ws.Dictionary
		return jsonResource(dictionaryURI, dictionaryView{Source: d.Source(), Entries: d.Entries()})
	}
}

func jsonResource(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

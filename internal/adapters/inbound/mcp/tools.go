package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/encmend/internal/adapters/outbound/backup"
	"github.com/openkraft/encmend/internal/adapters/outbound/detector"
	"github.com/openkraft/encmend/internal/adapters/outbound/dictionary"
	"github.com/openkraft/encmend/internal/adapters/outbound/fsutil"
	"github.com/openkraft/encmend/internal/adapters/outbound/manifest"
	"github.com/openkraft/encmend/internal/adapters/outbound/parser"
	"github.com/openkraft/encmend/internal/adapters/outbound/scanner"
	"github.com/openkraft/encmend/internal/application"
	"github.com/openkraft/encmend/internal/domain"
)

// services is the read-only slice of the application the tools call into.
type services struct {
	cfg      domain.Config
	ws       *application.Workspace
	scan     *application.ScanService
	fixes    *application.FixService
	validate *application.ValidateService
}

func newServices(cfg domain.Config) (*services, error) {
	ws, err := application.NewWorkspace(cfg, dictionary.New())
	if err != nil {
		return nil, err
	}
	sc := scanner.New()
	backups := application.NewBackupService(backup.New(), manifest.New())
	return &services{
		cfg:      cfg,
		ws:       ws,
		scan:     application.NewScanService(sc, detector.New(ws.Registry, cfg.SampleLines)),
		fixes:    application.NewFixService(ws.Engine, backups, fsutil.New()),
		validate: application.NewValidateService(sc, parser.New()),
	}, nil
}

// resolve turns a tool argument into a path. Relative paths are taken from
// the target directory.
func (s *services) resolve(p string) string {
	switch {
	case p == "":
		return s.cfg.TargetDir
	case filepath.IsAbs(p):
		return filepath.Clean(p)
	default:
		return filepath.Join(s.cfg.TargetDir, p)
	}
}

// registerTools registers all encmend MCP tools on the given server.
func registerTools(s *server.MCPServer, svc *services) {
	s.AddTool(
		mcplib.NewTool("encmend_scan",
			mcplib.WithDescription("Scan a directory of XML files and report declared and actual encodings, BOMs and suspicious characters"),
			mcplib.WithString("dir", mcplib.Description("Directory to scan, relative to the target directory (default: the target directory)")),
		),
		handleScan(svc),
	)

	s.AddTool(
		mcplib.NewTool("encmend_detect_file",
			mcplib.WithDescription("Report the encoding state of a single file"),
			mcplib.WithString("file",
				mcplib.Required(),
				mcplib.Description("Path to the file, relative to the target directory"),
			),
		),
		handleDetectFile(svc),
	)

	s.AddTool(
		mcplib.NewTool("encmend_validate",
			mcplib.WithDescription("Check that XML files are well-formed in their declared encoding"),
			mcplib.WithString("file", mcplib.Description("Validate only this file (default: every file in the target directory)")),
		),
		handleValidate(svc),
	)

	s.AddTool(
		mcplib.NewTool("encmend_preview_repair",
			mcplib.WithDescription("Run the repair strategies on one file in memory and return the result, the repaired text and its validation. Nothing is written."),
			mcplib.WithString("file",
				mcplib.Required(),
				mcplib.Description("Path to the file, relative to the target directory"),
			),
			mcplib.WithString("strategies", mcplib.Description("Comma-separated strategies: declaration, dictionary, contextual (default: every enabled strategy the file needs)")),
		),
		handlePreviewRepair(svc),
	)
}

func handleScan(svc *services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		dir, _ := request.GetArguments()["dir"].(string)
		report, err := svc.scan.Scan(ctx, svc.resolve(dir), svc.cfg.Extension, nil, svc.ws.BackupDir())
		if err != nil {
			return errorResult(fmt.Sprintf("scan failed: %v", err)), nil
		}
		return jsonResult(report)
	}
}

func handleDetectFile(svc *services) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		file, err := request.RequireString("file")
		if err != nil {
			return errorResult("file parameter is required"), nil
		}
		issue := svc.scan.DetectFile(svc.resolve(file))
		return jsonResult(issue)
	}
}

func handleValidate(svc *services) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		if file, _ := request.GetArguments()["file"].(string); file != "" {
			return jsonResult(svc.validate.ValidateFile(svc.resolve(file)))
		}
		report, err := svc.validate.Validate(ctx, svc.cfg.TargetDir, svc.cfg.Extension, svc.ws.BackupDir())
		if err != nil {
			return errorResult(fmt.Sprintf("validate failed: %v", err)), nil
		}
		return jsonResult(report)
	}
}

// preview is the encmend_preview_repair payload.
type preview struct {
	Issue      domain.EncodingIssue    `json:"issue"`
	Result     domain.FixResult        `json:"result"`
	Validation domain.ValidationResult `json:"validation"`
	Text       string                  `json:"text,omitempty"`
}

func handlePreviewRepair(svc *services) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		file, err := request.RequireString("file")
		if err != nil {
			return errorResult("file parameter is required"), nil
		}
		path := svc.resolve(file)

		data, err := os.ReadFile(path)
		if err != nil {
			return errorResult(fmt.Sprintf("reading file: %v", err)), nil
		}
		issue := svc.scan.DetectFile(path)

		strategies, err := svc.strategies(issue, request.GetArguments()["strategies"])
		if err != nil {
			return errorResult(err.Error()), nil
		}

		res, out := svc.fixes.Apply(issue, data, strategies, true)
		p := preview{
			Issue:      issue,
			Result:     res,
			Validation: svc.validate.ValidateBytes(path, out),
		}
		if res.Changed {
			p.Text = string(out)
		}
		return jsonResult(p)
	}
}

// strategies parses the optional strategies argument. Without one, the
// declaration fix is included when the file needs it, followed by every
// enabled text strategy.
func (s *services) strategies(issue domain.EncodingIssue, arg any) ([]domain.Strategy, error) {
	if raw, _ := arg.(string); strings.TrimSpace(raw) != "" {
		var out []domain.Strategy
		for _, name := range splitAndTrim(raw) {
			st, err := domain.ParseStrategy(name)
			if err != nil {
				return nil, err
			}
			if !s.ws.Engine.Supports(st) {
				return nil, fmt.Errorf("%w: %s is not enabled", domain.ErrUnknownStrategy, st)
			}
			out = append(out, st)
		}
		return out, nil
	}

	var out []domain.Strategy
	if !issue.Resolved() || !domain.IsUTF8(issue.ActualEncoding) || issue.NeedsNormalization() {
		out = append(out, domain.StrategyDeclaration)
	}
	for _, st := range []domain.Strategy{domain.StrategyDictionary, domain.StrategyContextual} {
		if s.ws.Engine.Supports(st) {
			out = append(out, st)
		}
	}
	return out, nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}

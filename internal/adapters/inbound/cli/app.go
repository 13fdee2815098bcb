package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/openkraft/encmend/internal/adapters/outbound/backup"
	"github.com/openkraft/encmend/internal/adapters/outbound/config"
	"github.com/openkraft/encmend/internal/adapters/outbound/detector"
	"github.com/openkraft/encmend/internal/adapters/outbound/dictionary"
	"github.com/openkraft/encmend/internal/adapters/outbound/fsutil"
	"github.com/openkraft/encmend/internal/adapters/outbound/gitinfo"
	"github.com/openkraft/encmend/internal/adapters/outbound/history"
	"github.com/openkraft/encmend/internal/adapters/outbound/manifest"
	"github.com/openkraft/encmend/internal/adapters/outbound/parser"
	"github.com/openkraft/encmend/internal/adapters/outbound/scanner"
	"github.com/openkraft/encmend/internal/application"
	"github.com/openkraft/encmend/internal/domain"
)

// app is everything one command invocation works with.
type app struct {
	cfg       domain.Config
	ws        *application.Workspace
	scan      *application.ScanService
	backups   *application.BackupService
	fixes     *application.FixService
	validate  *application.ValidateService
	pipeline  *application.PipelineService
	history   *history.FileHistory
	manifests *manifest.Store
}

// loadConfig reads --config and applies the [dir] argument and the
// --backup-dir flag on top of it. Paths end up absolute.
func loadConfig(cmd *cobra.Command, args []string) (domain.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.New().Load(path)
	if err != nil {
		return domain.Config{}, fmt.Errorf("loading config: %w", err)
	}

	if len(args) > 0 {
		cfg.TargetDir = args[0]
	}
	if dir, _ := cmd.Flags().GetString("backup-dir"); dir != "" {
		cfg.BackupDir = dir
	}

	if cfg.TargetDir, err = filepath.Abs(cfg.TargetDir); err != nil {
		return domain.Config{}, fmt.Errorf("resolving path: %w", err)
	}
	if cfg.BackupDir != "" {
		if cfg.BackupDir, err = filepath.Abs(cfg.BackupDir); err != nil {
			return domain.Config{}, fmt.Errorf("resolving backup dir: %w", err)
		}
	}
	return cfg, nil
}

func newApp(cfg domain.Config) (*app, error) {
	ws, err := application.NewWorkspace(cfg, dictionary.New())
	if err != nil {
		return nil, err
	}

	sc := scanner.New()
	det := detector.New(ws.Registry, cfg.SampleLines)
	manifests := manifest.New()
	hist := history.New()

	scan := application.NewScanService(sc, det)
	backups := application.NewBackupService(backup.New(), manifests)
	fixes := application.NewFixService(ws.Engine, backups, fsutil.New())
	validate := application.NewValidateService(sc, parser.New())

	return &app{
		cfg:       cfg,
		ws:        ws,
		scan:      scan,
		backups:   backups,
		fixes:     fixes,
		validate:  validate,
		pipeline:  application.NewPipelineService(scan, backups, fixes, validate, det, hist, gitinfo.New()),
		history:   hist,
		manifests: manifests,
	}, nil
}

func loadApp(cmd *cobra.Command, args []string) (*app, error) {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return nil, err
	}
	return newApp(cfg)
}

func (a *app) root() string      { return a.cfg.TargetDir }
func (a *app) backupDir() string { return a.ws.BackupDir() }

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package application

import (
	"fmt"

	"github.com/openkraft/encmend/internal/domain"
	"github.com/openkraft/encmend/internal/domain/charset"
	"github.com/openkraft/encmend/internal/domain/repair"
)

// Workspace holds the immutable objects a run is built from: the loaded
// configuration, the candidate charset registry, the repair dictionary and
// the engine wired from them.
type Workspace struct {
	Config     domain.Config
	Registry   *charset.Registry
	Dictionary *domain.RepairDictionary
	Engine     *repair.Engine
}

// NewWorkspace validates cfg and builds the registry, dictionary and
// engine. Any failure here is a configuration error and aborts the run.
func NewWorkspace(cfg domain.Config, dictionaries domain.DictionaryLoader) (*Workspace, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry, err := charset.NewRegistry(cfg.Candidates)
	if err != nil {
		return nil, fmt.Errorf("building charset registry: %w", err)
	}

	dict, err := dictionaries.Load(cfg.Dictionary)
	if err != nil {
		return nil, fmt.Errorf("loading dictionary: %w", err)
	}

	engine, err := repair.NewEngine(registry, dict, cfg.Contextual)
	if err != nil {
		return nil, fmt.Errorf("building repair engine: %w", err)
	}

	return &Workspace{Config: cfg, Registry: registry, Dictionary: dict, Engine: engine}, nil
}

// BackupDir is where this workspace keeps backups, manifests and history.
func (w *Workspace) BackupDir() string {
	return w.Config.ResolvedBackupDir()
}

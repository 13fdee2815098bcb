package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openkraft/encmend/internal/domain"
)

const filePrefix = "manifest-"

// Store is a file-based implementation of domain.ManifestStore. Manifests
// live in the backup directory they describe.
type Store struct{}

// New creates a new file-based manifest store.
func New() *Store {
	return &Store{}
}

// Save writes the manifest as manifest-<run id>.json inside its backup
// directory and returns the path written.
func (s *Store) Save(m *domain.BackupManifest) (string, error) {
	if m.BackupDir == "" {
		return "", fmt.Errorf("saving manifest: backup dir not set")
	}
	if err := os.MkdirAll(m.BackupDir, 0755); err != nil {
		return "", fmt.Errorf("creating manifest dir: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", err
	}

	path := Path(m.BackupDir, m.RunID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing manifest: %w", err)
	}
	return path, nil
}

// Load reads a manifest. Returns (nil, nil) if the file does not exist.
func (s *Store) Load(path string) (*domain.BackupManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // no manifest is not an error
		}
		return nil, err
	}

	var m domain.BackupManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}

// Latest returns the most recently written manifest in dir, or "" when the
// directory holds none.
func (s *Store) Latest(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, filePrefix+"*.json"))
	if err != nil {
		return "", err
	}
	var (
		latest string
		newest int64
	)
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if t := info.ModTime().UnixNano(); latest == "" || t >= newest {
			latest, newest = m, t
		}
	}
	return latest, nil
}

// Path returns where the manifest for runID is stored under dir.
func Path(dir, runID string) string {
	return filepath.Join(dir, filePrefix+runID+".json")
}

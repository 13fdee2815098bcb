package history

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/openkraft/encmend/internal/domain"
)

// FileName is the run history file kept in the backup directory.
const FileName = "encmend-history.json"

// FileHistory implements domain.RunHistory using JSON file storage.
type FileHistory struct{}

func New() *FileHistory {
	return &FileHistory{}
}

func (h *FileHistory) Save(dir string, entry domain.RunEntry) error {
	entries, err := h.Load(dir)
	if err != nil {
		return err
	}

	entries = append(entries, entry)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, FileName), data, 0644)
}

func (h *FileHistory) Load(dir string) ([]domain.RunEntry, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.RunEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}

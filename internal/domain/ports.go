package domain

import "time"

// FileScanner enumerates the resource files under a root directory.
type FileScanner interface {
	Scan(root, ext string, exclude ...string) ([]string, error)
}

// EncodingDetector inspects one file's bytes and reports its encoding state.
// Detection never fails: read and decode problems land on the issue.
type EncodingDetector interface {
	Detect(path string, data []byte) EncodingIssue
}

// XMLValidator checks that bytes form a well-formed document.
type XMLValidator interface {
	Validate(path string, data []byte) ValidationResult
}

// BackupStore copies files aside and verifies the copies.
type BackupStore interface {
	EnsureDir(dir string) error
	Backup(dir, path string, at time.Time) BackupRecord
	Restore(record BackupRecord) RestoreResult
}

// ManifestStore persists backup manifests next to the backups.
type ManifestStore interface {
	Save(manifest *BackupManifest) (string, error)
	Load(path string) (*BackupManifest, error)
}

// RunHistory appends and lists past pipeline runs.
type RunHistory interface {
	Save(dir string, entry RunEntry) error
	Load(dir string) ([]RunEntry, error)
}

// ConfigLoader loads run configuration. An empty path means the default
// .encmend.yaml lookup.
type ConfigLoader interface {
	Load(path string) (Config, error)
}

// DictionaryLoader reads a repair dictionary from external data.
type DictionaryLoader interface {
	Load(path string) (*RepairDictionary, error)
}

// GitInfo resolves the commit a run was made against.
type GitInfo interface {
	CommitHash(path string) (string, error)
}

// FileWriter replaces a file's contents.
type FileWriter interface {
	WriteFile(path string, data []byte) error
}

// ProgressObserver receives per-stage progress from the pipeline.
type ProgressObserver interface {
	StageStarted(stage string, total int)
	FileDone(stage, path string)
	StageFinished(stage string)
}

// NopProgress ignores every event.
type NopProgress struct{}

func (NopProgress) StageStarted(string, int) {}
func (NopProgress) FileDone(string, string)  {}
func (NopProgress) StageFinished(string)     {}

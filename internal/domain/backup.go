package domain

import "time"

// BackupTimestampLayout renders as yyyyMMdd-HHmmss.
const BackupTimestampLayout = "20060102-150405"

// BackupSuffix is appended to the original file name of every backup.
const BackupSuffix = ".bak"

// BackupRecord describes one verified (or failed) copy of a file taken
// before any mutation.
type BackupRecord struct {
	OriginalPath string    `json:"original_path"`
	BackupPath   string    `json:"backup_path"`
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
	Size         int64     `json:"size"`
	Checksum     string    `json:"checksum,omitempty"`
}

// BackupManifest is the on-disk audit trail of one backup stage.
type BackupManifest struct {
	RunID     string         `json:"run_id"`
	Root      string         `json:"root"`
	BackupDir string         `json:"backup_dir"`
	CreatedAt time.Time      `json:"created_at"`
	Records   []BackupRecord `json:"records"`
}

// Verified returns the records whose copy was verified, keyed by original path.
func (m BackupManifest) Verified() map[string]BackupRecord {
	out := make(map[string]BackupRecord, len(m.Records))
	for _, r := range m.Records {
		if r.Success {
			out[r.OriginalPath] = r
		}
	}
	return out
}

// RestoreResult is the outcome of copying one backup back over its original.
type RestoreResult struct {
	OriginalPath string `json:"original_path"`
	BackupPath   string `json:"backup_path"`
	Success      bool   `json:"success"`
	Message      string `json:"message"`
}

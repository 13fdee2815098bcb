package backup

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/openkraft/encmend/internal/adapters/outbound/fsutil"
	"github.com/openkraft/encmend/internal/domain"
)

// maxCollisions bounds the -N counter tried when a backup name is taken.
const maxCollisions = 1000

// Store implements domain.BackupStore on the local filesystem. Backups are
// byte-for-byte copies verified by length and xxhash64 checksum.
type Store struct{}

// New creates a filesystem backup store.
func New() *Store { return &Store{} }

// EnsureDir creates the backup directory. Failure is fatal for a run.
func (s *Store) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrBackupDirUnusable, dir, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrBackupDirUnusable, dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrBackupDirUnusable, dir)
	}
	return nil
}

// Backup copies path into dir as <stem>_<timestamp><ext>.bak. A name that
// already exists gets a -N counter after the timestamp; nothing is ever
// overwritten. Failures are reported on the record.
func (s *Store) Backup(dir, path string, at time.Time) domain.BackupRecord {
	rec := domain.BackupRecord{OriginalPath: path, Timestamp: at}

	data, err := os.ReadFile(path)
	if err != nil {
		rec.Message = fmt.Sprintf("reading original: %v", err)
		return rec
	}
	sum := Checksum(data)

	f, name, err := createExclusive(dir, filepath.Base(path), at)
	if err != nil {
		rec.Message = err.Error()
		return rec
	}
	rec.BackupPath = name

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		rec.Message = fmt.Sprintf("writing backup: %v", err)
		return rec
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		rec.Message = fmt.Sprintf("syncing backup: %v", err)
		return rec
	}
	if err := f.Close(); err != nil {
		rec.Message = fmt.Sprintf("closing backup: %v", err)
		return rec
	}

	size, copySum, err := FileChecksum(name)
	if err != nil {
		rec.Message = fmt.Sprintf("verifying backup: %v", err)
		return rec
	}
	if size != int64(len(data)) {
		rec.Message = fmt.Sprintf("size mismatch: original %d bytes, backup %d bytes", len(data), size)
		return rec
	}
	if copySum != sum {
		rec.Message = fmt.Sprintf("checksum mismatch: original %s, backup %s", sum, copySum)
		return rec
	}

	rec.Success = true
	rec.Size = size
	rec.Checksum = sum
	rec.Message = "backup verified"
	return rec
}

// Restore copies a verified backup back over its original. The backup is
// re-checked against the recorded checksum first.
func (s *Store) Restore(rec domain.BackupRecord) domain.RestoreResult {
	res := domain.RestoreResult{OriginalPath: rec.OriginalPath, BackupPath: rec.BackupPath}
	if !rec.Success || rec.BackupPath == "" {
		res.Message = "no verified backup recorded"
		return res
	}

	data, err := os.ReadFile(rec.BackupPath)
	if err != nil {
		res.Message = fmt.Sprintf("reading backup: %v", err)
		return res
	}
	if rec.Checksum != "" && Checksum(data) != rec.Checksum {
		res.Message = "backup checksum no longer matches the manifest"
		return res
	}
	if current, err := os.ReadFile(rec.OriginalPath); err == nil && bytes.Equal(current, data) {
		res.Success = true
		res.Message = "already matches backup"
		return res
	}
	if err := fsutil.WriteFileAtomic(rec.OriginalPath, data); err != nil {
		res.Message = fmt.Sprintf("restoring: %v", err)
		return res
	}
	res.Success = true
	res.Message = "restored"
	return res
}

// Name returns the backup file name for base at the given time. A positive
// counter is appended to the timestamp as -N.
func Name(base string, at time.Time, counter int) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	ts := at.Format(domain.BackupTimestampLayout)
	if counter > 0 {
		ts = fmt.Sprintf("%s-%d", ts, counter)
	}
	return stem + "_" + ts + ext + domain.BackupSuffix
}

func createExclusive(dir, base string, at time.Time) (*os.File, string, error) {
	for n := 0; n < maxCollisions; n++ {
		name := filepath.Join(dir, Name(base, at, n))
		f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, name, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("creating backup: %w", err)
		}
	}
	return nil, "", fmt.Errorf("creating backup: %d names already taken for %s", maxCollisions, base)
}

// Checksum returns the hex xxhash64 digest of data.
func Checksum(data []byte) string {
	digest := xxhash.New()
	_, _ = digest.Write(data)
	return hex.EncodeToString(digest.Sum(nil))
}

// FileChecksum streams a file through xxhash64 and returns its size and
// hex digest.
func FileChecksum(path string) (int64, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	hasher := xxhash.New()
	n, err := io.Copy(hasher, file)
	if err != nil {
		return 0, "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return n, hex.EncodeToString(hasher.Sum(nil)), nil
}

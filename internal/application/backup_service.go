package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openkraft/encmend/internal/domain"
)

// BackupService takes verified copies of files before any mutation and
// records them in a manifest; it also restores from a manifest.
type BackupService struct {
	store     domain.BackupStore
	manifests domain.ManifestStore
	now       func() time.Time
	log       *slog.Logger
}

func NewBackupService(store domain.BackupStore, manifests domain.ManifestStore) *BackupService {
	return &BackupService{
		store:     store,
		manifests: manifests,
		now:       time.Now,
		log:       slog.Default().With("component", "backup"),
	}
}

// Backup copies every path into dir and writes the run's manifest there.
// An unusable backup directory aborts; individual copy failures are
// recorded on their records and the batch continues.
func (s *BackupService) Backup(ctx context.Context, runID, root, dir string, paths []string, progress domain.ProgressObserver) (*domain.BackupManifest, string, error) {
	if progress == nil {
		progress = domain.NopProgress{}
	}
	if runID == "" {
		runID = uuid.NewString()
	}
	if err := s.store.EnsureDir(dir); err != nil {
		return nil, "", err
	}

	at := s.now()
	m := &domain.BackupManifest{RunID: runID, Root: root, BackupDir: dir, CreatedAt: at}

	progress.StageStarted(domain.StageBackup, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			progress.StageFinished(domain.StageBackup)
			return nil, "", err
		}
		rec := s.store.Backup(dir, p, at)
		if !rec.Success {
			s.log.Warn("backup failed", "path", p, "reason", rec.Message)
		} else {
			s.log.Debug("backup verified", "path", p, "backup", rec.BackupPath, "checksum", rec.Checksum)
		}
		m.Records = append(m.Records, rec)
		progress.FileDone(domain.StageBackup, p)
	}
	progress.StageFinished(domain.StageBackup)

	path, err := s.manifests.Save(m)
	if err != nil {
		return m, "", fmt.Errorf("saving backup manifest: %w", err)
	}
	return m, path, nil
}

// Restore copies every verified backup in the manifest back over its
// original. When only is non-empty, just those original paths are restored.
func (s *BackupService) Restore(ctx context.Context, manifestPath string, only ...string) ([]domain.RestoreResult, error) {
	m, err := s.manifests.Load(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("loading manifest: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("loading manifest: %s does not exist", manifestPath)
	}

	wanted := make(map[string]bool, len(only))
	for _, p := range only {
		wanted[p] = true
	}

	var results []domain.RestoreResult
	for _, rec := range m.Records {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if len(wanted) > 0 && !wanted[rec.OriginalPath] {
			continue
		}
		if !rec.Success {
			results = append(results, domain.RestoreResult{
				OriginalPath: rec.OriginalPath,
				Message:      fmt.Sprintf("%v: %s", domain.ErrNoVerifiedBackup, rec.Message),
			})
			continue
		}
		res := s.store.Restore(rec)
		if !res.Success {
			s.log.Warn("restore failed", "path", rec.OriginalPath, "reason", res.Message)
		}
		results = append(results, res)
	}
	return results, nil
}

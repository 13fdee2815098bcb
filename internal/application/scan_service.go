package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/openkraft/encmend/internal/domain"
)

// ScanService walks a directory and runs the encoding detector over every
// matching file. Scanning never modifies files.
type ScanService struct {
	scanner  domain.FileScanner
	detector domain.EncodingDetector
	log      *slog.Logger
}

func NewScanService(scanner domain.FileScanner, detector domain.EncodingDetector) *ScanService {
	return &ScanService{
		scanner:  scanner,
		detector: detector,
		log:      slog.Default().With("component", "scan"),
	}
}

// Scan reports on every file with extension ext under root. Read failures
// are recorded on the file's issue and do not stop the scan.
func (s *ScanService) Scan(ctx context.Context, root, ext string, progress domain.ProgressObserver, exclude ...string) (*domain.ScanReport, error) {
	if progress == nil {
		progress = domain.NopProgress{}
	}

	files, err := s.scanner.Scan(root, ext, exclude...)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	s.log.Debug("files found", "root", root, "count", len(files))

	progress.StageStarted(domain.StageScan, len(files))
	defer progress.StageFinished(domain.StageScan)

	issues := make([]domain.EncodingIssue, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		issue := s.DetectFile(f)
		if issue.HasProblems {
			s.log.Debug("problem file", "path", f, "declared", issue.DeclaredEncoding, "actual", issue.ActualEncoding, "chars", len(issue.CharacterIssues))
		}
		issues = append(issues, issue)
		progress.FileDone(domain.StageScan, f)
	}

	return domain.NewScanReport(root, ext, issues), nil
}

// DetectFile reads and inspects one file.
func (s *ScanService) DetectFile(path string) domain.EncodingIssue {
	data, err := os.ReadFile(path)
	if err != nil {
		s.log.Warn("cannot read file", "path", path, "error", err)
		issue := domain.EncodingIssue{
			File:             filepath.Base(path),
			Path:             path,
			DeclaredEncoding: domain.EncodingUnspecified,
			ActualEncoding:   domain.EncodingUnknown,
			Error:            fmt.Sprintf("reading file: %v", err),
		}
		issue.HasProblems = domain.EvaluateProblems(issue)
		return issue
	}
	return s.detector.Detect(path, data)
}

package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/openkraft/encmend/internal/domain"
	"github.com/openkraft/encmend/internal/domain/repair"
)

// FixService applies repair strategies to files: backup first, then the
// engine in memory, then an atomic write when something changed.
type FixService struct {
	engine  *repair.Engine
	backups *BackupService
	writer  domain.FileWriter
	log     *slog.Logger
}

func NewFixService(engine *repair.Engine, backups *BackupService, writer domain.FileWriter) *FixService {
	return &FixService{
		engine:  engine,
		backups: backups,
		writer:  writer,
		log:     slog.Default().With("component", "fix"),
	}
}

// Candidates picks the scanned files a strategy set applies to. The
// declaration fix takes every selected file; text repairs take files that
// carry replacement characters.
func Candidates(issues []domain.EncodingIssue, strategies []domain.Strategy) []domain.EncodingIssue {
	declaration := false
	for _, s := range strategies {
		if s == domain.StrategyDeclaration {
			declaration = true
		}
	}
	var out []domain.EncodingIssue
	for _, i := range issues {
		switch {
		case declaration && i.Selected():
			out = append(out, i)
		case !declaration && i.ReplacementCount() > 0:
			out = append(out, i)
		}
	}
	return out
}

// Run fixes the given files with opts.Strategies. Outside dry-run every
// file is backed up into backupDir first and a file whose backup could not
// be verified is left untouched.
func (s *FixService) Run(ctx context.Context, root, backupDir string, issues []domain.EncodingIssue, opts domain.FixOptions) (*domain.FixReport, error) {
	for _, st := range opts.Strategies {
		if !s.engine.Supports(st) {
			return nil, fmt.Errorf("%w: %s is not enabled by the configuration", domain.ErrUnknownStrategy, st)
		}
	}

	report := &domain.FixReport{RunID: uuid.NewString(), Root: root, DryRun: opts.DryRun}

	verified := map[string]domain.BackupRecord{}
	if !opts.DryRun && len(issues) > 0 {
		paths := make([]string, len(issues))
		for i, issue := range issues {
			paths[i] = issue.Path
		}
		m, manifestPath, err := s.backups.Backup(ctx, report.RunID, root, backupDir, paths, nil)
		if err != nil {
			return nil, err
		}
		report.ManifestPath = manifestPath
		verified = m.Verified()
	}

	for _, issue := range issues {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if !opts.DryRun {
			if _, ok := verified[issue.Path]; !ok {
				report.Results = append(report.Results, skipped(issue, opts.Strategies, domain.ErrNoVerifiedBackup.Error()))
				continue
			}
		}
		data, err := os.ReadFile(issue.Path)
		if err != nil {
			report.Results = append(report.Results, skipped(issue, opts.Strategies, fmt.Sprintf("reading file: %v", err)))
			continue
		}
		res, _ := s.Apply(issue, data, opts.Strategies, opts.DryRun)
		report.Results = append(report.Results, res)
	}
	return report, nil
}

// Apply runs the engine over data and writes the result back unless
// dryRun is set. It returns the bytes the file holds afterwards (or would
// hold, in dry-run).
func (s *FixService) Apply(issue domain.EncodingIssue, data []byte, strategies []domain.Strategy, dryRun bool) (domain.FixResult, []byte) {
	if !textReady(issue.ActualEncoding, strategies) {
		return skipped(issue, strategies, fmt.Sprintf("file is %s, not UTF-8; run the declaration fix first", issue.ActualEncoding)), data
	}

	out, res := s.engine.Fix(repair.Request{
		Path:           issue.Path,
		Data:           data,
		ActualEncoding: issue.ActualEncoding,
		Strategies:     strategies,
	})
	if !res.Success || !res.Changed || dryRun {
		return res, out
	}

	if err := s.writer.WriteFile(issue.Path, out); err != nil {
		s.log.Error("write failed", "path", issue.Path, "error", err)
		res.Success = false
		res.NeedsManualReview = true
		res.Message = fmt.Sprintf("writing file: %v", err)
		return res, data
	}
	res.Written = true
	s.log.Info("file rewritten", "path", issue.Path, "strategies", res.Strategies, "fixed", res.FixedCount)
	return res, out
}

// textReady reports whether the strategies can run on a file in the given
// encoding. Text repairs work on UTF-8 only, so a non-UTF-8 file needs the
// declaration fix first in the same list.
func textReady(actual string, strategies []domain.Strategy) bool {
	if domain.IsUTF8(actual) || len(strategies) == 0 {
		return true
	}
	return strategies[0] == domain.StrategyDeclaration
}

func skipped(issue domain.EncodingIssue, strategies []domain.Strategy, msg string) domain.FixResult {
	res := domain.FixResult{
		FileName:          issue.File,
		FilePath:          issue.Path,
		Strategies:        strategies,
		OriginalEncoding:  issue.ActualEncoding,
		NewEncoding:       issue.ActualEncoding,
		Message:           msg,
		NeedsManualReview: true,
	}
	n := issue.ReplacementCount()
	res.SetCounts(n, n)
	return res
}

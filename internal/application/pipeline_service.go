package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/openkraft/encmend/internal/domain"
	"github.com/openkraft/encmend/internal/domain/repair"
)

// PipelineService orchestrates the remediation pipeline:
// scan → select → backup → declaration fix → dictionary repair →
// contextual repair → validate → aggregate.
type PipelineService struct {
	scan     *ScanService
	backups  *BackupService
	fixes    *FixService
	validate *ValidateService
	detector domain.EncodingDetector
	history  domain.RunHistory
	git      domain.GitInfo
	log      *slog.Logger
}

func NewPipelineService(
	scan *ScanService,
	backups *BackupService,
	fixes *FixService,
	validate *ValidateService,
	detector domain.EncodingDetector,
	history domain.RunHistory,
	git domain.GitInfo,
) *PipelineService {
	return &PipelineService{
		scan:     scan,
		backups:  backups,
		fixes:    fixes,
		validate: validate,
		detector: detector,
		history:  history,
		git:      git,
		log:      slog.Default().With("component", "pipeline"),
	}
}

// RunOptions selects what a pipeline run works on.
type RunOptions struct {
	Root      string
	Extension string
	BackupDir string
	// DryRun computes every stage in memory: no backups, no writes, no
	// history. Validation runs on the computed bytes.
	DryRun   bool
	Progress domain.ProgressObserver
}

// fileState tracks one selected file through the stages.
type fileState struct {
	outcome domain.FileOutcome
	issue   domain.EncodingIssue
	data    []byte
	// blocked files get no fix stage: no verified backup or unreadable.
	blocked bool
	// textBlocked files could not be brought to UTF-8.
	textBlocked bool
}

func (f *fileState) fail(format string, args ...any) {
	f.outcome.Reasons = append(f.outcome.Reasons, fmt.Sprintf(format, args...))
}

// Run executes the pipeline. Only catastrophic failures (missing root,
// unusable backup dir, manifest not written) return an error; everything
// else lands on the report.
func (s *PipelineService) Run(ctx context.Context, opts RunOptions) (*domain.RunReport, error) {
	progress := opts.Progress
	if progress == nil {
		progress = domain.NopProgress{}
	}

	report := &domain.RunReport{
		RunID:     uuid.NewString(),
		Root:      opts.Root,
		BackupDir: opts.BackupDir,
		DryRun:    opts.DryRun,
		StartedAt: time.Now(),
	}
	if hash, err := s.git.CommitHash(opts.Root); err == nil {
		report.CommitHash = hash
	}
	log := s.log.With("run", report.RunID)
	log.Info("run started", "root", opts.Root, "dry_run", opts.DryRun)

	// 1. Scan, keeping the backup dir out of the walk
	scan, err := s.scan.Scan(ctx, opts.Root, opts.Extension, progress, opts.BackupDir)
	if err != nil {
		return nil, err
	}
	report.Total, report.OK, report.Problems = scan.Total, scan.OK, scan.Problems
	scanStage := report.Stage(domain.StageScan)
	scanStage.Processed = scan.Total
	for _, issue := range scan.Issues {
		if issue.Error != "" {
			scanStage.Failed++
		}
	}

	// 2. Select problem files and files that need normalising
	selected := scan.Selected()
	files := make([]*fileState, len(selected))
	for i, issue := range selected {
		files[i] = &fileState{issue: issue, outcome: domain.FileOutcome{Path: issue.Path, Issue: issue}}
	}
	log.Info("files selected", "total", scan.Total, "selected", len(files))

	// 3. Backup
	if err := s.backupStage(ctx, report, files, opts, progress); err != nil {
		return nil, err
	}

	for _, f := range files {
		if f.blocked {
			continue
		}
		data, err := os.ReadFile(f.issue.Path)
		if err != nil {
			f.blocked = true
			f.fail("reading file: %v", err)
			continue
		}
		f.data = data
	}

	// 4. Declaration/BOM fix
	if err := s.declarationStage(ctx, report, files, opts.DryRun, progress); err != nil {
		return nil, err
	}

	// 5. Replacement-character repair
	if err := s.textStage(ctx, report, files, domain.StageDictionary, domain.StrategyDictionary, opts.DryRun, progress); err != nil {
		return nil, err
	}
	if s.fixes.engine.Supports(domain.StrategyContextual) {
		if err := s.textStage(ctx, report, files, domain.StageContextual, domain.StrategyContextual, opts.DryRun, progress); err != nil {
			return nil, err
		}
	}

	// 6. Validate
	if err := s.validateStage(ctx, report, files, opts.DryRun, progress); err != nil {
		return nil, err
	}

	// 7. Aggregate
	for _, f := range files {
		s.settle(f)
		report.Files = append(report.Files, f.outcome)
	}
	report.Finalize()

	if !opts.DryRun {
		if err := s.history.Save(opts.BackupDir, report.HistoryEntry()); err != nil {
			log.Warn("saving run history", "error", err) // best-effort
		}
	}
	log.Info("run finished", "fixed", report.FixedFiles(), "manual", len(report.ManualAttention), "success", report.Success)
	return report, nil
}

func (s *PipelineService) backupStage(ctx context.Context, report *domain.RunReport, files []*fileState, opts RunOptions, progress domain.ProgressObserver) error {
	stage := report.Stage(domain.StageBackup)
	if opts.DryRun {
		stage.Skipped = len(files)
		return nil
	}
	if len(files) == 0 {
		return nil
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.issue.Path
	}
	m, manifestPath, err := s.backups.Backup(ctx, report.RunID, opts.Root, opts.BackupDir, paths, progress)
	if err != nil {
		return fmt.Errorf("backup stage: %w", err)
	}
	report.ManifestPath = manifestPath

	records := make(map[string]domain.BackupRecord, len(m.Records))
	for _, r := range m.Records {
		records[r.OriginalPath] = r
	}
	for _, f := range files {
		stage.Processed++
		rec, ok := records[f.issue.Path]
		if !ok || !rec.Success {
			stage.Failed++
			f.blocked = true
			if ok {
				f.outcome.Backup = &rec
				f.fail("%v: %s", domain.ErrNoVerifiedBackup, rec.Message)
			} else {
				f.fail("%v", domain.ErrNoVerifiedBackup)
			}
			continue
		}
		f.outcome.Backup = &rec
		stage.Changed++
	}
	return nil
}

func (s *PipelineService) declarationStage(ctx context.Context, report *domain.RunReport, files []*fileState, dryRun bool, progress domain.ProgressObserver) error {
	stage := report.Stage(domain.StageDeclaration)

	var todo []*fileState
	for _, f := range files {
		switch {
		case f.blocked:
			stage.Skipped++
		case f.issue.Resolved() && !f.issue.NeedsNormalization():
			// already UTF-8 without BOM; nothing to normalise
		default:
			todo = append(todo, f)
		}
	}

	progress.StageStarted(domain.StageDeclaration, len(todo))
	defer progress.StageFinished(domain.StageDeclaration)
	for _, f := range todo {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, out := s.fixes.Apply(f.issue, f.data, []domain.Strategy{domain.StrategyDeclaration}, dryRun)
		f.outcome.Fixes = append(f.outcome.Fixes, res)
		stage.Processed++
		if !res.Success {
			stage.Failed++
			f.textBlocked = true
			f.fail("declaration: %s", res.Message)
		} else {
			if res.Changed {
				stage.Changed++
			}
			f.data = out
			f.issue.ActualEncoding = res.NewEncoding
		}
		progress.FileDone(domain.StageDeclaration, f.issue.Path)
	}
	return nil
}

func (s *PipelineService) textStage(ctx context.Context, report *domain.RunReport, files []*fileState, name string, strategy domain.Strategy, dryRun bool, progress domain.ProgressObserver) error {
	stage := report.Stage(name)

	var todo []*fileState
	for _, f := range files {
		if f.blocked || f.data == nil || repair.CountReplacement(string(f.data)) == 0 {
			continue
		}
		if f.textBlocked || !domain.IsUTF8(f.issue.ActualEncoding) {
			stage.Skipped++
			continue
		}
		todo = append(todo, f)
	}

	progress.StageStarted(name, len(todo))
	defer progress.StageFinished(name)
	for _, f := range todo {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, out := s.fixes.Apply(f.issue, f.data, []domain.Strategy{strategy}, dryRun)
		f.outcome.Fixes = append(f.outcome.Fixes, res)
		stage.Processed++
		stage.Fixed += res.FixedCount
		stage.Remaining += res.FinalReplacementCount
		if !res.Success {
			stage.Failed++
			f.fail("%s: %s", name, res.Message)
		} else {
			if res.Changed {
				stage.Changed++
			}
			f.data = out
		}
		progress.FileDone(name, f.issue.Path)
	}
	return nil
}

func (s *PipelineService) validateStage(ctx context.Context, report *domain.RunReport, files []*fileState, dryRun bool, progress domain.ProgressObserver) error {
	stage := report.Stage(domain.StageValidate)

	var todo []*fileState
	for _, f := range files {
		if f.data == nil {
			stage.Skipped++
			continue
		}
		todo = append(todo, f)
	}

	progress.StageStarted(domain.StageValidate, len(todo))
	defer progress.StageFinished(domain.StageValidate)
	for _, f := range todo {
		if err := ctx.Err(); err != nil {
			return err
		}
		var v domain.ValidationResult
		if dryRun {
			v = s.validate.ValidateBytes(f.issue.Path, f.data)
		} else {
			v = s.validate.ValidateFile(f.issue.Path)
		}
		f.outcome.Validation = &v
		stage.Processed++
		if !v.Valid {
			stage.Failed++
			if v.Line > 0 {
				f.fail("not well-formed: line %d: %s", v.Line, v.Message)
			} else {
				f.fail("not well-formed: %s", v.Message)
			}
		}
		progress.FileDone(domain.StageValidate, f.issue.Path)
	}
	return nil
}

// settle computes the residual state of one file and whether it counts as
// fixed: no replacement characters left, well-formed, nothing else wrong.
func (s *PipelineService) settle(f *fileState) {
	if f.data == nil {
		f.outcome.Remaining = f.issue.ReplacementCount()
		return
	}
	f.outcome.Remaining = repair.CountReplacement(string(f.data))
	if f.outcome.Remaining > 0 {
		f.fail("%d replacement characters remain", f.outcome.Remaining)
	}
	if !f.textBlocked {
		final := s.detector.Detect(f.issue.Path, f.data)
		garbled := 0
		for _, ci := range final.CharacterIssues {
			if ci.Description == domain.IssueGarbledChar {
				garbled++
			}
		}
		if garbled > 0 {
			f.fail("%d possible garbled characters remain", garbled)
		}
	}
	f.outcome.Fixed = len(f.outcome.Reasons) == 0 &&
		f.outcome.Validation != nil && f.outcome.Validation.Valid
}

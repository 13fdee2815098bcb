package domain

import (
	"sort"
	"time"
)

// ScanReport is the scanner's output for one directory.
type ScanReport struct {
	Root      string          `json:"root"`
	Extension string          `json:"extension"`
	ScannedAt time.Time       `json:"scanned_at"`
	Issues    []EncodingIssue `json:"issues"`
	Total     int             `json:"total"`
	OK        int             `json:"ok"`
	Problems  int             `json:"problems"`
}

// NewScanReport counts ok and problem files over issues.
func NewScanReport(root, ext string, issues []EncodingIssue) *ScanReport {
	r := &ScanReport{Root: root, Extension: ext, ScannedAt: time.Now(), Issues: issues, Total: len(issues)}
	for _, i := range issues {
		if i.HasProblems {
			r.Problems++
		} else {
			r.OK++
		}
	}
	return r
}

// Flagged returns the issues with HasProblems set, in scan order.
func (r *ScanReport) Flagged() []EncodingIssue {
	var out []EncodingIssue
	for _, i := range r.Issues {
		if i.HasProblems {
			out = append(out, i)
		}
	}
	return out
}

// Selected returns the issues the pipeline processes: problem files plus
// resolved files that still need their declaration or BOM normalised.
func (r *ScanReport) Selected() []EncodingIssue {
	var out []EncodingIssue
	for _, i := range r.Issues {
		if i.Selected() {
			out = append(out, i)
		}
	}
	return out
}

// ReplacementCount sums literal U+FFFD occurrences across all files.
func (r *ScanReport) ReplacementCount() int {
	n := 0
	for _, i := range r.Issues {
		n += i.ReplacementCount()
	}
	return n
}

// Stage names reported by the pipeline.
const (
	StageScan        = "scan"
	StageBackup      = "backup"
	StageDeclaration = "declaration"
	StageDictionary  = "dictionary"
	StageContextual  = "contextual"
	StageValidate    = "validate"
)

// StageCounts aggregates one pipeline stage.
type StageCounts struct {
	Stage     string `json:"stage"`
	Processed int    `json:"processed"`
	Changed   int    `json:"changed"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
	Fixed     int    `json:"fixed"`
	Remaining int    `json:"remaining"`
}

// FileOutcome collects every stage result for one flagged file.
type FileOutcome struct {
	Path       string            `json:"path"`
	Issue      EncodingIssue     `json:"issue"`
	Backup     *BackupRecord     `json:"backup,omitempty"`
	Fixes      []FixResult       `json:"fixes,omitempty"`
	Validation *ValidationResult `json:"validation,omitempty"`
	Remaining  int               `json:"remaining"`
	Fixed      bool              `json:"fixed"`
	Reasons    []string          `json:"reasons,omitempty"`
}

// ManualItem is a file the run could not finish on its own.
type ManualItem struct {
	Path    string   `json:"path"`
	Reasons []string `json:"reasons"`
}

// RunReport is the aggregate outcome of a pipeline run.
type RunReport struct {
	RunID           string        `json:"run_id"`
	Root            string        `json:"root"`
	BackupDir       string        `json:"backup_dir"`
	ManifestPath    string        `json:"manifest_path,omitempty"`
	CommitHash      string        `json:"commit_hash,omitempty"`
	DryRun          bool          `json:"dry_run"`
	StartedAt       time.Time     `json:"started_at"`
	FinishedAt      time.Time     `json:"finished_at"`
	Total           int           `json:"total"`
	OK              int           `json:"ok"`
	Problems        int           `json:"problems"`
	Stages          []StageCounts `json:"stages"`
	Files           []FileOutcome `json:"files"`
	ValidPaths      []string      `json:"valid_paths"`
	InvalidPaths    []string      `json:"invalid_paths"`
	ManualAttention []ManualItem  `json:"manual_attention"`
	Success         bool          `json:"success"`
}

// Stage returns a pointer to the named stage counters, adding it if absent.
func (r *RunReport) Stage(name string) *StageCounts {
	for i := range r.Stages {
		if r.Stages[i].Stage == name {
			return &r.Stages[i]
		}
	}
	r.Stages = append(r.Stages, StageCounts{Stage: name})
	return &r.Stages[len(r.Stages)-1]
}

// Finalize derives the manual-attention list and the success flag from
// the file outcomes. Success holds exactly when no file needs a human.
func (r *RunReport) Finalize() {
	r.ManualAttention = nil
	r.ValidPaths = nil
	r.InvalidPaths = nil
	for _, f := range r.Files {
		if f.Validation != nil {
			if f.Validation.Valid {
				r.ValidPaths = append(r.ValidPaths, f.Path)
			} else {
				r.InvalidPaths = append(r.InvalidPaths, f.Path)
			}
		}
		if len(f.Reasons) > 0 {
			r.ManualAttention = append(r.ManualAttention, ManualItem{Path: f.Path, Reasons: f.Reasons})
		}
	}
	sort.SliceStable(r.ManualAttention, func(i, j int) bool {
		return r.ManualAttention[i].Path < r.ManualAttention[j].Path
	})
	r.Success = len(r.ManualAttention) == 0
	r.FinishedAt = time.Now()
}

// FixedFiles counts outcomes marked fixed.
func (r *RunReport) FixedFiles() int {
	n := 0
	for _, f := range r.Files {
		if f.Fixed {
			n++
		}
	}
	return n
}

// RunEntry is one line of run history.
type RunEntry struct {
	RunID      string `json:"run_id"`
	Timestamp  string `json:"timestamp"`
	CommitHash string `json:"commit_hash,omitempty"`
	Root       string `json:"root"`
	DryRun     bool   `json:"dry_run"`
	Total      int    `json:"total"`
	Problems   int    `json:"problems"`
	Fixed      int    `json:"fixed"`
	Manual     int    `json:"manual"`
	Success    bool   `json:"success"`
}

// HistoryEntry summarises a finished report for run history.
func (r *RunReport) HistoryEntry() RunEntry {
	return RunEntry{
		RunID:      r.RunID,
		Timestamp:  r.StartedAt.UTC().Format(time.RFC3339),
		CommitHash: r.CommitHash,
		Root:       r.Root,
		DryRun:     r.DryRun,
		Total:      r.Total,
		Problems:   r.Problems,
		Fixed:      r.FixedFiles(),
		Manual:     len(r.ManualAttention),
		Success:    r.Success,
	}
}

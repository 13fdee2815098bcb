package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Default values used when .encmend.yaml is absent or leaves a field empty.
const (
	DefaultTargetDir   = "src/main/resources/mapper"
	DefaultExtension   = ".xml"
	DefaultSampleLines = 10
)

// DefaultCandidates is the ordered trial-decoding list.
var DefaultCandidates = []string{"UTF-8", "GBK", "GB2312", "ISO-8859-1", "UTF-16"}

// DefaultStatementElements are the mapper elements whose bodies are
// treated as statement context by the contextual pass.
var DefaultStatementElements = []string{"select", "insert", "update", "delete", "sql"}

// Config holds run configuration loaded from .encmend.yaml and ENCMEND_* env.
type Config struct {
	TargetDir   string           `mapstructure:"target_dir"   yaml:"target_dir"   json:"target_dir"`
	Extension   string           `mapstructure:"extension"    yaml:"extension"    json:"extension"`
	BackupDir   string           `mapstructure:"backup_dir"   yaml:"backup_dir"   json:"backup_dir,omitempty"`
	Candidates  []string         `mapstructure:"candidates"   yaml:"candidates"   json:"candidates"`
	SampleLines int              `mapstructure:"sample_lines" yaml:"sample_lines" json:"sample_lines"`
	Dictionary  string           `mapstructure:"dictionary"   yaml:"dictionary"   json:"dictionary,omitempty"`
	Contextual  ContextualConfig `mapstructure:"contextual"   yaml:"contextual"   json:"contextual"`
}

// ContextualConfig drives the contextual repair pass.
type ContextualConfig struct {
	Enabled           bool     `mapstructure:"enabled"            yaml:"enabled"            json:"enabled"`
	DefaultChar       string   `mapstructure:"default_char"       yaml:"default_char"       json:"default_char,omitempty"`
	StatementElements []string `mapstructure:"statement_elements" yaml:"statement_elements" json:"statement_elements"`
	Comments          bool     `mapstructure:"comments"           yaml:"comments"           json:"comments"`
}

// DefaultConfig returns the configuration used when no file is present.
// The contextual pass stays off until a default character is configured.
func DefaultConfig() Config {
	return Config{
		TargetDir:   DefaultTargetDir,
		Extension:   DefaultExtension,
		Candidates:  append([]string(nil), DefaultCandidates...),
		SampleLines: DefaultSampleLines,
		Contextual: ContextualConfig{
			StatementElements: append([]string(nil), DefaultStatementElements...),
			Comments:          true,
		},
	}
}

// ResolvedBackupDir returns the configured backup dir, or a sibling of
// the target dir named "<target>-backup".
func (c Config) ResolvedBackupDir() string {
	if c.BackupDir != "" {
		return c.BackupDir
	}
	clean := filepath.Clean(c.TargetDir)
	return filepath.Join(filepath.Dir(clean), filepath.Base(clean)+"-backup")
}

// ContextualRune returns the configured default character as a rune.
func (c ContextualConfig) ContextualRune() rune {
	r, _ := utf8.DecodeRuneInString(c.DefaultChar)
	return r
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c Config) Validate() error {
	if strings.TrimSpace(c.TargetDir) == "" {
		return fmt.Errorf("%w: target_dir must not be empty", ErrInvalidConfig)
	}
	if !strings.HasPrefix(c.Extension, ".") || len(c.Extension) < 2 {
		return fmt.Errorf("%w: extension %q must start with a dot", ErrInvalidConfig, c.Extension)
	}
	if len(c.Candidates) == 0 {
		return fmt.Errorf("%w: candidates must list at least one encoding", ErrInvalidConfig)
	}
	if c.SampleLines <= 0 {
		return fmt.Errorf("%w: sample_lines must be > 0 (got %d)", ErrInvalidConfig, c.SampleLines)
	}
	if c.BackupDir != "" && filepath.Clean(c.BackupDir) == filepath.Clean(c.TargetDir) {
		return fmt.Errorf("%w: backup_dir must differ from target_dir", ErrInvalidConfig)
	}

	if c.Contextual.Enabled {
		if utf8.RuneCountInString(c.Contextual.DefaultChar) != 1 {
			return fmt.Errorf("%w: contextual.default_char must be exactly one character (got %q)", ErrInvalidConfig, c.Contextual.DefaultChar)
		}
		if c.Contextual.ContextualRune() == ReplacementChar {
			return fmt.Errorf("%w: contextual.default_char must not be U+FFFD", ErrInvalidConfig)
		}
		if len(c.Contextual.StatementElements) == 0 && !c.Contextual.Comments {
			return fmt.Errorf("%w: contextual pass enabled with no statement elements and comments off", ErrInvalidConfig)
		}
	}
	for i, el := range c.Contextual.StatementElements {
		if strings.TrimSpace(el) == "" {
			return fmt.Errorf("%w: contextual.statement_elements[%d] must not be empty", ErrInvalidConfig, i)
		}
	}

	return nil
}

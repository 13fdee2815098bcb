package domain_test

import (
	"path/filepath"
	"testing"

	"github.com/openkraft/encmend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := domain.DefaultConfig()
	assert.Equal(t, "src/main/resources/mapper", cfg.TargetDir)
	assert.Equal(t, ".xml", cfg.Extension)
	assert.Equal(t, []string{"UTF-8", "GBK", "GB2312", "ISO-8859-1", "UTF-16"}, cfg.Candidates)
	assert.Equal(t, 10, cfg.SampleLines)
	assert.False(t, cfg.Contextual.Enabled)
	assert.True(t, cfg.Contextual.Comments)
	assert.Equal(t, []string{"select", "insert", "update", "delete", "sql"}, cfg.Contextual.StatementElements)
	require.NoError(t, cfg.Validate())
}

func TestDefaultConfig_ReturnsCopies(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Candidates[0] = "GBK"
	assert.Equal(t, "UTF-8", domain.DefaultCandidates[0])
}

func TestResolvedBackupDir(t *testing.T) {
	cfg := domain.DefaultConfig()
	assert.Equal(t, filepath.Join("src", "main", "resources", "mapper-backup"), cfg.ResolvedBackupDir())

	cfg.TargetDir = "/data/mapper/"
	assert.Equal(t, "/data/mapper-backup", cfg.ResolvedBackupDir())

	cfg.BackupDir = "/tmp/bak"
	assert.Equal(t, "/tmp/bak", cfg.ResolvedBackupDir())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Config)
		want   string
	}{
		{"empty target", func(c *domain.Config) { c.TargetDir = " " }, "target_dir"},
		{"extension without dot", func(c *domain.Config) { c.Extension = "xml" }, "extension"},
		{"no candidates", func(c *domain.Config) { c.Candidates = nil }, "candidates"},
		{"zero sample lines", func(c *domain.Config) { c.SampleLines = 0 }, "sample_lines"},
		{"backup equals target", func(c *domain.Config) { c.BackupDir = c.TargetDir }, "backup_dir"},
		{"contextual without char", func(c *domain.Config) { c.Contextual.Enabled = true }, "default_char"},
		{"contextual two chars", func(c *domain.Config) {
			c.Contextual.Enabled = true
			c.Contextual.DefaultChar = "射影"
		}, "default_char"},
		{"contextual replacement char", func(c *domain.Config) {
			c.Contextual.Enabled = true
			c.Contextual.DefaultChar = "\uFFFD"
		}, "U+FFFD"},
		{"contextual with nothing to look at", func(c *domain.Config) {
			c.Contextual.Enabled = true
			c.Contextual.DefaultChar = "射"
			c.Contextual.StatementElements = nil
			c.Contextual.Comments = false
		}, "no statement elements"},
		{"blank element", func(c *domain.Config) { c.Contextual.StatementElements = []string{"select", ""} }, "statement_elements[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_ContextualEnabled(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Contextual.Enabled = true
	cfg.Contextual.DefaultChar = "射"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, '射', cfg.Contextual.ContextualRune())
}

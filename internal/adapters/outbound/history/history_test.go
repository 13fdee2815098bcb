package history_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openkraft/encmend/internal/adapters/outbound/history"
	"github.com/openkraft/encmend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	entry := domain.RunEntry{
		RunID:      "r1",
		Timestamp:  "2026-02-25T10:00:00Z",
		CommitHash: "abc1234",
		Total:      12,
		Problems:   3,
		Fixed:      2,
		Manual:     1,
	}

	err := h.Save(dir, entry)
	require.NoError(t, err)

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].Problems)
	assert.Equal(t, "abc1234", entries[0].CommitHash)
	assert.FileExists(t, filepath.Join(dir, history.FileName))
}

func TestHistory_AppendMultiple(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	require.NoError(t, h.Save(dir, domain.RunEntry{RunID: "r1", Problems: 5}))
	require.NoError(t, h.Save(dir, domain.RunEntry{RunID: "r2", Problems: 2}))
	require.NoError(t, h.Save(dir, domain.RunEntry{RunID: "r3", Problems: 0, Success: true}))

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "r1", entries[0].RunID)
	assert.True(t, entries[2].Success)
}

func TestHistory_LoadEmpty(t *testing.T) {
	entries, err := history.New().Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistory_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, history.FileName), []byte("not json"), 0644))
	_, err := history.New().Load(dir)
	assert.Error(t, err)
}

func TestHistory_CreatesDirectory(t *testing.T) {
	nestedDir := filepath.Join(t.TempDir(), "deep", "nested")
	h := history.New()

	require.NoError(t, h.Save(nestedDir, domain.RunEntry{RunID: "r1"}))

	entries, err := h.Load(nestedDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

package cli_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/encmend/internal/domain"
)

// writeConfig writes a config naming a small dictionary that covers the
// damage in the sales.xml fixture.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dict := filepath.Join(dir, "dictionary.yaml")
	require.NoError(t, os.WriteFile(dict, []byte(`replacements:
  "结果映\uFFFD": "结果映射"
  "查询所有\uFFFD": "查询所有"
`), 0644))

	cfg := filepath.Join(dir, "encmend.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(fmt.Sprintf("dictionary: %q\n", dict)), 0644))
	return cfg
}

func TestFixDeclarationCommand(t *testing.T) {
	dir := copyFixtures(t, "product.xml")
	out, err := execute("fix", "declaration", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Backup manifest")

	data := readFile(t, filepath.Join(dir, "product.xml"))
	assert.True(t, bytes.HasPrefix(data, []byte(domain.CanonicalDeclaration)))
}

func TestFixDeclarationCommand_DryRun(t *testing.T) {
	dir := copyFixtures(t, "product.xml")
	before := readFile(t, filepath.Join(dir, "product.xml"))

	_, err := execute("fix", "declaration", dir, "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, before, readFile(t, filepath.Join(dir, "product.xml")))
}

func TestFixReplacementCommand_Dictionary(t *testing.T) {
	dir := copyFixtures(t, "sales.xml")
	_, err := execute("fix", "replacement", dir, "--config", writeConfig(t))
	require.NoError(t, err)

	data := readFile(t, filepath.Join(dir, "sales.xml"))
	assert.False(t, strings.ContainsRune(string(data), domain.ReplacementChar))
	assert.Contains(t, string(data), "结果映射")
}

func TestFixReplacementCommand_NoDictionaryNeedsAttention(t *testing.T) {
	dir := copyFixtures(t, "sales.xml")
	before := readFile(t, filepath.Join(dir, "sales.xml"))

	_, err := execute("fix", "replacement", dir)
	assert.ErrorIs(t, err, domain.ErrManualAttention)
	assert.Equal(t, before, readFile(t, filepath.Join(dir, "sales.xml")))
}

func TestFixReplacementCommand_ContextualNotEnabled(t *testing.T) {
	_, err := execute("fix", "replacement", copyFixtures(t, "sales.xml"), "--mode", "contextual")
	assert.ErrorIs(t, err, domain.ErrUnknownStrategy)
}

func TestFixReplacementCommand_RejectsDeclarationMode(t *testing.T) {
	_, err := execute("fix", "replacement", copyFixtures(t, "sales.xml"), "--mode", "declaration")
	assert.ErrorIs(t, err, domain.ErrUnknownStrategy)
}

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openkraft/encmend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build binary before running tests
	dir, err := os.MkdirTemp("", "encmend-e2e")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	binaryPath = filepath.Join(dir, "encmend")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/encmend")
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	os.Exit(m.Run())
}

// fixtureCopy copies testdata/mapper into a temp dir so runs can rewrite it.
func fixtureCopy(t *testing.T) string {
	t.Helper()
	src, err := filepath.Abs("../../testdata/mapper")
	require.NoError(t, err)
	dst := filepath.Join(t.TempDir(), "mapper")

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(src, path)
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0644)
	})
	require.NoError(t, err)
	return dst
}

func run(t *testing.T, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
	}
	return stdout.String(), exitCode
}

// --- Scan Tests ---

func TestE2E_Scan(t *testing.T) {
	out, code := run(t, "scan", fixtureCopy(t))
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Encoding Scan")
}

func TestE2E_ScanJSON(t *testing.T) {
	out, code := run(t, "scan", fixtureCopy(t), "--json")
	assert.Equal(t, 0, code)

	var report domain.ScanReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 4, len(report.Selected()))
}

func TestE2E_ScanCI(t *testing.T) {
	_, code := run(t, "scan", fixtureCopy(t), "--ci")
	assert.Equal(t, 1, code, "should exit 1 when files have problems")
}

// --- Run Tests ---

func TestE2E_RunLeavesManualAttention(t *testing.T) {
	dir := fixtureCopy(t)
	out, code := run(t, "run", dir, "--json")
	assert.Equal(t, 1, code, "sales.xml keeps its replacement characters without a dictionary")

	var report domain.RunReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.ManualAttention, 1)
	assert.Equal(t, filepath.Join(dir, "sales.xml"), report.ManualAttention[0].Path)

	news, err := os.ReadFile(filepath.Join(dir, "nested", "news.xml"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(news), domain.CanonicalDeclaration))
	assert.Contains(t, string(news), "结果映射")
}

func TestE2E_RunWithDictionaryThenIdempotent(t *testing.T) {
	dir := fixtureCopy(t)
	cfgDir := t.TempDir()
	// sales.xml has no "?" after its replacement characters, which the
	// example dictionary expects, so it gets exact entries here.
	local := filepath.Join(cfgDir, "dictionary.yaml")
	require.NoError(t, os.WriteFile(local, []byte("replacements:\n  \"结果映\\uFFFD\": \"结果映射\"\n  \"查询所有\\uFFFD\": \"查询所有\"\n"), 0644))
	cfg := filepath.Join(cfgDir, ".encmend.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("dictionary: "+local+"\n"), 0644))

	_, code := run(t, "--config", cfg, "run", dir)
	assert.Equal(t, 0, code)

	out, code := run(t, "--config", cfg, "run", dir, "--json")
	assert.Equal(t, 0, code)
	var report domain.RunReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Empty(t, report.Files, "a second run finds nothing to do")
}

func TestE2E_DryRun(t *testing.T) {
	dir := fixtureCopy(t)
	before, err := os.ReadFile(filepath.Join(dir, "product.xml"))
	require.NoError(t, err)

	_, code := run(t, "run", dir, "--dry-run")
	assert.Equal(t, 1, code)

	after, err := os.ReadFile(filepath.Join(dir, "product.xml"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestE2E_Validate(t *testing.T) {
	_, code := run(t, "validate", fixtureCopy(t))
	assert.Equal(t, 0, code)
}

// --- Version Tests ---

func TestE2E_Version(t *testing.T) {
	out, code := run(t, "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "encmend")
}

func TestE2E_UnknownCommand(t *testing.T) {
	_, code := run(t, "frobnicate")
	assert.Equal(t, 1, code)
}

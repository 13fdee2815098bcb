package cli_test

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openkraft/encmend/internal/adapters/inbound/cli"
)

const fixtureDir = "../../../../testdata/mapper"

// copyFixtures copies the named mapper fixtures (all of them when none are
// named) into a fresh directory and returns it.
func copyFixtures(t *testing.T, names ...string) string {
	t.Helper()
	dst := filepath.Join(t.TempDir(), "mapper")
	require.NoError(t, os.MkdirAll(dst, 0755))

	if len(names) > 0 {
		for _, n := range names {
			data, err := os.ReadFile(filepath.Join(fixtureDir, n))
			require.NoError(t, err)
			require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(dst, n)), 0755))
			require.NoError(t, os.WriteFile(filepath.Join(dst, n), data, 0644))
		}
		return dst
	}

	err := filepath.WalkDir(fixtureDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(fixtureDir, path)
		if err != nil {
			return err
		}
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

// execute runs the root command with args and returns stdout and the error.
func execute(args ...string) (string, error) {
	cmd := cli.NewRootCmdForTest()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

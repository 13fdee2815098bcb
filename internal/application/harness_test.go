package application_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openkraft/encmend/internal/adapters/outbound/backup"
	"github.com/openkraft/encmend/internal/adapters/outbound/detector"
	"github.com/openkraft/encmend/internal/adapters/outbound/dictionary"
	"github.com/openkraft/encmend/internal/adapters/outbound/fsutil"
	"github.com/openkraft/encmend/internal/adapters/outbound/gitinfo"
	"github.com/openkraft/encmend/internal/adapters/outbound/history"
	"github.com/openkraft/encmend/internal/adapters/outbound/manifest"
	"github.com/openkraft/encmend/internal/adapters/outbound/parser"
	"github.com/openkraft/encmend/internal/adapters/outbound/scanner"
	"github.com/openkraft/encmend/internal/application"
	"github.com/openkraft/encmend/internal/domain"
)

const fffd = "\uFFFD"

const testDictionary = `
replacements:
  "结果映\uFFFD": "结果映射"
  "查询\uFFFD": "查询"
  "删除\uFFFD": "删除"
`

type harness struct {
	root      string
	backupDir string
	ws        *application.Workspace
	scan      *application.ScanService
	backups   *application.BackupService
	fixes     *application.FixService
	validate  *application.ValidateService
	pipeline  *application.PipelineService
}

func newHarness(t *testing.T, withContextual bool) *harness {
	t.Helper()
	base := t.TempDir()
	root := filepath.Join(base, "mapper")
	require.NoError(t, os.MkdirAll(root, 0755))

	dictPath := filepath.Join(base, "dictionary.yaml")
	require.NoError(t, os.WriteFile(dictPath, []byte(testDictionary), 0644))

	cfg := domain.DefaultConfig()
	cfg.TargetDir = root
	cfg.Dictionary = dictPath
	if withContextual {
		cfg.Contextual.Enabled = true
		cfg.Contextual.DefaultChar = "射"
	}

	ws, err := application.NewWorkspace(cfg, dictionary.New())
	require.NoError(t, err)

	det := detector.New(ws.Registry, cfg.SampleLines)
	scan := application.NewScanService(scanner.New(), det)
	backups := application.NewBackupService(backup.New(), manifest.New())
	fixes := application.NewFixService(ws.Engine, backups, fsutil.New())
	validate := application.NewValidateService(scanner.New(), parser.New())

	return &harness{
		root:      root,
		backupDir: ws.BackupDir(),
		ws:        ws,
		scan:      scan,
		backups:   backups,
		fixes:     fixes,
		validate:  validate,
		pipeline:  application.NewPipelineService(scan, backups, fixes, validate, det, history.New(), gitinfo.New()),
	}
}

func (h *harness) write(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(h.root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, data, 0644))
	return p
}

func (h *harness) read(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func (h *harness) options(dryRun bool) application.RunOptions {
	return application.RunOptions{
		Root:      h.root,
		Extension: ".xml",
		BackupDir: h.backupDir,
		DryRun:    dryRun,
	}
}

func outcome(t *testing.T, r *domain.RunReport, path string) domain.FileOutcome {
	t.Helper()
	for _, f := range r.Files {
		if f.Path == path {
			return f
		}
	}
	require.Failf(t, "no outcome", "path %s not in report", path)
	return domain.FileOutcome{}
}

func countFFFD(data []byte) int {
	return strings.Count(string(data), fffd)
}

const cleanMapper = `<?xml version="1.0" encoding="UTF-8"?>
<mapper namespace="demo">
  <!-- 结果映射 -->
  <select id="findAll">SELECT * FROM t</select>
</mapper>
`

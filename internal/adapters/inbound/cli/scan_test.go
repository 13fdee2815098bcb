package cli_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/encmend/internal/domain"
)

func TestScanCommand_JSON(t *testing.T) {
	dir := copyFixtures(t)
	out, err := execute("scan", dir, "--json")
	require.NoError(t, err)

	var report domain.ScanReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 5, report.Total)
	assert.Equal(t, dir, report.Root)
}

func TestScanCommand_DefaultTUI(t *testing.T) {
	out, err := execute("scan", copyFixtures(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Encoding Scan")
	assert.Contains(t, out, "sales.xml")
}

func TestScanCommand_CIFails(t *testing.T) {
	_, err := execute("scan", copyFixtures(t), "--ci")
	assert.Error(t, err)
}

func TestScanCommand_CIPasses(t *testing.T) {
	_, err := execute("scan", copyFixtures(t, "customer.xml"), "--ci")
	assert.NoError(t, err)
}

func TestScanCommand_MissingDir(t *testing.T) {
	_, err := execute("scan", filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, domain.ErrRootNotFound)
}

func TestValidateCommand(t *testing.T) {
	dir := copyFixtures(t)
	out, err := execute("validate", dir, "--json")
	require.NoError(t, err)

	var report domain.ValidationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 5, report.Passed)
}

func TestValidateCommand_Fails(t *testing.T) {
	dir := copyFixtures(t, "customer.xml")
	writeXML(t, filepath.Join(dir, "broken.xml"), "<mapper>\n<select>\n</mapper>\n")

	out, err := execute("validate", dir)
	assert.Error(t, err)
	assert.Contains(t, out, "broken.xml")
}

func TestBackupCommand(t *testing.T) {
	dir := copyFixtures(t)
	out, err := execute("backup", dir, "--json")
	require.NoError(t, err)

	var m domain.BackupManifest
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Len(t, m.Records, 4, "only files that need work are backed up")
	assert.Len(t, m.Verified(), 4)
	assert.Equal(t, dir+"-backup", m.BackupDir)
}

func TestBackupCommand_All(t *testing.T) {
	out, err := execute("backup", copyFixtures(t), "--all", "--json")
	require.NoError(t, err)

	var m domain.BackupManifest
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Len(t, m.Records, 5)
}

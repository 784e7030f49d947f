package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathsFor(t *testing.T) {
	paths := PathsFor("/opt/apbd")

	assert.Equal(t, "/opt/apbd", paths.ExecutableDir)
	assert.Equal(t, filepath.Join("/opt/apbd", "data"), paths.DataDir)
	assert.Equal(t, filepath.Join("/opt/apbd", "data", "uploads"), paths.UploadsDir)
	assert.Equal(t, filepath.Join("/opt/apbd", "data", "reports"), paths.ReportsDir)
	assert.Equal(t, filepath.Join("/opt/apbd", "logs"), paths.LogsDir)
	assert.Equal(t, filepath.Join("/opt/apbd", "credentials.dat"), paths.CredentialsFile)
	assert.Equal(t, filepath.Join("/opt/apbd", "data", "reports", "apbd_aggregated.csv"), paths.AggregatedCSV)
	assert.Equal(t, filepath.Join("/opt/apbd", "data", "reports", "template_apbd.xlsx"), paths.TemplateXLSX)
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	paths := PathsFor(base)

	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{
		paths.DataDir,
		paths.UploadsDir,
		paths.ReportsDir,
		paths.LogsDir,
		paths.WebDir,
		paths.StaticDir,
	} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir(), dir)
	}

	// Idempotent on a second run
	assert.NoError(t, paths.EnsureDirectories())
}

func TestPathHelpers(t *testing.T) {
	paths := PathsFor("/base")

	assert.Equal(t, filepath.Join("/base", "data", "reports", "out.csv"), paths.GetReportPath("out.csv"))
	assert.Equal(t, filepath.Join("/base", "data", "uploads", "in.xlsx"), paths.GetUploadPath("in.xlsx"))
	assert.Equal(t, filepath.Join("/base", "logs", "app.log"), paths.GetLogPath("app.log"))
	assert.Equal(t, filepath.Join("/base", "web", "index.html"), paths.GetWebFilePath("index.html"))
	assert.Equal(t, filepath.Join("/base", "sub", "file"), paths.GetRelativePath("sub/file"))
	assert.Equal(t, paths.AggregatedCSV, paths.GetAggregatedCSVPath())
	assert.Equal(t, paths.TemplateXLSX, paths.GetTemplateXLSXPath())
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present.txt")
	require.NoError(t, os.WriteFile(present, []byte("x"), 0644))

	assert.True(t, FileExists(present))
	assert.False(t, FileExists(filepath.Join(dir, "absent.txt")))
}

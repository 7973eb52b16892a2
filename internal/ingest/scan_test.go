package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanFindsCSVFiles(t *testing.T) {
	root := t.TempDir()
	importDir := filepath.Join(root, "import")
	require.NoError(t, os.MkdirAll(filepath.Join(importDir, "processed"), 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(importDir, "checking-feb.csv"), []byte("date,amount\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "EXPORT.CSV"), []byte("date,amount\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "notes.txt"), []byte("ignore"), 0o644))

	files, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 2)

	names := []string{files[0].Name, files[1].Name}
	assert.Contains(t, names, "checking-feb.csv")
	assert.Contains(t, names, "EXPORT.CSV")
	for _, f := range files {
		assert.FileExists(t, f.Path)
		assert.Greater(t, f.Size, int64(0))
	}
}

func TestScanMissingImportDir(t *testing.T) {
	files, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestMarkProcessed(t *testing.T) {
	root := t.TempDir()
	importDir := filepath.Join(root, "import")
	require.NoError(t, os.MkdirAll(importDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "feb.csv"), []byte("date\n"), 0o644))

	require.NoError(t, MarkProcessed(root, "feb.csv"))

	assert.NoFileExists(t, filepath.Join(importDir, "feb.csv"))
	assert.FileExists(t, filepath.Join(importDir, "processed", "feb.csv"))
}

package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budgeteer-dev/budgeteer/internal/config"
)

func TestRunInitCreatesSkeleton(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, runInit(dir, false))

	assert.FileExists(t, filepath.Join(dir, "budgeteer.yaml"))
	assert.FileExists(t, filepath.Join(dir, "accounts.csv"))
	assert.FileExists(t, filepath.Join(dir, "history.csv"))
	assert.FileExists(t, filepath.Join(dir, "savings.csv"))
	assert.DirExists(t, filepath.Join(dir, "transactions"))
	assert.FileExists(t, filepath.Join(dir, "import", ".gitkeep"))

	cfg, err := config.Load(filepath.Join(dir, "budgeteer.yaml"))
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Ledger.Dir)
	assert.Equal(t, 30, cfg.Import.UndoWindowMinutes)
	assert.False(t, cfg.Git.AutoCommit)
}

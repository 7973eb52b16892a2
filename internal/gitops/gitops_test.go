package gitops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRepo(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, IsRepo(dir))

	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	assert.True(t, IsRepo(dir))
}

func TestImportMessage(t *testing.T) {
	msg := ImportMessage("1234", "s1", 12)
	assert.Equal(t, "import 12 transactions into 1234 (session s1)", msg)
}

package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndClose(t *testing.T) {
	root := filepath.Join(t.TempDir(), "scratch")
	ws, err := New(root)
	require.NoError(t, err)

	_, err = uuid.Parse(ws.ID)
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ws.ID), ws.Dir)

	require.NoError(t, os.WriteFile(ws.Path("savedGame"), []byte("x"), 0o644))
	require.NoError(t, ws.Close())
	_, err = os.Stat(ws.Dir)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, ws.Close(), "closing twice is harmless")
}

func TestWorkspacesAreDistinct(t *testing.T) {
	root := t.TempDir()
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		ws, err := New(root)
		require.NoError(t, err)
		assert.False(t, seen[ws.Dir])
		seen[ws.Dir] = true
	}
}

func TestUniqueName(t *testing.T) {
	a := UniqueName("/out", ".vlog")
	b := UniqueName("/out", ".vlog")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, filepath.Join("/out")+string(filepath.Separator)))
	assert.Equal(t, ".vlog", filepath.Ext(a))
}

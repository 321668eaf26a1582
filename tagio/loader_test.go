package tagio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/PumbleCorp/invader/hek"
	"github.com/stretchr/testify/require"
)

func writeTag(t *testing.T, root, relPath string, body []byte) {
	t.Helper()
	full := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, body, 0o644))
}

func TestLoader_EarlierRootShadowsLater(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()

	writeTag(t, rootA, "levels/a10/a10.scenario", []byte("from-a"))
	writeTag(t, rootB, "levels/a10/a10.scenario", []byte("from-b"))

	l := NewLoader([]string{rootA, rootB})
	idx, err := l.Reserve("levels/a10/a10", hek.ClassScenario)
	require.NoError(t, err)

	tag := l.Get(idx)
	require.NotNil(t, tag)
	require.Equal(t, rootA, tag.Root)
	require.Equal(t, "from-a", string(tag.Reader.Bytes()))
}

func TestLoader_ReserveIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeTag(t, root, "weapons/pistol/pistol.weapon", []byte("data"))

	l := NewLoader([]string{root})
	idx1, err := l.Reserve("weapons/pistol/pistol", hek.ClassWeapon)
	require.NoError(t, err)
	idx2, err := l.Reserve("weapons/pistol/pistol", hek.ClassWeapon)
	require.NoError(t, err)
	require.Equal(t, idx1, idx2)
	require.Equal(t, 1, l.Len())
}

func TestLoader_MissingTagReturnsErrTagNotFound(t *testing.T) {
	root := t.TempDir()
	l := NewLoader([]string{root})

	_, err := l.Reserve("does/not/exist", hek.ClassBitmap)
	require.ErrorIs(t, err, ErrTagNotFound)
}

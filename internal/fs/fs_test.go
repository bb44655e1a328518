package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	dir := filepath.Join(tmp, "subdir")
	require.NoError(t, lfs.MkdirAll(dir, 0o755))

	fpath := filepath.Join(dir, "a.pts")
	f, err := lfs.OpenFile(fpath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	require.NoError(t, err)
	assert.Equal(t, fpath, f.Name())

	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	_, err = lfs.OpenFile(fpath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	assert.ErrorIs(t, err, os.ErrExist)

	renamed := filepath.Join(dir, "b.pts")
	require.NoError(t, lfs.Rename(fpath, renamed))
	data, err := os.ReadFile(renamed)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, lfs.Remove(renamed))
	_, err = os.Stat(renamed)
	assert.True(t, os.IsNotExist(err))
}

func TestFaultyFS(t *testing.T) {
	tmp := t.TempDir()
	boom := errors.New("disk full")

	ffs := NewFaultyFS(nil)
	ffs.AddRule("limited", Fault{FailAfterBytes: 5, Err: boom})
	ffs.AddRule("nosync", Fault{FailAfterBytes: -1, FailOnSync: true})
	ffs.AddRule("noclose", Fault{FailAfterBytes: -1, FailOnClose: true})
	ffs.AddRule("norename", Fault{FailAfterBytes: -1, FailOnRename: true})

	t.Run("WriteLimit", func(t *testing.T) {
		f, err := ffs.OpenFile(filepath.Join(tmp, "limited"), os.O_CREATE|os.O_WRONLY, 0o644)
		require.NoError(t, err)
		defer f.Close()

		n, err := f.Write([]byte("hello"))
		require.NoError(t, err)
		assert.Equal(t, 5, n)

		n, err = f.Write([]byte("!"))
		assert.ErrorIs(t, err, boom)
		assert.Zero(t, n)
	})

	t.Run("Sync", func(t *testing.T) {
		f, err := ffs.OpenFile(filepath.Join(tmp, "nosync"), os.O_CREATE|os.O_WRONLY, 0o644)
		require.NoError(t, err)
		defer f.Close()
		assert.ErrorIs(t, f.Sync(), ErrInjected)
	})

	t.Run("Close", func(t *testing.T) {
		f, err := ffs.OpenFile(filepath.Join(tmp, "noclose"), os.O_CREATE|os.O_WRONLY, 0o644)
		require.NoError(t, err)
		assert.ErrorIs(t, f.Close(), ErrInjected)
	})

	t.Run("Rename", func(t *testing.T) {
		src := filepath.Join(tmp, "src")
		require.NoError(t, os.WriteFile(src, nil, 0o644))
		assert.ErrorIs(t, ffs.Rename(src, filepath.Join(tmp, "norename")), ErrInjected)
		require.NoError(t, ffs.Rename(src, filepath.Join(tmp, "ok")))
	})

	t.Run("NoRule", func(t *testing.T) {
		f, err := ffs.OpenFile(filepath.Join(tmp, "plain"), os.O_CREATE|os.O_WRONLY, 0o644)
		require.NoError(t, err)
		_, err = f.Write([]byte("data"))
		require.NoError(t, err)
		require.NoError(t, f.Sync())
		require.NoError(t, f.Close())
	})

	t.Run("ClearRules", func(t *testing.T) {
		ffs.ClearRules()
		f, err := ffs.OpenFile(filepath.Join(tmp, "nosync2"), os.O_CREATE|os.O_WRONLY, 0o644)
		require.NoError(t, err)
		require.NoError(t, f.Sync())
		require.NoError(t, f.Close())
	})
}

package fs

import (
	"io"
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
	assert.NoError(t, lfs.MkdirAll(dir, 0755))

	fpath := filepath.Join(dir, "test.txt")
	f, err := lfs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)

	_, err = f.Write([]byte("hello"))
	assert.NoError(t, err)

	assert.NoError(t, f.Sync())

	info, err := f.Stat()
	assert.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())

	// Seek back and read what was written.
	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	assert.NoError(t, f.Close())

	info2, err := lfs.Stat(fpath)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), info2.Size())

	assert.NoError(t, lfs.Remove(fpath))
	_, err = lfs.Stat(fpath)
	assert.True(t, os.IsNotExist(err))
}

func TestFaultyFS_Limit(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(LocalFS{})

	ffs.SetLimit(5) // fail after 5 bytes

	fpath := filepath.Join(tmp, "faulty.txt")
	f, err := ffs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)
	defer f.Close()

	n, err := f.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = f.Write([]byte("!"))
	assert.ErrorIs(t, err, ErrInjected)
	assert.Equal(t, 0, n)

	assert.Equal(t, int64(5), ffs.GetWritten())
}

func TestFaultyFS_Rules(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(nil)

	ffs.AddRule("corpus", Fault{FailAfterBytes: -1, FailOnSync: true, FailOnClose: true})

	t.Run("Matched", func(t *testing.T) {
		f, err := ffs.OpenFile(filepath.Join(tmp, "corpus.svmlight"), os.O_CREATE|os.O_RDWR, 0644)
		require.NoError(t, err)

		_, err = f.Write([]byte("0 1:1.0\n"))
		assert.NoError(t, err)
		assert.ErrorIs(t, f.Sync(), ErrInjected)
		assert.ErrorIs(t, f.Close(), ErrInjected)
	})

	t.Run("Unmatched", func(t *testing.T) {
		f, err := ffs.OpenFile(filepath.Join(tmp, "other.txt"), os.O_CREATE|os.O_RDWR, 0644)
		require.NoError(t, err)

		_, err = f.Write([]byte("ok"))
		assert.NoError(t, err)
		assert.NoError(t, f.Sync())
		assert.NoError(t, f.Close())
	})
}

func TestFaultyFS_Delegation(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(LocalFS{})

	dir := filepath.Join(tmp, "subdir")
	assert.NoError(t, ffs.MkdirAll(dir, 0755))

	fpath := filepath.Join(dir, "test.txt")
	f, err := ffs.OpenFile(fpath, os.O_CREATE, 0644)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = ffs.Stat(fpath)
	assert.NoError(t, err)

	assert.NoError(t, ffs.Remove(fpath))
}

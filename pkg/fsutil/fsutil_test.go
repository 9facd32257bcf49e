package fsutil_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/textsheets/pkg/fsutil"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "recipe.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	t.Run("reads content and stamp", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "2 cups flour\n")
		content, stamp, err := fsutil.ReadFile(context.Background(), path)
		require.NoError(t, err)

		assert.Equal(t, "2 cups flour\n", string(content))
		assert.Equal(t, path, stamp.Path)
		assert.Equal(t, int64(len(content)), stamp.Size)
		assert.Equal(t, os.FileMode(0o600), stamp.Mode.Perm())
		assert.NotEqual(t, [32]byte{}, stamp.Hash)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, _, err := fsutil.ReadFile(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
		assert.ErrorIs(t, err, fsutil.ErrNotFound)
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()

		_, _, err := fsutil.ReadFile(context.Background(), t.TempDir())
		assert.ErrorIs(t, err, fsutil.ErrIsDirectory)
	})

	t.Run("cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err := fsutil.ReadFile(ctx, "anything")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestStampChanged(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("unchanged", func(t *testing.T) {
		t.Parallel()

		_, stamp, err := fsutil.ReadFile(ctx, writeFile(t, "a"))
		require.NoError(t, err)

		changed, err := stamp.Changed(ctx)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("same size, same mod time, different content", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "abc")
		_, stamp, err := fsutil.ReadFile(ctx, path)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(path, []byte("xyz"), 0o600))
		require.NoError(t, os.Chtimes(path, time.Now(), stamp.ModTime))

		changed, err := stamp.Changed(ctx)
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("deleted", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "a")
		_, stamp, err := fsutil.ReadFile(ctx, path)
		require.NoError(t, err)
		require.NoError(t, os.Remove(path))

		changed, err := stamp.Changed(ctx)
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("nil stamp", func(t *testing.T) {
		t.Parallel()

		var stamp *fsutil.Stamp
		_, err := stamp.Changed(ctx)
		assert.ErrorIs(t, err, fsutil.ErrNilStamp)
	})
}

func TestSaveOver(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("writes when unchanged on disk", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "old")
		_, stamp, err := fsutil.ReadFile(ctx, path)
		require.NoError(t, err)

		wrote, err := fsutil.SaveOver(ctx, stamp, []byte("new"))
		require.NoError(t, err)
		assert.True(t, wrote)

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(got))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("identical content is not written", func(t *testing.T) {
		t.Parallel()

		_, stamp, err := fsutil.ReadFile(ctx, writeFile(t, "same"))
		require.NoError(t, err)

		wrote, err := fsutil.SaveOver(ctx, stamp, []byte("same"))
		require.NoError(t, err)
		assert.False(t, wrote)
	})

	t.Run("refuses a concurrently modified file", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "old")
		_, stamp, err := fsutil.ReadFile(ctx, path)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, []byte("someone else"), 0o600))

		_, err = fsutil.SaveOver(ctx, stamp, []byte("new"))
		require.ErrorIs(t, err, fsutil.ErrModified)

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "someone else", string(got))
	})
}

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	t.Run("creates with default mode", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "out.json")
		require.NoError(t, fsutil.WriteAtomic(context.Background(), path, []byte("{}"), 0))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, fsutil.DefaultFileMode, info.Mode().Perm())
	})

	t.Run("leaves no temp files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "out.json")
		require.NoError(t, fsutil.WriteAtomic(context.Background(), path, []byte("a"), 0))
		require.NoError(t, fsutil.WriteAtomic(context.Background(), path, []byte("b"), 0))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("missing directory fails", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nope", "out.json")
		assert.Error(t, fsutil.WriteAtomic(context.Background(), path, []byte("a"), 0))
	})
}

func TestBackup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := writeFile(t, "original")

	wrote, err := fsutil.Backup(ctx, path)
	require.NoError(t, err)
	assert.True(t, wrote)

	require.NoError(t, os.WriteFile(path, []byte("edited"), 0o600))

	// A second backup keeps the first original.
	wrote, err = fsutil.Backup(ctx, path)
	require.NoError(t, err)
	assert.False(t, wrote)

	got, err := os.ReadFile(fsutil.BackupPath(path))
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))

	_, err = fsutil.Backup(ctx, filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, fsutil.ErrNotFound)
}

package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "backtrack-fsutil-test-*")
	require.NoError(t, err, "creating temp dir")
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestChecksum(t *testing.T) {
	t.Run("is_deterministic", func(t *testing.T) {
		assert.Equal(t, Checksum([]byte("hello")), Checksum([]byte("hello")))
	})

	t.Run("differs_on_content", func(t *testing.T) {
		assert.NotEqual(t, Checksum([]byte("hello")), Checksum([]byte("hello ")))
	})

	t.Run("empty_content", func(t *testing.T) {
		// sha256 of the empty string
		assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Checksum(nil))
	})
}

func TestChecksumFile(t *testing.T) {
	dir := setupTestDir(t)

	t.Run("matches_in_memory_checksum", func(t *testing.T) {
		path := filepath.Join(dir, "file.txt")
		content := []byte("backtest run complete\n")
		require.NoError(t, os.WriteFile(path, content, 0644))

		hash, err := ChecksumFile(path)
		require.NoError(t, err)
		assert.Equal(t, Checksum(content), hash)
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := ChecksumFile(filepath.Join(dir, "nope.txt"))
		require.Error(t, err)
	})
}

func TestWriteFileAtomic(t *testing.T) {
	dir := setupTestDir(t)

	t.Run("creates_parent_directories", func(t *testing.T) {
		path := filepath.Join(dir, "nested", "deep", "file.txt")
		require.NoError(t, WriteFileAtomic(path, []byte("data")))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "data", string(data))
	})

	t.Run("replaces_existing_content", func(t *testing.T) {
		path := filepath.Join(dir, "file.txt")
		require.NoError(t, WriteFileAtomic(path, []byte("old")))
		require.NoError(t, WriteFileAtomic(path, []byte("new")))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
	})

	t.Run("leaves_no_temp_file", func(t *testing.T) {
		path := filepath.Join(dir, "clean.txt")
		require.NoError(t, WriteFileAtomic(path, []byte("data")))

		_, err := os.Stat(path + ".tmp")
		assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
	})
}

func TestCopyFile(t *testing.T) {
	dir := setupTestDir(t)

	t.Run("copies_content", func(t *testing.T) {
		src := filepath.Join(dir, "src.py")
		dst := filepath.Join(dir, "backups", "dst.py")
		require.NoError(t, os.WriteFile(src, []byte("print('x')\n"), 0644))

		require.NoError(t, CopyFile(src, dst))

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "print('x')\n", string(data))
	})

	t.Run("missing_source", func(t *testing.T) {
		err := CopyFile(filepath.Join(dir, "nope.py"), filepath.Join(dir, "out.py"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "opening source file")
	})
}

func TestFileExists(t *testing.T) {
	dir := setupTestDir(t)

	path := filepath.Join(dir, "real.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	exists, err := FileExists(path)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = FileExists(filepath.Join(dir, "ghost.txt"))
	require.NoError(t, err)
	assert.False(t, exists)
}

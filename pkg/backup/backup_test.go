package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

func setupTestDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "backtrack-backup-test-*")
	require.NoError(t, err, "creating temp dir")
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func writeScript(t *testing.T, dir, name, version, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := "# Filename: " + name + "\n"
	if version != "" {
		content += "# Version: " + version + " (2025-04-27) - test fixture\n"
	}
	content += body
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "writing script %s", name)
	return path
}

func newTestManager(t *testing.T, dir string, files []string) *Manager {
	t.Helper()
	clock := time.Date(2025, 4, 27, 15, 4, 5, 0, time.UTC)
	return NewManager(Options{
		Files: files,
		Store: filepath.Join(dir, "checksums.txt"),
		Dir:   filepath.Join(dir, "backups"),
		Now:   func() time.Time { return clock },
	})
}

func TestRun(t *testing.T) {
	ctx := setupTestLogger(t)

	t.Run("first_run_copies_everything", func(t *testing.T) {
		dir := setupTestDir(t)
		a := writeScript(t, dir, "backtest.py", "2.15", "print('a')\n")
		b := writeScript(t, dir, "analysetradehistory.py", "2.6", "print('b')\n")

		mgr := newTestManager(t, dir, []string{a, b})
		result, err := mgr.Run(ctx)
		require.NoError(t, err, "first run")

		require.Len(t, result.Copied, 2)
		assert.Equal(t, filepath.Join(dir, "backups", "backup_20250427_150405"), result.SnapshotDir)
		assert.FileExists(t, filepath.Join(result.SnapshotDir, "backtest_v2.15.py"))
		assert.FileExists(t, filepath.Join(result.SnapshotDir, "analysetradehistory_v2.6.py"))
	})

	t.Run("second_run_is_idempotent", func(t *testing.T) {
		dir := setupTestDir(t)
		a := writeScript(t, dir, "backtest.py", "2.15", "print('a')\n")

		mgr := newTestManager(t, dir, []string{a})
		_, err := mgr.Run(ctx)
		require.NoError(t, err, "first run")

		result, err := mgr.Run(ctx)
		require.NoError(t, err, "second run")
		assert.Empty(t, result.Copied, "nothing changed between runs")
		assert.Equal(t, 1, result.Unchanged)
		assert.Empty(t, result.SnapshotDir, "no directory without copies")
	})

	t.Run("modified_file_copies_exactly_once", func(t *testing.T) {
		dir := setupTestDir(t)
		a := writeScript(t, dir, "backtest.py", "2.15", "print('a')\n")
		b := writeScript(t, dir, "analysetradehistory.py", "2.6", "print('b')\n")

		mgr := newTestManager(t, dir, []string{a, b})
		_, err := mgr.Run(ctx)
		require.NoError(t, err, "priming run")

		// Bump one file's version and body
		writeScript(t, dir, "backtest.py", "2.16", "print('a2')\n")

		result, err := mgr.Run(ctx)
		require.NoError(t, err, "run after modification")
		require.Len(t, result.Copied, 1, "only the changed file")
		assert.Equal(t, filepath.Join(result.SnapshotDir, "backtest_v2.16.py"), result.Copied[0])
		assert.Equal(t, 1, result.Unchanged)
	})

	t.Run("only_changed_entry_is_rewritten", func(t *testing.T) {
		dir := setupTestDir(t)
		a := writeScript(t, dir, "backtest.py", "2.15", "print('a')\n")
		b := writeScript(t, dir, "analysetradehistory.py", "2.6", "print('b')\n")

		mgr := newTestManager(t, dir, []string{a, b})
		_, err := mgr.Run(ctx)
		require.NoError(t, err)

		before := LoadStore(ctx, filepath.Join(dir, "checksums.txt"))
		hashB, ok := before.Get(b)
		require.True(t, ok)

		writeScript(t, dir, "backtest.py", "2.16", "print('a2')\n")
		_, err = mgr.Run(ctx)
		require.NoError(t, err)

		after := LoadStore(ctx, filepath.Join(dir, "checksums.txt"))
		hashA, ok := after.Get(a)
		require.True(t, ok)
		unchangedB, ok := after.Get(b)
		require.True(t, ok)

		assert.Equal(t, hashB, unchangedB, "untouched file keeps its hash")
		prevA, _ := before.Get(a)
		assert.NotEqual(t, prevA, hashA, "changed file gets a new hash")
	})

	t.Run("missing_file_is_a_warning_not_an_abort", func(t *testing.T) {
		dir := setupTestDir(t)
		a := writeScript(t, dir, "backtest.py", "2.15", "print('a')\n")
		ghost := filepath.Join(dir, "fetch_data.py")

		mgr := newTestManager(t, dir, []string{ghost, a})
		result, err := mgr.Run(ctx)
		require.NoError(t, err, "run continues past missing files")
		assert.Equal(t, 1, result.Missing)
		require.Len(t, result.Copied, 1, "remaining file still processed")
	})

	t.Run("glob_patterns_expand", func(t *testing.T) {
		dir := setupTestDir(t)
		writeScript(t, dir, "fetch_data-grok-v0.1.py", "0.1", "print('f')\n")
		writeScript(t, dir, "fetch_data-grok-v0.2.py", "0.2", "print('f2')\n")

		mgr := newTestManager(t, dir, []string{filepath.Join(dir, "fetch_data*.py")})
		result, err := mgr.Run(ctx)
		require.NoError(t, err)
		assert.Len(t, result.Copied, 2)
	})

	t.Run("failed_copy_aborts_only_that_file", func(t *testing.T) {
		dir := setupTestDir(t)
		a := writeScript(t, dir, "backtest.py", "2.15", "print('a')\n")
		b := writeScript(t, dir, "analysetradehistory.py", "2.6", "print('b')\n")

		// A regular file where the backup root belongs makes every
		// copy destination uncreatable.
		require.NoError(t, os.WriteFile(filepath.Join(dir, "backups"), []byte("in the way"), 0644))

		mgr := newTestManager(t, dir, []string{a, b})
		result, err := mgr.Run(ctx)
		require.NoError(t, err, "failed copies do not abort the run")

		assert.Equal(t, 2, result.Failed)
		assert.Empty(t, result.Copied)
		assert.Empty(t, result.SnapshotDir, "no directory when nothing was copied")

		store := LoadStore(ctx, filepath.Join(dir, "checksums.txt"))
		assert.Equal(t, 0, store.Len(), "failed files get no checksum entry")
	})

	t.Run("missing_version_comment_falls_back", func(t *testing.T) {
		dir := setupTestDir(t)
		a := writeScript(t, dir, "notes.py", "", "print('n')\n")

		mgr := newTestManager(t, dir, []string{a})
		result, err := mgr.Run(ctx)
		require.NoError(t, err)
		require.Len(t, result.Copied, 1)
		assert.Equal(t, "notes_vunknown.py", filepath.Base(result.Copied[0]))
	})
}

func TestExtractVersion(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "script_header",
			content: "# START backtest.py\n\n# Filename: backtest.py\n# Version: 2.15 (2025-04-27) - Widened SL\n",
			want:    "2.15",
		},
		{
			name:    "bare_version",
			content: "# Version: 0.9\n",
			want:    "0.9",
		},
		{
			name:    "no_comment",
			content: "print('hello')\n",
			want:    FallbackVersion,
		},
		{
			name:    "comment_too_deep",
			content: "\n\n\n\n\n\n\n\n\n\n# Version: 2.15\n",
			want:    FallbackVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupTestDir(t)
			path := filepath.Join(dir, "file.py")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			assert.Equal(t, tt.want, ExtractVersion(path))
		})
	}

	t.Run("unreadable_file_falls_back", func(t *testing.T) {
		dir := setupTestDir(t)
		assert.Equal(t, FallbackVersion, ExtractVersion(filepath.Join(dir, "nope.py")))
	})
}

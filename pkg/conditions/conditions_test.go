package conditions

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
	dir, err := os.MkdirTemp("", "backtrack-conditions-test-*")
	require.NoError(t, err, "creating temp dir")
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Record
		ok   bool
	}{
		{
			name: "well_formed_line",
			line: "[2025-04-27 12:35:00],RSI=11.59,MACD=-0.0421,Signal=-0.0380,Hist=-0.0041",
			want: Record{
				Timestamp: time.Date(2025, 4, 27, 12, 35, 0, 0, time.UTC),
				RSI:       11.59,
				MACD:      -0.0421,
				Signal:    -0.0380,
				Hist:      -0.0041,
			},
			ok: true,
		},
		{
			name: "positive_hist",
			line: "[2025-01-02 00:00:00],RSI=6.87,MACD=0.1200,Signal=0.1000,Hist=0.0200",
			want: Record{
				Timestamp: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
				RSI:       6.87,
				MACD:      0.12,
				Signal:    0.10,
				Hist:      0.02,
			},
			ok: true,
		},
		{
			name: "missing_brackets",
			line: "2025-04-27 12:35:00,RSI=11.59,MACD=-0.0421,Signal=-0.0380,Hist=-0.0041",
			ok:   false,
		},
		{
			name: "missing_field",
			line: "[2025-04-27 12:35:00],RSI=11.59,MACD=-0.0421,Signal=-0.0380",
			ok:   false,
		},
		{
			name: "unparseable_timestamp",
			line: "[not a time],RSI=11.59,MACD=-0.0421,Signal=-0.0380,Hist=-0.0041",
			ok:   false,
		},
		{
			name: "empty_line",
			line: "",
			ok:   false,
		},
		{
			name: "free_form_log_line",
			line: "2025-04-27 12:35:01 - INFO - Entry signal: RSI=11.59",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLine(tt.line)
			require.Equal(t, tt.ok, ok, "match result")
			if tt.ok {
				assert.True(t, tt.want.Timestamp.Equal(got.Timestamp), "timestamp")
				assert.Equal(t, tt.want.RSI, got.RSI, "rsi")
				assert.Equal(t, tt.want.MACD, got.MACD, "macd")
				assert.Equal(t, tt.want.Signal, got.Signal, "signal")
				assert.Equal(t, tt.want.Hist, got.Hist, "hist")
			}
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	line := "[2025-04-27 12:35:00],RSI=11.59,MACD=-0.0421,Signal=-0.0380,Hist=-0.0041"
	rec, ok := ParseLine(line)
	require.True(t, ok, "parsing line")
	assert.Equal(t, line, rec.Format(), "format should round-trip the line")
}

func TestReadFile(t *testing.T) {
	ctx := setupTestLogger(t)

	t.Run("skips_malformed_lines", func(t *testing.T) {
		dir := setupTestDir(t)
		path := filepath.Join(dir, "partial_conditions.txt")
		content := "[2025-04-27 12:35:00],RSI=11.59,MACD=-0.0421,Signal=-0.0380,Hist=-0.0041\n" +
			"garbage line\n" +
			"\n" +
			"[2025-04-27 12:40:00],RSI=6.87,MACD=0.0100,Signal=0.0050,Hist=0.0050\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644), "writing conditions file")

		records, err := ReadFile(ctx, path)
		require.NoError(t, err, "reading conditions file")
		require.Len(t, records, 2, "only well-formed records")
		assert.Equal(t, 11.59, records[0].RSI)
		assert.Equal(t, 6.87, records[1].RSI)
	})

	t.Run("empty_file_yields_no_records", func(t *testing.T) {
		dir := setupTestDir(t)
		path := filepath.Join(dir, "partial_conditions.txt")
		require.NoError(t, os.WriteFile(path, nil, 0644), "writing empty file")

		records, err := ReadFile(ctx, path)
		require.NoError(t, err, "reading empty file")
		assert.Empty(t, records)
	})

	t.Run("missing_file_is_an_error", func(t *testing.T) {
		dir := setupTestDir(t)
		_, err := ReadFile(ctx, filepath.Join(dir, "nope.txt"))
		require.Error(t, err, "missing conditions file should fail")
	})
}

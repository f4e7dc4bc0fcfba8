package market

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCandles(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "candles.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	t.Parallel()

	path := writeCandles(t, `time,open,high,low,close,volume
2024-05-01T00:00:00Z,100,101,99.5,100.5,1200
2024-05-01T00:01:00Z,100.5,101.2,100.1,101,900
`)

	s, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, s, 2)
	assert.Equal(t, 100.5, s[0].Close)
	assert.Equal(t, 900.0, s[1].Volume)
}

func TestLoadCSVUnixSecondsNoHeader(t *testing.T) {
	t.Parallel()

	path := writeCandles(t, "1714521600,100,101,99.5,100.5\n1714521660,100.5,101.2,100.1,101\n")

	s, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, s, 2)
	assert.True(t, s[1].Time.After(s[0].Time))
}

func TestLoadCSVRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"short row", "2024-05-01T00:00:00Z,100,101\n"},
		{"bad timestamp", "yesterday,100,101,99.5,100.5\n"},
		{"negative price", "2024-05-01T00:00:00Z,100,101,-1,100.5\n"},
		{"non-increasing time", "1714521600,100,101,99,100\n1714521600,100,101,99,100\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadCSV(writeCandles(t, tt.content))
			assert.Error(t, err)
		})
	}
}

package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToConsoleAndFile(t *testing.T) {
	var console, file bytes.Buffer
	logger := New(&console, &file, false)

	logger.Info("scrape completed", slog.Int("count", 5))
	logger.Debug("hidden")

	for name, buf := range map[string]*bytes.Buffer{"console": &console, "file": &file} {
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 1, name)
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry), name)
		assert.Equal(t, "scrape completed", entry["msg"], name)
		assert.Equal(t, float64(5), entry["count"], name)
	}
}

func TestNewVerboseEnablesDebug(t *testing.T) {
	var console bytes.Buffer
	logger := New(&console, nil, true).With(slog.String("run", "r1"))

	logger.Debug("page parsed")
	assert.Contains(t, console.String(), "page parsed")
	assert.Contains(t, console.String(), `"run":"r1"`)
}

func TestSetupCreatesLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, closer, err := Setup(dir, false)
	require.NoError(t, err)

	logger.Info("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "train.log")
	logger, err := New(Config{Level: "debug", File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	logger.Info("model trained", zap.Float64("accuracy", 0.8))
	logger.Debug("split", zap.Int("test_rows", 30))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "model trained", entry["msg"])
	assert.Equal(t, 0.8, entry["accuracy"])
}

func TestNewRespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warn.log")
	logger, err := New(Config{Level: "warn", File: path})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

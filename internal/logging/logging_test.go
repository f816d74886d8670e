package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHandler(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(JSONFormat, slog.LevelInfo, &buf))
	log.Debug("dropped")
	log.Info("kept", "track", 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, float64(1), entry["track"])

	assert.Panics(t, func() { NewHandler("xml", slog.LevelInfo, &buf) })
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"-4":    slog.LevelDebug,
		"8":     slog.LevelError,
	} {
		level, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, level, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

package cmdmain

import (
	"bytes"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"testing"

	"github.com/mengelbart/vedit/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logFlags() *flag.FlagSet {
	fs := flag.NewFlagSet("vedit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.String(logFormatFlag, "text", "")
	fs.String(logLevelFlag, "info", "")
	return fs
}

func restoreDefaultLogger(t *testing.T) {
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })
}

func TestSetupLoggingFromEnv(t *testing.T) {
	restoreDefaultLogger(t)
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VEDIT_LOG_FORMAT", "json")
	t.Setenv("VEDIT_LOG_LEVEL", "debug")

	cfg, err := config.Load("")
	require.NoError(t, err)
	fs := logFlags()
	require.NoError(t, fs.Parse(nil))

	var buf bytes.Buffer
	require.NoError(t, setupLogging(fs, cfg, &buf))
	slog.Debug("scanning track", "track", 0)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "scanning track", entry["msg"])
}

func TestSetupLoggingFlagsOverrideConfig(t *testing.T) {
	restoreDefaultLogger(t)
	fs := logFlags()
	require.NoError(t, fs.Parse([]string{"-log-level", "warn"}))

	var buf bytes.Buffer
	require.NoError(t, setupLogging(fs, config.Config{LogFormat: "text", LogLevel: "debug"}, &buf))
	slog.Info("dropped")
	assert.Empty(t, buf.String())
	slog.Warn("kept")
	assert.Contains(t, buf.String(), "msg=kept")
}

func TestSetupLoggingRejectsInvalidConfig(t *testing.T) {
	restoreDefaultLogger(t)
	fs := logFlags()
	require.NoError(t, fs.Parse(nil))

	assert.Error(t, setupLogging(fs, config.Config{LogFormat: "xml", LogLevel: "info"}, io.Discard))
	assert.Error(t, setupLogging(fs, config.Config{LogFormat: "text", LogLevel: "loud"}, io.Discard))
}

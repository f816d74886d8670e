package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mengelbart/vedit/demux"
	"github.com/mengelbart/vedit/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, demux.DefaultConfig(), cfg.Demux)
	assert.Equal(t, filter.DefaultBulgeParams(), cfg.Bulge)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vedit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
demux:
  aac-bitrate: 96000
  seek-step: 20ms
bulge:
  radius: 0.5
`), 0o644))
	t.Setenv("VEDIT_BULGE_SCALE", "0.75")
	t.Setenv("VEDIT_DEMUX_CHANNEL_COUNT", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 96000, cfg.Demux.AACBitrate)
	assert.Equal(t, 20*time.Millisecond, cfg.Demux.SeekStep)
	assert.Equal(t, 2, cfg.Demux.ChannelCount)
	assert.Equal(t, float32(0.5), cfg.Bulge.Radius)
	assert.Equal(t, float32(0.75), cfg.Bulge.Scale)
	assert.Equal(t, float32(0.5), cfg.Bulge.CenterX)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

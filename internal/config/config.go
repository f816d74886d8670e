// Package config loads vedit settings from defaults, an optional YAML file and
// VEDIT_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mengelbart/vedit/demux"
	"github.com/mengelbart/vedit/filter"
	"github.com/spf13/viper"
)

const (
	KeyLogFormat = "log.format"
	KeyLogLevel  = "log.level"

	KeyIFrameInterval = "demux.iframe-interval"
	KeyChannelCount   = "demux.channel-count"
	KeyMaxBufferSize  = "demux.max-buffer-size"
	KeyAACBitrate     = "demux.aac-bitrate"
	KeyVideoWeight    = "demux.video-weight"
	KeyAudioWeight    = "demux.audio-weight"
	KeySeekStep       = "demux.seek-step"

	KeyBulgeCenterX = "bulge.center-x"
	KeyBulgeCenterY = "bulge.center-y"
	KeyBulgeRadius  = "bulge.radius"
	KeyBulgeScale   = "bulge.scale"
)

type Config struct {
	LogFormat string
	LogLevel  string
	Demux     demux.Config
	Bulge     filter.BulgeParams
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyLogLevel, "info")

	d := demux.DefaultConfig()
	v.SetDefault(KeyIFrameInterval, d.IFrameInterval)
	v.SetDefault(KeyChannelCount, d.ChannelCount)
	v.SetDefault(KeyMaxBufferSize, d.MaxBufferSize)
	v.SetDefault(KeyAACBitrate, d.AACBitrate)
	v.SetDefault(KeyVideoWeight, d.VideoWeight)
	v.SetDefault(KeyAudioWeight, d.AudioWeight)
	v.SetDefault(KeySeekStep, d.SeekStep)

	b := filter.DefaultBulgeParams()
	v.SetDefault(KeyBulgeCenterX, b.CenterX)
	v.SetDefault(KeyBulgeCenterY, b.CenterY)
	v.SetDefault(KeyBulgeRadius, b.Radius)
	v.SetDefault(KeyBulgeScale, b.Scale)

	v.SetEnvPrefix("VEDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration. If path is empty, vedit.yaml is looked up in
// the working directory and in $HOME/.vedit, and a missing file is not an
// error.
func Load(path string) (Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %v: %w", path, err)
		}
	} else {
		v.SetConfigName("vedit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.vedit")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}
	return Config{
		LogFormat: v.GetString(KeyLogFormat),
		LogLevel:  v.GetString(KeyLogLevel),
		Demux: demux.Config{
			IFrameInterval: v.GetInt(KeyIFrameInterval),
			ChannelCount:   v.GetInt(KeyChannelCount),
			MaxBufferSize:  v.GetInt(KeyMaxBufferSize),
			AACBitrate:     v.GetInt(KeyAACBitrate),
			VideoWeight:    v.GetFloat64(KeyVideoWeight),
			AudioWeight:    v.GetFloat64(KeyAudioWeight),
			SeekStep:       v.GetDuration(KeySeekStep),
		},
		Bulge: filter.BulgeParams{
			CenterX: float32(v.GetFloat64(KeyBulgeCenterX)),
			CenterY: float32(v.GetFloat64(KeyBulgeCenterY)),
			Radius:  float32(v.GetFloat64(KeyBulgeRadius)),
			Scale:   float32(v.GetFloat64(KeyBulgeScale)),
		},
	}, nil
}

package demux

import (
	"time"

	"github.com/mengelbart/vedit/media"
)

// Config carries the defaults used by the Locator's format accessors and the
// step size of the backward sync point search.
type Config struct {
	IFrameInterval int
	ChannelCount   int
	MaxBufferSize  int
	AACBitrate     int
	VideoWeight    float64
	AudioWeight    float64
	SeekStep       time.Duration
}

func DefaultConfig() Config {
	return Config{
		IFrameInterval: media.DefaultIFrameInterval,
		ChannelCount:   media.DefaultChannelCount,
		MaxBufferSize:  media.DefaultMaxBufferSize,
		AACBitrate:     media.DefaultAACBitrate,
		VideoWeight:    media.Video.Weight(),
		AudioWeight:    media.Audio.Weight(),
		SeekStep:       10 * time.Millisecond,
	}
}

// Weight returns the configured time budget share of kind.
func (c Config) Weight(kind media.TrackKind) float64 {
	switch kind {
	case media.Video:
		return c.VideoWeight
	case media.Audio:
		return c.AudioWeight
	}
	return 0
}

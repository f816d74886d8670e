// Package media holds the track, format and size types shared by the demux
// layer and the frame filters.
package media

import (
	"fmt"
	"strings"
)

// Defaults applied by the format accessors when a container does not carry a
// value. They are mirrored by demux.DefaultConfig.
const (
	DefaultIFrameInterval = 1
	DefaultChannelCount   = 1
	DefaultMaxBufferSize  = 100 * 1024
	DefaultAACBitrate     = 192 * 1000
)

// Share of a transcode's time budget attributed to each track kind.
const (
	VideoWeight = 0.8
	AudioWeight = 1 - VideoWeight
)

// NoTrackIndex is returned by track selection when no track of the requested
// kind exists.
const NoTrackIndex = -5

type TrackKind int

const (
	Audio TrackKind = iota
	Video
	// Unknown is the kind of tracks that are neither audio nor video.
	Unknown
)

func (k TrackKind) String() string {
	switch k {
	case Audio:
		return "audio"
	case Video:
		return "video"
	}
	return "unknown"
}

// MIMEPrefix returns the MIME type prefix identifying tracks of kind k.
func (k TrackKind) MIMEPrefix() string {
	return k.String() + "/"
}

// Matches reports whether mime belongs to a track of kind k.
func (k TrackKind) Matches(mime string) bool {
	return (k == Audio || k == Video) && strings.HasPrefix(mime, k.MIMEPrefix())
}

// Weight returns the share of the time budget spent on tracks of kind k.
func (k TrackKind) Weight() float64 {
	switch k {
	case Video:
		return VideoWeight
	case Audio:
		return AudioWeight
	}
	return 0
}

// ParseTrackKind parses "audio" or "video".
func ParseTrackKind(s string) (TrackKind, error) {
	switch strings.ToLower(s) {
	case "audio":
		return Audio, nil
	case "video":
		return Video, nil
	}
	return 0, fmt.Errorf("unknown track kind: %q", s)
}

// VideoSize is the pixel size of a video track.
type VideoSize struct {
	Width  int
	Height int
}

func (s VideoSize) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// TrackDescriptor describes one track of a demux session. It is derived from
// the session's format table on demand and must not outlive the session.
type TrackDescriptor struct {
	Index         int
	Kind          TrackKind
	MIME          string
	Rotation      int
	ChannelCount  int
	SampleRate    int
	BitRate       int
	MaxBufferSize int
}

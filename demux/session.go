// Package demux locates tracks in a demultiplexing session, reads their
// format attributes and walks sync points and sample timestamps.
package demux

import (
	"errors"
	"fmt"
	"os"

	"github.com/mengelbart/vedit/media"
)

var (
	ErrTrackOutOfRange      = errors.New("track index out of range")
	ErrNoVideoTrack         = errors.New("no video track")
	ErrUnsupportedContainer = errors.New("unsupported container")
)

type SeekMode int

const (
	// SeekPreviousSync seeks to the last sync sample at or before the target.
	SeekPreviousSync SeekMode = iota
	SeekNextSync
	SeekClosestSync
)

func (m SeekMode) String() string {
	switch m {
	case SeekPreviousSync:
		return "previous-sync"
	case SeekNextSync:
		return "next-sync"
	case SeekClosestSync:
		return "closest-sync"
	}
	return "unknown"
}

// ParseSeekMode accepts the String form of a mode with or without the
// "-sync" suffix.
func ParseSeekMode(s string) (SeekMode, error) {
	for _, m := range []SeekMode{SeekPreviousSync, SeekNextSync, SeekClosestSync} {
		if s == m.String() || s+"-sync" == m.String() {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown seek mode: %q", s)
}

type SampleFlags int

const (
	SampleFlagSync SampleFlags = 1 << iota
)

// Session is a stateful cursor over a multiplexed container. Implementations
// are not safe for concurrent use.
//
// The cursor walks the samples of all selected tracks in decode order.
// SampleTime and SampleTrackIndex return -1 once the cursor passed the last
// sample. Seeking operates on the whole container, not on a single track.
type Session interface {
	TrackCount() int
	TrackFormat(index int) (*media.Format, error)
	SelectTrack(index int) error
	UnselectTrack(index int) error
	SampleTrackIndex() int
	SampleTime() int64
	SampleFlags() SampleFlags
	Advance() bool
	SeekTo(timeUs int64, mode SeekMode) error
	Close() error
}

// Metadata keys understood by a Retriever.
type MetadataKey int

const (
	MetadataDuration MetadataKey = iota
	MetadataVideoWidth
	MetadataVideoHeight
	MetadataVideoRotation
	MetadataHasAudio
	MetadataHasVideo
)

// Retriever extracts container level metadata as strings. A Retriever must be
// released exactly once.
type Retriever interface {
	SetDataSource(path string) error
	SetDataSourceFile(file *os.File) error
	ExtractMetadata(key MetadataKey) (string, bool)
	Release() error
}

// RetrieverFactory returns a fresh Retriever for a single retrieval.
type RetrieverFactory func() Retriever

// Muxer is the write side lifecycle used by CloseMuxer.
type Muxer interface {
	Start() error
	Stop() error
	Release() error
}

func (k MetadataKey) String() string {
	switch k {
	case MetadataDuration:
		return "duration"
	case MetadataVideoWidth:
		return "video-width"
	case MetadataVideoHeight:
		return "video-height"
	case MetadataVideoRotation:
		return "video-rotation"
	case MetadataHasAudio:
		return "has-audio"
	case MetadataHasVideo:
		return "has-video"
	}
	return "unknown"
}

package demux

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/mengelbart/vedit/media"
)

// Locator selects tracks of a Session, reads their format attributes and
// performs sync point seeking. Calls on the same Session must not overlap.
type Locator struct {
	log        *slog.Logger
	config     Config
	retrievers RetrieverFactory
}

// NewLocator creates a Locator. retrievers may be nil if Duration and
// VideoSize are never used. If log is nil, slog.Default() is used.
func NewLocator(config Config, retrievers RetrieverFactory, log *slog.Logger) *Locator {
	if log == nil {
		log = slog.Default()
	}
	return &Locator{
		log:        log.With("component", "locator"),
		config:     config,
		retrievers: retrievers,
	}
}

func (l *Locator) Config() Config {
	return l.config
}

// TrackIndex returns the index of the first track whose MIME type matches
// kind, scanning in container order, or media.NoTrackIndex.
func (l *Locator) TrackIndex(s Session, kind media.TrackKind) int {
	for i := range s.TrackCount() {
		format, err := s.TrackFormat(i)
		if err != nil {
			l.log.Warn("failed to read track format", "track", i, "error", err)
			continue
		}
		l.log.Debug("scanning track", "kind", kind, "track", i, "format", format)
		mime, err := format.String(media.KeyMIME)
		if err != nil {
			continue
		}
		if kind.Matches(mime) {
			return i
		}
	}
	return media.NoTrackIndex
}

// FindTrack is TrackIndex with an explicit outcome.
func (l *Locator) FindTrack(s Session, kind media.TrackKind) Result[int] {
	i := l.TrackIndex(s, kind)
	if i == media.NoTrackIndex {
		return notFound[int](fmt.Errorf("no %v track", kind))
	}
	return found(i)
}

// Format returns the format of track index.
func (l *Locator) Format(s Session, index int) (*media.Format, error) {
	return s.TrackFormat(index)
}

// Rotation returns the rotation of the first video track in degrees, 0 if
// the track does not declare one. It fails if the session has no video track.
func (l *Locator) Rotation(s Session) (int, error) {
	index := l.TrackIndex(s, media.Video)
	format, err := s.TrackFormat(index)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNoVideoTrack, err)
	}
	if !format.Contains(media.KeyRotation) {
		return 0, nil
	}
	return format.Integer(media.KeyRotation)
}

// Describe builds a TrackDescriptor for track index.
func (l *Locator) Describe(s Session, index int) (media.TrackDescriptor, error) {
	format, err := s.TrackFormat(index)
	if err != nil {
		return media.TrackDescriptor{}, err
	}
	mime, _ := format.String(media.KeyMIME)
	d := media.TrackDescriptor{
		Index:         index,
		MIME:          mime,
		Rotation:      format.IntegerOr(media.KeyRotation, 0),
		ChannelCount:  l.ChannelCount(format),
		SampleRate:    format.IntegerOr(media.KeySampleRate, 0),
		BitRate:       l.AudioBitrate(format),
		MaxBufferSize: l.AudioMaxBufferSize(format),
	}
	switch {
	case media.Video.Matches(mime):
		d.Kind = media.Video
	case media.Audio.Matches(mime):
		d.Kind = media.Audio
	default:
		d.Kind = media.Unknown
	}
	return d, nil
}

// Duration reads the container duration in milliseconds from path. The
// retriever is released on every path.
func (l *Locator) Duration(path string) Result[int64] {
	return withRetriever(l, func(r Retriever) Result[int64] {
		if err := r.SetDataSource(path); err != nil {
			return ioFailure[int64](err)
		}
		v, ok := r.ExtractMetadata(MetadataDuration)
		if !ok || v == "" {
			return notFound[int64](nil)
		}
		d, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return notFound[int64](err)
		}
		return found(d)
	})
}

// DurationMs returns the duration of path in milliseconds or -1.
func (l *Locator) DurationMs(path string) int64 {
	res := l.Duration(path)
	if res.Err != nil {
		l.log.Debug("duration unavailable", "path", path, "status", res.Status, "error", res.Err)
	}
	return res.Or(-1)
}

// VideoSize reads the video size of the container behind file. file stays
// open; only the retriever is released.
func (l *Locator) VideoSize(file *os.File) Result[media.VideoSize] {
	return withRetriever(l, func(r Retriever) Result[media.VideoSize] {
		if err := r.SetDataSourceFile(file); err != nil {
			return ioFailure[media.VideoSize](err)
		}
		width, err := intMetadata(r, MetadataVideoWidth)
		if err != nil {
			return notFound[media.VideoSize](err)
		}
		height, err := intMetadata(r, MetadataVideoHeight)
		if err != nil {
			return notFound[media.VideoSize](err)
		}
		return found(media.VideoSize{Width: width, Height: height})
	})
}

// VideoSizeOrNil returns the video size of file or nil.
func (l *Locator) VideoSizeOrNil(file *os.File) *media.VideoSize {
	res := l.VideoSize(file)
	if !res.Ok() {
		l.log.Debug("video size unavailable", "status", res.Status, "error", res.Err)
		return nil
	}
	return &res.Value
}

// SeekToLastFrame moves the session to the last sync sample of track at or
// before durationMs. Since seeking applies to the whole container, the
// target steps back by Config.SeekStep until the cursor lands on track or
// the target reaches zero. It returns the number of seeks performed.
func (l *Locator) SeekToLastFrame(s Session, track int, durationMs int64) (int, error) {
	target := durationMs * 1000
	if target < 0 {
		target = 0
	}
	step := l.config.SeekStep.Microseconds()
	if step <= 0 {
		step = (10 * time.Millisecond).Microseconds()
	}
	if s.SampleTrackIndex() != track {
		if err := s.SelectTrack(track); err != nil {
			return 0, err
		}
	}
	if err := s.SeekTo(target, SeekPreviousSync); err != nil {
		return 1, err
	}
	seeks := 1
	for target > 0 && s.SampleTrackIndex() != track {
		target = max(target-step, 0)
		if err := s.SeekTo(target, SeekPreviousSync); err != nil {
			return seeks, err
		}
		seeks++
	}
	l.log.Debug("seeked to last frame", "track", track, "target-us", target, "sample-time", s.SampleTime(), "seeks", seeks)
	return seeks, nil
}

// FrameTimestamps reads sample times from the current cursor position until
// the end of the session. The cursor is left at the end.
func (l *Locator) FrameTimestamps(s Session) []int64 {
	var timestamps []int64
	for {
		t := s.SampleTime()
		if t < 0 {
			break
		}
		timestamps = append(timestamps, t)
		s.Advance()
	}
	return timestamps
}

func (l *Locator) AudioBitrate(format *media.Format) int {
	return format.IntegerOr(media.KeyBitRate, l.config.AACBitrate)
}

func (l *Locator) ChannelCount(format *media.Format) int {
	return format.IntegerOr(media.KeyChannelCount, l.config.ChannelCount)
}

func (l *Locator) AudioMaxBufferSize(format *media.Format) int {
	return format.IntegerOr(media.KeyMaxInputSize, l.config.MaxBufferSize)
}

// SampleRate returns the sample rate of format. Unlike the other accessors
// it has no default and fails if the key is absent.
func (l *Locator) SampleRate(format *media.Format) (int, error) {
	return format.Integer(media.KeySampleRate)
}

func withRetriever[T any](l *Locator, f func(Retriever) Result[T]) Result[T] {
	if l.retrievers == nil {
		return ioFailure[T](errors.New("no retriever configured"))
	}
	r := l.retrievers()
	defer func() {
		if err := r.Release(); err != nil {
			l.log.Debug("failed to release retriever", "error", err)
		}
	}()
	return f(r)
}

func intMetadata(r Retriever, key MetadataKey) (int, error) {
	v, ok := r.ExtractMetadata(key)
	if !ok {
		return 0, fmt.Errorf("missing metadata key %v", key)
	}
	return strconv.Atoi(v)
}

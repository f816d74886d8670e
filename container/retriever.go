package container

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/mengelbart/vedit/demux"
	"github.com/mengelbart/vedit/internal/sampletable"
	"github.com/mengelbart/vedit/media"
)

var ErrReleased = errors.New("retriever released")

// Retriever is a demux.Retriever backed by the demuxers of this package.
type Retriever struct {
	metadata map[demux.MetadataKey]string
	released bool
}

func NewRetriever() demux.Retriever {
	return &Retriever{}
}

func (r *Retriever) SetDataSource(path string) error {
	if r.released {
		return ErrReleased
	}
	s, _, err := Open(path)
	if err != nil {
		return err
	}
	defer demux.CloseSession(s)
	r.metadata = collect(s)
	return nil
}

// SetDataSourceFile reads file from its start. file is left open.
func (r *Retriever) SetDataSourceFile(file *os.File) error {
	if r.released {
		return ErrReleased
	}
	if file == nil {
		return os.ErrInvalid
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	s, _, err := OpenReader(file)
	if err != nil {
		return err
	}
	defer demux.CloseSession(s)
	r.metadata = collect(s)
	return nil
}

func (r *Retriever) ExtractMetadata(key demux.MetadataKey) (string, bool) {
	v, ok := r.metadata[key]
	return v, ok
}

func (r *Retriever) Release() error {
	if r.released {
		return ErrReleased
	}
	r.released = true
	r.metadata = nil
	return nil
}

func collect(s *sampletable.Table) map[demux.MetadataKey]string {
	m := map[demux.MetadataKey]string{}
	durationUs := -1
	for i := range s.TrackCount() {
		f, err := s.TrackFormat(i)
		if err != nil {
			continue
		}
		durationUs = max(durationUs, f.IntegerOr(media.KeyDuration, -1))
		mime, _ := f.String(media.KeyMIME)
		switch {
		case media.Audio.Matches(mime):
			m[demux.MetadataHasAudio] = "yes"
		case media.Video.Matches(mime):
			if _, ok := m[demux.MetadataHasVideo]; ok {
				continue
			}
			m[demux.MetadataHasVideo] = "yes"
			m[demux.MetadataVideoRotation] = strconv.Itoa(f.IntegerOr(media.KeyRotation, 0))
			if f.Contains(media.KeyWidth) && f.Contains(media.KeyHeight) {
				m[demux.MetadataVideoWidth] = strconv.Itoa(f.IntegerOr(media.KeyWidth, 0))
				m[demux.MetadataVideoHeight] = strconv.Itoa(f.IntegerOr(media.KeyHeight, 0))
			}
		}
	}
	if durationUs >= 0 {
		m[demux.MetadataDuration] = strconv.Itoa(durationUs / 1000)
	}
	slog.Debug("collected container metadata", "entries", len(m))
	return m
}

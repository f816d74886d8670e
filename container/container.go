// Package container detects the container format of a file and opens it with
// the matching demuxer.
package container

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/mengelbart/vedit/demux"
	"github.com/mengelbart/vedit/fmp4"
	"github.com/mengelbart/vedit/internal/sampletable"
	"github.com/mengelbart/vedit/ivf"
	"github.com/mengelbart/vedit/webm"
)

type Format int

const (
	Unknown Format = iota
	IVF
	WebM
	MP4
)

func (f Format) String() string {
	switch f {
	case IVF:
		return "ivf"
	case WebM:
		return "webm"
	case MP4:
		return "mp4"
	default:
		return "unknown"
	}
}

var ebmlMagic = []byte{0x1a, 0x45, 0xdf, 0xa3}

// Detect inspects the first bytes of a file.
func Detect(header []byte) Format {
	switch {
	case bytes.HasPrefix(header, []byte("DKIF")):
		return IVF
	case bytes.HasPrefix(header, ebmlMagic):
		return WebM
	case len(header) >= 8:
		switch string(header[4:8]) {
		case "ftyp", "styp", "moov", "moof":
			return MP4
		}
	}
	return Unknown
}

// OpenReader detects the container format of r and reads it into a session.
func OpenReader(r io.Reader) (*sampletable.Table, Format, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(8)
	if err != nil && err != io.EOF {
		return nil, Unknown, err
	}
	format := Detect(header)
	var s *sampletable.Table
	switch format {
	case IVF:
		s, err = ivf.NewSession(br)
	case WebM:
		s, err = webm.NewSession(br)
	case MP4:
		s, err = fmp4.NewSession(br)
	default:
		return nil, Unknown, fmt.Errorf("%w: header %x", demux.ErrUnsupportedContainer, header)
	}
	if err != nil {
		return nil, format, fmt.Errorf("failed to open %v: %w", format, err)
	}
	return s, format, nil
}

// Open reads the file at path into a session. The file is closed before
// Open returns.
func Open(path string) (*sampletable.Table, Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Unknown, err
	}
	defer demux.Close(f)
	return OpenReader(f)
}

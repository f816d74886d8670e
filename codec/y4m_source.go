package codec

import (
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/mengelbart/y4m"
)

var ErrInvalidY4M = errors.New("invalid y4m stream")

// Y4MSource reads raw frames from a YUV4MPEG2 stream.
type Y4MSource struct {
	reader     *y4m.Reader
	header     *y4m.StreamHeader
	ratio      image.YCbCrSubsampleRatio
	frameCount int64
}

func NewY4MSource(reader io.Reader) (*Y4MSource, error) {
	y4mReader, y4mHeader, err := y4m.NewReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidY4M, err)
	}
	if y4mHeader.Width <= 0 || y4mHeader.Height <= 0 {
		return nil, fmt.Errorf("%w: missing frame size", ErrInvalidY4M)
	}
	if y4mHeader.FrameRate.Numerator <= 0 || y4mHeader.FrameRate.Denominator <= 0 {
		return nil, fmt.Errorf("%w: invalid frame rate %v:%v", ErrInvalidY4M, y4mHeader.FrameRate.Numerator, y4mHeader.FrameRate.Denominator)
	}
	ratio, err := convertSubsampleRatio(y4mHeader.ChromaSubsampling)
	if err != nil {
		return nil, err
	}
	return &Y4MSource{
		reader: y4mReader,
		header: y4mHeader,
		ratio:  ratio,
	}, nil
}

func (s *Y4MSource) GetInfo() Info {
	return Info{
		Width:       uint(s.header.Width),
		Height:      uint(s.header.Height),
		TimebaseNum: s.header.FrameRate.Numerator,
		TimebaseDen: s.header.FrameRate.Denominator,
	}
}

func (s *Y4MSource) frameDuration() time.Duration {
	return time.Duration(int64(time.Second) * int64(s.header.FrameRate.Denominator) / int64(s.header.FrameRate.Numerator))
}

// GetFrame returns the next frame and its attributes. It returns io.EOF
// after the last frame.
func (s *Y4MSource) GetFrame() ([]byte, Attributes, error) {
	frame, _, err := s.reader.ReadNextFrame()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, io.EOF
		}
		return nil, nil, fmt.Errorf("%w: reading frame %v: %w", ErrInvalidY4M, s.frameCount, err)
	}

	fd := s.frameDuration()
	attr := Attributes{
		ChromaSubsampling: s.ratio,
		Width:             s.header.Width,
		Height:            s.header.Height,
		IsKeyFrame:        true,
		FrameDuration:     fd,
		PTS:               s.frameCount * fd.Microseconds(),
	}
	s.frameCount++
	return frame, attr, nil
}

func convertSubsampleRatio(s y4m.ChromaSubsamplingType) (image.YCbCrSubsampleRatio, error) {
	switch s {
	case y4m.CST411:
		return image.YCbCrSubsampleRatio411, nil
	case y4m.CST420, y4m.CST420jpeg, y4m.CST420mpeg2, y4m.CST420paldv:
		return image.YCbCrSubsampleRatio420, nil
	case y4m.CST422:
		return image.YCbCrSubsampleRatio422, nil
	case y4m.CST444, y4m.CST444Alpha:
		return image.YCbCrSubsampleRatio444, nil
	}
	return 0, fmt.Errorf("%w: unsupported chroma subsampling %#v", ErrInvalidY4M, s)
}

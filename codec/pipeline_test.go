package codec

import (
	"bytes"
	"image"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tagger struct {
	tag byte
}

func (p tagger) Link(next Writer, _ Info) (Writer, error) {
	return WriterFunc(func(b []byte, a Attributes) error {
		return next.Write(append(b, p.tag), a)
	}), nil
}

func TestChainOrder(t *testing.T) {
	var got []byte
	sink := WriterFunc(func(b []byte, _ Attributes) error {
		got = b
		return nil
	})
	w, err := Chain(Info{Width: 2, Height: 2}, sink, tagger{'a'}, tagger{'b'})
	require.NoError(t, err)
	require.NoError(t, w.Write(nil, Attributes{}))
	assert.Equal(t, []byte("ba"), got)
}

func TestFrameImageConversion(t *testing.T) {
	frame := make([]byte, FrameSize(3, 3, image.YCbCrSubsampleRatio420))
	assert.Len(t, frame, 9+2*4)
	for i := range frame {
		frame[i] = byte(i)
	}
	img, err := FrameToImage(frame, 3, 3, image.YCbCrSubsampleRatio420)
	require.NoError(t, err)
	assert.Equal(t, byte(4), img.Y[img.YOffset(1, 1)])
	assert.Equal(t, byte(9), img.Cb[0])
	assert.Equal(t, byte(13), img.Cr[0])
	assert.Equal(t, frame, ImageToFrame(img))

	_, err = FrameToImage(frame[:10], 3, 3, image.YCbCrSubsampleRatio420)
	assert.Error(t, err)
}

func TestY4MSourceAndSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewY4MSink(&buf, 25, 1)
	frame := bytes.Repeat([]byte{0x80}, FrameSize(4, 2, image.YCbCrSubsampleRatio420))
	attrs := Attributes{Width: 4, Height: 2, ChromaSubsampling: image.YCbCrSubsampleRatio420}
	require.NoError(t, sink.Write(frame, attrs))
	require.NoError(t, sink.Write(frame, attrs))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("YUV4MPEG2 W4 H2 F25:1 Ip A0:0 C420jpeg\nFRAME\n")))

	source, err := NewY4MSource(&buf)
	require.NoError(t, err)
	assert.Equal(t, Info{Width: 4, Height: 2, TimebaseNum: 25, TimebaseDen: 1}, source.GetInfo())

	var pts []int64
	for {
		b, a, err := source.GetFrame()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, frame, b)
		p, err := GetPTS(a)
		require.NoError(t, err)
		pts = append(pts, p)
		w, err := GetWidth(a)
		require.NoError(t, err)
		assert.Equal(t, 4, w)
		fd, err := GetFrameDuration(a)
		require.NoError(t, err)
		assert.Equal(t, 40*time.Millisecond, fd)
	}
	assert.Equal(t, []int64{0, 40_000}, pts)
}

func TestY4MSourceRejectsGarbage(t *testing.T) {
	_, err := NewY4MSource(bytes.NewBufferString("RIFF0000WAVE\n"))
	assert.ErrorIs(t, err, ErrInvalidY4M)

	_, err = NewY4MSource(bytes.NewBufferString("YUV4MPEG2 W4 F25:1\n"))
	assert.ErrorIs(t, err, ErrInvalidY4M)
}

func TestY4MSinkRejectsUnknownSubsampling(t *testing.T) {
	sink := NewY4MSink(io.Discard, 30, 1)
	err := sink.Write(nil, Attributes{Width: 2, Height: 2, ChromaSubsampling: image.YCbCrSubsampleRatio440})
	assert.Error(t, err)
	assert.Error(t, sink.Write(nil, Attributes{}))
}

func TestAttributeGetters(t *testing.T) {
	a := Attributes{Width: 16, Height: int64(9), IsKeyFrame: true}

	w, err := GetWidth(a)
	require.NoError(t, err)
	assert.Equal(t, 16, w)

	_, err = GetHeight(a)
	assert.ErrorIs(t, err, ErrAttributeType)
	_, err = GetPTS(a)
	assert.ErrorIs(t, err, ErrAttributeMissing)
	assert.ErrorContains(t, err, "pts")

	assert.True(t, IsKey(a))
	assert.False(t, IsKey(Attributes{}))
}

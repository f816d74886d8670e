package ivf

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/mengelbart/vedit/demux"
	"github.com/mengelbart/vedit/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeIVF(fourcc string, den, num uint32, frames [][]byte) []byte {
	var buf bytes.Buffer
	header := make([]byte, 32)
	copy(header[0:4], "DKIF")
	binary.LittleEndian.PutUint16(header[4:], 0)
	binary.LittleEndian.PutUint16(header[6:], 32)
	copy(header[8:12], fourcc)
	binary.LittleEndian.PutUint16(header[12:], 320)
	binary.LittleEndian.PutUint16(header[14:], 240)
	binary.LittleEndian.PutUint32(header[16:], den)
	binary.LittleEndian.PutUint32(header[20:], num)
	binary.LittleEndian.PutUint32(header[24:], uint32(len(frames)))
	buf.Write(header)
	for i, f := range frames {
		frameHeader := make([]byte, 12)
		binary.LittleEndian.PutUint32(frameHeader[0:], uint32(len(f)))
		binary.LittleEndian.PutUint64(frameHeader[4:], uint64(i))
		buf.Write(frameHeader)
		buf.Write(f)
	}
	return buf.Bytes()
}

func vp8Frame(key bool) []byte {
	if key {
		return []byte{0x10, 0x02, 0x00, 0x9d, 0x01, 0x2a}
	}
	return []byte{0x11, 0x02, 0x00}
}

func TestNewSessionVP8(t *testing.T) {
	frames := make([][]byte, 9)
	for i := range frames {
		frames[i] = vp8Frame(i%3 == 0)
	}
	s, err := NewSession(bytes.NewReader(writeIVF("VP80", 30, 1, frames)))
	require.NoError(t, err)
	require.Equal(t, 1, s.TrackCount())

	f, err := s.TrackFormat(0)
	require.NoError(t, err)
	mime, err := f.String(media.KeyMIME)
	require.NoError(t, err)
	assert.Equal(t, "video/x-vnd.on2.vp8", mime)
	assert.Equal(t, 320, f.IntegerOr(media.KeyWidth, 0))
	assert.Equal(t, 240, f.IntegerOr(media.KeyHeight, 0))
	assert.Equal(t, 30, f.IntegerOr(media.KeyFrameRate, 0))
	assert.Equal(t, 6, f.IntegerOr(media.KeyMaxInputSize, 0))
	assert.Equal(t, 300_000, f.IntegerOr(media.KeyDuration, 0))

	require.NoError(t, s.SelectTrack(0))
	require.NoError(t, s.SeekTo(250_000, demux.SeekPreviousSync))
	assert.Equal(t, int64(200_000), s.SampleTime())
	assert.Equal(t, demux.SampleFlagSync, s.SampleFlags()&demux.SampleFlagSync)

	require.True(t, s.Advance())
	assert.Equal(t, int64(233_333), s.SampleTime())
	assert.Zero(t, s.SampleFlags()&demux.SampleFlagSync)
}

func TestNewSessionRejectsBadHeader(t *testing.T) {
	_, err := NewSession(bytes.NewReader([]byte("RIFF0000")))
	assert.Error(t, err)

	_, err = NewSession(bytes.NewReader(writeIVF("VP80", 0, 1, nil)))
	assert.Error(t, err)
}

func TestKeyFrameDetection(t *testing.T) {
	cases := []struct {
		name    string
		codec   string
		payload []byte
		want    bool
	}{
		{"vp8 key", "VP80", vp8Frame(true), true},
		{"vp8 delta", "VP80", vp8Frame(false), false},
		{"vp9 profile 0 key", "VP90", []byte{0x82}, true},
		{"vp9 profile 0 delta", "VP90", []byte{0x86}, false},
		{"vp9 show existing", "VP90", []byte{0x88}, false},
		{"vp9 profile 3 key", "VP90", []byte{0xb0}, true},
		{"vp9 profile 3 delta", "VP90", []byte{0xb2}, false},
		{"vp9 bad marker", "VP90", []byte{0x42}, false},
		{"h264 idr", "H264", []byte{0, 0, 0, 1, 0x67, 0x42, 0, 0, 0, 1, 0x65, 0x88}, true},
		{"h264 non idr", "H264", []byte{0, 0, 0, 1, 0x41, 0x9a}, false},
		{"av1", "AV01", []byte{0x12, 0x00}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewSession(bytes.NewReader(writeIVF(tc.codec, 30, 1, [][]byte{tc.payload})))
			require.NoError(t, err)
			require.NoError(t, s.SelectTrack(0))
			assert.Equal(t, tc.want, s.SampleFlags()&demux.SampleFlagSync != 0)
		})
	}
}

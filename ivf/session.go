// Package ivf reads IVF files into a demux session with a single video
// track.
package ivf

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
	"github.com/mengelbart/vedit/codec"
	"github.com/mengelbart/vedit/internal/sampletable"
	"github.com/mengelbart/vedit/media"
	"github.com/pion/webrtc/v4/pkg/media/ivfreader"
)

// NewSession reads all frame headers of r. IVF carries no sync sample table,
// so sync samples are detected from the VP8, VP9 and H.264 payloads; frames
// of other codecs are all treated as sync samples.
func NewSession(r io.Reader) (*sampletable.Table, error) {
	reader, header, err := ivfreader.NewWith(r)
	if err != nil {
		return nil, err
	}
	if header.TimebaseDenominator == 0 || header.TimebaseNumerator == 0 {
		return nil, fmt.Errorf("invalid ivf timebase %v/%v", header.TimebaseNumerator, header.TimebaseDenominator)
	}
	codecType := codec.ParseFourCC(header.FourCC)

	toMicros := func(ticks uint64) int64 {
		return int64(ticks) * int64(header.TimebaseNumerator) * 1_000_000 / int64(header.TimebaseDenominator)
	}

	var samples []sampletable.Sample
	var lastTick, prevTick uint64
	maxSize := 0
	for {
		payload, frameHeader, err := reader.ParseNextFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		ts := toMicros(frameHeader.Timestamp)
		prevTick, lastTick = lastTick, frameHeader.Timestamp
		samples = append(samples, sampletable.Sample{
			Time:       ts,
			DecodeTime: ts,
			Sync:       isKeyFrame(codecType, payload),
			Size:       len(payload),
		})
		maxSize = max(maxSize, len(payload))
	}

	f := media.NewFormat()
	f.SetString(media.KeyMIME, codecType.MIME())
	f.SetInteger(media.KeyWidth, int(header.Width))
	f.SetInteger(media.KeyHeight, int(header.Height))
	f.SetInteger(media.KeyMaxInputSize, maxSize)
	if header.TimebaseNumerator == 1 {
		f.SetInteger(media.KeyFrameRate, int(header.TimebaseDenominator))
	}
	if n := len(samples); n > 0 {
		end := lastTick
		if n > 1 {
			end += lastTick - prevTick
		}
		f.SetInteger(media.KeyDuration, int(toMicros(end)))
	}
	slog.Debug("read ivf", "fourcc", header.FourCC, "frames", len(samples), "width", header.Width, "height", header.Height)

	return sampletable.New([]sampletable.Track{{Format: f, Samples: samples}}), nil
}

func isKeyFrame(c codec.CodecType, payload []byte) bool {
	if len(payload) == 0 {
		return false
	}
	switch c {
	case codec.VP8:
		return payload[0]&0x01 == 0
	case codec.VP9:
		return vp9KeyFrame(payload[0])
	case codec.H264:
		var au h264.AnnexB
		if err := au.Unmarshal(payload); err != nil {
			return false
		}
		for _, nalu := range au {
			if len(nalu) > 0 && h264.NALUType(nalu[0]&0x1F) == h264.NALUTypeIDR {
				return true
			}
		}
		return false
	}
	return true
}

// vp9KeyFrame inspects the first byte of an uncompressed VP9 frame header.
func vp9KeyFrame(b byte) bool {
	if b>>6 != 0b10 {
		return false
	}
	profile := b>>5&1 | (b>>4&1)<<1
	bit := 3
	if profile == 3 {
		bit--
	}
	if b>>bit&1 == 1 {
		// show_existing_frame
		return false
	}
	bit--
	return b>>bit&1 == 0
}

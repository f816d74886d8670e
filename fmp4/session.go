// Package fmp4 reads fragmented MP4 files into a demux session. Samples come
// from the moof/mdat fragments; the track table from the moov box.
package fmp4

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	gomp4 "github.com/abema/go-mp4"
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h265"
	"github.com/bluenviron/mediacommon/v2/pkg/formats/fmp4"
	"github.com/bluenviron/mediacommon/v2/pkg/formats/mp4"
	"github.com/mengelbart/vedit/internal/sampletable"
	"github.com/mengelbart/vedit/media"
)

var ErrNoInit = errors.New("missing ftyp/moov boxes")

// boxMeta holds what mediacommon does not expose from the track boxes.
type boxMeta struct {
	rotation int
	bitrate  int
}

// NewSession reads the whole fragmented MP4 stream from r.
func NewSession(r io.Reader) (*sampletable.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	initData, fragments, err := split(data)
	if err != nil {
		return nil, err
	}
	if len(initData) == 0 {
		return nil, ErrNoInit
	}

	var init fmp4.Init
	if err = init.Unmarshal(bytes.NewReader(initData)); err != nil {
		return nil, fmt.Errorf("failed to parse init segment: %w", err)
	}
	meta := readBoxMeta(bytes.NewReader(initData))

	var parts fmp4.Parts
	if len(fragments) > 0 {
		if err = parts.Unmarshal(fragments); err != nil {
			return nil, fmt.Errorf("failed to parse fragments: %w", err)
		}
	}

	tracks := make([]sampletable.Track, len(init.Tracks))
	index := make(map[int]int, len(init.Tracks))
	for i, t := range init.Tracks {
		index[t.ID] = i
		tracks[i].Format = trackFormat(t, meta[t.ID])
	}

	ends := make([]int64, len(tracks))
	maxSizes := make([]int, len(tracks))
	for _, part := range parts {
		for _, pt := range part.Tracks {
			i, ok := index[pt.ID]
			if !ok {
				slog.Debug("skipping fragment of unknown track", "track-id", pt.ID)
				continue
			}
			timeScale := int64(init.Tracks[i].TimeScale)
			dts := int64(pt.BaseTime)
			for _, s := range pt.Samples {
				tracks[i].Samples = append(tracks[i].Samples, sampletable.Sample{
					Time:       toMicros(dts+int64(s.PTSOffset), timeScale),
					DecodeTime: toMicros(dts, timeScale),
					Sync:       !s.IsNonSyncSample,
					Size:       len(s.Payload),
				})
				maxSizes[i] = max(maxSizes[i], len(s.Payload))
				dts += int64(s.Duration)
			}
			ends[i] = max(ends[i], toMicros(dts, timeScale))
		}
	}
	for i := range tracks {
		if maxSizes[i] > 0 {
			tracks[i].Format.SetInteger(media.KeyMaxInputSize, maxSizes[i])
		}
		if ends[i] > 0 {
			tracks[i].Format.SetInteger(media.KeyDuration, int(ends[i]))
		}
		slog.Debug("read fmp4 track", "track", i, "samples", len(tracks[i].Samples), "format", tracks[i].Format)
	}
	return sampletable.New(tracks), nil
}

func toMicros(v, timeScale int64) int64 {
	if timeScale <= 0 {
		return 0
	}
	return v * 1_000_000 / timeScale
}

// split separates the top level boxes into the init segment (ftyp, moov) and
// the media fragments (moof, mdat). Other boxes are dropped.
func split(data []byte) ([]byte, []byte, error) {
	var initData, fragments []byte
	_, err := gomp4.ReadBoxStructure(bytes.NewReader(data), func(h *gomp4.ReadHandle) (any, error) {
		start := h.BoxInfo.Offset
		end := min(start+h.BoxInfo.Size, uint64(len(data)))
		switch h.BoxInfo.Type {
		case gomp4.BoxTypeFtyp(), gomp4.BoxTypeMoov():
			initData = append(initData, data[start:end]...)
		case gomp4.BoxTypeMoof(), gomp4.BoxTypeMdat():
			fragments = append(fragments, data[start:end]...)
		default:
			slog.Debug("skipping top level box", "type", h.BoxInfo.Type.String())
		}
		return nil, nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read box structure: %w", err)
	}
	return initData, fragments, nil
}

// readBoxMeta reads rotation and bitrate per track ID. Failures leave the
// values unset.
func readBoxMeta(r io.ReadSeeker) map[int]boxMeta {
	meta := map[int]boxMeta{}
	traks, err := gomp4.ExtractBox(r, nil, gomp4.BoxPath{gomp4.BoxTypeMoov(), gomp4.BoxTypeTrak()})
	if err != nil {
		slog.Debug("failed to extract trak boxes", "error", err)
		return meta
	}
	for _, trak := range traks {
		tkhds, err := gomp4.ExtractBoxWithPayload(r, trak, gomp4.BoxPath{gomp4.BoxTypeTkhd()})
		if err != nil || len(tkhds) == 0 {
			slog.Debug("failed to extract tkhd", "error", err)
			continue
		}
		tkhd, ok := tkhds[0].Payload.(*gomp4.Tkhd)
		if !ok {
			continue
		}
		m := boxMeta{rotation: rotation(tkhd.Matrix)}

		esdsPath := gomp4.BoxPath{
			gomp4.BoxTypeMdia(), gomp4.BoxTypeMinf(), gomp4.BoxTypeStbl(),
			gomp4.BoxTypeStsd(), gomp4.BoxTypeMp4a(), gomp4.BoxTypeEsds(),
		}
		if boxes, err := gomp4.ExtractBoxWithPayload(r, trak, esdsPath); err == nil {
			for _, b := range boxes {
				if esds, ok := b.Payload.(*gomp4.Esds); ok {
					m.bitrate = avgBitrate(esds)
				}
			}
		}
		meta[int(tkhd.TrackID)] = m
	}
	return meta
}

func avgBitrate(esds *gomp4.Esds) int {
	for _, d := range esds.Descriptors {
		if d.DecoderConfigDescriptor != nil && d.DecoderConfigDescriptor.AvgBitrate > 0 {
			return int(d.DecoderConfigDescriptor.AvgBitrate)
		}
	}
	return 0
}

// rotation maps a tkhd transformation matrix to clockwise degrees.
func rotation(m [9]int32) int {
	a, b, c, d := m[0], m[1], m[3], m[4]
	switch {
	case a == 0 && b > 0 && c < 0:
		return 90
	case a < 0 && d < 0:
		return 180
	case a == 0 && b < 0 && c > 0:
		return 270
	}
	return 0
}

func trackFormat(t *fmp4.InitTrack, meta boxMeta) *media.Format {
	f := media.NewFormat()
	if meta.rotation != 0 {
		f.SetInteger(media.KeyRotation, meta.rotation)
	}
	if meta.bitrate > 0 {
		f.SetInteger(media.KeyBitRate, meta.bitrate)
	}

	switch c := t.Codec.(type) {
	case *mp4.CodecH264:
		f.SetString(media.KeyMIME, "video/avc")
		var sps h264.SPS
		if err := sps.Unmarshal(c.SPS); err == nil {
			setSize(f, sps.Width(), sps.Height())
		}
	case *mp4.CodecH265:
		f.SetString(media.KeyMIME, "video/hevc")
		var sps h265.SPS
		if err := sps.Unmarshal(c.SPS); err == nil {
			setSize(f, sps.Width(), sps.Height())
		}
	case *mp4.CodecVP9:
		f.SetString(media.KeyMIME, "video/x-vnd.on2.vp9")
		setSize(f, c.Width, c.Height)
	case *mp4.CodecAV1:
		f.SetString(media.KeyMIME, "video/av01")
	case *mp4.CodecMPEG4Audio:
		f.SetString(media.KeyMIME, "audio/mp4a-latm")
		f.SetInteger(media.KeySampleRate, c.Config.SampleRate)
		f.SetInteger(media.KeyChannelCount, c.Config.ChannelCount)
	case *mp4.CodecOpus:
		f.SetString(media.KeyMIME, "audio/opus")
		f.SetInteger(media.KeySampleRate, 48000)
		f.SetInteger(media.KeyChannelCount, c.ChannelCount)
	case *mp4.CodecAC3:
		f.SetString(media.KeyMIME, "audio/ac3")
		f.SetInteger(media.KeySampleRate, c.SampleRate)
		f.SetInteger(media.KeyChannelCount, c.ChannelCount)
	default:
		f.SetString(media.KeyMIME, "application/octet-stream")
	}
	return f
}

func setSize(f *media.Format, width, height int) {
	f.SetInteger(media.KeyWidth, width)
	f.SetInteger(media.KeyHeight, height)
}

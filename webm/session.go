// Package webm reads WebM and Matroska files into a demux session.
package webm

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/at-wat/ebml-go"
	"github.com/at-wat/ebml-go/webm"
	"github.com/mengelbart/vedit/internal/sampletable"
	"github.com/mengelbart/vedit/media"
)

const (
	trackTypeVideo = 1
	trackTypeAudio = 2

	defaultTimecodeScale = 1_000_000
)

type file struct {
	Header  webm.EBMLHeader `ebml:"EBML"`
	Segment webm.Segment    `ebml:"Segment"`
}

var codecMIMEs = map[string]string{
	"V_VP8":            "video/x-vnd.on2.vp8",
	"V_VP9":            "video/x-vnd.on2.vp9",
	"V_AV1":            "video/av01",
	"V_MPEG4/ISO/AVC":  "video/avc",
	"V_MPEGH/ISO/HEVC": "video/hevc",
	"A_OPUS":           "audio/opus",
	"A_VORBIS":         "audio/vorbis",
	"A_AAC":            "audio/mp4a-latm",
}

// MIME maps a Matroska codec ID to a MIME type. AAC codec IDs carry a
// profile suffix, e.g. A_AAC/MPEG4/LC.
func MIME(codecID string) string {
	if m, ok := codecMIMEs[codecID]; ok {
		return m
	}
	if strings.HasPrefix(codecID, "A_AAC") {
		return codecMIMEs["A_AAC"]
	}
	return "application/octet-stream"
}

// NewSession decodes r. Only SimpleBlocks are read; the keyframe flag of a
// SimpleBlock marks sync samples.
func NewSession(r io.Reader) (*sampletable.Table, error) {
	var f file
	if err := ebml.Unmarshal(r, &f); err != nil {
		return nil, fmt.Errorf("failed to decode webm: %w", err)
	}
	if dt := f.Header.DocType; dt != "webm" && dt != "matroska" {
		return nil, fmt.Errorf("unexpected ebml doc type %q", dt)
	}
	seg := f.Segment
	scale := int64(seg.Info.TimecodeScale)
	if scale == 0 {
		scale = defaultTimecodeScale
	}
	toMicros := func(ticks int64) int64 {
		return ticks * scale / 1000
	}

	tracks := make([]sampletable.Track, len(seg.Tracks.TrackEntry))
	index := make(map[uint64]int, len(tracks))
	for i, entry := range seg.Tracks.TrackEntry {
		index[entry.TrackNumber] = i
		tracks[i].Format = trackFormat(entry)
	}

	maxSizes := make([]int, len(tracks))
	for _, cluster := range seg.Cluster {
		for _, block := range cluster.SimpleBlock {
			i, ok := index[block.TrackNumber]
			if !ok {
				slog.Debug("skipping block of unknown track", "track-number", block.TrackNumber)
				continue
			}
			size := 0
			for _, frame := range block.Data {
				size += len(frame)
			}
			ts := toMicros(int64(cluster.Timecode) + int64(block.Timecode))
			tracks[i].Samples = append(tracks[i].Samples, sampletable.Sample{
				Time:       ts,
				DecodeTime: ts,
				Sync:       block.Keyframe,
				Size:       size,
			})
			maxSizes[i] = max(maxSizes[i], size)
		}
	}

	segmentDuration := int64(seg.Info.Duration * float64(scale) / 1000)
	for i, t := range tracks {
		if maxSizes[i] > 0 {
			t.Format.SetInteger(media.KeyMaxInputSize, maxSizes[i])
		}
		duration := segmentDuration
		if duration <= 0 && len(t.Samples) > 0 {
			duration = t.Samples[len(t.Samples)-1].Time + int64(seg.Tracks.TrackEntry[i].DefaultDuration/1000)
		}
		if duration > 0 {
			t.Format.SetInteger(media.KeyDuration, int(duration))
		}
		slog.Debug("read webm track", "track", i, "samples", len(t.Samples), "format", t.Format)
	}
	return sampletable.New(tracks), nil
}

func trackFormat(entry webm.TrackEntry) *media.Format {
	f := media.NewFormat()
	f.SetString(media.KeyMIME, MIME(entry.CodecID))
	switch entry.TrackType {
	case trackTypeVideo:
		if entry.Video != nil {
			f.SetInteger(media.KeyWidth, int(entry.Video.PixelWidth))
			f.SetInteger(media.KeyHeight, int(entry.Video.PixelHeight))
		}
		if entry.DefaultDuration > 0 {
			f.SetInteger(media.KeyFrameRate, int(1_000_000_000/entry.DefaultDuration))
		}
	case trackTypeAudio:
		if entry.Audio != nil {
			f.SetInteger(media.KeySampleRate, int(entry.Audio.SamplingFrequency))
			f.SetInteger(media.KeyChannelCount, int(entry.Audio.Channels))
		}
	}
	return f
}

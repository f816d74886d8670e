// Package sampletable implements demux.Session over sample tables that were
// read into memory by a container backend.
package sampletable

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/mengelbart/vedit/demux"
	"github.com/mengelbart/vedit/media"
)

var ErrClosed = errors.New("session closed")

// Sample describes one access unit. Times are in microseconds.
type Sample struct {
	Time       int64
	DecodeTime int64
	Sync       bool
	Size       int
}

// Track is a format plus its samples in decode order.
type Track struct {
	Format  *media.Format
	Samples []Sample
}

type ref struct {
	track  int
	sample int
}

// Table is a demux.Session. Samples of all selected tracks are merged into a
// single decode ordered list; ties are broken by track index.
type Table struct {
	tracks   []Track
	selected []bool
	order    []ref
	position [][]int
	cursor   int
	closed   bool
}

func New(tracks []Track) *Table {
	t := &Table{
		tracks:   tracks,
		selected: make([]bool, len(tracks)),
		position: make([][]int, len(tracks)),
	}
	t.rebuild()
	return t
}

func (t *Table) TrackCount() int {
	return len(t.tracks)
}

func (t *Table) TrackFormat(index int) (*media.Format, error) {
	if t.closed {
		return nil, ErrClosed
	}
	if index < 0 || index >= len(t.tracks) {
		return nil, fmt.Errorf("%w: %v not in [0, %v)", demux.ErrTrackOutOfRange, index, len(t.tracks))
	}
	return t.tracks[index].Format, nil
}

func (t *Table) SelectTrack(index int) error {
	return t.setSelected(index, true)
}

func (t *Table) UnselectTrack(index int) error {
	return t.setSelected(index, false)
}

func (t *Table) setSelected(index int, selected bool) error {
	if t.closed {
		return ErrClosed
	}
	if index < 0 || index >= len(t.tracks) {
		return fmt.Errorf("%w: %v not in [0, %v)", demux.ErrTrackOutOfRange, index, len(t.tracks))
	}
	if t.selected[index] == selected {
		return nil
	}
	t.selected[index] = selected
	t.rebuild()
	return nil
}

func (t *Table) current() (Sample, int, bool) {
	if t.closed || t.cursor >= len(t.order) {
		return Sample{}, -1, false
	}
	r := t.order[t.cursor]
	return t.tracks[r.track].Samples[r.sample], r.track, true
}

func (t *Table) SampleTrackIndex() int {
	_, track, _ := t.current()
	return track
}

func (t *Table) SampleTime() int64 {
	s, _, ok := t.current()
	if !ok {
		return -1
	}
	return s.Time
}

func (t *Table) SampleSize() int {
	s, _, ok := t.current()
	if !ok {
		return -1
	}
	return s.Size
}

func (t *Table) SampleFlags() demux.SampleFlags {
	s, _, ok := t.current()
	if !ok || !s.Sync {
		return 0
	}
	return demux.SampleFlagSync
}

func (t *Table) Advance() bool {
	if t.closed || t.cursor >= len(t.order) {
		return false
	}
	t.cursor++
	return t.cursor < len(t.order)
}

// SeekTo places the cursor on the earliest of the sync samples chosen by mode
// for each selected track.
func (t *Table) SeekTo(timeUs int64, mode demux.SeekMode) error {
	if t.closed {
		return ErrClosed
	}
	timeUs = max(timeUs, 0)
	best := len(t.order)
	for i, track := range t.tracks {
		if !t.selected[i] || len(track.Samples) == 0 {
			continue
		}
		s := syncSample(track.Samples, timeUs, mode)
		best = min(best, t.position[i][s])
	}
	t.cursor = best
	return nil
}

func (t *Table) Close() error {
	t.closed = true
	return nil
}

func (t *Table) decodeTime(r ref) int64 {
	return t.tracks[r.track].Samples[r.sample].DecodeTime
}

func (t *Table) rebuild() {
	at := int64(-1)
	atEnd := false
	if t.cursor < len(t.order) {
		at = t.decodeTime(t.order[t.cursor])
	} else if len(t.order) > 0 {
		atEnd = true
	}

	t.order = t.order[:0]
	for i, track := range t.tracks {
		t.position[i] = nil
		if !t.selected[i] {
			continue
		}
		for j := range track.Samples {
			t.order = append(t.order, ref{track: i, sample: j})
		}
	}
	slices.SortStableFunc(t.order, func(a, b ref) int {
		return cmp.Or(
			cmp.Compare(t.decodeTime(a), t.decodeTime(b)),
			cmp.Compare(a.track, b.track),
		)
	})
	for i, track := range t.tracks {
		if t.selected[i] {
			t.position[i] = make([]int, len(track.Samples))
		}
	}
	for p, r := range t.order {
		t.position[r.track][r.sample] = p
	}

	switch {
	case atEnd:
		t.cursor = len(t.order)
	case at < 0:
		t.cursor = 0
	default:
		t.cursor = sort.Search(len(t.order), func(i int) bool {
			return t.decodeTime(t.order[i]) >= at
		})
	}
}

func syncSample(samples []Sample, at int64, mode demux.SeekMode) int {
	prev, next := -1, -1
	for i, s := range samples {
		if !s.Sync {
			continue
		}
		if s.Time <= at {
			prev = i
		}
		if s.Time >= at && next < 0 {
			next = i
		}
	}
	switch mode {
	case demux.SeekNextSync:
		if next >= 0 {
			return next
		}
	case demux.SeekClosestSync:
		if prev >= 0 && next >= 0 {
			if next != prev && samples[next].Time-at < at-samples[prev].Time {
				return next
			}
			return prev
		}
	}
	if prev >= 0 {
		return prev
	}
	if next >= 0 {
		return next
	}
	return 0
}

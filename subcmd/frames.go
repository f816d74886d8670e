package subcmd

import (
	"bufio"
	"fmt"

	"github.com/mengelbart/vedit/cmdmain"
	"github.com/mengelbart/vedit/demux"
	"github.com/mengelbart/vedit/flags"
	"github.com/mengelbart/vedit/media"
)

func init() {
	cmdmain.RegisterSubCmd("frames", func() cmdmain.SubCmd { return new(Frames) })
}

// Frames prints the sample timestamps of one track.
type Frames struct{}

func (f *Frames) Help() string {
	return "Print sample timestamps of a track in microseconds"
}

func (f *Frames) Exec(cmd string, args []string) error {
	fs := newFlagSet("frames", f.Help(), cmd)
	flags.RegisterInto(fs,
		flags.InputFlag,
		flags.OutputFlag,
		flags.ConfigFlag,
		flags.TrackFlag,
		flags.SeekTimeFlag,
		flags.SeekModeFlag,
	)
	fs.Parse(args)

	kind, err := media.ParseTrackKind(flags.Track)
	if err != nil {
		return err
	}
	mode, err := demux.ParseSeekMode(flags.SeekMode)
	if err != nil {
		return err
	}
	locator, _, err := loadLocator()
	if err != nil {
		return err
	}
	s, _, err := openInput()
	if err != nil {
		return err
	}
	defer demux.CloseSession(s)

	track := locator.FindTrack(s, kind)
	if !track.Ok() {
		return track.Err
	}
	if err = s.SelectTrack(track.Value); err != nil {
		return err
	}
	if flags.SeekTime >= 0 {
		if err = s.SeekTo(int64(flags.SeekTime)*1000, mode); err != nil {
			return err
		}
	}

	out, err := openOutput()
	if err != nil {
		return err
	}
	defer demux.Close(out)
	w := bufio.NewWriter(out)
	for _, ts := range locator.FrameTimestamps(s) {
		fmt.Fprintln(w, ts)
	}
	return w.Flush()
}

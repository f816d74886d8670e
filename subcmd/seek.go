package subcmd

import (
	"fmt"
	"log/slog"

	"github.com/mengelbart/vedit/cmdmain"
	"github.com/mengelbart/vedit/demux"
	"github.com/mengelbart/vedit/flags"
	"github.com/mengelbart/vedit/media"
)

func init() {
	cmdmain.RegisterSubCmd("seek", func() cmdmain.SubCmd { return new(Seek) })
}

// Seek locates the last sync sample of a track.
type Seek struct{}

func (s *Seek) Help() string {
	return "Seek to the last sync sample of a track"
}

func (s *Seek) Exec(cmd string, args []string) error {
	fs := newFlagSet("seek", s.Help(), cmd)
	flags.RegisterInto(fs,
		flags.InputFlag,
		flags.ConfigFlag,
		flags.TrackFlag,
		flags.DurationFlag,
	)
	fs.Parse(args)

	kind, err := media.ParseTrackKind(flags.Track)
	if err != nil {
		return err
	}
	locator, _, err := loadLocator()
	if err != nil {
		return err
	}
	session, _, err := openInput()
	if err != nil {
		return err
	}
	defer demux.CloseSession(session)

	durationMs := int64(flags.Duration)
	if durationMs < 0 {
		res := locator.Duration(flags.Input)
		if !res.Ok() {
			if res.Err != nil {
				return fmt.Errorf("duration unavailable: %w", res.Err)
			}
			return fmt.Errorf("duration unavailable: %v", res.Status)
		}
		durationMs = res.Value
	}
	track := locator.FindTrack(session, kind)
	if !track.Ok() {
		return track.Err
	}
	seeks, err := locator.SeekToLastFrame(session, track.Value, durationMs)
	if err != nil {
		return err
	}
	slog.Info("seek done", "track", track.Value, "duration-ms", durationMs, "seeks", seeks)
	fmt.Printf("track %v: sample at %vus (sync=%v) after %v seeks\n",
		session.SampleTrackIndex(),
		session.SampleTime(),
		session.SampleFlags()&demux.SampleFlagSync != 0,
		seeks,
	)
	return nil
}

package subcmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mengelbart/vedit/cmdmain"
	"github.com/mengelbart/vedit/container"
	"github.com/mengelbart/vedit/demux"
	"github.com/mengelbart/vedit/flags"
	"github.com/mengelbart/vedit/media"
)

func init() {
	cmdmain.RegisterSubCmd("probe", func() cmdmain.SubCmd { return new(Probe) })
}

// Probe prints the container metadata and the tracks of a file.
type Probe struct{}

func (p *Probe) Help() string {
	return "Print container metadata and tracks"
}

func (p *Probe) Exec(cmd string, args []string) error {
	fs := newFlagSet("probe", p.Help(), cmd)
	flags.RegisterInto(fs, flags.InputFlag, flags.ConfigFlag)
	fs.Parse(args)

	locator, cfg, err := loadLocator()
	if err != nil {
		return err
	}
	s, format, err := openInput()
	if err != nil {
		return err
	}
	defer demux.CloseSession(s)

	file, err := os.Open(flags.Input)
	if err != nil {
		return err
	}
	defer demux.Close(file)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "file:\t%v\n", flags.Input)
	fmt.Fprintf(w, "container:\t%v\n", format)
	fmt.Fprintf(w, "duration-ms:\t%v\n", locator.DurationMs(flags.Input))
	if size := locator.VideoSizeOrNil(file); size != nil {
		fmt.Fprintf(w, "video-size:\t%v\n", size)
	}
	if rotation, err := locator.Rotation(s); err == nil {
		fmt.Fprintf(w, "rotation:\t%v\n", rotation)
	}
	for _, kind := range []media.TrackKind{media.Video, media.Audio} {
		res := locator.FindTrack(s, kind)
		fmt.Fprintf(w, "%v-track:\t%v (%v, weight %.1f)\n", kind, res.Or(media.NoTrackIndex), res.Status, cfg.Demux.Weight(kind))
	}
	if err = w.Flush(); err != nil {
		return err
	}
	return printTracks(os.Stdout, locator, s)
}

func printTracks(out io.Writer, locator *demux.Locator, s demux.Session) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\nINDEX\tKIND\tMIME\tFORMAT")
	for i := range s.TrackCount() {
		d, err := locator.Describe(s, i)
		if err != nil {
			return err
		}
		f, err := locator.Format(s, i)
		if err != nil {
			return err
		}
		var attrs []string
		for _, key := range f.Keys() {
			if key == media.KeyMIME {
				continue
			}
			if v, err := f.Integer(key); err == nil {
				attrs = append(attrs, fmt.Sprintf("%v=%v", key, v))
			} else if v, err := f.String(key); err == nil {
				attrs = append(attrs, fmt.Sprintf("%v=%v", key, v))
			}
		}
		if media.Audio.Matches(d.MIME) {
			attrs = append(attrs,
				fmt.Sprintf("effective-bitrate=%v", locator.AudioBitrate(f)),
				fmt.Sprintf("effective-channels=%v", locator.ChannelCount(f)),
			)
			if _, err := locator.SampleRate(f); err != nil {
				attrs = append(attrs, "sample-rate=unknown")
			}
		}
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", d.Index, d.Kind, d.MIME, strings.Join(attrs, " "))
	}
	return w.Flush()
}

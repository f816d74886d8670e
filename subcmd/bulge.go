package subcmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mengelbart/vedit/cmdmain"
	"github.com/mengelbart/vedit/codec"
	"github.com/mengelbart/vedit/demux"
	"github.com/mengelbart/vedit/filter"
	"github.com/mengelbart/vedit/flags"
	"github.com/mengelbart/vedit/internal/config"
)

func init() {
	cmdmain.RegisterSubCmd("bulge", func() cmdmain.SubCmd { return new(Bulge) })
}

// Bulge applies the bulge distortion to every frame of a Y4M file.
type Bulge struct{}

func (b *Bulge) Help() string {
	return "Apply a bulge distortion to a Y4M video"
}

func (b *Bulge) Exec(cmd string, args []string) error {
	fs := newFlagSet("bulge", b.Help(), cmd)
	flags.RegisterInto(fs,
		flags.InputFlag,
		flags.OutputFlag,
		flags.ConfigFlag,
		flags.CenterXFlag,
		flags.CenterYFlag,
		flags.RadiusFlag,
		flags.ScaleFlag,
	)
	fs.Parse(args)

	cfg, err := config.Load(flags.Config)
	if err != nil {
		return err
	}
	params := cfg.Bulge
	for name, p := range map[flags.FlagName]struct {
		dst *float32
		v   float64
	}{
		flags.CenterXFlag: {&params.CenterX, flags.CenterX},
		flags.CenterYFlag: {&params.CenterY, flags.CenterY},
		flags.RadiusFlag:  {&params.Radius, flags.Radius},
		flags.ScaleFlag:   {&params.Scale, flags.Scale},
	} {
		if flags.IsSet(fs, name) {
			*p.dst = float32(p.v)
		}
	}
	if params.Radius == 0 {
		return errors.New("bulge radius must not be 0")
	}

	if flags.Input == "" {
		return errMissingInput
	}
	in, err := os.Open(flags.Input)
	if err != nil {
		return err
	}
	defer demux.Close(in)
	source, err := codec.NewY4MSource(in)
	if err != nil {
		return err
	}

	out, err := openOutput()
	if err != nil {
		return err
	}
	return applyBulge(source, out, params)
}

// applyBulge filters every frame of source into out and closes out. A
// failure to close out is returned.
func applyBulge(source *codec.Y4MSource, out io.WriteCloser, params filter.BulgeParams) (err error) {
	info := source.GetInfo()
	sink := codec.NewY4MSink(out, info.TimebaseNum, info.TimebaseDen)
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output: %w", cerr)
		}
	}()

	processor := filter.NewProcessor(filter.NewBulgeDistortionWith(params))
	defer demux.Close(processor)
	writer, err := codec.Chain(info, sink, processor)
	if err != nil {
		return err
	}

	slog.Info("applying bulge", "params", fmt.Sprintf("%+v", params), "width", info.Width, "height", info.Height)
	for {
		frame, attrs, err := source.GetFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if err = writer.Write(frame, attrs); err != nil {
			return err
		}
	}
	slog.Info("bulge done", "frames", processor.Frames())
	return nil
}

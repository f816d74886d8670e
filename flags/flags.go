// Package flags implements command-line flags for vedit.
//
// The design idea is taken from [upspin.io/flags], but most of the code is
// modified. This package uses a slightly modified version of [RegisterInto] and
// the internal [flags]-map. See [Upspin LICENSE] for upspins copyright and
// license information.
//
// [upspin.io/flags]: https://github.com/upspin/upspin/tree/334f107fe3d98225d7adfbb35b74e066fbca9875/flags
// [Upspin LICENSE]: https://github.com/upspin/upspin/blob/334f107fe3d98225d7adfbb35b74e066fbca9875/LICENSE
package flags

import (
	"flag"
	"fmt"

	"github.com/mengelbart/vedit/filter"
)

type FlagName string

// flag keys
const (
	InputFlag  FlagName = "in"
	OutputFlag FlagName = "out"
	ConfigFlag FlagName = "config"

	TrackFlag    FlagName = "track"
	DurationFlag FlagName = "duration"
	SeekModeFlag FlagName = "mode"
	SeekTimeFlag FlagName = "at"

	CenterXFlag FlagName = "center-x"
	CenterYFlag FlagName = "center-y"
	RadiusFlag  FlagName = "radius"
	ScaleFlag   FlagName = "scale"
)

var defaultBulge = filter.DefaultBulgeParams()

// Flag vars
var (
	Input  = ""
	Output = ""

	// Config is an optional YAML file, see internal/config.
	Config = ""

	Track = "video"

	// Duration in milliseconds, -1 uses the container duration
	Duration = -1

	SeekMode = "previous"

	// SeekTime in milliseconds, -1 disables the explicit seek
	SeekTime = -1

	CenterX = float64(defaultBulge.CenterX)
	CenterY = float64(defaultBulge.CenterY)
	Radius  = float64(defaultBulge.Radius)
	Scale   = float64(defaultBulge.Scale)
)

type flagVar func(*flag.FlagSet)

func stringVar(p *string, name FlagName, defaultValue *string, usage string) func(*flag.FlagSet) {
	return func(fs *flag.FlagSet) {
		fs.StringVar(p, string(name), *defaultValue, usage)
	}
}

func intVar(p *int, name FlagName, defaultValue *int, usage string) func(*flag.FlagSet) {
	return func(fs *flag.FlagSet) {
		fs.IntVar(p, string(name), *defaultValue, usage)
	}
}

func float64Var(p *float64, name FlagName, defaultValue *float64, usage string) func(*flag.FlagSet) {
	return func(fs *flag.FlagSet) {
		fs.Float64Var(p, string(name), *defaultValue, usage)
	}
}

var flags = map[FlagName]flagVar{
	// IO flags
	InputFlag:  stringVar(&Input, InputFlag, &Input, "Input file"),
	OutputFlag: stringVar(&Output, OutputFlag, &Output, "Output file, empty string means stdout"),
	ConfigFlag: stringVar(&Config, ConfigFlag, &Config, "Config file (YAML). Defaults to ./vedit.yaml or $HOME/.vedit/vedit.yaml if present"),

	// demux flags
	TrackFlag:    stringVar(&Track, TrackFlag, &Track, "Track kind to select (video, audio)"),
	DurationFlag: intVar(&Duration, DurationFlag, &Duration, "Duration in milliseconds, -1 reads it from the container"),
	SeekModeFlag: stringVar(&SeekMode, SeekModeFlag, &SeekMode, "Sync sample selection (previous, next, closest)"),
	SeekTimeFlag: intVar(&SeekTime, SeekTimeFlag, &SeekTime, "Seek to this position in milliseconds before reading, -1 starts at the beginning"),

	// bulge flags
	CenterXFlag: float64Var(&CenterX, CenterXFlag, &CenterX, "Horizontal bulge center in normalized coordinates"),
	CenterYFlag: float64Var(&CenterY, CenterYFlag, &CenterY, "Vertical bulge center in normalized coordinates"),
	RadiusFlag:  float64Var(&Radius, RadiusFlag, &Radius, "Bulge radius in normalized coordinates, must not be 0"),
	ScaleFlag:   float64Var(&Scale, ScaleFlag, &Scale, "Bulge strength"),
}

func RegisterInto(fs *flag.FlagSet, names ...FlagName) {
	if len(names) == 0 {
		for _, f := range flags {
			f(fs)
		}
	} else {
		for _, n := range names {
			f, ok := flags[n]
			if !ok {
				panic(fmt.Sprintf("unknown flag: %q", n))
			}
			f(fs)
		}
	}
}

// IsSet reports whether flag name was given on the command line of fs.
func IsSet(fs *flag.FlagSet, name FlagName) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == string(name) {
			set = true
		}
	})
	return set
}

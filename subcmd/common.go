package subcmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mengelbart/vedit/container"
	"github.com/mengelbart/vedit/demux"
	"github.com/mengelbart/vedit/flags"
	"github.com/mengelbart/vedit/internal/config"
	"github.com/mengelbart/vedit/internal/sampletable"
)

var errMissingInput = errors.New("missing input file, use -in")

func newFlagSet(name, help, cmd string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `%v

Usage:
	%v %v [flags]

Flags:
`, help, cmd, name)
		fs.PrintDefaults()
		fmt.Fprintln(os.Stderr)
	}
	return fs
}

func loadLocator() (*demux.Locator, config.Config, error) {
	cfg, err := config.Load(flags.Config)
	if err != nil {
		return nil, cfg, err
	}
	return demux.NewLocator(cfg.Demux, container.NewRetriever, nil), cfg, nil
}

func openInput() (*sampletable.Table, container.Format, error) {
	if flags.Input == "" {
		return nil, container.Unknown, errMissingInput
	}
	return container.Open(flags.Input)
}

// openOutput returns stdout if flags.Output is empty.
func openOutput() (io.WriteCloser, error) {
	if flags.Output == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(flags.Output)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

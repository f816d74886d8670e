// Package cmdmain implements commands and subcommands.
//
// The design idea is taken from [perkeep/cmdmain], but most of the code is
// modified. This package uses the [RegisterSubCmd] to allow users to add new
// subcommands. The implementation uses the same mechanism as perkeep. See
// [Perkeep LICENSE] for perkeeps copyright and license information.
//
// [perkeep/cmdmain]: https://github.com/perkeep/perkeep/tree/56726780f66b5654c1d7c01dc85b0e686ddbffd2/pkg/cmdmain
// [Perkeep LICENSE]: https://github.com/perkeep/perkeep/blob/56726780f66b5654c1d7c01dc85b0e686ddbffd2/COPYING
package cmdmain

import (
	"flag"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"slices"

	"github.com/mengelbart/vedit/flags"
	"github.com/mengelbart/vedit/internal/config"
	"github.com/mengelbart/vedit/internal/logging"
)

const (
	logFormatFlag = "log-format"
	logLevelFlag  = "log-level"
)

var (
	logFormat string
	logLevel  string
	logFile   string
)

type SubCmd interface {
	Help() string
	Exec(cmd string, args []string) error
}

var (
	subCmds = map[string]SubCmd{}
)

func RegisterSubCmd(name string, makeSubCmd func() SubCmd) {
	if _, ok := subCmds[name]; ok {
		log.Fatalf("duplicate subcommand: %q", name)
	}
	subCmds[name] = makeSubCmd()
}

// Lookup returns the registered subcommand name.
func Lookup(name string) (SubCmd, bool) {
	c, ok := subCmds[name]
	return c, ok
}

func usage(name string) func() {
	return func() {
		fmt.Fprintf(os.Stderr, `%v inspects media containers and filters raw video frames

Usage:
	%v [flags] <command> [command flags]
`, name, name)

		fmt.Fprintln(os.Stderr, "\nCommands:")
		for _, name := range slices.Sorted(maps.Keys(subCmds)) {
			fmt.Fprintf(os.Stderr, "  %-8s %s\n", name, subCmds[name].Help())
		}

		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Run `vedit <command> -h` to show full help for a command")
	}
}

func Main() {
	flag.StringVar(&logFile, "logfile", "", "Log file, empty string means stderr")
	flag.StringVar(&logFormat, logFormatFlag, "text", "Logging format: text or json, overrides log.format")
	flag.StringVar(&logLevel, logLevelFlag, "info", "Logging level: debug, info, warn, error or a numeric slog.Level, overrides log.level")
	flags.RegisterInto(flag.CommandLine, flags.ConfigFlag)

	flag.Usage = usage(os.Args[0])
	flag.Parse()

	if len(flag.Args()) < 1 {
		fmt.Println("error: missing subcommand")
		flag.Usage()
		os.Exit(1)
	}

	var lf io.Writer = nil
	// use log file
	if logFile != "" {
		f, err := os.Create(logFile)
		if err != nil {
			fmt.Printf("failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		lf = f
	}
	cfg, err := config.Load(flags.Config)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := setupLogging(flag.CommandLine, cfg, lf); err != nil {
		fmt.Printf("invalid logging configuration: %v\n", err)
		os.Exit(1)
	}

	subCmd, ok := subCmds[flag.Arg(0)]
	if !ok {
		fmt.Println("error: unknown subcommand")
		flag.Usage()
		os.Exit(1)
	}

	subCmdArgs := flag.Args()[1:]
	if err := subCmd.Exec(os.Args[0], subCmdArgs); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging configures the default logger from cfg. Log flags given on
// the command line of fs take precedence.
func setupLogging(fs *flag.FlagSet, cfg config.Config, w io.Writer) error {
	format, level := cfg.LogFormat, cfg.LogLevel
	if flags.IsSet(fs, logFormatFlag) {
		format = fs.Lookup(logFormatFlag).Value.String()
	}
	if flags.IsSet(fs, logLevelFlag) {
		level = fs.Lookup(logLevelFlag).Value.String()
	}
	switch logging.Format(format) {
	case logging.TextFormat, logging.JSONFormat:
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	l, err := logging.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logging.Configure(logging.Format(format), l, w)
	return nil
}

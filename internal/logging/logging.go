package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Format string

const (
	TextFormat Format = "text"
	JSONFormat Format = "json"
)

func Configure(format Format, level slog.Level, writer io.Writer) {
	if writer == nil {
		writer = os.Stderr
	}
	slog.SetDefault(slog.New(NewHandler(format, level, writer)))
}

// NewHandler returns a text or JSON handler. It panics on unknown formats.
func NewHandler(format Format, level slog.Level, writer io.Writer) slog.Handler {
	ho := &slog.HandlerOptions{
		AddSource: false,
		Level:     level,
	}
	switch format {
	case JSONFormat:
		return slog.NewJSONHandler(writer, ho)
	case TextFormat:
		return slog.NewTextHandler(writer, ho)
	default:
		panic(fmt.Sprintf("unexpected logging.format: %#v", format))
	}
}

// ParseLevel accepts slog level names (debug, info, warn, error) and
// numeric levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		var n int
		if _, scanErr := fmt.Sscanf(s, "%d", &n); scanErr != nil {
			return 0, err
		}
		return slog.Level(n), nil
	}
	return level, nil
}

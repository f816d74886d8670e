package demux

import (
	"io"
	"log/slog"
)

// CloseSession releases s if it is not nil.
func CloseSession(s Session) {
	if s == nil {
		return
	}
	if err := s.Close(); err != nil {
		slog.Debug("failed to close session", "error", err)
	}
}

// CloseMuxer stops and releases m if it is not nil. Release runs even if
// Stop fails.
func CloseMuxer(m Muxer) error {
	if m == nil {
		return nil
	}
	stopErr := m.Stop()
	if err := m.Release(); err != nil {
		return err
	}
	return stopErr
}

// Close closes c and drops any error.
func Close(c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		slog.Debug("ignoring close error", "error", err)
	}
}

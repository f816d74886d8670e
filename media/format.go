package media

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
)

// Well-known format keys.
const (
	KeyMIME         = "mime"
	KeyRotation     = "rotation-degrees"
	KeyChannelCount = "channel-count"
	KeySampleRate   = "sample-rate"
	KeyBitRate      = "bitrate"
	KeyMaxInputSize = "max-input-size"
	KeyWidth        = "width"
	KeyHeight       = "height"
	KeyDuration     = "durationUs"
	KeyFrameRate    = "frame-rate"
	KeyLanguage     = "language"
)

var (
	ErrKeyNotFound = errors.New("format key not found")
	ErrKeyType     = errors.New("format key has a different type")
)

// Format is the key/value description of a single track. Values are either
// integers or strings.
type Format struct {
	values map[string]any
}

func NewFormat() *Format {
	return &Format{
		values: map[string]any{},
	}
}

func (f *Format) Contains(key string) bool {
	_, ok := f.values[key]
	return ok
}

func (f *Format) SetInteger(key string, v int) {
	f.values[key] = v
}

func (f *Format) SetString(key string, v string) {
	f.values[key] = v
}

// Integer returns the integer stored under key. It fails with ErrKeyNotFound
// if the key is absent.
func (f *Format) Integer(key string) (int, error) {
	v, ok := f.values[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	i, ok := v.(int)
	if !ok {
		return 0, fmt.Errorf("%w: %q is %T", ErrKeyType, key, v)
	}
	return i, nil
}

// IntegerOr returns the integer stored under key or fallback if the key is
// absent or not an integer.
func (f *Format) IntegerOr(key string, fallback int) int {
	i, err := f.Integer(key)
	if err != nil {
		return fallback
	}
	return i
}

func (f *Format) String(key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q is %T", ErrKeyType, key, v)
	}
	return s, nil
}

func (f *Format) Keys() []string {
	return slices.Sorted(maps.Keys(f.values))
}

// LogValue implements slog.LogValuer.
func (f *Format) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(f.values))
	for _, k := range f.Keys() {
		attrs = append(attrs, slog.Any(k, f.values[k]))
	}
	return slog.GroupValue(attrs...)
}

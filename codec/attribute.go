package codec

import (
	"errors"
	"fmt"
	"image"
	"time"
)

var (
	ErrAttributeMissing = errors.New("attribute not found")
	ErrAttributeType    = errors.New("attribute has wrong type")
)

type AttributeKey int

const (
	ChromaSubsampling AttributeKey = iota
	IsKeyFrame
	Width
	Height
	PTS
	FrameDuration
)

func (k AttributeKey) String() string {
	switch k {
	case ChromaSubsampling:
		return "chroma-subsampling"
	case IsKeyFrame:
		return "key-frame"
	case Width:
		return "width"
	case Height:
		return "height"
	case PTS:
		return "pts"
	case FrameDuration:
		return "frame-duration"
	}
	return fmt.Sprintf("attribute(%d)", int(k))
}

// Attributes travel with each frame through a pipeline. PTS is in
// microseconds.
type Attributes map[any]any

func attribute[T any](attrs Attributes, key AttributeKey) (T, error) {
	var zero T
	v, ok := attrs[key]
	if !ok {
		return zero, fmt.Errorf("%v: %w", key, ErrAttributeMissing)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%v is %T, want %T: %w", key, v, zero, ErrAttributeType)
	}
	return t, nil
}

func GetPTS(attrs Attributes) (int64, error) {
	return attribute[int64](attrs, PTS)
}

func GetFrameDuration(attrs Attributes) (time.Duration, error) {
	return attribute[time.Duration](attrs, FrameDuration)
}

func GetChromaSubsampling(attrs Attributes) (image.YCbCrSubsampleRatio, error) {
	return attribute[image.YCbCrSubsampleRatio](attrs, ChromaSubsampling)
}

func GetWidth(attrs Attributes) (int, error) {
	return attribute[int](attrs, Width)
}

func GetHeight(attrs Attributes) (int, error) {
	return attribute[int](attrs, Height)
}

// IsKey reports whether the frame is marked as a key frame.
func IsKey(attrs Attributes) bool {
	k, _ := attribute[bool](attrs, IsKeyFrame)
	return k
}

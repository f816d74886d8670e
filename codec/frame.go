package codec

import (
	"fmt"
	"image"
)

// ChromaSize returns the chroma plane size of a width x height frame with
// origin (0, 0).
func ChromaSize(width, height int, ratio image.YCbCrSubsampleRatio) (int, int) {
	switch ratio {
	case image.YCbCrSubsampleRatio422:
		return (width + 1) / 2, height
	case image.YCbCrSubsampleRatio420:
		return (width + 1) / 2, (height + 1) / 2
	case image.YCbCrSubsampleRatio440:
		return width, (height + 1) / 2
	case image.YCbCrSubsampleRatio411:
		return (width + 3) / 4, height
	case image.YCbCrSubsampleRatio410:
		return (width + 3) / 4, (height + 1) / 2
	default:
		return width, height
	}
}

// FrameSize returns the size in bytes of a planar frame.
func FrameSize(width, height int, ratio image.YCbCrSubsampleRatio) int {
	cw, ch := ChromaSize(width, height, ratio)
	return width*height + 2*cw*ch
}

// FrameToImage wraps the planes of a raw frame without copying.
func FrameToImage(b []byte, width, height int, ratio image.YCbCrSubsampleRatio) (*image.YCbCr, error) {
	if want := FrameSize(width, height, ratio); len(b) != want {
		return nil, fmt.Errorf("invalid frame size: got %v, want %v", len(b), want)
	}
	ySize := width * height
	cw, ch := ChromaSize(width, height, ratio)
	cSize := cw * ch
	return &image.YCbCr{
		Y:              b[:ySize:ySize],
		Cb:             b[ySize : ySize+cSize : ySize+cSize],
		Cr:             b[ySize+cSize:],
		YStride:        width,
		CStride:        cw,
		SubsampleRatio: ratio,
		Rect:           image.Rect(0, 0, width, height),
	}, nil
}

// ImageToFrame copies the planes of img into a raw frame.
func ImageToFrame(img *image.YCbCr) []byte {
	width, height := img.Rect.Dx(), img.Rect.Dy()
	cw, ch := ChromaSize(width, height, img.SubsampleRatio)
	b := make([]byte, 0, FrameSize(width, height, img.SubsampleRatio))
	for y := range height {
		off := img.YOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		b = append(b, img.Y[off:off+width]...)
	}
	for _, plane := range [][]byte{img.Cb, img.Cr} {
		for y := range ch {
			b = append(b, plane[y*img.CStride:y*img.CStride+cw]...)
		}
	}
	return b
}

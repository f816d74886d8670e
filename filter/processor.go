package filter

import (
	"fmt"
	"image"
	"log/slog"
	"maps"

	"github.com/mengelbart/vedit/codec"
)

// Drawer is a filter that can be set up in a Context and draw a Texture.
type Drawer interface {
	Setup(Context) error
	Draw(Texture) error
	Release()
}

// Processor runs a Drawer on raw YCbCr frames in a codec pipeline.
type Processor struct {
	drawer Drawer
	log    *slog.Logger
	frames int
}

func NewProcessor(d Drawer) *Processor {
	return &Processor{
		drawer: d,
		log:    slog.Default().With("component", "filter"),
	}
}

func (p *Processor) Link(next codec.Writer, info codec.Info) (codec.Writer, error) {
	ctx := NewSoftwareContext()
	if err := p.drawer.Setup(ctx); err != nil {
		return nil, fmt.Errorf("failed to set up filter: %w", err)
	}
	return codec.WriterFunc(func(b []byte, attrs codec.Attributes) error {
		width, height := int(info.Width), int(info.Height)
		if w, err := codec.GetWidth(attrs); err == nil {
			width = w
		}
		if h, err := codec.GetHeight(attrs); err == nil {
			height = h
		}
		ratio, err := codec.GetChromaSubsampling(attrs)
		if err != nil {
			ratio = image.YCbCrSubsampleRatio420
		}
		img, err := codec.FrameToImage(b, width, height, ratio)
		if err != nil {
			return err
		}
		if err = p.drawer.Draw(ImageTexture{img}); err != nil {
			return fmt.Errorf("failed to draw frame %v: %w", p.frames, err)
		}
		p.frames++
		out := ctx.Output()
		outAttrs := maps.Clone(attrs)
		if outAttrs == nil {
			outAttrs = codec.Attributes{}
		}
		outAttrs[codec.Width] = out.Rect.Dx()
		outAttrs[codec.Height] = out.Rect.Dy()
		p.log.Debug("filtered frame", "frame", p.frames, "width", width, "height", height)
		return next.Write(codec.ImageToFrame(out), outAttrs)
	}), nil
}

// Close releases the filter program.
func (p *Processor) Close() error {
	p.drawer.Release()
	return nil
}

func (p *Processor) Frames() int {
	return p.frames
}

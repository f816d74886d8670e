package filter

import (
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/mengelbart/vedit/codec"
)

// FragmentKernel maps the texture coordinate of an output pixel to the
// coordinate sampled from the bound texture.
type FragmentKernel func(u, v float32, uniforms Uniforms) (float32, float32)

type Uniforms interface {
	Float(name string) float32
	Vec2(name string) (float32, float32)
}

var (
	kernelsMu sync.RWMutex
	kernels   = map[string]FragmentKernel{}
)

// RegisterKernel makes fragment compilable by SoftwareContext. It panics if
// fragment is registered twice.
func RegisterKernel(fragment string, kernel FragmentKernel) {
	kernelsMu.Lock()
	defer kernelsMu.Unlock()
	if _, ok := kernels[fragment]; ok {
		panic("filter: kernel registered twice")
	}
	kernels[fragment] = kernel
}

func lookupKernel(fragment string) (FragmentKernel, bool) {
	kernelsMu.RLock()
	defer kernelsMu.RUnlock()
	k, ok := kernels[fragment]
	return k, ok
}

// ImageTexture is a Texture backed by a YCbCr image.
type ImageTexture struct {
	*image.YCbCr
}

func (t ImageTexture) Size() (int, int) {
	return t.Rect.Dx(), t.Rect.Dy()
}

// SoftwareContext runs programs on the CPU with nearest neighbour sampling,
// clamped to the texture edges. The vertex shader is ignored.
type SoftwareContext struct {
	output *image.YCbCr
}

func NewSoftwareContext() *SoftwareContext {
	return &SoftwareContext{}
}

func (c *SoftwareContext) CompileProgram(_, fragment string) (Program, error) {
	kernel, ok := lookupKernel(fragment)
	if !ok {
		return nil, ErrUnknownShader
	}
	return &softwareProgram{
		ctx:       c,
		kernel:    kernel,
		locations: map[string]int32{},
		values:    map[int32][2]float32{},
	}, nil
}

// Output returns the image rendered by the last draw call.
func (c *SoftwareContext) Output() *image.YCbCr {
	return c.output
}

type softwareProgram struct {
	ctx       *SoftwareContext
	kernel    FragmentKernel
	locations map[string]int32
	values    map[int32][2]float32
	texture   *image.YCbCr
	deleted   bool
}

func (p *softwareProgram) Use() {}

func (p *softwareProgram) UniformLocation(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := int32(len(p.locations))
	p.locations[name] = loc
	return loc
}

func (p *softwareProgram) Uniform1f(location int32, v float32) {
	if location >= 0 {
		p.values[location] = [2]float32{v, 0}
	}
}

func (p *softwareProgram) Uniform2f(location int32, x, y float32) {
	if location >= 0 {
		p.values[location] = [2]float32{x, y}
	}
}

func (p *softwareProgram) value(name string) [2]float32 {
	loc, ok := p.locations[name]
	if !ok {
		return [2]float32{}
	}
	return p.values[loc]
}

func (p *softwareProgram) Float(name string) float32 {
	return p.value(name)[0]
}

func (p *softwareProgram) Vec2(name string) (float32, float32) {
	v := p.value(name)
	return v[0], v[1]
}

func (p *softwareProgram) BindExternalTexture(tex Texture) error {
	switch t := tex.(type) {
	case ImageTexture:
		p.texture = t.YCbCr
	case *ImageTexture:
		p.texture = t.YCbCr
	default:
		return fmt.Errorf("%w: %T", ErrTextureType, tex)
	}
	return nil
}

func (p *softwareProgram) DrawArrays() error {
	if p.deleted {
		return ErrProgramDeleted
	}
	src := p.texture
	if src == nil {
		return ErrNoTexture
	}
	width, height := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewYCbCr(image.Rect(0, 0, width, height), src.SubsampleRatio)

	for y := range height {
		for x := range width {
			sx, sy := p.sample(x, y, width, height, width, height)
			out.Y[y*out.YStride+x] = src.Y[src.YOffset(src.Rect.Min.X+sx, src.Rect.Min.Y+sy)]
		}
	}
	cw, ch := codec.ChromaSize(width, height, src.SubsampleRatio)
	for y := range ch {
		for x := range cw {
			sx, sy := p.sample(x, y, cw, ch, width, height)
			off := src.COffset(src.Rect.Min.X+sx, src.Rect.Min.Y+sy)
			out.Cb[y*out.CStride+x] = src.Cb[off]
			out.Cr[y*out.CStride+x] = src.Cr[off]
		}
	}
	p.ctx.output = out
	return nil
}

// sample runs the kernel for the center of pixel (x, y) of a w x h plane and
// returns the luma pixel of the width x height texture it reads from.
func (p *softwareProgram) sample(x, y, w, h, width, height int) (int, int) {
	u := (float32(x) + 0.5) / float32(w)
	v := (float32(y) + 0.5) / float32(h)
	su, sv := p.kernel(u, v, p)
	return clamp(su, width), clamp(sv, height)
}

func clamp(c float32, size int) int {
	f := math.Floor(float64(c) * float64(size))
	if math.IsNaN(f) {
		return 0
	}
	i := int(max(min(f, float64(size)), -1))
	return min(max(i, 0), size-1)
}

func (p *softwareProgram) Delete() {
	p.deleted = true
	p.texture = nil
}

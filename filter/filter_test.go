package filter

import (
	"fmt"
	"image"
	"math"
	"testing"

	"github.com/mengelbart/vedit/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name     string
	location int32
	values   []float32
}

type recordingProgram struct {
	locations map[string]int32
	lookups   int
	calls     []call
	deleted   bool
}

func (p *recordingProgram) Use() { p.calls = append(p.calls, call{name: "use"}) }

func (p *recordingProgram) UniformLocation(name string) int32 {
	p.lookups++
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	return -1
}

func (p *recordingProgram) Uniform1f(location int32, v float32) {
	p.calls = append(p.calls, call{name: "uniform1f", location: location, values: []float32{v}})
}

func (p *recordingProgram) Uniform2f(location int32, x, y float32) {
	p.calls = append(p.calls, call{name: "uniform2f", location: location, values: []float32{x, y}})
}

func (p *recordingProgram) BindExternalTexture(Texture) error {
	p.calls = append(p.calls, call{name: "bind"})
	return nil
}

func (p *recordingProgram) DrawArrays() error {
	p.calls = append(p.calls, call{name: "draw"})
	return nil
}

func (p *recordingProgram) Delete() { p.deleted = true }

type recordingContext struct {
	program  *recordingProgram
	vertex   string
	fragment string
}

func (c *recordingContext) CompileProgram(vertex, fragment string) (Program, error) {
	c.vertex, c.fragment = vertex, fragment
	return c.program, nil
}

func newRecordingContext() *recordingContext {
	return &recordingContext{program: &recordingProgram{
		locations: map[string]int32{"center": 3, "radius": 4, "scale": 5},
	}}
}

type sizedTexture struct{}

func (sizedTexture) Size() (int, int) { return 16, 16 }

func TestBulgeOnDrawPushesDefaults(t *testing.T) {
	ctx := newRecordingContext()
	d := NewBulgeDistortion()
	require.NoError(t, d.Setup(ctx))
	assert.Equal(t, DefaultVertexShader, ctx.vertex)
	assert.Equal(t, BulgeFragmentShader, ctx.fragment)

	d.OnDraw()
	assert.Equal(t, []call{
		{name: "uniform2f", location: 3, values: []float32{0.5, 0.5}},
		{name: "uniform1f", location: 4, values: []float32{0.25}},
		{name: "uniform1f", location: 5, values: []float32{0.5}},
	}, ctx.program.calls)
}

func TestBulgeDrawOrder(t *testing.T) {
	ctx := newRecordingContext()
	d := NewBulgeDistortion()
	d.SetCenterX(0.25)
	d.SetScale(0.75)
	require.NoError(t, d.Setup(ctx))

	for range 3 {
		require.NoError(t, d.Draw(sizedTexture{}))
	}
	names := make([]string, 0, len(ctx.program.calls))
	for _, c := range ctx.program.calls {
		names = append(names, c.name)
	}
	frame := []string{"use", "bind", "uniform2f", "uniform1f", "uniform1f", "draw"}
	assert.Equal(t, append(append(append([]string{}, frame...), frame...), frame...), names)
	assert.Equal(t, []float32{0.25, 0.5}, ctx.program.calls[2].values)
	assert.Equal(t, []float32{0.75}, ctx.program.calls[4].values)

	// uniform locations are resolved at setup only
	assert.Equal(t, 3, ctx.program.lookups)
}

func TestTextureFilterLifecycle(t *testing.T) {
	d := NewBulgeDistortion()
	assert.ErrorIs(t, d.Draw(sizedTexture{}), ErrNotSetup)
	assert.Equal(t, int32(-1), d.Handle("center"))
	d.OnDraw()

	ctx := newRecordingContext()
	require.NoError(t, d.Setup(ctx))
	assert.Equal(t, int32(-1), d.Handle("missing"))
	assert.Equal(t, 4, ctx.program.lookups)
	assert.Equal(t, int32(-1), d.Handle("missing"))
	assert.Equal(t, 4, ctx.program.lookups)

	d.Release()
	assert.True(t, ctx.program.deleted)
	assert.Nil(t, d.Program())
	assert.ErrorIs(t, d.Draw(sizedTexture{}), ErrNotSetup)
}

func TestBulgeAccessors(t *testing.T) {
	d := NewBulgeDistortion()
	assert.Equal(t, DefaultBulgeParams(), d.Params())

	d.SetCenterX(0.1)
	d.SetCenterY(0.2)
	d.SetRadius(0.3)
	d.SetScale(0.4)
	assert.Equal(t, float32(0.1), d.CenterX())
	assert.Equal(t, float32(0.2), d.CenterY())
	assert.Equal(t, float32(0.3), d.Radius())
	assert.Equal(t, float32(0.4), d.Scale())
}

func TestWarp(t *testing.T) {
	p := DefaultBulgeParams()

	u, v := p.Warp(0.5, 0.5)
	assert.Equal(t, float32(0.5), u)
	assert.Equal(t, float32(0.5), v)

	for _, c := range [][2]float32{{0, 0}, {0.9, 0.5}, {0.5, 0.1}, {0.75, 0.5}} {
		u, v = p.Warp(c[0], c[1])
		assert.InDelta(t, c[0], u, 1e-6, "%v", c)
		assert.InDelta(t, c[1], v, 1e-6, "%v", c)
	}

	// dist 0.125: percent = (1 - 0.5*0.5)^2 = 0.5625
	u, v = p.Warp(0.625, 0.5)
	assert.InDelta(t, 0.5+0.125*0.5625, u, 1e-6)
	assert.InDelta(t, 0.5, v, 1e-6)

	// falloff reaches no warp at the radius
	u, _ = p.Warp(0.5+0.2499, 0.5)
	assert.InDelta(t, 0.7499, u, 1e-3)

	p.Radius = 0
	u, v = p.Warp(0.6, 0.4)
	assert.False(t, math.IsNaN(float64(u)) || math.IsNaN(float64(v)))
	assert.InDelta(t, 0.6, u, 1e-6)
	assert.InDelta(t, 0.4, v, 1e-6)
}

func gradient(width, height int) *image.YCbCr {
	img := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio420)
	for y := range height {
		for x := range width {
			img.Y[img.YOffset(x, y)] = uint8(x * 255 / (width - 1))
		}
	}
	cw, ch := codec.ChromaSize(width, height, img.SubsampleRatio)
	for y := range ch {
		for x := range cw {
			img.Cb[y*img.CStride+x] = uint8(y * 255 / (ch - 1))
			img.Cr[y*img.CStride+x] = 128
		}
	}
	return img
}

func TestSoftwareBulge(t *testing.T) {
	ctx := NewSoftwareContext()
	d := NewBulgeDistortion()
	require.NoError(t, d.Setup(ctx))

	src := gradient(64, 64)
	require.NoError(t, d.Draw(ImageTexture{src}))
	out := ctx.Output()
	require.NotNil(t, out)
	assert.Equal(t, src.Rect, out.Rect)

	// outside the radius pixels are copied
	for _, pt := range []image.Point{{0, 0}, {63, 0}, {5, 32}, {60, 60}} {
		assert.Equal(t, src.Y[src.YOffset(pt.X, pt.Y)], out.Y[out.YOffset(pt.X, pt.Y)], "%v", pt)
	}
	// inside the radius the image is magnified towards the center
	x := 40
	assert.Less(t, out.Y[out.YOffset(x, 32)], src.Y[src.YOffset(x, 32)])
	assert.Greater(t, out.Y[out.YOffset(x, 32)], src.Y[src.YOffset(32, 32)])

	assert.Equal(t, src.Cb[0], out.Cb[0])
	assert.Equal(t, src.Cr[5*src.CStride+5], out.Cr[5*out.CStride+5])
}

func TestSoftwareContextErrors(t *testing.T) {
	ctx := NewSoftwareContext()
	_, err := ctx.CompileProgram(DefaultVertexShader, "void main() {}")
	assert.ErrorIs(t, err, ErrUnknownShader)

	p, err := ctx.CompileProgram(DefaultVertexShader, BulgeFragmentShader)
	require.NoError(t, err)
	assert.ErrorIs(t, p.DrawArrays(), ErrNoTexture)
	assert.ErrorIs(t, p.BindExternalTexture(sizedTexture{}), ErrTextureType)

	p.Delete()
	assert.ErrorIs(t, p.DrawArrays(), ErrProgramDeleted)

	assert.Panics(t, func() {
		RegisterKernel(BulgeFragmentShader, func(u, v float32, _ Uniforms) (float32, float32) { return u, v })
	})
}

type frameCollector struct {
	frames [][]byte
	attrs  []codec.Attributes
}

func (c *frameCollector) Write(b []byte, a codec.Attributes) error {
	c.frames = append(c.frames, b)
	c.attrs = append(c.attrs, a)
	return nil
}

func TestProcessor(t *testing.T) {
	sink := &frameCollector{}
	p := NewProcessor(NewBulgeDistortion())
	w, err := codec.Chain(codec.Info{Width: 32, Height: 16}, sink, p)
	require.NoError(t, err)

	src := gradient(32, 16)
	frame := codec.ImageToFrame(src)
	in := codec.Attributes{
		codec.ChromaSubsampling: image.YCbCrSubsampleRatio420,
		codec.PTS:               int64(40_000),
	}
	require.NoError(t, w.Write(frame, in))
	require.NoError(t, w.Write(frame, nil))
	assert.Len(t, in, 2)
	assert.NotContains(t, in, codec.Width)

	require.Len(t, sink.frames, 2)
	assert.Equal(t, 2, p.Frames())
	assert.Len(t, sink.frames[0], len(frame))
	assert.NotEqual(t, frame, sink.frames[0])
	assert.Equal(t, sink.frames[0], sink.frames[1])
	width, err := codec.GetWidth(sink.attrs[0])
	require.NoError(t, err)
	assert.Equal(t, 32, width)
	pts, err := codec.GetPTS(sink.attrs[0])
	require.NoError(t, err)
	assert.Equal(t, int64(40_000), pts)

	assert.Error(t, w.Write(frame[:10], nil))
	require.NoError(t, p.Close())
}

func TestProcessorUnknownShader(t *testing.T) {
	p := NewProcessor(NewTextureFilter(DefaultVertexShader, fmt.Sprintf("// %v", t.Name())))
	_, err := p.Link(&frameCollector{}, codec.Info{Width: 2, Height: 2})
	assert.ErrorIs(t, err, ErrUnknownShader)
}

package filter

import "math"

const BulgeFragmentShader = "" +
	"#extension GL_OES_EGL_image_external : require\n" +
	"precision mediump float;" +
	"varying highp vec2 vTextureCoord;" +
	"uniform samplerExternalOES sTexture;" +
	"uniform highp vec2 center;" +
	"uniform highp float radius;" +
	"uniform highp float scale;" +
	"void main() {" +
	"highp vec2 textureCoordinateToUse = vTextureCoord;" +
	"highp float dist = distance(center, vTextureCoord);" +
	"textureCoordinateToUse -= center;" +
	"if (dist < radius) {" +
	"highp float percent = 1.0 - ((radius - dist) / radius) * scale;" +
	"percent = percent * percent;" +
	"textureCoordinateToUse = textureCoordinateToUse * percent;" +
	"}" +
	"textureCoordinateToUse += center;" +
	"gl_FragColor = texture2D(sTexture, textureCoordinateToUse);" +
	"}"

const (
	uniformCenter = "center"
	uniformRadius = "radius"
	uniformScale  = "scale"
)

func init() {
	RegisterKernel(BulgeFragmentShader, func(u, v float32, uniforms Uniforms) (float32, float32) {
		cx, cy := uniforms.Vec2(uniformCenter)
		p := BulgeParams{
			CenterX: cx,
			CenterY: cy,
			Radius:  uniforms.Float(uniformRadius),
			Scale:   uniforms.Float(uniformScale),
		}
		return p.Warp(u, v)
	})
}

// BulgeParams are in normalized texture coordinates. Radius must not be 0.
type BulgeParams struct {
	CenterX float32
	CenterY float32
	Radius  float32
	Scale   float32
}

func DefaultBulgeParams() BulgeParams {
	return BulgeParams{
		CenterX: 0.5,
		CenterY: 0.5,
		Radius:  0.25,
		Scale:   0.5,
	}
}

// Warp returns the coordinate sampled for the output pixel at (u, v).
// Coordinates closer to the center than Radius are pulled towards it with a
// quadratic falloff; all others are returned unchanged.
func (p BulgeParams) Warp(u, v float32) (float32, float32) {
	dx, dy := u-p.CenterX, v-p.CenterY
	dist := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if dist < p.Radius {
		percent := 1 - ((p.Radius-dist)/p.Radius)*p.Scale
		percent *= percent
		dx *= percent
		dy *= percent
	}
	return dx + p.CenterX, dy + p.CenterY
}

// BulgeDistortion is a TextureFilter applying a radial lens bulge. It is not
// safe for concurrent use.
type BulgeDistortion struct {
	*TextureFilter
	params BulgeParams
}

func NewBulgeDistortion() *BulgeDistortion {
	return NewBulgeDistortionWith(DefaultBulgeParams())
}

func NewBulgeDistortionWith(params BulgeParams) *BulgeDistortion {
	d := &BulgeDistortion{
		TextureFilter: NewTextureFilter(DefaultVertexShader, BulgeFragmentShader,
			uniformCenter, uniformRadius, uniformScale),
		params: params,
	}
	d.onDraw = d.OnDraw
	return d
}

func (d *BulgeDistortion) CenterX() float32     { return d.params.CenterX }
func (d *BulgeDistortion) SetCenterX(v float32) { d.params.CenterX = v }
func (d *BulgeDistortion) CenterY() float32     { return d.params.CenterY }
func (d *BulgeDistortion) SetCenterY(v float32) { d.params.CenterY = v }
func (d *BulgeDistortion) Radius() float32      { return d.params.Radius }
func (d *BulgeDistortion) SetRadius(v float32)  { d.params.Radius = v }
func (d *BulgeDistortion) Scale() float32       { return d.params.Scale }
func (d *BulgeDistortion) SetScale(v float32)   { d.params.Scale = v }

func (d *BulgeDistortion) Params() BulgeParams {
	return d.params
}

// OnDraw pushes center, radius and scale into the current program. Draw
// calls it after the texture is bound.
func (d *BulgeDistortion) OnDraw() {
	p := d.Program()
	if p == nil {
		return
	}
	p.Uniform2f(d.Handle(uniformCenter), d.params.CenterX, d.params.CenterY)
	p.Uniform1f(d.Handle(uniformRadius), d.params.Radius)
	p.Uniform1f(d.Handle(uniformScale), d.params.Scale)
}

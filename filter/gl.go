// Package filter applies fragment shader filters to video frames. Programs
// are compiled and run by a Context; SoftwareContext executes registered
// kernels on the CPU.
package filter

import "errors"

var (
	ErrNotSetup       = errors.New("filter not set up")
	ErrUnknownShader  = errors.New("no kernel registered for fragment shader")
	ErrNoTexture      = errors.New("no texture bound")
	ErrTextureType    = errors.New("unsupported texture type")
	ErrProgramDeleted = errors.New("program deleted")
)

// DefaultVertexShader passes positions and transformed texture coordinates
// through to the fragment stage.
const DefaultVertexShader = "" +
	"uniform mat4 uMVPMatrix;\n" +
	"uniform mat4 uSTMatrix;\n" +
	"attribute vec4 aPosition;\n" +
	"attribute vec4 aTextureCoord;\n" +
	"varying highp vec2 vTextureCoord;\n" +
	"void main() {\n" +
	"gl_Position = uMVPMatrix * aPosition;\n" +
	"vTextureCoord = (uSTMatrix * aTextureCoord).xy;\n" +
	"}\n"

// Context compiles shader programs.
type Context interface {
	CompileProgram(vertex, fragment string) (Program, error)
}

// Program is a linked shader program. A location of -1 is ignored by the
// Uniform setters.
type Program interface {
	Use()
	UniformLocation(name string) int32
	Uniform1f(location int32, v float32)
	Uniform2f(location int32, x, y float32)
	BindExternalTexture(tex Texture) error
	DrawArrays() error
	Delete()
}

// Texture is an externally sourced image, e.g. a decoded video frame.
type Texture interface {
	Size() (width, height int)
}

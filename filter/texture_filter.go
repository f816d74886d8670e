package filter

// TextureFilter owns a program compiled from a vertex and a fragment shader.
// Locations of the uniforms named at construction are resolved once when the
// program is set up.
type TextureFilter struct {
	vertex   string
	fragment string
	uniforms []string

	program Program
	handles map[string]int32
	onDraw  func()
}

func NewTextureFilter(vertex, fragment string, uniforms ...string) *TextureFilter {
	return &TextureFilter{
		vertex:   vertex,
		fragment: fragment,
		uniforms: uniforms,
	}
}

// Setup compiles the program in ctx. A previously compiled program is
// released first.
func (f *TextureFilter) Setup(ctx Context) error {
	f.Release()
	program, err := ctx.CompileProgram(f.vertex, f.fragment)
	if err != nil {
		return err
	}
	f.program = program
	f.handles = make(map[string]int32, len(f.uniforms))
	for _, name := range f.uniforms {
		f.handles[name] = program.UniformLocation(name)
	}
	return nil
}

// Handle returns the location of uniform name, -1 before Setup.
func (f *TextureFilter) Handle(name string) int32 {
	if f.program == nil {
		return -1
	}
	if loc, ok := f.handles[name]; ok {
		return loc
	}
	loc := f.program.UniformLocation(name)
	f.handles[name] = loc
	return loc
}

// Draw renders tex: the program is made current, tex is bound, the draw hook
// sets uniforms and the draw call is issued.
func (f *TextureFilter) Draw(tex Texture) error {
	if f.program == nil {
		return ErrNotSetup
	}
	f.program.Use()
	if err := f.program.BindExternalTexture(tex); err != nil {
		return err
	}
	if f.onDraw != nil {
		f.onDraw()
	}
	return f.program.DrawArrays()
}

func (f *TextureFilter) Release() {
	if f.program == nil {
		return
	}
	f.program.Delete()
	f.program = nil
	f.handles = nil
}

func (f *TextureFilter) Program() Program {
	return f.program
}

func (f *TextureFilter) FragmentShader() string {
	return f.fragment
}

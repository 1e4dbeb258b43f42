// Package gldriver implements shader.Driver on top of OpenGL 3.3 core through go-gl.
// Every method must run on the thread that owns the current GL context.
package gldriver

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/Carmen-Shannon/oxy-gl/engine/shader"
)

// Driver is the OpenGL implementation of shader.Driver.
type Driver struct {
	version string
}

var _ shader.Driver = &Driver{}

// stageTypes maps a stage to its GL shader object type.
var stageTypes = map[shader.Stage]uint32{
	shader.StageVertex:   gl.VERTEX_SHADER,
	shader.StageFragment: gl.FRAGMENT_SHADER,
}

// New loads the GL function pointers for the current context. A context must be current on the
// calling thread, see window.NewWindow.
//
// Returns:
//   - *Driver: the driver bound to the current context
//   - error: an error if the GL entry points could not be loaded
func New() (*Driver, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	d := &Driver{version: gl.GoStr(gl.GetString(gl.VERSION))}
	shader.Logger().Info("OpenGL driver ready", "version", d.version)
	return d, nil
}

// Version returns the GL_VERSION string of the context the driver was created on.
func (d *Driver) Version() string {
	return d.version
}

func (d *Driver) CompileStage(source string, stage shader.Stage) (shader.Handle, error) {
	typ, ok := stageTypes[stage]
	if !ok {
		return 0, fmt.Errorf("invalid shader stage %s", stage)
	}

	h := gl.CreateShader(typ)
	if h == 0 {
		return 0, errors.New("glCreateShader returned no object")
	}
	csrc, free := gl.Strs(source + "\x00")
	gl.ShaderSource(h, 1, csrc, nil)
	free()
	gl.CompileShader(h)

	if err := statusError(h, gl.COMPILE_STATUS, gl.GetShaderiv, gl.GetShaderInfoLog); err != nil {
		gl.DeleteShader(h)
		return 0, err
	}
	return shader.Handle(h), nil
}

func (d *Driver) LinkProgram(vertex, fragment shader.Handle) (shader.Handle, error) {
	p := gl.CreateProgram()
	if p == 0 {
		return 0, errors.New("glCreateProgram returned no object")
	}
	gl.AttachShader(p, uint32(vertex))
	gl.AttachShader(p, uint32(fragment))
	gl.LinkProgram(p)
	gl.DetachShader(p, uint32(vertex))
	gl.DetachShader(p, uint32(fragment))

	if err := statusError(p, gl.LINK_STATUS, gl.GetProgramiv, gl.GetProgramInfoLog); err != nil {
		gl.DeleteProgram(p)
		return 0, err
	}
	return shader.Handle(p), nil
}

func (d *Driver) DeleteStage(h shader.Handle) {
	if h != 0 {
		gl.DeleteShader(uint32(h))
	}
}

func (d *Driver) DeleteProgram(h shader.Handle) {
	if h != 0 {
		gl.DeleteProgram(uint32(h))
	}
}

func (d *Driver) UseProgram(h shader.Handle) {
	gl.UseProgram(uint32(h))
}

// statusError queries a compile or link status and returns the info log as an error when it failed.
func statusError(
	object, status uint32,
	getiv func(uint32, uint32, *int32),
	getInfoLog func(uint32, int32, *int32, *uint8),
) error {
	var ok int32
	getiv(object, status, &ok)
	if ok != gl.FALSE {
		return nil
	}

	buf := make([]uint8, shader.MaxDiagnosticLength+1)
	var length int32
	getInfoLog(object, int32(len(buf)), &length, &buf[0])
	diag := shader.BoundDiagnostic(string(buf[:length]))
	if diag == "" {
		diag = "no diagnostic reported"
	}
	return errors.New(diag)
}

// Package soft is a pure Go shader.Driver. It checks GLSL sources with the engine/glsl front-end
// and links them with the interface matching rules of a desktop GL linker, without touching a GPU.
// It backs headless tooling and tests, and it keeps count of every live object so leaks show up.
package soft

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/engine/glsl"
	"github.com/Carmen-Shannon/oxy-gl/engine/shader"
)

// stageObject is a compiled stage.
type stageObject struct {
	stage shader.Stage
	unit  *glsl.Unit
}

// programObject is a linked program.
type programObject struct {
	vertex   *glsl.Unit
	fragment *glsl.Unit
}

// Driver is the software implementation of shader.Driver.
// Like a GL context it is not safe for concurrent use.
type Driver struct {
	next     shader.Handle
	stages   map[shader.Handle]stageObject
	programs map[shader.Handle]programObject
	active   shader.Handle
}

var _ shader.Driver = &Driver{}

// New creates an empty Driver. Handles are issued from 1 upwards and never reused.
//
// Returns:
//   - *Driver: the driver
func New() *Driver {
	return &Driver{
		stages:   make(map[shader.Handle]stageObject),
		programs: make(map[shader.Handle]programObject),
	}
}

func (d *Driver) CompileStage(source string, stage shader.Stage) (shader.Handle, error) {
	if !stage.Valid() {
		return 0, fmt.Errorf("error: invalid shader stage %s", stage)
	}

	unit, err := glsl.Parse(source)
	if err != nil {
		return 0, errors.New(shader.BoundDiagnostic(formatSyntaxError(err)))
	}
	if !unit.HasMain() {
		return 0, fmt.Errorf("error: %s shader lacks `main'", stage)
	}
	if stage == shader.StageFragment {
		for _, v := range unit.Variables {
			if v.Storage == glsl.StorageOut && strings.HasPrefix(v.Type, "sampler") {
				return 0, fmt.Errorf("0:%d(1): error: fragment output `%s' cannot have type `%s'", v.Line, v.Name, v.Type)
			}
		}
	}

	h := d.allocate()
	d.stages[h] = stageObject{stage: stage, unit: unit}
	return h, nil
}

func (d *Driver) LinkProgram(vertex, fragment shader.Handle) (shader.Handle, error) {
	// the program object exists, and consumes a handle, even when the link fails
	h := d.allocate()

	vs, err := d.stageOf(vertex, shader.StageVertex)
	if err != nil {
		return 0, err
	}
	fs, err := d.stageOf(fragment, shader.StageFragment)
	if err != nil {
		return 0, err
	}
	if err := link(vs.unit, fs.unit); err != nil {
		return 0, errors.New(shader.BoundDiagnostic(err.Error()))
	}

	d.programs[h] = programObject{vertex: vs.unit, fragment: fs.unit}
	return h, nil
}

func (d *Driver) DeleteStage(h shader.Handle) {
	delete(d.stages, h)
}

func (d *Driver) DeleteProgram(h shader.Handle) {
	if _, ok := d.programs[h]; !ok {
		return
	}
	delete(d.programs, h)
	if d.active == h {
		d.active = 0
	}
}

func (d *Driver) UseProgram(h shader.Handle) {
	if h == 0 {
		d.active = 0
		return
	}
	if _, ok := d.programs[h]; ok {
		d.active = h
	}
}

// LiveStages returns the number of compiled stages not yet deleted.
func (d *Driver) LiveStages() int {
	return len(d.stages)
}

// LivePrograms returns the number of linked programs not yet deleted.
func (d *Driver) LivePrograms() int {
	return len(d.programs)
}

// Active returns the program last passed to UseProgram, zero if none or if it was deleted.
func (d *Driver) Active() shader.Handle {
	return d.active
}

// Program returns the parsed stages of a linked program.
//
// Parameters:
//   - h: the program handle
//
// Returns:
//   - *glsl.Unit: the vertex stage
//   - *glsl.Unit: the fragment stage
//   - bool: false if h is not a live program
func (d *Driver) Program(h shader.Handle) (*glsl.Unit, *glsl.Unit, bool) {
	p, ok := d.programs[h]
	return p.vertex, p.fragment, ok
}

func (d *Driver) allocate() shader.Handle {
	d.next++
	return d.next
}

// stageOf looks up a live stage and checks its kind.
func (d *Driver) stageOf(h shader.Handle, want shader.Stage) (stageObject, error) {
	s, ok := d.stages[h]
	if !ok {
		return stageObject{}, fmt.Errorf("error: %d is not a compiled shader", h)
	}
	if s.stage != want {
		return stageObject{}, fmt.Errorf("error: %d is a %s shader, expected a %s shader", h, s.stage, want)
	}
	return s, nil
}

// link applies the cross-stage rules: a common profile, and every fragment input fed by a vertex
// output of the same name and type.
func link(vs, fs *glsl.Unit) error {
	if a, b := profileOf(vs), profileOf(fs); a != b {
		return fmt.Errorf("error: cannot link a %s vertex shader with a %s fragment shader", a, b)
	}

	outputs := make(map[string]glsl.Variable)
	for _, v := range vs.Variables {
		if v.Storage == glsl.StorageOut || v.Storage == glsl.StorageVarying {
			outputs[v.Name] = v
		}
	}

	var problems []string
	for _, in := range fs.Variables {
		if in.Storage != glsl.StorageIn && in.Storage != glsl.StorageVarying {
			continue
		}
		if strings.HasPrefix(in.Name, "gl_") {
			continue
		}
		out, ok := outputs[in.Name]
		if !ok {
			problems = append(problems, fmt.Sprintf("error: fragment shader input `%s' has no matching output in the vertex shader", in.Name))
			continue
		}
		if out.Type != in.Type {
			problems = append(problems, fmt.Sprintf("error: `%s' declared as type `%s' but outputted from vertex shader as type `%s'", in.Name, in.Type, out.Type))
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "\n"))
	}
	return nil
}

// profileOf names the language flavour of a unit. Sources without a profile are core from 150 on
// and compatibility before, ES versions are always es.
func profileOf(u *glsl.Unit) string {
	switch {
	case u.Profile != "":
		return u.Profile
	case u.Version == 100:
		return "es"
	case u.Version >= 150:
		return "core"
	default:
		return "compatibility"
	}
}

// formatSyntaxError renders a front-end error the way Mesa prints compiler diagnostics.
func formatSyntaxError(err error) string {
	var se *glsl.SyntaxError
	if errors.As(err, &se) {
		return fmt.Sprintf("0:%d(%d): error: %s", se.Line, se.Column, se.Msg)
	}
	return "error: " + err.Error()
}

package soft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-gl/engine/shader"
)

const (
	vertexSource = "#version 330 core\n" +
		"layout (location = 0) in vec3 position;\n" +
		"out vec3 tint;\n" +
		"void main() {\n" +
		"tint = position;\n" +
		"gl_Position = vec4(position.x, position.y, position.z, 1.0f);\n" +
		"}\n"

	fragmentSource = "#version 330 core\n" +
		"in vec3 tint;\n" +
		"out vec4 color;\n" +
		"void main() {\n" +
		"color = vec4(tint, 1.0f);\n" +
		"}\n"
)

func compileBoth(t *testing.T, d *Driver, vs, fs string) (shader.Handle, shader.Handle) {
	t.Helper()
	v, err := d.CompileStage(vs, shader.StageVertex)
	require.NoError(t, err)
	f, err := d.CompileStage(fs, shader.StageFragment)
	require.NoError(t, err)
	return v, f
}

func TestCompileStage_Success(t *testing.T) {
	d := New()
	v, f := compileBoth(t, d, vertexSource, fragmentSource)

	assert.Equal(t, shader.Handle(1), v)
	assert.Equal(t, shader.Handle(2), f)
	assert.Equal(t, 2, d.LiveStages())
}

func TestCompileStage_Failures(t *testing.T) {
	tests := []struct {
		name   string
		source string
		stage  shader.Stage
		want   string
	}{
		{
			name:   "trailing garbage",
			source: vertexSource + "asdasdjqw;rjdekl",
			stage:  shader.StageVertex,
			want:   "0:8(1): error: unknown type 'asdasdjqw'",
		},
		{
			name:   "missing main",
			source: "#version 330 core\nout vec4 color;\n",
			stage:  shader.StageFragment,
			want:   "error: fragment shader lacks `main'",
		},
		{
			name:   "unsupported version",
			source: "#version 500\nvoid main() {}\n",
			stage:  shader.StageVertex,
			want:   "0:1(1): error: GLSL 500 is not supported",
		},
		{
			name:   "invalid stage",
			source: vertexSource,
			stage:  shader.Stage(7),
			want:   "error: invalid shader stage Stage(7)",
		},
		{
			name:   "sampler output",
			source: "#version 330 core\nout sampler2D s;\nvoid main() {}\n",
			stage:  shader.StageFragment,
			want:   "0:2(1): error: fragment output `s' cannot have type `sampler2D'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New()
			h, err := d.CompileStage(tt.source, tt.stage)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
			assert.Zero(t, h)
			assert.Zero(t, d.LiveStages())
		})
	}
}

func TestCompileStage_DiagnosticBounded(t *testing.T) {
	d := New()
	long := make([]byte, 2*shader.MaxDiagnosticLength)
	for i := range long {
		long[i] = 'x'
	}
	_, err := d.CompileStage("#version 330 core\n"+string(long)+";", shader.StageVertex)
	require.Error(t, err)
	assert.LessOrEqual(t, len(err.Error()), shader.MaxDiagnosticLength)
}

func TestLinkProgram_Success(t *testing.T) {
	d := New()
	v, f := compileBoth(t, d, vertexSource, fragmentSource)

	p, err := d.LinkProgram(v, f)
	require.NoError(t, err)
	assert.Equal(t, shader.Handle(3), p)
	assert.Equal(t, 1, d.LivePrograms())

	vs, fs, ok := d.Program(p)
	require.True(t, ok)
	assert.Len(t, vs.Inputs(), 1)
	assert.Len(t, fs.Outputs(), 1)

	// stages are detached, deleting them leaves the program intact
	d.DeleteStage(v)
	d.DeleteStage(f)
	assert.Zero(t, d.LiveStages())
	assert.Equal(t, 1, d.LivePrograms())
}

func TestLinkProgram_Failures(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     string
	}{
		{
			name:     "unmatched input",
			fragment: "#version 330 core\nin vec2 uv;\nout vec4 color;\nvoid main() {}\n",
			want:     "error: fragment shader input `uv' has no matching output in the vertex shader",
		},
		{
			name:     "type mismatch",
			fragment: "#version 330 core\nin vec4 tint;\nout vec4 color;\nvoid main() {}\n",
			want:     "error: `tint' declared as type `vec4' but outputted from vertex shader as type `vec3'",
		},
		{
			name:     "profile mismatch",
			fragment: "#version 330 compatibility\nout vec4 color;\nvoid main() {}\n",
			want:     "error: cannot link a core vertex shader with a compatibility fragment shader",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New()
			v, f := compileBoth(t, d, vertexSource, tt.fragment)

			p, err := d.LinkProgram(v, f)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
			assert.Zero(t, p)
			assert.Zero(t, d.LivePrograms())
			assert.Equal(t, 2, d.LiveStages())
		})
	}
}

func TestLinkProgram_BadHandles(t *testing.T) {
	d := New()
	v, f := compileBoth(t, d, vertexSource, fragmentSource)

	_, err := d.LinkProgram(f, v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a vertex shader")

	_, err = d.LinkProgram(v, 99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "99 is not a compiled shader")

	assert.Zero(t, d.LivePrograms())
}

func TestUseAndDeleteProgram(t *testing.T) {
	d := New()
	v, f := compileBoth(t, d, vertexSource, fragmentSource)
	p, err := d.LinkProgram(v, f)
	require.NoError(t, err)

	d.UseProgram(p)
	assert.Equal(t, p, d.Active())

	d.UseProgram(42)
	assert.Equal(t, p, d.Active(), "unknown programs are ignored")

	d.DeleteProgram(p)
	assert.Zero(t, d.Active())
	assert.Zero(t, d.LivePrograms())

	// deleting again, or deleting zero, is harmless
	d.DeleteProgram(p)
	d.DeleteProgram(0)
	d.DeleteStage(0)
}

func TestHandlesAreNotReused(t *testing.T) {
	d := New()
	v, err := d.CompileStage(vertexSource, shader.StageVertex)
	require.NoError(t, err)
	d.DeleteStage(v)

	v2, err := d.CompileStage(vertexSource, shader.StageVertex)
	require.NoError(t, err)
	assert.Greater(t, v2, v)
}

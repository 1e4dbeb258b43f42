package shader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDriver struct {
	mock.Mock
}

func (m *mockDriver) CompileStage(source string, stage Stage) (Handle, error) {
	args := m.Called(source, stage)
	return args.Get(0).(Handle), args.Error(1)
}

func (m *mockDriver) LinkProgram(vertex, fragment Handle) (Handle, error) {
	args := m.Called(vertex, fragment)
	return args.Get(0).(Handle), args.Error(1)
}

func (m *mockDriver) DeleteStage(h Handle) {
	m.Called(h)
}

func (m *mockDriver) DeleteProgram(h Handle) {
	m.Called(h)
}

func (m *mockDriver) UseProgram(h Handle) {
	m.Called(h)
}

const (
	testVertexSource   = "#version 330 core\nlayout (location = 0) in vec3 position;\nvoid main() {\ngl_Position = vec4(position, 1.0);\n}\n"
	testFragmentSource = "#version 330 core\nout vec4 color;\nvoid main() {\ncolor = vec4(1.0, 0.5, 0.2, 1.0);\n}\n"
)

func newTestProgram(d Driver) ShaderProgram {
	return NewShaderProgram(d,
		WithLabel("test"),
		WithVertexSource(testVertexSource),
		WithFragmentSource(testFragmentSource),
	)
}

// expectSuccessfulBuild registers the full compile/link/release sequence on d.
func expectSuccessfulBuild(d *mockDriver) {
	d.On("CompileStage", testVertexSource, StageVertex).Return(Handle(1), nil).Once()
	d.On("CompileStage", testFragmentSource, StageFragment).Return(Handle(2), nil).Once()
	d.On("LinkProgram", Handle(1), Handle(2)).Return(Handle(3), nil).Once()
	d.On("DeleteStage", Handle(1)).Once()
	d.On("DeleteStage", Handle(2)).Once()
}

func TestCreate_Success(t *testing.T) {
	d := &mockDriver{}
	expectSuccessfulBuild(d)
	p := newTestProgram(d)

	var errLog bytes.Buffer
	require.NoError(t, p.Create(&errLog))

	assert.True(t, p.Created())
	assert.Equal(t, Handle(3), p.ID())
	assert.Empty(t, errLog.String())
	d.AssertExpectations(t)
}

func TestCreate_IdempotentAfterSuccess(t *testing.T) {
	d := &mockDriver{}
	expectSuccessfulBuild(d)
	p := newTestProgram(d)

	require.NoError(t, p.Create(nil))
	id := p.ID()
	require.NoError(t, p.Create(nil))

	assert.Equal(t, id, p.ID())
	d.AssertNumberOfCalls(t, "CompileStage", 2)
	d.AssertNumberOfCalls(t, "LinkProgram", 1)
}

func TestCreate_VertexCompileFailure(t *testing.T) {
	d := &mockDriver{}
	d.On("CompileStage", testVertexSource, StageVertex).
		Return(Handle(0), errors.New("0:6(1): error: syntax error, unexpected IDENTIFIER")).Once()
	p := newTestProgram(d)

	var errLog bytes.Buffer
	err := p.Create(&errLog)

	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, StageVertex, compileErr.Stage)
	assert.ErrorIs(t, err, ErrCompileFailed)
	assert.Contains(t, errLog.String(), "syntax error")
	assert.Equal(t, Handle(0), p.ID())
	assert.False(t, p.Created())
	d.AssertNotCalled(t, "CompileStage", testFragmentSource, StageFragment)
	d.AssertNotCalled(t, "LinkProgram", mock.Anything, mock.Anything)
	d.AssertNotCalled(t, "DeleteStage", mock.Anything)
}

func TestCreate_FragmentCompileFailureReleasesVertexStage(t *testing.T) {
	d := &mockDriver{}
	d.On("CompileStage", testVertexSource, StageVertex).Return(Handle(1), nil).Once()
	d.On("CompileStage", testFragmentSource, StageFragment).
		Return(Handle(0), errors.New("0:2(1): error: bad fragment")).Once()
	d.On("DeleteStage", Handle(1)).Once()
	p := newTestProgram(d)

	var errLog bytes.Buffer
	err := p.Create(&errLog)

	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, StageFragment, compileErr.Stage)
	assert.Contains(t, errLog.String(), "bad fragment")
	assert.Equal(t, Handle(0), p.ID())
	d.AssertNotCalled(t, "LinkProgram", mock.Anything, mock.Anything)
	d.AssertExpectations(t)
}

func TestCreate_LinkFailureReleasesBothStages(t *testing.T) {
	d := &mockDriver{}
	d.On("CompileStage", testVertexSource, StageVertex).Return(Handle(1), nil).Once()
	d.On("CompileStage", testFragmentSource, StageFragment).Return(Handle(2), nil).Once()
	d.On("LinkProgram", Handle(1), Handle(2)).
		Return(Handle(0), errors.New("error: fragment input `uv' not written by vertex shader")).Once()
	d.On("DeleteStage", Handle(1)).Once()
	d.On("DeleteStage", Handle(2)).Once()
	p := newTestProgram(d)

	var errLog bytes.Buffer
	err := p.Create(&errLog)

	var linkErr *LinkError
	require.ErrorAs(t, err, &linkErr)
	assert.ErrorIs(t, err, ErrLinkFailed)
	assert.Contains(t, errLog.String(), "not written by vertex shader")
	assert.Equal(t, Handle(0), p.ID())
	assert.False(t, p.Created())
	d.AssertExpectations(t)
}

func TestCreate_RetryAfterFailure(t *testing.T) {
	d := &mockDriver{}
	d.On("CompileStage", testVertexSource, StageVertex).
		Return(Handle(0), errors.New("transient")).Once()
	expectSuccessfulBuild(d)
	p := newTestProgram(d)

	require.Error(t, p.Create(nil))
	require.NoError(t, p.Create(nil))

	assert.Equal(t, Handle(3), p.ID())
	d.AssertExpectations(t)
}

func TestCreate_RetryFailsWithSameDiagnosticClass(t *testing.T) {
	d := &mockDriver{}
	d.On("CompileStage", testVertexSource, StageVertex).
		Return(Handle(0), errors.New("0:1(1): error: bad")).Twice()
	p := newTestProgram(d)

	first := p.Create(nil)
	second := p.Create(nil)

	assert.ErrorIs(t, first, ErrCompileFailed)
	assert.ErrorIs(t, second, ErrCompileFailed)
	assert.Equal(t, first.Error(), second.Error())
	assert.Equal(t, Handle(0), p.ID())
}

func TestCreate_AppendsToErrorLog(t *testing.T) {
	d := &mockDriver{}
	d.On("CompileStage", testVertexSource, StageVertex).Return(Handle(0), errors.New("first")).Once()
	d.On("CompileStage", testVertexSource, StageVertex).Return(Handle(0), errors.New("second")).Once()
	p := newTestProgram(d)

	errLog := bytes.NewBufferString("previous\n")
	require.Error(t, p.Create(errLog))
	require.Error(t, p.Create(errLog))

	lines := strings.Split(strings.TrimSpace(errLog.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "previous", lines[0])
	assert.Contains(t, lines[1], "first")
	assert.Contains(t, lines[2], "second")
}

func TestCreate_EmptySourceSkipsDriver(t *testing.T) {
	d := &mockDriver{}
	p := NewShaderProgram(d, WithFragmentSource(testFragmentSource))

	var errLog bytes.Buffer
	err := p.Create(&errLog)

	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, StageVertex, compileErr.Stage)
	assert.Equal(t, "no source loaded", compileErr.Diagnostic)
	d.AssertNotCalled(t, "CompileStage", mock.Anything, mock.Anything)
}

func TestCreate_ZeroHandleWithoutErrorIsFailure(t *testing.T) {
	d := &mockDriver{}
	d.On("CompileStage", testVertexSource, StageVertex).Return(Handle(1), nil).Once()
	d.On("CompileStage", testFragmentSource, StageFragment).Return(Handle(2), nil).Once()
	d.On("LinkProgram", Handle(1), Handle(2)).Return(Handle(0), nil).Once()
	d.On("DeleteStage", mock.Anything).Twice()
	p := newTestProgram(d)

	err := p.Create(nil)

	assert.ErrorIs(t, err, ErrLinkFailed)
	assert.Equal(t, Handle(0), p.ID())
}

func TestCreate_BoundsLongDiagnostic(t *testing.T) {
	d := &mockDriver{}
	d.On("CompileStage", testVertexSource, StageVertex).
		Return(Handle(0), errors.New(strings.Repeat("x", 4*MaxDiagnosticLength))).Once()
	p := newTestProgram(d)

	err := p.Create(nil)

	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Len(t, compileErr.Diagnostic, MaxDiagnosticLength)
}

func TestLoadSource_RejectedAfterCreate(t *testing.T) {
	d := &mockDriver{}
	expectSuccessfulBuild(d)
	p := newTestProgram(d)
	require.NoError(t, p.Create(nil))

	assert.ErrorIs(t, p.LoadVertexSource("changed"), ErrProgramAlreadyBuilt)
	assert.ErrorIs(t, p.LoadFragmentSource("changed"), ErrProgramAlreadyBuilt)
	assert.ErrorIs(t, p.LoadVertexSourceFromFile("missing.vert"), ErrProgramAlreadyBuilt)
	assert.Equal(t, testVertexSource, p.VertexSource())
	assert.Equal(t, testFragmentSource, p.FragmentSource())
}

func TestLoadSource_LastWriteWins(t *testing.T) {
	p := NewShaderProgram(&mockDriver{})

	require.NoError(t, p.LoadVertexSource("a"))
	require.NoError(t, p.LoadVertexSource("b"))
	require.NoError(t, p.LoadFragmentSource("c"))

	assert.Equal(t, "b", p.VertexSource())
	assert.Equal(t, "c", p.FragmentSource())
}

func TestLoadSourceFromFile(t *testing.T) {
	dir := t.TempDir()
	vertPath := filepath.Join(dir, "tri.vert")
	fragPath := filepath.Join(dir, "tri.frag")
	require.NoError(t, os.WriteFile(vertPath, []byte(testVertexSource), 0o644))
	require.NoError(t, os.WriteFile(fragPath, []byte(testFragmentSource), 0o644))

	p := NewShaderProgram(&mockDriver{})
	require.NoError(t, p.LoadVertexSourceFromFile(vertPath))
	require.NoError(t, p.LoadFragmentSourceFromFile(fragPath))

	assert.Equal(t, testVertexSource, p.VertexSource())
	assert.Equal(t, testFragmentSource, p.FragmentSource())
}

func TestLoadSourceFromFile_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		want error
	}{
		{name: "missing", path: filepath.Join(dir, "nope.vert"), want: ErrFileNotFound},
		{name: "directory", path: dir, want: ErrFileUnreadable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewShaderProgram(&mockDriver{}, WithVertexSource("kept"), WithFragmentSource("kept"))

			assert.ErrorIs(t, p.LoadVertexSourceFromFile(tt.path), tt.want)
			assert.ErrorIs(t, p.LoadFragmentSourceFromFile(tt.path), tt.want)
			assert.Equal(t, "kept", p.VertexSource())
			assert.Equal(t, "kept", p.FragmentSource())
		})
	}
}

func TestUse(t *testing.T) {
	d := &mockDriver{}
	expectSuccessfulBuild(d)
	d.On("UseProgram", Handle(3)).Once()
	p := newTestProgram(d)

	assert.ErrorIs(t, p.Use(), ErrProgramNotCreated)
	d.AssertNotCalled(t, "UseProgram", mock.Anything)

	require.NoError(t, p.Create(nil))
	require.NoError(t, p.Use())
	d.AssertExpectations(t)
}

func TestDestroy(t *testing.T) {
	d := &mockDriver{}
	expectSuccessfulBuild(d)
	d.On("DeleteProgram", Handle(3)).Once()
	p := newTestProgram(d)
	require.NoError(t, p.Create(nil))

	p.Destroy()
	p.Destroy()

	assert.Equal(t, Handle(0), p.ID())
	assert.False(t, p.Created())
	assert.ErrorIs(t, p.Create(nil), ErrProgramDestroyed)
	assert.ErrorIs(t, p.Use(), ErrProgramDestroyed)
	assert.ErrorIs(t, p.LoadVertexSource("x"), ErrProgramDestroyed)
	d.AssertNumberOfCalls(t, "DeleteProgram", 1)
}

func TestDestroy_UncreatedProgramMakesNoDriverCall(t *testing.T) {
	d := &mockDriver{}
	p := newTestProgram(d)

	p.Destroy()

	d.AssertNotCalled(t, "DeleteProgram", mock.Anything)
	d.AssertNotCalled(t, "DeleteStage", mock.Anything)
}

func TestNewShaderProgram_Label(t *testing.T) {
	assert.Equal(t, "program", NewShaderProgram(&mockDriver{}).Label())
	assert.Equal(t, "program", NewShaderProgram(&mockDriver{}, WithLabel("")).Label())
	assert.Equal(t, "sky", NewShaderProgram(&mockDriver{}, WithLabel("sky")).Label())
}

func TestNewShaderProgram_NilDriverPanics(t *testing.T) {
	assert.Panics(t, func() { NewShaderProgram(nil) })
}

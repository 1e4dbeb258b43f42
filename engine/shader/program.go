package shader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
)

// shaderProgram is the implementation of the ShaderProgram interface.
// It owns the sources, the intermediate stage handles and the linked program handle for one
// vertex/fragment pair. It holds no lock: the owning thread serializes every call.
type shaderProgram struct {
	driver Driver
	label  string

	vertexSource   string
	fragmentSource string

	vertexHandle   Handle
	fragmentHandle Handle
	programHandle  Handle

	created   bool
	destroyed bool
}

// ShaderProgram owns the lifecycle of one GPU program built from a vertex and a fragment stage:
// sources are loaded, each stage is compiled, both are linked, the stage objects are released and
// the program stays usable until Destroy.
//
// Once Create succeeds the program is immutable; building different sources needs a new instance.
// A failed Create leaves no partial state behind and may be retried.
type ShaderProgram interface {
	// LoadVertexSource stores GLSL text as the vertex stage source. Last write wins.
	//
	// Parameters:
	//   - source: the vertex shader text, stored verbatim
	//
	// Returns:
	//   - error: ErrProgramAlreadyBuilt if the program was created, ErrProgramDestroyed after Destroy
	LoadVertexSource(source string) error

	// LoadFragmentSource stores GLSL text as the fragment stage source. Last write wins.
	//
	// Parameters:
	//   - source: the fragment shader text, stored verbatim
	//
	// Returns:
	//   - error: ErrProgramAlreadyBuilt if the program was created, ErrProgramDestroyed after Destroy
	LoadFragmentSource(source string) error

	// LoadVertexSourceFromFile reads a whole file and stores it as the vertex stage source.
	// On failure the previously loaded vertex source is left unchanged.
	//
	// Parameters:
	//   - path: the file to read
	//
	// Returns:
	//   - error: ErrFileNotFound or ErrFileUnreadable wrapping the OS error, or the same errors as LoadVertexSource
	LoadVertexSourceFromFile(path string) error

	// LoadFragmentSourceFromFile reads a whole file and stores it as the fragment stage source.
	// On failure the previously loaded fragment source is left unchanged.
	//
	// Parameters:
	//   - path: the file to read
	//
	// Returns:
	//   - error: ErrFileNotFound or ErrFileUnreadable wrapping the OS error, or the same errors as LoadFragmentSource
	LoadFragmentSourceFromFile(path string) error

	// VertexSource returns the currently loaded vertex source.
	//
	// Returns:
	//   - string: the vertex source, empty if none was loaded
	VertexSource() string

	// FragmentSource returns the currently loaded fragment source.
	//
	// Returns:
	//   - string: the fragment source, empty if none was loaded
	FragmentSource() string

	// Create compiles both stages and links them into a program. If the program was already
	// created it returns nil without touching the driver. On the first failing step the
	// diagnostic is appended to errLog as one line and the remaining steps are skipped; errLog
	// is left untouched on success. Stage handles never outlive the call.
	//
	// Parameters:
	//   - errLog: the accumulated error log to append diagnostics to, may be nil
	//
	// Returns:
	//   - error: a *CompileError or *LinkError on failure, ErrProgramDestroyed after Destroy, nil on success
	Create(errLog io.Writer) error

	// Created reports whether Create has succeeded on this instance.
	//
	// Returns:
	//   - bool: true once a program handle exists
	Created() bool

	// Use activates the program on the driver for subsequent draws.
	//
	// Returns:
	//   - error: ErrProgramNotCreated if Create has not succeeded, ErrProgramDestroyed after Destroy
	Use() error

	// ID returns the linked program handle.
	//
	// Returns:
	//   - Handle: the program handle, zero if the program is not created
	ID() Handle

	// Label returns the name used for this program in logs.
	//
	// Returns:
	//   - string: the program label
	Label() string

	// Destroy releases the program handle on the driver. Calling it more than once is a no-op.
	Destroy()
}

var _ ShaderProgram = &shaderProgram{}

// NewShaderProgram creates a ShaderProgram bound to the given driver with all options applied.
// No driver call is made until Create.
//
// Parameters:
//   - driver: the compiler/linker the program is built with
//   - options: functional options configuring sources and label
//
// Returns:
//   - ShaderProgram: a program ready for sources to be loaded
func NewShaderProgram(driver Driver, options ...ShaderProgramBuilderOption) ShaderProgram {
	if driver == nil {
		panic("shader: NewShaderProgram requires a non-nil Driver")
	}
	p := &shaderProgram{
		driver: driver,
		label:  "program",
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *shaderProgram) LoadVertexSource(source string) error {
	if err := p.checkMutable(); err != nil {
		return err
	}
	p.vertexSource = source
	return nil
}

func (p *shaderProgram) LoadFragmentSource(source string) error {
	if err := p.checkMutable(); err != nil {
		return err
	}
	p.fragmentSource = source
	return nil
}

func (p *shaderProgram) LoadVertexSourceFromFile(path string) error {
	if err := p.checkMutable(); err != nil {
		return err
	}
	src, err := readSourceFile(path)
	if err != nil {
		return err
	}
	return p.LoadVertexSource(src)
}

func (p *shaderProgram) LoadFragmentSourceFromFile(path string) error {
	if err := p.checkMutable(); err != nil {
		return err
	}
	src, err := readSourceFile(path)
	if err != nil {
		return err
	}
	return p.LoadFragmentSource(src)
}

func (p *shaderProgram) VertexSource() string {
	return p.vertexSource
}

func (p *shaderProgram) FragmentSource() string {
	return p.fragmentSource
}

func (p *shaderProgram) Create(errLog io.Writer) error {
	if p.destroyed {
		return ErrProgramDestroyed
	}
	if p.created {
		return nil
	}

	if err := p.buildVertexShader(); err != nil {
		return p.fail(errLog, err)
	}
	if err := p.buildFragmentShader(); err != nil {
		p.releaseShaderResources()
		return p.fail(errLog, err)
	}
	if err := p.linkProgram(); err != nil {
		return p.fail(errLog, err)
	}

	p.created = true
	p.logger().Info("shader program created", "id", p.programHandle)
	return nil
}

func (p *shaderProgram) Created() bool {
	return p.created
}

func (p *shaderProgram) Use() error {
	if p.destroyed {
		return ErrProgramDestroyed
	}
	if !p.created {
		return ErrProgramNotCreated
	}
	p.driver.UseProgram(p.programHandle)
	return nil
}

func (p *shaderProgram) ID() Handle {
	return p.programHandle
}

func (p *shaderProgram) Label() string {
	return p.label
}

func (p *shaderProgram) Destroy() {
	if p.destroyed {
		return
	}
	p.releaseShaderResources()
	if p.programHandle != 0 {
		p.driver.DeleteProgram(p.programHandle)
		p.logger().Info("shader program destroyed", "id", p.programHandle)
	}
	p.programHandle = 0
	p.created = false
	p.destroyed = true
}

// checkMutable reports whether the sources may still be replaced.
func (p *shaderProgram) checkMutable() error {
	if p.destroyed {
		return ErrProgramDestroyed
	}
	if p.created {
		return ErrProgramAlreadyBuilt
	}
	return nil
}

// buildVertexShader compiles the vertex source into vertexHandle.
func (p *shaderProgram) buildVertexShader() error {
	h, err := p.compile(p.vertexSource, StageVertex)
	if err != nil {
		return err
	}
	p.vertexHandle = h
	return nil
}

// buildFragmentShader compiles the fragment source into fragmentHandle.
func (p *shaderProgram) buildFragmentShader() error {
	h, err := p.compile(p.fragmentSource, StageFragment)
	if err != nil {
		return err
	}
	p.fragmentHandle = h
	return nil
}

// compile runs one stage through the driver and converts a failure into a *CompileError.
// A driver that reports success with a zero handle is treated as a failure.
func (p *shaderProgram) compile(source string, stage Stage) (Handle, error) {
	if source == "" {
		return 0, &CompileError{Stage: stage, Diagnostic: "no source loaded"}
	}
	h, err := p.driver.CompileStage(source, stage)
	if err != nil {
		return 0, &CompileError{Stage: stage, Diagnostic: BoundDiagnostic(err.Error())}
	}
	if h == 0 {
		return 0, &CompileError{Stage: stage, Diagnostic: "driver returned no stage handle"}
	}
	p.logger().Debug("shader stage compiled", "stage", stage, "handle", h)
	return h, nil
}

// linkProgram links the two compiled stages and releases them whatever the outcome.
func (p *shaderProgram) linkProgram() error {
	h, err := p.driver.LinkProgram(p.vertexHandle, p.fragmentHandle)
	p.releaseShaderResources()
	if err != nil {
		if h != 0 {
			p.driver.DeleteProgram(h)
		}
		return &LinkError{Diagnostic: BoundDiagnostic(err.Error())}
	}
	if h == 0 {
		return &LinkError{Diagnostic: "driver returned no program handle"}
	}
	p.programHandle = h
	return nil
}

// releaseShaderResources deletes whichever stage handles are set and clears them.
func (p *shaderProgram) releaseShaderResources() {
	if p.vertexHandle != 0 {
		p.driver.DeleteStage(p.vertexHandle)
		p.vertexHandle = 0
	}
	if p.fragmentHandle != 0 {
		p.driver.DeleteStage(p.fragmentHandle)
		p.fragmentHandle = 0
	}
}

// fail appends err to errLog and logs it.
func (p *shaderProgram) fail(errLog io.Writer, err error) error {
	if errLog != nil {
		fmt.Fprintln(errLog, err.Error())
	}
	p.logger().Warn("shader program build failed", "error", err)
	return err
}

// logger returns the package logger scoped to this program's label.
func (p *shaderProgram) logger() *slog.Logger {
	return Logger().With("program", p.label)
}

// readSourceFile reads a whole shader file, classifying the failure.
func readSourceFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %w", ErrFileNotFound, err)
		}
		return "", fmt.Errorf("%w: %w", ErrFileUnreadable, err)
	}
	return string(data), nil
}

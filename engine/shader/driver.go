package shader

// Handle is an opaque identifier issued by a Driver for a compiled stage or a linked program.
// The zero Handle means "unset".
type Handle uint32

// Driver is the compiler/linker capability a ShaderProgram orchestrates. Implementations wrap a
// GPU API (OpenGL, WebGPU) or a software reference compiler.
//
// A Driver is not safe for concurrent use; GPU-backed drivers must only be called from the thread
// that owns the graphics context.
type Driver interface {
	// CompileStage compiles source for the given stage.
	// On failure the returned handle is zero, nothing stays allocated on the driver, and the error
	// text is the compiler diagnostic bounded to MaxDiagnosticLength bytes.
	//
	// Parameters:
	//   - source: the GLSL source text
	//   - stage: the pipeline stage the source is compiled for
	//
	// Returns:
	//   - Handle: the compiled stage handle, or zero on failure
	//   - error: the compiler diagnostic if compilation failed
	CompileStage(source string, stage Stage) (Handle, error)

	// LinkProgram links a vertex and a fragment stage into a program.
	// Both stages are detached from the program object before returning, whatever the outcome,
	// so the caller can always delete them. On failure the program object is freed.
	//
	// Parameters:
	//   - vertex: a handle returned by CompileStage for StageVertex
	//   - fragment: a handle returned by CompileStage for StageFragment
	//
	// Returns:
	//   - Handle: the linked program handle, or zero on failure
	//   - error: the linker diagnostic if linking failed
	LinkProgram(vertex, fragment Handle) (Handle, error)

	// DeleteStage releases a compiled stage. Deleting the zero handle is a no-op.
	//
	// Parameters:
	//   - h: the stage handle to release
	DeleteStage(h Handle)

	// DeleteProgram releases a linked program. Deleting the zero handle is a no-op.
	//
	// Parameters:
	//   - h: the program handle to release
	DeleteProgram(h Handle)

	// UseProgram makes the program the active one for subsequent draws.
	//
	// Parameters:
	//   - h: the program handle to activate
	UseProgram(h Handle)
}

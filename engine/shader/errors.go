package shader

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound is returned when a source file path does not exist.
	ErrFileNotFound = errors.New("shader: source file not found")

	// ErrFileUnreadable is returned when a source file exists but cannot be read.
	ErrFileUnreadable = errors.New("shader: source file unreadable")

	// ErrProgramAlreadyBuilt is returned when a source is loaded into a program that was already created.
	ErrProgramAlreadyBuilt = errors.New("shader: program already built")

	// ErrProgramNotCreated is returned by Use on a program that has not been created.
	ErrProgramNotCreated = errors.New("shader: program not created")

	// ErrProgramDestroyed is returned by any mutating call made after Destroy.
	ErrProgramDestroyed = errors.New("shader: program destroyed")

	// ErrCompileFailed matches every *CompileError through errors.Is.
	ErrCompileFailed = errors.New("shader: compile failed")

	// ErrLinkFailed matches every *LinkError through errors.Is.
	ErrLinkFailed = errors.New("shader: link failed")
)

// CompileError reports a failed stage compilation together with the compiler diagnostic.
type CompileError struct {
	Stage      Stage
	Diagnostic string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s shader compile failed: %s", e.Stage, e.Diagnostic)
}

// Is makes errors.Is(err, ErrCompileFailed) hold for any *CompileError.
func (e *CompileError) Is(target error) bool {
	return target == ErrCompileFailed
}

// LinkError reports a failed program link together with the linker diagnostic.
type LinkError struct {
	Diagnostic string
}

func (e *LinkError) Error() string {
	return "program link failed: " + e.Diagnostic
}

// Is makes errors.Is(err, ErrLinkFailed) hold for any *LinkError.
func (e *LinkError) Is(target error) bool {
	return target == ErrLinkFailed
}

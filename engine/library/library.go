// Package library keeps a named set of shader programs. Source files are read concurrently on a
// worker pool, programs are built serially on the calling thread, which must own the driver.
package library

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/Carmen-Shannon/oxy-gl/engine/shader"
)

var (
	// ErrEmptyName is returned by Add when the program name is empty.
	ErrEmptyName = errors.New("library: program name is empty")

	// ErrDuplicateProgram is returned by Add when the name is already registered.
	ErrDuplicateProgram = errors.New("library: program already registered")

	// ErrLibraryDestroyed is returned by every call made after Destroy.
	ErrLibraryDestroyed = errors.New("library: destroyed")
)

// entry is one registered program.
type entry struct {
	name         string
	vertexPath   string
	fragmentPath string

	// program is set once both sources were read.
	program shader.ShaderProgram
}

// library is the implementation of the Library interface.
type library struct {
	mu sync.Mutex

	driver    shader.Driver
	workers   int
	queueSize int

	entries map[string]*entry
	order   []string

	pool      worker.DynamicWorkerPool
	destroyed bool
}

// Library is a named set of shader programs sharing one driver.
type Library interface {
	// Add registers a program built from a vertex and a fragment source file.
	// No file is read until Preload or Build.
	//
	// Parameters:
	//   - name: the unique program name, also used as its log label
	//   - vertexPath: the vertex stage source file
	//   - fragmentPath: the fragment stage source file
	//
	// Returns:
	//   - error: ErrEmptyName, ErrDuplicateProgram or ErrLibraryDestroyed
	Add(name, vertexPath, fragmentPath string) error

	// Names returns the registered program names in registration order.
	//
	// Returns:
	//   - []string: the program names
	Names() []string

	// Preload reads the source files of every program not loaded yet, concurrently on the
	// worker pool. It makes no driver call, so it may run on any goroutine.
	//
	// Returns:
	//   - error: every read failure joined, each wrapped with its program name
	Preload() error

	// Build preloads whatever is missing and creates every program not created yet, one after
	// the other on the calling goroutine. A failure does not stop the remaining programs.
	//
	// Parameters:
	//   - errLog: the accumulated error log passed to each Create, may be nil
	//
	// Returns:
	//   - error: every preload and build failure joined, each wrapped with its program name
	Build(errLog io.Writer) error

	// Program returns a registered program once its sources were loaded.
	//
	// Parameters:
	//   - name: the program name
	//
	// Returns:
	//   - shader.ShaderProgram: the program
	//   - bool: false if the name is unknown or its sources were not loaded
	Program(name string) (shader.ShaderProgram, bool)

	// Destroy destroys every program and stops the worker pool.
	Destroy()
}

var _ Library = &library{}

// NewLibrary creates an empty Library bound to the given driver.
//
// Parameters:
//   - driver: the compiler/linker every program is built with
//   - options: functional options configuring the worker pool
//
// Returns:
//   - Library: the library
func NewLibrary(driver shader.Driver, options ...LibraryBuilderOption) Library {
	if driver == nil {
		panic("library: NewLibrary requires a non-nil Driver")
	}
	l := &library{
		driver:    driver,
		workers:   runtime.NumCPU(),
		queueSize: 64,
		entries:   make(map[string]*entry),
	}
	for _, opt := range options {
		opt(l)
	}
	l.pool = worker.NewDynamicWorkerPool(l.workers, l.queueSize, 1*time.Second)
	return l
}

func (l *library) Add(name, vertexPath, fragmentPath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.destroyed {
		return ErrLibraryDestroyed
	}
	if name == "" {
		return ErrEmptyName
	}
	if _, ok := l.entries[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateProgram, name)
	}
	l.entries[name] = &entry{name: name, vertexPath: vertexPath, fragmentPath: fragmentPath}
	l.order = append(l.order, name)
	return nil
}

func (l *library) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.order)
}

func (l *library) Preload() error {
	l.mu.Lock()
	if l.destroyed {
		l.mu.Unlock()
		return ErrLibraryDestroyed
	}
	var pending []*entry
	for _, name := range l.order {
		if e := l.entries[name]; e.program == nil {
			pending = append(pending, e)
		}
	}
	l.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	errs := make([]error, len(pending))
	var wg sync.WaitGroup
	wg.Add(len(pending))
	for i, e := range pending {
		idx, eCap := i, e // capture for closure
		l.pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()

				p, err := l.load(eCap)
				if err != nil {
					errs[idx] = fmt.Errorf("program %q: %w", eCap.name, err)
					return nil, errs[idx]
				}

				l.mu.Lock()
				eCap.program = p
				l.mu.Unlock()
				return p, nil
			},
		})
	}
	wg.Wait()

	err := errors.Join(errs...)
	if err != nil {
		shader.Logger().Warn("library preload incomplete", "error", err)
	}
	return err
}

func (l *library) Build(errLog io.Writer) error {
	preloadErr := l.Preload()
	if errors.Is(preloadErr, ErrLibraryDestroyed) {
		return preloadErr
	}

	l.mu.Lock()
	programs := make([]*entry, 0, len(l.order))
	for _, name := range l.order {
		if e := l.entries[name]; e.program != nil {
			programs = append(programs, e)
		}
	}
	l.mu.Unlock()

	errs := []error{preloadErr}
	for _, e := range programs {
		if e.program.Created() {
			continue
		}
		if err := e.program.Create(errLog); err != nil {
			errs = append(errs, fmt.Errorf("program %q: %w", e.name, err))
		}
	}
	return errors.Join(errs...)
}

func (l *library) Program(name string) (shader.ShaderProgram, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[name]
	if !ok || e.program == nil {
		return nil, false
	}
	return e.program, true
}

func (l *library) Destroy() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.destroyed {
		return
	}
	for _, name := range l.order {
		if e := l.entries[name]; e.program != nil {
			e.program.Destroy()
		}
	}
	l.pool.Stop()
	l.destroyed = true
}

// load reads both source files of e into a fresh program.
func (l *library) load(e *entry) (shader.ShaderProgram, error) {
	p := shader.NewShaderProgram(l.driver, shader.WithLabel(e.name))
	if err := p.LoadVertexSourceFromFile(e.vertexPath); err != nil {
		return nil, err
	}
	if err := p.LoadFragmentSourceFromFile(e.fragmentPath); err != nil {
		return nil, err
	}
	return p, nil
}

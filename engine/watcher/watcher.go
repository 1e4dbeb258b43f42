// Package watcher hot-reloads one shader program when its source files change on disk.
// File events are watched on a background goroutine; rebuilding happens in Reload, which the
// caller runs on the thread that owns the driver.
package watcher

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/Carmen-Shannon/oxy-gl/engine/shader"
)

var (
	// ErrAlreadyStarted is returned by Start when the event loop is already running.
	ErrAlreadyStarted = errors.New("watcher: already started")

	// ErrClosed is returned by Start after Close.
	ErrClosed = errors.New("watcher: closed")
)

// relevantOps are the operations that can change a source file's content. Editors that save
// through a temporary file produce Create or Rename instead of Write.
const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename

// watcher is the implementation of the Watcher interface.
type watcher struct {
	driver       shader.Driver
	label        string
	vertexPath   string
	fragmentPath string

	fs      *fsnotify.Watcher
	changes chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup

	mu      sync.Mutex
	started bool
	closed  bool
}

// Watcher watches the two source files of a program and rebuilds it on demand.
type Watcher interface {
	// Start launches the goroutine that turns file events into notifications on Changes.
	//
	// Returns:
	//   - error: ErrAlreadyStarted or ErrClosed
	Start() error

	// Changes delivers a notification after either source file changed. Bursts of events are
	// coalesced into one pending notification.
	//
	// Returns:
	//   - <-chan struct{}: the notification channel
	Changes() <-chan struct{}

	// Reload builds a fresh program from the current file contents. On success current is
	// destroyed and the new program returned; on failure the new program is discarded and
	// current is returned unchanged, still usable. Must run on the driver's thread.
	//
	// Parameters:
	//   - current: the program in use, may be nil
	//   - errLog: receives the load failure or the build diagnostics, may be nil
	//
	// Returns:
	//   - shader.ShaderProgram: the program to use from now on
	//   - error: the load or build failure, nil on success
	Reload(current shader.ShaderProgram, errLog io.Writer) (shader.ShaderProgram, error)

	// Close stops the event goroutine and releases the file watches. Calling it more than once
	// is a no-op.
	//
	// Returns:
	//   - error: error if the file watches could not be released
	Close() error
}

var _ Watcher = &watcher{}

// New watches the directories holding the two source files. Nothing is delivered until Start.
//
// Parameters:
//   - driver: the driver reloaded programs are built with
//   - vertexPath: the vertex stage source file
//   - fragmentPath: the fragment stage source file
//   - options: functional options configuring the watcher
//
// Returns:
//   - Watcher: the watcher
//   - error: error if the file system watch could not be set up
func New(driver shader.Driver, vertexPath, fragmentPath string, options ...WatcherBuilderOption) (Watcher, error) {
	if driver == nil {
		return nil, errors.New("watcher: nil driver")
	}
	w := &watcher{
		driver:       driver,
		label:        "program",
		vertexPath:   filepath.Clean(vertexPath),
		fragmentPath: filepath.Clean(fragmentPath),
		changes:      make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
	for _, opt := range options {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// watching the directories keeps the watch alive when a file is replaced by rename
	for _, dir := range uniqueDirs(w.vertexPath, w.fragmentPath) {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w.fs = fsw
	return w, nil
}

func (w *watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.started {
		return ErrAlreadyStarted
	}
	w.started = true
	w.wg.Add(1)
	go w.run()
	return nil
}

func (w *watcher) Changes() <-chan struct{} {
	return w.changes
}

func (w *watcher) Reload(current shader.ShaderProgram, errLog io.Writer) (shader.ShaderProgram, error) {
	next := shader.NewShaderProgram(w.driver, shader.WithLabel(w.label))
	err := next.LoadVertexSourceFromFile(w.vertexPath)
	if err == nil {
		err = next.LoadFragmentSourceFromFile(w.fragmentPath)
	}
	if err != nil && errLog != nil {
		// Create reports its own diagnostics, a load failure has to be reported here
		fmt.Fprintln(errLog, err.Error())
	}
	if err == nil {
		err = next.Create(errLog)
	}
	if err != nil {
		next.Destroy()
		shader.Logger().Warn("shader reload failed, keeping current program", "program", w.label, "error", err)
		return current, err
	}

	if current != nil {
		current.Destroy()
	}
	shader.Logger().Info("shader program reloaded", "program", w.label, "id", next.ID())
	return next, nil
}

func (w *watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	w.mu.Unlock()

	err := w.fs.Close()
	w.wg.Wait()
	return err
}

// run forwards relevant events until Close.
func (w *watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(relevantOps) || !w.watches(ev.Name) {
				continue
			}
			shader.Logger().Debug("shader source changed", "program", w.label, "file", ev.Name, "op", ev.Op.String())
			w.notify()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			shader.Logger().Warn("file watcher error", "program", w.label, "error", err)
		}
	}
}

// notify leaves one pending notification, dropping it if one is already queued.
func (w *watcher) notify() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

func (w *watcher) watches(name string) bool {
	name = filepath.Clean(name)
	return name == w.vertexPath || name == w.fragmentPath
}

func uniqueDirs(paths ...string) []string {
	var dirs []string
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		dir := filepath.Dir(p)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	return dirs
}

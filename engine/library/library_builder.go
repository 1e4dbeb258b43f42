package library

// LibraryBuilderOption is a functional option for configuring a library.
type LibraryBuilderOption func(l *library)

// WithWorkers sets the number of workers reading source files during Preload.
// Defaults to runtime.NumCPU().
//
// Parameters:
//   - workers: the worker count, ignored if not positive
//
// Returns:
//   - LibraryBuilderOption: option function to apply
func WithWorkers(workers int) LibraryBuilderOption {
	return func(l *library) {
		if workers > 0 {
			l.workers = workers
		}
	}
}

// WithQueueSize sets the capacity of the preload task queue. Defaults to 64.
//
// Parameters:
//   - size: the queue capacity, ignored if not positive
//
// Returns:
//   - LibraryBuilderOption: option function to apply
func WithQueueSize(size int) LibraryBuilderOption {
	return func(l *library) {
		if size > 0 {
			l.queueSize = size
		}
	}
}

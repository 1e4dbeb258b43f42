package watcher

// WatcherBuilderOption is a functional option for configuring a watcher.
type WatcherBuilderOption func(w *watcher)

// WithLabel sets the label given to every reloaded program.
//
// Parameters:
//   - label: the program label, ignored if empty
//
// Returns:
//   - WatcherBuilderOption: option function to apply
func WithLabel(label string) WatcherBuilderOption {
	return func(w *watcher) {
		if label != "" {
			w.label = label
		}
	}
}

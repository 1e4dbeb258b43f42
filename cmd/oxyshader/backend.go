package main

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-gl/engine/config"
	"github.com/Carmen-Shannon/oxy-gl/engine/driver/gldriver"
	"github.com/Carmen-Shannon/oxy-gl/engine/driver/soft"
	"github.com/Carmen-Shannon/oxy-gl/engine/driver/wgpudriver"
	"github.com/Carmen-Shannon/oxy-gl/engine/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
)

// openDriver returns the driver for a backend and the function releasing it.
// The gl backend needs a context, so it opens a hidden window that lives until release.
func openDriver(backend string) (shader.Driver, func(), error) {
	switch backend {
	case config.BackendSoft:
		return soft.New(), func() {}, nil

	case config.BackendGL:
		win, err := window.NewWindow(window.WithVisible(false), window.WithWidth(1), window.WithHeight(1))
		if err != nil {
			return nil, nil, err
		}
		drv, err := gldriver.New()
		if err != nil {
			win.Close()
			return nil, nil, err
		}
		slog.Debug("OpenGL driver ready", "version", drv.Version())
		return drv, func() { win.Close() }, nil

	case config.BackendWGPU:
		drv, err := wgpudriver.New(wgpudriver.WithLabel("oxyshader"))
		if err != nil {
			return nil, nil, err
		}
		return drv, drv.Release, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, backend)
}

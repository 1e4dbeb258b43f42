package main

import (
	"errors"
	"log/slog"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/config"
	"github.com/Carmen-Shannon/oxy-gl/engine/driver/gldriver"
	"github.com/Carmen-Shannon/oxy-gl/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gl/engine/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/watcher"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
)

func newTriangleCommand() *cobra.Command {
	var configPath string
	var profile bool

	cmd := &cobra.Command{
		Use:   "triangle",
		Short: "Open a window and draw a triangle with the configured shader program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if !cmd.Flags().Changed("log-level") {
				if err := installLogger(cmd.ErrOrStderr(), cfg.Log.Level); err != nil {
					return err
				}
			}
			if cfg.Backend != config.BackendGL {
				return errors.New("triangle draws through OpenGL and needs backend = \"gl\"")
			}
			return runTriangle(cmd, cfg, profile)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "TOML configuration file")
	cmd.Flags().BoolVar(&profile, "profile", false, "log frame statistics every second")
	return cmd
}

func runTriangle(cmd *cobra.Command, cfg config.Config, profile bool) error {
	vertex, fragment, err := cfg.Shader.Sources()
	if err != nil {
		return err
	}

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
		window.WithResizable(cfg.Window.Resizable),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	drv, err := gldriver.New()
	if err != nil {
		return err
	}
	slog.Info("OpenGL context ready", "version", drv.Version())

	diag := newDiagnosticWriter(cmd.ErrOrStderr())
	program := shader.NewShaderProgram(drv,
		shader.WithLabel("triangle"),
		shader.WithVertexSource(vertex),
		shader.WithFragmentSource(fragment),
	)
	if err := program.Create(diag); err != nil {
		return err
	}
	defer func() { program.Destroy() }()

	triangle := newMesh(triangleVertices)
	defer triangle.release()

	var changes <-chan struct{}
	var watch watcher.Watcher
	if cfg.Shader.Watch {
		watch, err = watcher.New(drv, cfg.Shader.Vertex, cfg.Shader.Fragment, watcher.WithLabel("triangle"))
		if err != nil {
			return err
		}
		defer watch.Close()
		if err := watch.Start(); err != nil {
			return err
		}
		changes = watch.Changes()
	}

	var prof *profiler.Profiler
	if profile {
		prof = profiler.NewProfiler()
	}

	gl.Viewport(0, 0, int32(win.Width()), int32(win.Height()))
	win.SetResizeCallback(func(width, height int) {
		gl.Viewport(0, 0, int32(width), int32(height))
	})

	// W toggles wireframe, R forces a reload when watching.
	wireframe, forceReload := false, false
	win.SetKeyDownCallback(func(keyCode uint32) {
		switch keyCode {
		case common.KeyW:
			wireframe = !wireframe
			gl.PolygonMode(gl.FRONT_AND_BACK, polygonMode(wireframe))
		case common.KeyR:
			forceReload = watch != nil
		}
	})
	win.SetUpdateCallback(func() {
		select {
		case <-changes:
			forceReload = true
		default:
		}
		if forceReload {
			forceReload = false
			// a failed reload keeps drawing with the previous program
			program, _ = watch.Reload(program, diag)
		}

		gl.ClearColor(0.2, 0.3, 0.3, 1.0)
		gl.Clear(gl.COLOR_BUFFER_BIT)
		if err := program.Use(); err == nil {
			triangle.draw()
		}
		if prof != nil {
			prof.Tick()
		}
	})
	win.ProcessMessages()
	return nil
}

func polygonMode(wireframe bool) uint32 {
	if wireframe {
		return gl.LINE
	}
	return gl.FILL
}

package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-gl/engine/config"
	"github.com/Carmen-Shannon/oxy-gl/engine/shader"
)

func newRootCommand() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "oxyshader",
		Short:         "Compile, link and run GLSL shader programs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return installLogger(cmd.ErrOrStderr(), logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	root.AddCommand(newCheckCommand(), newTriangleCommand())
	return root
}

// installLogger routes the shader package and slog.Default to a text handler on w.
func installLogger(w io.Writer, level string) error {
	lvl, err := config.LogConfig{Level: level}.SlogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	shader.SetLogger(logger)
	slog.SetDefault(logger)
	return nil
}

// diagnosticWriter paints everything written through it red when the terminal supports it.
// It serves as the error log handed to ShaderProgram.Create.
type diagnosticWriter struct {
	out *termenv.Output
}

func newDiagnosticWriter(w io.Writer) *diagnosticWriter {
	return &diagnosticWriter{out: termenv.NewOutput(w)}
}

func (d *diagnosticWriter) Write(p []byte) (int, error) {
	styled := d.out.String(string(p)).Foreground(termenv.ANSIRed).String()
	if _, err := io.WriteString(d.out, styled); err != nil {
		return 0, err
	}
	return len(p), nil
}

// success prints a green status line.
func success(w io.Writer, format string, args ...any) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(out, out.String(fmt.Sprintf(format, args...)).Foreground(termenv.ANSIGreen).String())
}

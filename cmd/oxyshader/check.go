package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-gl/engine/config"
	"github.com/Carmen-Shannon/oxy-gl/engine/library"
)

type checkOptions struct {
	vertex   []string
	fragment []string
	backend  string
	workers  int
}

func newCheckCommand() *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check --vertex a.vert --fragment a.frag [--vertex b.vert --fragment b.frag ...]",
		Short: "Compile and link shader programs and report their diagnostics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, opts)
		},
	}
	cmd.Flags().StringArrayVar(&opts.vertex, "vertex", nil, "vertex stage source file, repeat once per program")
	cmd.Flags().StringArrayVar(&opts.fragment, "fragment", nil, "fragment stage source file, paired with --vertex by position")
	cmd.Flags().StringVar(&opts.backend, "backend", config.BackendSoft, "compiler backend: soft, gl or wgpu")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "source reading workers, 0 for one per CPU")
	_ = cmd.MarkFlagRequired("vertex")
	_ = cmd.MarkFlagRequired("fragment")
	return cmd
}

func runCheck(cmd *cobra.Command, opts *checkOptions) error {
	if len(opts.vertex) != len(opts.fragment) {
		return fmt.Errorf("got %d --vertex and %d --fragment files, they must pair up", len(opts.vertex), len(opts.fragment))
	}

	drv, release, err := openDriver(strings.ToLower(opts.backend))
	if err != nil {
		return err
	}
	defer release()

	lib := library.NewLibrary(drv, library.WithWorkers(opts.workers))
	defer lib.Destroy()

	for i := range opts.vertex {
		if err := lib.Add(programName(opts.vertex[i], i), opts.vertex[i], opts.fragment[i]); err != nil {
			return err
		}
	}

	diag := newDiagnosticWriter(cmd.ErrOrStderr())
	buildErr := lib.Build(diag)
	if buildErr != nil {
		fmt.Fprintln(diag, buildErr)
	}

	failed := 0
	for _, name := range lib.Names() {
		p, ok := lib.Program(name)
		if !ok || !p.Created() {
			failed++
			continue
		}
		success(cmd.OutOrStdout(), "%s: ok (program %d)", name, p.ID())
	}
	if failed > 0 {
		return errors.New("shader check failed")
	}
	return nil
}

// programName derives a program name from its vertex file, suffixed with its position so that
// two programs sharing a vertex stage stay distinct.
func programName(vertexPath string, index int) string {
	base := strings.TrimSuffix(filepath.Base(vertexPath), filepath.Ext(vertexPath))
	return fmt.Sprintf("%s#%d", base, index)
}

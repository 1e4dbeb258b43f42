package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-gl/engine/config"
)

func writeSources(t *testing.T, vertex, fragment string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	vp := filepath.Join(dir, "triangle.vert")
	fp := filepath.Join(dir, "triangle.frag")
	require.NoError(t, os.WriteFile(vp, []byte(vertex), 0o644))
	require.NoError(t, os.WriteFile(fp, []byte(fragment), 0o644))
	return vp, fp
}

func execute(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	root := newRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRun_ReportsErrors(t *testing.T) {
	vp, fp := writeSources(t, config.TriangleVertexSource, config.TriangleFragmentSource)
	badConfig := filepath.Join(t.TempDir(), "oxy.toml")
	require.NoError(t, os.WriteFile(badConfig, []byte("[window]\ncolour = 1\n"), 0o644))

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unknown backend", args: []string{"check", "--vertex", vp, "--fragment", fp, "--backend", "metal"}, wantErr: "unknown backend"},
		{name: "unpaired", args: []string{"check", "--vertex", vp, "--vertex", vp, "--fragment", fp}, wantErr: "must pair up"},
		{name: "bad log level", args: []string{"--log-level", "loud", "check", "--vertex", vp, "--fragment", fp}, wantErr: "invalid log level"},
		{name: "missing config", args: []string{"triangle", "--config", filepath.Join(t.TempDir(), "none.toml")}, wantErr: "failed to open config"},
		{name: "invalid config", args: []string{"triangle", "--config", badConfig}, wantErr: "unknown configuration keys"},
		{name: "unknown flag", args: []string{"check", "--nope"}, wantErr: "unknown flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr.String(), "error: ")
			assert.Contains(t, stderr.String(), tt.wantErr)
		})
	}
}

func TestRun_Success(t *testing.T) {
	vp, fp := writeSources(t, config.TriangleVertexSource, config.TriangleFragmentSource)

	var stdout, stderr bytes.Buffer
	code := run([]string{"check", "--vertex", vp, "--fragment", fp}, &stdout, &stderr)
	assert.Zero(t, code)
	assert.Contains(t, stdout.String(), "triangle#0: ok")
	assert.NotContains(t, stderr.String(), "error: ")
}

func TestCheck_Valid(t *testing.T) {
	vp, fp := writeSources(t, config.TriangleVertexSource, config.TriangleFragmentSource)

	stdout, _, err := execute("check", "--vertex", vp, "--fragment", fp)
	require.NoError(t, err)
	assert.Contains(t, stdout, "triangle#0: ok")
}

func TestCheck_Garbage(t *testing.T) {
	vp, fp := writeSources(t, config.TriangleVertexSource, config.TriangleVertexSource+"asdasdjqw;jdekl")

	_, stderr, err := execute("check", "--vertex", vp, "--fragment", fp)
	require.Error(t, err)
	assert.Contains(t, stderr, "asdasdjqw")
}

func TestCheck_Errors(t *testing.T) {
	vp, fp := writeSources(t, config.TriangleVertexSource, config.TriangleFragmentSource)

	tests := []struct {
		name string
		args []string
	}{
		{name: "unpaired", args: []string{"check", "--vertex", vp, "--vertex", vp, "--fragment", fp}},
		{name: "unknown backend", args: []string{"check", "--vertex", vp, "--fragment", fp, "--backend", "metal"}},
		{name: "missing file", args: []string{"check", "--vertex", vp + ".missing", "--fragment", fp}},
		{name: "bad log level", args: []string{"--log-level", "loud", "check", "--vertex", vp, "--fragment", fp}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestTriangle_RejectsNonGLBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oxy.toml")
	require.NoError(t, os.WriteFile(path, []byte(`backend = "soft"`), 0o644))

	_, _, err := execute("triangle", "--config", path)
	assert.ErrorContains(t, err, "needs backend")
}

func TestProgramName(t *testing.T) {
	assert.Equal(t, "triangle#0", programName("shaders/triangle.vert", 0))
	assert.Equal(t, "lit#3", programName("lit.glsl", 3))
}

func TestDiagnosticWriter(t *testing.T) {
	var buf bytes.Buffer
	d := &diagnosticWriter{out: termenv.NewOutput(&buf, termenv.WithProfile(termenv.Ascii))}

	n, err := d.Write([]byte("0:1(1): error: boom\n"))
	require.NoError(t, err)
	assert.Equal(t, 20, n)
	assert.Equal(t, "0:1(1): error: boom\n", buf.String())
}

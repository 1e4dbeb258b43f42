package watcher

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-gl/engine/driver/soft"
	"github.com/Carmen-Shannon/oxy-gl/engine/shader"
)

const (
	vertexSource   = "#version 330 core\nlayout (location = 0) in vec3 position;\nvoid main() {\ngl_Position = vec4(position, 1.0);\n}\n"
	fragmentSource = "#version 330 core\nout vec4 color;\nvoid main() {\ncolor = vec4(1.0, 0.5, 0.2, 1.0);\n}\n"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// setup writes a valid source pair and returns a watcher over it.
func setup(t *testing.T) (*soft.Driver, Watcher, string, string) {
	t.Helper()
	dir := t.TempDir()
	vp := filepath.Join(dir, "triangle.vert")
	fp := filepath.Join(dir, "triangle.frag")
	writeFile(t, vp, vertexSource)
	writeFile(t, fp, fragmentSource)

	d := soft.New()
	w, err := New(d, vp, fp, WithLabel("triangle"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return d, w, vp, fp
}

func TestReload_ReplacesProgram(t *testing.T) {
	d, w, _, _ := setup(t)

	first, err := w.Reload(nil, nil)
	require.NoError(t, err)
	require.True(t, first.Created())
	assert.Equal(t, "triangle", first.Label())

	second, err := w.Reload(first, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), second.ID())
	assert.Zero(t, first.ID(), "the replaced program is destroyed")
	assert.Equal(t, 1, d.LivePrograms())
	assert.Zero(t, d.LiveStages())
}

func TestReload_FailureKeepsCurrent(t *testing.T) {
	d, w, vp, _ := setup(t)

	current, err := w.Reload(nil, nil)
	require.NoError(t, err)

	writeFile(t, vp, vertexSource+"asdasdjqw;rjdekl")
	var errLog bytes.Buffer
	got, err := w.Reload(current, &errLog)
	require.Error(t, err)
	assert.Same(t, current, got)
	assert.True(t, got.Created())
	assert.NotEmpty(t, errLog.String())
	assert.Equal(t, 1, d.LivePrograms())
	assert.Zero(t, d.LiveStages())
}

func TestReload_MissingFile(t *testing.T) {
	_, w, _, fp := setup(t)
	require.NoError(t, os.Remove(fp))

	var errLog bytes.Buffer
	got, err := w.Reload(nil, &errLog)
	require.Error(t, err)
	assert.ErrorIs(t, err, shader.ErrFileNotFound)
	assert.Nil(t, got)
	assert.Contains(t, errLog.String(), "source file not found")
	assert.Contains(t, errLog.String(), fp)
}

func TestReload_MissingFileKeepsCurrent(t *testing.T) {
	d, w, vp, _ := setup(t)

	current, err := w.Reload(nil, nil)
	require.NoError(t, err)

	require.NoError(t, os.Remove(vp))
	var errLog bytes.Buffer
	got, err := w.Reload(current, &errLog)
	require.Error(t, err)
	assert.Same(t, current, got)
	assert.NotEmpty(t, errLog.String())
	assert.Equal(t, 1, d.LivePrograms())
}

func TestStart_NotifiesOnWrite(t *testing.T) {
	_, w, _, fp := setup(t)
	require.NoError(t, w.Start())

	writeFile(t, fp, fragmentSource+"\n")

	select {
	case <-w.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification after writing the fragment source")
	}
}

func TestStart_IgnoresOtherFiles(t *testing.T) {
	_, w, vp, _ := setup(t)
	require.NoError(t, w.Start())

	writeFile(t, filepath.Join(filepath.Dir(vp), "notes.txt"), "unrelated")

	select {
	case <-w.Changes():
		t.Fatal("notified for a file that is not a shader source")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestStart_Lifecycle(t *testing.T) {
	_, w, _, _ := setup(t)

	require.NoError(t, w.Start())
	assert.ErrorIs(t, w.Start(), ErrAlreadyStarted)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Start(), ErrClosed)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil, "a.vert", "a.frag")
	assert.Error(t, err)

	_, err = New(soft.New(), filepath.Join(t.TempDir(), "missing", "a.vert"), "a.frag")
	assert.Error(t, err)
}

func TestNotifyCoalesces(t *testing.T) {
	w := &watcher{changes: make(chan struct{}, 1)}
	w.notify()
	w.notify()
	w.notify()

	assert.Len(t, w.changes, 1)
}

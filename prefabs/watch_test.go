package prefabs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsRelevantFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	script := filepath.Join(dir, "patrol.tengo")
	require.NoError(t, os.WriteFile(script, []byte("update := func(e, s) {}"), 0o644))

	select {
	case got := <-w.Events:
		assert.Equal(t, script, got)
	case err := <-w.Errors:
		t.Fatalf("watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for changed script")
	}
}

func TestWatcherCloseClosesChannels(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close(), "second close")

	select {
	case _, ok := <-w.Events:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("events channel left open")
	}
}

func TestNewWatcherMissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestWatcherCollapsesBursts(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	mesh := filepath.Join(dir, "arena.yaml")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(mesh, []byte("vertices: []\n"), 0o644))
	}

	select {
	case got := <-w.Events:
		assert.Equal(t, mesh, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for changed mesh")
	}

	select {
	case got := <-w.Events:
		t.Fatalf("unexpected second event %q", got)
	case <-time.After(3 * settleTime):
	}
}

func TestWatcherFileKinds(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	want := map[string]bool{}
	for _, name := range []string{"arena.navmesh", "strip.toml", "patrol.tengo"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		want[path] = true
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0o644))

	got := map[string]bool{}
	deadline := time.After(5 * time.Second)
	for len(got) < len(want) {
		select {
		case name := <-w.Events:
			got[name] = true
		case <-deadline:
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	assert.Equal(t, want, got)

	select {
	case name := <-w.Events:
		t.Fatalf("unexpected event %q", name)
	case <-time.After(3 * settleTime):
	}
}

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcherDeliversReloads(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "keyfall.yaml")
	require.NoError(t, os.WriteFile(path, []byte("physics: {gravity: 1}\n"), 0o644))

	w, err := NewWatcher(path, Overrides{}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("physics: {gravity: 2.5}\n"), 0o644))

	select {
	case cfg := <-w.Updates():
		assert.Equal(t, 2.5, cfg.Physics.Gravity)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload delivered")
	}
}

func TestWatcherSkipsInvalidReloads(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "keyfall.yaml")
	require.NoError(t, os.WriteFile(path, []byte("physics: {gravity: 1}\n"), 0o644))

	w, err := NewWatcher(path, Overrides{}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("physics: {max_speed: -4}\n"), 0o644))

	select {
	case cfg := <-w.Updates():
		t.Fatalf("unexpected reload %+v", cfg.Physics)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcherStopWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := NewWatcher(filepath.Join(t.TempDir(), "keyfall.yaml"), Overrides{}, nil)
	require.NoError(t, err)
	w.Stop()
}

func TestWatcherKeepsOverrides(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "keyfall.yaml")
	require.NoError(t, os.WriteFile(path, []byte("physics: {gravity: 1}\n"), 0o644))

	w, err := NewWatcher(path, Overrides{Width: 640, Policy: PolicyMargin}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("physics: {gravity: 2.5}\n"), 0o644))

	select {
	case cfg := <-w.Updates():
		assert.Equal(t, 2.5, cfg.Physics.Gravity)
		assert.Equal(t, 640, cfg.Window.Width)
		assert.Equal(t, 800, cfg.Window.Height)
		assert.Equal(t, PolicyMargin, cfg.Bounds.Policy)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload delivered")
	}
}

func TestWatcherSkipsReloadsThatBreakOverrides(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "keyfall.yaml")
	require.NoError(t, os.WriteFile(path, []byte("physics: {gravity: 1}\n"), 0o644))

	w, err := NewWatcher(path, Overrides{Policy: PolicyMargin}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	// Valid alone, but too small a margin once the policy override applies.
	require.NoError(t, os.WriteFile(path, []byte("bounds: {margin: 10}\n"), 0o644))

	select {
	case cfg := <-w.Updates():
		t.Fatalf("unexpected reload %+v", cfg.Bounds)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcherKeepsConfigWhileFileIsMissing(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "keyfall.yaml")
	require.NoError(t, os.WriteFile(path, []byte("physics: {gravity: 1}\n"), 0o644))

	w, err := NewWatcher(path, Overrides{}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.Rename(path, filepath.Join(dir, "keyfall.yaml~")))

	select {
	case cfg := <-w.Updates():
		t.Fatalf("missing file delivered a config with gravity %v", cfg.Physics.Gravity)
	case <-time.After(500 * time.Millisecond):
	}
}

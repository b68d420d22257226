package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func start(t *testing.T, root string, opts Options) (*Watcher, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	w, err := New(root, func() { calls.Add(1) }, opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w, &calls
}

func TestWatcherCoalescesBursts(t *testing.T) {
	root := t.TempDir()
	_, calls := start(t, root, Options{Debounce: 100 * time.Millisecond})

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "f.ini"), []byte{byte(i)}, 0644))
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	_, calls := start(t, root, Options{Debounce: 50 * time.Millisecond})

	sub := filepath.Join(root, "addon", "GSX Profile")
	require.NoError(t, os.MkdirAll(sub, 0755))
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)

	before := calls.Load()
	// give the watcher time to register the new directory
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "egll.ini"), []byte("x"), 0644))
	assert.Eventually(t, func() bool { return calls.Load() > before }, 3*time.Second, 20*time.Millisecond)
}

func TestWatcherFollowsLinkedDirectories(t *testing.T) {
	base := t.TempDir()
	addon := filepath.Join(base, "addons", "fsdt-kjfk", "GSX Profile")
	require.NoError(t, os.MkdirAll(addon, 0755))
	root := filepath.Join(base, "Community")
	require.NoError(t, os.MkdirAll(root, 0755))
	if err := os.Symlink(filepath.Join(base, "addons", "fsdt-kjfk"), filepath.Join(root, "fsdt-kjfk")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	// a cycle must not stop the watcher from starting
	require.NoError(t, os.Symlink(root, filepath.Join(addon, "loop")))

	_, calls := start(t, root, Options{Debounce: 50 * time.Millisecond})

	require.NoError(t, os.WriteFile(filepath.Join(addon, "kjfk.ini"), []byte("x"), 0644))
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestNewRejectsMissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), func() {}, Options{})
	assert.Error(t, err)
}

func TestWatcherStopsOnCancel(t *testing.T) {
	root := t.TempDir()
	w, err := New(root, func() {}, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, w.Run(ctx))
}

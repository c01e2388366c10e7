package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/photosweep/pkg/photosweep/catalog"
	"github.com/jamesainslie/photosweep/pkg/photosweep/mediastore/fsstore"
)

type countingLoader struct {
	calls atomic.Int32
}

func (l *countingLoader) Load(context.Context) (catalog.LoadResult, error) {
	l.calls.Add(1)
	return catalog.LoadResult{Applied: true}, nil
}

func startWatcher(t *testing.T, loader Reloader, root string, opts Options) *Watcher {
	t.Helper()

	w, err := New(loader, opts)
	require.NoError(t, err)
	require.NoError(t, w.Watch(root))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
	return w
}

func TestNew_DefaultDebounce(t *testing.T) {
	w, err := New(&countingLoader{}, Options{})
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, DefaultDebounce, w.debounce)
}

func TestWatch_TracksSubdirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "2024", "06"), 0o755))

	w, err := New(&countingLoader{}, Options{})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Watch(root))
	assert.Equal(t, 3, w.Watched())

	w.forget(filepath.Join(root, "2024"))
	assert.Equal(t, 1, w.Watched())
}

func TestWatch_FileIsIgnored(t *testing.T) {
	file := filepath.Join(t.TempDir(), "a.jpg")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	w, err := New(&countingLoader{}, Options{})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Watch(file))
	assert.Equal(t, 0, w.Watched())
}

func TestRun_DebouncesBursts(t *testing.T) {
	if testing.Short() {
		t.Skip("watches the filesystem")
	}

	root := t.TempDir()
	loader := &countingLoader{}
	startWatcher(t, loader, root, Options{Debounce: 150 * time.Millisecond})

	for i := range 5 {
		name := filepath.Join(root, "img"+string(rune('a'+i))+".jpg")
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o644))
	}

	require.Eventually(t, func() bool { return loader.calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(1), loader.calls.Load(), "a burst yields one reload")
}

func TestRun_WatchesNewDirectories(t *testing.T) {
	if testing.Short() {
		t.Skip("watches the filesystem")
	}

	root := t.TempDir()
	loader := &countingLoader{}
	w := startWatcher(t, loader, root, Options{Debounce: 50 * time.Millisecond})

	require.NoError(t, os.Mkdir(filepath.Join(root, "import"), 0o755))
	require.Eventually(t, func() bool { return w.Watched() == 2 }, 3*time.Second, 20*time.Millisecond)
	require.Eventually(t, func() bool { return loader.calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)

	before := loader.calls.Load()
	require.NoError(t, os.WriteFile(filepath.Join(root, "import", "new.jpg"), []byte("x"), 0o644))
	require.Eventually(t, func() bool { return loader.calls.Load() > before }, 3*time.Second, 20*time.Millisecond)
}

func TestRun_StopsOnCancel(t *testing.T) {
	w, err := New(&countingLoader{}, Options{})
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_ReloadsCatalog(t *testing.T) {
	if testing.Short() {
		t.Skip("watches the filesystem")
	}

	root := t.TempDir()
	store, err := fsstore.Open(fsstore.Options{Root: root})
	require.NoError(t, err)
	defer store.Close()

	c := catalog.New()
	loader := catalog.NewLoader(c, store)
	_, err = loader.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, c.Len())

	reloaded := make(chan error, 8)
	startWatcher(t, loader, root, Options{
		Debounce: 50 * time.Millisecond,
		OnReload: func(_ catalog.LoadResult, err error) { reloaded <- err },
	})

	require.NoError(t, os.WriteFile(filepath.Join(root, "clip.mp4"), []byte("not really a movie"), 0o644))

	select {
	case err := <-reloaded:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after library change")
	}
	assert.Eventually(t, func() bool { return c.Len() == 1 }, time.Second, 20*time.Millisecond)
}

func TestIsSubPath(t *testing.T) {
	sep := string(filepath.Separator)
	assert.True(t, isSubPath("a"+sep+"b", "a"))
	assert.False(t, isSubPath("ab", "a"))
	assert.False(t, isSubPath("a", "a"))
}

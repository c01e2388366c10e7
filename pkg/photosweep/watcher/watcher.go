// Package watcher reloads the catalog when the media library on disk
// changes.
//
// Events are debounced: a burst of changes (an import copying hundreds of
// files) produces one reload once the library has been quiet for the
// debounce interval. Reloads run concurrently with the event loop, so a
// slow load may overlap the next one; the catalog keeps the newest.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jamesainslie/photosweep/pkg/photosweep/catalog"
	"github.com/jamesainslie/photosweep/pkg/photosweep/logging"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 2 * time.Second

// Reloader repopulates the catalog. *catalog.Loader implements it.
type Reloader interface {
	Load(ctx context.Context) (catalog.LoadResult, error)
}

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period after the last event before a reload.
	Debounce time.Duration

	// OnReload, if set, is called after every reload attempt.
	OnReload func(catalog.LoadResult, error)
}

// Watcher watches a library tree and triggers reloads on change.
type Watcher struct {
	loader   Reloader
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onReload func(catalog.LoadResult, error)

	mu     sync.RWMutex
	paths  map[string]bool
	closed bool

	reloads sync.WaitGroup
	log     *logging.Logger
}

// New creates a Watcher that calls loader.Load after changes.
func New(loader Reloader, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		loader:   loader,
		watcher:  fsw,
		debounce: debounce,
		onReload: opts.OnReload,
		paths:    make(map[string]bool),
		log:      logging.Get("watcher"),
	}, nil
}

// Watch adds root and every directory beneath it. Symlinks are not
// followed.
func (w *Watcher) Watch(root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	info, err := os.Lstat(absRoot)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}

	return w.watchTree(absRoot)
}

func (w *Watcher) watchTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // unreadable entries are skipped
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if d.IsDir() {
			return w.addWatch(path)
		}
		return nil
	})
}

func (w *Watcher) addWatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.paths[path] {
		return nil
	}

	if err := w.watcher.Add(path); err != nil {
		w.log.Warn("failed to add watch", "path", path, "error", err)
		return err
	}
	w.paths[path] = true
	return nil
}

// Watched returns the number of watched directories.
func (w *Watcher) Watched() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.paths)
}

// Run processes events until ctx is canceled or the watcher is closed,
// then waits for in-flight reloads to finish.
func (w *Watcher) Run(ctx context.Context) {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	pending := false

	defer w.reloads.Wait()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.handleEvent(event) {
				continue
			}
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
			pending = true

		case <-timer.C:
			pending = false
			w.reload(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("watcher error", "error", err)
		}
	}
}

// handleEvent keeps the watch set in step with the tree and reports
// whether the event should trigger a reload.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	switch {
	case event.Has(fsnotify.Create):
		if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
			_ = w.watchTree(event.Name)
		}
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.forget(event.Name)
	case event.Has(fsnotify.Write):
	default:
		// Chmod only.
		return false
	}

	w.log.Debug("library changed", "path", event.Name, "op", event.Op.String())
	return true
}

func (w *Watcher) forget(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for p := range w.paths {
		if p == path || isSubPath(p, path) {
			_ = w.watcher.Remove(p)
			delete(w.paths, p)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	w.reloads.Add(1)
	go func() {
		defer w.reloads.Done()

		result, err := w.loader.Load(ctx)
		switch {
		case err != nil:
			w.log.Warn("reload failed", "request", result.RequestID, "error", err)
		case !result.Applied:
			w.log.Debug("reload superseded", "request", result.RequestID, "seq", result.Sequence)
		default:
			w.log.Info("catalog reloaded", "request", result.RequestID, "records", result.Records, "elapsed", result.Elapsed)
		}

		if w.onReload != nil {
			w.onReload(result, err)
		}
	}()
}

// Close stops watching. A running Run returns.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	w.paths = make(map[string]bool)
	return w.watcher.Close()
}

func isSubPath(path, parent string) bool {
	return len(path) > len(parent) && path[:len(parent)+1] == parent+string(filepath.Separator)
}

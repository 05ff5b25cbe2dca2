package runner

import (
	"context"
	"crypto/sha256"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/singleflight"
)

const defaultDebounce = 100 * time.Millisecond

// eventWatcher is the part of *fsnotify.Watcher the Watcher uses.
type eventWatcher interface {
	Add(name string) error
	Close() error
	Events() chan fsnotify.Event
	Errors() chan error
}

type eventWatcherWrapper struct {
	*fsnotify.Watcher
}

func (w *eventWatcherWrapper) Events() chan fsnotify.Event { return w.Watcher.Events }
func (w *eventWatcherWrapper) Errors() chan error          { return w.Watcher.Errors }

func newFSNotifyWatcher() (eventWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &eventWatcherWrapper{w}, nil
}

// FormatFunc formats a single file in place.
type FormatFunc func(ctx context.Context, path string) error

// Watcher re-formats matching files when they are written. Each path is debounced on its
// own, and a file whose content still equals what the last format produced is skipped,
// so the formatter's own write does not start another round.
type Watcher struct {
	roots  []string
	match  func(path string) bool
	format FormatFunc
	logger *slog.Logger
	Ready  chan struct{}

	debounce   time.Duration
	newWatcher func() (eventWatcher, error)

	group  singleflight.Group
	mu     sync.Mutex
	timers map[string]*time.Timer
	hashes map[string][sha256.Size]byte
	wg     sync.WaitGroup
}

// NewWatcher watches roots recursively and calls format for every written file that
// match accepts.
func NewWatcher(roots []string, match func(string) bool, format FormatFunc, logger *slog.Logger) *Watcher {
	return &Watcher{
		roots:      roots,
		match:      match,
		format:     format,
		logger:     logger.With("component", "watcher"),
		Ready:      make(chan struct{}),
		debounce:   defaultDebounce,
		newWatcher: newFSNotifyWatcher,
		timers:     make(map[string]*time.Timer),
		hashes:     make(map[string][sha256.Size]byte),
	}
}

// Watch blocks until ctx is cancelled. Pending and running formats are finished or
// dropped before it returns.
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := w.newWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watched := 0
	for _, root := range w.roots {
		dir, ok := watchDir(root)
		if !ok {
			w.logger.Debug("skipping missing watch root", "root", root)
			continue
		}
		if err = w.addRecursive(watcher, dir); err != nil {
			return err
		}
		watched++
	}
	if watched == 0 {
		w.logger.Warn("No existing directories to watch", "roots", strings.Join(w.roots, ", "))
	}

	w.logger.Info("Watching for changes", "roots", strings.Join(w.roots, ", "))
	if w.Ready != nil {
		close(w.Ready)
	}

	for {
		select {
		case <-ctx.Done():
			w.stop()
			return ctx.Err()
		case err := <-watcher.Errors():
			if err != nil {
				w.logger.Error("Watcher error", "error", err)
			}
		case event, ok := <-watcher.Events():
			if !ok {
				w.stop()
				return nil
			}
			if path, relevant := w.handleEvent(watcher, event); relevant {
				w.schedule(ctx, path)
			}
		}
	}
}

// watchDir returns the directory to watch for a search root. A root naming a file is
// watched through its parent.
func watchDir(root string) (string, bool) {
	info, err := os.Stat(root)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		return root, true
	}
	return filepath.Dir(root), true
}

// handleEvent adds newly created directories to the watcher and reports whether the
// event is a write to a file the pattern selects.
func (w *Watcher) handleEvent(watcher eventWatcher, event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return "", false
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := w.addRecursive(watcher, event.Name); err != nil {
				w.logger.Error("Failed to watch new directory", "path", event.Name, "error", err)
			}
		}
		return "", false
	}
	if !info.Mode().IsRegular() || !w.match(event.Name) {
		return "", false
	}
	return event.Name, true
}

// addRecursive adds the given path and all its subdirectories to the watcher.
func (w *Watcher) addRecursive(watcher eventWatcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok && t.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.timers[path] == t {
			delete(w.timers, path)
		}
		w.mu.Unlock()
		w.process(ctx, path)
	})
	w.timers[path] = t
}

func (w *Watcher) stop() {
	w.mu.Lock()
	for path, t := range w.timers {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.timers, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Watcher) process(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	//nolint:errcheck // failures are logged inside
	w.group.Do(path, func() (interface{}, error) {
		before, err := fileHash(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				w.logger.Error("Cannot read changed file", "path", path, "error", err)
			}
			return nil, nil
		}
		if w.unchanged(path, before) {
			w.logger.Debug("skipping file already formatted", "path", path)
			return nil, nil
		}

		if err = w.format(ctx, path); err != nil {
			w.logger.Error(err.Error(), "path", path)
			return nil, nil
		}

		if after, hErr := fileHash(path); hErr == nil {
			w.mu.Lock()
			w.hashes[path] = after
			w.mu.Unlock()
		}
		return nil, nil
	})
}

func (w *Watcher) unchanged(path string, sum [sha256.Size]byte) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	prev, ok := w.hashes[path]
	return ok && prev == sum
}

func fileHash(path string) ([sha256.Size]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return [sha256.Size]byte{}, err
	}
	return sha256.Sum256(data), nil
}

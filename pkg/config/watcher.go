package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"github.com/compozy/docsplit/pkg/logger"
	"github.com/fsnotify/fsnotify"
)

// relevantOps are the events that can change a file's content.
const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename

// Watcher reports changes to individual files. It subscribes to their parent
// directories, so saves that replace the file through a rename are seen, and a
// file that does not exist yet is reported once it is created.
type Watcher struct {
	fs *fsnotify.Watcher

	mu       sync.RWMutex
	files    map[string]struct{}
	dirRefs  map[string]int
	handlers []func(path string)

	done      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
}

// NewWatcher creates a watcher with no files.
func NewWatcher() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		fs:      fsw,
		files:   make(map[string]struct{}),
		dirRefs: make(map[string]int),
		done:    make(chan struct{}),
	}, nil
}

// OnChange registers fn. It receives the absolute path of the changed file.
func (w *Watcher) OnChange(fn func(path string)) {
	if fn == nil {
		return
	}
	w.mu.Lock()
	w.handlers = append(w.handlers, fn)
	w.mu.Unlock()
}

// Watch adds path until ctx is done or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	if err := w.add(abs); err != nil {
		return err
	}
	w.startOnce.Do(func() { go w.loop(logger.FromContext(ctx)) })
	if done := ctx.Done(); done != nil {
		go func() {
			select {
			case <-done:
				w.remove(ctx, abs)
			case <-w.done:
			}
		}()
	}
	return nil
}

func (w *Watcher) add(abs string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[abs]; ok {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirRefs[dir] == 0 {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}
	w.dirRefs[dir]++
	w.files[abs] = struct{}{}
	return nil
}

func (w *Watcher) remove(ctx context.Context, abs string) {
	dir := filepath.Dir(abs)
	w.mu.Lock()
	if _, ok := w.files[abs]; !ok {
		w.mu.Unlock()
		return
	}
	delete(w.files, abs)
	w.dirRefs[dir]--
	last := w.dirRefs[dir] <= 0
	if last {
		delete(w.dirRefs, dir)
	}
	w.mu.Unlock()
	if !last {
		return
	}
	if err := w.fs.Remove(dir); err != nil && !errors.Is(err, fsnotify.ErrClosed) {
		logger.FromContext(ctx).Debug("failed to remove watch", "dir", dir, "error", err)
	}
}

func (w *Watcher) loop(log logger.Logger) {
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&relevantOps == 0 {
				continue
			}
			w.dispatch(filepath.Clean(event.Name))
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) dispatch(path string) {
	w.mu.RLock()
	_, watched := w.files[path]
	handlers := slices.Clone(w.handlers)
	w.mu.RUnlock()
	if !watched {
		return
	}
	for _, fn := range handlers {
		fn(path)
	}
}

// Close stops event delivery. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		if cerr := w.fs.Close(); cerr != nil {
			err = fmt.Errorf("failed to close watcher: %w", cerr)
		}
	})
	return err
}

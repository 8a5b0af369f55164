// Package watch invalidates publish-directory knowledge when the
// filesystem changes underneath it. Events are debounced per directory so
// a publish writing dozens of files triggers one callback, not dozens.
package watch

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDuration = 250 * time.Millisecond

// Watcher watches publish directories and reports, after a quiet period,
// which directory changed. The callback decides what to do with it
// (typically cache invalidation followed by a rescan).
type Watcher struct {
	fsw      *fsnotify.Watcher
	onChange func(dir string)
	logger   *slog.Logger

	mu     sync.Mutex
	dirs   map[string]bool
	timers map[string]*time.Timer
	closed bool

	done chan struct{}
}

// New starts a watcher delivering debounced per-directory change callbacks.
// The callback runs on the watcher's goroutine timer; it must not block.
func New(onChange func(dir string), logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		fsw:      fsw,
		onChange: onChange,
		logger:   logger,
		dirs:     make(map[string]bool),
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Add registers a directory. Watching the same directory twice is a no-op.
func (w *Watcher) Add(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dirs[dir] {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return err
	}
	w.dirs[dir] = true
	return nil
}

// Remove stops watching a directory.
func (w *Watcher) Remove(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.dirs[dir] {
		return nil
	}
	delete(w.dirs, dir)
	if t, ok := w.timers[dir]; ok {
		t.Stop()
		delete(w.timers, dir)
	}
	return w.fsw.Remove(dir)
}

// Close stops the watcher and cancels pending callbacks.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for dir, t := range w.timers {
		t.Stop()
		delete(w.timers, dir)
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.bump(w.watchedDirFor(event.Name))
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// watchedDirFor maps an event path back to the registered directory. Events
// arrive for entries inside the watched directory, and nested scans may
// register parents too; the deepest registered ancestor wins.
func (w *Watcher) watchedDirFor(name string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	dir := name
	for dir != "" {
		if w.dirs[dir] {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func (w *Watcher) bump(dir string) {
	if dir == "" {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.timers[dir]; ok {
		t.Reset(debounceDuration)
		return
	}
	w.timers[dir] = time.AfterFunc(debounceDuration, func() {
		w.mu.Lock()
		delete(w.timers, dir)
		closed := w.closed
		w.mu.Unlock()
		if closed {
			return
		}
		w.logger.Debug("publish directory changed", "dir", dir)
		w.onChange(dir)
	})
}

package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/amply-impact/amply/internal/log"
)

var errWatcherClosed = errors.New("storage watcher is closed")

// Watcher reports keys whose files change on disk, e.g. when another
// amply process logs out. Bursts of events for one key are coalesced.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	dir      string
	logger   *log.Logger
	debounce time.Duration
	pending  map[string]time.Time
	changes  chan string
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	closed   bool
}

// NewWatcher creates a watcher for dir. Call Start to begin delivery.
func NewWatcher(dir string, logger *log.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Watcher{
		watcher:  fw,
		dir:      dir,
		logger:   logger.With("component", "storage.watcher"),
		debounce: 150 * time.Millisecond,
		pending:  make(map[string]time.Time),
		changes:  make(chan string, len(Keys)),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// SetDebounce overrides the coalescing window. Call before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	w.debounce = d
	w.mu.Unlock()
}

// Changes delivers changed keys. It is closed after Stop.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Start begins watching. It returns after the directory is registered.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return errWatcherClosed
	}
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.logger.Debug("watching state directory", "dir", w.dir)

	go w.run(ctx)
	return nil
}

// Stop ends the watch loop, releases the fsnotify handle and closes
// Changes. Safe to call more than once, and without a prior Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	wasRunning := w.running
	w.running = false
	w.closed = true
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	} else {
		close(w.changes)
	}
	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("closing watcher", "error", err)
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer close(w.changes)

	w.mu.Lock()
	interval := w.debounce / 3
	w.mu.Unlock()
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		case now := <-tick.C:
			if !w.flush(ctx, now) {
				return
			}
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	key, ok := KeyForPath(ev.Name)
	if !ok || key == "" || key[0] == '.' {
		return
	}
	w.mu.Lock()
	w.pending[key] = time.Now()
	w.mu.Unlock()
}

// flush emits keys that have been quiet for the debounce window.
// It reports false when the watcher is shutting down.
func (w *Watcher) flush(ctx context.Context, now time.Time) bool {
	w.mu.Lock()
	var ready []string
	for key, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			ready = append(ready, key)
			delete(w.pending, key)
		}
	}
	w.mu.Unlock()

	for _, key := range ready {
		select {
		case w.changes <- key:
			w.logger.Debug("state key changed", "key", key)
		case <-ctx.Done():
			return false
		case <-w.stopCh:
			return false
		}
	}
	return true
}

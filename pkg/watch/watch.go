// Package watch re-runs a scan whenever the design document file
// changes on disk. Events are debounced because exporters typically
// write the file in several bursts.
package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups rapid successive writes into one rescan.
const DefaultDebounce = 250 * time.Millisecond

// Options configures a DocumentWatcher.
type Options struct {
	// Debounce is how long to wait after the last write before firing.
	Debounce time.Duration
	Logger   *slog.Logger
}

// DocumentWatcher watches one document file and invokes a callback
// after changes settle.
type DocumentWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func(path string)
	opts     Options
	log      *slog.Logger

	timerMu sync.Mutex
	timer   *time.Timer
	fire    chan struct{}

	mu       sync.Mutex
	stopped  bool
	stopChan chan struct{}
}

// New creates a watcher for the document at path. onChange runs on the
// watcher's goroutine after each debounced change burst. Invocations
// never overlap: a burst that settles while a callback is still
// running coalesces into one follow-up invocation.
func New(path string, onChange func(path string), opts Options) (*DocumentWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &DocumentWatcher{
		watcher:  w,
		path:     filepath.Clean(path),
		onChange: onChange,
		opts:     opts,
		log:      log,
		fire:     make(chan struct{}, 1),
		stopChan: make(chan struct{}),
	}, nil
}

// Start begins watching. The parent directory is watched rather than
// the file itself: editors and exporters replace files via rename,
// which would otherwise drop the watch.
func (w *DocumentWatcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.log.Info("document watcher started", "path", w.path)
	go w.eventLoop()
	return nil
}

// Stop stops the watcher. Idempotent.
func (w *DocumentWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopChan)

	w.timerMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timerMu.Unlock()

	err := w.watcher.Close()
	w.log.Info("document watcher stopped")
	return err
}

func (w *DocumentWatcher) eventLoop() {
	for {
		select {
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case <-w.fire:
			w.log.Info("document changed, rescanning", "path", w.path)
			w.onChange(w.path)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("watcher error", "error", err)
		}
	}
}

func (w *DocumentWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	w.log.Debug("document event", "op", event.Op.String())

	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	// The timer only signals; delivery happens on the event-loop
	// goroutine so callback invocations never overlap.
	w.timer = time.AfterFunc(w.opts.Debounce, func() {
		select {
		case w.fire <- struct{}{}:
		default:
		}
	})
}

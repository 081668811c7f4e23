// Package watch re-runs a callback when any of a set of tracefiles
// changes on disk.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher watches tracefiles and invokes a callback when one of them is
// written, created, or removed. Editors and coverage tools write files in
// bursts, so events for the same path coalesce: the callback fires once
// the path has been quiet for the debounce window, carrying the burst's
// final state.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	paths       map[string]bool // watched file paths, absolute
	onChange    func(path string)
	debounceDur time.Duration
	debounceMap map[string]time.Time
	logger      *zap.Logger
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// New creates a Watcher for the given files. onChange runs on the watcher
// goroutine; keep it short or hand off.
func New(paths []string, debounce time.Duration, logger *zap.Logger, onChange func(path string)) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	watched := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		watched[abs] = true
	}

	return &Watcher{
		watcher:     fsw,
		paths:       watched,
		onChange:    onChange,
		debounceDur: debounce,
		debounceMap: make(map[string]time.Time),
		logger:      logger,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; events are handled on a goroutine
// until Stop is called or ctx is canceled.
//
// The parent directories are watched rather than the files themselves, so
// tools that replace a tracefile by rename are still observed.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dirs := make(map[string]bool)
	for p := range w.paths {
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Warn("failed to watch directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		w.logger.Debug("watching directory", zap.String("dir", dir))
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event goroutine to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.watcher.Close()
}

// flushInterval is how often pending events are checked against the
// debounce window.
const flushInterval = 100 * time.Millisecond

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	flush := time.NewTicker(flushInterval)
	defer flush.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		case <-flush.C:
			w.flushSettled()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
		!event.Op.Has(fsnotify.Rename) && !event.Op.Has(fsnotify.Remove) {
		return
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil || !w.paths[abs] {
		return
	}

	w.logger.Debug("tracefile changed",
		zap.String("path", abs),
		zap.String("op", event.Op.String()))

	// Record the event; flushSettled reports it once the path goes quiet.
	w.mu.Lock()
	w.debounceMap[abs] = time.Now()
	w.mu.Unlock()
}

// flushSettled reports every path whose last event is older than the
// debounce window. Reporting on the trailing edge means a
// truncate-then-write save fires once, after the completing write.
func (w *Watcher) flushSettled() {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, last := range w.debounceMap {
		if now.Sub(last) >= w.debounceDur {
			settled = append(settled, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	for _, path := range settled {
		w.onChange(path)
	}
}

// Package library watches a function library file and reports edits.
package library

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debounce is how long the file must stay quiet before a change is reported.
const Debounce = 100 * time.Millisecond

// Watcher reports changes to one file until its context ends or Close is
// called.
type Watcher struct {
	fw     *fsnotify.Watcher
	path   string
	logger *slog.Logger
	done   chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// Watch starts watching path. onChange runs on its own goroutine after each
// burst of writes; callers hand the reload back to their request loop.
// The parent directory is watched so editors that replace the file by
// rename are seen too.
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange func()) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w := &Watcher{fw: fw, path: abs, logger: logger, done: make(chan struct{})}
	go w.loop(ctx, onChange)
	return w, nil
}

func (w *Watcher) loop(ctx context.Context, onChange func()) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			w.stop()
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				w.stop()
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("library event", "path", event.Name, "op", event.Op.String())
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.timer = time.AfterFunc(Debounce, onChange)
			w.mu.Unlock()
		case err, ok := <-w.fw.Errors:
			if !ok {
				w.stop()
				return
			}
			w.logger.Warn("library watch error", "error", err)
		}
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
}

// Path is the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	err := w.fw.Close()
	<-w.done
	return err
}

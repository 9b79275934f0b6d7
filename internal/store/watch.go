package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/kestrelworks/playbook/internal/playbook"
)

// Watcher wraps a Dir loader and invalidates its parsed index whenever a
// playbook file in the directory changes, so long-running callers always
// resolve against the on-disk definitions.
type Watcher struct {
	dir     *Dir
	watcher *fsnotify.Watcher

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewWatcher creates a watching loader over the given directory.
func NewWatcher(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	w := &Watcher{
		dir:     NewDir(dir),
		watcher: fw,
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Load implements playbook.Loader.
func (w *Watcher) Load(ctx context.Context, name string) (*playbook.Playbook, bool, error) {
	return w.dir.Load(ctx, name)
}

// Names returns the playbook names currently visible in the directory.
func (w *Watcher) Names() ([]string, error) {
	return w.dir.Names()
}

// Close stops watching. Safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if playbookExtensions[filepath.Ext(event.Name)] {
				w.dir.Invalidate()
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// A watch error means the index may be stale; rescan lazily.
			w.dir.Invalidate()
		}
	}
}

// Package watch re-runs a callback when source files change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/satishbabariya/expand-go/internal/debug"
)

// DefaultDebounce is how long a burst of writes is coalesced.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches a set of files for changes
type Watcher struct {
	files    map[string]bool
	callback func(path string) error
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// NewWatcher watches files and calls callback with the path of a changed
// file once its writes settle.
func NewWatcher(files []string, callback func(path string) error) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		files:    make(map[string]bool),
		callback: callback,
		watcher:  watcher,
		debounce: DefaultDebounce,
	}
	dirs := map[string]bool{}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	// Editors replace files on save; watching directories survives that.
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to watch directory: %w", err)
		}
	}
	return w, nil
}

// SetDebounce changes the settle time.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

// Run delivers change notifications until ctx is done, then closes the
// watcher. Callback errors are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	pending := map[string]bool{}

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			path, err := filepath.Abs(event.Name)
			if err != nil || !w.files[path] {
				continue
			}
			pending[path] = true
			timer.Reset(w.debounce)

		case <-timer.C:
			for path := range pending {
				if err := w.callback(path); err != nil {
					debug.Warn("watch callback failed", "path", path, "error", err)
				}
			}
			pending = map[string]bool{}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			debug.Warn("watch error", "error", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

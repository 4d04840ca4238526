// Package catalog - Catalog Watcher
//
// LOCATION: internal/catalog/watcher.go
//
// Polls the catalog file's modification time and reloads it on change.

package catalog

import (
	"os"
	"time"
)

// Watcher watches a catalog file for changes and reloads it.
type Watcher struct {
	path     string
	interval time.Duration
	callback func(*Catalog, error)
	done     chan struct{}
	modTime  time.Time
}

// NewWatcher creates a new catalog file watcher. The callback receives
// either the reloaded catalog or the load error; it runs on the watch
// goroutine, so it must not block.
func NewWatcher(path string, interval time.Duration, callback func(*Catalog, error)) *Watcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Watcher{
		path:     path,
		interval: interval,
		callback: callback,
		done:     make(chan struct{}),
	}
}

// Start begins watching the catalog file.
func (w *Watcher) Start() {
	// Get initial mod time
	if info, err := os.Stat(w.path); err == nil {
		w.modTime = info.ModTime()
	}

	go w.watch()
}

// Stop stops watching.
func (w *Watcher) Stop() {
	close(w.done)
}

func (w *Watcher) watch() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			info, err := os.Stat(w.path)
			if err != nil {
				continue
			}

			if info.ModTime().After(w.modTime) {
				w.modTime = info.ModTime()
				w.reload()
			}
		}
	}
}

func (w *Watcher) reload() {
	cat, err := Load(w.path)
	if err != nil {
		w.callback(nil, err)
		return
	}
	w.callback(cat, nil)
}

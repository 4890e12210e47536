// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datagen

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher keeps a Store in sync with the CSV files in one directory.
//
// # Description
//
// Watches a flat datasets directory. A created or modified *.csv file is
// reloaded into the registry; a removed or renamed-away file is evicted.
// Editors produce bursts of events per save, so changes are debounced per
// path before any reload happens.
//
// # Thread Safety
//
// Safe for concurrent use. All store updates happen from a single
// goroutine.
type Watcher struct {
	dir      string
	store    *Store
	watcher  *fsnotify.Watcher
	debounce time.Duration

	done     chan struct{}
	stopOnce sync.Once

	mu       sync.RWMutex
	watching bool
}

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	// DebounceWindow is how long to wait for more events on a path before
	// acting on it. Default: 500ms.
	DebounceWindow time.Duration
}

// DefaultWatcherOptions returns the standard configuration.
func DefaultWatcherOptions() WatcherOptions {
	return WatcherOptions{DebounceWindow: 500 * time.Millisecond}
}

// NewWatcher creates a watcher for the given directory, feeding the given
// store. Call Start to begin watching.
func NewWatcher(dir string, store *Store, opts *WatcherOptions) (*Watcher, error) {
	if opts == nil {
		defaults := DefaultWatcherOptions()
		opts = &defaults
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		dir:      dir,
		store:    store,
		watcher:  fsw,
		debounce: opts.DebounceWindow,
		done:     make(chan struct{}),
	}, nil
}

// Start loads the CSV files already present, then begins watching.
//
// Returns an error if the directory cannot be watched. Load failures for
// individual files are logged and skipped; a half-broken datasets
// directory should not take the service down.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = true
	w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}

	w.loadExisting()

	go w.run(ctx)
	return nil
}

// Stop stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()

		w.mu.Lock()
		w.watching = false
		w.mu.Unlock()
	})
}

// IsWatching reports whether the watcher is active.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.watching
}

// loadExisting seeds the store from the files already on disk.
func (w *Watcher) loadExisting() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		slog.Warn("Failed to scan datasets directory", "dir", w.dir, "error", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !isCSV(entry.Name()) {
			continue
		}
		w.reload(filepath.Join(w.dir, entry.Name()))
	}
}

// run is the event loop: collect events per path, act after the debounce
// window closes.
func (w *Watcher) run(ctx context.Context) {
	pending := make(map[string]fsnotify.Op)
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		for path, op := range pending {
			if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
				w.evict(path)
			} else {
				w.reload(path)
			}
		}
		clear(pending)
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isCSV(event.Name) {
				continue
			}

			// Later ops win; a write after a remove means the file is back.
			pending[event.Name] = event.Op

			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			flush()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Dataset watcher error", "error", err)
		}
	}
}

// reload parses a CSV file into the store.
func (w *Watcher) reload(path string) {
	dataset, err := LoadCSVFile(path)
	if err != nil {
		slog.Warn("Skipping unloadable dataset file", "path", path, "error", err)
		return
	}
	w.store.Put(dataset)
	slog.Info("Loaded dataset", "name", dataset.Name, "rows", len(dataset.Rows))
}

// evict removes the dataset backed by a deleted file.
func (w *Watcher) evict(path string) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if w.store.Remove(name) {
		slog.Info("Evicted dataset", "name", name)
	}
}

// isCSV reports whether a path names a CSV file.
func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

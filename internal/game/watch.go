package game

import (
	"context"
	"os"
	"sync"
	"time"
)

// FileWatcher polls modification times of a profile's YAML and data
// tables and reports the files that changed since the previous scan.
type FileWatcher struct {
	Interval time.Duration
	onChange func([]string) // called with the paths that changed in one scan

	mu        sync.Mutex
	paths     []string
	lastMTime map[string]time.Time
	present   map[string]bool
}

// NewFileWatcher creates a watcher for given paths and interval.
func NewFileWatcher(paths []string, interval time.Duration, onChange func([]string)) *FileWatcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &FileWatcher{
		paths:     append([]string(nil), paths...),
		Interval:  interval,
		onChange:  onChange,
		lastMTime: make(map[string]time.Time),
		present:   make(map[string]bool),
	}
}

// Run polls until ctx is done. The first scan only records the current
// state.
func (w *FileWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	w.Scan()
	for {
		select {
		case <-ticker.C:
			if changed := w.Scan(); len(changed) > 0 && w.onChange != nil {
				w.onChange(changed)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Paths returns the watched paths.
func (w *FileWatcher) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.paths...)
}

// SetPaths replaces the watched paths. Paths kept from the old set keep
// their state; new ones are primed by the next scan and not reported.
func (w *FileWatcher) SetPaths(paths []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	keep := make(map[string]bool, len(paths))
	for _, p := range paths {
		keep[p] = true
	}
	for p := range w.present {
		if !keep[p] {
			delete(w.present, p)
			delete(w.lastMTime, p)
		}
	}
	w.paths = append([]string(nil), paths...)
}

// Scan checks every path once and returns those that were modified,
// created or removed since the last scan. The first scan of a path never
// reports it.
func (w *FileWatcher) Scan() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var changed []string
	for _, p := range w.paths {
		fi, err := os.Stat(p)
		seen, known := w.present[p]
		if err != nil {
			// missing: report only if it existed before
			if known && seen {
				changed = append(changed, p)
			}
			w.present[p] = false
			continue
		}
		w.present[p] = true
		mt := fi.ModTime()
		last, ok := w.lastMTime[p]
		w.lastMTime[p] = mt
		switch {
		case !known:
		case !seen:
			changed = append(changed, p)
		case ok && mt.After(last):
			changed = append(changed, p)
		}
	}
	return changed
}

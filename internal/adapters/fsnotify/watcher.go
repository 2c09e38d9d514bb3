// Package fsnotify implements the ports.Watcher interface using github.com/fsnotify/fsnotify.
// It recursively watches a workspace directory, reports only files matching the
// include globs, and debounces rapid events (editors often trigger multiple writes
// per save).
package fsnotify

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceInterval drops repeated events for one path within the window.
const debounceInterval = 50 * time.Millisecond

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw      *fsnotify.Watcher
	filter  *Filter
	log     *slog.Logger
	done    chan struct{}
	stopped bool
	mu      sync.Mutex
}

// NewWatcher creates a new file system watcher. A nil filter uses the
// defaults; a nil logger uses slog.Default().
func NewWatcher(filter *Filter, log *slog.Logger) (*Watcher, error) {
	if filter == nil {
		var err error
		if filter, err = NewFilter(nil, nil); err != nil {
			return nil, err
		}
	}
	if log == nil {
		log = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:     fw,
		filter: filter,
		log:    log,
		done:   make(chan struct{}),
	}, nil
}

// Watch starts monitoring root recursively.
// onChange is called with the absolute path of each changed file.
func (w *Watcher) Watch(root string, onChange func(filePath string)) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	if _, err := os.Stat(absRoot); err != nil {
		return err
	}
	if err := w.addTree(absRoot, absRoot, nil); err != nil {
		return err
	}

	// Trailing-edge debounce: a path is reported once it has been quiet
	// for debounceInterval, so a create+write burst is seen after the write
	var pmu sync.Mutex
	pending := make(map[string]*time.Timer)
	report := func(path string) {
		pmu.Lock()
		defer pmu.Unlock()
		if t, ok := pending[path]; ok {
			t.Stop()
		}
		pending[path] = time.AfterFunc(debounceInterval, func() {
			pmu.Lock()
			delete(pending, path)
			pmu.Unlock()
			select {
			case <-w.done:
				return
			default:
			}
			onChange(path)
		})
	}

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				path := event.Name

				// New directories join the watch list. Files written before
				// the watch was added are reported from the walk
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(path); err == nil && info.IsDir() {
						if err := w.addTree(absRoot, path, report); err != nil {
							w.log.Debug("watch new directory", "path", path, "error", err)
						}
						continue
					}
				}

				rel, err := filepath.Rel(absRoot, path)
				if err != nil || !w.filter.Match(rel) {
					continue
				}

				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					report(path)
				}

			case err, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// fsnotify recovers by itself
				w.log.Debug("watcher error", "error", err)

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// addTree watches dir and every directory below it that is not ignored.
// Matching files found on the way go to report when it is non-nil.
func (w *Watcher) addTree(root, dir string, report func(string)) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if !d.IsDir() {
			if report != nil {
				if rel, err := filepath.Rel(root, path); err == nil && w.filter.Match(rel) {
					report(path)
				}
			}
			return nil
		}
		if path != root && w.filter.IgnoreDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fw.Add(path)
	})
}

// Stop ends monitoring and releases all resources.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	return w.fw.Close()
}

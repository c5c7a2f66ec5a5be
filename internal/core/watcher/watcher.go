package watcher

import (
	"crypto/sha256"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"

	"sl2c/internal/shared/observability"
)

// Watcher reports batches of changed SL2 sources. Events are debounced and a
// file whose content hash did not change is left out of the batch.
type Watcher struct {
	fsWatcher    *fsnotify.Watcher
	debounce     time.Duration
	filterMu     sync.RWMutex
	include      []glob.Glob
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	onChange     func([]string)
	callbackMu   sync.Mutex

	// fileOnly holds directories watched only for the listed files.
	fileOnly map[string]map[string]bool
	fullDirs map[string]bool

	pending   map[string]time.Time
	hashes    map[string][32]byte
	pendingMu sync.Mutex
	timer     *time.Timer
	closed    bool
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// NewWatcher builds a watcher. include, excludeDirs and excludeFiles are glob
// patterns matched against base names; an empty include accepts every file.
func NewWatcher(debounce time.Duration, include, excludeDirs, excludeFiles []string, onChange func([]string)) (*Watcher, error) {
	if onChange == nil {
		return nil, os.ErrInvalid
	}

	inc, dirs, files, err := compileFilters(include, excludeDirs, excludeFiles)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher:    fsw,
		debounce:     debounce,
		include:      inc,
		excludeDirs:  dirs,
		excludeFiles: files,
		onChange:     onChange,
		pending:      make(map[string]time.Time),
		hashes:       make(map[string][32]byte),
		fileOnly:     make(map[string]map[string]bool),
		fullDirs:     make(map[string]bool),
	}, nil
}

func compileFilters(include, excludeDirs, excludeFiles []string) (inc, dirs, files []glob.Glob, err error) {
	if inc, err = compileAll(include); err != nil {
		return nil, nil, nil, err
	}
	if dirs, err = compileAll(excludeDirs); err != nil {
		return nil, nil, nil, err
	}
	if files, err = compileAll(excludeFiles); err != nil {
		return nil, nil, nil, err
	}
	return inc, dirs, files, nil
}

func (w *Watcher) Debounce() time.Duration {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	return w.debounce
}

func (w *Watcher) SetDebounce(debounce time.Duration) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	w.debounce = debounce
}

// SetFilters replaces the glob filters for events from now on. Directories
// skipped earlier are not added back until they change.
func (w *Watcher) SetFilters(include, excludeDirs, excludeFiles []string) error {
	inc, dirs, files, err := compileFilters(include, excludeDirs, excludeFiles)
	if err != nil {
		return err
	}
	w.filterMu.Lock()
	defer w.filterMu.Unlock()
	w.include, w.excludeDirs, w.excludeFiles = inc, dirs, files
	return nil
}

// Watch starts watching paths. A directory is watched recursively; a file is
// watched through its parent directory.
func (w *Watcher) Watch(paths []string) error {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			dir := filepath.Dir(path)
			if w.fileOnly[dir] == nil {
				w.fileOnly[dir] = make(map[string]bool)
			}
			w.fileOnly[dir][filepath.Clean(path)] = true
			w.remember(path)
			if err := w.fsWatcher.Add(dir); err != nil {
				return err
			}
			continue
		}
		if err := w.watchRecursive(path, true); err != nil {
			return err
		}
	}

	go w.run()
	return nil
}

// watchRecursive adds root and its subdirectories. Existing file hashes are
// recorded only when seed is set; files in a directory that appeared while
// watching are reported as new.
func (w *Watcher) watchRecursive(root string, seed bool) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && w.shouldExcludeDir(path) {
				return filepath.SkipDir
			}
			w.pendingMu.Lock()
			w.fullDirs[filepath.Clean(path)] = true
			w.pendingMu.Unlock()
			return w.fsWatcher.Add(path)
		}
		if seed && !w.shouldExcludeFile(path) {
			w.remember(path)
		}
		return nil
	})
}

// remember records the current content hash so an unchanged save is ignored.
func (w *Watcher) remember(path string) {
	sum, ok := hashFile(path)
	if !ok {
		return
	}
	w.pendingMu.Lock()
	w.hashes[path] = sum
	w.pendingMu.Unlock()
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			observability.WatcherEventsTotal.Inc()

			if event.Op&fsnotify.Create == fsnotify.Create {
				info, err := os.Stat(event.Name)
				if err == nil && info.IsDir() {
					if !w.shouldExcludeDir(event.Name) {
						if err := w.watchRecursive(event.Name, false); err != nil {
							slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
						} else {
							w.enqueueExistingFiles(event.Name)
						}
					}
					continue
				}
			}

			if w.shouldExcludeFile(event.Name) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.scheduleChange(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleChange(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	if w.closed {
		return
	}

	w.pending[path] = time.Now()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flushChanges)
}

func (w *Watcher) flushChanges() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		sum, exists := hashFile(path)
		prev, known := w.hashes[path]
		switch {
		case !exists:
			delete(w.hashes, path)
		case known && prev == sum:
			continue
		default:
			w.hashes[path] = sum
		}
		paths = append(paths, path)
	}
	w.pending = make(map[string]time.Time)
	w.pendingMu.Unlock()

	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)

	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	w.onChange(paths)
}

func (w *Watcher) shouldExcludeDir(path string) bool {
	base := filepath.Base(path)
	w.filterMu.RLock()
	defer w.filterMu.RUnlock()
	for _, g := range w.excludeDirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (w *Watcher) shouldExcludeFile(path string) bool {
	base := filepath.Base(path)

	dir := filepath.Dir(path)
	w.pendingMu.Lock()
	only, partial := w.fileOnly[dir], !w.fullDirs[dir]
	w.pendingMu.Unlock()
	if only != nil && partial && !only[filepath.Clean(path)] {
		return true
	}

	w.filterMu.RLock()
	defer w.filterMu.RUnlock()
	if len(w.include) > 0 {
		matched := false
		for _, g := range w.include {
			if g.Match(base) {
				matched = true
				break
			}
		}
		if !matched {
			return true
		}
	}

	for _, g := range w.excludeFiles {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}

func (w *Watcher) enqueueExistingFiles(root string) {
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		if w.shouldExcludeFile(path) {
			return nil
		}
		w.scheduleChange(path)
		return nil
	})
}

func hashFile(path string) ([32]byte, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return [32]byte{}, false
	}
	return sha256.Sum256(data), true
}

// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when files under a folder change.
//
// Events are filtered by doublestar glob patterns relative to the watched
// folder and coalesced over a debounce window, so an editor's
// write-then-rename of a definition produces a single callback.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Config.Debounce is not positive.
const DefaultDebounce = 300 * time.Millisecond

// ErrAlreadyStarted is returned by a second call to Run.
var ErrAlreadyStarted = errors.New("watcher already started")

// defaultIgnores are never reported. Generator output folders are included
// so a run writing into the project cannot retrigger itself.
var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/target/**",
	"**/.openapi-generator/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

type (
	// Config describes what to watch and what to do on change.
	Config struct {
		// Dir is the folder watched recursively. Empty means the working
		// directory.
		Dir string
		// Patterns select the files that trigger OnChange, as slash paths
		// relative to Dir. No patterns match every file.
		Patterns []string
		// Ignore adds patterns to the built-in ignore list.
		Ignore   []string
		Debounce time.Duration
		// OnChange receives the sorted, de-duplicated relative paths that
		// changed. Its error is logged and watching continues.
		OnChange func(ctx context.Context, changed []string) error
		Logger   *log.Logger
	}

	// Watcher dispatches debounced change notifications. Run may be called
	// once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		dir      string
		ignores  []string
		debounce time.Duration
		logger   *log.Logger
		started  atomic.Bool
	}
)

// New validates cfg and registers every non-ignored folder under cfg.Dir.
func New(cfg Config) (*Watcher, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve watch folder: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("watch folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch folder %s is not a directory", abs)
	}

	for _, pat := range slices.Concat(cfg.Patterns, cfg.Ignore) {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("invalid watch pattern %q: %w", pat, doublestar.ErrBadPattern)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("watch")
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		dir:      abs,
		ignores:  slices.Concat(defaultIgnores, cfg.Ignore),
		debounce: debounce,
		logger:   logger,
	}
	if err := w.addTree(abs); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run blocks until ctx is done or the watcher fails. Cancellation is a clean
// stop and returns nil.
//
// OnChange never runs concurrently with itself. Changes that arrive while it
// is running are delivered in the next call.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Debug("close file watcher", "err", err)
		}
	}()

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		busy    atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !busy.CompareAndSwap(false, true) {
			mu.Lock()
			timer.Reset(w.debounce)
			mu.Unlock()
			return
		}
		defer busy.Store(false)

		mu.Lock()
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()
		if len(changed) == 0 || w.cfg.OnChange == nil {
			return
		}

		w.logger.Debug("change detected", "files", changed)
		if err := w.cfg.OnChange(ctx, changed); err != nil {
			w.logger.Warn("change handler failed", "err", err)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("file watcher closed unexpectedly")
			}
			if evt.Has(fsnotify.Create) {
				w.addNewDir(evt.Name)
			}
			rel, ok := w.relevant(evt.Name)
			if !ok {
				continue
			}

			mu.Lock()
			pending[rel] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("file watcher closed unexpectedly")
			}
			if isFatal(err) {
				return fmt.Errorf("file watcher failed: %w", err)
			}
			w.logger.Warn("file watcher error", "err", err)
		}
	}
}

// relevant returns the slash path of name relative to the watched folder and
// whether it should be reported.
func (w *Watcher) relevant(name string) (string, bool) {
	rel, err := filepath.Rel(w.dir, name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if matchAny(w.ignores, rel) {
		return "", false
	}
	if len(w.cfg.Patterns) > 0 && !matchAny(w.cfg.Patterns, rel) {
		return "", false
	}
	return rel, true
}

func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Debug("skipping unreadable path", "path", path, "err", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.dir && w.ignoredDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("register watch folders: %w", err)
	}
	return nil
}

// addNewDir extends the watch to folders created after New.
func (w *Watcher) addNewDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.ignoredDir(path) {
		return
	}
	if err := w.addTree(path); err != nil {
		w.logger.Warn("cannot watch new folder", "path", path, "err", err)
	}
}

func (w *Watcher) ignoredDir(path string) bool {
	rel, err := filepath.Rel(w.dir, path)
	if err != nil {
		return true
	}
	rel = filepath.ToSlash(rel)
	return matchAny(w.ignores, rel) || matchAny(w.ignores, rel+"/")
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

// Package watcher batches filesystem changes under the content roots into
// debounced rebuild bursts for watch mode.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-compage/internal/logging"
	"github.com/goliatone/go-compage/pkg/interfaces"
)

const defaultDebounce = 250 * time.Millisecond

// Options configures a content watcher.
type Options struct {
	// Roots lists the content directories to watch recursively.
	Roots []string
	// Extension selects the documents that trigger rebuilds. Defaults to
	// ".md".
	Extension string
	// Debounce is the quiet period after the last event before a burst is
	// delivered. Defaults to 250ms.
	Debounce time.Duration
	Logger   interfaces.Logger
}

// Burst groups the changes observed within one debounce window.
type Burst struct {
	// Paths lists changed documents relative to their content root, slash
	// separated, sorted.
	Paths []string
	// Full marks bursts that need a complete rebuild: removals, renames,
	// and new directories whose contents were not individually observed.
	Full bool
}

// Watcher turns filesystem events under the content roots into rebuild
// bursts.
type Watcher struct {
	fs       *fsnotify.Watcher
	roots    []string
	ext      string
	debounce time.Duration
	log      interfaces.Logger
}

// New starts watching every root recursively. Hidden directories are
// skipped.
func New(opts Options) (*Watcher, error) {
	if len(opts.Roots) == 0 {
		return nil, errors.New("watcher: at least one content root is required")
	}
	ext := strings.TrimSpace(opts.Extension)
	if ext == "" {
		ext = ".md"
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: %w", err)
	}

	w := &Watcher{fs: fsw, ext: ext, debounce: debounce, log: logger}
	for _, root := range opts.Roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watcher: resolve %s: %w", root, err)
		}
		if err := w.watchTree(abs); err != nil {
			_ = fsw.Close()
			return nil, err
		}
		w.roots = append(w.roots, abs)
	}
	return w, nil
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

// Run delivers debounced bursts to handle until ctx is cancelled or the
// watcher is closed.
func (w *Watcher) Run(ctx context.Context, handle func(Burst)) error {
	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending = map[string]struct{}{}
		full    bool
	)

	reset := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			fire = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.consume(event, pending, &full) {
				continue
			}
			reset()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)
		case <-fire:
			burst := Burst{Full: full}
			if !full {
				burst.Paths = make([]string, 0, len(pending))
				for path := range pending {
					burst.Paths = append(burst.Paths, path)
				}
				sort.Strings(burst.Paths)
			}
			pending = map[string]struct{}{}
			full = false
			handle(burst)
		}
	}
}

// consume folds one filesystem event into the pending burst. It reports
// whether the event postpones the debounce deadline.
func (w *Watcher) consume(event fsnotify.Event, pending map[string]struct{}, full *bool) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	name := event.Name

	// New directories start their own watch, but files already inside them
	// were never individually observed.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(name); err == nil && info.IsDir() {
			if err := w.watchTree(name); err != nil {
				w.log.Warn("watch new directory", "path", name, "error", err)
			}
			*full = true
			return true
		}
	}

	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		// The entry is already gone, so a directory cannot be told apart
		// from a file except by its name.
		if strings.EqualFold(filepath.Ext(name), w.ext) || filepath.Ext(name) == "" {
			*full = true
			return true
		}
		return false
	}

	if !strings.EqualFold(filepath.Ext(name), w.ext) {
		return false
	}

	rel, ok := w.relPath(name)
	if !ok {
		*full = true
		return true
	}
	pending[rel] = struct{}{}
	return true
}

func (w *Watcher) relPath(name string) (string, bool) {
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, name)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		return filepath.ToSlash(rel), true
	}
	return "", false
}

func (w *Watcher) watchTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("watcher: walk %s: %w", dir, err)
		}
		if !entry.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(entry.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watcher: watch %s: %w", path, err)
		}
		return nil
	})
}

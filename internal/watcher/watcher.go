// Package watcher triggers rebuilds when files under the site source
// change.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last change before the
// callback fires. Editors usually emit several events per save.
const DefaultDebounce = 300 * time.Millisecond

// Options control debounce timing and which paths are ignored.
type Options struct {
	// Ignore lists slash-separated paths relative to the watched root
	// that never trigger the callback, typically the output directory.
	Ignore   []string
	Debounce time.Duration
}

// Watch watches root recursively and calls onChange with the batch of
// paths that changed since the last quiet period. Directories created
// at runtime are added to the watch list. Dotfiles and ignored paths
// never trigger. Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, root string, opts Options, logger *slog.Logger, onChange func(paths []string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	skip := func(rel string) bool {
		if rel == "." || rel == "" {
			return false
		}
		for _, seg := range strings.Split(rel, "/") {
			if strings.HasPrefix(seg, ".") {
				return true
			}
		}
		for _, ig := range opts.Ignore {
			ig = strings.Trim(ig, "/")
			if ig == "" {
				continue
			}
			if rel == ig || strings.HasPrefix(rel, ig+"/") {
				return true
			}
		}
		return false
	}

	addDirs := func(dir string) error {
		return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			rel, relErr := filepath.Rel(root, p)
			if relErr != nil {
				return nil
			}
			if skip(filepath.ToSlash(rel)) {
				return fs.SkipDir
			}
			return w.Add(p)
		})
	}

	if err := addDirs(root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	// timer debounces the change batch.
	var timer *time.Timer
	var timerCh <-chan time.Time
	pending := make(map[string]struct{})

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			batch := make([]string, 0, len(pending))
			for p := range pending {
				batch = append(batch, p)
			}
			pending = make(map[string]struct{})
			sort.Strings(batch)
			logger.Debug("watcher: changes settled", slog.Int("count", len(batch)))
			onChange(batch)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if skip(rel) {
				continue
			}

			// New directories join the watch list so files created
			// inside them are seen.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirs(ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", rel),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", rel))
					}
				}
			}

			pending[rel] = struct{}{}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

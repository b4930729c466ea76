package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"kahani-ai/internal/contextutil"
)

// DefaultDebounce collapses bursts of file events (editors often write several times).
const DefaultDebounce = 500 * time.Millisecond

// Rebuilder is the part of Index the watcher drives.
type Rebuilder interface {
	Rebuild(ctx context.Context) (*Generation, error)
}

// Watcher rebuilds the index whenever a story file under Dir changes.
type Watcher struct {
	dir       string
	rebuilder Rebuilder
	debounce  time.Duration
}

// NewWatcher creates a Watcher for dir.
func NewWatcher(dir string, rebuilder Rebuilder) *Watcher {
	return &Watcher{dir: dir, rebuilder: rebuilder, debounce: DefaultDebounce}
}

// Run watches until ctx is done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = fsw.Close()
	}()

	if err := addTree(fsw, w.dir); err != nil {
		return err
	}
	logger.InfoContext(ctx, "watching stories directory", "dir", w.dir)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(fsw, event.Name); err != nil {
						logger.WarnContext(ctx, "failed to watch new directory", "dir", event.Name, "error", err)
					}
					timer.Reset(w.debounce)
					continue
				}
			}
			if !relevant(event) {
				continue
			}
			logger.DebugContext(ctx, "story file changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.WarnContext(ctx, "watcher error", "error", err)

		case <-timer.C:
			if _, err := w.rebuilder.Rebuild(ctx); err != nil {
				logger.ErrorContext(ctx, "rebuild after change failed", "error", err)
			}
		}
	}
}

// relevant reports whether event touches a story file.
func relevant(event fsnotify.Event) bool {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	// A removed or renamed directory has no extension; rebuild for it too
	ext := filepath.Ext(base)
	return ext == ".json" || (ext == "" && event.Has(fsnotify.Remove|fsnotify.Rename))
}

// addTree watches root and every non-hidden directory below it.
func addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", p, err)
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fsw.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

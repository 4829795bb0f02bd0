// Package watch re-runs a callback when files in a directory tree change.
// Bursts of events are coalesced by a Debouncer.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher monitors a directory tree and reports changed files.
type Watcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	match     func(path string) bool
	logger    *zap.Logger
	closeOnce sync.Once
	closeErr  error
}

// New creates a Watcher. onChange receives the sorted set of matching files
// written or created within one debounce window. A nil match accepts every
// file; a nil logger disables logging.
func New(delay time.Duration, match func(string) bool, onChange func([]string), logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if match == nil {
		match = func(string) bool { return true }
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &Watcher{
		watcher:   fsw,
		debouncer: NewDebouncer(delay),
		match:     match,
		logger:    logger,
	}
	w.debouncer.SetCallback(onChange)
	return w, nil
}

// AddTree watches root and every non-hidden directory below it.
func (w *Watcher) AddTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", p, err)
		}
		w.logger.Debug("watching directory", zap.String("dir", p))
		return nil
	})
}

// Run processes events until ctx is canceled, then releases the watcher.
// It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-ctx.Done():
			return nil
		}
	}
}

// handle filters one event and feeds matching files to the debouncer.
func (w *Watcher) handle(event fsnotify.Event) {
	if isHidden(filepath.Base(event.Name)) {
		return
	}

	if event.Has(fsnotify.Create) {
		// New directories join the watch set.
		if err := w.addIfDir(event.Name); err != nil {
			w.logger.Warn("watch new directory", zap.String("dir", event.Name), zap.Error(err))
		}
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !w.match(event.Name) {
		return
	}

	w.logger.Debug("file changed", zap.String("file", event.Name), zap.Stringer("op", event.Op))
	w.debouncer.Add(event.Name)
}

func (w *Watcher) addIfDir(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil
	}
	return w.AddTree(path)
}

// Close stops the debouncer and the underlying watcher. Safe to call twice.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		w.debouncer.Stop()
		w.closeErr = w.watcher.Close()
	})
	return w.closeErr
}

// isHidden reports whether a name starts with a dot. Editors and atomic
// writers create dot-prefixed temp files next to pages.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

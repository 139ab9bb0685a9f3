package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounce is how long a file must be quiet before a change is reported.
const WatchDebounce = 100 * time.Millisecond

// Watch reports changes to the given files until ctx is cancelled.
//
// The parent directories are watched rather than the files, so editors that
// save by rename are still seen. onChange runs on its own goroutine once per
// settled burst of events for a path.
func Watch(ctx context.Context, paths []string, logger *slog.Logger, onChange func(path string)) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	targets := make(map[string]string, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		key := Key(p)
		targets[key] = p
		dirs[filepath.Dir(key)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		logger.Debug("watching data directory", "dir", dir)
	}

	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			original, ok := targets[Key(event.Name)]
			if !ok {
				continue
			}

			if t := timers[original]; t != nil {
				t.Stop()
			}
			timers[original] = time.AfterFunc(WatchDebounce, func() {
				logger.Debug("data file changed", "file", original, "op", event.Op.String())
				onChange(original)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}

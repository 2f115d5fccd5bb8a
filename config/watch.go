package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits after the last change event
// before reloading.
const DefaultDebounce = 200 * time.Millisecond

// Watch reloads the file at path whenever it changes and passes each valid
// result to onReload. Invalid files are logged and skipped. The directory is
// watched rather than the file so that editors that save by atomic rename
// are seen. Watch returns once the watcher is running; it stops when ctx is
// done.
func Watch(ctx context.Context, path string, logger *slog.Logger, onReload func(*Config)) error {
	return watch(ctx, path, DefaultDebounce, logger, onReload)
}

func watch(ctx context.Context, path string, debounce time.Duration, logger *slog.Logger, onReload func(*Config)) error {
	if logger == nil {
		logger = slog.Default()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return err
	}
	target := filepath.Clean(path)

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounce, func() {
			cfg, err := Load(path)
			if err != nil {
				logger.Error("config reload failed", "path", path, "error", err)
				return
			}
			onReload(cfg)
		})
	}

	go func() {
		logger.Info("config watcher started", "path", path)
		defer func() {
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
			_ = watcher.Close()
			logger.Info("config watcher stopped")
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
					trigger()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", "error", err)
			}
		}
	}()
	return nil
}

package config

import (
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads path on every write event and invokes onReload with the
// newly parsed Config. Only non-critical settings are meant to be acted on
// by onReload (log level, metrics toggle); breaker/timeout values are
// snapshotted at process start elsewhere and must not be hot-swapped
// mid-turn. Watch runs until stop is closed.
func Watch(path string, logger *slog.Logger, stop <-chan struct{}, onReload func(*Config)) error {
	if logger == nil {
		logger = slog.Default()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	for {
		select {
		case <-stop:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(path)
			if err != nil {
				logger.Error("config reload failed", "path", path, "error", err)
				continue
			}
			logger.Info("config reloaded", "path", path)
			onReload(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("config watcher error", "error", err)
		}
	}
}

package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Editors often write files in multiple steps.
const debounceDelay = 100 * time.Millisecond

// watchFile calls onChange after ledger files in the directory of filename
// change, until ctx is done. The directory is watched rather than the file so
// that atomic saves (write to temp, rename over) keep being noticed.
func watchFile(ctx context.Context, filename string, logger *zap.Logger, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(filename)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	runWatcher(ctx, watcher, debounceDelay, logger, onChange)
	return nil
}

// runWatcher debounces watcher events and calls onChange from this goroutine,
// so consecutive runs never overlap.
func runWatcher(ctx context.Context, watcher *fsnotify.Watcher, delay time.Duration, logger *zap.Logger, onChange func()) {
	var debounceTimer *time.Timer
	trigger := make(chan struct{}, 1)

	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		_ = watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case <-trigger:
			onChange()

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			// Remove/Rename are common in atomic saves
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !isLedgerFile(event.Name) {
				continue
			}

			logger.Debug("file changed", zap.String("file", event.Name), zap.Stringer("op", event.Op))

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(delay, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

func isLedgerFile(name string) bool {
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

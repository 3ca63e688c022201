package fswatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/shieldworks/protect/internal/usecase"
)

// debounce collapses the burst of events one atomic rename produces.
const debounce = 100 * time.Millisecond

// Watcher reports file writes in a directory
type Watcher struct {
	log *slog.Logger
}

// NewWatcher creates a new directory watcher
func NewWatcher(log *slog.Logger) *Watcher {
	return &Watcher{log: log}
}

// Watch calls onChange with the path of every file created, written or renamed
// into dir until ctx is done.
func (w *Watcher) Watch(ctx context.Context, dir string, onChange func(file string)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.log.Debug("watching", "dir", dir)

	pending := make(map[string]bool)
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			pending[event.Name] = true
			timer.Reset(debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "dir", dir, "error", err)
		case <-timer.C:
			for file := range pending {
				onChange(file)
			}
			clear(pending)
		}
	}
}

var _ usecase.RegistryWatcher = (*Watcher)(nil)

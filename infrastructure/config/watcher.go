package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"linkscope-backend/domain/services"
)

// TuningWatcher reloads the tuning file when it changes on disk and hands
// the parsed constants to a callback. Editors often write files as a
// rename-and-replace, so the watch is on the directory rather than the file.
type TuningWatcher struct {
	path    string
	onApply func(services.Tuning)
	logger  *zap.Logger

	// debounce absorbs the event bursts a single save produces.
	debounce time.Duration
}

// NewTuningWatcher creates a watcher for the given tuning file.
func NewTuningWatcher(path string, onApply func(services.Tuning), logger *zap.Logger) *TuningWatcher {
	return &TuningWatcher{
		path:     path,
		onApply:  onApply,
		logger:   logger,
		debounce: 200 * time.Millisecond,
	}
}

// Run watches until the context is cancelled. A missing or invalid file
// logs and keeps the last good tuning; it never stops the watcher.
func (w *TuningWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.logger.Info("Watching tuning file", zap.String("path", w.path))

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Tuning watcher error", zap.Error(err))
		}
	}
}

func (w *TuningWatcher) reload() {
	tuning, err := LoadTuning(w.path)
	if err != nil {
		w.logger.Warn("Keeping previous tuning, reload failed", zap.Error(err))
		return
	}
	w.logger.Info("Reloaded simulation tuning", zap.String("path", w.path))
	w.onApply(tuning)
}

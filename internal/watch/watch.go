// Package watch triggers organizing runs when the source directory changes.
//
// Filesystem events debounce through a settle window so a burst of downloads
// produces one run after activity dies down, not one run per write. Events
// under the archive subtree are ignored; otherwise every run the watcher
// triggers would itself look like new activity.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"curator/internal/logging"
	"curator/internal/pipeline"
)

// RunFunc executes one organizing pass.
type RunFunc func(context.Context) error

// Watcher debounces source-directory activity into organizing runs.
type Watcher struct {
	sourceDir  string
	archiveDir string
	settle     time.Duration
	run        RunFunc
	logger     *slog.Logger
}

// New constructs a watcher over sourceDir. Events below archiveDir are
// ignored.
func New(sourceDir, archiveDir string, settle time.Duration, run RunFunc, logger *slog.Logger) (*Watcher, error) {
	if run == nil {
		return nil, errors.New("watch requires a run function")
	}
	if settle <= 0 {
		settle = 30 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Watcher{
		sourceDir:  sourceDir,
		archiveDir: archiveDir,
		settle:     settle,
		run:        run,
		logger:     logger,
	}, nil
}

// Run blocks, triggering one organizing pass per settle window with observed
// activity, until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer notifier.Close()

	if err := notifier.Add(w.sourceDir); err != nil {
		return err
	}
	w.logger.Info("watching source directory",
		logging.String("source", w.sourceDir),
		logging.Duration("settle", w.settle))

	settle := time.NewTimer(w.settle)
	if !settle.Stop() {
		<-settle.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-notifier.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("source activity",
				logging.String(logging.FieldFile, filepath.Base(event.Name)),
				logging.String(logging.FieldEventType, event.Op.String()))
			if pending && !settle.Stop() {
				select {
				case <-settle.C:
				default:
				}
			}
			settle.Reset(w.settle)
			pending = true

		case err, ok := <-notifier.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", logging.Error(err))

		case <-settle.C:
			pending = false
			if err := w.run(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				if errors.Is(err, pipeline.ErrAlreadyRunning) {
					w.logger.Info("run already in progress, will retry on next activity")
					continue
				}
				w.logger.Error("triggered run failed", logging.Error(err))
			}
		}
	}
}

// relevant filters out chmod noise, dotfiles, and the archive subtree.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	if w.archiveDir != "" {
		if rel, err := filepath.Rel(w.archiveDir, event.Name); err == nil && !strings.HasPrefix(rel, "..") {
			return false
		}
	}
	return true
}

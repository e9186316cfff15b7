// Package pipeline sequences the organizing stages into one run.
//
// A run executes on a single worker goroutine: triage first, then the
// optional image rename and PDF sort stages. Progress flows to the caller
// over the progress hub; outcomes are journaled per item and summarized per
// run. A flock under the log directory prevents two runs from touching the
// same directories concurrently.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"curator/internal/journal"
	"curator/internal/logging"
	"curator/internal/notifications"
	"curator/internal/progress"
	"curator/internal/services"
	"curator/internal/stage"
)

// ErrAlreadyRunning reports that another curator process holds the run lock.
var ErrAlreadyRunning = errors.New("another curator run is already in progress")

// Runner owns one run of the stage sequence.
type Runner struct {
	sourceDir string
	lockPath  string
	stages    []stage.Handler
	journal   *journal.Store
	hub       *progress.Hub
	notifier  notifications.Service
	logger    *slog.Logger

	processAll bool
	dryRun     bool
}

// Options wires a runner.
type Options struct {
	SourceDir  string
	LockPath   string
	Stages     []stage.Handler
	Journal    *journal.Store
	Hub        *progress.Hub
	Notifier   notifications.Service
	Logger     *slog.Logger
	ProcessAll bool
	DryRun     bool
}

// New constructs a runner. Journal, hub, and notifier may be nil; stages are
// required.
func New(opts Options) (*Runner, error) {
	if len(opts.Stages) == 0 {
		return nil, errors.New("pipeline requires at least one stage")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notifications.NewNop()
	}
	return &Runner{
		sourceDir:  opts.SourceDir,
		lockPath:   opts.LockPath,
		stages:     opts.Stages,
		journal:    opts.Journal,
		hub:        opts.Hub,
		notifier:   notifier,
		logger:     logger,
		processAll: opts.ProcessAll,
		dryRun:     opts.DryRun,
	}, nil
}

// Run executes the stage sequence once and returns the finished run record.
func (r *Runner) Run(ctx context.Context) (*journal.Run, error) {
	if r.lockPath != "" {
		lock := flock.New(r.lockPath)
		ok, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire run lock: %w", err)
		}
		if !ok {
			return nil, ErrAlreadyRunning
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				r.logger.Warn("failed to release run lock", logging.Error(err))
			}
		}()
	}

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	started := time.Now()

	if r.journal != nil && !r.dryRun {
		if _, err := r.journal.BeginRun(ctx, runID, r.sourceDir, r.processAll); err != nil {
			return nil, fmt.Errorf("begin run: %w", err)
		}
	}
	r.hub.Publish(progress.Event{Kind: progress.KindRunStarted, RunID: runID, Detail: r.sourceDir})
	if err := r.notifier.NotifyRunStarted(ctx, r.sourceDir); err != nil {
		r.logger.Warn("run start notification failed", logging.Error(err))
	}
	r.logger.Info("run started",
		logging.String(logging.FieldRunID, runID),
		logging.String("source", r.sourceDir),
		logging.Bool("process_all", r.processAll),
		logging.Bool("dry_run", r.dryRun))

	totals, degraded, runErr := r.executeStages(ctx, runID)

	status := journal.RunCompleted
	switch {
	case runErr != nil:
		status = journal.RunFailed
	case degraded || totals.Failed > 0:
		status = journal.RunDegraded
	}

	if r.journal != nil && !r.dryRun {
		if err := r.journal.FinishRun(context.WithoutCancel(ctx), runID, status, totals); err != nil {
			r.logger.Warn("failed to finalize run record", logging.Error(err))
		}
	}
	r.hub.Publish(progress.Event{Kind: progress.KindRunDone, RunID: runID, Detail: string(status)})

	duration := time.Since(started)
	if runErr != nil {
		if err := r.notifier.NotifyError(context.WithoutCancel(ctx), runErr, "organizing run"); err != nil {
			r.logger.Warn("error notification failed", logging.Error(err))
		}
		return nil, runErr
	}
	if !r.dryRun {
		if err := r.notifier.NotifyRunCompleted(ctx, totals, duration); err != nil {
			r.logger.Warn("completion notification failed", logging.Error(err))
		}
	}
	r.logger.Info("run finished",
		logging.String(logging.FieldRunID, runID),
		logging.String("status", string(status)),
		logging.Duration("duration", duration))

	run := &journal.Run{
		ID:            runID,
		StartedAt:     started,
		SourceDir:     r.sourceDir,
		ProcessAll:    r.processAll,
		Status:        status,
		FilesMoved:    totals.FilesMoved,
		FoldersMoved:  totals.FoldersMoved,
		ImagesRenamed: totals.ImagesRenamed,
		PDFsSorted:    totals.PDFsSorted,
		Skipped:       totals.Skipped,
		Failed:        totals.Failed,
	}
	return run, nil
}

// executeStages runs every stage in order, isolating per-stage failures. A
// stage error degrades the run instead of aborting it; only context
// cancellation stops the sequence.
func (r *Runner) executeStages(ctx context.Context, runID string) (journal.Totals, bool, error) {
	var totals journal.Totals
	degraded := false

	for _, handler := range r.stages {
		if err := ctx.Err(); err != nil {
			return totals, degraded, err
		}
		name := handler.Name()
		stageCtx := services.WithStage(ctx, name)
		stageLogger := logging.WithContext(stageCtx, logging.NewComponentLogger(r.logger, name))

		r.hub.Publish(progress.Event{Kind: progress.KindStageStarted, RunID: runID, Stage: name})

		rec := stage.NewRecorder(runID, name, r.journalForRun(), r.hub, stageLogger)
		err := handler.Prepare(stageCtx)
		if err == nil {
			err = handler.Execute(stageCtx, rec)
		}
		accumulate(&totals, name, rec)

		switch {
		case err == nil:
			r.hub.Publish(progress.Event{Kind: progress.KindStageDone, RunID: runID, Stage: name})
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			r.hub.Publish(progress.Event{Kind: progress.KindStageFailed, RunID: runID, Stage: name, Detail: err.Error()})
			return totals, degraded, err
		default:
			degraded = true
			stageLogger.Error("stage failed", logging.Error(err))
			r.hub.Publish(progress.Event{Kind: progress.KindStageFailed, RunID: runID, Stage: name, Detail: err.Error()})
		}
	}
	return totals, degraded, nil
}

func (r *Runner) journalForRun() *journal.Store {
	if r.dryRun {
		return nil
	}
	return r.journal
}

// accumulate folds a stage recorder's outcome counts into the run totals.
func accumulate(totals *journal.Totals, stageName string, rec *stage.Recorder) {
	switch stageName {
	case journal.StageTriage:
		totals.FilesMoved += rec.Count(journal.OutcomeMoved)
		totals.FoldersMoved += rec.Count(journal.OutcomeFolderMoved)
	case journal.StageImages:
		totals.ImagesRenamed += rec.Count(journal.OutcomeRenamed)
	case journal.StagePDFs:
		totals.PDFsSorted += rec.Count(journal.OutcomeSorted)
	}
	totals.Skipped += rec.Count(journal.OutcomeSkipped) +
		rec.Count(journal.OutcomeExcluded) +
		rec.Count(journal.OutcomeTooRecent) +
		rec.Count(journal.OutcomeCollision)
	totals.Failed += rec.Count(journal.OutcomeFailed)
}

// Package stage defines the contract the pipeline runner needs from each
// organizing stage, plus the shared recorder stages use to report per-item
// decisions.
package stage

import (
	"context"
	"log/slog"

	"curator/internal/journal"
	"curator/internal/logging"
	"curator/internal/progress"
)

// Handler describes the contract the pipeline runner needs from each stage.
type Handler interface {
	Name() string
	Prepare(context.Context) error
	Execute(context.Context, *Recorder) error
	HealthCheck(context.Context) Health
}

// Health summarizes the readiness of an organizing stage.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy constructs a ready Health record.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy constructs an unhealthy Health record with context detail.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Ready: false, Detail: detail}
}

// Recorder persists one journal row, publishes one progress event, and emits
// one log line per decision a stage makes about an item.
type Recorder struct {
	runID   string
	stage   string
	journal *journal.Store
	hub     *progress.Hub
	logger  *slog.Logger
	counts  map[journal.Outcome]int
}

// NewRecorder binds a recorder to a run and stage.
func NewRecorder(runID, stageName string, store *journal.Store, hub *progress.Hub, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Recorder{
		runID:   runID,
		stage:   stageName,
		journal: store,
		hub:     hub,
		logger:  logger,
		counts:  make(map[journal.Outcome]int),
	}
}

// Count reports how many decisions landed on the given outcome.
func (r *Recorder) Count(outcome journal.Outcome) int {
	return r.counts[outcome]
}

// RunID reports the run the recorder is bound to.
func (r *Recorder) RunID() string {
	return r.runID
}

// Record registers a single item decision across the journal, the progress
// stream, and the log. Journal failures are logged and swallowed so a
// bookkeeping error never aborts an organizing pass.
func (r *Recorder) Record(ctx context.Context, name string, outcome journal.Outcome, detail string) {
	r.counts[outcome]++
	if r.journal != nil {
		if err := r.journal.RecordItem(ctx, r.runID, r.stage, name, outcome, detail); err != nil {
			r.logger.Warn("failed to journal item decision",
				logging.String(logging.FieldFile, name),
				logging.Error(err))
		}
	}
	r.hub.Publish(progress.Event{
		Kind:    progress.KindItem,
		RunID:   r.runID,
		Stage:   r.stage,
		Name:    name,
		Outcome: string(outcome),
		Detail:  detail,
	})
	r.logger.Info("item decision",
		logging.String(logging.FieldFile, name),
		logging.String("outcome", string(outcome)),
		logging.String("detail", detail))
}

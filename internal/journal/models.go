package journal

import "time"

// RunStatus represents the lifecycle of an organizing run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	// RunDegraded marks a run that finished but had per-item or per-stage
	// failures along the way.
	RunDegraded RunStatus = "degraded"
	RunFailed   RunStatus = "failed"
)

// Outcome classifies what happened to a single file or folder during a run.
type Outcome string

const (
	OutcomeMoved       Outcome = "moved"
	OutcomeFolderMoved Outcome = "folder_moved"
	OutcomeRenamed     Outcome = "renamed"
	OutcomeSorted      Outcome = "sorted"
	OutcomeExcluded    Outcome = "excluded"
	OutcomeTooRecent   Outcome = "too_recent"
	OutcomeSkipped     Outcome = "skipped"
	OutcomeCollision   Outcome = "collision"
	OutcomeFailed      Outcome = "failed"
)

// Stage names used in run_items rows.
const (
	StageTriage = "triage"
	StageImages = "images"
	StagePDFs   = "pdfs"
)

// Run is one organizing pass.
type Run struct {
	ID            string
	StartedAt     time.Time
	FinishedAt    *time.Time
	SourceDir     string
	ProcessAll    bool
	Status        RunStatus
	FilesMoved    int
	FoldersMoved  int
	ImagesRenamed int
	PDFsSorted    int
	Skipped       int
	Failed        int
}

// Totals aggregates the counters persisted when a run finishes.
type Totals struct {
	FilesMoved    int
	FoldersMoved  int
	ImagesRenamed int
	PDFsSorted    int
	Skipped       int
	Failed        int
}

// Item is one recorded per-file event within a run.
type Item struct {
	ID         int64
	RunID      string
	Stage      string
	Name       string
	Outcome    Outcome
	Detail     string
	RecordedAt time.Time
}

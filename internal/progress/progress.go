// Package progress carries run progress events from the worker to a display
// loop.
//
// The pipeline publishes one event per stage transition and per file decision;
// the CLI consumes them from a bounded channel. Publishing never blocks: when
// the consumer falls behind, older events are dropped in favor of keeping the
// worker moving.
package progress

import "time"

// Kind classifies a progress event.
type Kind string

const (
	KindRunStarted   Kind = "run_started"
	KindStageStarted Kind = "stage_started"
	KindStageDone    Kind = "stage_done"
	KindStageFailed  Kind = "stage_failed"
	KindItem         Kind = "item"
	KindRunDone      Kind = "run_done"
)

// Event is one unit of progress reported by the worker.
type Event struct {
	Time    time.Time
	Kind    Kind
	RunID   string
	Stage   string
	Name    string // file or folder the event refers to, if any
	Outcome string
	Detail  string
}

// Hub is a single-consumer event channel with drop-oldest overflow behavior.
type Hub struct {
	events chan Event
}

// NewHub constructs a hub with the given buffer capacity.
func NewHub(capacity int) *Hub {
	if capacity <= 0 {
		capacity = 256
	}
	return &Hub{events: make(chan Event, capacity)}
}

// Publish enqueues an event, evicting the oldest buffered event when full.
func (h *Hub) Publish(evt Event) {
	if h == nil {
		return
	}
	if evt.Time.IsZero() {
		evt.Time = time.Now()
	}
	for {
		select {
		case h.events <- evt:
			return
		default:
		}
		select {
		case <-h.events:
		default:
		}
	}
}

// Events exposes the consumer side of the hub.
func (h *Hub) Events() <-chan Event {
	return h.events
}

// Close signals the consumer that no further events will arrive.
func (h *Hub) Close() {
	close(h.events)
}

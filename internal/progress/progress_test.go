package progress

import "testing"

func TestHubDeliversInOrder(t *testing.T) {
	hub := NewHub(4)
	hub.Publish(Event{Kind: KindRunStarted, RunID: "r1"})
	hub.Publish(Event{Kind: KindItem, Name: "report.pdf"})
	hub.Close()

	first := <-hub.Events()
	if first.Kind != KindRunStarted {
		t.Fatalf("expected run_started first, got %s", first.Kind)
	}
	if first.Time.IsZero() {
		t.Fatal("expected publish to stamp the event time")
	}
	second := <-hub.Events()
	if second.Name != "report.pdf" {
		t.Fatalf("unexpected second event: %+v", second)
	}
	if _, ok := <-hub.Events(); ok {
		t.Fatal("expected channel to be closed")
	}
}

func TestHubDropsOldestWhenFull(t *testing.T) {
	hub := NewHub(2)
	hub.Publish(Event{Name: "a"})
	hub.Publish(Event{Name: "b"})
	hub.Publish(Event{Name: "c"})
	hub.Close()

	var names []string
	for evt := range hub.Events() {
		names = append(names, evt.Name)
	}
	if len(names) != 2 || names[0] != "b" || names[1] != "c" {
		t.Fatalf("expected oldest event dropped, got %v", names)
	}
}

func TestNilHubPublishIsSafe(t *testing.T) {
	var hub *Hub
	hub.Publish(Event{Name: "ignored"})
}

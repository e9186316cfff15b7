package journal_test

import (
	"context"
	"path/filepath"
	"testing"

	"curator/internal/journal"
)

func openStore(t *testing.T) *journal.Store {
	t.Helper()
	store, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	run, err := store.BeginRun(ctx, "run-1", "/downloads", true)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if run.Status != journal.RunRunning {
		t.Fatalf("new run status = %q", run.Status)
	}
	if !run.ProcessAll {
		t.Fatal("process_all flag lost")
	}

	totals := journal.Totals{FilesMoved: 3, Skipped: 1, Failed: 1}
	if err := store.FinishRun(ctx, "run-1", journal.RunDegraded, totals); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	got, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != journal.RunDegraded || got.FilesMoved != 3 || got.Failed != 1 {
		t.Fatalf("unexpected run state: %+v", got)
	}
	if got.FinishedAt == nil {
		t.Fatal("expected finished_at to be set")
	}
}

func TestFinishUnknownRunFails(t *testing.T) {
	store := openStore(t)
	if err := store.FinishRun(context.Background(), "missing", journal.RunCompleted, journal.Totals{}); err == nil {
		t.Fatal("expected error finishing unknown run")
	}
}

func TestRecordAndListItems(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if _, err := store.BeginRun(ctx, "run-2", "/downloads", false); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	events := []struct {
		stage   string
		name    string
		outcome journal.Outcome
		detail  string
	}{
		{journal.StageTriage, "a.zip", journal.OutcomeMoved, "Archives"},
		{journal.StageTriage, "b.zip", journal.OutcomeTooRecent, ""},
		{journal.StageImages, "cat.png", journal.OutcomeRenamed, "Orange_Cat_Sleeping_DESC.png"},
	}
	for _, ev := range events {
		if err := store.RecordItem(ctx, "run-2", ev.stage, ev.name, ev.outcome, ev.detail); err != nil {
			t.Fatalf("RecordItem(%s): %v", ev.name, err)
		}
	}

	items, err := store.RunItems(ctx, "run-2")
	if err != nil {
		t.Fatalf("RunItems: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Name != "a.zip" || items[0].Outcome != journal.OutcomeMoved || items[0].Detail != "Archives" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[1].Detail != "" {
		t.Fatalf("expected empty detail, got %q", items[1].Detail)
	}
}

func TestRecentRunsNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for _, id := range []string{"r1", "r2", "r3"} {
		if _, err := store.BeginRun(ctx, id, "/downloads", false); err != nil {
			t.Fatalf("BeginRun(%s): %v", id, err)
		}
	}

	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].StartedAt.Before(runs[1].StartedAt) {
		t.Fatal("runs not ordered newest-first")
	}
}

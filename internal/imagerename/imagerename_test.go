package imagerename

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"curator/internal/journal"
	"curator/internal/stage"
	"curator/internal/testsupport"
)

func newTestStage(t *testing.T, fake *testsupport.FakeClassifier, opts Options) (*Stage, string, *stage.Recorder) {
	t.Helper()

	if opts.ArchiveDir == "" {
		opts.ArchiveDir = t.TempDir()
	}
	st := New(opts, fake, testsupport.FastRetry(), nil)
	st.sleep = func(context.Context, time.Duration) error { return nil }
	rec := stage.NewRecorder("run-1", st.Name(), nil, nil, nil)
	return st, filepath.Join(opts.ArchiveDir, imagesDir), rec
}

func TestRenamesPendingImages(t *testing.T) {
	fake := &testsupport.FakeClassifier{
		ImageTitles: map[string]string{
			"IMG_0001.png": "Sunset Over Harbor",
		},
	}
	st, dir, rec := newTestStage(t, fake, Options{})

	testsupport.WriteFile(t, filepath.Join(dir, "IMG_0001.png"), "png")

	if err := st.Execute(context.Background(), rec); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Sunset_Over_Harbor_DESC.png")); err != nil {
		t.Fatalf("expected descriptive name: %v", err)
	}
	if got := rec.Count(journal.OutcomeRenamed); got != 1 {
		t.Fatalf("expected one rename, got %d", got)
	}
}

func TestCompletionSuffixPreventsResubmission(t *testing.T) {
	fake := &testsupport.FakeClassifier{}
	st, dir, rec := newTestStage(t, fake, Options{})

	testsupport.WriteFile(t, filepath.Join(dir, "Sunset_DESC.png"), "png")

	if err := st.Execute(context.Background(), rec); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if fake.Calls["images"] != 0 {
		t.Fatalf("marked images must not be resubmitted, got %d calls", fake.Calls["images"])
	}
}

func TestBatchSizeSplitsCalls(t *testing.T) {
	fake := &testsupport.FakeClassifier{}
	st, dir, rec := newTestStage(t, fake, Options{BatchSize: 2})

	for _, name := range []string{"a.png", "b.png", "c.png"} {
		testsupport.WriteFile(t, filepath.Join(dir, name), "png")
	}

	if err := st.Execute(context.Background(), rec); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if fake.Calls["images"] != 2 {
		t.Fatalf("expected 2 batch calls for 3 files at size 2, got %d", fake.Calls["images"])
	}
	if got := rec.Count(journal.OutcomeRenamed); got != 3 {
		t.Fatalf("expected all 3 renamed, got %d", got)
	}
}

func TestFailedBatchLeavesFilesUnmarked(t *testing.T) {
	fake := &testsupport.FakeClassifier{FailImages: 3}
	st, dir, rec := newTestStage(t, fake, Options{})

	testsupport.WriteFile(t, filepath.Join(dir, "photo.jpg"), "jpg")

	if err := st.Execute(context.Background(), rec); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "photo.jpg")); err != nil {
		t.Fatalf("failed batch must leave the original name: %v", err)
	}
	if got := rec.Count(journal.OutcomeSkipped); got != 1 {
		t.Fatalf("expected one skipped decision, got %d", got)
	}

	// Next run retries the same file.
	fake.FailImages = 0
	rec2 := stage.NewRecorder("run-2", st.Name(), nil, nil, nil)
	if err := st.Execute(context.Background(), rec2); err != nil {
		t.Fatalf("second execute: %v", err)
	}
	if got := rec2.Count(journal.OutcomeRenamed); got != 1 {
		t.Fatalf("expected retry on next run to rename, got %d", got)
	}
}

func TestCollisionCountersDisambiguate(t *testing.T) {
	fake := &testsupport.FakeClassifier{
		ImageTitles: map[string]string{
			"one.png": "Sunset",
			"two.png": "Sunset",
		},
	}
	st, dir, rec := newTestStage(t, fake, Options{})

	testsupport.WriteFile(t, filepath.Join(dir, "one.png"), "1")
	testsupport.WriteFile(t, filepath.Join(dir, "two.png"), "2")

	if err := st.Execute(context.Background(), rec); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Sunset_DESC.png")); err != nil {
		t.Fatalf("expected first title: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Sunset_1_DESC.png")); err != nil {
		t.Fatalf("expected counter suffix on second title: %v", err)
	}
}

func TestMissingImagesFolderIsNotAnError(t *testing.T) {
	fake := &testsupport.FakeClassifier{}
	st, _, rec := newTestStage(t, fake, Options{})

	if err := st.Execute(context.Background(), rec); err != nil {
		t.Fatalf("expected clean no-op, got %v", err)
	}
}

func TestDryRunReadsNothing(t *testing.T) {
	fake := &testsupport.FakeClassifier{}
	st, dir, rec := newTestStage(t, fake, Options{DryRun: true})

	testsupport.WriteFile(t, filepath.Join(dir, "pic.webp"), "w")

	if err := st.Execute(context.Background(), rec); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if fake.Calls["images"] != 0 {
		t.Fatalf("dry run must not call the classifier, got %d calls", fake.Calls["images"])
	}
	if _, err := os.Stat(filepath.Join(dir, "pic.webp")); err != nil {
		t.Fatalf("dry run must not rename: %v", err)
	}
}

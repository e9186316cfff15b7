package pdfsort

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"curator/internal/classifier"
	"curator/internal/journal"
	"curator/internal/stage"
	"curator/internal/testsupport"
)

func newTestStage(t *testing.T, fake *testsupport.FakeClassifier, dryRun bool) (*Stage, string, *stage.Recorder) {
	t.Helper()

	archive := t.TempDir()
	st := New(Options{ArchiveDir: archive, DryRun: dryRun}, fake, testsupport.FastRetry(), nil)
	rec := stage.NewRecorder("run-1", st.Name(), nil, nil, nil)
	return st, filepath.Join(archive, documentsDir), rec
}

func TestSortsPDFIntoSuggestedSubfolder(t *testing.T) {
	fake := &testsupport.FakeClassifier{
		PDFAnswers: map[string]classifier.PDFClassification{
			"invoice-march.pdf": {SuggestedSubfolder: "Invoices"},
		},
	}
	st, dir, rec := newTestStage(t, fake, false)

	testsupport.WriteFile(t, filepath.Join(dir, "invoice-march.pdf"), "pdf")

	if err := st.Execute(context.Background(), rec); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Invoices", "invoice-march.pdf")); err != nil {
		t.Fatalf("expected PDF sorted into Invoices: %v", err)
	}
	if got := rec.Count(journal.OutcomeSorted); got != 1 {
		t.Fatalf("expected one sorted decision, got %d", got)
	}
}

func TestSubfolderPlacementIsTheCompletionMarker(t *testing.T) {
	fake := &testsupport.FakeClassifier{}
	st, dir, rec := newTestStage(t, fake, false)

	testsupport.WriteFile(t, filepath.Join(dir, "Invoices", "done.pdf"), "pdf")

	if err := st.Execute(context.Background(), rec); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if fake.Calls["pdf"] != 0 {
		t.Fatalf("already-sorted PDFs must not be reclassified, got %d calls", fake.Calls["pdf"])
	}
}

func TestClassificationFailureLeavesPDFInRoot(t *testing.T) {
	fake := &testsupport.FakeClassifier{FailPDF: 3}
	st, dir, rec := newTestStage(t, fake, false)

	testsupport.WriteFile(t, filepath.Join(dir, "mystery.pdf"), "pdf")

	if err := st.Execute(context.Background(), rec); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "mystery.pdf")); err != nil {
		t.Fatalf("unclassifiable PDF must stay in the root: %v", err)
	}
	if got := rec.Count(journal.OutcomeSkipped); got != 1 {
		t.Fatalf("expected one skipped decision, got %d", got)
	}
}

func TestNewSubfolderOfferedToLaterFiles(t *testing.T) {
	fake := &testsupport.FakeClassifier{
		PDFAnswers: map[string]classifier.PDFClassification{
			"a.pdf": {SuggestedSubfolder: "Receipts", IsNewSubfolder: true},
			"b.pdf": {SuggestedSubfolder: "Receipts"},
		},
	}
	st, dir, rec := newTestStage(t, fake, false)

	testsupport.WriteFile(t, filepath.Join(dir, "a.pdf"), "a")
	testsupport.WriteFile(t, filepath.Join(dir, "b.pdf"), "b")

	if err := st.Execute(context.Background(), rec); err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, name := range []string{"a.pdf", "b.pdf"} {
		if _, err := os.Stat(filepath.Join(dir, "Receipts", name)); err != nil {
			t.Fatalf("expected %s in Receipts: %v", name, err)
		}
	}
}

func TestMissingDocumentsFolderIsNotAnError(t *testing.T) {
	fake := &testsupport.FakeClassifier{}
	st, _, rec := newTestStage(t, fake, false)

	if err := st.Execute(context.Background(), rec); err != nil {
		t.Fatalf("expected clean no-op, got %v", err)
	}
}

func TestDryRunMovesNothing(t *testing.T) {
	fake := &testsupport.FakeClassifier{}
	st, dir, rec := newTestStage(t, fake, true)

	testsupport.WriteFile(t, filepath.Join(dir, "doc.pdf"), "pdf")

	if err := st.Execute(context.Background(), rec); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if fake.Calls["pdf"] != 0 {
		t.Fatalf("dry run must not call the classifier, got %d calls", fake.Calls["pdf"])
	}
	if _, err := os.Stat(filepath.Join(dir, "doc.pdf")); err != nil {
		t.Fatalf("dry run must not move files: %v", err)
	}
}

// Package pdfsort files archived PDFs into topical subfolders.
//
// Placement is the completion marker: only PDFs sitting directly in the
// archive's Documents root are candidates, so a sorted file is never
// reclassified. Each candidate is classified against the existing subfolder
// names; files the classifier cannot place stay in the root and are retried
// on the next run.
package pdfsort

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"curator/internal/classifier"
	"curator/internal/fileutil"
	"curator/internal/journal"
	"curator/internal/logging"
	"curator/internal/rules"
	"curator/internal/services"
	"curator/internal/services/retry"
	"curator/internal/stage"
)

const documentsDir = "Documents"

// Options configures one sort pass.
type Options struct {
	ArchiveDir string
	DryRun     bool
}

// Stage sorts Documents-root PDFs into subfolders.
type Stage struct {
	opts       Options
	classifier classifier.Service
	retry      retry.Policy
	logger     *slog.Logger
}

// New constructs the PDF sort stage.
func New(opts Options, svc classifier.Service, policy retry.Policy, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Stage{opts: opts, classifier: svc, retry: policy, logger: logger}
}

func (s *Stage) Name() string {
	return journal.StagePDFs
}

func (s *Stage) Prepare(ctx context.Context) error {
	return nil
}

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if s.classifier == nil {
		return stage.Unhealthy(s.Name(), "classifier not configured")
	}
	return stage.Healthy(s.Name())
}

// Execute classifies and moves every unsorted PDF in the Documents root.
func (s *Stage) Execute(ctx context.Context, rec *stage.Recorder) error {
	dir := filepath.Join(s.opts.ArchiveDir, documentsDir)
	pending, subfolders, err := scanDocuments(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return services.Wrap(services.ErrPermanent, s.Name(), "execute", "scan documents folder", err)
	}

	for _, name := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.opts.DryRun {
			rec.Record(ctx, name, journal.OutcomeSorted, "dry-run: would classify into a subfolder")
			continue
		}
		subfolders = s.sortOne(ctx, rec, dir, name, subfolders)
	}
	return nil
}

// scanDocuments splits the Documents root into unsorted PDFs and the existing
// subfolder names the classifier chooses among.
func scanDocuments(dir string) (pending, subfolders []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			subfolders = append(subfolders, entry.Name())
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			pending = append(pending, entry.Name())
		}
	}
	sort.Strings(pending)
	sort.Strings(subfolders)
	return pending, subfolders, nil
}

// sortOne classifies a single PDF and moves it. The returned slice carries any
// newly created subfolder so later files can be matched against it.
func (s *Stage) sortOne(ctx context.Context, rec *stage.Recorder, dir, name string, subfolders []string) []string {
	result, err := retry.Value(ctx, s.retry, "classify pdf", func(ctx context.Context) (classifier.PDFClassification, error) {
		return s.classifier.ClassifyPDF(ctx, name, subfolders)
	})
	if err != nil {
		if ctx.Err() != nil {
			return subfolders
		}
		rec.Record(ctx, name, journal.OutcomeSkipped, "classification failed, left in Documents root")
		return subfolders
	}

	label := rules.SanitizeLabel(result.SuggestedSubfolder)
	if label == "" {
		rec.Record(ctx, name, journal.OutcomeSkipped, "empty subfolder suggestion")
		return subfolders
	}

	dst := filepath.Join(dir, label, name)
	switch err := fileutil.MoveFile(filepath.Join(dir, name), dst); {
	case err == nil:
		rec.Record(ctx, name, journal.OutcomeSorted, "sorted into "+label)
		if !containsFold(subfolders, label) {
			subfolders = append(subfolders, label)
			sort.Strings(subfolders)
		}
	case errors.Is(err, fileutil.ErrDestinationExists):
		rec.Record(ctx, name, journal.OutcomeCollision, dst+" already exists")
	default:
		rec.Record(ctx, name, journal.OutcomeFailed, err.Error())
	}
	return subfolders
}

func containsFold(list []string, value string) bool {
	for _, entry := range list {
		if strings.EqualFold(entry, value) {
			return true
		}
	}
	return false
}

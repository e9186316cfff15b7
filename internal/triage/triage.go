// Package triage walks the source directory and routes each entry to its
// archive destination.
//
// Per entry the pass applies the exclusion and recency filters, consults the
// rule store, and on a miss asks the classifier to learn a mapping before
// moving the file. Failures are isolated per item: a file the classifier
// cannot place stays where it is and the pass continues.
package triage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"curator/internal/classifier"
	"curator/internal/fileutil"
	"curator/internal/journal"
	"curator/internal/logging"
	"curator/internal/rules"
	"curator/internal/services"
	"curator/internal/services/retry"
	"curator/internal/stage"
)

const (
	foldersDir      = "Folders"
	codeProjectsDir = "Code_Projects"
	unsortedDir     = "Unsorted"
)

// Options configures one triage pass.
type Options struct {
	SourceDir     string
	ArchiveDir    string
	RecencyWindow time.Duration
	ProcessAll    bool
	SnippetLines  int
	DryRun        bool
}

// Stage routes source-directory entries into the archive.
type Stage struct {
	opts       Options
	rules      *rules.Store
	classifier classifier.Service
	retry      retry.Policy
	logger     *slog.Logger
}

// New constructs the triage stage.
func New(opts Options, store *rules.Store, svc classifier.Service, policy retry.Policy, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.SnippetLines <= 0 {
		opts.SnippetLines = 50
	}
	return &Stage{opts: opts, rules: store, classifier: svc, retry: policy, logger: logger}
}

func (s *Stage) Name() string {
	return journal.StageTriage
}

// Prepare verifies the source directory exists and creates the archive root.
func (s *Stage) Prepare(ctx context.Context) error {
	info, err := os.Stat(s.opts.SourceDir)
	if err != nil {
		return services.Wrap(services.ErrValidation, s.Name(), "prepare", "source directory unavailable", err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrValidation, s.Name(), "prepare",
			fmt.Sprintf("source path %s is not a directory", s.opts.SourceDir), nil)
	}
	if s.opts.DryRun {
		return nil
	}
	if err := os.MkdirAll(s.opts.ArchiveDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, s.Name(), "prepare", "create archive root", err)
	}
	return nil
}

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if s.classifier == nil {
		return stage.Unhealthy(s.Name(), "classifier not configured")
	}
	if _, err := os.Stat(s.opts.SourceDir); err != nil {
		return stage.Unhealthy(s.Name(), fmt.Sprintf("source directory: %v", err))
	}
	return stage.Healthy(s.Name())
}

// Execute runs the triage pass over every entry in the source directory.
func (s *Stage) Execute(ctx context.Context, rec *stage.Recorder) error {
	entries, err := os.ReadDir(s.opts.SourceDir)
	if err != nil {
		return services.Wrap(services.ErrPermanent, s.Name(), "execute", "read source directory", err)
	}
	cutoff := time.Now().Add(-s.opts.RecencyWindow)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			s.triageFolder(ctx, rec, entry.Name())
			continue
		}
		if err := s.triageFile(ctx, rec, entry, cutoff); err != nil {
			return err
		}
	}
	return nil
}

// triageFolder sweeps a stray directory into <archive>/Folders. The archive
// root itself is left alone.
func (s *Stage) triageFolder(ctx context.Context, rec *stage.Recorder, name string) {
	src := filepath.Join(s.opts.SourceDir, name)
	if sameDir(src, s.opts.ArchiveDir) {
		return
	}
	dst := filepath.Join(s.opts.ArchiveDir, foldersDir, name)
	if s.opts.DryRun {
		rec.Record(ctx, name, journal.OutcomeFolderMoved, "dry-run: would move folder to "+dst)
		return
	}
	switch err := fileutil.MoveDir(src, dst); {
	case err == nil:
		rec.Record(ctx, name, journal.OutcomeFolderMoved, "folder moved to "+dst)
	case errors.Is(err, fileutil.ErrDestinationExists):
		rec.Record(ctx, name, journal.OutcomeCollision, dst+" already exists")
	default:
		rec.Record(ctx, name, journal.OutcomeFailed, err.Error())
	}
}

func (s *Stage) triageFile(ctx context.Context, rec *stage.Recorder, entry os.DirEntry, cutoff time.Time) error {
	name := entry.Name()
	ext := filepath.Ext(name)

	if s.rules.Excluded(name, ext) {
		rec.Record(ctx, name, journal.OutcomeExcluded, "matches exclusion list")
		return nil
	}
	if !s.opts.ProcessAll {
		info, err := entry.Info()
		if err != nil {
			rec.Record(ctx, name, journal.OutcomeFailed, "stat: "+err.Error())
			return nil
		}
		if info.ModTime().After(cutoff) {
			rec.Record(ctx, name, journal.OutcomeTooRecent,
				fmt.Sprintf("modified within the last %s", s.opts.RecencyWindow))
			return nil
		}
	}

	destDir, outcomeDetail, err := s.resolveDestination(ctx, name, ext)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rec.Record(ctx, name, journal.OutcomeSkipped, outcomeDetail+": "+err.Error())
		return nil
	}
	if destDir == "" {
		// Dry run over an unknown extension: nothing to learn without a
		// classifier call, so just report the miss.
		rec.Record(ctx, name, journal.OutcomeSkipped, outcomeDetail)
		return nil
	}

	dst := filepath.Join(destDir, name)
	if s.opts.DryRun {
		rec.Record(ctx, name, journal.OutcomeMoved, "dry-run: would move to "+dst)
		return nil
	}
	src := filepath.Join(s.opts.SourceDir, name)
	switch err := fileutil.MoveFile(src, dst); {
	case err == nil:
		rec.Record(ctx, name, journal.OutcomeMoved, "moved to "+dst)
	case errors.Is(err, fileutil.ErrDestinationExists):
		rec.Record(ctx, name, journal.OutcomeCollision, dst+" already exists")
	default:
		rec.Record(ctx, name, journal.OutcomeFailed, err.Error())
	}
	return nil
}

// resolveDestination decides the archive directory for one file. An empty
// directory with a non-empty detail means the file was deliberately left in
// place this run.
func (s *Stage) resolveDestination(ctx context.Context, name, ext string) (string, string, error) {
	if ext == "" {
		return filepath.Join(s.opts.ArchiveDir, unsortedDir), "", nil
	}
	category, known := s.rules.Lookup(ext)
	if known {
		if category == rules.CodeCategory {
			return s.resolveCodeDestination(ctx, name), "", nil
		}
		return filepath.Join(s.opts.ArchiveDir, category), "", nil
	}
	if s.opts.DryRun {
		return "", "dry-run: unknown extension " + ext, nil
	}
	rec, err := retry.Value(ctx, s.retry, "classify extension", func(ctx context.Context) (classifier.Recommendation, error) {
		return s.classifier.ClassifyExtension(ctx, ext, s.rules.Categories())
	})
	if err != nil {
		return "", "classification failed for " + ext, err
	}
	label := rules.SanitizeLabel(rec.SuggestedFolder)
	if label == "" {
		label = unsortedDir
	}
	if err := s.rules.Record(ext, label); err != nil {
		return "", "could not persist rule " + ext + " -> " + label, err
	}
	s.logger.Info("learned extension rule",
		logging.String("extension", ext),
		logging.String("category", label),
		logging.Bool("new_category", rec.IsNewCategory))
	return filepath.Join(s.opts.ArchiveDir, label), "", nil
}

// resolveCodeDestination asks the classifier for a project name based on the
// file's leading lines. Analysis failure falls back to the plain Code folder
// so code files still move.
func (s *Stage) resolveCodeDestination(ctx context.Context, name string) string {
	plain := filepath.Join(s.opts.ArchiveDir, rules.CodeCategory)
	if s.opts.DryRun {
		return plain
	}
	snippet, err := readSnippet(filepath.Join(s.opts.SourceDir, name), s.opts.SnippetLines)
	if err != nil || strings.TrimSpace(snippet) == "" {
		return plain
	}
	result, err := retry.Value(ctx, s.retry, "analyze code", func(ctx context.Context) (classifier.CodeClassification, error) {
		return s.classifier.AnalyzeCode(ctx, name, snippet)
	})
	if err != nil {
		s.logger.Warn("code analysis failed, using plain Code folder",
			logging.String(logging.FieldFile, name),
			logging.Error(err))
		return plain
	}
	project := rules.SanitizeLabel(result.ProjectName)
	if project == "" {
		return plain
	}
	return filepath.Join(s.opts.ArchiveDir, codeProjectsDir, project)
}

// readSnippet returns up to maxLines leading lines of the file.
func readSnippet(path string, maxLines int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for i := 0; i < maxLines && scanner.Scan(); i++ {
		b.WriteString(scanner.Text())
		b.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}

func sameDir(a, b string) bool {
	ra, err := filepath.Abs(a)
	if err != nil {
		return false
	}
	rb, err := filepath.Abs(b)
	if err != nil {
		return false
	}
	return ra == rb
}

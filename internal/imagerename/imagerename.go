// Package imagerename gives archived images descriptive filenames.
//
// The stage scans the archive's Images folder for files that do not yet carry
// the completion suffix, submits them to the classifier in fixed-size batches,
// and renames each file to its sanitized short title plus the suffix. The
// suffix is what makes reruns idempotent: a renamed file is never resubmitted.
package imagerename

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"curator/internal/classifier"
	"curator/internal/journal"
	"curator/internal/logging"
	"curator/internal/rules"
	"curator/internal/services"
	"curator/internal/services/retry"
	"curator/internal/stage"
)

// CompletionSuffix marks an image as already renamed.
const CompletionSuffix = "_DESC"

const imagesDir = "Images"

var imageExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// Options configures one rename pass.
type Options struct {
	ArchiveDir string
	BatchSize  int
	BatchDelay time.Duration
	DryRun     bool
}

// Stage renames archived images in classifier batches.
type Stage struct {
	opts       Options
	classifier classifier.Service
	retry      retry.Policy
	logger     *slog.Logger

	// sleep is swapped out in tests to avoid real inter-batch waits.
	sleep func(context.Context, time.Duration) error
}

// New constructs the image rename stage.
func New(opts Options, svc classifier.Service, policy retry.Policy, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	return &Stage{
		opts:       opts,
		classifier: svc,
		retry:      policy,
		logger:     logger,
		sleep:      sleepContext,
	}
}

func (s *Stage) Name() string {
	return journal.StageImages
}

// Prepare is a no-op when the Images folder does not exist yet; the stage
// simply has nothing to do.
func (s *Stage) Prepare(ctx context.Context) error {
	return nil
}

func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	if s.classifier == nil {
		return stage.Unhealthy(s.Name(), "classifier not configured")
	}
	return stage.Healthy(s.Name())
}

// Execute scans for unmarked images and processes them batch by batch. A
// failed batch leaves its files unmarked so the next run picks them up again.
func (s *Stage) Execute(ctx context.Context, rec *stage.Recorder) error {
	dir := filepath.Join(s.opts.ArchiveDir, imagesDir)
	pending, err := s.pendingImages(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return services.Wrap(services.ErrPermanent, s.Name(), "execute", "scan images folder", err)
	}
	if len(pending) == 0 {
		return nil
	}

	for start := 0; start < len(pending); start += s.opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + s.opts.BatchSize
		if end > len(pending) {
			end = len(pending)
		}
		s.processBatch(ctx, rec, dir, pending[start:end])
		if end < len(pending) && s.opts.BatchDelay > 0 {
			if err := s.sleep(ctx, s.opts.BatchDelay); err != nil {
				return err
			}
		}
	}
	return nil
}

// pendingImages lists image files lacking the completion suffix, sorted for a
// stable batch order.
func (s *Stage) pendingImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var pending []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if _, ok := imageExtensions[ext]; !ok {
			continue
		}
		base := strings.TrimSuffix(name, filepath.Ext(name))
		if strings.HasSuffix(base, CompletionSuffix) {
			continue
		}
		pending = append(pending, name)
	}
	sort.Strings(pending)
	return pending, nil
}

func (s *Stage) processBatch(ctx context.Context, rec *stage.Recorder, dir string, names []string) {
	if s.opts.DryRun {
		for _, name := range names {
			rec.Record(ctx, name, journal.OutcomeRenamed, "dry-run: would describe and rename")
		}
		return
	}

	batch := make([]classifier.ImageSample, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			rec.Record(ctx, name, journal.OutcomeFailed, "read: "+err.Error())
			continue
		}
		batch = append(batch, classifier.ImageSample{
			Filename: name,
			MIMEType: imageExtensions[strings.ToLower(filepath.Ext(name))],
			Data:     data,
		})
	}
	if len(batch) == 0 {
		return
	}

	titles, err := retry.Value(ctx, s.retry, "describe images", func(ctx context.Context) (map[string]classifier.ImageDescription, error) {
		return s.classifier.DescribeImages(ctx, batch)
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn("image batch failed, leaving files for the next run",
			logging.Int("batch_size", len(batch)),
			logging.Error(err))
		for _, sample := range batch {
			rec.Record(ctx, sample.Filename, journal.OutcomeSkipped, "batch description failed")
		}
		return
	}

	for _, sample := range batch {
		desc, ok := titles[sample.Filename]
		if !ok || strings.TrimSpace(desc.ShortTitle) == "" {
			rec.Record(ctx, sample.Filename, journal.OutcomeSkipped, "no title returned")
			continue
		}
		s.applyRename(ctx, rec, dir, sample.Filename, desc.ShortTitle)
	}
}

// applyRename renames one image to <Title>_DESC<ext>, appending _1, _2, ...
// when the target name is taken.
func (s *Stage) applyRename(ctx context.Context, rec *stage.Recorder, dir, name, title string) {
	ext := filepath.Ext(name)
	label := rules.SanitizeLabel(title)
	if label == "" {
		rec.Record(ctx, name, journal.OutcomeSkipped, "title sanitized to nothing")
		return
	}

	target := label + CompletionSuffix + ext
	for counter := 1; ; counter++ {
		if target == name {
			break
		}
		if _, err := os.Lstat(filepath.Join(dir, target)); errors.Is(err, os.ErrNotExist) {
			break
		}
		target = fmt.Sprintf("%s_%d%s%s", label, counter, CompletionSuffix, ext)
	}
	if target == name {
		rec.Record(ctx, name, journal.OutcomeSkipped, "already descriptively named")
		return
	}

	if err := os.Rename(filepath.Join(dir, name), filepath.Join(dir, target)); err != nil {
		// A second attempt through a unique staging name recovers from
		// transient target contention.
		staged := filepath.Join(dir, uuid.NewString()+ext)
		if err2 := os.Rename(filepath.Join(dir, name), staged); err2 != nil {
			rec.Record(ctx, name, journal.OutcomeFailed, "rename: "+err.Error())
			return
		}
		if err2 := os.Rename(staged, filepath.Join(dir, target)); err2 != nil {
			rec.Record(ctx, name, journal.OutcomeFailed, "rename via staging: "+err2.Error())
			return
		}
	}
	rec.Record(ctx, name, journal.OutcomeRenamed, "renamed to "+target)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

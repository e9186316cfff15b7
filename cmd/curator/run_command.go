package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"curator/internal/classifier"
	"curator/internal/config"
	"curator/internal/imagerename"
	"curator/internal/journal"
	"curator/internal/notifications"
	"curator/internal/pdfsort"
	"curator/internal/pipeline"
	"curator/internal/progress"
	"curator/internal/rules"
	"curator/internal/services/retry"
	"curator/internal/stage"
	"curator/internal/triage"
)

func newRunCommand(cctx *commandContext) *cobra.Command {
	var processAll bool
	var images bool
	var pdfs bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one organizing pass over the source directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("all") {
				cfg.Triage.ProcessAllFiles = processAll
			}
			if cmd.Flags().Changed("images") {
				cfg.Images.Enabled = images
			}
			if cmd.Flags().Changed("pdfs") {
				cfg.PDFs.Enabled = pdfs
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			run, err := executeRun(ctx, cctx, cfg, dryRun, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			printRunSummary(cmd.OutOrStdout(), run, dryRun)
			return nil
		},
	}

	cmd.Flags().BoolVar(&processAll, "all", false, "Process every file regardless of modification time")
	cmd.Flags().BoolVar(&images, "images", true, "Rename archived images with AI descriptions")
	cmd.Flags().BoolVar(&pdfs, "pdfs", true, "Sort archived PDFs into subfolders")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report decisions without moving files or calling the classifier")
	return cmd
}

// executeRun assembles the stage sequence and drives a single pass, streaming
// progress to out while the worker goroutine runs.
func executeRun(ctx context.Context, cctx *commandContext, cfg *config.Config, dryRun bool, out io.Writer) (*journal.Run, error) {
	logger, err := cctx.ensureLogger()
	if err != nil {
		return nil, err
	}

	ruleStore, err := rules.Load(cfg.RulesPath(), logger)
	if err != nil {
		return nil, fmt.Errorf("load extension map: %w", err)
	}

	// Dry runs never reach the classifier, so no client is built for them.
	var svc classifier.Service
	if !dryRun {
		svc, err = classifier.NewGemini(ctx, cfg.Gemini)
		if err != nil {
			return nil, err
		}
	}

	journalStore, err := journal.Open(cfg.JournalPath())
	if err != nil {
		return nil, fmt.Errorf("open run journal: %w", err)
	}
	defer journalStore.Close()

	policy := retry.Policy{
		MaxAttempts: cfg.Triage.RetryAttempts,
		Delay:       time.Duration(cfg.Triage.RetryDelaySeconds) * time.Second,
	}

	stages := []stage.Handler{
		triage.New(triage.Options{
			SourceDir:     cfg.Paths.SourceDir,
			ArchiveDir:    cfg.Paths.ArchiveDir,
			RecencyWindow: time.Duration(cfg.Triage.RecencyWindowHours) * time.Hour,
			ProcessAll:    cfg.Triage.ProcessAllFiles,
			SnippetLines:  cfg.Triage.CodeSnippetLines,
			DryRun:        dryRun,
		}, ruleStore, svc, policy, logger),
	}
	if cfg.Images.Enabled {
		stages = append(stages, imagerename.New(imagerename.Options{
			ArchiveDir: cfg.Paths.ArchiveDir,
			BatchSize:  cfg.Images.BatchSize,
			BatchDelay: time.Duration(cfg.Images.BatchDelaySeconds) * time.Second,
			DryRun:     dryRun,
		}, svc, policy, logger))
	}
	if cfg.PDFs.Enabled {
		stages = append(stages, pdfsort.New(pdfsort.Options{
			ArchiveDir: cfg.Paths.ArchiveDir,
			DryRun:     dryRun,
		}, svc, policy, logger))
	}

	hub := progress.NewHub(256)
	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		renderProgress(out, hub.Events())
	}()

	runner, err := pipeline.New(pipeline.Options{
		SourceDir:  cfg.Paths.SourceDir,
		LockPath:   cfg.LockPath(),
		Stages:     stages,
		Journal:    journalStore,
		Hub:        hub,
		Notifier:   notifications.NewService(cfg),
		Logger:     logger,
		ProcessAll: cfg.Triage.ProcessAllFiles,
		DryRun:     dryRun,
	})
	if err != nil {
		return nil, err
	}

	run, runErr := runner.Run(ctx)
	hub.Close()
	<-rendered
	return run, runErr
}

// renderProgress prints one line per decision as the worker reports it.
func renderProgress(out io.Writer, events <-chan progress.Event) {
	for evt := range events {
		switch evt.Kind {
		case progress.KindStageStarted:
			fmt.Fprintf(out, "==> %s\n", evt.Stage)
		case progress.KindStageFailed:
			fmt.Fprintf(out, "==> %s failed: %s\n", evt.Stage, evt.Detail)
		case progress.KindItem:
			if evt.Detail != "" {
				fmt.Fprintf(out, "    %-14s %s (%s)\n", evt.Outcome, evt.Name, evt.Detail)
			} else {
				fmt.Fprintf(out, "    %-14s %s\n", evt.Outcome, evt.Name)
			}
		}
	}
}

func printRunSummary(out io.Writer, run *journal.Run, dryRun bool) {
	if run == nil {
		return
	}
	title := "Run complete"
	if dryRun {
		title = "Dry run complete"
	}
	fmt.Fprintf(out, "\n%s (%s)\n", title, run.Status)
	fmt.Fprintln(out, renderTable(
		[]string{"Files", "Folders", "Images", "PDFs", "Skipped", "Failed"},
		[][]string{{
			strconv.Itoa(run.FilesMoved),
			strconv.Itoa(run.FoldersMoved),
			strconv.Itoa(run.ImagesRenamed),
			strconv.Itoa(run.PDFsSorted),
			strconv.Itoa(run.Skipped),
			strconv.Itoa(run.Failed),
		}},
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
	))
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"curator/internal/pipeline"
	"curator/internal/watch"
)

func newWatchCommand(cctx *commandContext) *cobra.Command {
	var settleSeconds int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the source directory and organize after activity settles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cctx.ensureLogger()
			if err != nil {
				return err
			}

			settle := time.Duration(cfg.Watch.SettleSeconds) * time.Second
			if cmd.Flags().Changed("settle") {
				settle = time.Duration(settleSeconds) * time.Second
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			runOnce := func(ctx context.Context) error {
				run, err := executeRun(ctx, cctx, cfg, false, out)
				if err != nil {
					if errors.Is(err, pipeline.ErrAlreadyRunning) || errors.Is(err, context.Canceled) {
						return err
					}
					fmt.Fprintf(out, "run failed: %v\n", err)
					return err
				}
				printRunSummary(out, run, false)
				return nil
			}

			watcher, err := watch.New(cfg.Paths.SourceDir, cfg.Paths.ArchiveDir, settle, runOnce, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Watching %s (settle %s). Press Ctrl-C to stop.\n", cfg.Paths.SourceDir, settle)
			return watcher.Run(ctx)
		},
	}

	cmd.Flags().IntVar(&settleSeconds, "settle", 30, "Seconds of quiet before a run triggers")
	return cmd
}

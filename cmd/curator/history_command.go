package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"curator/internal/journal"
)

func newHistoryCommand(cctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent organizing runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := journal.Open(cfg.JournalPath())
			if err != nil {
				return fmt.Errorf("open run journal: %w", err)
			}
			defer store.Close()

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					string(run.Status),
					strconv.Itoa(run.FilesMoved),
					strconv.Itoa(run.FoldersMoved),
					strconv.Itoa(run.ImagesRenamed),
					strconv.Itoa(run.PDFsSorted),
					strconv.Itoa(run.Skipped),
					strconv.Itoa(run.Failed),
					runDuration(run),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Run", "Started", "Status", "Files", "Folders", "Images", "PDFs", "Skipped", "Failed", "Duration"},
				rows,
				[]columnAlignment{
					alignLeft, alignLeft, alignLeft,
					alignRight, alignRight, alignRight, alignRight, alignRight, alignRight,
					alignRight,
				},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	cmd.AddCommand(newHistoryShowCommand(cctx))
	return cmd
}

func newHistoryShowCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show per-item decisions for one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := journal.Open(cfg.JournalPath())
			if err != nil {
				return fmt.Errorf("open run journal: %w", err)
			}
			defer store.Close()

			run, err := resolveRun(cmd, store, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s  started %s  status %s  process-all %s\n\n",
				run.ID, run.StartedAt.Local().Format(time.RFC1123), run.Status, yesNo(run.ProcessAll))

			items, err := store.RunItems(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(out, "No per-item decisions recorded")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{item.Stage, item.Name, string(item.Outcome), item.Detail})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Stage", "Item", "Outcome", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

// resolveRun accepts a full run ID or an unambiguous prefix.
func resolveRun(cmd *cobra.Command, store *journal.Store, id string) (*journal.Run, error) {
	run, err := store.GetRun(cmd.Context(), id)
	if err == nil {
		return run, nil
	}

	runs, listErr := store.RecentRuns(cmd.Context(), 1000)
	if listErr != nil {
		return nil, err
	}
	var match *journal.Run
	for _, candidate := range runs {
		if len(id) > 0 && len(candidate.ID) >= len(id) && candidate.ID[:len(id)] == id {
			if match != nil {
				return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
			}
			match = candidate
		}
	}
	if match == nil {
		return nil, err
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runDuration(run *journal.Run) string {
	if run.FinishedAt == nil {
		return "-"
	}
	return run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
}

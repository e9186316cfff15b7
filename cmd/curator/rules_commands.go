package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"curator/internal/rules"
)

func newRulesCommand(cctx *commandContext) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and edit the learned extension map",
	}

	rulesCmd.AddCommand(newRulesShowCommand(cctx))
	rulesCmd.AddCommand(newRulesExcludeCommand(cctx))
	return rulesCmd
}

func newRulesShowCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the extension map and exclusion list",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadRules(cctx)
			if err != nil {
				return err
			}

			categories := store.Categories()
			sort.Strings(categories)
			rows := make([][]string, 0, len(categories))
			for _, category := range categories {
				exts := store.Extensions(category)
				sort.Strings(exts)
				rows = append(rows, []string{category, strings.Join(exts, " ")})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Category", "Extensions"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			if exclusions := store.Exclusions(); len(exclusions) > 0 {
				fmt.Fprintf(out, "\nExclusions: %s\n", strings.Join(exclusions, ", "))
			}
			fmt.Fprintf(out, "Map file: %s\n", store.Path())
			return nil
		},
	}
}

func newRulesExcludeCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "exclude <name-or-extension>...",
		Short: "Add entries to the exclusion list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadRules(cctx)
			if err != nil {
				return err
			}

			existing := store.Exclusions()
			seen := make(map[string]bool, len(existing))
			for _, entry := range existing {
				seen[strings.ToLower(entry)] = true
			}
			added := 0
			for _, arg := range args {
				entry := strings.TrimSpace(arg)
				if entry == "" || seen[strings.ToLower(entry)] {
					continue
				}
				existing = append(existing, entry)
				seen[strings.ToLower(entry)] = true
				added++
			}
			if added == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No new exclusions to add")
				return nil
			}
			if err := store.SetExclusions(existing); err != nil {
				return fmt.Errorf("persist exclusions: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d exclusion(s)\n", added)
			return nil
		},
	}
}

func loadRules(cctx *commandContext) (*rules.Store, error) {
	cfg, err := cctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := cctx.ensureLogger()
	if err != nil {
		return nil, err
	}
	store, err := rules.Load(cfg.RulesPath(), logger)
	if err != nil {
		return nil, fmt.Errorf("load extension map: %w", err)
	}
	return store, nil
}

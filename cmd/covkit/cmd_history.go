package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"covkit/internal/store"
)

var (
	historyLabel string
	historyLimit int
	historyAge   time.Duration
)

// historyCmd tracks coverage totals across runs
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Track coverage totals across runs",
	Long: `Records merged coverage totals in a local SQLite database
(history.database_path, default data/covkit.db) and lists them, so
coverage can be compared between runs.`,
}

// historyRecordCmd merges tracefiles and stores the totals
var historyRecordCmd = &cobra.Command{
	Use:   "record [tracefiles...]",
	Short: "Merge tracefiles and record the totals",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHistoryRecord,
}

// historyListCmd lists recorded runs
var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE:  runHistoryList,
}

// historyPruneCmd deletes old runs
var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs older than --age",
	RunE:  runHistoryPrune,
}

func init() {
	historyRecordCmd.Flags().StringVar(&historyLabel, "label", "", "label for the run (e.g. a commit hash)")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum runs to list (0 = all)")
	historyPruneCmd.Flags().DurationVar(&historyAge, "age", 90*24*time.Hour, "delete runs older than this")

	historyCmd.AddCommand(historyRecordCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyPruneCmd)
}

func openHistory() (*store.HistoryStore, error) {
	return store.Open(cfg.History.DatabasePath, logger)
}

func runHistoryRecord(cmd *cobra.Command, args []string) error {
	merged, err := loadAndMerge(args, true)
	if err != nil {
		return err
	}
	files, total := merged.Summary()

	s, err := openHistory()
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.RecordRun(store.Run{
		Label:         historyLabel,
		Files:         len(files),
		LinesFound:    total.Lines.Found,
		LinesHit:      total.Lines.Hit,
		FuncsFound:    total.Funcs.Found,
		FuncsHit:      total.Funcs.Hit,
		BranchesFound: total.Branches.Found,
		BranchesHit:   total.Branches.Hit,
	})
	if err != nil {
		return err
	}

	fmt.Printf("recorded run %s: %d files, %d/%d lines (%.1f%%)\n",
		id, len(files), total.Lines.Hit, total.Lines.Found, total.Lines.Percent())
	return nil
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	s, err := openHistory()
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.ListRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	for _, run := range runs {
		label := run.Label
		if label == "" {
			label = "-"
		}
		fmt.Printf("%s  %s  %-20s  %d files  lines %d/%d (%.1f%%)\n",
			run.CreatedAt.Format(time.DateTime), run.ID[:8], label,
			run.Files, run.LinesHit, run.LinesFound, run.LinePercent())
	}
	return nil
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	s, err := openHistory()
	if err != nil {
		return err
	}
	defer s.Close()

	removed, err := s.Prune(time.Now().Add(-historyAge))
	if err != nil {
		return err
	}
	fmt.Printf("removed %d runs\n", removed)
	return nil
}

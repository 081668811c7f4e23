package main

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"covkit/internal/watch"
)

var watchOutput string

// watchCmd re-merges tracefiles whenever one changes
var watchCmd = &cobra.Command{
	Use:   "watch [tracefiles...]",
	Short: "Re-merge tracefiles whenever one changes",
	Long: `Watches the given tracefiles and rewrites the merged output every
time one of them changes. Runs until interrupted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "coverage.info", "merged output path")
}

func runWatch(cmd *cobra.Command, args []string) error {
	// Serializes remerges; fsnotify events may arrive on several paths.
	var mu sync.Mutex
	remerge := func(path string) {
		mu.Lock()
		defer mu.Unlock()

		merged, err := loadAndMerge(args, true)
		if err != nil {
			logger.Warn("remerge failed", zap.String("trigger", path), zap.Error(err))
			return
		}
		if err := writeReport(merged, watchOutput); err != nil {
			logger.Warn("failed to write merged output", zap.Error(err))
			return
		}
		fmt.Printf("updated %s\n", watchOutput)
	}

	w, err := watch.New(args, cfg.Watch.Debounce, logger, remerge)
	if err != nil {
		return err
	}
	if err := w.Start(cmd.Context()); err != nil {
		return err
	}
	defer w.Stop()

	// Produce an initial merge before waiting for changes.
	remerge("startup")

	fmt.Printf("watching %d tracefiles, Ctrl-C to stop\n", len(args))
	<-cmd.Context().Done()
	return nil
}

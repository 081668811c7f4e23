package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"covkit/internal/report"
)

var (
	mergeLossy  bool
	mergeOutput string
)

// mergeCmd merges tracefiles into one
var mergeCmd = &cobra.Command{
	Use:   "merge [tracefiles...]",
	Short: "Merge LCOV tracefiles",
	Long: `Merges the given tracefiles and writes the result in LCOV format.

Counts add up across inputs. By default the merge is strict: inputs that
disagree about a function's start line or a line's checksum fail the
merge; --lossy resolves such conflicts by taking the later value.

With no arguments, a single tracefile is read from stdin.`,
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().BoolVar(&mergeLossy, "lossy", false, "resolve merge conflicts instead of failing")
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "output path (default stdout)")
}

func runMerge(cmd *cobra.Command, args []string) error {
	merged, err := loadAndMerge(args, mergeLossy || cfg.Merge.Lossy)
	if err != nil {
		return err
	}
	return writeReport(merged, mergeOutput)
}

// loadAndMerge reads every input concurrently, then merges in argument
// order so the result does not depend on goroutine scheduling.
func loadAndMerge(paths []string, lossy bool) (*report.Report, error) {
	if len(paths) == 0 {
		logger.Debug("no inputs, reading tracefile from stdin")
		return report.Read(os.Stdin)
	}

	reports := make([]*report.Report, len(paths))
	var g errgroup.Group
	g.SetLimit(workerLimit(len(paths)))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			rep, err := report.Load(path)
			if err != nil {
				return err
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := report.New()
	for i, rep := range reports {
		if lossy {
			merged.MergeLossy(rep)
			continue
		}
		if err := merged.Merge(rep); err != nil {
			return nil, fmt.Errorf("%s: %w", paths[i], err)
		}
	}
	logger.Debug("merged tracefiles",
		zap.Int("inputs", len(paths)),
		zap.Int("sections", len(merged.Sections)))
	return merged, nil
}

func workerLimit(inputs int) int {
	if cfg.Merge.Workers > 0 && cfg.Merge.Workers < inputs {
		return cfg.Merge.Workers
	}
	return inputs
}

func writeReport(rep *report.Report, path string) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	_, err := rep.WriteTo(w)
	return err
}

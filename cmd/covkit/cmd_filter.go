package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"covkit/internal/filter"
	"covkit/internal/report"
)

var (
	filterRules  string
	filterLines  []string
	filterOutput string
)

// filterCmd restricts a tracefile to chosen line ranges
var filterCmd = &cobra.Command{
	Use:   "filter [tracefile]",
	Short: "Keep only coverage inside chosen line ranges",
	Long: `Filters a tracefile down to the given line ranges, for example the
lines touched by one commit. Ranges come from a YAML rules file and/or
repeated --lines flags:

  covkit filter report.info --lines 'internal/record/parse.go:10-40'
  covkit filter report.info --rules changed.yaml

A rules file maps file paths to ranges:

  files:
    internal/record/parse.go:
      - "10-40"
      - "97"`,
	Args: cobra.ExactArgs(1),
	RunE: runFilter,
}

func init() {
	filterCmd.Flags().StringVar(&filterRules, "rules", "", "YAML rules file")
	filterCmd.Flags().StringArrayVar(&filterLines, "lines", nil, "file:start[-end] range to keep (repeatable)")
	filterCmd.Flags().StringVarP(&filterOutput, "output", "o", "", "output path (default stdout)")
}

func runFilter(cmd *cobra.Command, args []string) error {
	f, err := buildFilter()
	if err != nil {
		return err
	}

	rep, err := report.Load(args[0])
	if err != nil {
		return err
	}

	before := len(rep.Sections)
	f.Apply(rep)
	logger.Debug("applied line filter",
		zap.Int("sections_before", before),
		zap.Int("sections_after", len(rep.Sections)),
		zap.Strings("files", f.Files()))

	return writeReport(rep, filterOutput)
}

func buildFilter() (*filter.LineFilter, error) {
	if filterRules == "" && len(filterLines) == 0 {
		return nil, fmt.Errorf("no filter given: use --rules and/or --lines")
	}

	f := filter.New()
	if filterRules != "" {
		loaded, err := filter.LoadRules(filterRules)
		if err != nil {
			return nil, err
		}
		f = loaded
	}

	for _, spec := range filterLines {
		// Split on the last colon so paths containing colons still work.
		i := strings.LastIndex(spec, ":")
		if i <= 0 {
			return nil, fmt.Errorf("invalid --lines %q: want file:start[-end]", spec)
		}
		file, lines := spec[:i], spec[i+1:]
		start, end, err := filter.ParseRange(lines)
		if err != nil {
			return nil, fmt.Errorf("invalid --lines %q: %w", spec, err)
		}
		f.Add(file, start, end)
	}
	return f, nil
}

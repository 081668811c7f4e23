package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"covkit/internal/record"
	"covkit/internal/report"
)

// validateCmd checks tracefile syntax and structure
var validateCmd = &cobra.Command{
	Use:   "validate [tracefiles...]",
	Short: "Check tracefiles for syntax and structure errors",
	Long: `Parses each tracefile and reports every record that fails to parse,
then checks the record stream assembles into well-formed sections. Exits
non-zero if any input is invalid.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	bad := 0
	for _, path := range args {
		errs := validateFile(path)
		if len(errs) == 0 {
			fmt.Printf("%s: ok\n", path)
			continue
		}
		bad++
		for _, err := range errs {
			var serr *record.SyntaxError
			if errors.As(err, &serr) {
				fmt.Printf("%s:%d: %v\n", path, serr.Line, serr.Err)
			} else {
				fmt.Printf("%s: %v\n", path, err)
			}
		}
	}

	if bad > 0 {
		return fmt.Errorf("%d of %d tracefiles invalid", bad, len(args))
	}
	return nil
}

// validateFile collects every syntax error in the file (bad lines are
// skipped so one typo does not hide the rest), then checks the surviving
// records assemble into well-formed sections.
func validateFile(path string) []error {
	f, err := os.Open(path)
	if err != nil {
		return []error{err}
	}
	defer f.Close()

	var (
		errs []error
		recs []record.Record
		line int
	)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line++
		rec, err := record.Parse(sc.Text())
		if err != nil {
			errs = append(errs, &record.SyntaxError{Line: line, Err: err})
			continue
		}
		recs = append(recs, rec)
	}
	if err := sc.Err(); err != nil {
		return append(errs, err)
	}

	if len(errs) == 0 {
		if _, err := report.FromRecords(recs); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

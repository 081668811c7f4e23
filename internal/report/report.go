// Package report accumulates coverage information parsed from LCOV
// tracefiles and merges reports from multiple runs.
//
// A Report groups coverage by (test name, source file) section. Summary
// records (FNF/FNH, BRF/BRH, LF/LH) are ignored on input and recomputed
// when the report is written back out, so a merged report always carries
// consistent totals.
package report

import (
	"errors"
	"fmt"
	"io"

	"covkit/internal/record"
)

// Merge errors. Wrapped together with the offending section and entry so
// callers can match with errors.Is.
var (
	// ErrFuncLineMismatch reports two tracefiles that disagree about the
	// start line of the same function.
	ErrFuncLineMismatch = errors.New("unmatched start line of function")
	// ErrChecksumMismatch reports two tracefiles that disagree about the
	// checksum of the same line.
	ErrChecksumMismatch = errors.New("unmatched checksum")
)

// SectionKey identifies a section: coverage of one source file under one
// test name.
type SectionKey struct {
	Test string
	File string
}

// FuncCov is the coverage of a single function. StartLine 0 means unknown:
// a tracefile that only carried an FNDA record, or an explicit FN:0, both
// land here, and such functions re-emit FNDA without an FN record. An
// FN:0 input therefore does not round-trip through a report.
type FuncCov struct {
	StartLine int
	Count     uint64
}

// BranchKey identifies a branch. Block and Branch are gcc-internal IDs.
type BranchKey struct {
	Line   int
	Block  int
	Branch int
}

// BranchCov is the coverage of a single branch. Taken is -1 when the
// branch was never evaluated.
type BranchCov struct {
	Taken int64
}

// LineCov is the coverage of a single instrumented line.
type LineCov struct {
	Count    uint64
	Checksum string
}

// Section holds the coverage of one source file under one test name.
type Section struct {
	Funcs    map[string]FuncCov
	Branches map[BranchKey]BranchCov
	Lines    map[int]LineCov
}

func newSection() *Section {
	return &Section{
		Funcs:    make(map[string]FuncCov),
		Branches: make(map[BranchKey]BranchCov),
		Lines:    make(map[int]LineCov),
	}
}

// Empty reports whether the section carries no coverage data at all.
func (s *Section) Empty() bool {
	return len(s.Funcs) == 0 && len(s.Branches) == 0 && len(s.Lines) == 0
}

func (s *Section) clone() *Section {
	c := newSection()
	for name, fn := range s.Funcs {
		c.Funcs[name] = fn
	}
	for key, br := range s.Branches {
		c.Branches[key] = br
	}
	for line, ln := range s.Lines {
		c.Lines[line] = ln
	}
	return c
}

// Report is accumulated coverage information from one or more tracefiles.
type Report struct {
	Sections map[SectionKey]*Section
}

// New returns an empty report.
func New() *Report {
	return &Report{Sections: make(map[SectionKey]*Section)}
}

// Load reads and parses the tracefile at path.
func Load(path string) (*Report, error) {
	f, err := record.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rep, err := Parse(&f.Reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rep, nil
}

// Read parses a tracefile from r.
func Read(r io.Reader) (*Report, error) {
	return Parse(record.NewReader(r))
}

// Merge merges other into r. Counts are added; function start lines and
// line checksums must agree between the two reports wherever both carry
// them.
func (r *Report) Merge(other *Report) error {
	return r.merge(other, false)
}

// MergeLossy merges other into r like Merge, but resolves start line and
// checksum conflicts by taking the incoming value instead of failing.
func (r *Report) MergeLossy(other *Report) {
	// merge never fails in lossy mode
	_ = r.merge(other, true)
}

func (r *Report) merge(other *Report, lossy bool) error {
	for key, sect := range other.Sections {
		mine, ok := r.Sections[key]
		if !ok {
			// Copy so later merges never mutate other through shared maps.
			r.Sections[key] = sect.clone()
			continue
		}
		if err := mine.merge(sect, lossy); err != nil {
			return fmt.Errorf("%s (test %q): %w", key.File, key.Test, err)
		}
	}
	return nil
}

func (s *Section) merge(other *Section, lossy bool) error {
	for name, fn := range other.Funcs {
		mine, ok := s.Funcs[name]
		if !ok {
			s.Funcs[name] = fn
			continue
		}
		if mine.StartLine != 0 && fn.StartLine != 0 && mine.StartLine != fn.StartLine {
			if !lossy {
				return fmt.Errorf("function %q: %w", name, ErrFuncLineMismatch)
			}
		}
		if fn.StartLine != 0 {
			mine.StartLine = fn.StartLine
		}
		mine.Count = saturatingAdd(mine.Count, fn.Count)
		s.Funcs[name] = mine
	}

	for key, br := range other.Branches {
		mine, ok := s.Branches[key]
		if !ok {
			s.Branches[key] = br
			continue
		}
		if br.Taken >= 0 {
			if mine.Taken < 0 {
				mine.Taken = 0
			}
			mine.Taken += br.Taken
		}
		s.Branches[key] = mine
	}

	for num, ln := range other.Lines {
		mine, ok := s.Lines[num]
		if !ok {
			s.Lines[num] = ln
			continue
		}
		if mine.Checksum != "" && ln.Checksum != "" && mine.Checksum != ln.Checksum {
			if !lossy {
				return fmt.Errorf("line %d: %w", num, ErrChecksumMismatch)
			}
		}
		if ln.Checksum != "" {
			mine.Checksum = ln.Checksum
		}
		mine.Count = saturatingAdd(mine.Count, ln.Count)
		s.Lines[num] = mine
	}

	return nil
}

func saturatingAdd(a, b uint64) uint64 {
	if sum := a + b; sum >= a {
		return sum
	}
	return ^uint64(0)
}

// Package filter restricts a coverage report to chosen line ranges, for
// example the lines touched by a single commit.
package filter

import (
	"sort"

	"covkit/internal/report"
)

// Range is an inclusive range of line numbers.
type Range struct {
	Start int
	End   int
}

func (r Range) valid() bool { return r.Start >= 1 && r.Start <= r.End }

// LineFilter keeps only the coverage entries that fall inside registered
// line ranges. Files with no registered ranges are dropped entirely; an
// empty filter therefore filters out everything.
type LineFilter struct {
	files map[string]*fileRanges
}

// New returns an empty filter.
func New() *LineFilter {
	return &LineFilter{files: make(map[string]*fileRanges)}
}

// Add registers the inclusive range [start, end] for file. Invalid ranges
// (start < 1 or start > end) are ignored; overlapping and adjacent ranges
// coalesce.
func (f *LineFilter) Add(file string, start, end int) {
	r := Range{Start: start, End: end}
	if !r.valid() {
		return
	}
	fr, ok := f.files[file]
	if !ok {
		fr = &fileRanges{}
		f.files[file] = fr
	}
	fr.add(r)
}

// Files returns the paths with registered ranges, sorted.
func (f *LineFilter) Files() []string {
	paths := make([]string, 0, len(f.files))
	for path := range f.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Apply filters rep in place. Sections for files without registered ranges
// are removed, as are sections left empty by the filtering.
func (f *LineFilter) Apply(rep *report.Report) {
	for key, sect := range rep.Sections {
		fr, ok := f.files[key.File]
		if !ok {
			delete(rep.Sections, key)
			continue
		}

		for name, fn := range sect.Funcs {
			if !fr.contains(fn.StartLine) {
				delete(sect.Funcs, name)
			}
		}
		for bkey := range sect.Branches {
			if !fr.contains(bkey.Line) {
				delete(sect.Branches, bkey)
			}
		}
		for line := range sect.Lines {
			if !fr.contains(line) {
				delete(sect.Lines, line)
			}
		}

		if sect.Empty() {
			delete(rep.Sections, key)
		}
	}
}

// fileRanges is a normalized set of disjoint ranges for one file.
type fileRanges struct {
	ranges []Range // sorted by Start, disjoint, non-adjacent
}

func (fr *fileRanges) add(r Range) {
	fr.ranges = append(fr.ranges, r)
	fr.normalize()
}

func (fr *fileRanges) normalize() {
	sort.Slice(fr.ranges, func(i, j int) bool { return fr.ranges[i].Start < fr.ranges[j].Start })

	merged := fr.ranges[:0]
	for _, r := range fr.ranges {
		if n := len(merged); n > 0 && r.Start <= merged[n-1].End+1 {
			if r.End > merged[n-1].End {
				merged[n-1].End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	fr.ranges = merged
}

func (fr *fileRanges) contains(line int) bool {
	// First range starting after line; the candidate is the one before it.
	i := sort.Search(len(fr.ranges), func(i int) bool { return fr.ranges[i].Start > line })
	return i > 0 && fr.ranges[i-1].End >= line
}

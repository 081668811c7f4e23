package report

import (
	"bufio"
	"io"
	"sort"

	"covkit/internal/record"
)

// Records renders the report back into its canonical record stream.
//
// Sections are ordered by test name then file path. Within a section the
// order is FN (by start line, then name), FNDA (same order), FNF/FNH,
// BRDA (by line, block, branch), BRF/BRH, DA (by line), LF/LH. Summary
// counts are recomputed; families with no entries emit no records, and
// functions with an unknown start line emit FNDA but no FN.
func (r *Report) Records() []record.Record {
	keys := make([]SectionKey, 0, len(r.Sections))
	for key := range r.Sections {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Test != keys[j].Test {
			return keys[i].Test < keys[j].Test
		}
		return keys[i].File < keys[j].File
	})

	var recs []record.Record
	for _, key := range keys {
		recs = append(recs, record.TestName{Name: key.Test})
		recs = append(recs, record.SourceFile{Path: key.File})
		recs = r.Sections[key].appendRecords(recs)
		recs = append(recs, record.EndOfRecord{})
	}
	return recs
}

// WriteTo writes the canonical record stream as tracefile text.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, rec := range r.Records() {
		written, err := bw.WriteString(rec.String())
		n += int64(written)
		if err != nil {
			return n, err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return n, err
		}
		n++
	}
	return n, bw.Flush()
}

func (s *Section) appendRecords(recs []record.Record) []record.Record {
	recs = s.appendFuncRecords(recs)
	recs = s.appendBranchRecords(recs)
	recs = s.appendLineRecords(recs)
	return recs
}

func (s *Section) appendFuncRecords(recs []record.Record) []record.Record {
	if len(s.Funcs) == 0 {
		return recs
	}

	type fn struct {
		name string
		cov  FuncCov
	}
	funcs := make([]fn, 0, len(s.Funcs))
	for name, cov := range s.Funcs {
		funcs = append(funcs, fn{name, cov})
	}
	sort.Slice(funcs, func(i, j int) bool {
		if funcs[i].cov.StartLine != funcs[j].cov.StartLine {
			return funcs[i].cov.StartLine < funcs[j].cov.StartLine
		}
		return funcs[i].name < funcs[j].name
	})

	for _, f := range funcs {
		if f.cov.StartLine > 0 {
			recs = append(recs, record.FuncName{Name: f.name, StartLine: f.cov.StartLine})
		}
	}
	hit := 0
	for _, f := range funcs {
		recs = append(recs, record.FuncData{Name: f.name, Count: f.cov.Count})
		if f.cov.Count > 0 {
			hit++
		}
	}
	recs = append(recs, record.FuncsFound{Found: len(funcs)})
	recs = append(recs, record.FuncsHit{Hit: hit})
	return recs
}

func (s *Section) appendBranchRecords(recs []record.Record) []record.Record {
	if len(s.Branches) == 0 {
		return recs
	}

	keys := make([]BranchKey, 0, len(s.Branches))
	for key := range s.Branches {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Block != b.Block {
			return a.Block < b.Block
		}
		return a.Branch < b.Branch
	})

	hit := 0
	for _, key := range keys {
		cov := s.Branches[key]
		recs = append(recs, record.BranchData{
			Line:   key.Line,
			Block:  key.Block,
			Branch: key.Branch,
			Taken:  cov.Taken,
		})
		if cov.Taken > 0 {
			hit++
		}
	}
	recs = append(recs, record.BranchesFound{Found: len(keys)})
	recs = append(recs, record.BranchesHit{Hit: hit})
	return recs
}

func (s *Section) appendLineRecords(recs []record.Record) []record.Record {
	if len(s.Lines) == 0 {
		return recs
	}

	lines := make([]int, 0, len(s.Lines))
	for line := range s.Lines {
		lines = append(lines, line)
	}
	sort.Ints(lines)

	hit := 0
	for _, line := range lines {
		cov := s.Lines[line]
		recs = append(recs, record.LineData{Line: line, Count: cov.Count, Checksum: cov.Checksum})
		if cov.Count > 0 {
			hit++
		}
	}
	recs = append(recs, record.LinesFound{Found: len(lines)})
	recs = append(recs, record.LinesHit{Hit: hit})
	return recs
}

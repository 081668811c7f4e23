package report

import (
	"errors"
	"fmt"

	"covkit/internal/record"
)

// Structural errors raised while assembling sections from a record stream.
var (
	// ErrUnexpectedEOF reports a tracefile that ends inside a section,
	// before its end_of_record.
	ErrUnexpectedEOF = errors.New("unexpected end of file")
	// ErrUnexpectedRecord reports a record that is not valid at its
	// position in the stream (a TN in the middle of a section).
	ErrUnexpectedRecord = errors.New("unexpected record")
)

// source abstracts where records come from so the same assembly loop
// serves streaming readers and in-memory slices.
type source interface {
	next() (record.Record, bool, error)
}

type readerSource struct{ r *record.Reader }

func (s readerSource) next() (record.Record, bool, error) {
	if !s.r.Scan() {
		return nil, false, s.r.Err()
	}
	return s.r.Record(), true, nil
}

type sliceSource struct{ recs []record.Record }

func (s *sliceSource) next() (record.Record, bool, error) {
	if len(s.recs) == 0 {
		return nil, false, nil
	}
	rec := s.recs[0]
	s.recs = s.recs[1:]
	return rec, true, nil
}

// Parse assembles a report from a record stream.
//
// lcov is sloppy about TN records: it sometimes emits several in a row and
// sometimes emits stray ones at the end of the tracefile. Repeated leading
// TN records collapse to the last, and trailing ones are dropped. Sections
// that carry no data are dropped, matching `lcov -c -a` behavior.
func Parse(r *record.Reader) (*Report, error) {
	return assemble(readerSource{r})
}

// FromRecords assembles a report from already-parsed records.
func FromRecords(recs []record.Record) (*Report, error) {
	return assemble(&sliceSource{recs})
}

func assemble(src source) (*Report, error) {
	rep := New()

	rec, ok, err := src.next()
	if err != nil {
		return nil, err
	}

	for ok {
		var test string
		for {
			tn, isTN := rec.(record.TestName)
			if !isTN {
				break
			}
			test = tn.Name
			if rec, ok, err = src.next(); err != nil {
				return nil, err
			} else if !ok {
				return rep, nil
			}
		}

		var file string
		sect := newSection()

	section:
		for {
			switch v := rec.(type) {
			case record.TestName:
				return nil, fmt.Errorf("%w %s, expected %s",
					ErrUnexpectedRecord, v.Kind(), record.KindEndOfRecord)
			case record.SourceFile:
				file = v.Path
			case record.FuncName:
				sect.Funcs[v.Name] = FuncCov{StartLine: v.StartLine}
			case record.FuncData:
				fn := sect.Funcs[v.Name]
				fn.Count += v.Count
				sect.Funcs[v.Name] = fn
			case record.BranchData:
				sect.Branches[BranchKey{Line: v.Line, Block: v.Block, Branch: v.Branch}] =
					BranchCov{Taken: v.Taken}
			case record.LineData:
				sect.Lines[v.Line] = LineCov{Count: v.Count, Checksum: v.Checksum}
			case record.FuncsFound, record.FuncsHit,
				record.BranchesFound, record.BranchesHit,
				record.LinesFound, record.LinesHit:
				// Summary records are recomputed on output.
			case record.EndOfRecord:
				break section
			}

			if rec, ok, err = src.next(); err != nil {
				return nil, err
			} else if !ok {
				return nil, ErrUnexpectedEOF
			}
		}

		if !sect.Empty() {
			rep.Sections[SectionKey{Test: test, File: file}] = sect
		}

		if rec, ok, err = src.next(); err != nil {
			return nil, err
		}
	}

	return rep, nil
}

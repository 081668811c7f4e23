package record

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// SyntaxError reports a record that failed to parse, with its 1-based line
// number in the input.
type SyntaxError struct {
	Line int
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid record syntax at line %d: %v", e.Line, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Reader reads LCOV records from a tracefile, one per line.
//
// The interface follows bufio.Scanner: Scan advances to the next record,
// Record returns it, and Err reports the first error encountered.
type Reader struct {
	sc   *bufio.Scanner
	line int
	rec  Record
	err  error
}

// NewReader returns a Reader consuming LCOV records from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{sc: bufio.NewScanner(r)}
}

// Scan advances to the next record. It returns false at end of input or on
// the first error; Err distinguishes the two.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	if !r.sc.Scan() {
		r.err = r.sc.Err()
		return false
	}
	r.line++
	rec, err := Parse(r.sc.Text())
	if err != nil {
		r.err = &SyntaxError{Line: r.line, Err: err}
		return false
	}
	r.rec = rec
	return true
}

// Record returns the record read by the last successful call to Scan.
func (r *Reader) Record() Record { return r.rec }

// Err returns the first error encountered, or nil on clean end of input.
func (r *Reader) Err() error { return r.err }

// Line returns the 1-based number of the last line read.
func (r *Reader) Line() int { return r.line }

// ReadAll parses every record in r.
func ReadAll(r io.Reader) ([]Record, error) {
	rr := NewReader(r)
	var recs []Record
	for rr.Scan() {
		recs = append(recs, rr.Record())
	}
	return recs, rr.Err()
}

// File is a Reader over an opened tracefile. Close it when done.
type File struct {
	Reader
	f *os.File
}

// Open opens the tracefile at path for reading.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tracefile: %w", err)
	}
	return &File{Reader: Reader{sc: bufio.NewScanner(f)}, f: f}, nil
}

// Close closes the underlying file.
func (f *File) Close() error { return f.f.Close() }

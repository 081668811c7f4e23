// Package record implements the LCOV tracefile record model: the thirteen
// record kinds emitted by lcov/geninfo, parsing of single records, and a
// streaming tracefile reader. Records round-trip: Parse followed by String
// reproduces the input line exactly.
package record

import (
	"fmt"
	"strconv"
)

// Kind identifies an LCOV record kind.
type Kind int

const (
	KindTestName Kind = iota // TN
	KindSourceFile           // SF
	KindFuncName             // FN
	KindFuncData             // FNDA
	KindFuncsFound           // FNF
	KindFuncsHit             // FNH
	KindBranchData           // BRDA
	KindBranchesFound        // BRF
	KindBranchesHit          // BRH
	KindLineData             // DA
	KindLinesFound           // LF
	KindLinesHit             // LH
	KindEndOfRecord          // end_of_record
)

var kindNames = map[Kind]string{
	KindTestName:      "TN",
	KindSourceFile:    "SF",
	KindFuncName:      "FN",
	KindFuncData:      "FNDA",
	KindFuncsFound:    "FNF",
	KindFuncsHit:      "FNH",
	KindBranchData:    "BRDA",
	KindBranchesFound: "BRF",
	KindBranchesHit:   "BRH",
	KindLineData:      "DA",
	KindLinesFound:    "LF",
	KindLinesHit:      "LH",
	KindEndOfRecord:   "end_of_record",
}

// String returns the wire name of the kind (e.g. "FNDA").
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a wire name back to its Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Record is a single LCOV tracefile record.
type Record interface {
	// Kind reports which record kind this is.
	Kind() Kind
	// String renders the record in LCOV wire format.
	String() string
}

// TestName is a TN record naming the test a section belongs to.
type TestName struct {
	Name string
}

// SourceFile is an SF record naming the source file a section covers.
type SourceFile struct {
	Path string
}

// FuncName is an FN record declaring a function and its start line.
type FuncName struct {
	Name      string
	StartLine int
}

// FuncData is an FNDA record carrying a function execution count.
type FuncData struct {
	Name  string
	Count uint64
}

// FuncsFound is an FNF summary record.
type FuncsFound struct {
	Found int
}

// FuncsHit is an FNH summary record.
type FuncsHit struct {
	Hit int
}

// BranchData is a BRDA record. Block and Branch are gcc-internal branch IDs.
// Taken is -1 when the branch was never evaluated (rendered as "-").
type BranchData struct {
	Line   int
	Block  int
	Branch int
	Taken  int64
}

// BranchesFound is a BRF summary record.
type BranchesFound struct {
	Found int
}

// BranchesHit is a BRH summary record.
type BranchesHit struct {
	Hit int
}

// LineData is a DA record carrying a line execution count. Checksum is
// empty when the tracefile carries no per-line checksums.
type LineData struct {
	Line     int
	Count    uint64
	Checksum string
}

// LinesFound is an LF summary record.
type LinesFound struct {
	Found int
}

// LinesHit is an LH summary record.
type LinesHit struct {
	Hit int
}

// EndOfRecord is the end_of_record section terminator.
type EndOfRecord struct{}

func (TestName) Kind() Kind      { return KindTestName }
func (SourceFile) Kind() Kind    { return KindSourceFile }
func (FuncName) Kind() Kind      { return KindFuncName }
func (FuncData) Kind() Kind      { return KindFuncData }
func (FuncsFound) Kind() Kind    { return KindFuncsFound }
func (FuncsHit) Kind() Kind      { return KindFuncsHit }
func (BranchData) Kind() Kind    { return KindBranchData }
func (BranchesFound) Kind() Kind { return KindBranchesFound }
func (BranchesHit) Kind() Kind   { return KindBranchesHit }
func (LineData) Kind() Kind      { return KindLineData }
func (LinesFound) Kind() Kind    { return KindLinesFound }
func (LinesHit) Kind() Kind      { return KindLinesHit }
func (EndOfRecord) Kind() Kind   { return KindEndOfRecord }

func (r TestName) String() string   { return "TN:" + r.Name }
func (r SourceFile) String() string { return "SF:" + r.Path }

func (r FuncName) String() string {
	return "FN:" + strconv.Itoa(r.StartLine) + "," + r.Name
}

func (r FuncData) String() string {
	return "FNDA:" + strconv.FormatUint(r.Count, 10) + "," + r.Name
}

func (r FuncsFound) String() string    { return "FNF:" + strconv.Itoa(r.Found) }
func (r FuncsHit) String() string      { return "FNH:" + strconv.Itoa(r.Hit) }
func (r BranchesFound) String() string { return "BRF:" + strconv.Itoa(r.Found) }
func (r BranchesHit) String() string   { return "BRH:" + strconv.Itoa(r.Hit) }
func (r LinesFound) String() string    { return "LF:" + strconv.Itoa(r.Found) }
func (r LinesHit) String() string      { return "LH:" + strconv.Itoa(r.Hit) }

func (r BranchData) String() string {
	taken := "-"
	if r.Taken >= 0 {
		taken = strconv.FormatInt(r.Taken, 10)
	}
	return fmt.Sprintf("BRDA:%d,%d,%d,%s", r.Line, r.Block, r.Branch, taken)
}

func (r LineData) String() string {
	if r.Checksum == "" {
		return fmt.Sprintf("DA:%d,%d", r.Line, r.Count)
	}
	return fmt.Sprintf("DA:%d,%d,%s", r.Line, r.Count, r.Checksum)
}

func (EndOfRecord) String() string { return "end_of_record" }

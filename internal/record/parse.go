package record

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Parse errors. Field-level failures wrap one of these sentinels together
// with the field name, so callers can match with errors.Is.
var (
	// ErrUnknownRecord reports a line whose kind prefix is not an LCOV record.
	ErrUnknownRecord = errors.New("unknown record")
	// ErrMissingField reports a record body with fewer fields than the kind requires.
	ErrMissingField = errors.New("field not found")
	// ErrTooManyFields reports a record body with more fields than the kind allows.
	ErrTooManyFields = errors.New("too many fields")
)

// Parse parses a single LCOV record line. Trailing CR/LF is tolerated.
func Parse(line string) (Record, error) {
	line = strings.TrimRight(line, "\r\n")

	name, body, _ := strings.Cut(line, ":")
	kind, ok := ParseKind(name)
	if !ok {
		return nil, ErrUnknownRecord
	}

	switch kind {
	case KindTestName:
		return TestName{Name: body}, nil
	case KindSourceFile:
		return SourceFile{Path: body}, nil
	case KindFuncName:
		return parseFuncName(body)
	case KindFuncData:
		return parseFuncData(body)
	case KindFuncsFound:
		found, err := parseSingleInt(body, "found")
		return FuncsFound{Found: found}, err
	case KindFuncsHit:
		hit, err := parseSingleInt(body, "hit")
		return FuncsHit{Hit: hit}, err
	case KindBranchData:
		return parseBranchData(body)
	case KindBranchesFound:
		found, err := parseSingleInt(body, "found")
		return BranchesFound{Found: found}, err
	case KindBranchesHit:
		hit, err := parseSingleInt(body, "hit")
		return BranchesHit{Hit: hit}, err
	case KindLineData:
		return parseLineData(body)
	case KindLinesFound:
		found, err := parseSingleInt(body, "found")
		return LinesFound{Found: found}, err
	case KindLinesHit:
		hit, err := parseSingleInt(body, "hit")
		return LinesHit{Hit: hit}, err
	default:
		return EndOfRecord{}, nil
	}
}

func missingField(name string) error {
	return fmt.Errorf("%w: %q", ErrMissingField, name)
}

func parseInt(s, field string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid value of field %q: %w", field, err)
	}
	return n, nil
}

func parseCount(s, field string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value of field %q: %w", field, err)
	}
	return n, nil
}

// parseSingleInt handles the six one-field summary kinds (FNF, FNH, BRF,
// BRH, LF, LH).
func parseSingleInt(body, field string) (int, error) {
	if strings.Contains(body, ",") {
		return 0, ErrTooManyFields
	}
	return parseInt(body, field)
}

// FN:<start_line>,<name>. The name is the last field and may contain commas.
func parseFuncName(body string) (Record, error) {
	num, name, ok := strings.Cut(body, ",")
	if !ok {
		return nil, missingField("name")
	}
	startLine, err := parseInt(num, "start_line")
	if err != nil {
		return nil, err
	}
	return FuncName{Name: name, StartLine: startLine}, nil
}

// FNDA:<count>,<name>. The name is the last field and may contain commas.
func parseFuncData(body string) (Record, error) {
	num, name, ok := strings.Cut(body, ",")
	if !ok {
		return nil, missingField("name")
	}
	count, err := parseCount(num, "count")
	if err != nil {
		return nil, err
	}
	return FuncData{Name: name, Count: count}, nil
}

// BRDA:<line>,<block>,<branch>,<taken>. Taken is "-" when the branch was
// never evaluated.
func parseBranchData(body string) (Record, error) {
	fields := strings.SplitN(body, ",", 4)
	names := [4]string{"line", "block", "branch", "taken"}
	if len(fields) < 4 {
		return nil, missingField(names[len(fields)])
	}

	var nums [3]int
	for i := 0; i < 3; i++ {
		n, err := parseInt(fields[i], names[i])
		if err != nil {
			return nil, err
		}
		nums[i] = n
	}

	taken := int64(-1)
	if fields[3] != "-" {
		// Bit size 63 keeps the count in int64 range; -1 stays reserved
		// for never-evaluated branches.
		n, err := strconv.ParseUint(fields[3], 10, 63)
		if err != nil {
			return nil, fmt.Errorf("invalid value of field %q: %w", "taken", err)
		}
		taken = int64(n)
	}
	return BranchData{Line: nums[0], Block: nums[1], Branch: nums[2], Taken: taken}, nil
}

// DA:<line>,<count>[,<checksum>]. The checksum is optional and swallows
// the rest of the body.
func parseLineData(body string) (Record, error) {
	fields := strings.SplitN(body, ",", 3)
	if len(fields) < 2 {
		return nil, missingField("count")
	}
	line, err := parseInt(fields[0], "line")
	if err != nil {
		return nil, err
	}
	count, err := parseCount(fields[1], "count")
	if err != nil {
		return nil, err
	}
	rec := LineData{Line: line, Count: count}
	if len(fields) == 3 {
		rec.Checksum = fields[2]
	}
	return rec, nil
}

package record

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		line string
		want Record
	}{
		{"TN:test_name", TestName{Name: "test_name"}},
		{"TN:", TestName{}},
		{"SF:/usr/include/stdio.h", SourceFile{Path: "/usr/include/stdio.h"}},
		{"FN:10,main", FuncName{Name: "main", StartLine: 10}},
		{"FN:12,operator,,", FuncName{Name: "operator,,", StartLine: 12}},
		{"FNDA:1,main", FuncData{Name: "main", Count: 1}},
		{"FNF:10", FuncsFound{Found: 10}},
		{"FNH:7", FuncsHit{Hit: 7}},
		{"BRDA:10,30,40,-", BranchData{Line: 10, Block: 30, Branch: 40, Taken: -1}},
		{"BRDA:10,30,40,3", BranchData{Line: 10, Block: 30, Branch: 40, Taken: 3}},
		{"BRF:40", BranchesFound{Found: 40}},
		{"BRH:20", BranchesHit{Hit: 20}},
		{"DA:8,30", LineData{Line: 8, Count: 30}},
		{"DA:8,30,asdfasdf", LineData{Line: 8, Count: 30, Checksum: "asdfasdf"}},
		{"LF:123", LinesFound{Found: 123}},
		{"LH:45", LinesHit{Hit: 45}},
		{"end_of_record", EndOfRecord{}},
	}

	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			got, err := Parse(tc.line)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_TrailingNewline(t *testing.T) {
	got, err := Parse("LH:45\r\n")
	require.NoError(t, err)
	assert.Equal(t, LinesHit{Hit: 45}, got)
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		line string
		want error
	}{
		{"FOO:1,2", ErrUnknownRecord},
		{"FNDA:3", ErrMissingField},
		{"FN:10", ErrMissingField},
		{"BRDA:10,30", ErrMissingField},
		{"DA:8", ErrMissingField},
		{"LF:1,2", ErrTooManyFields},
	}

	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			_, err := Parse(tc.line)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// Integer field failures wrap the strconv error.
	_, err := Parse("LH:foo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "hit"`)
}

func TestParse_BranchTakenOverflow(t *testing.T) {
	// 2^63 does not fit a taken count; it must error rather than wrap
	// negative and re-render as never evaluated.
	_, err := Parse("BRDA:1,0,0,9223372036854775808")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "taken"`)

	rec, err := Parse("BRDA:1,0,0,9223372036854775807")
	require.NoError(t, err)
	assert.Equal(t, BranchData{Line: 1, Taken: 9223372036854775807}, rec)
}

func TestRoundTrip(t *testing.T) {
	lines := []string{
		"TN:test_name",
		"SF:/path/to/source/file.go",
		"FN:3,fizzbuzz",
		"FNDA:16,fizzbuzz",
		"FNF:1",
		"FNH:1",
		"BRDA:4,0,0,3",
		"BRDA:4,0,1,-",
		"BRF:2",
		"BRH:1",
		"DA:5,30",
		"DA:6,0,c2Vjb25k",
		"LF:2",
		"LH:1",
		"end_of_record",
	}

	for _, line := range lines {
		rec, err := Parse(line)
		require.NoError(t, err, line)
		assert.Equal(t, line, rec.String())
	}
}

func TestKind_Names(t *testing.T) {
	for k, name := range kindNames {
		assert.Equal(t, name, k.String())
		parsed, ok := ParseKind(name)
		require.True(t, ok, name)
		assert.Equal(t, k, parsed)
	}
	_, ok := ParseKind("XYZ")
	assert.False(t, ok)
}

func TestReader(t *testing.T) {
	input := "TN:test_name\n" +
		"SF:/path/to/source/file.go\n" +
		"DA:1,2\n" +
		"DA:3,0\n" +
		"DA:5,6\n" +
		"LF:3\n" +
		"LH:2\n" +
		"end_of_record\n"

	recs, err := ReadAll(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, recs, 8)
	assert.Equal(t, TestName{Name: "test_name"}, recs[0])
	assert.Equal(t, EndOfRecord{}, recs[7])
}

func TestReader_SyntaxError(t *testing.T) {
	input := "TN:test_name\nFOO:1,2\n"

	r := NewReader(strings.NewReader(input))
	require.True(t, r.Scan())
	require.False(t, r.Scan())

	var serr *SyntaxError
	require.ErrorAs(t, r.Err(), &serr)
	assert.Equal(t, 2, serr.Line)
	assert.ErrorIs(t, serr, ErrUnknownRecord)
}

func TestReader_StopsAfterError(t *testing.T) {
	r := NewReader(strings.NewReader("FOO:1\nTN:ok\n"))
	assert.False(t, r.Scan())
	assert.False(t, r.Scan())
	assert.Error(t, r.Err())
}

package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"covkit/internal/record"
)

func loadFixture(t *testing.T, name string) *Report {
	t.Helper()
	rep, err := Load(filepath.Join("testdata", name))
	require.NoError(t, err, name)
	return rep
}

func TestLoad_Fixture(t *testing.T) {
	rep := loadFixture(t, "fizzbuzz.info")
	require.Len(t, rep.Sections, 2)

	sect, ok := rep.Sections[SectionKey{Test: "", File: "testprog/fizzbuzz/classify.go"}]
	require.True(t, ok)

	assert.Equal(t, FuncCov{StartLine: 7, Count: 15}, sect.Funcs["Classify"])
	assert.Equal(t, BranchCov{Taken: 14}, sect.Branches[BranchKey{Line: 8, Block: 0, Branch: 1}])
	assert.Equal(t, LineCov{Count: 8}, sect.Lines[17])
	assert.Len(t, sect.Lines, 8)
	assert.Len(t, sect.Branches, 6)
}

// Fixture files are written in canonical order, so parse followed by
// write must reproduce them byte for byte.
func TestWriteTo_CanonicalFixtures(t *testing.T) {
	entries, err := filepath.Glob(filepath.Join("testdata", "*.info"))
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, path := range entries {
		t.Run(filepath.Base(path), func(t *testing.T) {
			want, err := os.ReadFile(path)
			require.NoError(t, err)

			rep, err := Load(path)
			require.NoError(t, err)

			var buf bytes.Buffer
			_, err = rep.WriteTo(&buf)
			require.NoError(t, err)
			assert.Equal(t, string(want), buf.String())
		})
	}
}

func TestRead_RoundTrip(t *testing.T) {
	rep := loadFixture(t, "addsub_run1.info")

	var buf bytes.Buffer
	_, err := rep.WriteTo(&buf)
	require.NoError(t, err)

	again, err := Read(&buf)
	require.NoError(t, err)

	if diff := cmp.Diff(rep, again); diff != "" {
		t.Errorf("report changed across write/read (-want +got):\n%s", diff)
	}
}

func TestParse_CollapsesRepeatedTestNames(t *testing.T) {
	input := "TN:first\nTN:second\nSF:foo.go\nDA:1,1\nend_of_record\n"

	rep, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rep.Sections, 1)
	_, ok := rep.Sections[SectionKey{Test: "second", File: "foo.go"}]
	assert.True(t, ok)
}

func TestParse_IgnoresTrailingTestName(t *testing.T) {
	input := "TN:t\nSF:foo.go\nDA:1,1\nend_of_record\nTN:stray\n"

	rep, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, rep.Sections, 1)
}

func TestParse_DropsEmptySection(t *testing.T) {
	input := "TN:t\nSF:empty.go\nend_of_record\n" +
		"TN:t\nSF:full.go\nDA:1,1\nend_of_record\n"

	rep, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rep.Sections, 1)
	_, ok := rep.Sections[SectionKey{Test: "t", File: "full.go"}]
	assert.True(t, ok)
}

func TestParse_RecomputesSummaries(t *testing.T) {
	// Input carries wrong LF/LH; the report must not trust them.
	input := "TN:t\nSF:foo.go\nDA:1,1\nDA:2,0\nLF:99\nLH:99\nend_of_record\n"

	rep, err := Read(strings.NewReader(input))
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = rep.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "LF:2\n")
	assert.Contains(t, buf.String(), "LH:1\n")
}

func TestParse_FuncDataWithoutFuncName(t *testing.T) {
	input := "TN:t\nSF:foo.go\nFNDA:3,orphan\nend_of_record\n"

	rep, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	sect := rep.Sections[SectionKey{Test: "t", File: "foo.go"}]
	require.NotNil(t, sect)
	assert.Equal(t, FuncCov{StartLine: 0, Count: 3}, sect.Funcs["orphan"])

	// A function without a known start line emits FNDA but no FN.
	var buf bytes.Buffer
	_, err = rep.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "FNDA:3,orphan\n")
	assert.NotContains(t, buf.String(), "FN:")
}

func TestParse_FuncNameLineZero(t *testing.T) {
	// An explicit FN:0 collapses to "start line unknown" and re-emits as
	// FNDA only.
	input := "TN:t\nSF:foo.go\nFN:0,f\nFNDA:2,f\nend_of_record\n"

	rep, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	sect := rep.Sections[SectionKey{Test: "t", File: "foo.go"}]
	require.NotNil(t, sect)
	assert.Equal(t, FuncCov{StartLine: 0, Count: 2}, sect.Funcs["f"])

	var buf bytes.Buffer
	_, err = rep.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "FNDA:2,f\n")
	assert.NotContains(t, buf.String(), "FN:0")
}

func TestParse_TestNameInsideSection(t *testing.T) {
	input := "TN:t\nSF:foo.go\nTN:again\n"

	_, err := Read(strings.NewReader(input))
	assert.ErrorIs(t, err, ErrUnexpectedRecord)
}

func TestParse_UnexpectedEOF(t *testing.T) {
	input := "TN:t\nSF:foo.go\nDA:1,1\n"

	_, err := Read(strings.NewReader(input))
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestParse_PropagatesSyntaxError(t *testing.T) {
	input := "TN:t\nSF:foo.go\nDA:nonsense\n"

	_, err := Read(strings.NewReader(input))
	var serr *record.SyntaxError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 3, serr.Line)
}

func TestFromRecords(t *testing.T) {
	rep, err := FromRecords([]record.Record{
		record.TestName{Name: "t"},
		record.SourceFile{Path: "foo.go"},
		record.LineData{Line: 1, Count: 2},
		record.EndOfRecord{},
	})
	require.NoError(t, err)
	sect := rep.Sections[SectionKey{Test: "t", File: "foo.go"}]
	require.NotNil(t, sect)
	assert.Equal(t, LineCov{Count: 2}, sect.Lines[1])
}

package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadFile_WellFormedRowsUnchanged(t *testing.T) {
	path := writeTemp(t, "project.csv",
		"id;acronym;objective\n"+
			"1;ALPHA;study things\n"+
			"2;BETA;measure stuff\n")

	tbl, bad, err := ReadFile(path, Options{Delimiter: ';', RepairColumn: "objective"})
	require.NoError(t, err)
	assert.Empty(t, bad)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "study things", tbl.Get(0, "objective"))
	assert.Equal(t, "BETA", tbl.Get(1, "acronym"))
}

func TestReadFile_WellFormedCellsKeepPaddingAndQuotes(t *testing.T) {
	// a row that already matches the header width passes through byte for byte
	path := writeTemp(t, "project.csv",
		"id;title;objective\n"+
			`1;  padded title  ;"still quoted"`+"\n")

	tbl, bad, err := ReadFile(path, Options{Delimiter: ';', RepairColumn: "objective"})
	require.NoError(t, err)
	assert.Empty(t, bad)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "  padded title  ", tbl.Get(0, "title"))
	assert.Equal(t, `"still quoted"`, tbl.Get(0, "objective"))
}

func TestReadFile_MergesEmbeddedDelimiters(t *testing.T) {
	// row 2's objective was split into 3 pieces by embedded semicolons; the
	// repaired cell must equal the original text with the delimiters restored
	path := writeTemp(t, "project.csv",
		"id;acronym;objective;rcn\n"+
			"1;ALPHA;fine;100\n"+
			"2;BETA;first part; second part; third part;200\n"+
			"3;GAMMA;also fine;300\n")

	tbl, bad, err := ReadFile(path, Options{Delimiter: ';', RepairColumn: "objective"})
	require.NoError(t, err)
	assert.Empty(t, bad)
	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, "first part; second part; third part", tbl.Get(1, "objective"))
	assert.Equal(t, "200", tbl.Get(1, "rcn"))
}

func TestReadFile_RepairPreservesInteriorQuotes(t *testing.T) {
	path := writeTemp(t, "project.csv",
		"id;acronym;objective;rcn\n"+
			`2;BETA;Goals: one; two; and a "quoted" bit;200`+"\n")

	tbl, bad, err := ReadFile(path, Options{Delimiter: ';', RepairColumn: "objective"})
	require.NoError(t, err)
	assert.Empty(t, bad)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, `Goals: one; two; and a "quoted" bit`, tbl.Get(0, "objective"))
}

func TestReadFile_ShortRowsPadded(t *testing.T) {
	path := writeTemp(t, "topics.csv",
		"projectID;topic;title\n"+
			"1;HORIZON-X\n")

	tbl, bad, err := ReadFile(path, Options{Delimiter: ';'})
	require.NoError(t, err)
	assert.Empty(t, bad)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "", tbl.Get(0, "title"))
}

func TestReadFile_IrreparableRowReported(t *testing.T) {
	// no repair column configured, so the long row cannot be fixed
	path := writeTemp(t, "x.csv",
		"a;b\n"+
			"1;2;3\n"+
			"4;5\n")

	tbl, bad, err := ReadFile(path, Options{Delimiter: ';'})
	require.NoError(t, err)
	require.Len(t, bad, 1)
	assert.Equal(t, 2, bad[0].Line)
	assert.Equal(t, 1, tbl.Len())
}

func TestReadFile_EmptyFileFails(t *testing.T) {
	path := writeTemp(t, "empty.csv", "")
	_, _, err := ReadFile(path, Options{Delimiter: ';'})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header")
}

func TestReadFile_QuotedRepairColumnHeaderMatched(t *testing.T) {
	// quoted or padded header cells must still resolve the repair column
	path := writeTemp(t, "q.csv",
		`id;"objective";rcn`+"\n"+
			"1;part a; part b;100\n")

	tbl, bad, err := ReadFile(path, Options{Delimiter: ';', RepairColumn: "objective"})
	require.NoError(t, err)
	assert.Empty(t, bad)
	assert.Equal(t, "part a; part b", tbl.Get(0, `"objective"`))
}

func TestMergeAt_Convergence(t *testing.T) {
	// N+2 fields caused by 2 embedded delimiters in column 1
	fields := []string{"id", "a", "b", "c", "tail"}
	got := mergeAt(fields, 3, 1, ";")
	assert.Equal(t, []string{"id", "a;b;c", "tail"}, got)
}

func TestMergeAt_Idempotent(t *testing.T) {
	fields := []string{"id", "obj", "tail"}
	got := mergeAt(append([]string(nil), fields...), 3, 1, ";")
	assert.Equal(t, fields, got)
}

func TestSniffDelimiter(t *testing.T) {
	semi := writeTemp(t, "semi.csv", "a;b;c\n1;2;3\n4;5;6\n")
	d, err := SniffDelimiter(semi)
	require.NoError(t, err)
	assert.Equal(t, ';', d)

	comma := writeTemp(t, "comma.csv", "a,b,c\n1,2,3\n")
	d, err = SniffDelimiter(comma)
	require.NoError(t, err)
	assert.Equal(t, ',', d)

	tab := writeTemp(t, "tab.csv", "a\tb\n1\t2\n")
	d, err = SniffDelimiter(tab)
	require.NoError(t, err)
	assert.Equal(t, '\t', d)
}

func TestSniffDelimiter_NoCandidate(t *testing.T) {
	plain := writeTemp(t, "plain.txt", "just some words\nmore words\n")
	_, err := SniffDelimiter(plain)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no consistent delimiter"))
}

func TestSniffDelimiter_PartialLastLineIgnored(t *testing.T) {
	// long trailing line without newline gets cut by the sample window;
	// the sniffer must not let the truncated fragment skew the vote
	var b strings.Builder
	b.WriteString("a;b;c\n")
	for i := 0; i < 40; i++ {
		b.WriteString("1;2;3\n")
	}
	b.WriteString("9;9;" + strings.Repeat("x", 4096))
	path := writeTemp(t, "cut.csv", b.String())
	d, err := SniffDelimiter(path)
	require.NoError(t, err)
	assert.Equal(t, ';', d)
}

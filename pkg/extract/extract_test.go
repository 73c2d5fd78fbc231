package extract

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsIrregular(t *testing.T) {
	tests := []struct {
		name string
		cols []string
		want bool
	}{
		{
			name: "boundary inclusive: 2 of 4 unnamed",
			cols: []string{"id", "Unnamed: 0", "Unnamed: 1", "total"},
			want: true,
		},
		{
			name: "below boundary: 2 of 5 unnamed",
			cols: []string{"id", "Unnamed: 0", "Unnamed: 1", "total", "date"},
			want: false,
		},
		{
			name: "2 of 3 unnamed",
			cols: []string{"id", "Unnamed: 0", "Unnamed: 1"},
			want: true,
		},
		{
			name: "all named",
			cols: []string{"id", "name"},
			want: false,
		},
		{
			name: "no columns",
			cols: nil,
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsIrregular(tt.cols))
		})
	}
}

func TestExtract_SampleBudget(t *testing.T) {
	// Values of 300 chars each: only 3 fit under the 1000-char budget.
	long := strings.Repeat("x", 300)
	rows := make([][]string, 10)
	for i := range rows {
		rows[i] = []string{long + string(rune('a'+i))}
	}

	schema := Extract(Table{Columns: []string{"blob"}, Rows: rows}, "t")
	require.Len(t, schema.Columns, 1)

	samples := schema.Columns[0].Samples
	total := 0
	for _, s := range samples {
		total += len(s)
	}
	assert.LessOrEqual(t, total, 1000)
	assert.Equal(t, 3, len(samples), "3x301 chars fit, a 4th would exceed 1000")
}

func TestExtract_SamplesArePrefixOfShuffledCandidates(t *testing.T) {
	rows := [][]string{
		{"a"}, {"b"}, {"c"}, {"a"}, {"d"}, {"e"}, {"f"}, {"g"}, {"b"},
	}
	schema := Extract(Table{Columns: []string{"v"}, Rows: rows}, "t")
	samples := schema.Columns[0].Samples

	// The candidate order is deterministic, so the samples must equal the
	// prefix of a second extraction's shuffled candidates.
	again := Extract(Table{Columns: []string{"v"}, Rows: rows}, "t")
	assert.Equal(t, again.Columns[0].Samples, samples)

	// No more than 5 samples and all deduplicated.
	assert.LessOrEqual(t, len(samples), 5)
	seen := map[string]bool{}
	for _, s := range samples {
		assert.False(t, seen[s], "duplicate sample %q", s)
		seen[s] = true
	}
}

func TestExtract_RowCount(t *testing.T) {
	small := Extract(Table{Columns: []string{"a"}, Rows: [][]string{{"1"}, {"2"}}}, "t")
	require.NotNil(t, small.RowCount)
	assert.EqualValues(t, 2, *small.RowCount)

	// A sample of exactly MaxSampleRows rows may be a truncated view: the
	// count is unknown, never estimated.
	rows := make([][]string, MaxSampleRows)
	for i := range rows {
		rows[i] = []string{"v"}
	}
	capped := Extract(Table{Columns: []string{"a"}, Rows: rows}, "t")
	assert.Nil(t, capped.RowCount)
}

func TestSnippet(t *testing.T) {
	cols := []string{"id", "name"}
	rows := [][]string{
		{"1", "alpha"},
		{"2", "beta"},
		{"3", "gamma"},
		{"4", "delta"},
		{"5", "epsilon"},
		{"6", "zeta"},
	}
	got := Snippet(cols, rows)
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")

	require.Len(t, lines, 6, "header plus five rows")
	assert.Equal(t, ",id,name", lines[0])
	assert.Equal(t, "0,1,alpha", lines[1])
	assert.Equal(t, "4,5,epsilon", lines[5])
	assert.NotContains(t, got, "zeta", "rows beyond the fifth are excluded")
}

func TestRawRows_IncludesEverySampledRow(t *testing.T) {
	rows := make([][]string, 50)
	for i := range rows {
		rows[i] = []string{"row" + strconv.Itoa(i)}
	}

	got := RawRows([]string{"Unnamed: 0"}, rows)
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")

	require.Len(t, lines, 51, "header plus all fifty rows")
	assert.Contains(t, got, "30,row30", "rows past the preview window are serialized")
	assert.Contains(t, got, "49,row49")
}

func TestExtract_ColCount(t *testing.T) {
	schema := Extract(Table{Columns: []string{"a", "b", "c"}}, "t")
	assert.Equal(t, 3, schema.ColCount)
	assert.Equal(t, "t", schema.Name)
}

func TestInferTypes(t *testing.T) {
	cols := []string{"i", "f", "b", "d", "ts", "s", "empty"}
	rows := [][]string{
		{"1", "1.5", "true", "2024-01-02", "2024-01-02 10:00:00", "abc", ""},
		{"-3", "2", "no", "2024-11-30", "2024-12-01T08:30:00", "9x", ""},
	}
	got := InferTypes(cols, rows)
	want := []string{TypeInteger, TypeFloat, TypeBoolean, TypeDate, TypeTimestamp, TypeText, TypeText}
	assert.Equal(t, want, got)
}

func TestUnnamedColumn(t *testing.T) {
	assert.Equal(t, "Unnamed: 0", UnnamedColumn(0))
	assert.True(t, IsIrregular([]string{UnnamedColumn(0), UnnamedColumn(1)}))
}

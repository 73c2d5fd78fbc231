// Package extract turns tabular samples into structural schema records:
// per-column type labels, budget-bounded value samples, and a raw snippet of
// the leading rows.
package extract

import (
	"bytes"
	"encoding/csv"
	"math/rand"
	"strconv"
	"strings"

	"github.com/ekaya-inc/profile-engine/pkg/models"
)

const (
	// MaxSampleRows caps how many rows are read from a source for extraction.
	MaxSampleRows = 100

	// maxColumnSamples is the per-column cap on sample values.
	maxColumnSamples = 5

	// sampleCharBudget bounds the total serialized length of a column's samples.
	sampleCharBudget = 1000

	// snippetRows is how many leading rows go into the raw snippet.
	snippetRows = 5

	// shuffleSeed fixes the sample shuffle so extraction is deterministic.
	shuffleSeed = 42

	// unnamedPrefix marks placeholder column names produced when a header
	// cell is missing.
	unnamedPrefix = "Unnamed"
)

// Table is a sampled row matrix with column names, as read from a flat file
// or spreadsheet sheet.
type Table struct {
	Columns []string
	Rows    [][]string
}

// UnnamedColumn returns the placeholder name for a missing header cell at
// position i.
func UnnamedColumn(i int) string {
	return unnamedPrefix + ": " + strconv.Itoa(i)
}

// IsIrregular reports whether a table lacks a usable header row: at least
// half of its column names start with the placeholder marker.
func IsIrregular(cols []string) bool {
	if len(cols) == 0 {
		return false
	}
	unnamed := 0
	for _, c := range cols {
		if strings.HasPrefix(c, unnamedPrefix) {
			unnamed++
		}
	}
	return float64(unnamed)/float64(len(cols)) >= 0.5
}

// Extract builds a TableSchema from a sampled table. The row count is exact
// when the sample is known to be the whole table (fewer than MaxSampleRows
// rows) and nil otherwise; callers that performed a dedicated full count
// overwrite it.
func Extract(t Table, name string) models.TableSchema {
	types := InferTypes(t.Columns, t.Rows)

	cols := make([]models.ColumnDescriptor, 0, len(t.Columns))
	for i, colName := range t.Columns {
		cols = append(cols, models.ColumnDescriptor{
			Name:     colName,
			DataType: types[i],
			Samples:  sampleColumn(t.Rows, i),
		})
	}

	schema := models.TableSchema{
		Name:       name,
		RawSnippet: Snippet(t.Columns, t.Rows),
		ColCount:   len(t.Columns),
		Columns:    cols,
	}
	if len(t.Rows) < MaxSampleRows {
		n := int64(len(t.Rows))
		schema.RowCount = &n
	}
	return schema
}

// sampleColumn picks up to maxColumnSamples values for column i: deduplicate,
// shuffle with a fixed seed to avoid bias toward leading rows, then take a
// prefix while the running character total stays within budget.
func sampleColumn(rows [][]string, i int) []string {
	seen := make(map[string]struct{})
	var candidates []string
	for _, r := range rows {
		if i >= len(r) {
			continue
		}
		v := r[i]
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		candidates = append(candidates, v)
	}

	rng := rand.New(rand.NewSource(shuffleSeed))
	rng.Shuffle(len(candidates), func(a, b int) {
		candidates[a], candidates[b] = candidates[b], candidates[a]
	})

	samples := make([]string, 0, maxColumnSamples)
	total := 0
	for _, v := range candidates {
		if len(samples) == maxColumnSamples {
			break
		}
		if total+len(v) > sampleCharBudget {
			break
		}
		samples = append(samples, v)
		total += len(v)
	}
	return samples
}

// Snippet serializes the first snippetRows rows as delimited text with an
// index column, mirroring the preview shown to the model.
func Snippet(columns []string, rows [][]string) string {
	return serializeRows(columns, rows, snippetRows)
}

// RawRows serializes every sampled row with an index column. Header recovery
// submits this to the model, so a header buried past the preview rows stays
// visible to the judgment call.
func RawRows(columns []string, rows [][]string) string {
	return serializeRows(columns, rows, len(rows))
}

func serializeRows(columns []string, rows [][]string, limit int) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append([]string{""}, columns...)
	_ = w.Write(header)

	for i, r := range rows {
		if i == limit {
			break
		}
		record := append([]string{strconv.Itoa(i)}, r...)
		_ = w.Write(record)
	}
	w.Flush()
	return buf.String()
}

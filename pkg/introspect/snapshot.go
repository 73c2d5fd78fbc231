package introspect

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/profile-engine/pkg/models"
)

const (
	// snippetRows is how many rows go into each table's raw snippet.
	snippetRows = 5

	// maxColumnSamples caps the per-column sample values pulled from the
	// snippet rows.
	maxColumnSamples = 3
)

// Snapshot walks every table of a connected database and assembles the
// structural schema. Failures are isolated per table: a column-metadata
// failure skips that table with a warning, while count and sample failures
// only leave the affected fields unset. The error return is reserved for the
// table listing itself.
func Snapshot(ctx context.Context, intro Introspector, name string, logger *zap.Logger) (*models.SourceSchema, error) {
	tables, err := intro.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	schema := &models.SourceSchema{Name: name}
	for _, table := range tables {
		cols, err := intro.Columns(ctx, table)
		if err != nil {
			logger.Warn("skipping table: column metadata unavailable",
				zap.String("table", table),
				zap.Error(err))
			continue
		}

		ts := models.TableSchema{
			Name:     table,
			ColCount: len(cols),
		}

		if n, err := intro.CountRows(ctx, table); err != nil {
			logger.Warn("row count unavailable",
				zap.String("table", table),
				zap.Error(err))
		} else {
			ts.RowCount = &n
		}

		var sampleCols []string
		var sampleRows [][]string
		if sampleCols, sampleRows, err = intro.SampleRows(ctx, table, snippetRows); err != nil {
			logger.Warn("row sample unavailable",
				zap.String("table", table),
				zap.Error(err))
			sampleCols, sampleRows = nil, nil
		} else {
			ts.RawSnippet = renderSnippet(sampleCols, sampleRows)
		}

		ts.Columns = describeColumns(cols, sampleCols, sampleRows)
		schema.Tables = append(schema.Tables, ts)
	}

	return schema, nil
}

// describeColumns merges declared metadata with values observed in the sample
// rows. Types are reported uppercased; samples skip NULLs and duplicates.
func describeColumns(cols []ColumnInfo, sampleCols []string, sampleRows [][]string) []models.ColumnDescriptor {
	index := make(map[string]int, len(sampleCols))
	for i, c := range sampleCols {
		index[c] = i
	}

	out := make([]models.ColumnDescriptor, 0, len(cols))
	for _, c := range cols {
		desc := models.ColumnDescriptor{
			Name:     c.Name,
			DataType: strings.ToUpper(c.DataType),
		}

		if i, ok := index[c.Name]; ok {
			seen := make(map[string]struct{})
			for _, row := range sampleRows {
				if len(desc.Samples) == maxColumnSamples {
					break
				}
				if i >= len(row) || row[i] == "NULL" {
					continue
				}
				if _, dup := seen[row[i]]; dup {
					continue
				}
				seen[row[i]] = struct{}{}
				desc.Samples = append(desc.Samples, row[i])
			}
		}
		out = append(out, desc)
	}
	return out
}

// renderSnippet serializes sampled rows as comma-delimited text. Values
// containing delimiters, quotes, or newlines are quoted; NULLs pass through
// unquoted.
func renderSnippet(columns []string, rows [][]string) string {
	var b strings.Builder
	writeRow(&b, columns)
	for _, r := range rows {
		writeRow(&b, r)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quoteCell(cell))
	}
	b.WriteByte('\n')
}

func quoteCell(v string) string {
	if v == "NULL" || !strings.ContainsAny(v, ",\"\n\r") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

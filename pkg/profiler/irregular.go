package profiler

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/profile-engine/pkg/extract"
	"github.com/ekaya-inc/profile-engine/pkg/llm"
	"github.com/ekaya-inc/profile-engine/pkg/models"
	"github.com/ekaya-inc/profile-engine/pkg/prompts"
)

// irregularJudgment is the model's verdict on a table without a usable
// header row. ColRanges is an inclusive [first, last] column pair.
type irregularJudgment struct {
	IsExtractableTable bool   `json:"is_extractable_table" yaml:"is_extractable_table"`
	Reasoning          string `json:"reasoning" yaml:"reasoning"`
	RowStartIndex      *int   `json:"row_start_index" yaml:"row_start_index"`
	ColRanges          []int  `json:"col_ranges" yaml:"col_ranges"`
}

// resolveIrregular asks the model to locate the real header row inside an
// irregular table and re-extracts the schema from the recovered region. The
// judgment call sees every sampled row, not just the preview snippet. A
// negative verdict, or a recovered region that is itself still irregular,
// yields the minimal unstructured record; a verdict pointing outside the
// sampled rows is rejected as an error.
func (p *Profiler) resolveIrregular(ctx context.Context, table extract.Table, name string) (models.TableSchema, error) {
	prompt, err := prompts.Render(prompts.KeyProfileIrregular, map[string]string{
		"raw_snippet_data": extract.RawRows(table.Columns, table.Rows),
	})
	if err != nil {
		return models.TableSchema{}, err
	}

	raw, err := p.callModel(ctx, p.cfg.Model, []llm.Message{llm.TextMessage(llm.RoleUser, prompt)})
	if err != nil {
		return models.TableSchema{}, fmt.Errorf("irregular table judgment for %s: %w", name, err)
	}

	judgment, err := llm.ParseJSONResponse[irregularJudgment](raw)
	if err != nil {
		return models.TableSchema{}, fmt.Errorf("irregular table judgment for %s: %w", name, err)
	}

	if !judgment.IsExtractableTable || judgment.RowStartIndex == nil {
		p.logger.Info("table judged unstructured",
			zap.String("table", name),
			zap.String("reasoning", judgment.Reasoning))
		return unstructuredSchema(table, name), nil
	}

	idx := *judgment.RowStartIndex
	if idx < 0 || idx >= len(table.Rows) {
		return models.TableSchema{}, fmt.Errorf(
			"irregular table judgment for %s: header row %d outside sampled rows", name, idx)
	}

	header := normalizeHeader(table.Rows[idx])
	rows := table.Rows[idx+1:]

	start, end := p.clampColRange(judgment.ColRanges, len(header), name)
	header = header[start:end]
	sliced := make([][]string, 0, len(rows))
	for _, r := range rows {
		hi := end
		if hi > len(r) {
			hi = len(r)
		}
		if start >= hi {
			sliced = append(sliced, nil)
			continue
		}
		sliced = append(sliced, r[start:hi])
	}

	// The recovered region must actually have named columns; a "header" of
	// blank cells means the recovery failed.
	if extract.IsIrregular(header) {
		p.logger.Info("recovered header still irregular",
			zap.String("table", name),
			zap.Int("header_row", idx))
		return unstructuredSchema(table, name), nil
	}

	schema := extract.Extract(extract.Table{Columns: header, Rows: sliced}, name)
	schema.IrregularJudgment = judgment
	return schema, nil
}

// unstructuredSchema is the minimal record for a table whose structure could
// not be recovered: name, preview snippet, and the unstructured marker.
func unstructuredSchema(table extract.Table, name string) models.TableSchema {
	return models.TableSchema{
		Name:              name,
		RawSnippet:        extract.Snippet(table.Columns, table.Rows),
		IrregularJudgment: models.UnstructuredJudgment,
	}
}

// clampColRange bounds an inclusive [first, last] column pair to the actual
// width and returns half-open slice bounds. Malformed or inverted pairs fall
// back to the full width.
func (p *Profiler) clampColRange(ranges []int, width int, name string) (int, int) {
	if len(ranges) != 2 {
		if len(ranges) != 0 {
			p.logger.Warn("ignoring malformed column range",
				zap.String("table", name),
				zap.Ints("col_ranges", ranges))
		}
		return 0, width
	}

	start, end := ranges[0], ranges[1]+1
	clamped := false
	if start < 0 {
		start, clamped = 0, true
	}
	if end > width {
		end, clamped = width, true
	}
	if start >= end {
		p.logger.Warn("ignoring empty column range",
			zap.String("table", name),
			zap.Ints("col_ranges", ranges))
		return 0, width
	}
	if clamped {
		p.logger.Warn("clamped column range to table width",
			zap.String("table", name),
			zap.Ints("col_ranges", ranges),
			zap.Int("width", width))
	}
	return start, end
}

// normalizeHeader replaces blank header cells with placeholder names.
func normalizeHeader(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		c = strings.TrimSpace(c)
		if c == "" {
			c = extract.UnnamedColumn(i)
		}
		out[i] = c
	}
	return out
}

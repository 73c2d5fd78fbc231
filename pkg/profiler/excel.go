package profiler

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ekaya-inc/profile-engine/pkg/extract"
	"github.com/ekaya-inc/profile-engine/pkg/llm"
	"github.com/ekaya-inc/profile-engine/pkg/models"
	"github.com/ekaya-inc/profile-engine/pkg/prompts"
)

func (p *Profiler) profileExcel(ctx context.Context, src Source) (*models.Profile, error) {
	schema, err := p.readWorkbook(ctx, src)
	if err != nil {
		return nil, err
	}

	data, err := schemaYAML(schema)
	if err != nil {
		return nil, err
	}
	prompt, err := prompts.Render(prompts.KeyProfileExcel, map[string]string{"data": data})
	if err != nil {
		return nil, err
	}

	raw, err := p.callModel(ctx, p.cfg.Model, []llm.Message{llm.TextMessage(llm.RoleUser, prompt)})
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", src.Name, err)
	}
	resp, err := llm.ParseJSONResponse[profileResponse](raw)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", src.Name, err)
	}

	return mergeTables(resp, schema), nil
}

// readWorkbook extracts a per-sheet schema from a spreadsheet. Sheets that
// fail to read are skipped with a warning; irregular sheets go through header
// recovery like irregular flat files.
func (p *Profiler) readWorkbook(ctx context.Context, src Source) (*models.SourceSchema, error) {
	f, err := excelize.OpenFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", src.Path, err)
	}
	defer f.Close()

	schema := &models.SourceSchema{Name: src.Name}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			p.logger.Warn("skipping unreadable sheet",
				zap.String("workbook", src.Name),
				zap.String("sheet", sheet),
				zap.Error(err))
			continue
		}
		if len(rows) == 0 {
			continue
		}

		columns := normalizeHeader(rows[0])
		dataRows := rows[1:]
		// GetRows reads the whole sheet, so this count is exact.
		total := int64(len(dataRows))
		if len(dataRows) > extract.MaxSampleRows {
			dataRows = dataRows[:extract.MaxSampleRows]
		}

		table := extract.Table{Columns: columns, Rows: dataRows}
		var ts models.TableSchema
		if extract.IsIrregular(columns) {
			ts, err = p.resolveIrregular(ctx, table, sheet)
			if err != nil {
				return nil, err
			}
		} else {
			ts = extract.Extract(table, sheet)
			ts.RowCount = &total
		}
		schema.Tables = append(schema.Tables, ts)
	}

	if len(schema.Tables) == 0 {
		return nil, fmt.Errorf("workbook %s has no readable sheets", src.Name)
	}
	return schema, nil
}

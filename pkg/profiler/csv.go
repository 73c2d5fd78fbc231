package profiler

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ekaya-inc/profile-engine/pkg/extract"
	"github.com/ekaya-inc/profile-engine/pkg/llm"
	"github.com/ekaya-inc/profile-engine/pkg/models"
	"github.com/ekaya-inc/profile-engine/pkg/prompts"
)

func (p *Profiler) profileCSV(ctx context.Context, src Source) (*models.Profile, error) {
	table, count, err := readCSVTable(src.Path)
	if err != nil {
		return nil, err
	}

	var schema models.TableSchema
	if extract.IsIrregular(table.Columns) {
		schema, err = p.resolveIrregular(ctx, table, src.Name)
		if err != nil {
			return nil, err
		}
	} else {
		schema = extract.Extract(table, src.Name)
		// The read scanned the whole file, so the count is exact even when
		// only a sample of rows was retained.
		schema.RowCount = &count
	}

	data, err := schemaYAML(schema)
	if err != nil {
		return nil, err
	}
	prompt, err := prompts.Render(prompts.KeyProfileCSV, map[string]string{"data": data})
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

	return mergeSingle(resp, models.FromTable(schema)), nil
}

// readCSVTable reads a delimited file: the first record becomes the column
// list (blank cells get placeholder names), up to MaxSampleRows data rows are
// retained, and every remaining row is still scanned so the count is exact.
func readCSVTable(path string) (extract.Table, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return extract.Table{}, 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return extract.Table{}, 0, fmt.Errorf("%s is empty", path)
	}
	if err != nil {
		return extract.Table{}, 0, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	var rows [][]string
	var count int64
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return extract.Table{}, 0, fmt.Errorf("failed to read %s: %w", path, err)
		}
		count++
		if len(rows) < extract.MaxSampleRows {
			rows = append(rows, rec)
		}
	}

	return extract.Table{Columns: normalizeHeader(header), Rows: rows}, count, nil
}

package introspect

import (
	"context"
	"database/sql"
	"fmt"
)

// querySample runs a row-sampling query over database/sql and renders every
// cell as text. Shared by the drivers that do not use pgx.
func querySample(ctx context.Context, db *sql.DB, query string) ([]string, [][]string, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("read sample columns: %w", err)
	}

	var out [][]string
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("scan sample row: %w", err)
		}

		row := make([]string, len(raw))
		for i, v := range raw {
			row[i] = formatValue(v)
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

package introspect

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ekaya-inc/profile-engine/pkg/apperrors"
	"github.com/ekaya-inc/profile-engine/pkg/logging"
)

func init() {
	Register("postgres", newPostgresIntrospector)
	Register("postgresql", newPostgresIntrospector)
}

// postgresIntrospector reads metadata over a small pgx pool: one base
// connection plus two on demand, recycled hourly.
type postgresIntrospector struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func newPostgresIntrospector(ctx context.Context, dsn string, logger *zap.Logger) (Introspector, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres DSN %s: %w", logging.SanitizeDSN(dsn), apperrors.ErrConnectionFailed)
	}
	cfg.MinConns = 1
	cfg.MaxConns = 3
	cfg.MaxConnLifetime = time.Hour
	cfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", apperrors.ErrConnectionFailed)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach %s: %v: %w",
			logging.SanitizeDSN(dsn), logging.SanitizeError(err), apperrors.ErrConnectionFailed)
	}

	return &postgresIntrospector{
		pool:   pool,
		logger: logger.Named("postgres"),
	}, nil
}

func (p *postgresIntrospector) Close() error {
	p.pool.Close()
	return nil
}

// ListTables returns base tables outside the system schemas. Tables in the
// public schema are reported bare; others are schema-qualified.
func (p *postgresIntrospector) ListTables(ctx context.Context) ([]string, error) {
	const query = `
		SELECT table_schema, table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		  AND table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		ORDER BY table_schema, table_name
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var schema, name string
		if err := rows.Scan(&schema, &name); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		if schema == "public" {
			tables = append(tables, name)
		} else {
			tables = append(tables, schema+"."+name)
		}
	}
	return tables, rows.Err()
}

func (p *postgresIntrospector) Columns(ctx context.Context, table string) ([]ColumnInfo, error) {
	schema, name := splitQualified(table, "public")
	const query = `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := p.pool.Query(ctx, query, schema, name)
	if err != nil {
		return nil, fmt.Errorf("query columns for %s: %w", table, err)
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var c ColumnInfo
		if err := rows.Scan(&c.Name, &c.DataType); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s has no visible columns", table)
	}
	return cols, nil
}

func (p *postgresIntrospector) CountRows(ctx context.Context, table string) (int64, error) {
	var n int64
	query := "SELECT COUNT(*) FROM " + p.quote(table)
	if err := p.pool.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (p *postgresIntrospector) SampleRows(ctx context.Context, table string, limit int) ([]string, [][]string, error) {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", p.quote(table), limit)
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("sample %s: %w", table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}

	var out [][]string
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, nil, fmt.Errorf("read sample row: %w", err)
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

func (p *postgresIntrospector) quote(table string) string {
	schema, name := splitQualified(table, "")
	quoted := pgx.Identifier{name}.Sanitize()
	if schema == "" {
		return quoted
	}
	return pgx.Identifier{schema}.Sanitize() + "." + quoted
}

// splitQualified splits "schema.table" into its parts, defaulting the schema
// when the name is bare.
func splitQualified(table, defaultSchema string) (string, string) {
	if schema, name, ok := strings.Cut(table, "."); ok {
		return schema, name
	}
	return defaultSchema, table
}

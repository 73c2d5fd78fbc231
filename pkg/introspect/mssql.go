package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/microsoft/go-mssqldb"
	"go.uber.org/zap"

	"github.com/ekaya-inc/profile-engine/pkg/apperrors"
	"github.com/ekaya-inc/profile-engine/pkg/logging"
)

func init() {
	Register("sqlserver", newMSSQLIntrospector)
	Register("mssql", newMSSQLIntrospector)
}

type mssqlIntrospector struct {
	db     *sql.DB
	logger *zap.Logger
}

func newMSSQLIntrospector(ctx context.Context, dsn string, logger *zap.Logger) (Introspector, error) {
	// go-mssqldb only accepts the sqlserver:// scheme.
	if rest, ok := strings.CutPrefix(dsn, "mssql://"); ok {
		dsn = "sqlserver://" + rest
	}

	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid sqlserver DSN %s: %w", logging.SanitizeDSN(dsn), apperrors.ErrConnectionFailed)
	}
	db.SetMaxOpenConns(3)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach %s: %v: %w",
			logging.SanitizeDSN(dsn), logging.SanitizeError(err), apperrors.ErrConnectionFailed)
	}

	return &mssqlIntrospector{
		db:     db,
		logger: logger.Named("mssql"),
	}, nil
}

func (m *mssqlIntrospector) Close() error {
	return m.db.Close()
}

// ListTables returns base tables outside the system schemas. Tables in dbo
// are reported bare; others are schema-qualified.
func (m *mssqlIntrospector) ListTables(ctx context.Context) ([]string, error) {
	const query = `
		SELECT TABLE_SCHEMA, TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_TYPE = 'BASE TABLE'
		  AND TABLE_SCHEMA NOT IN ('sys', 'INFORMATION_SCHEMA')
		ORDER BY TABLE_SCHEMA, TABLE_NAME
	`

	rows, err := m.db.QueryContext(ctx, query)
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
		if schema == "dbo" {
			tables = append(tables, name)
		} else {
			tables = append(tables, schema+"."+name)
		}
	}
	return tables, rows.Err()
}

func (m *mssqlIntrospector) Columns(ctx context.Context, table string) ([]ColumnInfo, error) {
	schema, name := splitQualified(table, "dbo")
	const query = `
		SELECT COLUMN_NAME, DATA_TYPE
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
		ORDER BY ORDINAL_POSITION
	`

	rows, err := m.db.QueryContext(ctx, query, schema, name)
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

func (m *mssqlIntrospector) CountRows(ctx context.Context, table string) (int64, error) {
	var n int64
	query := "SELECT COUNT_BIG(*) FROM " + m.quote(table)
	if err := m.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (m *mssqlIntrospector) SampleRows(ctx context.Context, table string, limit int) ([]string, [][]string, error) {
	query := fmt.Sprintf("SELECT TOP (%d) * FROM %s", limit, m.quote(table))
	cols, rows, err := querySample(ctx, m.db, query)
	if err != nil {
		return nil, nil, fmt.Errorf("sample %s: %w", table, err)
	}
	return cols, rows, nil
}

func (m *mssqlIntrospector) quote(table string) string {
	schema, name := splitQualified(table, "")
	quoted := bracketQuote(name)
	if schema == "" {
		return quoted
	}
	return bracketQuote(schema) + "." + quoted
}

func bracketQuote(ident string) string {
	return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
}

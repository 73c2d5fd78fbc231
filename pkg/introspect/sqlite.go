package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/ekaya-inc/profile-engine/pkg/apperrors"
)

func init() {
	Register("sqlite", newSQLiteIntrospector)
	Register("sqlite3", newSQLiteIntrospector)
}

type sqliteIntrospector struct {
	db     *sql.DB
	logger *zap.Logger
}

func newSQLiteIntrospector(ctx context.Context, dsn string, logger *zap.Logger) (Introspector, error) {
	path := dsn
	for _, prefix := range []string{"sqlite3://", "sqlite://"} {
		if rest, ok := strings.CutPrefix(path, prefix); ok {
			path = rest
			break
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, apperrors.ErrConnectionFailed)
	}
	db.SetMaxOpenConns(3)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open sqlite database %s: %v: %w", path, err, apperrors.ErrConnectionFailed)
	}

	return &sqliteIntrospector{
		db:     db,
		logger: logger.Named("sqlite"),
	}, nil
}

func (s *sqliteIntrospector) Close() error {
	return s.db.Close()
}

func (s *sqliteIntrospector) ListTables(ctx context.Context) ([]string, error) {
	const query = `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (s *sqliteIntrospector) Columns(ctx context.Context, table string) ([]ColumnInfo, error) {
	query := "SELECT name, type FROM pragma_table_info(?) ORDER BY cid"

	rows, err := s.db.QueryContext(ctx, query, table)
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

func (s *sqliteIntrospector) CountRows(ctx context.Context, table string) (int64, error) {
	var n int64
	query := "SELECT COUNT(*) FROM " + doubleQuote(table)
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (s *sqliteIntrospector) SampleRows(ctx context.Context, table string, limit int) ([]string, [][]string, error) {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", doubleQuote(table), limit)
	cols, rows, err := querySample(ctx, s.db, query)
	if err != nil {
		return nil, nil, fmt.Errorf("sample %s: %w", table, err)
	}
	return cols, rows, nil
}

func doubleQuote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

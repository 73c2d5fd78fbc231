// Package introspect discovers the structure of relational databases: table
// inventory, column metadata, exact row counts, and small row samples. Each
// supported engine registers a driver via init(); callers open by DSN scheme.
package introspect

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ekaya-inc/profile-engine/pkg/apperrors"
)

// ColumnInfo is one column as declared by the database.
type ColumnInfo struct {
	Name     string
	DataType string
}

// Introspector reads structural metadata from a connected database. Close
// releases the underlying pool.
type Introspector interface {
	// ListTables returns user table names, schema-qualified when the table
	// lives outside the engine's default schema.
	ListTables(ctx context.Context) ([]string, error)

	// Columns returns the declared columns of a table in ordinal order.
	Columns(ctx context.Context, table string) ([]ColumnInfo, error)

	// CountRows returns the exact row count of a table.
	CountRows(ctx context.Context, table string) (int64, error)

	// SampleRows fetches up to limit rows, returning column names and the
	// rows with NULLs rendered as the literal "NULL".
	SampleRows(ctx context.Context, table string, limit int) ([]string, [][]string, error)

	Close() error
}

// Factory creates an Introspector from a DSN.
type Factory func(ctx context.Context, dsn string, logger *zap.Logger) (Introspector, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register is called by each driver's init() function.
func Register(scheme string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[scheme] = f
}

// RegisteredSchemes returns the DSN schemes with an available driver.
func RegisteredSchemes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]string, 0, len(registry))
	for scheme := range registry {
		out = append(out, scheme)
	}
	return out
}

// Open connects to the database identified by dsn using the driver registered
// for its scheme. A scheme without a driver is a connection failure that names
// the missing driver, not a panic.
func Open(ctx context.Context, dsn string, logger *zap.Logger) (Introspector, error) {
	scheme, _, ok := strings.Cut(dsn, "://")
	if !ok {
		return nil, fmt.Errorf("DSN has no scheme: %w", apperrors.ErrConnectionFailed)
	}
	scheme = strings.ToLower(scheme)

	registryMu.RLock()
	factory, found := registry[scheme]
	registryMu.RUnlock()

	if !found {
		return nil, fmt.Errorf("no database driver registered for scheme %q: %w",
			scheme, apperrors.ErrConnectionFailed)
	}
	return factory(ctx, dsn, logger)
}

// Package sources manages the registered data sources: registration with
// type detection and naming, preparation (staging files, connecting MCP
// servers), and idempotent profiling.
package sources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ekaya-inc/profile-engine/pkg/apperrors"
	"github.com/ekaya-inc/profile-engine/pkg/config"
	"github.com/ekaya-inc/profile-engine/pkg/logging"
	"github.com/ekaya-inc/profile-engine/pkg/mcp"
	"github.com/ekaya-inc/profile-engine/pkg/models"
	"github.com/ekaya-inc/profile-engine/pkg/profiler"
	"github.com/ekaya-inc/profile-engine/pkg/truncate"
	"github.com/ekaya-inc/profile-engine/pkg/workspace"
)

var placeholderPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// DataSource is one registered endpoint and everything derived from it.
type DataSource struct {
	Endpoint   string
	Name       string
	SourceType models.SourceType
	AccessType models.SourceAccessType

	// Config is the per-source tool configuration, seeded from the built-in
	// defaults with placeholders substituted.
	Config map[string]any

	// AccessPath is where a direct source was staged.
	AccessPath string

	// Profile is the enrichment result; Profiled marks that a profiling
	// attempt happened, successful or not.
	Profile  *models.Profile
	Profiled bool

	connector *mcp.Connector
}

// Manager holds registered sources in registration order and drives their
// preparation and profiling.
type Manager struct {
	cfg           *config.Config
	store         *workspace.Store
	profiler      *profiler.Profiler
	toolTruncator *truncate.Truncator
	longTruncator *truncate.Truncator
	logger        *zap.Logger

	mu         sync.Mutex
	order      []string
	byEndpoint map[string]*DataSource
	usedNames  map[string]int
}

// NewManager creates a Manager. profiler may be nil when no LLM gateway is
// configured; sources are then prepared but never profiled. toolTruncator
// bounds MCP tool results at the base budget, longTruncator bounds the
// long-form describe report.
func NewManager(cfg *config.Config, store *workspace.Store, p *profiler.Profiler, toolTruncator, longTruncator *truncate.Truncator, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:           cfg,
		store:         store,
		profiler:      p,
		toolTruncator: toolTruncator,
		longTruncator: longTruncator,
		logger:        logger.Named("sources"),
		byEndpoint:    make(map[string]*DataSource),
		usedNames:     make(map[string]int),
	}
}

// AddSource registers an endpoint. Directories expand to their files in
// sorted order; registering the same endpoint twice is a no-op.
func (m *Manager) AddSource(endpoint string) error {
	if info, err := os.Stat(endpoint); err == nil && info.IsDir() {
		return m.addDirectory(endpoint)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.add(endpoint)
}

func (m *Manager) addDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read source directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range names {
		if err := m.add(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) add(endpoint string) error {
	if _, exists := m.byEndpoint[endpoint]; exists {
		return nil
	}

	sourceType := DetectType(endpoint)
	src := &DataSource{
		Endpoint:   endpoint,
		Name:       m.uniqueName(DeriveName(endpoint, sourceType)),
		SourceType: sourceType,
		AccessType: models.AccessTypeFor(sourceType),
		Config:     m.sourceConfig(sourceType, endpoint),
	}

	m.order = append(m.order, endpoint)
	m.byEndpoint[endpoint] = src
	m.logger.Info("registered source",
		zap.String("name", src.Name),
		zap.String("type", string(src.SourceType)),
		zap.String("endpoint", logging.SanitizeDSN(endpoint)))
	return nil
}

// uniqueName suffixes a derived name when an earlier source already claimed it.
func (m *Manager) uniqueName(name string) string {
	m.usedNames[name]++
	if n := m.usedNames[name]; n > 1 {
		return fmt.Sprintf("%s_%d", name, n)
	}
	return name
}

// sourceConfig deep-copies the built-in defaults for a type and substitutes
// ${endpoint} placeholders.
func (m *Manager) sourceConfig(sourceType models.SourceType, endpoint string) map[string]any {
	defaults := config.SourceDefaults()[sourceType]
	if defaults == nil {
		return map[string]any{}
	}
	vars := map[string]string{"endpoint": dsnFor(sourceType, endpoint)}
	return expandPlaceholders(defaults, vars).(map[string]any)
}

func expandPlaceholders(v any, vars map[string]string) any {
	switch x := v.(type) {
	case string:
		return placeholderPattern.ReplaceAllStringFunc(x, func(match string) string {
			key := placeholderPattern.FindStringSubmatch(match)[1]
			if val, ok := vars[key]; ok {
				return val
			}
			return match
		})
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = expandPlaceholders(val, vars)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = expandPlaceholders(val, vars)
		}
		return out
	default:
		return v
	}
}

// dsnFor normalizes a relational endpoint to a scheme-qualified DSN. Bare
// file paths are SQLite databases.
func dsnFor(sourceType models.SourceType, endpoint string) string {
	if sourceType == models.SourceTypeRelationalDB && !strings.Contains(endpoint, "://") {
		return "sqlite://" + endpoint
	}
	return endpoint
}

// PrepareAll prepares and profiles every registered source in order.
// Failures are isolated per source: a source that cannot be prepared is
// logged and left behind, the rest of the batch continues.
func (m *Manager) PrepareAll(ctx context.Context) {
	for _, src := range m.snapshot() {
		if err := m.prepare(ctx, src); err != nil {
			m.logger.Error("failed to prepare source",
				zap.String("name", src.Name),
				zap.String("error", logging.SanitizeError(err)))
			continue
		}
		m.profile(ctx, src)
	}
}

func (m *Manager) snapshot() []*DataSource {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*DataSource, 0, len(m.order))
	for _, endpoint := range m.order {
		out = append(out, m.byEndpoint[endpoint])
	}
	return out
}

func (m *Manager) prepare(ctx context.Context, src *DataSource) error {
	switch src.AccessType {
	case models.AccessDirect:
		if src.AccessPath != "" {
			return nil
		}
		staged, err := m.store.Stage(ctx, src.Endpoint)
		if err != nil {
			return err
		}
		src.AccessPath = staged
		return nil

	case models.AccessViaMCP:
		if src.connector != nil {
			return nil
		}
		spec, err := mcp.SpecFromConfig(src.Config)
		if err != nil {
			return err
		}
		connector, err := mcp.Connect(ctx, spec, m.toolTruncator, m.logger)
		if err != nil {
			return err
		}
		src.connector = connector
		return nil

	default:
		return fmt.Errorf("access type %q: %w", src.AccessType, apperrors.ErrUnsupportedSourceType)
	}
}

// profile runs enrichment once per source. Sources whose type is not
// profiled (json, text, other) are prepared only.
func (m *Manager) profile(ctx context.Context, src *DataSource) {
	if m.profiler == nil || src.Profiled || !isProfiledType(src.SourceType) {
		return
	}

	src.Profile = m.profiler.GenerateProfile(ctx, profiler.Source{
		Name:     src.Name,
		Type:     src.SourceType,
		Path:     src.AccessPath,
		Endpoint: dsnFor(src.SourceType, src.Endpoint),
	})
	src.Profiled = true
}

func isProfiledType(t models.SourceType) bool {
	switch t {
	case models.SourceTypeCSV, models.SourceTypeExcel, models.SourceTypeImage, models.SourceTypeRelationalDB:
		return true
	}
	return false
}

// Get returns a registered source by endpoint.
func (m *Manager) Get(endpoint string) (*DataSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	src, ok := m.byEndpoint[endpoint]
	if !ok {
		return nil, fmt.Errorf("endpoint %s: %w", logging.SanitizeDSN(endpoint), apperrors.ErrSourceNotFound)
	}
	return src, nil
}

// Remove unregisters a source, closing its MCP connection if one is open.
func (m *Manager) Remove(endpoint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	src, ok := m.byEndpoint[endpoint]
	if !ok {
		return fmt.Errorf("endpoint %s: %w", logging.SanitizeDSN(endpoint), apperrors.ErrSourceNotFound)
	}

	if src.connector != nil {
		if err := src.connector.Close(); err != nil {
			m.logger.Warn("failed to close MCP connection",
				zap.String("name", src.Name),
				zap.Error(err))
		}
	}

	delete(m.byEndpoint, endpoint)
	for i, e := range m.order {
		if e == endpoint {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of registered sources.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

// Endpoints returns all registered endpoints in registration order.
func (m *Manager) Endpoints() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// LocalEndpoints returns the staged paths of all prepared direct sources.
func (m *Manager) LocalEndpoints() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []string
	for _, endpoint := range m.order {
		if src := m.byEndpoint[endpoint]; src.AccessType == models.AccessDirect && src.AccessPath != "" {
			out = append(out, src.AccessPath)
		}
	}
	return out
}

// Close releases every open MCP connection.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, src := range m.byEndpoint {
		if src.connector != nil {
			_ = src.connector.Close()
		}
	}
}

// Describe renders a human-readable report of every source and its profile,
// bounded by the long response budget.
func (m *Manager) Describe() string {
	var b strings.Builder
	for i, src := range m.snapshot() {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "source: %s\n", src.Name)
		fmt.Fprintf(&b, "type: %s (%s)\n", src.SourceType, src.AccessType)
		fmt.Fprintf(&b, "endpoint: %s\n", logging.SanitizeDSN(src.Endpoint))
		if src.connector != nil {
			fmt.Fprintf(&b, "tools: %s\n", strings.Join(src.connector.ToolNames(), ", "))
		}
		if src.Profiled {
			if rendered := src.Profile.Render(); rendered != "" {
				b.WriteString("profile:\n")
				b.WriteString(indent(rendered))
			} else {
				b.WriteString("profile: (empty)\n")
			}
		}
	}

	out := b.String()
	if m.longTruncator != nil {
		out = m.longTruncator.Truncate("describe_sources", out)
	}
	return out
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n") + "\n"
}

package profiler

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/profile-engine/pkg/config"
	"github.com/ekaya-inc/profile-engine/pkg/extract"
	"github.com/ekaya-inc/profile-engine/pkg/llm"
	"github.com/ekaya-inc/profile-engine/pkg/models"
)

func testLLMConfig() config.LLMConfig {
	return config.LLMConfig{
		Model:          "test-model",
		VisionModel:    "test-vision-model",
		MaxAttempts:    1,
		RetryDelaySecs: 0,
		TimeoutSeconds: 5,
	}
}

func newTestProfiler(mock *llm.MockGateway) *Profiler {
	return New(mock, testLLMConfig(), zap.NewNop())
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGenerateProfile_CSV(t *testing.T) {
	path := writeCSV(t, "id,name\n1,alpha\n2,beta\n")

	mock := llm.NewMockGateway()
	mock.CallFunc = func(_ context.Context, model string, _ []llm.Message) (string, error) {
		assert.Equal(t, "test-model", model)
		return `{"name": "users", "description": "registered users"}`, nil
	}

	p := newTestProfiler(mock)
	profile := p.GenerateProfile(context.Background(), Source{
		Name: "data", Type: models.SourceTypeCSV, Path: path,
	})

	require.False(t, profile.IsEmpty())
	assert.Equal(t, "data", profile.Name, "the structural name wins over the model's suggestion")
	assert.Equal(t, "registered users", profile.Description)

	// Structural facts come from extraction, not the model.
	require.Len(t, profile.Columns, 2)
	assert.Equal(t, "id", profile.Columns[0].Name)
	assert.Equal(t, "INTEGER", profile.Columns[0].DataType)
}

func TestGenerateProfile_MalformedResponseDegradesToEmpty(t *testing.T) {
	path := writeCSV(t, "id\n1\n")

	mock := llm.NewMockGateway()
	mock.CallFunc = func(context.Context, string, []llm.Message) (string, error) {
		return "I cannot help with that.", nil
	}

	p := newTestProfiler(mock)
	profile := p.GenerateProfile(context.Background(), Source{
		Name: "data", Type: models.SourceTypeCSV, Path: path,
	})

	assert.True(t, profile.IsEmpty(), "unparseable response degrades to an empty profile")
}

func TestGenerateProfile_IrregularCSVRecoversHeader(t *testing.T) {
	// Two of three header cells are blank, so the file routes through header
	// recovery before profiling.
	path := writeCSV(t, "Quarterly Report,,\nid,name,total\n1,a,10\n2,b,20\n")

	mock := llm.NewMockGateway()
	mock.CallFunc = func(_ context.Context, _ string, messages []llm.Message) (string, error) {
		text := messages[0].Parts[0].Text
		if strings.Contains(text, "is_extractable_table") {
			return `{"is_extractable_table": true, "reasoning": "headers on first data row", "row_start_index": 0, "col_ranges": [0, 2]}`, nil
		}
		return `{"name": "quarterly", "description": "quarterly totals"}`, nil
	}

	p := newTestProfiler(mock)
	profile := p.GenerateProfile(context.Background(), Source{
		Name: "report", Type: models.SourceTypeCSV, Path: path,
	})

	require.False(t, profile.IsEmpty())
	require.Len(t, mock.Calls, 2, "judgment call then profiling call")

	require.Len(t, profile.Columns, 3)
	assert.Equal(t, "id", profile.Columns[0].Name)
	assert.Equal(t, "total", profile.Columns[2].Name)
}

func TestGenerateProfile_IrregularJudgmentOutOfRange(t *testing.T) {
	path := writeCSV(t, "Quarterly Report,,\nid,name,total\n1,a,10\n")

	mock := llm.NewMockGateway()
	mock.CallFunc = func(context.Context, string, []llm.Message) (string, error) {
		return `{"is_extractable_table": true, "row_start_index": 99}`, nil
	}

	p := newTestProfiler(mock)
	profile := p.GenerateProfile(context.Background(), Source{
		Name: "report", Type: models.SourceTypeCSV, Path: path,
	})

	assert.True(t, profile.IsEmpty(), "header row outside the sample is rejected")
}

func TestResolveIrregular_UnstructuredVerdict(t *testing.T) {
	mock := llm.NewMockGateway()
	mock.CallFunc = func(context.Context, string, []llm.Message) (string, error) {
		return `{"is_extractable_table": false, "reasoning": "free-form notes"}`, nil
	}

	p := newTestProfiler(mock)
	table := extract.Table{
		Columns: []string{"Unnamed: 0", "Unnamed: 1"},
		Rows:    [][]string{{"a", "b"}, {"c", "d"}},
	}
	schema, err := p.resolveIrregular(context.Background(), table, "notes")
	require.NoError(t, err)

	// The unstructured record is minimal: name, preview snippet, marker.
	assert.Equal(t, models.UnstructuredJudgment, schema.IrregularJudgment)
	assert.Equal(t, "notes", schema.Name)
	assert.NotEmpty(t, schema.RawSnippet)
	assert.Empty(t, schema.Columns)
}

func TestResolveIrregular_SeesAllSampledRows(t *testing.T) {
	rows := make([][]string, 40)
	for i := range rows {
		rows[i] = []string{"row" + strconv.Itoa(i), "x"}
	}

	var judged string
	mock := llm.NewMockGateway()
	mock.CallFunc = func(_ context.Context, _ string, messages []llm.Message) (string, error) {
		judged = messages[0].Parts[0].Text
		return `{"is_extractable_table": false, "reasoning": "no header anywhere"}`, nil
	}

	p := newTestProfiler(mock)
	table := extract.Table{Columns: []string{"Unnamed: 0", "Unnamed: 1"}, Rows: rows}
	_, err := p.resolveIrregular(context.Background(), table, "dump")
	require.NoError(t, err)

	assert.Contains(t, judged, "row30", "the judgment call sees rows past the preview window")
	assert.Contains(t, judged, "row39")
}

func TestResolveIrregular_RecoveredHeaderStillIrregular(t *testing.T) {
	mock := llm.NewMockGateway()
	mock.CallFunc = func(context.Context, string, []llm.Message) (string, error) {
		return `{"is_extractable_table": true, "reasoning": "data starts below", "row_start_index": 0, "col_ranges": [0, 1]}`, nil
	}

	p := newTestProfiler(mock)
	// The row the model points at is blank, so the recovered header is all
	// placeholders and recovery must not produce a structured schema.
	table := extract.Table{
		Columns: []string{"Unnamed: 0", "Unnamed: 1"},
		Rows:    [][]string{{" ", ""}, {"1", "a"}, {"2", "b"}},
	}
	schema, err := p.resolveIrregular(context.Background(), table, "blanks")
	require.NoError(t, err)

	assert.Equal(t, models.UnstructuredJudgment, schema.IrregularJudgment)
	assert.Empty(t, schema.Columns)
}

func TestMergeTables_FiltersByResponseNames(t *testing.T) {
	schema := &models.SourceSchema{
		Name: "shop",
		Tables: []models.TableSchema{
			{Name: "orders", Columns: []models.ColumnDescriptor{{Name: "id", DataType: "INTEGER"}}},
			{Name: "audit_log", Columns: []models.ColumnDescriptor{{Name: "ts", DataType: "TIMESTAMP"}}},
		},
	}
	resp := profileResponse{
		Name:        "shop_db",
		Description: "e-commerce data",
		Tables: []tableResponse{
			{Name: "orders", Description: "customer orders"},
			{Name: "invented", Description: "does not exist"},
		},
	}

	profile := mergeTables(resp, schema)

	assert.Equal(t, "shop", profile.Name, "the structural name wins over the model's suggestion")
	require.Len(t, profile.Tables, 1, "response names not present in the schema are dropped")
	assert.Equal(t, "orders", profile.Tables[0].Name)
	assert.Equal(t, "customer orders", profile.Tables[0].Description)
	assert.Equal(t, schema.Tables[0].Columns, profile.Tables[0].Columns, "columns come from the schema verbatim")
}

func TestClampColRange(t *testing.T) {
	p := newTestProfiler(llm.NewMockGateway())

	// The pair is inclusive [first, last]; returned bounds are half-open.
	start, end := p.clampColRange([]int{1, 3}, 5, "t")
	assert.Equal(t, 1, start)
	assert.Equal(t, 4, end)

	start, end = p.clampColRange([]int{0, 4}, 5, "t")
	assert.Equal(t, 0, start)
	assert.Equal(t, 5, end)

	start, end = p.clampColRange([]int{-2, 99}, 5, "t")
	assert.Equal(t, 0, start)
	assert.Equal(t, 5, end, "out-of-bounds ranges clamp to the table width")

	start, end = p.clampColRange([]int{4, 1}, 5, "t")
	assert.Equal(t, 0, start)
	assert.Equal(t, 5, end, "inverted ranges fall back to the full width")

	start, end = p.clampColRange(nil, 5, "t")
	assert.Equal(t, 0, start)
	assert.Equal(t, 5, end)
}

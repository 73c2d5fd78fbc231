package models

// UnstructuredJudgment marks a table whose structure could not be recovered
// by the irregular-table inference pass.
const UnstructuredJudgment = "UNSTRUCTURED"

// ColumnDescriptor holds the structural view of a single column: its declared
// type name (uppercased) and a small, budget-bounded sample of its values.
type ColumnDescriptor struct {
	Name     string   `json:"name" yaml:"name"`
	DataType string   `json:"data_type" yaml:"data_type"`
	Samples  []string `json:"samples" yaml:"samples"`
}

// TableSchema is the structural record extracted from one table, sheet, or
// flat file. RowCount is an exact count or nil, never an estimate.
type TableSchema struct {
	Name              string             `json:"name" yaml:"name"`
	RawSnippet        string             `json:"raw_data_snippet" yaml:"raw_data_snippet"`
	RowCount          *int64             `json:"row_count" yaml:"row_count"`
	ColCount          int                `json:"col_count" yaml:"col_count"`
	Columns           []ColumnDescriptor `json:"columns,omitempty" yaml:"columns,omitempty"`
	IrregularJudgment any                `json:"irregular_judgment,omitempty" yaml:"irregular_judgment,omitempty"`
}

// SourceSchema is the structural record for an entire source. Single-table
// sources populate the flat fields; multi-table sources (spreadsheets,
// databases) populate Tables instead.
type SourceSchema struct {
	Name       string             `json:"name" yaml:"name"`
	RawSnippet string             `json:"raw_data_snippet,omitempty" yaml:"raw_data_snippet,omitempty"`
	RowCount   *int64             `json:"row_count,omitempty" yaml:"row_count,omitempty"`
	ColCount   int                `json:"col_count,omitempty" yaml:"col_count,omitempty"`
	Columns    []ColumnDescriptor `json:"columns,omitempty" yaml:"columns,omitempty"`
	Tables     []TableSchema      `json:"tables,omitempty" yaml:"tables,omitempty"`
}

// FromTable lifts a single TableSchema into a SourceSchema.
func FromTable(t TableSchema) *SourceSchema {
	return &SourceSchema{
		Name:       t.Name,
		RawSnippet: t.RawSnippet,
		RowCount:   t.RowCount,
		ColCount:   t.ColCount,
		Columns:    t.Columns,
	}
}

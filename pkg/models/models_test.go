package models

import (
	"strings"
	"testing"
)

func TestAccessTypeFor(t *testing.T) {
	tests := []struct {
		sourceType SourceType
		want       SourceAccessType
	}{
		{SourceTypeCSV, AccessDirect},
		{SourceTypeJSON, AccessDirect},
		{SourceTypeExcel, AccessDirect},
		{SourceTypeText, AccessDirect},
		{SourceTypeImage, AccessDirect},
		{SourceTypeRelationalDB, AccessViaMCP},
		{SourceTypeOther, AccessDirect},
	}
	for _, tt := range tests {
		if got := AccessTypeFor(tt.sourceType); got != tt.want {
			t.Errorf("AccessTypeFor(%s) = %s, want %s", tt.sourceType, got, tt.want)
		}
	}
}

func TestIsValidSourceType(t *testing.T) {
	if !IsValidSourceType("relational_db") {
		t.Error("relational_db should be valid")
	}
	if IsValidSourceType("graph_db") {
		t.Error("graph_db should be invalid")
	}
}

func TestProfileIsEmpty(t *testing.T) {
	var nilProfile *Profile
	if !nilProfile.IsEmpty() {
		t.Error("nil profile should be empty")
	}
	if !(&Profile{}).IsEmpty() {
		t.Error("zero profile should be empty")
	}
	if (&Profile{Description: "sales data"}).IsEmpty() {
		t.Error("profile with description should not be empty")
	}
}

func TestProfileRender_KeyOrder(t *testing.T) {
	p := &Profile{
		Name:        "orders",
		Description: "Customer orders.",
		Columns: []ColumnDescriptor{
			{Name: "id", DataType: "INTEGER", Samples: []string{"1", "2"}},
		},
	}
	out := p.Render()

	// Struct field order must survive rendering: name before description
	// before columns.
	nameIdx := strings.Index(out, "name: orders")
	descIdx := strings.Index(out, "description: Customer orders.")
	colsIdx := strings.Index(out, "columns:")
	if nameIdx < 0 || descIdx < 0 || colsIdx < 0 {
		t.Fatalf("missing keys in rendered profile:\n%s", out)
	}
	if !(nameIdx < descIdx && descIdx < colsIdx) {
		t.Errorf("keys rendered out of order:\n%s", out)
	}
}

func TestProfileRender_Empty(t *testing.T) {
	if out := (&Profile{}).Render(); out != "" {
		t.Errorf("empty profile rendered %q, want empty", out)
	}
}

func TestFromTable(t *testing.T) {
	rc := int64(42)
	table := TableSchema{
		Name:     "t",
		RowCount: &rc,
		ColCount: 2,
		Columns:  []ColumnDescriptor{{Name: "a"}, {Name: "b"}},
	}
	s := FromTable(table)
	if s.Name != "t" || s.ColCount != 2 || len(s.Columns) != 2 {
		t.Errorf("FromTable lost fields: %+v", s)
	}
	if s.RowCount == nil || *s.RowCount != 42 {
		t.Errorf("FromTable lost row count")
	}
	if len(s.Tables) != 0 {
		t.Errorf("single-table schema should have no Tables")
	}
}

package models

import (
	"gopkg.in/yaml.v3"
)

// ProfileTable is one table of a multi-table profile: the original structure
// with the model-provided description attached.
type ProfileTable struct {
	Name              string             `json:"name" yaml:"name"`
	Description       string             `json:"description" yaml:"description"`
	Columns           []ColumnDescriptor `json:"columns,omitempty" yaml:"columns,omitempty"`
	IrregularJudgment any                `json:"irregular_judgment,omitempty" yaml:"irregular_judgment,omitempty"`
}

// Profile is a structural schema enriched with natural-language descriptions.
// Single-table sources carry Columns, multi-table sources carry Tables, and
// image sources carry Details. An empty Profile (zero value) is the degraded
// result of a failed profiling run.
type Profile struct {
	Name        string             `json:"name,omitempty" yaml:"name,omitempty"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty"`
	Columns     []ColumnDescriptor `json:"columns,omitempty" yaml:"columns,omitempty"`
	Tables      []ProfileTable     `json:"tables,omitempty" yaml:"tables,omitempty"`
	Details     string             `json:"details,omitempty" yaml:"details,omitempty"`
}

// IsEmpty reports whether the profile carries no content at all.
func (p *Profile) IsEmpty() bool {
	if p == nil {
		return true
	}
	return p.Name == "" && p.Description == "" && len(p.Columns) == 0 &&
		len(p.Tables) == 0 && p.Details == ""
}

// Render serializes the profile as key-ordered block YAML for human-readable
// reports. Returns the empty string for an empty profile.
func (p *Profile) Render() string {
	if p.IsEmpty() {
		return ""
	}
	out, err := yaml.Marshal(p)
	if err != nil {
		return ""
	}
	return string(out)
}

// Package models defines the data model shared across the profiling pipeline:
// source classification, structural schemas, and enriched profiles.
package models

// SourceType classifies a data source endpoint. The set is closed: each type
// maps to exactly one profiler variant and one access type.
type SourceType string

const (
	SourceTypeCSV          SourceType = "csv"
	SourceTypeJSON         SourceType = "json"
	SourceTypeExcel        SourceType = "excel"
	SourceTypeText         SourceType = "text"
	SourceTypeImage        SourceType = "image"
	SourceTypeRelationalDB SourceType = "relational_db"
	SourceTypeOther        SourceType = "other"
)

// IsValidSourceType reports whether value names a known source type.
func IsValidSourceType(value string) bool {
	switch SourceType(value) {
	case SourceTypeCSV, SourceTypeJSON, SourceTypeExcel, SourceTypeText,
		SourceTypeImage, SourceTypeRelationalDB, SourceTypeOther:
		return true
	}
	return false
}

// SourceAccessType describes how a prepared source is reached: direct sources
// are staged into the workspace, via-MCP sources register an external tool server.
type SourceAccessType string

const (
	AccessDirect SourceAccessType = "direct"
	AccessViaMCP SourceAccessType = "via_mcp"
)

// AccessTypeFor returns the access type for a source type. File-backed types
// are staged directly; database types go through an MCP tool server.
func AccessTypeFor(t SourceType) SourceAccessType {
	switch t {
	case SourceTypeRelationalDB:
		return AccessViaMCP
	default:
		return AccessDirect
	}
}

// Package prompts holds the compiled-in prompt templates used for profile
// enrichment. Templates are keyed by task and parameterized with simple
// {placeholder} markers.
package prompts

import (
	"fmt"
	"strings"
)

// Template keys, one per profiling task.
const (
	KeyProfileCSV          = "profile_csv"
	KeyProfileExcel        = "profile_excel"
	KeyProfileImage        = "profile_image"
	KeyProfileRelationalDB = "profile_relationaldb"
	KeyProfileIrregular    = "profile_irregular"
)

const profileCSVTemplate = `You are a data analyst. Below is the extracted schema of a tabular data source, including column names, inferred types, sample values, and a raw snippet of the leading rows.

{data}

Write a semantic profile of this data source. Respond with JSON only, no prose, in this shape:
{
  "name": "<short snake_case name for the dataset>",
  "description": "<one paragraph describing what this data represents>",
  "columns": [
    {"name": "<column name exactly as given>", "description": "<what this column holds>"}
  ]
}

Only include columns that appear in the schema above. Do not invent columns.`

const profileExcelTemplate = `You are a data analyst. Below is the extracted schema of a spreadsheet with one or more sheets. Each sheet lists its columns, inferred types, sample values, and a raw snippet of its leading rows.

{data}

Write a semantic profile of this spreadsheet. Respond with JSON only, no prose, in this shape:
{
  "name": "<short snake_case name for the workbook>",
  "description": "<one paragraph describing what this workbook represents>",
  "tables": [
    {
      "name": "<sheet name exactly as given>",
      "description": "<what this sheet holds>",
      "columns": [
        {"name": "<column name exactly as given>", "description": "<what this column holds>"}
      ]
    }
  ]
}

Only include sheets and columns that appear in the schema above. Omit sheets that contain no usable data.`

const profileImageTemplate = `You are a data analyst. The attached image is a data artifact (a chart, a table screenshot, a diagram, or a scanned document).

Describe what the image contains. Respond with JSON only, no prose, in this shape:
{
  "name": "<short snake_case name for the artifact>",
  "description": "<one paragraph describing what the image shows>",
  "details": "<any structured facts readable from the image: axis labels, column headers, totals, legends>"
}`

const profileRelationalDBTemplate = `You are a data analyst. Below is the introspected schema of a relational database: its tables, their columns with declared types, row counts, and sampled rows.

{data}

Write a semantic profile of this database. Respond with JSON only, no prose, in this shape:
{
  "name": "<short snake_case name for the database>",
  "description": "<one paragraph describing what this database represents>",
  "tables": [
    {
      "name": "<table name exactly as given>",
      "description": "<what this table holds>",
      "columns": [
        {"name": "<column name exactly as given>", "description": "<what this column holds>"}
      ]
    }
  ]
}

Only include tables and columns that appear in the schema above.`

const profileIrregularTemplate = `You are a data analyst. The table below was read from a file whose header row could not be located: most column names are missing placeholders. Here are its leading rows exactly as read, with a leading index column:

{raw_snippet_data}

Decide whether a regular table can be recovered from this data. Respond with JSON only, no prose, in this shape:
{
  "is_extractable_table": <true or false>,
  "reasoning": "<one sentence explaining the judgment>",
  "row_start_index": <index of the row that holds the real column headers, or null>,
  "col_ranges": [<zero-based first column>, <zero-based last column, inclusive>]
}

If the data has no recoverable tabular structure, set is_extractable_table to false and leave the other fields null.`

var templates = map[string]string{
	KeyProfileCSV:          profileCSVTemplate,
	KeyProfileExcel:        profileExcelTemplate,
	KeyProfileImage:        profileImageTemplate,
	KeyProfileRelationalDB: profileRelationalDBTemplate,
	KeyProfileIrregular:    profileIrregularTemplate,
}

// Render expands the template registered under key with the given placeholder
// values. Placeholders are written as {name} in the template text.
func Render(key string, vars map[string]string) (string, error) {
	tmpl, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("unknown prompt template %q", key)
	}

	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl), nil
}

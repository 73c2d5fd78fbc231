package extract

import (
	"strconv"
	"strings"
	"time"
)

// Type labels assigned to columns. Uppercased, matching how declared database
// types are reported by the introspector.
const (
	TypeInteger   = "INTEGER"
	TypeFloat     = "FLOAT"
	TypeBoolean   = "BOOLEAN"
	TypeDate      = "DATE"
	TypeTimestamp = "TIMESTAMP"
	TypeText      = "TEXT"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02.01.2006",
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
}

// InferTypes assigns a coarse type label per column from the sampled rows.
// Empty cells are ignored; a column with no populated cells is TEXT. More
// specific types win: integer over float, date over timestamp over text.
func InferTypes(columns []string, rows [][]string) []string {
	out := make([]string, len(columns))
	for i := range out {
		out[i] = TypeText
	}

	for col := range columns {
		var seen bool
		allInt, allFloat, allBool, allDate, allTS := true, true, true, true, true

		for _, r := range rows {
			if col >= len(r) {
				continue
			}
			v := strings.TrimSpace(r[col])
			if v == "" {
				continue
			}
			seen = true

			if allInt {
				if _, err := strconv.ParseInt(v, 10, 64); err != nil {
					allInt = false
				}
			}
			if allFloat {
				if _, err := strconv.ParseFloat(v, 64); err != nil {
					allFloat = false
				}
			}
			if allBool && !isBoolLoose(v) {
				allBool = false
			}
			if allDate && !matchesLayout(v, dateLayouts) {
				allDate = false
			}
			if allTS && !matchesLayout(v, timestampLayouts) {
				allTS = false
			}
		}

		if !seen {
			continue
		}
		switch {
		case allBool:
			out[col] = TypeBoolean
		case allInt:
			out[col] = TypeInteger
		case allFloat:
			out[col] = TypeFloat
		case allDate:
			out[col] = TypeDate
		case allTS:
			out[col] = TypeTimestamp
		}
	}

	return out
}

func isBoolLoose(v string) bool {
	switch strings.ToLower(v) {
	case "true", "false", "yes", "no", "y", "n", "t", "f":
		return true
	}
	return false
}

func matchesLayout(v string, layouts []string) bool {
	for _, layout := range layouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

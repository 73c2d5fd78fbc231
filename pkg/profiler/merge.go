package profiler

import (
	"github.com/ekaya-inc/profile-engine/pkg/models"
)

// profileResponse is the JSON shape the model is asked to return. Single
// table sources fill Columns, multi-table sources fill Tables, and image
// sources fill Details.
type profileResponse struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Columns     []columnInfo    `json:"columns"`
	Tables      []tableResponse `json:"tables"`
	Details     string          `json:"details"`
}

type tableResponse struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Columns     []columnInfo `json:"columns"`
}

type columnInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// mergeSingle combines a model response with a single-table schema. The
// name and structural facts always come from the extracted schema; the model
// only contributes descriptions.
func mergeSingle(resp profileResponse, schema *models.SourceSchema) *models.Profile {
	return &models.Profile{
		Name:        schema.Name,
		Description: resp.Description,
		Columns:     schema.Columns,
	}
}

// mergeTables combines a model response with a multi-table schema. The
// response's table names select which original tables appear in the profile;
// names the schema does not contain are dropped, and each kept table carries
// its original columns verbatim.
func mergeTables(resp profileResponse, schema *models.SourceSchema) *models.Profile {
	original := make(map[string]models.TableSchema, len(schema.Tables))
	for _, t := range schema.Tables {
		original[t.Name] = t
	}

	profile := &models.Profile{
		Name:        schema.Name,
		Description: resp.Description,
	}

	for _, rt := range resp.Tables {
		orig, ok := original[rt.Name]
		if !ok {
			continue
		}
		profile.Tables = append(profile.Tables, models.ProfileTable{
			Name:              orig.Name,
			Description:       rt.Description,
			Columns:           orig.Columns,
			IrregularJudgment: orig.IrregularJudgment,
		})
	}
	return profile
}

package sources

import (
	"path/filepath"
	"strings"

	"github.com/ekaya-inc/profile-engine/pkg/models"
)

var extensionTypes = map[string]models.SourceType{
	".csv":    models.SourceTypeCSV,
	".tsv":    models.SourceTypeCSV,
	".xlsx":   models.SourceTypeExcel,
	".xlsm":   models.SourceTypeExcel,
	".xls":    models.SourceTypeExcel,
	".json":   models.SourceTypeJSON,
	".jsonl":  models.SourceTypeJSON,
	".txt":    models.SourceTypeText,
	".md":     models.SourceTypeText,
	".png":    models.SourceTypeImage,
	".jpg":    models.SourceTypeImage,
	".jpeg":   models.SourceTypeImage,
	".gif":    models.SourceTypeImage,
	".webp":   models.SourceTypeImage,
	".bmp":    models.SourceTypeImage,
	".db":     models.SourceTypeRelationalDB,
	".sqlite": models.SourceTypeRelationalDB,
}

var dsnSchemes = []string{
	"postgres://",
	"postgresql://",
	"mysql://",
	"sqlserver://",
	"mssql://",
	"sqlite://",
	"sqlite3://",
}

// DetectType classifies an endpoint. File extensions win, DSN schemes come
// second, everything else is "other" and gets staged without profiling.
func DetectType(endpoint string) models.SourceType {
	trimmed := strings.SplitN(endpoint, "?", 2)[0]
	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(trimmed))]; ok {
		return t
	}

	lowered := strings.ToLower(endpoint)
	for _, scheme := range dsnSchemes {
		if strings.HasPrefix(lowered, scheme) {
			return models.SourceTypeRelationalDB
		}
	}
	return models.SourceTypeOther
}

package sources

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/ekaya-inc/profile-engine/pkg/models"
)

// maxNameLength bounds derived source names.
const maxNameLength = 50

// Sanitize turns an arbitrary string into a safe identifier: only word
// characters survive, the first character is forced to a letter or
// underscore, and the result is capped at maxNameLength.
func Sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := b.String()
	if out == "" || strings.Trim(out, "_") == "" {
		return "unknown"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	if len(out) > maxNameLength {
		out = out[:maxNameLength]
	}
	return out
}

// DeriveName produces a stable identifier for an endpoint. Files use their
// stem, database DSNs combine scheme and database name with credentials and
// query parameters stripped, URLs use their last path segment or domain, and
// anything else falls back to a sanitized prefix of the endpoint itself.
func DeriveName(endpoint string, sourceType models.SourceType) string {
	if sourceType == models.SourceTypeRelationalDB {
		return deriveDSNName(endpoint)
	}
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return deriveURLName(endpoint)
	}

	stem := strings.TrimSuffix(filepath.Base(endpoint), filepath.Ext(endpoint))
	if stem != "" && stem != "." && stem != string(filepath.Separator) {
		return Sanitize(stem)
	}
	return Sanitize(endpoint)
}

func deriveDSNName(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return Sanitize(dsn)
	}

	db := strings.Trim(u.Path, "/")
	db = strings.TrimSuffix(db, filepath.Ext(db))
	if db == "" {
		return Sanitize(u.Scheme)
	}
	return Sanitize(u.Scheme + "_" + path.Base(db))
}

func deriveURLName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return Sanitize(raw)
	}

	segment := path.Base(u.Path)
	if segment != "" && segment != "/" && segment != "." {
		return Sanitize(strings.TrimSuffix(segment, path.Ext(segment)))
	}
	return Sanitize(u.Hostname())
}

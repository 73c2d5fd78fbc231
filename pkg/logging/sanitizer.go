package logging

import (
	"regexp"
)

// RedactedText is the replacement text for sensitive data.
const RedactedText = "[REDACTED]"

var (
	// Matches password=xxx, pwd=xxx, pass=xxx in key/value style connection strings.
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// Matches user:pass@host credentials embedded in a DSN URL.
	dsnCredentialsPattern = regexp.MustCompile(`://[^:/@]+:[^@]+@`)
)

// SanitizeDSN removes credentials from a connection string before it is
// logged or embedded in a human-readable description. The original DSN keeps
// its credentials for the actual connection; only the logged form is redacted.
func SanitizeDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	sanitized := passwordPattern.ReplaceAllString(dsn, "${1}="+RedactedText)
	return dsnCredentialsPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@")
}

// SanitizeError redacts credential material that database drivers sometimes
// echo back in error messages.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	sanitized := passwordPattern.ReplaceAllString(err.Error(), "${1}="+RedactedText)
	return dsnCredentialsPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@")
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

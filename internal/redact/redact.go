// Package redact scrubs sensitive values from strings before they are
// logged. Errors bubbling up from the database or auth layers can embed
// connection strings, credentials, tokens or addresses; log lines must
// never carry them verbatim.
package redact

import "regexp"

// Redaction placeholders.
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	TokenPlaceholder      = "[REDACTED_TOKEN]"
	EmailPlaceholder      = "[REDACTED_EMAIL]"
	SQLPlaceholder        = "[REDACTED_SQL]"
)

var rules = []struct {
	pattern     *regexp.Regexp
	placeholder string
}{
	// Connection strings with inline credentials
	{regexp.MustCompile(`(?i)(postgres|postgresql|mysql)://[^@\s]+@`), CredentialPlaceholder + "@"},

	// Password-bearing fragments
	{regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]['"]?)[^'"&\s]{3,}`), "$1$2" + CredentialPlaceholder},

	// JWTs (three base64url segments starting with the standard header)
	{regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`), TokenPlaceholder},

	// Email addresses
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), EmailPlaceholder},

	// SQL statement fragments echoed back by the driver
	{regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE)\s[\s\w,*()='"$.]+\b(FROM|INTO|SET|WHERE)\b[\s\w,*()='"$.]*`), SQLPlaceholder},
}

// String scrubs all recognized sensitive patterns from s.
func String(s string) string {
	for _, rule := range rules {
		s = rule.pattern.ReplaceAllString(s, rule.placeholder)
	}
	return s
}

// Error scrubs err's message. Returns the empty string for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

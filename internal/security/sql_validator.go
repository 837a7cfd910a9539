package security

import (
	"regexp"
	"strings"
)

// sqlDangerousPatterns rejects statement chaining, comment smuggling and
// SQLite escape hatches before a generated statement reaches the store.
var sqlDangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i);\s*DROP\s+`),
	regexp.MustCompile(`(?i);\s*DELETE\s+`),
	regexp.MustCompile(`(?i);\s*INSERT\s+`),
	regexp.MustCompile(`(?i);\s*UPDATE\s+`),
	regexp.MustCompile(`(?i);\s*ALTER\s+`),
	regexp.MustCompile(`(?i);\s*CREATE\s+`),
	regexp.MustCompile(`(?i);\s*REPLACE\s+`),
	regexp.MustCompile(`(?i);\s*VACUUM\b`),
	regexp.MustCompile(`(?i)\bATTACH\s+DATABASE\b`),
	regexp.MustCompile(`(?i)\bDETACH\s+DATABASE\b`),
	regexp.MustCompile(`(?i)\bPRAGMA\b`),
	regexp.MustCompile(`(?i)\bLOAD_EXTENSION\s*\(`),
	regexp.MustCompile(`(?i)\bUNION\s+SELECT\b`),
	regexp.MustCompile(`'.*--`),  // comment injection after string literal
	regexp.MustCompile(`;\s*--`), // statement terminator + comment
	regexp.MustCompile(`/\*.*?\*/`),
	regexp.MustCompile(`(?i)\bor\s+1\s*=\s*1\b`),
	regexp.MustCompile(`(?i)\band\s+1\s*=\s*1\b`),
	regexp.MustCompile(`(?i)\bor\s+'1'\s*=\s*'1'`),
	regexp.MustCompile(`(?i)\band\s+'1'\s*=\s*'1'`),
}

// writeVerbs may not appear anywhere in a read query. None of the store's
// table or column names collide with them.
var writeVerbs = regexp.MustCompile(`(?i)\b(INSERT|UPDATE|DELETE|DROP|ALTER|TRUNCATE|GRANT|REVOKE)\b`)

// SQLValidator validates generated SQL for injection and disallowed operations
type SQLValidator struct{}

func NewSQLValidator() *SQLValidator {
	return &SQLValidator{}
}

// Validate returns a rejection reason, or empty string when sql is a
// single read-only SELECT statement.
func (v *SQLValidator) Validate(sql string) string {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return "statement is empty"
	}

	if !strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		return "only SELECT statements are allowed"
	}

	// One statement only: a single trailing semicolon is tolerated,
	// anything after an interior semicolon is chaining.
	body := strings.TrimRight(trimmed, "; \t\r\n")
	if strings.Contains(body, ";") {
		return "multiple statements are not allowed"
	}

	for _, pattern := range sqlDangerousPatterns {
		if pattern.MatchString(trimmed) {
			return "injection pattern detected: " + pattern.String()
		}
	}

	if m := writeVerbs.FindString(body); m != "" {
		return "write operation is not allowed: " + strings.ToUpper(m)
	}

	return ""
}

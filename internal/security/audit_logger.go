package security

import (
	"crypto/sha256"
	"fmt"

	"github.com/rs/zerolog/log"
)

// AuditLogger logs security-relevant events with hashed identifiers
type AuditLogger struct {
	enabled bool
}

func NewAuditLogger(enabled bool) *AuditLogger {
	return &AuditLogger{enabled: enabled}
}

// LogQuestion records one pipeline run triggered by a chat question.
func (a *AuditLogger) LogQuestion(question, sqlQuery string, success bool, errorKind string, elapsedMs int64) {
	if !a.enabled {
		return
	}
	questionHash := hashStr(question)[:16]
	sqlHash := ""
	if sqlQuery != "" {
		sqlHash = hashStr(sqlQuery)[:16]
	}

	evt := log.Info().
		Str("event", "question_audit").
		Str("question_hash", questionHash).
		Int("question_len", len(question)).
		Str("sql_hash", sqlHash).
		Bool("success", success).
		Int64("elapsed_ms", elapsedMs)

	if errorKind != "" {
		evt = evt.Str("error_kind", errorKind)
	}
	evt.Msg("audit")
}

// LogDirectQuery records a raw SQL execution through the operator API.
func (a *AuditLogger) LogDirectQuery(sql, apiKey string, elapsedMs int64, rowCount int, success bool, errMsg string) {
	if !a.enabled {
		return
	}
	sqlHash := hashStr(sql)[:16]
	keyHash := hashStr(apiKey)[:16]

	evt := log.Info().
		Str("event", "query_audit").
		Str("sql_hash", sqlHash).
		Str("api_key_hash", keyHash).
		Int64("execution_time_ms", elapsedMs).
		Int("row_count", rowCount).
		Bool("success", success)

	if errMsg != "" {
		evt = evt.Str("error", errMsg)
	}
	evt.Msg("audit")
}

func hashStr(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", h)
}

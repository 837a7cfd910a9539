package models

// GenerationResult is the outcome of running one question through the
// question-answering pipeline. One is produced per question; it is never
// persisted.
//
// On failure FinalAnswer carries the uniform user-facing message and
// ErrorKind/ErrorMessage the operator-facing detail. Transports must
// only ever show FinalAnswer to end users.
type GenerationResult struct {
	Success         bool   `json:"success"`
	SQLQuery        string `json:"sql_query,omitempty"`
	SuggestedAnswer string `json:"suggested_answer,omitempty"`
	ActualResult    any    `json:"actual_result,omitempty"`
	FinalAnswer     string `json:"final_answer"`
	ErrorKind       string `json:"error_kind,omitempty"`
	ErrorMessage    string `json:"error_message,omitempty"`
	ElapsedMs       int64  `json:"elapsed_ms"`
}

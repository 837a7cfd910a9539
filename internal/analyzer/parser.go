package analyzer

import "strings"

// ParsedResponse is a completion split into its two segments.
type ParsedResponse struct {
	SQLQuery        string
	SuggestedAnswer string
}

// ParseResponse splits a raw completion into the SQL statement and the
// model's own numeric suggestion. The output contract with the model is
// two free-text segments separated by one blank line: the statement
// first, the suggested answer second. The suggestion is kept for
// operator diagnostics only; the answer the user sees always comes from
// executing the statement.
func ParseResponse(raw string) (ParsedResponse, error) {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.TrimSpace(text)

	parts := strings.SplitN(text, "\n\n", 2)
	if len(parts) < 2 {
		return ParsedResponse{}, NewError(KindMalformedResponse, "completion has no blank-line separator")
	}

	sqlQuery := strings.TrimSpace(parts[0])
	suggested := strings.TrimSpace(parts[1])
	if sqlQuery == "" || suggested == "" {
		return ParsedResponse{}, NewError(KindMalformedResponse, "completion has an empty segment")
	}

	if err := validateSelect(sqlQuery); err != nil {
		return ParsedResponse{}, err
	}

	return ParsedResponse{SQLQuery: sqlQuery, SuggestedAnswer: suggested}, nil
}

// validateSelect applies the shape check: the statement must begin with
// SELECT and name a FROM clause. Deeper safety checks are the SQL
// validator's job.
func validateSelect(sqlQuery string) error {
	lower := strings.ToLower(sqlQuery)
	if !strings.HasPrefix(lower, "select ") {
		return Errorf(KindNotASelect, "statement does not begin with SELECT: %s", truncate(sqlQuery, 120))
	}
	if !strings.Contains(lower, "from ") {
		return Errorf(KindNotASelect, "statement has no FROM clause: %s", truncate(sqlQuery, 120))
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

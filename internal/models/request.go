package models

// AskRequest for POST /api/v1/ask
type AskRequest struct {
	Question string `json:"question"`
}

// QueryRequest for POST /api/v1/query (operator direct SQL)
type QueryRequest struct {
	SQL       string `json:"sql"`
	TimeoutMs int    `json:"timeout_ms"`
}

func (r *QueryRequest) SetDefaults() {
	if r.TimeoutMs == 0 {
		r.TimeoutMs = 30000
	}
	if r.TimeoutMs < 1000 {
		r.TimeoutMs = 1000
	}
	if r.TimeoutMs > 120000 {
		r.TimeoutMs = 120000
	}
}

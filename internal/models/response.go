package models

import (
	"encoding/json"
	"net/http"
)

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// AskResponse is returned by POST /api/v1/ask
type AskResponse struct {
	Status          string `json:"status"`
	Question        string `json:"question"`
	SQLQuery        string `json:"sql_query,omitempty"`
	SuggestedAnswer string `json:"suggested_answer,omitempty"`
	Answer          string `json:"answer"`
	ErrorKind       string `json:"error_kind,omitempty"`
	ElapsedMs       int64  `json:"elapsed_ms"`
}

// QueryResponse is returned by POST /api/v1/query
type QueryResponse struct {
	Status          string           `json:"status"`
	Data            []map[string]any `json:"data"`
	Columns         []string         `json:"columns"`
	RowCount        int              `json:"row_count"`
	ExecutionTimeMs int64            `json:"execution_time_ms"`
}

// StoreStats summarizes the ingested corpus for /stats style surfaces.
type StoreStats struct {
	VideosCount    int64   `json:"videos_count"`
	SnapshotsCount int64   `json:"snapshots_count"`
	UniqueCreators int64   `json:"unique_creators"`
	TotalViews     int64   `json:"total_views"`
	AvgViews       float64 `json:"avg_views"`
	MaxViews       int64   `json:"max_views"`
}

// ErrorResponse is the uniform error envelope for the HTTP API.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
}

func WriteError(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, ErrorResponse{
		Status:  "error",
		Message: message,
		Code:    code,
	})
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

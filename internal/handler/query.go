package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vidstats/vidstats/internal/models"
	"github.com/vidstats/vidstats/internal/security"
	"github.com/vidstats/vidstats/internal/service"
)

// QueryHandler handles direct SQL query execution for operators
type QueryHandler struct {
	store       *service.Store
	sqlVal      *security.SQLValidator
	auditLogger *security.AuditLogger
}

func NewQueryHandler(store *service.Store, sqlVal *security.SQLValidator, auditLogger *security.AuditLogger) *QueryHandler {
	return &QueryHandler{
		store:       store,
		sqlVal:      sqlVal,
		auditLogger: auditLogger,
	}
}

// Execute handles POST /api/v1/query
func (h *QueryHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.SetDefaults()

	// SQL validation
	if errMsg := h.sqlVal.Validate(req.SQL); errMsg != "" {
		models.WriteError(w, http.StatusBadRequest, "SQL validation failed: "+errMsg)
		return
	}

	apiKey := r.Header.Get("X-API-Key")
	start := time.Now()

	data, cols, err := h.store.ExecuteRows(r.Context(), req.SQL, req.TimeoutMs)
	execMs := time.Since(start).Milliseconds()
	if err != nil {
		h.auditLogger.LogDirectQuery(req.SQL, apiKey, execMs, 0, false, err.Error())
		models.WriteError(w, http.StatusInternalServerError, "query execution failed: "+err.Error())
		return
	}

	h.auditLogger.LogDirectQuery(req.SQL, apiKey, execMs, len(data), true, "")

	models.WriteJSON(w, http.StatusOK, models.QueryResponse{
		Status:          "success",
		Data:            data,
		Columns:         cols,
		RowCount:        len(data),
		ExecutionTimeMs: execMs,
	})
}

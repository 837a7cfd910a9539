package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vidstats/vidstats/internal/models"
)

// QuestionAnswerer runs one natural-language question through the
// generation pipeline.
type QuestionAnswerer interface {
	AnswerQuestion(ctx context.Context, question string) models.GenerationResult
}

// AskHandler handles POST /api/v1/ask
type AskHandler struct {
	analyzer QuestionAnswerer
}

func NewAskHandler(analyzer QuestionAnswerer) *AskHandler {
	return &AskHandler{analyzer: analyzer}
}

// Ask handles POST /api/v1/ask. Pipeline failures are not HTTP errors:
// the response always carries a displayable answer, with the error kind
// alongside for operators.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		models.WriteError(w, http.StatusBadRequest, "question is required")
		return
	}

	result := h.analyzer.AnswerQuestion(r.Context(), req.Question)

	status := "success"
	if !result.Success {
		status = "error"
	}
	models.WriteJSON(w, http.StatusOK, models.AskResponse{
		Status:          status,
		Question:        req.Question,
		SQLQuery:        result.SQLQuery,
		SuggestedAnswer: result.SuggestedAnswer,
		Answer:          result.FinalAnswer,
		ErrorKind:       result.ErrorKind,
		ElapsedMs:       result.ElapsedMs,
	})
}

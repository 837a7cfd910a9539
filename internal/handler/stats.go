package handler

import (
	"net/http"

	"github.com/vidstats/vidstats/internal/models"
	"github.com/vidstats/vidstats/internal/service"
)

// StatsHandler summarizes the ingested corpus
type StatsHandler struct {
	store *service.Store
}

func NewStatsHandler(store *service.Store) *StatsHandler {
	return &StatsHandler{store: store}
}

// Stats handles GET /api/v1/stats
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.store.Stats(r.Context())
	if err != nil {
		models.WriteError(w, http.StatusInternalServerError, "stats unavailable: "+err.Error())
		return
	}
	models.WriteJSON(w, http.StatusOK, st)
}

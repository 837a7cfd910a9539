package handler

import (
	"net/http"

	"github.com/vidstats/vidstats/internal/models"
	"github.com/vidstats/vidstats/internal/service"
)

// SchemaHandler exposes the introspected store layout, row counts and
// sample rows included, for operators checking what the model sees.
type SchemaHandler struct {
	store *service.Store
}

func NewSchemaHandler(store *service.Store) *SchemaHandler {
	return &SchemaHandler{store: store}
}

// Schema handles GET /api/v1/schema
func (h *SchemaHandler) Schema(w http.ResponseWriter, r *http.Request) {
	models.WriteJSON(w, http.StatusOK, h.store.BuildSchema(r.Context()))
}

// Tables handles GET /api/v1/tables: just the table names and row
// counts, without columns or sample rows.
func (h *SchemaHandler) Tables(w http.ResponseWriter, r *http.Request) {
	schema := h.store.BuildSchema(r.Context())

	tables := make([]models.TableSummary, 0, len(schema.Tables))
	for _, t := range schema.Tables {
		tables = append(tables, models.TableSummary{Name: t.Name, RowCount: t.RowCount})
	}
	models.WriteJSON(w, http.StatusOK, map[string]any{
		"tables": tables,
		"count":  len(tables),
	})
}

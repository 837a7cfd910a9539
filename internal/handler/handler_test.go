package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vidstats/vidstats/internal/analyzer"
	"github.com/vidstats/vidstats/internal/handler"
	"github.com/vidstats/vidstats/internal/models"
	"github.com/vidstats/vidstats/internal/security"
	"github.com/vidstats/vidstats/internal/service"
)

const handlerFixture = `{
  "videos": [
    {"id": "v-1", "views_count": 100000, "likes_count": 3200, "creator_id": "alice"},
    {"id": "v-2", "views_count": 50000, "likes_count": 12, "creator_id": "bob"}
  ]
}`

type stubAnswerer struct {
	result models.GenerationResult
}

func (s *stubAnswerer) AnswerQuestion(context.Context, string) models.GenerationResult {
	return s.result
}

func newLoadedStore(t *testing.T) *service.Store {
	t.Helper()

	ctx := context.Background()
	store := service.NewStore(filepath.Join(t.TempDir(), "stats.db"))
	if err := store.Bootstrap(ctx); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if _, err := service.NewLoader(store).Load(ctx, strings.NewReader(handlerFixture)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return store
}

// ─── Ask ──────────────────────────────────────────────────────────────────────

func TestAskSuccess(t *testing.T) {
	h := handler.NewAskHandler(&stubAnswerer{result: models.GenerationResult{
		Success:         true,
		SQLQuery:        "SELECT SUM(views_count) FROM videos",
		SuggestedAnswer: "150000",
		FinalAnswer:     "150 000",
		ElapsedMs:       12,
	}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask",
		strings.NewReader(`{"question": "сколько всего просмотров?"}`))
	rr := httptest.NewRecorder()
	h.Ask(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp models.AskResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("Status = %q, want success", resp.Status)
	}
	if resp.Answer != "150 000" {
		t.Errorf("Answer = %q, want %q", resp.Answer, "150 000")
	}
	if resp.SQLQuery == "" {
		t.Error("SQLQuery missing from response")
	}
}

func TestAskFailureStaysDisplayable(t *testing.T) {
	h := handler.NewAskHandler(&stubAnswerer{result: models.GenerationResult{
		Success:      false,
		FinalAnswer:  analyzer.FallbackAnswer,
		ErrorKind:    string(analyzer.KindGeneration),
		ErrorMessage: "completion failed: api unreachable",
	}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask",
		strings.NewReader(`{"question": "сколько всего просмотров?"}`))
	rr := httptest.NewRecorder()
	h.Ask(rr, req)

	// A pipeline failure is not an HTTP failure.
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp models.AskResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "error" {
		t.Errorf("Status = %q, want error", resp.Status)
	}
	if resp.Answer != analyzer.FallbackAnswer {
		t.Errorf("Answer = %q, want the fallback", resp.Answer)
	}
	if resp.ErrorKind == "" {
		t.Error("ErrorKind missing from failure response")
	}
}

func TestAskEmptyQuestion(t *testing.T) {
	h := handler.NewAskHandler(&stubAnswerer{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask",
		strings.NewReader(`{"question": "   "}`))
	rr := httptest.NewRecorder()
	h.Ask(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestAskBadJSON(t *testing.T) {
	h := handler.NewAskHandler(&stubAnswerer{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(`{`))
	rr := httptest.NewRecorder()
	h.Ask(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

// ─── Direct query ─────────────────────────────────────────────────────────────

func TestQueryExecute(t *testing.T) {
	store := newLoadedStore(t)
	h := handler.NewQueryHandler(store, security.NewSQLValidator(), security.NewAuditLogger(false))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query",
		strings.NewReader(`{"sql": "SELECT video_id FROM videos ORDER BY video_id"}`))
	rr := httptest.NewRecorder()
	h.Execute(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var resp models.QueryResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", resp.RowCount)
	}
	if len(resp.Columns) != 1 || resp.Columns[0] != "video_id" {
		t.Errorf("Columns = %v", resp.Columns)
	}
}

func TestQueryRejectsWrites(t *testing.T) {
	store := newLoadedStore(t)
	h := handler.NewQueryHandler(store, security.NewSQLValidator(), security.NewAuditLogger(false))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query",
		strings.NewReader(`{"sql": "DELETE FROM videos"}`))
	rr := httptest.NewRecorder()
	h.Execute(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}

	// Nothing was deleted.
	n, err := store.QueryScalar(context.Background(), `SELECT COUNT(*) FROM videos`)
	if err != nil {
		t.Fatalf("QueryScalar: %v", err)
	}
	if n != int64(2) {
		t.Errorf("videos after rejected delete = %v, want 2", n)
	}
}

// ─── Schema and stats ─────────────────────────────────────────────────────────

func TestSchemaEndpoint(t *testing.T) {
	store := newLoadedStore(t)
	h := handler.NewSchemaHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schema", nil)
	rr := httptest.NewRecorder()
	h.Schema(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var schema models.Schema
	if err := json.NewDecoder(rr.Body).Decode(&schema); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(schema.Tables) != 2 {
		t.Errorf("tables = %d, want 2", len(schema.Tables))
	}
}

func TestStatsEndpoint(t *testing.T) {
	store := newLoadedStore(t)
	h := handler.NewStatsHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	rr := httptest.NewRecorder()
	h.Stats(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var st models.StoreStats
	if err := json.NewDecoder(rr.Body).Decode(&st); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if st.VideosCount != 2 {
		t.Errorf("VideosCount = %d, want 2", st.VideosCount)
	}
	if st.TotalViews != 150000 {
		t.Errorf("TotalViews = %d, want 150000", st.TotalViews)
	}
}

// ─── Health ───────────────────────────────────────────────────────────────────

func TestHealthHealthy(t *testing.T) {
	store := newLoadedStore(t)
	h := handler.NewHealthHandler(store, true)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	h.Health(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp models.HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("Status = %q, want healthy", resp.Status)
	}
	if resp.Checks["store"] != "ok" {
		t.Errorf("store check = %q, want ok", resp.Checks["store"])
	}
}

func TestHealthDegraded(t *testing.T) {
	missing := service.NewStore(filepath.Join(t.TempDir(), "absent.db"))
	h := handler.NewHealthHandler(missing, false)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	h.Health(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	var resp models.HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "degraded" {
		t.Errorf("Status = %q, want degraded", resp.Status)
	}
}

package service_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/vidstats/vidstats/internal/service"
)

const fixture = `{
  "videos": [
    {
      "id": "v-1",
      "video_created_at": "2025-11-28 10:00:00",
      "views_count": 150000,
      "likes_count": 3200,
      "reports_count": 1,
      "comments_count": 87,
      "creator_id": "alice",
      "created_at": "2025-11-28 10:05:00",
      "updated_at": "2025-11-29 10:05:00",
      "snapshots": [
        {
          "id": "s-1",
          "views_count": 147500,
          "likes_count": 3100,
          "delta_views_count": 2500,
          "delta_likes_count": 100,
          "created_at": "2025-11-28 22:00:00"
        },
        {
          "views_count": 150000,
          "likes_count": 3200,
          "delta_views_count": 500,
          "created_at": "2025-11-29 10:00:00"
        }
      ]
    },
    {
      "id": "v-2",
      "video_created_at": "2025-12-01 08:30:00",
      "views_count": 999,
      "likes_count": 12,
      "creator_id": "alice"
    },
    {
      "id": "v-3",
      "video_created_at": "2025-12-02 16:45:00",
      "views_count": 2500000,
      "likes_count": 45000,
      "comments_count": 440,
      "creator_id": "bob"
    },
    {
      "views_count": 5,
      "creator_id": "mallory"
    }
  ]
}`

func newTestStore(t *testing.T) *service.Store {
	t.Helper()

	store := service.NewStore(filepath.Join(t.TempDir(), "stats.db"))
	if err := store.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	return store
}

func loadFixture(t *testing.T, store *service.Store) service.LoadStats {
	t.Helper()

	stats, err := service.NewLoader(store).Load(context.Background(), strings.NewReader(fixture))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return stats
}

// ─── Loader ─────────────────────────────────────────────────────────────────

func TestLoaderCounts(t *testing.T) {
	store := newTestStore(t)
	stats := loadFixture(t, store)

	if stats.TotalVideos != 4 {
		t.Errorf("TotalVideos = %d, want 4", stats.TotalVideos)
	}
	if stats.SuccessfulVideos != 3 {
		t.Errorf("SuccessfulVideos = %d, want 3", stats.SuccessfulVideos)
	}
	// The record without an id must be skipped, not abort the run.
	if stats.FailedVideos != 1 {
		t.Errorf("FailedVideos = %d, want 1", stats.FailedVideos)
	}
	if stats.TotalSnapshots != 2 {
		t.Errorf("TotalSnapshots = %d, want 2", stats.TotalSnapshots)
	}
}

func TestLoaderBackfillsSnapshotIDs(t *testing.T) {
	store := newTestStore(t)
	loadFixture(t, store)

	// The fixture has one snapshot without an id; both rows must land
	// with non-empty identifiers.
	n, err := store.QueryScalar(context.Background(),
		`SELECT COUNT(*) FROM snapshots WHERE snapshot_id IS NOT NULL AND snapshot_id != ''`)
	if err != nil {
		t.Fatalf("QueryScalar: %v", err)
	}
	if n != int64(2) {
		t.Errorf("snapshots with ids = %v, want 2", n)
	}
}

func TestLoaderRejectsBadJSON(t *testing.T) {
	store := newTestStore(t)

	_, err := service.NewLoader(store).Load(context.Background(), strings.NewReader("{not json"))
	if err == nil {
		t.Fatal("expected decode error, got nil")
	}
}

// ─── Schema introspection ───────────────────────────────────────────────────

func TestBuildSchema(t *testing.T) {
	store := newTestStore(t)
	loadFixture(t, store)

	schema := store.BuildSchema(context.Background())
	if len(schema.Tables) != 2 {
		t.Fatalf("tables = %d, want 2", len(schema.Tables))
	}

	// Tables come back in name order.
	if schema.Tables[0].Name != "snapshots" || schema.Tables[1].Name != "videos" {
		t.Errorf("table order = [%s %s], want [snapshots videos]",
			schema.Tables[0].Name, schema.Tables[1].Name)
	}

	videos := schema.Tables[1]
	if len(videos.Columns) != 9 {
		t.Errorf("videos columns = %d, want 9", len(videos.Columns))
	}
	if videos.Columns[0].Name != "video_id" || !videos.Columns[0].PrimaryKey {
		t.Errorf("first videos column = %+v, want video_id primary key", videos.Columns[0])
	}
	if videos.RowCount != 3 {
		t.Errorf("videos RowCount = %d, want 3", videos.RowCount)
	}
	if len(videos.SampleRows) != 3 {
		t.Errorf("videos SampleRows = %d, want 3", len(videos.SampleRows))
	}
	if videos.Description == "" {
		t.Error("videos description should not be empty")
	}
	for _, col := range videos.Columns {
		if col.Description == "" {
			t.Errorf("column %s has no description", col.Name)
		}
	}

	snapshots := schema.Tables[0]
	if len(snapshots.Columns) != 12 {
		t.Errorf("snapshots columns = %d, want 12", len(snapshots.Columns))
	}
	if snapshots.RowCount != 2 {
		t.Errorf("snapshots RowCount = %d, want 2", snapshots.RowCount)
	}
}

func TestBuildSchemaDeterministic(t *testing.T) {
	store := newTestStore(t)
	loadFixture(t, store)

	first := store.BuildSchema(context.Background())
	second := store.BuildSchema(context.Background())
	if !reflect.DeepEqual(first, second) {
		t.Error("BuildSchema should return identical results for an unchanged store")
	}
}

func TestBuildSchemaKeepsAccumulatedTables(t *testing.T) {
	store := newTestStore(t)
	loadFixture(t, store)

	// A double quote in the table name defeats the identifier quoting
	// the introspection pragmas use, so this table fails to introspect.
	db, err := sql.Open("sqlite", store.Path())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE "odd""name" (x INTEGER)`); err != nil {
		db.Close()
		t.Fatalf("create table: %v", err)
	}
	db.Close()

	schema := store.BuildSchema(context.Background())

	names := make([]string, 0, len(schema.Tables))
	for _, tbl := range schema.Tables {
		names = append(names, tbl.Name)
	}
	// The broken table is skipped; the healthy ones survive.
	if !reflect.DeepEqual(names, []string{"snapshots", "videos"}) {
		t.Errorf("tables = %v, want [snapshots videos]", names)
	}
}

func TestBuildSchemaMissingStore(t *testing.T) {
	store := service.NewStore(filepath.Join(t.TempDir(), "absent.db"))

	schema := store.BuildSchema(context.Background())
	if schema.Tables == nil {
		t.Fatal("Tables should be an empty slice, not nil")
	}
	if len(schema.Tables) != 0 {
		t.Errorf("tables = %d, want 0 for a missing store", len(schema.Tables))
	}
}

// ─── Query execution ────────────────────────────────────────────────────────

func TestQueryScalar(t *testing.T) {
	store := newTestStore(t)
	loadFixture(t, store)
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		want  any
	}{
		{
			name:  "count",
			query: `SELECT COUNT(*) FROM videos`,
			want:  int64(3),
		},
		{
			name:  "sum for one creator",
			query: `SELECT SUM(views_count) FROM videos WHERE creator_id = 'alice'`,
			want:  int64(150999),
		},
		{
			name:  "first column of a multi-column row",
			query: `SELECT creator_id, COUNT(*) FROM videos GROUP BY creator_id ORDER BY COUNT(*) DESC LIMIT 1`,
			want:  "alice",
		},
		{
			name:  "empty result set",
			query: `SELECT views_count FROM videos WHERE video_id = 'missing'`,
			want:  nil,
		},
		{
			name:  "aggregate over empty set",
			query: `SELECT SUM(views_count) FROM videos WHERE creator_id = 'nobody'`,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.QueryScalar(ctx, tt.query)
			if err != nil {
				t.Fatalf("QueryScalar(%q): %v", tt.query, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("QueryScalar(%q) = %v (%T), want %v", tt.query, got, got, tt.want)
			}
		})
	}
}

func TestQueryScalarBadSQL(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.QueryScalar(context.Background(), `SELECT * FROM no_such_table`); err == nil {
		t.Fatal("expected error for unknown table, got nil")
	}
}

func TestQueryConnectionsAreReadOnly(t *testing.T) {
	store := newTestStore(t)
	loadFixture(t, store)
	ctx := context.Background()

	if _, err := store.QueryScalar(ctx, `DELETE FROM videos`); err == nil {
		t.Error("QueryScalar should not be able to write")
	}
	if _, _, err := store.ExecuteRows(ctx, `UPDATE videos SET views_count = 0`, 5000); err == nil {
		t.Error("ExecuteRows should not be able to write")
	}

	// The store is intact and still readable over the same handle kind.
	n, err := store.QueryScalar(ctx, `SELECT COUNT(*) FROM videos WHERE views_count > 0`)
	if err != nil {
		t.Fatalf("QueryScalar: %v", err)
	}
	if n != int64(3) {
		t.Errorf("videos after rejected writes = %v, want 3", n)
	}
}

func TestExecuteRows(t *testing.T) {
	store := newTestStore(t)
	loadFixture(t, store)

	rows, cols, err := store.ExecuteRows(context.Background(),
		`SELECT video_id, views_count FROM videos ORDER BY views_count DESC`, 5000)
	if err != nil {
		t.Fatalf("ExecuteRows: %v", err)
	}
	if !reflect.DeepEqual(cols, []string{"video_id", "views_count"}) {
		t.Errorf("columns = %v", cols)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0]["video_id"] != "v-3" {
		t.Errorf("top row = %v, want v-3 first", rows[0]["video_id"])
	}
	if rows[0]["views_count"] != int64(2500000) {
		t.Errorf("top views = %v (%T), want 2500000", rows[0]["views_count"], rows[0]["views_count"])
	}
}

// ─── Stats and health ───────────────────────────────────────────────────────

func TestStoreStats(t *testing.T) {
	store := newTestStore(t)
	loadFixture(t, store)

	st, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.VideosCount != 3 {
		t.Errorf("VideosCount = %d, want 3", st.VideosCount)
	}
	if st.SnapshotsCount != 2 {
		t.Errorf("SnapshotsCount = %d, want 2", st.SnapshotsCount)
	}
	if st.UniqueCreators != 2 {
		t.Errorf("UniqueCreators = %d, want 2", st.UniqueCreators)
	}
	if st.TotalViews != 2650999 {
		t.Errorf("TotalViews = %d, want 2650999", st.TotalViews)
	}
	if st.MaxViews != 2500000 {
		t.Errorf("MaxViews = %d, want 2500000", st.MaxViews)
	}
	if st.AvgViews <= 0 {
		t.Errorf("AvgViews = %f, want > 0", st.AvgViews)
	}
}

func TestStoreStatsEmptyStore(t *testing.T) {
	store := newTestStore(t)

	st, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.VideosCount != 0 || st.TotalViews != 0 || st.AvgViews != 0 {
		t.Errorf("empty store stats = %+v, want zeros", st)
	}
}

func TestConnectionCheck(t *testing.T) {
	store := newTestStore(t)
	if err := store.TestConnection(context.Background()); err != nil {
		t.Errorf("TestConnection on a bootstrapped store: %v", err)
	}

	missing := service.NewStore(filepath.Join(t.TempDir(), "absent.db"))
	if err := missing.TestConnection(context.Background()); err == nil {
		t.Error("TestConnection on a missing store should fail")
	}
}

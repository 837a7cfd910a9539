package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/vidstats/vidstats/internal/models"
	"github.com/vidstats/vidstats/internal/observability"
)

// sampleRowLimit caps how many example rows introspection collects per table.
const sampleRowLimit = 3

const storeDDL = `
CREATE TABLE IF NOT EXISTS videos (
    video_id TEXT PRIMARY KEY,
    video_created_at DATETIME,
    views_count INTEGER DEFAULT 0,
    likes_count INTEGER DEFAULT 0,
    reports_count INTEGER DEFAULT 0,
    comments_count INTEGER DEFAULT 0,
    creator_id TEXT,
    created_at DATETIME,
    updated_at DATETIME
);

CREATE TABLE IF NOT EXISTS snapshots (
    snapshot_id TEXT PRIMARY KEY,
    video_id TEXT,
    views_count INTEGER DEFAULT 0,
    likes_count INTEGER DEFAULT 0,
    reports_count INTEGER DEFAULT 0,
    comments_count INTEGER DEFAULT 0,
    delta_views_count INTEGER DEFAULT 0,
    delta_likes_count INTEGER DEFAULT 0,
    delta_reports_count INTEGER DEFAULT 0,
    delta_comments_count INTEGER DEFAULT 0,
    created_at DATETIME,
    updated_at DATETIME,
    FOREIGN KEY (video_id) REFERENCES videos (video_id)
);

CREATE INDEX IF NOT EXISTS idx_videos_creator ON videos(creator_id);
CREATE INDEX IF NOT EXISTS idx_videos_created ON videos(video_created_at);
CREATE INDEX IF NOT EXISTS idx_snapshots_video ON snapshots(video_id);
`

// Store reads and maintains the SQLite corpus of videos and their
// statistics snapshots. It deliberately holds no open handle: every
// operation opens its own connection and closes it when done, so no
// connection state leaks between requests. All query paths open the
// file in read-only mode; only Bootstrap and the Loader write.
type Store struct {
	path string
}

// NewStore returns a store backed by the SQLite file at path. The file
// does not have to exist yet; Bootstrap creates it.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the backing SQLite file.
func (s *Store) Path() string { return s.path }

func (s *Store) openRO() (*sql.DB, error) {
	// mode=ro is only honored inside a file: URI; a bare path with
	// query parameters opens read-write.
	return sql.Open("sqlite", "file:"+s.path+"?mode=ro")
}

func (s *Store) openRW() (*sql.DB, error) {
	return sql.Open("sqlite", s.path)
}

// Bootstrap creates the tables and indexes when they do not exist yet.
// Safe to call on every startup.
func (s *Store) Bootstrap(ctx context.Context) error {
	db, err := s.openRW()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, storeDDL); err != nil {
		return fmt.Errorf("bootstrap store schema: %w", err)
	}

	log.Info().Str("path", s.path).Msg("store ready")
	return nil
}

// BuildSchema introspects the store: user tables in name order, their
// columns merged with the curated descriptions, plus row counts and up
// to sampleRowLimit example rows per table. It never fails; any read
// error degrades to an empty-but-well-formed schema so callers stay
// constructible against a store that does not exist yet.
func (s *Store) BuildSchema(ctx context.Context) models.Schema {
	empty := models.Schema{Tables: []models.TableInfo{}}

	db, err := s.openRO()
	if err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("schema introspection failed")
		return empty
	}
	defer db.Close()

	names, err := listTables(ctx, db)
	if err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("schema introspection failed")
		return empty
	}

	schema := models.Schema{Tables: make([]models.TableInfo, 0, len(names))}
	for _, name := range names {
		table, err := introspectTable(ctx, db, name)
		if err != nil {
			// A broken table loses only itself, not the tables already
			// accumulated.
			log.Warn().Err(err).Str("table", name).Msg("skipping table")
			continue
		}
		schema.Tables = append(schema.Tables, table)
	}

	log.Debug().Int("tables", len(schema.Tables)).Msg("schema introspected")
	return schema
}

func listTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name;`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func introspectTable(ctx context.Context, db *sql.DB, name string) (models.TableInfo, error) {
	table := models.TableInfo{
		Name:        name,
		Description: TableDescription(name),
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%q);`, name))
	if err != nil {
		return table, fmt.Errorf("table_info %s: %w", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			colName string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &dflt, &pk); err != nil {
			return table, fmt.Errorf("scan column of %s: %w", name, err)
		}
		table.Columns = append(table.Columns, models.ColumnInfo{
			Name:        colName,
			Type:        colType,
			NotNull:     notNull != 0,
			PrimaryKey:  pk != 0,
			Description: ColumnDescription(name, colName),
		})
	}
	if err := rows.Err(); err != nil {
		return table, fmt.Errorf("read columns of %s: %w", name, err)
	}

	if err := db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %q;`, name)).Scan(&table.RowCount); err != nil {
		return table, fmt.Errorf("count rows of %s: %w", name, err)
	}

	// Sample rows are best effort; a table that cannot be sampled still
	// contributes its structure.
	samples, err := sampleRows(ctx, db, name, sampleRowLimit)
	if err != nil {
		log.Debug().Err(err).Str("table", name).Msg("sampling failed")
		samples = []map[string]any{}
	}
	table.SampleRows = samples

	return table, nil
}

func sampleRows(ctx context.Context, db *sql.DB, name string, limit int) ([]map[string]any, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %q LIMIT %d;`, name, limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

// scanRows drains a result set into generic maps, decoding BLOB columns
// to strings.
func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// QueryScalar opens a fresh read-only connection, runs a single
// statement and returns the first column of the first row. An empty
// result set yields (nil, nil); the caller decides how to phrase that.
func (s *Store) QueryScalar(ctx context.Context, query string) (any, error) {
	db, err := s.openRO()
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	v := values[0]
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	return v, nil
}

// ExecuteRows runs a read statement on behalf of the operator API and
// returns every row as a generic map, along with the column order.
func (s *Store) ExecuteRows(ctx context.Context, query string, timeoutMs int) ([]map[string]any, []string, error) {
	db, err := s.openRO()
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	qCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	rows, err := db.QueryContext(qCtx, query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	data, err := scanRows(rows)
	if err != nil {
		return nil, nil, err
	}
	return data, cols, nil
}

// Stats aggregates corpus-level numbers for the stats surfaces and
// refreshes the store size gauges.
func (s *Store) Stats(ctx context.Context) (models.StoreStats, error) {
	var st models.StoreStats

	db, err := s.openRO()
	if err != nil {
		return st, fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos;`).Scan(&st.VideosCount); err != nil {
		return st, fmt.Errorf("count videos: %w", err)
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots;`).Scan(&st.SnapshotsCount); err != nil {
		return st, fmt.Errorf("count snapshots: %w", err)
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT creator_id) FROM videos;`).Scan(&st.UniqueCreators); err != nil {
		return st, fmt.Errorf("count creators: %w", err)
	}

	row := db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(views_count), 0), COALESCE(AVG(views_count), 0), COALESCE(MAX(views_count), 0) FROM videos;`)
	if err := row.Scan(&st.TotalViews, &st.AvgViews, &st.MaxViews); err != nil {
		return st, fmt.Errorf("aggregate views: %w", err)
	}

	observability.SetStoreSize(st.VideosCount, st.SnapshotsCount)
	return st, nil
}

// TestConnection verifies the store file is present and readable.
func (s *Store) TestConnection(ctx context.Context) error {
	db, err := s.openRO()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	var one int
	if err := db.QueryRowContext(ctx, `SELECT 1;`).Scan(&one); err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}
	return nil
}

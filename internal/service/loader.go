package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vidstats/vidstats/internal/observability"
)

// ingestBatchSize videos are written per transaction.
const ingestBatchSize = 1000

// VideoRecord is one video in the ingest export, snapshots included.
type VideoRecord struct {
	ID             string           `json:"id"`
	VideoCreatedAt string           `json:"video_created_at"`
	ViewsCount     int64            `json:"views_count"`
	LikesCount     int64            `json:"likes_count"`
	ReportsCount   int64            `json:"reports_count"`
	CommentsCount  int64            `json:"comments_count"`
	CreatorID      string           `json:"creator_id"`
	CreatedAt      string           `json:"created_at"`
	UpdatedAt      string           `json:"updated_at"`
	Snapshots      []SnapshotRecord `json:"snapshots"`
}

// SnapshotRecord is one statistics capture in the ingest export.
type SnapshotRecord struct {
	ID                 string `json:"id"`
	ViewsCount         int64  `json:"views_count"`
	LikesCount         int64  `json:"likes_count"`
	ReportsCount       int64  `json:"reports_count"`
	CommentsCount      int64  `json:"comments_count"`
	DeltaViewsCount    int64  `json:"delta_views_count"`
	DeltaLikesCount    int64  `json:"delta_likes_count"`
	DeltaReportsCount  int64  `json:"delta_reports_count"`
	DeltaCommentsCount int64  `json:"delta_comments_count"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

type ingestFile struct {
	Videos []VideoRecord `json:"videos"`
}

// LoadStats summarizes one ingest run.
type LoadStats struct {
	TotalVideos      int `json:"total_videos"`
	TotalSnapshots   int `json:"total_snapshots"`
	SuccessfulVideos int `json:"successful_videos"`
	FailedVideos     int `json:"failed_videos"`
}

// Loader bulk-writes JSON exports into the store. Inserts use
// INSERT OR REPLACE, so records keyed by their own identifiers can be
// re-ingested without duplicating rows.
type Loader struct {
	store *Store
}

func NewLoader(store *Store) *Loader {
	return &Loader{store: store}
}

// LoadFile ingests one JSON export file.
func (l *Loader) LoadFile(ctx context.Context, path string) (LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return LoadStats{}, fmt.Errorf("open ingest file: %w", err)
	}
	defer f.Close()

	return l.Load(ctx, f)
}

// Load ingests a JSON export stream. Videos are written in batches of
// ingestBatchSize, one transaction per batch. A bad video record is
// skipped and counted, it does not abort the run.
func (l *Loader) Load(ctx context.Context, r io.Reader) (LoadStats, error) {
	var file ingestFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return LoadStats{}, fmt.Errorf("decode ingest file: %w", err)
	}

	stats := LoadStats{TotalVideos: len(file.Videos)}

	db, err := l.store.openRW()
	if err != nil {
		return stats, fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	for offset := 0; offset < len(file.Videos); offset += ingestBatchSize {
		end := offset + ingestBatchSize
		if end > len(file.Videos) {
			end = len(file.Videos)
		}
		if err := loadBatch(ctx, db, file.Videos[offset:end], &stats); err != nil {
			return stats, err
		}
		log.Info().Int("loaded", end).Int("total", len(file.Videos)).Msg("ingest progress")
	}

	observability.ObserveIngest("video", stats.SuccessfulVideos)
	observability.ObserveIngest("snapshot", stats.TotalSnapshots)
	observability.ObserveIngest("failed", stats.FailedVideos)

	log.Info().
		Int("videos", stats.SuccessfulVideos).
		Int("snapshots", stats.TotalSnapshots).
		Int("failed", stats.FailedVideos).
		Msg("ingest complete")
	return stats, nil
}

func loadBatch(ctx context.Context, db *sql.DB, videos []VideoRecord, stats *LoadStats) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback()

	for _, v := range videos {
		if err := insertVideo(ctx, tx, v); err != nil {
			stats.FailedVideos++
			log.Warn().Err(err).Str("video_id", v.ID).Msg("skipping video")
			continue
		}
		stats.SuccessfulVideos++
		stats.TotalSnapshots += len(v.Snapshots)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

func insertVideo(ctx context.Context, tx *sql.Tx, v VideoRecord) error {
	if v.ID == "" {
		return fmt.Errorf("video has no id")
	}

	_, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO videos
		(video_id, video_created_at, views_count, likes_count, reports_count, comments_count,
		 creator_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, nullable(v.VideoCreatedAt), v.ViewsCount, v.LikesCount, v.ReportsCount,
		v.CommentsCount, nullable(v.CreatorID), nullable(v.CreatedAt), nullable(v.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}

	for _, sn := range v.Snapshots {
		id := sn.ID
		if id == "" {
			id = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO snapshots
			(snapshot_id, video_id, views_count, likes_count, reports_count, comments_count,
			 delta_views_count, delta_likes_count, delta_reports_count, delta_comments_count,
			 created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, v.ID, sn.ViewsCount, sn.LikesCount, sn.ReportsCount, sn.CommentsCount,
			sn.DeltaViewsCount, sn.DeltaLikesCount, sn.DeltaReportsCount, sn.DeltaCommentsCount,
			nullable(sn.CreatedAt), nullable(sn.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert snapshot %s: %w", id, err)
		}
	}
	return nil
}

// nullable maps empty strings to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

package service

// Hand-maintained semantic descriptions merged into the introspected
// schema and ultimately rendered into the model prompt. Tables and
// columns nobody documented fall back to a generic placeholder.

const noDescription = "no description available"

var tableDescriptions = map[string]string{
	"videos": "Primary table of videos: one row per ingested video with its cumulative " +
		"counters and metadata. Counters are lifetime totals.",
	"snapshots": "Point-in-time statistics snapshots, one row per capture per video, linked " +
		"to videos through video_id. The delta_* columns hold the growth since the previous snapshot.",
}

var columnDescriptions = map[string]string{
	"videos.video_id":         "unique video identifier (UUID)",
	"videos.video_created_at": "when the video was published on the platform (DATETIME)",
	"videos.views_count":      "total number of views (integer)",
	"videos.likes_count":      "total number of likes (integer)",
	"videos.reports_count":    "number of reports filed against the video (integer)",
	"videos.comments_count":   "total number of comments under the video (integer)",
	"videos.creator_id":       "identifier of the video's creator",
	"videos.created_at":       "when the row was first written to this store",
	"videos.updated_at":       "when the row was last updated",

	"snapshots.snapshot_id":          "unique snapshot identifier (UUID)",
	"snapshots.video_id":             "video this snapshot belongs to",
	"snapshots.views_count":          "views at capture time",
	"snapshots.likes_count":          "likes at capture time",
	"snapshots.reports_count":        "reports at capture time",
	"snapshots.comments_count":       "comments at capture time",
	"snapshots.delta_views_count":    "view growth since the previous snapshot (may be negative)",
	"snapshots.delta_likes_count":    "like growth since the previous snapshot",
	"snapshots.delta_reports_count":  "report growth since the previous snapshot",
	"snapshots.delta_comments_count": "comment growth since the previous snapshot",
	"snapshots.created_at":           "when the snapshot was captured (DATETIME)",
	"snapshots.updated_at":           "when the snapshot row was last updated",
}

// TableDescription returns the curated description for a table.
func TableDescription(table string) string {
	if d, ok := tableDescriptions[table]; ok {
		return d
	}
	return noDescription
}

// ColumnDescription returns the curated description for a column.
func ColumnDescription(table, column string) string {
	if d, ok := columnDescriptions[table+"."+column]; ok {
		return d
	}
	return noDescription
}

package models

// ColumnInfo describes one column of an introspected table.
type ColumnInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	NotNull     bool   `json:"not_null"`
	PrimaryKey  bool   `json:"primary_key"`
	Description string `json:"description,omitempty"`
}

// TableInfo describes one user table: its columns in declaration order,
// the curated description, and a small sample of live data.
type TableInfo struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Columns     []ColumnInfo     `json:"columns"`
	RowCount    int64            `json:"row_count"`
	SampleRows  []map[string]any `json:"sample_rows,omitempty"`
}

// Schema is a snapshot of the store's structure, taken once at startup.
// Tables are ordered by name. The snapshot is never mutated afterwards;
// a store reshaped mid-session is not picked up until restart.
type Schema struct {
	Tables []TableInfo `json:"tables"`
}

// IsEmpty reports whether introspection found no user tables.
func (s Schema) IsEmpty() bool {
	return len(s.Tables) == 0
}

// TableSummary is the abbreviated table listing for the tables endpoint.
type TableSummary struct {
	Name     string `json:"name"`
	RowCount int64  `json:"row_count"`
}

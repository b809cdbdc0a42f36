package domain

import "time"

// RotationEntry records that a source has issued a particular query. A query
// is eligible for a source again only once LastUsedAt falls outside the
// configured cool-down window.
type RotationEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SourceID   string    `gorm:"type:text;not null;index:idx_rotation_source_query,unique" json:"source_id"`
	QueryHash  string    `gorm:"type:text;not null;index:idx_rotation_source_query,unique" json:"query_hash"`
	Industry   string    `gorm:"type:text" json:"industry"`
	Location   string    `gorm:"type:text" json:"location"`
	Keyword    string    `gorm:"type:text" json:"keyword"`
	LastUsedAt time.Time `gorm:"index:idx_rotation_last_used" json:"last_used_at"`
	UseCount   int       `gorm:"default:0" json:"use_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the database table name for RotationEntry.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (RotationEntry) TableName() string {
	return "rotation_entries"
}

// SourceExhaustion marks a source that had no eligible queries left when a
// run asked for work. It auto-clears once RecoversAt passes or the query
// space grows.
type SourceExhaustion struct {
	SourceID    string    `gorm:"type:text;primaryKey" json:"source_id"`
	ExhaustedAt time.Time `json:"exhausted_at"`
	RecoversAt  time.Time `json:"recovers_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for SourceExhaustion.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (SourceExhaustion) TableName() string {
	return "source_exhaustions"
}

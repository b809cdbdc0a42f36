package domain

import "time"

// SourceKind classifies how a data source obtains candidates.
// Values include SourceKindAPI, SourceKindScraper, and SourceKindDirectory.
type SourceKind string

const (
	SourceKindAPI       SourceKind = "api"
	SourceKindScraper   SourceKind = "scraper"
	SourceKindDirectory SourceKind = "directory"
)

// DataSource represents a registered lead data source. Enablement and
// priority are read once at the start of each discovery run; priority fixes
// the deterministic merge order of fetched candidates.
type DataSource struct {
	ID        string     `gorm:"type:text;primaryKey" json:"id"`
	Name      string     `gorm:"type:text;not null" json:"name"`
	Kind      SourceKind `gorm:"type:text;not null" json:"kind"`
	Config    JSONMap    `gorm:"type:text" json:"config"`
	IsEnabled bool       `gorm:"default:true" json:"is_enabled"`
	Priority  int        `gorm:"default:0" json:"priority"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName returns the database table name for DataSource.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (DataSource) TableName() string {
	return "data_sources"
}

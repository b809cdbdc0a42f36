package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// LeadStatus represents the lifecycle status of a lead record.
// The discovery engine only ever writes LeadStatusNew; later pipeline
// stages (enrichment, outreach) move leads through the remaining states.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusEnriched  LeadStatus = "enriched"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusArchived  LeadStatus = "archived"
)

// JSONMap is a custom type for storing loosely structured attributes as JSON
// in the database.
type JSONMap map[string]interface{}

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the map.
//   - error: non-nil if marshaling fails.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan JSONMap")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, m)
}

// Lead represents an admitted business lead. A Lead is created exactly once,
// after a candidate has passed the dedup, ICP, and capacity gates; the
// discovery engine never mutates it afterwards.
type Lead struct {
	ID            string     `gorm:"type:text;primaryKey" json:"id"`
	CompanyName   string     `gorm:"type:text;not null" json:"company_name"`
	NameKey       string     `gorm:"type:text;not null;index:idx_leads_name_key" json:"-"`
	DomainKey     string     `gorm:"type:text;index:idx_leads_domain_key" json:"-"`
	PhoneKey      string     `gorm:"type:text;index:idx_leads_phone_key" json:"-"`
	Website       string     `gorm:"type:text" json:"website,omitempty"`
	Phone         string     `gorm:"type:text" json:"phone,omitempty"`
	Email         string     `gorm:"type:text" json:"email,omitempty"`
	Address       string     `gorm:"type:text" json:"address,omitempty"`
	Industry      string     `gorm:"type:text;index:idx_leads_industry" json:"industry,omitempty"`
	Location      string     `gorm:"type:text" json:"location,omitempty"`
	Description   string     `gorm:"type:text" json:"description,omitempty"`
	EmployeeCount int        `json:"employee_count,omitempty"`
	ICPScore      float64    `gorm:"index:idx_leads_icp_score" json:"icp_score"`
	SourceID      string     `gorm:"type:text;not null;index:idx_leads_source" json:"source_id"`
	Attributes    JSONMap    `gorm:"type:text" json:"attributes,omitempty"`
	Status        LeadStatus `gorm:"type:text;index:idx_leads_status;default:new" json:"status"`
	DiscoveredAt  time.Time  `json:"discovered_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName returns the database table name for Lead.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Lead) TableName() string {
	return "leads"
}

// CanonicalKeys holds the normalized identity keys for a lead. Any single
// matching key marks two candidates as the same lead.
type CanonicalKeys struct {
	Name   string
	Domain string
	Phone  string
}

package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// RunState represents the state machine position of a discovery run.
// A run only terminates in RunStateFailed when configuration is invalid
// before fetching begins; partial source failures still complete.
type RunState string

const (
	RunStateIdle          RunState = "idle"
	RunStateCapacityCheck RunState = "capacity_check"
	RunStateFetching      RunState = "fetching"
	RunStateFiltering     RunState = "filtering"
	RunStatePersisting    RunState = "persisting"
	RunStateCompleted     RunState = "completed"
	RunStateFailed        RunState = "failed"
)

// SourceErrorRecord captures one source-level failure inside a run.
type SourceErrorRecord struct {
	SourceID string `json:"source_id"`
	Query    string `json:"query,omitempty"`
	Message  string `json:"message"`
}

// SourceErrorList is a custom type for storing source error records as JSON.
type SourceErrorList []SourceErrorRecord

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the list.
//   - error: non-nil if marshaling fails.
func (l SourceErrorList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (l *SourceErrorList) Scan(value interface{}) error {
	if value == nil {
		*l = SourceErrorList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan SourceErrorList")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, l)
}

// DiscoveryRun is the persisted record of one discovery pipeline execution,
// including the run summary counters.
type DiscoveryRun struct {
	ID                string          `gorm:"type:text;primaryKey" json:"id"`
	State             RunState        `gorm:"type:text;default:idle" json:"state"`
	TotalDiscovered   int             `gorm:"default:0" json:"total_discovered"`
	Admitted          int             `gorm:"default:0" json:"admitted"`
	DuplicateSkipped  int             `gorm:"default:0" json:"duplicate_skipped"`
	ICPFiltered       int             `gorm:"default:0" json:"icp_filtered"`
	CapacityExhausted int             `gorm:"default:0" json:"capacity_exhausted"`
	SourceErrors      SourceErrorList `gorm:"type:text" json:"source_errors"`
	LedgerPersisted   bool            `gorm:"default:true" json:"ledger_persisted"`
	StartedAt         time.Time       `json:"started_at"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
	DurationMs        int64           `gorm:"default:0" json:"duration_ms"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TableName returns the database table name for DiscoveryRun.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (DiscoveryRun) TableName() string {
	return "discovery_runs"
}

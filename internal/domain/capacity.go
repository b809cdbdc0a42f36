package domain

import "time"

// DailyCapacity tracks how many leads have been admitted on a given local
// calendar day. Date is the day in YYYY-MM-DD form; a run that observes a
// newer day resets AdmittedCount before evaluating admissions.
type DailyCapacity struct {
	Date          string    `gorm:"type:text;primaryKey" json:"date"`
	AdmittedCount int       `gorm:"default:0" json:"admitted_count"`
	Limit         int       `gorm:"column:daily_limit" json:"limit"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name for DailyCapacity.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (DailyCapacity) TableName() string {
	return "daily_capacity"
}

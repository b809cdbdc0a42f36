package service

import (
	"fmt"

	"github.com/lenilani/leadscout/internal/domain"
)

// ConfigurationError reports structurally invalid discovery configuration.
// It is the only error class that fails a run outright; it is always raised
// before any fetching begins and before any state is mutated.
type ConfigurationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// NewConfigurationError creates a ConfigurationError for a config field.
func NewConfigurationError(field, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason}
}

// SourceError wraps a failure of one (source, query) fetch. Source errors
// are collected into the run summary and never abort a run.
type SourceError struct {
	SourceID string
	Query    domain.QueryCombination
	Err      error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s query %s: %v", e.SourceID, e.Query, e.Err)
}

// Unwrap returns the underlying fetch error.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// Record converts the error into its persisted run-summary form.
func (e *SourceError) Record() domain.SourceErrorRecord {
	return domain.SourceErrorRecord{
		SourceID: e.SourceID,
		Query:    e.Query.String(),
		Message:  e.Err.Error(),
	}
}

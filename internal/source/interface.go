package source

import (
	"context"

	"github.com/lenilani/leadscout/internal/domain"
)

// Candidate represents a raw business candidate returned by a data source.
// It is ephemeral: the orchestrator normalizes it and either admits it as a
// Lead or drops it; the raw shape is never persisted as-is. Fields a source
// cannot provide stay zero-valued, never invented.
type Candidate struct {
	SourceID      string                 // ID of the source that produced this candidate
	Name          string                 // Business name as reported by the source
	Website       string
	Phone         string
	Email         string
	Address       string
	Industry      string
	Location      string
	Description   string
	EmployeeCount int
	Raw           map[string]interface{} // Source-specific extra fields
}

// Source defines the interface for lead data sources. Implementations must
// not retry failed requests (retry policy belongs to the orchestrator) and
// must enforce their own rate limits toward the upstream service.
type Source interface {
	// GetSourceID returns the unique identifier for this source.
	// Parameters: none.
	// Returns:
	//   - string: stable source identifier.
	GetSourceID() string

	// GetDisplayName returns a human-readable name for this source.
	// Parameters: none.
	// Returns:
	//   - string: display-friendly source name.
	GetDisplayName() string

	// Fetch retrieves candidates for one query combination. The context
	// carries the per-fetch timeout set by the orchestrator.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - query: query combination to search for.
	// Returns:
	//   - []Candidate: candidates in the source's result order.
	//   - error: non-nil if fetching fails; treated as a source-level error.
	Fetch(ctx context.Context, query domain.QueryCombination) ([]Candidate, error)
}

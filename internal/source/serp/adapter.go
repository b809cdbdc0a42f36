package serp

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/lenilani/leadscout/internal/domain"
	"github.com/lenilani/leadscout/internal/source"
	"golang.org/x/time/rate"
)

const (
	SourceID   = "google_maps"
	SourceName = "Google Maps (SerpAPI)"
)

// Adapter implements the Source interface for Google Maps local results via
// the SerpAPI search endpoint.
type Adapter struct {
	client  *resty.Client
	limiter *rate.Limiter
	apiKey  string
}

// Config holds adapter configuration.
type Config struct {
	APIKey    string
	BaseURL   string
	RateLimit float64 // requests per second toward SerpAPI
}

// NewAdapter creates a new Google Maps adapter.
// Parameters:
//   - cfg: adapter configuration including the SerpAPI key.
// Returns:
//   - *Adapter: initialized adapter.
func NewAdapter(cfg *Config) *Adapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://serpapi.com"
	}
	rps := cfg.RateLimit
	if rps <= 0 {
		rps = 1.0
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Accept", "application/json")
	client.SetTimeout(60 * time.Second)

	return &Adapter{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		apiKey:  cfg.APIKey,
	}
}

// GetSourceID returns the unique identifier for this source.
func (a *Adapter) GetSourceID() string {
	return SourceID
}

// GetDisplayName returns a human-readable name for this source.
func (a *Adapter) GetDisplayName() string {
	return SourceName
}

// SerpAPI google_maps response structures (partial)
type mapsResponse struct {
	LocalResults []mapsResult `json:"local_results"`
	Error        string       `json:"error"`
}

type mapsResult struct {
	Title        string  `json:"title"`
	Website      string  `json:"website"`
	Phone        string  `json:"phone"`
	Address      string  `json:"address"`
	Type         string  `json:"type"`
	Description  string  `json:"description"`
	Rating       float64 `json:"rating"`
	Reviews      int     `json:"reviews"`
	PlaceID      string  `json:"place_id"`
}

// Fetch retrieves Google Maps local results for the query combination.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - query: query combination to search for.
// Returns:
//   - []source.Candidate: candidates in SerpAPI result order.
//   - error: non-nil if the request or decoding fails.
func (a *Adapter) Fetch(ctx context.Context, query domain.QueryCombination) ([]source.Candidate, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var result mapsResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"engine":  "google_maps",
			"q":       query.SearchText(),
			"api_key": a.apiKey,
		}).
		SetResult(&result).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("serpapi request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("serpapi returned status %d", resp.StatusCode())
	}
	if result.Error != "" {
		return nil, fmt.Errorf("serpapi error: %s", result.Error)
	}

	candidates := make([]source.Candidate, 0, len(result.LocalResults))
	for _, r := range result.LocalResults {
		if r.Title == "" {
			continue
		}
		candidates = append(candidates, source.Candidate{
			SourceID:    SourceID,
			Name:        r.Title,
			Website:     r.Website,
			Phone:       r.Phone,
			Address:     r.Address,
			Industry:    query.Industry,
			Location:    query.Location,
			Description: r.Description,
			Raw: map[string]interface{}{
				"place_id": r.PlaceID,
				"type":     r.Type,
				"rating":   r.Rating,
				"reviews":  r.Reviews,
			},
		})
	}
	return candidates, nil
}

package yelp

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
	SourceID   = "yelp"
	SourceName = "Yelp (SerpAPI)"
)

// Adapter implements the Source interface for Yelp search results via the
// SerpAPI yelp engine.
type Adapter struct {
	client  *resty.Client
	limiter *rate.Limiter
	apiKey  string
}

// Config holds adapter configuration.
type Config struct {
	APIKey    string
	BaseURL   string
	RateLimit float64
}

// NewAdapter creates a new Yelp adapter.
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

// SerpAPI yelp response structures (partial)
type yelpResponse struct {
	OrganicResults []yelpResult `json:"organic_results"`
	Error          string       `json:"error"`
}

type yelpResult struct {
	Title      string         `json:"title"`
	Link       string         `json:"link"`
	Phone      string         `json:"phone"`
	Categories []yelpCategory `json:"categories"`
	Snippet    string         `json:"snippet"`
	Rating     float64        `json:"rating"`
	Reviews    int            `json:"reviews"`
}

type yelpCategory struct {
	Title string `json:"title"`
}

// Fetch retrieves Yelp results for the query combination.
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

	var result yelpResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"engine":    "yelp",
			"find_desc": query.Keyword,
			"find_loc":  query.Location + ", HI",
			"api_key":   a.apiKey,
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

	candidates := make([]source.Candidate, 0, len(result.OrganicResults))
	for _, r := range result.OrganicResults {
		if r.Title == "" {
			continue
		}
		categories := make([]string, 0, len(r.Categories))
		for _, c := range r.Categories {
			categories = append(categories, c.Title)
		}
		candidates = append(candidates, source.Candidate{
			SourceID:    SourceID,
			Name:        r.Title,
			Website:     r.Link,
			Phone:       r.Phone,
			Industry:    query.Industry,
			Location:    query.Location,
			Description: r.Snippet,
			Raw: map[string]interface{}{
				"categories": categories,
				"rating":     r.Rating,
				"reviews":    r.Reviews,
			},
		})
	}
	return candidates, nil
}

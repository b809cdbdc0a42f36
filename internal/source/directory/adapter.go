package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/lenilani/leadscout/internal/domain"
	"github.com/lenilani/leadscout/internal/source"
)

const (
	SourceID   = "hawaii_directories"
	SourceName = "Hawaii Business Directories"
)

// Listing is one entry in an exported directory dump file.
type Listing struct {
	Name          string `json:"name"`
	Website       string `json:"website"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	Industry      string `json:"industry"`
	Location      string `json:"location"`
	Description   string `json:"description"`
	EmployeeCount int    `json:"employee_count"`
}

// Adapter implements the Source interface over a directory of exported JSON
// listing dumps (chamber-of-commerce exports and similar). Files are loaded
// once and cached; concurrent Fetch calls share the single load. Fetch
// filters the cached listings against the query.
type Adapter struct {
	basePath string

	loadOnce sync.Once
	listings []Listing
	loadErr  error
}

// NewAdapter creates a new directory adapter.
// Parameters:
//   - basePath: directory containing *.json listing dumps.
// Returns:
//   - *Adapter: initialized adapter.
func NewAdapter(basePath string) *Adapter {
	return &Adapter{
		basePath: basePath,
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

// Fetch returns listings matching the query combination. A listing matches
// when its industry equals the query industry and its location or address
// mentions the query location, or when the keyword appears in its name or
// description.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - query: query combination to filter by.
// Returns:
//   - []source.Candidate: matching listings in load order.
//   - error: non-nil if loading the dumps fails.
func (a *Adapter) Fetch(ctx context.Context, query domain.QueryCombination) ([]source.Candidate, error) {
	a.loadOnce.Do(func() {
		a.loadErr = a.loadListings()
	})
	if a.loadErr != nil {
		return nil, fmt.Errorf("failed to load listings: %w", a.loadErr)
	}

	var candidates []source.Candidate
	for _, l := range a.listings {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !matches(l, query) {
			continue
		}
		candidates = append(candidates, source.Candidate{
			SourceID:      SourceID,
			Name:          l.Name,
			Website:       l.Website,
			Phone:         l.Phone,
			Email:         l.Email,
			Address:       l.Address,
			Industry:      l.Industry,
			Location:      l.Location,
			Description:   l.Description,
			EmployeeCount: l.EmployeeCount,
		})
	}
	return candidates, nil
}

func matches(l Listing, q domain.QueryCombination) bool {
	industry := strings.EqualFold(l.Industry, q.Industry)
	location := containsFold(l.Location, q.Location) || containsFold(l.Address, q.Location)
	if industry && location {
		return true
	}
	return containsFold(l.Name, q.Keyword) || containsFold(l.Description, q.Keyword)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// loadListings reads every *.json dump under the base path. Files are read
// in sorted path order so the candidate sequence is deterministic.
func (a *Adapter) loadListings() error {
	if _, err := os.Stat(a.basePath); os.IsNotExist(err) {
		return fmt.Errorf("directory path does not exist: %s", a.basePath)
	}

	var files []string
	err := filepath.Walk(a.basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		name := info.Name()
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk directory: %w", err)
	}
	sort.Strings(files)

	a.listings = nil
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		var batch []Listing
		if err := json.Unmarshal(data, &batch); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		for _, l := range batch {
			if l.Name == "" {
				continue
			}
			a.listings = append(a.listings, l)
		}
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lenilani/leadscout/internal/domain"
	"github.com/lenilani/leadscout/internal/source"
)

// In-memory store fakes shared by the service tests. Each fake supports
// injectable errors so failure paths can be exercised without a database.

type fakeLeadStore struct {
	mu        sync.Mutex
	leads     []*domain.Lead
	seed      []domain.CanonicalKeys
	createErr error
	listErr   error
	failNames map[string]bool // company names whose Create fails
}

func (f *fakeLeadStore) Create(_ context.Context, lead *domain.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if f.failNames[lead.CompanyName] {
		return errors.New("insert failed")
	}
	f.leads = append(f.leads, lead)
	return nil
}

func (f *fakeLeadStore) ListCanonicalKeys(_ context.Context) ([]domain.CanonicalKeys, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	keys := append([]domain.CanonicalKeys{}, f.seed...)
	for _, lead := range f.leads {
		keys = append(keys, domain.CanonicalKeys{
			Name:   lead.NameKey,
			Domain: lead.DomainKey,
			Phone:  lead.PhoneKey,
		})
	}
	return keys, nil
}

type fakeRotationStore struct {
	mu          sync.Mutex
	entries     map[string]map[string]domain.RotationEntry // source -> hash
	exhaustions map[string]*domain.SourceExhaustion
	upsertErr   error
}

func newFakeRotationStore() *fakeRotationStore {
	return &fakeRotationStore{
		entries:     make(map[string]map[string]domain.RotationEntry),
		exhaustions: make(map[string]*domain.SourceExhaustion),
	}
}

func (f *fakeRotationStore) ListBySource(_ context.Context, sourceID string) ([]domain.RotationEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.RotationEntry
	for _, e := range f.entries[sourceID] {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeRotationStore) UpsertEntries(_ context.Context, entries []domain.RotationEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for _, e := range entries {
		if f.entries[e.SourceID] == nil {
			f.entries[e.SourceID] = make(map[string]domain.RotationEntry)
		}
		prev, ok := f.entries[e.SourceID][e.QueryHash]
		if ok {
			e.UseCount = prev.UseCount + 1
		}
		f.entries[e.SourceID][e.QueryHash] = e
	}
	return nil
}

func (f *fakeRotationStore) GetExhaustion(_ context.Context, sourceID string) (*domain.SourceExhaustion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exhaustions[sourceID], nil
}

func (f *fakeRotationStore) SetExhaustion(_ context.Context, rec *domain.SourceExhaustion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exhaustions[rec.SourceID] = rec
	return nil
}

func (f *fakeRotationStore) ClearExhaustion(_ context.Context, sourceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.exhaustions, sourceID)
	return nil
}

func (f *fakeRotationStore) entryCount(sourceID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries[sourceID])
}

type fakeCapacityStore struct {
	mu      sync.Mutex
	state   *domain.DailyCapacity
	saveErr error
	saves   int
}

func (f *fakeCapacityStore) GetLatest(_ context.Context) (*domain.DailyCapacity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == nil {
		return nil, nil
	}
	cp := *f.state
	return &cp, nil
}

func (f *fakeCapacityStore) Save(_ context.Context, state *domain.DailyCapacity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	cp := *state
	f.state = &cp
	f.saves++
	return nil
}

type fakeRunStore struct {
	mu   sync.Mutex
	runs map[string]*domain.DiscoveryRun
}

func newFakeRunStore() *fakeRunStore {
	return &fakeRunStore{runs: make(map[string]*domain.DiscoveryRun)}
}

func (f *fakeRunStore) Create(_ context.Context, run *domain.DiscoveryRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *run
	f.runs[run.ID] = &cp
	return nil
}

func (f *fakeRunStore) Update(_ context.Context, run *domain.DiscoveryRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *run
	f.runs[run.ID] = &cp
	return nil
}

type fakeRegistry struct {
	sources []domain.DataSource
	touched map[string]time.Time
}

func (f *fakeRegistry) ListEnabled(_ context.Context) ([]domain.DataSource, error) {
	return f.sources, nil
}

func (f *fakeRegistry) TouchLastRun(_ context.Context, sourceID string, at time.Time) error {
	if f.touched == nil {
		f.touched = make(map[string]time.Time)
	}
	f.touched[sourceID] = at
	return nil
}

// fakeSource returns canned candidates per query, or an error for every
// fetch when fetchErr is set.
type fakeSource struct {
	id         string
	candidates map[string][]source.Candidate // query hash -> candidates
	fetchErr   error

	mu      sync.Mutex
	fetched []domain.QueryCombination
}

func (f *fakeSource) GetSourceID() string    { return f.id }
func (f *fakeSource) GetDisplayName() string { return f.id }

func (f *fakeSource) Fetch(_ context.Context, query domain.QueryCombination) ([]source.Candidate, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, query)
	f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.candidates[query.Hash()], nil
}

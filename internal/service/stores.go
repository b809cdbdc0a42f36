package service

import (
	"context"
	"time"

	"github.com/lenilani/leadscout/internal/domain"
)

// LeadStore is the persistence surface the pipeline needs for leads.
// Implemented by repository.LeadRepository.
type LeadStore interface {
	Create(ctx context.Context, lead *domain.Lead) error
	ListCanonicalKeys(ctx context.Context) ([]domain.CanonicalKeys, error)
}

// RotationStore persists rotation ledger entries and exhaustion records.
// Implemented by repository.RotationRepository.
type RotationStore interface {
	ListBySource(ctx context.Context, sourceID string) ([]domain.RotationEntry, error)
	UpsertEntries(ctx context.Context, entries []domain.RotationEntry) error
	GetExhaustion(ctx context.Context, sourceID string) (*domain.SourceExhaustion, error)
	SetExhaustion(ctx context.Context, rec *domain.SourceExhaustion) error
	ClearExhaustion(ctx context.Context, sourceID string) error
}

// CapacityStore persists daily capacity state.
// Implemented by repository.CapacityRepository.
type CapacityStore interface {
	GetLatest(ctx context.Context) (*domain.DailyCapacity, error)
	Save(ctx context.Context, state *domain.DailyCapacity) error
}

// RunStore persists discovery run records.
// Implemented by repository.RunRepository.
type RunStore interface {
	Create(ctx context.Context, run *domain.DiscoveryRun) error
	Update(ctx context.Context, run *domain.DiscoveryRun) error
}

// SourceRegistry exposes the data source registry to the pipeline.
// Implemented by repository.SourceRepository.
type SourceRegistry interface {
	ListEnabled(ctx context.Context) ([]domain.DataSource, error)
	TouchLastRun(ctx context.Context, sourceID string, at time.Time) error
}

package repository

import (
	"context"
	"fmt"

	"github.com/lenilani/leadscout/internal/domain"
	"gorm.io/gorm"
)

// LeadRepository handles lead data operations.
type LeadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new LeadRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *LeadRepository: repository instance bound to db.
func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create inserts a new lead record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - lead: lead record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *LeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

// GetByID retrieves a lead by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: lead ID.
// Returns:
//   - *domain.Lead: lead record if found.
//   - error: non-nil if lookup fails.
func (r *LeadRepository) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	var lead domain.Lead
	if err := r.db.WithContext(ctx).First(&lead, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

// ListCanonicalKeys loads the canonical identity keys of every lead ever
// admitted. The dedup index is seeded from this set at the start of each run.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.CanonicalKeys: one entry per lead; empty key parts omitted upstream.
//   - error: non-nil if the query fails.
func (r *LeadRepository) ListCanonicalKeys(ctx context.Context) ([]domain.CanonicalKeys, error) {
	var rows []struct {
		NameKey   string
		DomainKey string
		PhoneKey  string
	}
	if err := r.db.WithContext(ctx).
		Model(&domain.Lead{}).
		Select("name_key", "domain_key", "phone_key").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list canonical keys: %w", err)
	}

	keys := make([]domain.CanonicalKeys, 0, len(rows))
	for _, row := range rows {
		keys = append(keys, domain.CanonicalKeys{
			Name:   row.NameKey,
			Domain: row.DomainKey,
			Phone:  row.PhoneKey,
		})
	}
	return keys, nil
}

// List retrieves leads ordered by discovery time, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - status: lead status to filter by; empty means all.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.Lead: matching lead records.
//   - error: non-nil if the query fails.
func (r *LeadRepository) List(ctx context.Context, status domain.LeadStatus, limit, offset int) ([]domain.Lead, error) {
	var leads []domain.Lead
	query := r.db.WithContext(ctx)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.
		Limit(limit).
		Offset(offset).
		Order("discovered_at DESC").
		Find(&leads).Error; err != nil {
		return nil, err
	}
	return leads, nil
}

// CountBySource counts leads grouped by source.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - map[string]int64: number of leads per source ID.
//   - error: non-nil if the query fails.
func (r *LeadRepository) CountBySource(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		SourceID string
		Count    int64
	}
	if err := r.db.WithContext(ctx).
		Model(&domain.Lead{}).
		Select("source_id", "count(*) as count").
		Group("source_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.SourceID] = row.Count
	}
	return counts, nil
}

// Count returns the total number of leads.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - int64: number of lead records.
//   - error: non-nil if the query fails.
func (r *LeadRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Lead{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes a lead by ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: lead ID to delete.
// Returns:
//   - error: non-nil if the delete fails.
func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.Lead{}, "id = ?", id).Error
}

package repository

import (
	"context"

	"github.com/lenilani/leadscout/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CapacityRepository handles daily capacity state persistence.
type CapacityRepository struct {
	db *gorm.DB
}

// NewCapacityRepository creates a new CapacityRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *CapacityRepository: repository instance bound to db.
func NewCapacityRepository(db *gorm.DB) *CapacityRepository {
	return &CapacityRepository{db: db}
}

// GetLatest retrieves the most recent capacity row, which may be dated
// before today; the capacity controller handles the day rollover.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - *domain.DailyCapacity: latest row or nil when none exists yet.
//   - error: non-nil if the lookup fails.
func (r *CapacityRepository) GetLatest(ctx context.Context) (*domain.DailyCapacity, error) {
	var state domain.DailyCapacity
	err := r.db.WithContext(ctx).Order("date DESC").First(&state).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Save upserts the capacity row for its date.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - state: capacity state to persist.
// Returns:
//   - error: non-nil if the upsert fails.
func (r *CapacityRepository) Save(ctx context.Context, state *domain.DailyCapacity) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		UpdateAll: true,
	}).Create(state).Error
}

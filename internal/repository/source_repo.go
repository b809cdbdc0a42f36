package repository

import (
	"context"
	"time"

	"github.com/lenilani/leadscout/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SourceRepository handles the data source registry.
type SourceRepository struct {
	db *gorm.DB
}

// NewSourceRepository creates a new SourceRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *SourceRepository: repository instance bound to db.
func NewSourceRepository(db *gorm.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// Register upserts a data source record, preserving operator-set enablement
// and priority on conflict.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - src: data source record to register.
// Returns:
//   - error: non-nil if the upsert fails.
func (r *SourceRepository) Register(ctx context.Context, src *domain.DataSource) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "kind", "updated_at",
		}),
	}).Create(src).Error
}

// ListEnabled retrieves enabled sources ordered by priority.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.DataSource: enabled sources, lowest priority value first.
//   - error: non-nil if the query fails.
func (r *SourceRepository) ListEnabled(ctx context.Context) ([]domain.DataSource, error) {
	var sources []domain.DataSource
	if err := r.db.WithContext(ctx).
		Where("is_enabled = ?", true).
		Order("priority ASC, id ASC").
		Find(&sources).Error; err != nil {
		return nil, err
	}
	return sources, nil
}

// TouchLastRun records that a source participated in a run.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - sourceID: source identifier.
//   - at: run timestamp.
// Returns:
//   - error: non-nil if the update fails.
func (r *SourceRepository) TouchLastRun(ctx context.Context, sourceID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.DataSource{}).
		Where("id = ?", sourceID).
		Update("last_run_at", at).Error
}

package repository

import (
	"context"
	"time"

	"github.com/lenilani/leadscout/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RotationRepository handles rotation ledger persistence.
type RotationRepository struct {
	db *gorm.DB
}

// NewRotationRepository creates a new RotationRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *RotationRepository: repository instance bound to db.
func NewRotationRepository(db *gorm.DB) *RotationRepository {
	return &RotationRepository{db: db}
}

// ListBySource retrieves all rotation entries for a source.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - sourceID: source identifier.
// Returns:
//   - []domain.RotationEntry: entries for the source.
//   - error: non-nil if the query fails.
func (r *RotationRepository) ListBySource(ctx context.Context, sourceID string) ([]domain.RotationEntry, error) {
	var entries []domain.RotationEntry
	if err := r.db.WithContext(ctx).
		Where("source_id = ?", sourceID).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// UpsertEntries idempotently writes a batch of rotation entries keyed by
// (source_id, query_hash), bumping last_used_at and use_count. Called once at
// end-of-run with the run's buffered mutations.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - entries: rotation entries to create or update.
// Returns:
//   - error: non-nil if the upsert fails.
func (r *RotationRepository) UpsertEntries(ctx context.Context, entries []domain.RotationEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "source_id"}, {Name: "query_hash"}},
		DoUpdates: clause.Set{
			{Column: clause.Column{Name: "last_used_at"}, Value: gorm.Expr("excluded.last_used_at")},
			{Column: clause.Column{Name: "use_count"}, Value: gorm.Expr("rotation_entries.use_count + 1")},
			{Column: clause.Column{Name: "updated_at"}, Value: time.Now()},
		},
	}).Create(&entries).Error
}

// GetExhaustion retrieves the exhaustion record for a source, if any.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - sourceID: source identifier.
// Returns:
//   - *domain.SourceExhaustion: record if present, nil when the source is not exhausted.
//   - error: non-nil if the lookup fails.
func (r *RotationRepository) GetExhaustion(ctx context.Context, sourceID string) (*domain.SourceExhaustion, error) {
	var rec domain.SourceExhaustion
	err := r.db.WithContext(ctx).First(&rec, "source_id = ?", sourceID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SetExhaustion upserts an exhaustion record for a source.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - rec: exhaustion record to persist.
// Returns:
//   - error: non-nil if the upsert fails.
func (r *RotationRepository) SetExhaustion(ctx context.Context, rec *domain.SourceExhaustion) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_id"}},
		UpdateAll: true,
	}).Create(rec).Error
}

// ClearExhaustion removes the exhaustion record for a source.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - sourceID: source identifier.
// Returns:
//   - error: non-nil if the delete fails.
func (r *RotationRepository) ClearExhaustion(ctx context.Context, sourceID string) error {
	return r.db.WithContext(ctx).Delete(&domain.SourceExhaustion{}, "source_id = ?", sourceID).Error
}

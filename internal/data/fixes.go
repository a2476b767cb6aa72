package data

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/siteoptic/audit-api/internal/models"
)

type fixRepository struct {
	db *gorm.DB
}

func (r *fixRepository) FindByID(ctx context.Context, id string) (*models.Fix, error) {
	return findOne[models.Fix](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *fixRepository) AllByOpportunityID(ctx context.Context, opportunityID string) ([]models.Fix, error) {
	var rows []models.Fix
	err := r.db.WithContext(ctx).
		Where("opportunity_id = ?", opportunityID).
		Order("created_at asc").
		Find(&rows).Error
	return rows, err
}

func (r *fixRepository) AllByOpportunityIDAndStatus(ctx context.Context, opportunityID string, status models.FixStatus) ([]models.Fix, error) {
	var rows []models.Fix
	err := r.db.WithContext(ctx).
		Where("opportunity_id = ? AND status = ?", opportunityID, status).
		Order("created_at asc").
		Find(&rows).Error
	return rows, err
}

func (r *fixRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Fix{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *fixRepository) CountByStatusSince(ctx context.Context, status models.FixStatus, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Fix{}).
		Where("status = ? AND updated_at >= ?", status, since).
		Count(&count).Error
	return count, err
}

func (r *fixRepository) Create(ctx context.Context, fix *models.Fix) error {
	return r.db.WithContext(ctx).Create(fix).Error
}

func (r *fixRepository) Save(ctx context.Context, fix *models.Fix) error {
	return r.db.WithContext(ctx).Save(fix).Error
}

func (r *fixRepository) Remove(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Fix{}, "id = ?", id).Error
}

type suggestionRepository struct {
	db *gorm.DB
}

func (r *suggestionRepository) FindByID(ctx context.Context, id string) (*models.Suggestion, error) {
	return findOne[models.Suggestion](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *suggestionRepository) AllByOpportunityID(ctx context.Context, opportunityID string) ([]models.Suggestion, error) {
	var rows []models.Suggestion
	err := r.db.WithContext(ctx).
		Where("opportunity_id = ?", opportunityID).
		Order("rank asc").
		Find(&rows).Error
	return rows, err
}

func (r *suggestionRepository) AllByFixID(ctx context.Context, fixID string) ([]models.Suggestion, error) {
	var rows []models.Suggestion
	err := r.db.WithContext(ctx).
		Where("fix_id = ?", fixID).
		Order("rank asc").
		Find(&rows).Error
	return rows, err
}

func (r *suggestionRepository) Create(ctx context.Context, suggestion *models.Suggestion) error {
	return r.db.WithContext(ctx).Create(suggestion).Error
}

func (r *suggestionRepository) Save(ctx context.Context, suggestion *models.Suggestion) error {
	return r.db.WithContext(ctx).Save(suggestion).Error
}

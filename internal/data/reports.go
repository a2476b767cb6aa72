package data

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/siteoptic/audit-api/internal/models"
)

type reportRepository struct {
	db *gorm.DB
}

func (r *reportRepository) live(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Where("deleted_at IS NULL")
}

func (r *reportRepository) FindByID(ctx context.Context, id string) (*models.Report, error) {
	return findOne[models.Report](r.live(ctx).Where("id = ?", id))
}

func (r *reportRepository) AllBySiteID(ctx context.Context, siteID string) ([]models.Report, error) {
	var rows []models.Report
	err := r.live(ctx).
		Where("site_id = ?", siteID).
		Order("created_at desc").
		Find(&rows).Error
	return rows, err
}

func (r *reportRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.live(ctx).
		Model(&models.Report{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepository) Save(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Save(report).Error
}

// Remove soft-deletes the report so the duplicate-window check frees up.
func (r *reportRepository) Remove(ctx context.Context, id string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("id = ?", id).
		Update("deleted_at", now).Error
}

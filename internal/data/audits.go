package data

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/siteoptic/audit-api/internal/models"
)

type auditRunRepository struct {
	db *gorm.DB
}

func (r *auditRunRepository) LatestBySiteIDAndType(ctx context.Context, siteID, auditType string) (*models.AuditRun, error) {
	return findOne[models.AuditRun](r.db.WithContext(ctx).
		Where("site_id = ? AND audit_type = ?", siteID, auditType).
		Order("triggered_at desc"))
}

func (r *auditRunRepository) CountTriggeredSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AuditRun{}).
		Where("triggered_at >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *auditRunRepository) Create(ctx context.Context, run *models.AuditRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

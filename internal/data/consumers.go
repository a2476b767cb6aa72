package data

import (
	"context"

	"gorm.io/gorm"

	"github.com/siteoptic/audit-api/internal/models"
)

type consumerRepository struct {
	db *gorm.DB
}

func (r *consumerRepository) FindByID(ctx context.Context, id string) (*models.Consumer, error) {
	return findOne[models.Consumer](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *consumerRepository) FindByClientID(ctx context.Context, clientID string) (*models.Consumer, error) {
	return findOne[models.Consumer](r.db.WithContext(ctx).Where("client_id = ?", clientID))
}

func (r *consumerRepository) AllByIMSOrgID(ctx context.Context, imsOrgID string) ([]models.Consumer, error) {
	var rows []models.Consumer
	err := r.db.WithContext(ctx).
		Where("ims_org_id = ?", imsOrgID).
		Order("created_at asc").
		Find(&rows).Error
	return rows, err
}

func (r *consumerRepository) Create(ctx context.Context, consumer *models.Consumer) error {
	return r.db.WithContext(ctx).Create(consumer).Error
}

func (r *consumerRepository) Save(ctx context.Context, consumer *models.Consumer) error {
	return r.db.WithContext(ctx).Save(consumer).Error
}

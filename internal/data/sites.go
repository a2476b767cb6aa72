package data

import (
	"context"

	"gorm.io/gorm"

	"github.com/siteoptic/audit-api/internal/models"
)

type siteRepository struct {
	db *gorm.DB
}

func (r *siteRepository) FindByID(ctx context.Context, id string) (*models.Site, error) {
	return findOne[models.Site](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *siteRepository) AllByIMSOrgID(ctx context.Context, imsOrgID string) ([]models.Site, error) {
	var rows []models.Site
	err := r.db.WithContext(ctx).
		Where("ims_org_id = ?", imsOrgID).
		Order("created_at asc").
		Find(&rows).Error
	return rows, err
}

func (r *siteRepository) Create(ctx context.Context, site *models.Site) error {
	return r.db.WithContext(ctx).Create(site).Error
}

func (r *siteRepository) Save(ctx context.Context, site *models.Site) error {
	return r.db.WithContext(ctx).Save(site).Error
}

type opportunityRepository struct {
	db *gorm.DB
}

func (r *opportunityRepository) FindByID(ctx context.Context, id string) (*models.Opportunity, error) {
	return findOne[models.Opportunity](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *opportunityRepository) AllBySiteID(ctx context.Context, siteID string) ([]models.Opportunity, error) {
	var rows []models.Opportunity
	err := r.db.WithContext(ctx).
		Where("site_id = ?", siteID).
		Order("created_at asc").
		Find(&rows).Error
	return rows, err
}

func (r *opportunityRepository) Create(ctx context.Context, opportunity *models.Opportunity) error {
	return r.db.WithContext(ctx).Create(opportunity).Error
}

func (r *opportunityRepository) Save(ctx context.Context, opportunity *models.Opportunity) error {
	return r.db.WithContext(ctx).Save(opportunity).Error
}

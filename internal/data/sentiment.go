package data

import (
	"context"

	"gorm.io/gorm"

	"github.com/siteoptic/audit-api/internal/models"
)

type sentimentTopicRepository struct {
	db *gorm.DB
}

func (r *sentimentTopicRepository) FindByID(ctx context.Context, id string) (*models.SentimentTopic, error) {
	return findOne[models.SentimentTopic](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *sentimentTopicRepository) AllBySiteID(ctx context.Context, siteID string) ([]models.SentimentTopic, error) {
	var rows []models.SentimentTopic
	err := r.db.WithContext(ctx).
		Where("site_id = ?", siteID).
		Order("name asc").
		Find(&rows).Error
	return rows, err
}

func (r *sentimentTopicRepository) Create(ctx context.Context, topic *models.SentimentTopic) error {
	return r.db.WithContext(ctx).Create(topic).Error
}

func (r *sentimentTopicRepository) Save(ctx context.Context, topic *models.SentimentTopic) error {
	return r.db.WithContext(ctx).Save(topic).Error
}

func (r *sentimentTopicRepository) Remove(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.SentimentTopic{}, "id = ?", id).Error
}

type sentimentGuidelineRepository struct {
	db *gorm.DB
}

func (r *sentimentGuidelineRepository) FindByID(ctx context.Context, id string) (*models.SentimentGuideline, error) {
	return findOne[models.SentimentGuideline](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *sentimentGuidelineRepository) AllBySiteID(ctx context.Context, siteID string) ([]models.SentimentGuideline, error) {
	var rows []models.SentimentGuideline
	err := r.db.WithContext(ctx).
		Where("site_id = ?", siteID).
		Order("created_at asc").
		Find(&rows).Error
	return rows, err
}

func (r *sentimentGuidelineRepository) AllByTopicID(ctx context.Context, topicID string) ([]models.SentimentGuideline, error) {
	var rows []models.SentimentGuideline
	err := r.db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Order("created_at asc").
		Find(&rows).Error
	return rows, err
}

func (r *sentimentGuidelineRepository) Create(ctx context.Context, guideline *models.SentimentGuideline) error {
	return r.db.WithContext(ctx).Create(guideline).Error
}

func (r *sentimentGuidelineRepository) Save(ctx context.Context, guideline *models.SentimentGuideline) error {
	return r.db.WithContext(ctx).Save(guideline).Error
}

func (r *sentimentGuidelineRepository) Remove(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.SentimentGuideline{}, "id = ?", id).Error
}

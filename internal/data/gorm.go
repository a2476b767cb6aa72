package data

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/siteoptic/audit-api/internal/models"
)

// Open opens the sqlite database at path and migrates the schema.
// Use ":memory:" for an in-memory database in tests.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	if err := db.AutoMigrate(
		&models.Site{},
		&models.Opportunity{},
		&models.Fix{},
		&models.Suggestion{},
		&models.Role{},
		&models.RoleMember{},
		&models.Report{},
		&models.Consumer{},
		&models.SentimentTopic{},
		&models.SentimentGuideline{},
		&models.AuditRun{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}

// NewCollections builds the gorm-backed collection set.
func NewCollections(db *gorm.DB) *Collections {
	return &Collections{
		Sites:               &siteRepository{db: db},
		Opportunities:       &opportunityRepository{db: db},
		Fixes:               &fixRepository{db: db},
		Suggestions:         &suggestionRepository{db: db},
		Roles:               &roleRepository{db: db},
		RoleMembers:         &roleMemberRepository{db: db},
		Reports:             &reportRepository{db: db},
		Consumers:           &consumerRepository{db: db},
		SentimentTopics:     &sentimentTopicRepository{db: db},
		SentimentGuidelines: &sentimentGuidelineRepository{db: db},
		AuditRuns:           &auditRunRepository{db: db},
	}
}

// findOne runs the query and maps gorm's missing-row error to (nil, nil).
func findOne[T any](tx *gorm.DB) (*T, error) {
	var row T
	if err := tx.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

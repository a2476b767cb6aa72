package data

import (
	"context"
	"time"

	"github.com/siteoptic/audit-api/internal/models"
)

// Collection interfaces are the data-access contract for the API layer.
// Lookups return (nil, nil) when no row matches, so callers distinguish
// "not found" from storage failures without a sentinel error.

// SiteCollection accesses Site rows.
type SiteCollection interface {
	FindByID(ctx context.Context, id string) (*models.Site, error)
	AllByIMSOrgID(ctx context.Context, imsOrgID string) ([]models.Site, error)
	Create(ctx context.Context, site *models.Site) error
	Save(ctx context.Context, site *models.Site) error
}

// OpportunityCollection accesses Opportunity rows.
type OpportunityCollection interface {
	FindByID(ctx context.Context, id string) (*models.Opportunity, error)
	AllBySiteID(ctx context.Context, siteID string) ([]models.Opportunity, error)
	Create(ctx context.Context, opportunity *models.Opportunity) error
	Save(ctx context.Context, opportunity *models.Opportunity) error
}

// FixCollection accesses Fix rows.
type FixCollection interface {
	FindByID(ctx context.Context, id string) (*models.Fix, error)
	AllByOpportunityID(ctx context.Context, opportunityID string) ([]models.Fix, error)
	AllByOpportunityIDAndStatus(ctx context.Context, opportunityID string, status models.FixStatus) ([]models.Fix, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	CountByStatusSince(ctx context.Context, status models.FixStatus, since time.Time) (int64, error)
	Create(ctx context.Context, fix *models.Fix) error
	Save(ctx context.Context, fix *models.Fix) error
	Remove(ctx context.Context, id string) error
}

// SuggestionCollection accesses Suggestion rows.
type SuggestionCollection interface {
	FindByID(ctx context.Context, id string) (*models.Suggestion, error)
	AllByOpportunityID(ctx context.Context, opportunityID string) ([]models.Suggestion, error)
	AllByFixID(ctx context.Context, fixID string) ([]models.Suggestion, error)
	Create(ctx context.Context, suggestion *models.Suggestion) error
	Save(ctx context.Context, suggestion *models.Suggestion) error
}

// RoleCollection accesses Role rows.
type RoleCollection interface {
	FindByID(ctx context.Context, id string) (*models.Role, error)
	AllByIMSOrgID(ctx context.Context, imsOrgID string) ([]models.Role, error)
	Create(ctx context.Context, role *models.Role) error
	Save(ctx context.Context, role *models.Role) error
	Remove(ctx context.Context, id string) error
}

// RoleMemberCollection accesses RoleMember rows.
type RoleMemberCollection interface {
	FindByID(ctx context.Context, id string) (*models.RoleMember, error)
	AllByRoleID(ctx context.Context, roleID string) ([]models.RoleMember, error)
	AllByIdentity(ctx context.Context, identity string) ([]models.RoleMember, error)
	Create(ctx context.Context, member *models.RoleMember) error
	Remove(ctx context.Context, id string) error
}

// ReportCollection accesses Report rows. Reads exclude soft-deleted rows.
type ReportCollection interface {
	FindByID(ctx context.Context, id string) (*models.Report, error)
	AllBySiteID(ctx context.Context, siteID string) ([]models.Report, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	Create(ctx context.Context, report *models.Report) error
	Save(ctx context.Context, report *models.Report) error
	Remove(ctx context.Context, id string) error
}

// ConsumerCollection accesses Consumer rows.
type ConsumerCollection interface {
	FindByID(ctx context.Context, id string) (*models.Consumer, error)
	FindByClientID(ctx context.Context, clientID string) (*models.Consumer, error)
	AllByIMSOrgID(ctx context.Context, imsOrgID string) ([]models.Consumer, error)
	Create(ctx context.Context, consumer *models.Consumer) error
	Save(ctx context.Context, consumer *models.Consumer) error
}

// SentimentTopicCollection accesses SentimentTopic rows.
type SentimentTopicCollection interface {
	FindByID(ctx context.Context, id string) (*models.SentimentTopic, error)
	AllBySiteID(ctx context.Context, siteID string) ([]models.SentimentTopic, error)
	Create(ctx context.Context, topic *models.SentimentTopic) error
	Save(ctx context.Context, topic *models.SentimentTopic) error
	Remove(ctx context.Context, id string) error
}

// SentimentGuidelineCollection accesses SentimentGuideline rows.
type SentimentGuidelineCollection interface {
	FindByID(ctx context.Context, id string) (*models.SentimentGuideline, error)
	AllBySiteID(ctx context.Context, siteID string) ([]models.SentimentGuideline, error)
	AllByTopicID(ctx context.Context, topicID string) ([]models.SentimentGuideline, error)
	Create(ctx context.Context, guideline *models.SentimentGuideline) error
	Save(ctx context.Context, guideline *models.SentimentGuideline) error
	Remove(ctx context.Context, id string) error
}

// AuditRunCollection accesses AuditRun rows.
type AuditRunCollection interface {
	LatestBySiteIDAndType(ctx context.Context, siteID, auditType string) (*models.AuditRun, error)
	CountTriggeredSince(ctx context.Context, since time.Time) (int64, error)
	Create(ctx context.Context, run *models.AuditRun) error
}

// Collections bundles every entity collection for handler wiring.
type Collections struct {
	Sites               SiteCollection
	Opportunities       OpportunityCollection
	Fixes               FixCollection
	Suggestions         SuggestionCollection
	Roles               RoleCollection
	RoleMembers         RoleMemberCollection
	Reports             ReportCollection
	Consumers           ConsumerCollection
	SentimentTopics     SentimentTopicCollection
	SentimentGuidelines SentimentGuidelineCollection
	AuditRuns           AuditRunCollection
}

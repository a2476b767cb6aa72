package models

import "time"

// FixType classifies the remediation a fix performs.
type FixType string

const (
	FixTypeContentUpdate  FixType = "CONTENT_UPDATE"
	FixTypeRedirectUpdate FixType = "REDIRECT_UPDATE"
	FixTypeMetadataUpdate FixType = "METADATA_UPDATE"
	FixTypeCodeChange     FixType = "CODE_CHANGE"
)

// ValidFixType reports whether the given value is a known fix type.
func ValidFixType(t string) bool {
	switch FixType(t) {
	case FixTypeContentUpdate, FixTypeRedirectUpdate, FixTypeMetadataUpdate, FixTypeCodeChange:
		return true
	}
	return false
}

// FixStatus is the lifecycle state of a fix.
type FixStatus string

const (
	FixStatusPending    FixStatus = "PENDING"
	FixStatusPublished  FixStatus = "PUBLISHED"
	FixStatusDeployed   FixStatus = "DEPLOYED"
	FixStatusRolledBack FixStatus = "ROLLED_BACK"
	FixStatusFailed     FixStatus = "FAILED"
)

// ValidFixStatus reports whether the given value is a known fix status.
func ValidFixStatus(s string) bool {
	switch FixStatus(s) {
	case FixStatusPending, FixStatusPublished, FixStatusDeployed, FixStatusRolledBack, FixStatusFailed:
		return true
	}
	return false
}

// SuggestionStatus is the lifecycle state of a suggestion.
type SuggestionStatus string

const (
	SuggestionStatusNew        SuggestionStatus = "NEW"
	SuggestionStatusApproved   SuggestionStatus = "APPROVED"
	SuggestionStatusInProgress SuggestionStatus = "IN_PROGRESS"
	SuggestionStatusFixed      SuggestionStatus = "FIXED"
	SuggestionStatusSkipped    SuggestionStatus = "SKIPPED"
	SuggestionStatusError      SuggestionStatus = "ERROR"
)

// ReportStatus is the lifecycle state of a report generation job.
type ReportStatus string

const (
	ReportStatusProcessing ReportStatus = "PROCESSING"
	ReportStatusSuccess    ReportStatus = "SUCCESS"
	ReportStatusFailed     ReportStatus = "FAILED"
)

// ConsumerStatus is the lifecycle state of an API consumer. REVOKED is
// terminal.
type ConsumerStatus string

const (
	ConsumerStatusActive    ConsumerStatus = "ACTIVE"
	ConsumerStatusSuspended ConsumerStatus = "SUSPENDED"
	ConsumerStatusRevoked   ConsumerStatus = "REVOKED"
)

// Site is an audited customer site.
type Site struct {
	ID           string    `gorm:"column:id;primaryKey" json:"id"`
	BaseURL      string    `gorm:"column:base_url;not null" json:"baseURL"`
	IMSOrgID     string    `gorm:"column:ims_org_id;not null;index" json:"imsOrgId"`
	DeliveryType string    `gorm:"column:delivery_type" json:"deliveryType"`
	IsSandbox    bool      `gorm:"column:is_sandbox;not null;default:0" json:"isSandbox"`
	GitHubURL    string    `gorm:"column:github_url" json:"gitHubURL,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Site) TableName() string { return "sites" }

// Opportunity groups suggestions detected by one audit of a site.
type Opportunity struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	SiteID    string    `gorm:"column:site_id;not null;index" json:"siteId"`
	Type      string    `gorm:"column:type;not null" json:"type"`
	Status    string    `gorm:"column:status;not null" json:"status"`
	Title     string    `gorm:"column:title" json:"title"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Opportunity) TableName() string { return "opportunities" }

// Fix is one applied or queued remediation action.
type Fix struct {
	ID            string     `gorm:"column:id;primaryKey" json:"id"`
	OpportunityID string     `gorm:"column:opportunity_id;not null;index" json:"opportunityId"`
	Type          FixType    `gorm:"column:type;not null" json:"type"`
	Status        FixStatus  `gorm:"column:status;not null;index" json:"status"`
	Origin        string     `gorm:"column:origin" json:"origin"`
	ChangeDetails JSONText   `gorm:"column:change_details;type:text" json:"changeDetails,omitempty"`
	ExecutedBy    string     `gorm:"column:executed_by" json:"executedBy,omitempty"`
	ExecutedAt    *time.Time `gorm:"column:executed_at" json:"executedAt,omitempty"`
	PublishedAt   *time.Time `gorm:"column:published_at" json:"publishedAt,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt     time.Time  `gorm:"column:updated_at" json:"updatedAt"`
}

func (Fix) TableName() string { return "fixes" }

// Suggestion is a single remediation proposal produced by an audit.
type Suggestion struct {
	ID            string           `gorm:"column:id;primaryKey" json:"id"`
	OpportunityID string           `gorm:"column:opportunity_id;not null;index" json:"opportunityId"`
	FixID         *string          `gorm:"column:fix_id;index" json:"fixId,omitempty"`
	Type          string           `gorm:"column:type" json:"type"`
	Status        SuggestionStatus `gorm:"column:status;not null" json:"status"`
	Rank          int              `gorm:"column:rank" json:"rank"`
	Data          JSONText         `gorm:"column:data;type:text" json:"data,omitempty"`
	CreatedAt     time.Time        `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt     time.Time        `gorm:"column:updated_at" json:"updatedAt"`
}

func (Suggestion) TableName() string { return "suggestions" }

// SuggestionData is the parsed shape of Suggestion.Data used by the
// fix-application pipeline.
type SuggestionData struct {
	URL    string `json:"url"`
	Source string `json:"source"`
	Issues []struct {
		Type string `json:"type"`
	} `json:"issues"`
}

// ACLEntry grants actions on a path pattern.
type ACLEntry struct {
	Path    string   `json:"path"`
	Actions []string `json:"actions"`
}

// Role is a named set of ACL entries scoped to an IMS org.
type Role struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	IMSOrgID  string    `gorm:"column:ims_org_id;not null;index" json:"imsOrgId"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	ACL       JSONText  `gorm:"column:acl;type:text" json:"acl,omitempty"`
	CreatedBy string    `gorm:"column:created_by" json:"createdBy,omitempty"`
	UpdatedBy string    `gorm:"column:updated_by" json:"updatedBy,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Role) TableName() string { return "roles" }

// RoleMember binds a principal (user or group) to a role.
type RoleMember struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	RoleID    string    `gorm:"column:role_id;not null;index" json:"roleId"`
	Identity  string    `gorm:"column:identity;not null" json:"identity"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (RoleMember) TableName() string { return "role_members" }

// Report is one generated (or in-flight) report for a site. Periods are
// stored as ISO dates so the duplicate-window check is a plain string
// comparison.
type Report struct {
	ID                    string       `gorm:"column:id;primaryKey" json:"id"`
	SiteID                string       `gorm:"column:site_id;not null;index" json:"siteId"`
	ReportType            string       `gorm:"column:report_type;not null" json:"reportType"`
	ReportPeriodStart     string       `gorm:"column:report_period_start;not null" json:"-"`
	ReportPeriodEnd       string       `gorm:"column:report_period_end;not null" json:"-"`
	ComparisonPeriodStart string       `gorm:"column:comparison_period_start" json:"-"`
	ComparisonPeriodEnd   string       `gorm:"column:comparison_period_end" json:"-"`
	Status                ReportStatus `gorm:"column:status;not null" json:"status"`
	StoragePath           string       `gorm:"column:storage_path" json:"storagePath,omitempty"`
	UpdatedBy             string       `gorm:"column:updated_by" json:"updatedBy,omitempty"`
	CreatedAt             time.Time    `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt             time.Time    `gorm:"column:updated_at" json:"updatedAt"`
	DeletedAt             *time.Time   `gorm:"column:deleted_at;index" json:"-"`
}

func (Report) TableName() string { return "reports" }

// ReportPeriod returns the report date range as a Period.
func (r *Report) ReportPeriod() Period {
	return Period{StartDate: r.ReportPeriodStart, EndDate: r.ReportPeriodEnd}
}

// ComparisonPeriod returns the comparison date range as a Period.
func (r *Report) ComparisonPeriod() Period {
	return Period{StartDate: r.ComparisonPeriodStart, EndDate: r.ComparisonPeriodEnd}
}

// Period is a date range in ISO (YYYY-MM-DD) form.
type Period struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Consumer is a registered API client.
type Consumer struct {
	ID                 string         `gorm:"column:id;primaryKey" json:"id"`
	ClientID           string         `gorm:"column:client_id;not null;uniqueIndex" json:"clientId"`
	TechnicalAccountID string         `gorm:"column:technical_account_id;not null" json:"technicalAccountId"`
	IMSOrgID           string         `gorm:"column:ims_org_id;not null;index" json:"imsOrgId"`
	Name               string         `gorm:"column:name" json:"name"`
	Capabilities       StringList     `gorm:"column:capabilities;type:text" json:"capabilities"`
	Status             ConsumerStatus `gorm:"column:status;not null" json:"status"`
	RevokedAt          *time.Time     `gorm:"column:revoked_at" json:"revokedAt,omitempty"`
	CreatedAt          time.Time      `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt          time.Time      `gorm:"column:updated_at" json:"updatedAt"`
}

func (Consumer) TableName() string { return "consumers" }

// SentimentTopic configures one sentiment-analysis topic for a site.
type SentimentTopic struct {
	ID         string     `gorm:"column:id;primaryKey" json:"id"`
	SiteID     string     `gorm:"column:site_id;not null;index" json:"siteId"`
	Name       string     `gorm:"column:name;not null" json:"name"`
	Prompt     string     `gorm:"column:prompt;type:text" json:"prompt,omitempty"`
	Enabled    bool       `gorm:"column:enabled;not null;default:1" json:"enabled"`
	AuditTypes StringList `gorm:"column:audit_types;type:text" json:"auditTypes"`
	CreatedAt  time.Time  `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt  time.Time  `gorm:"column:updated_at" json:"updatedAt"`
}

func (SentimentTopic) TableName() string { return "sentiment_topics" }

// SentimentGuideline is a per-topic scoring guideline.
type SentimentGuideline struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	SiteID    string    `gorm:"column:site_id;not null;index" json:"siteId"`
	TopicID   string    `gorm:"column:topic_id;not null;index" json:"topicId"`
	Text      string    `gorm:"column:text;type:text;not null" json:"text"`
	Enabled   bool      `gorm:"column:enabled;not null;default:1" json:"enabled"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (SentimentGuideline) TableName() string { return "sentiment_guidelines" }

// AuditRun records one triggered sandbox audit, used for rate limiting.
type AuditRun struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	SiteID      string    `gorm:"column:site_id;not null;index" json:"siteId"`
	AuditType   string    `gorm:"column:audit_type;not null" json:"auditType"`
	TriggeredBy string    `gorm:"column:triggered_by" json:"triggeredBy,omitempty"`
	TriggeredAt time.Time `gorm:"column:triggered_at;not null" json:"triggeredAt"`
}

func (AuditRun) TableName() string { return "audit_runs" }

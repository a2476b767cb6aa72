package notifications

import "time"

// Digest summarizes platform activity over a window.
type Digest struct {
	GeneratedAt      time.Time `json:"generated_at"`
	Window           string    `json:"window"` // e.g. "24h"
	FixesCreated     int64     `json:"fixes_created"`
	FixesDeployed    int64     `json:"fixes_deployed"`
	ReportsGenerated int64     `json:"reports_generated"`
	AuditsTriggered  int64     `json:"audits_triggered"`
}

// Alert is an urgent, single-event notification.
type Alert struct {
	Type    string `json:"type"` // "critical", "urgent", "info"
	Title   string `json:"title"`
	Message string `json:"message"`
}

// NotificationInterface defines the contract for notification services
type NotificationInterface interface {
	SendDigest(digest *Digest) error
	SendAlert(alert *Alert) error
}

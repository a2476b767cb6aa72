package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/siteoptic/audit-api/internal/models"
	"github.com/siteoptic/audit-api/internal/notifications"
)

type triggerAuditRequest struct {
	AuditType string `json:"auditType"`
}

type rateLimitResponse struct {
	Message          string `json:"message"`
	MinutesRemaining int    `json:"minutesRemaining"`
}

// auditJob is the message enqueued for the audit worker.
type auditJob struct {
	SiteID     string `json:"siteId"`
	AuditType  string `json:"auditType"`
	AuditRunID string `json:"auditRunId"`
}

func (h *Handler) triggerAudit(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathUUID(w, r, "siteId")
	if !ok {
		return
	}

	var req triggerAuditRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.AuditType == "" {
		badRequest(w, "auditType is required")
		return
	}

	site := h.requireSite(w, r, siteID)
	if site == nil {
		return
	}
	if !site.IsSandbox {
		badRequest(w, "Audits can only be triggered for sandbox sites")
		return
	}

	// Rolling per-(site, auditType) window: a trigger at lastRun+delta is
	// rejected while delta < window, with the remaining minutes reported.
	last, err := h.collections.AuditRuns.LatestBySiteIDAndType(r.Context(), site.ID, req.AuditType)
	if err != nil {
		internalError(w, err)
		return
	}
	now := time.Now().UTC()
	if last != nil {
		window := time.Duration(h.config.SandboxAuditWindowHours) * time.Hour
		elapsed := now.Sub(last.TriggeredAt)
		if elapsed < window {
			remaining := h.config.SandboxAuditWindowHours*60 - int(elapsed.Minutes())
			respondJSON(w, http.StatusTooManyRequests, rateLimitResponse{
				Message:          "Audit rate limit exceeded for " + req.AuditType,
				MinutesRemaining: remaining,
			})
			return
		}
	}

	run := &models.AuditRun{
		ID:          uuid.NewString(),
		SiteID:      site.ID,
		AuditType:   req.AuditType,
		TriggeredBy: profileFrom(r).UserID,
		TriggeredAt: now,
	}
	if err := h.collections.AuditRuns.Create(r.Context(), run); err != nil {
		internalError(w, err)
		return
	}

	job := auditJob{SiteID: site.ID, AuditType: req.AuditType, AuditRunID: run.ID}
	if err := h.queue.SendMessage(r.Context(), h.config.AuditQueueURL, job); err != nil {
		internalError(w, err)
		return
	}

	// Best effort; the audit is already queued.
	if h.notifier != nil {
		if err := h.notifier.SendAlert(&notifications.Alert{
			Type:    "info",
			Title:   "Sandbox audit triggered",
			Message: req.AuditType + " audit queued for " + site.BaseURL,
		}); err != nil {
			logrus.Warnf("Failed to send audit notification: %v", err)
		}
	}

	respondJSON(w, http.StatusAccepted, run)
}

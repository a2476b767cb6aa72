package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/siteoptic/audit-api/internal/access"
	"github.com/siteoptic/audit-api/internal/config"
	"github.com/siteoptic/audit-api/internal/data"
	"github.com/siteoptic/audit-api/internal/ims"
	"github.com/siteoptic/audit-api/internal/models"
	"github.com/siteoptic/audit-api/internal/notifications"
	"github.com/siteoptic/audit-api/internal/queue"
	"github.com/siteoptic/audit-api/internal/remediation"
	"github.com/siteoptic/audit-api/internal/storage"
)

// Applier runs the fix-application pipeline for one opportunity.
type Applier interface {
	Apply(ctx context.Context, site *models.Site, fixType models.FixType, suggestions []models.Suggestion) ([]remediation.GroupResult, error)
}

// Handler holds every controller dependency.
type Handler struct {
	config      *config.Config
	collections *data.Collections
	storage     storage.StorageInterface
	queue       queue.QueueInterface
	ims         ims.ClientInterface
	access      access.CheckerInterface
	applier     Applier
	notifier    notifications.NotificationInterface
}

// NewHandler creates a new API handler
func NewHandler(cfg *config.Config, collections *data.Collections, store storage.StorageInterface, q queue.QueueInterface, identity ims.ClientInterface, checker access.CheckerInterface, applier Applier, notifier notifications.NotificationInterface) *Handler {
	return &Handler{
		config:      cfg,
		collections: collections,
		storage:     store,
		queue:       q,
		ims:         identity,
		access:      checker,
		applier:     applier,
		notifier:    notifier,
	}
}

// Router builds the HTTP route table.
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", h.healthCheck).Methods("GET")

	api := router.PathPrefix("/").Subrouter()
	api.Use(h.authenticate)

	fixes := api.PathPrefix("/sites/{siteId}/opportunities/{opportunityId}/fixes").Subrouter()
	fixes.HandleFunc("", h.listFixes).Methods("GET")
	fixes.HandleFunc("", h.createFixes).Methods("POST")
	fixes.HandleFunc("/by-status/{status}", h.listFixesByStatus).Methods("GET")
	fixes.HandleFunc("/status", h.patchFixStatuses).Methods("PATCH")
	fixes.HandleFunc("/apply", h.applyFixes).Methods("POST")
	fixes.HandleFunc("/{fixId}", h.getFix).Methods("GET")
	fixes.HandleFunc("/{fixId}", h.patchFix).Methods("PATCH")
	fixes.HandleFunc("/{fixId}", h.deleteFix).Methods("DELETE")
	fixes.HandleFunc("/{fixId}/suggestions", h.listFixSuggestions).Methods("GET")

	api.HandleFunc("/sites/{siteId}/reports", h.createReport).Methods("POST")
	api.HandleFunc("/sites/{siteId}/reports", h.listReports).Methods("GET")
	api.HandleFunc("/sites/{siteId}/reports/{reportId}", h.getReport).Methods("GET")
	api.HandleFunc("/sites/{siteId}/reports/{reportId}", h.deleteReport).Methods("DELETE")
	api.HandleFunc("/sites/{siteId}/reports/{reportId}/content", h.getReportContent).Methods("GET")

	api.HandleFunc("/sites/{siteId}/audits", h.triggerAudit).Methods("POST")

	api.HandleFunc("/roles", h.listRoles).Methods("GET")
	api.HandleFunc("/roles", h.createRole).Methods("POST")
	api.HandleFunc("/roles/{roleId}", h.getRole).Methods("GET")
	api.HandleFunc("/roles/{roleId}", h.patchRole).Methods("PATCH")
	api.HandleFunc("/roles/{roleId}", h.deleteRole).Methods("DELETE")
	api.HandleFunc("/roles/{roleId}/members", h.addRoleMember).Methods("POST")
	api.HandleFunc("/roles/{roleId}/members/{memberId}", h.removeRoleMember).Methods("DELETE")

	api.HandleFunc("/consumers", h.createConsumer).Methods("POST")
	api.HandleFunc("/consumers", h.listConsumers).Methods("GET")
	api.HandleFunc("/consumers/{consumerId}", h.getConsumer).Methods("GET")
	api.HandleFunc("/consumers/{consumerId}", h.patchConsumer).Methods("PATCH")
	api.HandleFunc("/consumers/{consumerId}/revoke", h.revokeConsumer).Methods("POST")

	api.HandleFunc("/sites/{siteId}/sentiment/topics", h.listSentimentTopics).Methods("GET")
	api.HandleFunc("/sites/{siteId}/sentiment/topics", h.createSentimentTopic).Methods("POST")
	api.HandleFunc("/sites/{siteId}/sentiment/topics/{topicId}", h.patchSentimentTopic).Methods("PATCH")
	api.HandleFunc("/sites/{siteId}/sentiment/topics/{topicId}", h.deleteSentimentTopic).Methods("DELETE")
	api.HandleFunc("/sites/{siteId}/sentiment/guidelines", h.listSentimentGuidelines).Methods("GET")
	api.HandleFunc("/sites/{siteId}/sentiment/guidelines", h.createSentimentGuideline).Methods("POST")
	api.HandleFunc("/sites/{siteId}/sentiment/guidelines/{guidelineId}", h.patchSentimentGuideline).Methods("PATCH")
	api.HandleFunc("/sites/{siteId}/sentiment/guidelines/{guidelineId}", h.deleteSentimentGuideline).Methods("DELETE")

	api.HandleFunc("/users/me", h.getUserDetails).Methods("GET")

	api.HandleFunc("/sites/{siteId}/files", h.getFile).Methods("GET")
	api.HandleFunc("/sites/{siteId}/scraped-content", h.listScrapedContent).Methods("GET")
	api.HandleFunc("/sites/{siteId}/scraped-content/file", h.getScrapedFile).Methods("GET")

	return router
}

func (h *Handler) healthCheck(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type contextKey string

const profileKey contextKey = "profile"

// authenticate validates the bearer token against IMS and stores the
// caller profile on the request context.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			unauthorized(w, "Missing bearer token")
			return
		}

		profile, err := h.ims.ValidateAccessToken(r.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			logrus.Debugf("Token validation failed: %v", err)
			unauthorized(w, "Invalid access token")
			return
		}

		ctx := context.WithValue(r.Context(), profileKey, profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func profileFrom(r *http.Request) *ims.Profile {
	profile, _ := r.Context().Value(profileKey).(*ims.Profile)
	return profile
}

// pathUUID extracts and validates a UUID path parameter. On failure it
// writes the 400 response and returns false.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value := mux.Vars(r)[name]
	if _, err := uuid.Parse(value); err != nil {
		badRequest(w, name+" must be a valid UUID")
		return "", false
	}
	return value, true
}

// requireSite loads the site and enforces org access. Writes the error
// response and returns nil when the request must not proceed.
func (h *Handler) requireSite(w http.ResponseWriter, r *http.Request, siteID string) *models.Site {
	site, err := h.collections.Sites.FindByID(r.Context(), siteID)
	if err != nil {
		internalError(w, err)
		return nil
	}
	if site == nil {
		notFound(w, "Site not found")
		return nil
	}

	ok, err := h.access.CanAccessSite(r.Context(), profileFrom(r), site)
	if err != nil {
		internalError(w, err)
		return nil
	}
	if !ok {
		forbidden(w)
		return nil
	}

	return site
}

// requireOpportunity loads the opportunity and enforces site containment.
func (h *Handler) requireOpportunity(w http.ResponseWriter, r *http.Request, site *models.Site, opportunityID string) *models.Opportunity {
	opportunity, err := h.collections.Opportunities.FindByID(r.Context(), opportunityID)
	if err != nil {
		internalError(w, err)
		return nil
	}
	if opportunity == nil || opportunity.SiteID != site.ID {
		notFound(w, "Opportunity not found")
		return nil
	}
	return opportunity
}

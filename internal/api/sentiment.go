package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/siteoptic/audit-api/internal/models"
)

func (h *Handler) listSentimentTopics(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathUUID(w, r, "siteId")
	if !ok {
		return
	}
	site := h.requireSite(w, r, siteID)
	if site == nil {
		return
	}

	topics, err := h.collections.SentimentTopics.AllBySiteID(r.Context(), site.ID)
	if err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, topics)
}

type createTopicRequest struct {
	Name       string   `json:"name"`
	Prompt     string   `json:"prompt"`
	Enabled    *bool    `json:"enabled"`
	AuditTypes []string `json:"auditTypes"`
}

func (h *Handler) createSentimentTopic(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathUUID(w, r, "siteId")
	if !ok {
		return
	}

	var req createTopicRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		badRequest(w, "name is required")
		return
	}

	site := h.requireSite(w, r, siteID)
	if site == nil {
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	now := time.Now().UTC()
	topic := &models.SentimentTopic{
		ID:         uuid.NewString(),
		SiteID:     site.ID,
		Name:       req.Name,
		Prompt:     req.Prompt,
		Enabled:    enabled,
		AuditTypes: req.AuditTypes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := h.collections.SentimentTopics.Create(r.Context(), topic); err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, topic)
}

// requireTopic loads a topic and enforces site containment.
func (h *Handler) requireTopic(w http.ResponseWriter, r *http.Request, site *models.Site) *models.SentimentTopic {
	topicID, ok := pathUUID(w, r, "topicId")
	if !ok {
		return nil
	}

	topic, err := h.collections.SentimentTopics.FindByID(r.Context(), topicID)
	if err != nil {
		internalError(w, err)
		return nil
	}
	if topic == nil || topic.SiteID != site.ID {
		notFound(w, "Sentiment topic not found")
		return nil
	}
	return topic
}

type patchTopicRequest struct {
	Name       *string   `json:"name"`
	Prompt     *string   `json:"prompt"`
	Enabled    *bool     `json:"enabled"`
	AuditTypes *[]string `json:"auditTypes"`
}

func (h *Handler) patchSentimentTopic(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathUUID(w, r, "siteId")
	if !ok {
		return
	}
	site := h.requireSite(w, r, siteID)
	if site == nil {
		return
	}
	topic := h.requireTopic(w, r, site)
	if topic == nil {
		return
	}

	var req patchTopicRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == nil && req.Prompt == nil && req.Enabled == nil && req.AuditTypes == nil {
		badRequest(w, "No updates provided")
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			badRequest(w, "name must not be empty")
			return
		}
		topic.Name = *req.Name
	}
	if req.Prompt != nil {
		topic.Prompt = *req.Prompt
	}
	if req.Enabled != nil {
		topic.Enabled = *req.Enabled
	}
	if req.AuditTypes != nil {
		topic.AuditTypes = *req.AuditTypes
	}
	topic.UpdatedAt = time.Now().UTC()

	if err := h.collections.SentimentTopics.Save(r.Context(), topic); err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, topic)
}

func (h *Handler) deleteSentimentTopic(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathUUID(w, r, "siteId")
	if !ok {
		return
	}
	site := h.requireSite(w, r, siteID)
	if site == nil {
		return
	}
	topic := h.requireTopic(w, r, site)
	if topic == nil {
		return
	}

	// Guidelines of a removed topic stay but stop contributing.
	guidelines, err := h.collections.SentimentGuidelines.AllByTopicID(r.Context(), topic.ID)
	if err != nil {
		internalError(w, err)
		return
	}
	for i := range guidelines {
		guidelines[i].Enabled = false
		guidelines[i].UpdatedAt = time.Now().UTC()
		if err := h.collections.SentimentGuidelines.Save(r.Context(), &guidelines[i]); err != nil {
			internalError(w, err)
			return
		}
	}

	if err := h.collections.SentimentTopics.Remove(r.Context(), topic.ID); err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) listSentimentGuidelines(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathUUID(w, r, "siteId")
	if !ok {
		return
	}
	site := h.requireSite(w, r, siteID)
	if site == nil {
		return
	}

	guidelines, err := h.collections.SentimentGuidelines.AllBySiteID(r.Context(), site.ID)
	if err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, guidelines)
}

type createGuidelineRequest struct {
	TopicID string `json:"topicId"`
	Text    string `json:"text"`
	Enabled *bool  `json:"enabled"`
}

func (h *Handler) createSentimentGuideline(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathUUID(w, r, "siteId")
	if !ok {
		return
	}

	var req createGuidelineRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Text == "" {
		badRequest(w, "text is required")
		return
	}
	if _, err := uuid.Parse(req.TopicID); err != nil {
		badRequest(w, "topicId must be a valid UUID")
		return
	}

	site := h.requireSite(w, r, siteID)
	if site == nil {
		return
	}

	topic, err := h.collections.SentimentTopics.FindByID(r.Context(), req.TopicID)
	if err != nil {
		internalError(w, err)
		return
	}
	if topic == nil || topic.SiteID != site.ID {
		notFound(w, "Sentiment topic not found")
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	now := time.Now().UTC()
	guideline := &models.SentimentGuideline{
		ID:        uuid.NewString(),
		SiteID:    site.ID,
		TopicID:   topic.ID,
		Text:      req.Text,
		Enabled:   enabled,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.collections.SentimentGuidelines.Create(r.Context(), guideline); err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, guideline)
}

// requireGuideline loads a guideline and enforces site containment.
func (h *Handler) requireGuideline(w http.ResponseWriter, r *http.Request, site *models.Site) *models.SentimentGuideline {
	guidelineID, ok := pathUUID(w, r, "guidelineId")
	if !ok {
		return nil
	}

	guideline, err := h.collections.SentimentGuidelines.FindByID(r.Context(), guidelineID)
	if err != nil {
		internalError(w, err)
		return nil
	}
	if guideline == nil || guideline.SiteID != site.ID {
		notFound(w, "Sentiment guideline not found")
		return nil
	}
	return guideline
}

type patchGuidelineRequest struct {
	Text    *string `json:"text"`
	Enabled *bool   `json:"enabled"`
}

func (h *Handler) patchSentimentGuideline(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathUUID(w, r, "siteId")
	if !ok {
		return
	}
	site := h.requireSite(w, r, siteID)
	if site == nil {
		return
	}
	guideline := h.requireGuideline(w, r, site)
	if guideline == nil {
		return
	}

	var req patchGuidelineRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Text == nil && req.Enabled == nil {
		badRequest(w, "No updates provided")
		return
	}

	if req.Text != nil {
		if *req.Text == "" {
			badRequest(w, "text must not be empty")
			return
		}
		guideline.Text = *req.Text
	}
	if req.Enabled != nil {
		guideline.Enabled = *req.Enabled
	}
	guideline.UpdatedAt = time.Now().UTC()

	if err := h.collections.SentimentGuidelines.Save(r.Context(), guideline); err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, guideline)
}

func (h *Handler) deleteSentimentGuideline(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathUUID(w, r, "siteId")
	if !ok {
		return
	}
	site := h.requireSite(w, r, siteID)
	if site == nil {
		return
	}
	guideline := h.requireGuideline(w, r, site)
	if guideline == nil {
		return
	}

	if err := h.collections.SentimentGuidelines.Remove(r.Context(), guideline.ID); err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

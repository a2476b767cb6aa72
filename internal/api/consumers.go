package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/siteoptic/audit-api/internal/models"
)

type createConsumerRequest struct {
	ClientID           string   `json:"clientId"`
	TechnicalAccountID string   `json:"technicalAccountId"`
	IMSOrgID           string   `json:"imsOrgId"`
	Name               string   `json:"name"`
	Capabilities       []string `json:"capabilities"`
}

func (h *Handler) createConsumer(w http.ResponseWriter, r *http.Request) {
	var req createConsumerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ClientID == "" || req.TechnicalAccountID == "" || req.IMSOrgID == "" {
		badRequest(w, "clientId, technicalAccountId and imsOrgId are required")
		return
	}

	if !h.requireOrgAdmin(w, r, req.IMSOrgID) {
		return
	}

	existing, err := h.collections.Consumers.FindByClientID(r.Context(), req.ClientID)
	if err != nil {
		internalError(w, err)
		return
	}
	if existing != nil {
		badRequest(w, "A consumer with this clientId already exists")
		return
	}

	now := time.Now().UTC()
	consumer := &models.Consumer{
		ID:                 uuid.NewString(),
		ClientID:           req.ClientID,
		TechnicalAccountID: req.TechnicalAccountID,
		IMSOrgID:           req.IMSOrgID,
		Name:               req.Name,
		Capabilities:       req.Capabilities,
		Status:             models.ConsumerStatusActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := h.collections.Consumers.Create(r.Context(), consumer); err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, consumer)
}

func (h *Handler) listConsumers(w http.ResponseWriter, r *http.Request) {
	imsOrgID := r.URL.Query().Get("imsOrgId")
	if imsOrgID == "" {
		badRequest(w, "imsOrgId query parameter is required")
		return
	}

	ok, err := h.access.CanAccessOrg(r.Context(), profileFrom(r), imsOrgID)
	if err != nil {
		internalError(w, err)
		return
	}
	if !ok {
		forbidden(w)
		return
	}

	consumers, err := h.collections.Consumers.AllByIMSOrgID(r.Context(), imsOrgID)
	if err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, consumers)
}

// requireConsumer loads a consumer and enforces org access.
func (h *Handler) requireConsumer(w http.ResponseWriter, r *http.Request) *models.Consumer {
	consumerID, ok := pathUUID(w, r, "consumerId")
	if !ok {
		return nil
	}

	consumer, err := h.collections.Consumers.FindByID(r.Context(), consumerID)
	if err != nil {
		internalError(w, err)
		return nil
	}
	if consumer == nil {
		notFound(w, "Consumer not found")
		return nil
	}

	ok, err = h.access.CanAccessOrg(r.Context(), profileFrom(r), consumer.IMSOrgID)
	if err != nil {
		internalError(w, err)
		return nil
	}
	if !ok {
		forbidden(w)
		return nil
	}
	return consumer
}

func (h *Handler) getConsumer(w http.ResponseWriter, r *http.Request) {
	consumer := h.requireConsumer(w, r)
	if consumer == nil {
		return
	}
	respondJSON(w, http.StatusOK, consumer)
}

// immutableConsumerFields may never appear in an update payload, no
// matter what value they carry.
var immutableConsumerFields = []string{"clientId", "technicalAccountId", "imsOrgId"}

type patchConsumerRequest struct {
	Name         *string   `json:"name"`
	Capabilities *[]string `json:"capabilities"`
	Status       *string   `json:"status"`
}

func (h *Handler) patchConsumer(w http.ResponseWriter, r *http.Request) {
	consumer := h.requireConsumer(w, r)
	if consumer == nil {
		return
	}

	var raw map[string]json.RawMessage
	if !decodeJSON(w, r, &raw) {
		return
	}
	for _, field := range immutableConsumerFields {
		if _, present := raw[field]; present {
			badRequest(w, field+" is immutable")
			return
		}
	}

	if consumer.Status == models.ConsumerStatusRevoked {
		badRequest(w, "Consumer is revoked")
		return
	}

	var req patchConsumerRequest
	buf, _ := json.Marshal(raw)
	if err := json.Unmarshal(buf, &req); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	if req.Name == nil && req.Capabilities == nil && req.Status == nil {
		badRequest(w, "No updates provided")
		return
	}

	if req.Status != nil {
		status := models.ConsumerStatus(*req.Status)
		if status != models.ConsumerStatusActive && status != models.ConsumerStatusSuspended {
			badRequest(w, "status must be ACTIVE or SUSPENDED")
			return
		}
		consumer.Status = status
	}
	if req.Name != nil {
		consumer.Name = *req.Name
	}
	if req.Capabilities != nil {
		consumer.Capabilities = *req.Capabilities
	}
	consumer.UpdatedAt = time.Now().UTC()

	if err := h.collections.Consumers.Save(r.Context(), consumer); err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, consumer)
}

func (h *Handler) revokeConsumer(w http.ResponseWriter, r *http.Request) {
	consumer := h.requireConsumer(w, r)
	if consumer == nil {
		return
	}

	if consumer.Status == models.ConsumerStatusRevoked {
		badRequest(w, "Consumer is already revoked")
		return
	}

	now := time.Now().UTC()
	consumer.Status = models.ConsumerStatusRevoked
	consumer.RevokedAt = &now
	consumer.UpdatedAt = now

	if err := h.collections.Consumers.Save(r.Context(), consumer); err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, consumer)
}

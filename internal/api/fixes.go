package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/siteoptic/audit-api/internal/models"
	"github.com/siteoptic/audit-api/internal/remediation"
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		badRequest(w, "Invalid request body")
		return false
	}
	return true
}

// fixItemResult is one entry of a multi-status fixes envelope.
type fixItemResult struct {
	Index      int         `json:"index"`
	StatusCode int         `json:"statusCode"`
	Fix        *models.Fix `json:"fix,omitempty"`
	Message    string      `json:"message,omitempty"`
}

type fixesBatchResponse struct {
	Fixes    []fixItemResult `json:"fixes"`
	Metadata batchMetadata   `json:"metadata"`
}

func batchResponse(results []fixItemResult) fixesBatchResponse {
	codes := make([]int, len(results))
	for i, result := range results {
		codes[i] = result.StatusCode
	}
	return fixesBatchResponse{Fixes: results, Metadata: metadataFor(codes)}
}

// fixScope resolves the {siteId}/{opportunityId} pair shared by every
// fixes route, enforcing validation, access and containment in order.
func (h *Handler) fixScope(w http.ResponseWriter, r *http.Request) (*models.Site, *models.Opportunity, bool) {
	siteID, ok := pathUUID(w, r, "siteId")
	if !ok {
		return nil, nil, false
	}
	opportunityID, ok := pathUUID(w, r, "opportunityId")
	if !ok {
		return nil, nil, false
	}

	site := h.requireSite(w, r, siteID)
	if site == nil {
		return nil, nil, false
	}
	opportunity := h.requireOpportunity(w, r, site, opportunityID)
	if opportunity == nil {
		return nil, nil, false
	}
	return site, opportunity, true
}

func (h *Handler) listFixes(w http.ResponseWriter, r *http.Request) {
	_, opportunity, ok := h.fixScope(w, r)
	if !ok {
		return
	}

	fixes, err := h.collections.Fixes.AllByOpportunityID(r.Context(), opportunity.ID)
	if err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fixes)
}

func (h *Handler) listFixesByStatus(w http.ResponseWriter, r *http.Request) {
	status := mux.Vars(r)["status"]
	if !models.ValidFixStatus(status) {
		badRequest(w, "Invalid fix status")
		return
	}

	_, opportunity, ok := h.fixScope(w, r)
	if !ok {
		return
	}

	fixes, err := h.collections.Fixes.AllByOpportunityIDAndStatus(r.Context(), opportunity.ID, models.FixStatus(status))
	if err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fixes)
}

// requireFix loads a fix and enforces that it belongs to the opportunity.
func (h *Handler) requireFix(w http.ResponseWriter, r *http.Request, opportunity *models.Opportunity) *models.Fix {
	fixID, ok := pathUUID(w, r, "fixId")
	if !ok {
		return nil
	}

	fix, err := h.collections.Fixes.FindByID(r.Context(), fixID)
	if err != nil {
		internalError(w, err)
		return nil
	}
	if fix == nil || fix.OpportunityID != opportunity.ID {
		notFound(w, "Fix not found")
		return nil
	}
	return fix
}

func (h *Handler) getFix(w http.ResponseWriter, r *http.Request) {
	_, opportunity, ok := h.fixScope(w, r)
	if !ok {
		return
	}
	fix := h.requireFix(w, r, opportunity)
	if fix == nil {
		return
	}
	respondJSON(w, http.StatusOK, fix)
}

func (h *Handler) listFixSuggestions(w http.ResponseWriter, r *http.Request) {
	_, opportunity, ok := h.fixScope(w, r)
	if !ok {
		return
	}
	fix := h.requireFix(w, r, opportunity)
	if fix == nil {
		return
	}

	suggestions, err := h.collections.Suggestions.AllByFixID(r.Context(), fix.ID)
	if err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, suggestions)
}

type createFixItem struct {
	Type          string          `json:"type"`
	Origin        string          `json:"origin"`
	ChangeDetails models.JSONText `json:"changeDetails"`
	ExecutedBy    string          `json:"executedBy"`
}

type createFixesRequest struct {
	Fixes []createFixItem `json:"fixes"`
}

func (h *Handler) createFixes(w http.ResponseWriter, r *http.Request) {
	_, opportunity, ok := h.fixScope(w, r)
	if !ok {
		return
	}

	var req createFixesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Fixes) == 0 {
		badRequest(w, "No fixes provided")
		return
	}

	results := make([]fixItemResult, 0, len(req.Fixes))
	for i, item := range req.Fixes {
		if !models.ValidFixType(item.Type) {
			results = append(results, fixItemResult{
				Index:      i,
				StatusCode: http.StatusBadRequest,
				Message:    "Invalid fix type: " + item.Type,
			})
			continue
		}

		origin := item.Origin
		if origin == "" {
			origin = "MANUAL"
		}

		now := time.Now().UTC()
		fix := &models.Fix{
			ID:            uuid.NewString(),
			OpportunityID: opportunity.ID,
			Type:          models.FixType(item.Type),
			Status:        models.FixStatusPending,
			Origin:        origin,
			ChangeDetails: item.ChangeDetails,
			ExecutedBy:    item.ExecutedBy,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if err := h.collections.Fixes.Create(r.Context(), fix); err != nil {
			results = append(results, fixItemResult{
				Index:      i,
				StatusCode: http.StatusInternalServerError,
				Message:    "Failed to create fix",
			})
			continue
		}
		results = append(results, fixItemResult{Index: i, StatusCode: http.StatusCreated, Fix: fix})
	}

	respondJSON(w, http.StatusMultiStatus, batchResponse(results))
}

type patchFixRequest struct {
	ChangeDetails *models.JSONText `json:"changeDetails"`
	ExecutedBy    *string          `json:"executedBy"`
	Origin        *string          `json:"origin"`
}

func (h *Handler) patchFix(w http.ResponseWriter, r *http.Request) {
	_, opportunity, ok := h.fixScope(w, r)
	if !ok {
		return
	}
	fix := h.requireFix(w, r, opportunity)
	if fix == nil {
		return
	}

	var req patchFixRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ChangeDetails == nil && req.ExecutedBy == nil && req.Origin == nil {
		badRequest(w, "No updates provided")
		return
	}

	if req.ChangeDetails != nil {
		fix.ChangeDetails = *req.ChangeDetails
	}
	if req.ExecutedBy != nil {
		fix.ExecutedBy = *req.ExecutedBy
	}
	if req.Origin != nil {
		fix.Origin = *req.Origin
	}
	fix.UpdatedAt = time.Now().UTC()

	if err := h.collections.Fixes.Save(r.Context(), fix); err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fix)
}

type patchStatusItem struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (h *Handler) patchFixStatuses(w http.ResponseWriter, r *http.Request) {
	_, opportunity, ok := h.fixScope(w, r)
	if !ok {
		return
	}

	var items []patchStatusItem
	if !decodeJSON(w, r, &items) {
		return
	}
	if len(items) == 0 {
		badRequest(w, "No status updates provided")
		return
	}

	now := time.Now().UTC()
	results := make([]fixItemResult, 0, len(items))
	for i, item := range items {
		result := fixItemResult{Index: i}

		if _, err := uuid.Parse(item.ID); err != nil {
			result.StatusCode = http.StatusBadRequest
			result.Message = "id must be a valid UUID"
			results = append(results, result)
			continue
		}
		if !models.ValidFixStatus(item.Status) {
			result.StatusCode = http.StatusBadRequest
			result.Message = "Invalid fix status: " + item.Status
			results = append(results, result)
			continue
		}

		fix, err := h.collections.Fixes.FindByID(r.Context(), item.ID)
		if err != nil {
			result.StatusCode = http.StatusInternalServerError
			result.Message = "Failed to load fix"
			results = append(results, result)
			continue
		}
		if fix == nil || fix.OpportunityID != opportunity.ID {
			result.StatusCode = http.StatusNotFound
			result.Message = "Fix not found"
			results = append(results, result)
			continue
		}

		fix.Status = models.FixStatus(item.Status)
		fix.UpdatedAt = now
		switch fix.Status {
		case models.FixStatusDeployed:
			fix.ExecutedAt = &now
		case models.FixStatusPublished:
			fix.PublishedAt = &now
		}

		if err := h.collections.Fixes.Save(r.Context(), fix); err != nil {
			result.StatusCode = http.StatusInternalServerError
			result.Message = "Failed to save fix"
			results = append(results, result)
			continue
		}

		result.StatusCode = http.StatusOK
		result.Fix = fix
		results = append(results, result)
	}

	respondJSON(w, http.StatusMultiStatus, batchResponse(results))
}

func (h *Handler) deleteFix(w http.ResponseWriter, r *http.Request) {
	_, opportunity, ok := h.fixScope(w, r)
	if !ok {
		return
	}
	fix := h.requireFix(w, r, opportunity)
	if fix == nil {
		return
	}

	if fix.Status != models.FixStatusPending && fix.Status != models.FixStatusFailed {
		badRequest(w, "Only PENDING or FAILED fixes can be deleted")
		return
	}

	suggestions, err := h.collections.Suggestions.AllByFixID(r.Context(), fix.ID)
	if err != nil {
		internalError(w, err)
		return
	}
	for i := range suggestions {
		suggestions[i].FixID = nil
		suggestions[i].UpdatedAt = time.Now().UTC()
		if err := h.collections.Suggestions.Save(r.Context(), &suggestions[i]); err != nil {
			internalError(w, err)
			return
		}
	}

	if err := h.collections.Fixes.Remove(r.Context(), fix.ID); err != nil {
		internalError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type applyFixesRequest struct {
	Type          string   `json:"type"`
	SuggestionIDs []string `json:"suggestionIds"`
}

type applyFixesResponse struct {
	Fixes    []remediation.GroupResult `json:"fixes"`
	Metadata batchMetadata             `json:"metadata"`
}

func (h *Handler) applyFixes(w http.ResponseWriter, r *http.Request) {
	site, opportunity, ok := h.fixScope(w, r)
	if !ok {
		return
	}

	var req applyFixesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !models.ValidFixType(req.Type) {
		badRequest(w, "Invalid fix type: "+req.Type)
		return
	}
	if len(req.SuggestionIDs) == 0 {
		badRequest(w, "No suggestions provided")
		return
	}
	for _, id := range req.SuggestionIDs {
		if _, err := uuid.Parse(id); err != nil {
			badRequest(w, "suggestionIds must be valid UUIDs")
			return
		}
	}

	suggestions := make([]models.Suggestion, 0, len(req.SuggestionIDs))
	for _, id := range req.SuggestionIDs {
		suggestion, err := h.collections.Suggestions.FindByID(r.Context(), id)
		if err != nil {
			internalError(w, err)
			return
		}
		if suggestion == nil || suggestion.OpportunityID != opportunity.ID {
			notFound(w, "Suggestion not found")
			return
		}
		suggestions = append(suggestions, *suggestion)
	}

	results, err := h.applier.Apply(r.Context(), site, models.FixType(req.Type), suggestions)
	if err != nil {
		switch {
		case errors.Is(err, remediation.ErrNoMatchingFixes):
			badRequest(w, "No matching fixes found")
		case errors.Is(err, remediation.ErrAuthentication):
			respondError(w, http.StatusInternalServerError, "Authentication failed")
		default:
			internalError(w, err)
		}
		return
	}

	codes := make([]int, len(results))
	for i, result := range results {
		codes[i] = result.StatusCode
	}
	respondJSON(w, http.StatusMultiStatus, applyFixesResponse{
		Fixes:    results,
		Metadata: metadataFor(codes),
	})
}

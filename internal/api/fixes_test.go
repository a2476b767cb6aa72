package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/siteoptic/audit-api/internal/models"
	"github.com/siteoptic/audit-api/internal/remediation"
)

func fixesPath(siteID, opportunityID string) string {
	return fmt.Sprintf("/sites/%s/opportunities/%s/fixes", siteID, opportunityID)
}

func (e *testEnv) seedSuggestion(t *testing.T, opportunityID, url, source string) *models.Suggestion {
	t.Helper()

	now := time.Now().UTC()
	data := fmt.Sprintf(`{"url":%q,"source":%q,"issues":[{"type":"alt-text-missing"}]}`, url, source)
	suggestion := &models.Suggestion{
		ID:            uuid.NewString(),
		OpportunityID: opportunityID,
		Type:          "a11y",
		Status:        models.SuggestionStatusNew,
		Data:          models.JSONText(data),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, e.collections.Suggestions.Create(context.Background(), suggestion))
	return suggestion
}

func TestFixRoutesUnknownOpportunity(t *testing.T) {
	env := newTestEnv(t)
	site := env.seedSite(t, false)
	missing := uuid.NewString()

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
	}{
		{"list", "GET", fixesPath(site.ID, missing), nil},
		{"create", "POST", fixesPath(site.ID, missing), map[string]interface{}{
			"fixes": []map[string]string{{"type": "CONTENT_UPDATE"}},
		}},
		{"by status", "GET", fixesPath(site.ID, missing) + "/by-status/PENDING", nil},
		{"patch statuses", "PATCH", fixesPath(site.ID, missing) + "/status", []map[string]string{
			{"id": uuid.NewString(), "status": "DEPLOYED"},
		}},
		{"apply", "POST", fixesPath(site.ID, missing) + "/apply", map[string]interface{}{
			"type":          "CONTENT_UPDATE",
			"suggestionIds": []string{uuid.NewString()},
		}},
		{"get one", "GET", fixesPath(site.ID, missing) + "/" + uuid.NewString(), nil},
		{"delete one", "DELETE", fixesPath(site.ID, missing) + "/" + uuid.NewString(), nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := env.request(t, tc.method, tc.path, tc.body)

			assert.Equal(t, http.StatusNotFound, recorder.Code)
			var body errorResponse
			decodeBody(t, recorder, &body)
			assert.Equal(t, "Opportunity not found", body.Message)
		})
	}
}

func TestFixRoutesInvalidSiteID(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.request(t, "GET", fixesPath("not-a-uuid", uuid.NewString()), nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestCreateFixesMultiStatus(t *testing.T) {
	env := newTestEnv(t)
	site := env.seedSite(t, false)
	opportunity := env.seedOpportunity(t, site.ID)

	body := map[string]interface{}{
		"fixes": []map[string]string{
			{"type": "CONTENT_UPDATE"},
			{"type": "BAD_TYPE"},
		},
	}
	recorder := env.request(t, "POST", fixesPath(site.ID, opportunity.ID), body)

	require.Equal(t, http.StatusMultiStatus, recorder.Code)

	var resp fixesBatchResponse
	decodeBody(t, recorder, &resp)

	assert.Equal(t, 2, resp.Metadata.Total)
	assert.Equal(t, 1, resp.Metadata.Success)
	assert.Equal(t, 1, resp.Metadata.Failed)

	require.Len(t, resp.Fixes, 2)
	assert.Equal(t, 0, resp.Fixes[0].Index)
	assert.Equal(t, http.StatusCreated, resp.Fixes[0].StatusCode)
	require.NotNil(t, resp.Fixes[0].Fix)
	assert.Equal(t, models.FixStatusPending, resp.Fixes[0].Fix.Status)

	assert.Equal(t, 1, resp.Fixes[1].Index)
	assert.Equal(t, http.StatusBadRequest, resp.Fixes[1].StatusCode)
	assert.Contains(t, resp.Fixes[1].Message, "BAD_TYPE")

	// Only the valid item was persisted.
	fixes, err := env.collections.Fixes.AllByOpportunityID(context.Background(), opportunity.ID)
	require.NoError(t, err)
	assert.Len(t, fixes, 1)
}

func TestCreateFixesEmptyList(t *testing.T) {
	env := newTestEnv(t)
	site := env.seedSite(t, false)
	opportunity := env.seedOpportunity(t, site.ID)

	recorder := env.request(t, "POST", fixesPath(site.ID, opportunity.ID), map[string]interface{}{
		"fixes": []map[string]string{},
	})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestListFixesByStatusInvalidStatus(t *testing.T) {
	env := newTestEnv(t)

	// Status validation runs before any lookups, so bogus IDs still get 400.
	recorder := env.request(t, "GET", fixesPath(uuid.NewString(), uuid.NewString())+"/by-status/NOT_A_STATUS", nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	var body errorResponse
	decodeBody(t, recorder, &body)
	assert.Equal(t, "Invalid fix status", body.Message)
}

func TestListFixesByStatus(t *testing.T) {
	env := newTestEnv(t)
	site := env.seedSite(t, false)
	opportunity := env.seedOpportunity(t, site.ID)
	env.seedFix(t, opportunity.ID, models.FixStatusPending)
	deployed := env.seedFix(t, opportunity.ID, models.FixStatusDeployed)

	recorder := env.request(t, "GET", fixesPath(site.ID, opportunity.ID)+"/by-status/DEPLOYED", nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	var fixes []models.Fix
	decodeBody(t, recorder, &fixes)
	require.Len(t, fixes, 1)
	assert.Equal(t, deployed.ID, fixes[0].ID)
}

func TestGetFixWrongOpportunity(t *testing.T) {
	env := newTestEnv(t)
	site := env.seedSite(t, false)
	opportunity := env.seedOpportunity(t, site.ID)
	other := env.seedOpportunity(t, site.ID)
	fix := env.seedFix(t, other.ID, models.FixStatusPending)

	recorder := env.request(t, "GET", fixesPath(site.ID, opportunity.ID)+"/"+fix.ID, nil)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	var body errorResponse
	decodeBody(t, recorder, &body)
	assert.Equal(t, "Fix not found", body.Message)
}

func TestPatchFixNoUpdates(t *testing.T) {
	env := newTestEnv(t)
	site := env.seedSite(t, false)
	opportunity := env.seedOpportunity(t, site.ID)
	fix := env.seedFix(t, opportunity.ID, models.FixStatusPending)

	recorder := env.request(t, "PATCH", fixesPath(site.ID, opportunity.ID)+"/"+fix.ID, map[string]string{})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	var body errorResponse
	decodeBody(t, recorder, &body)
	assert.Equal(t, "No updates provided", body.Message)
}

func TestPatchFix(t *testing.T) {
	env := newTestEnv(t)
	site := env.seedSite(t, false)
	opportunity := env.seedOpportunity(t, site.ID)
	fix := env.seedFix(t, opportunity.ID, models.FixStatusPending)

	recorder := env.request(t, "PATCH", fixesPath(site.ID, opportunity.ID)+"/"+fix.ID, map[string]string{
		"executedBy": "pipeline",
	})

	require.Equal(t, http.StatusOK, recorder.Code)
	var updated models.Fix
	decodeBody(t, recorder, &updated)
	assert.Equal(t, "pipeline", updated.ExecutedBy)
	assert.Equal(t, fix.Status, updated.Status)
}

func TestPatchFixStatuses(t *testing.T) {
	env := newTestEnv(t)
	site := env.seedSite(t, false)
	opportunity := env.seedOpportunity(t, site.ID)
	fix := env.seedFix(t, opportunity.ID, models.FixStatusPending)

	body := []map[string]string{
		{"id": fix.ID, "status": "DEPLOYED"},
		{"id": "not-a-uuid", "status": "DEPLOYED"},
		{"id": uuid.NewString(), "status": "DEPLOYED"},
	}
	recorder := env.request(t, "PATCH", fixesPath(site.ID, opportunity.ID)+"/status", body)

	require.Equal(t, http.StatusMultiStatus, recorder.Code)

	var resp fixesBatchResponse
	decodeBody(t, recorder, &resp)
	assert.Equal(t, 3, resp.Metadata.Total)
	assert.Equal(t, 1, resp.Metadata.Success)
	assert.Equal(t, 2, resp.Metadata.Failed)

	require.Len(t, resp.Fixes, 3)
	assert.Equal(t, http.StatusOK, resp.Fixes[0].StatusCode)
	require.NotNil(t, resp.Fixes[0].Fix)
	assert.Equal(t, models.FixStatusDeployed, resp.Fixes[0].Fix.Status)
	assert.NotNil(t, resp.Fixes[0].Fix.ExecutedAt)

	assert.Equal(t, http.StatusBadRequest, resp.Fixes[1].StatusCode)
	assert.Equal(t, http.StatusNotFound, resp.Fixes[2].StatusCode)
}

func TestPatchFixStatusesPublishedTimestamp(t *testing.T) {
	env := newTestEnv(t)
	site := env.seedSite(t, false)
	opportunity := env.seedOpportunity(t, site.ID)
	fix := env.seedFix(t, opportunity.ID, models.FixStatusPending)

	recorder := env.request(t, "PATCH", fixesPath(site.ID, opportunity.ID)+"/status", []map[string]string{
		{"id": fix.ID, "status": "PUBLISHED"},
	})

	require.Equal(t, http.StatusMultiStatus, recorder.Code)
	var resp fixesBatchResponse
	decodeBody(t, recorder, &resp)
	require.Len(t, resp.Fixes, 1)
	require.NotNil(t, resp.Fixes[0].Fix)
	assert.NotNil(t, resp.Fixes[0].Fix.PublishedAt)
	assert.Nil(t, resp.Fixes[0].Fix.ExecutedAt)
}

func TestDeleteFix(t *testing.T) {
	env := newTestEnv(t)
	site := env.seedSite(t, false)
	opportunity := env.seedOpportunity(t, site.ID)
	fix := env.seedFix(t, opportunity.ID, models.FixStatusPending)

	suggestion := env.seedSuggestion(t, opportunity.ID, "https://example.com/a", "/a.html")
	suggestion.FixID = &fix.ID
	require.NoError(t, env.collections.Suggestions.Save(context.Background(), suggestion))

	recorder := env.request(t, "DELETE", fixesPath(site.ID, opportunity.ID)+"/"+fix.ID, nil)

	require.Equal(t, http.StatusNoContent, recorder.Code)

	gone, err := env.collections.Fixes.FindByID(context.Background(), fix.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	unlinked, err := env.collections.Suggestions.FindByID(context.Background(), suggestion.ID)
	require.NoError(t, err)
	require.NotNil(t, unlinked)
	assert.Nil(t, unlinked.FixID)
}

func TestDeleteFixRejectsDeployed(t *testing.T) {
	env := newTestEnv(t)
	site := env.seedSite(t, false)
	opportunity := env.seedOpportunity(t, site.ID)
	fix := env.seedFix(t, opportunity.ID, models.FixStatusDeployed)

	recorder := env.request(t, "DELETE", fixesPath(site.ID, opportunity.ID)+"/"+fix.ID, nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	var body errorResponse
	decodeBody(t, recorder, &body)
	assert.Equal(t, "Only PENDING or FAILED fixes can be deleted", body.Message)
}

func TestApplyFixesValidation(t *testing.T) {
	env := newTestEnv(t)
	site := env.seedSite(t, false)
	opportunity := env.seedOpportunity(t, site.ID)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"invalid type", map[string]interface{}{
			"type":          "NOT_A_TYPE",
			"suggestionIds": []string{uuid.NewString()},
		}},
		{"no suggestions", map[string]interface{}{
			"type":          "CONTENT_UPDATE",
			"suggestionIds": []string{},
		}},
		{"malformed suggestion id", map[string]interface{}{
			"type":          "CONTENT_UPDATE",
			"suggestionIds": []string{"not-a-uuid"},
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := env.request(t, "POST", fixesPath(site.ID, opportunity.ID)+"/apply", tc.body)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	}
	env.applier.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyFixesSuggestionContainment(t *testing.T) {
	env := newTestEnv(t)
	site := env.seedSite(t, false)
	opportunity := env.seedOpportunity(t, site.ID)
	other := env.seedOpportunity(t, site.ID)
	foreign := env.seedSuggestion(t, other.ID, "https://example.com/a", "/a.html")

	recorder := env.request(t, "POST", fixesPath(site.ID, opportunity.ID)+"/apply", map[string]interface{}{
		"type":          "CONTENT_UPDATE",
		"suggestionIds": []string{foreign.ID},
	})

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	var body errorResponse
	decodeBody(t, recorder, &body)
	assert.Equal(t, "Suggestion not found", body.Message)
	env.applier.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyFixesNoMatches(t *testing.T) {
	env := newTestEnv(t)
	site := env.seedSite(t, false)
	opportunity := env.seedOpportunity(t, site.ID)
	suggestion := env.seedSuggestion(t, opportunity.ID, "https://example.com/a", "/a.html")

	env.applier.On("Apply", mock.Anything, mock.Anything, models.FixTypeContentUpdate, mock.Anything).
		Return(nil, remediation.ErrNoMatchingFixes)

	recorder := env.request(t, "POST", fixesPath(site.ID, opportunity.ID)+"/apply", map[string]interface{}{
		"type":          "CONTENT_UPDATE",
		"suggestionIds": []string{suggestion.ID},
	})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	var body errorResponse
	decodeBody(t, recorder, &body)
	assert.Equal(t, "No matching fixes found", body.Message)
}

func TestApplyFixesAuthenticationFailure(t *testing.T) {
	env := newTestEnv(t)
	site := env.seedSite(t, false)
	opportunity := env.seedOpportunity(t, site.ID)
	suggestion := env.seedSuggestion(t, opportunity.ID, "https://example.com/a", "/a.html")

	env.applier.On("Apply", mock.Anything, mock.Anything, models.FixTypeContentUpdate, mock.Anything).
		Return(nil, fmt.Errorf("token fetch: %w", remediation.ErrAuthentication))

	recorder := env.request(t, "POST", fixesPath(site.ID, opportunity.ID)+"/apply", map[string]interface{}{
		"type":          "CONTENT_UPDATE",
		"suggestionIds": []string{suggestion.ID},
	})

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	var body errorResponse
	decodeBody(t, recorder, &body)
	assert.Equal(t, "Authentication failed", body.Message)
}

func TestApplyFixesMultiStatus(t *testing.T) {
	env := newTestEnv(t)
	site := env.seedSite(t, false)
	opportunity := env.seedOpportunity(t, site.ID)
	first := env.seedSuggestion(t, opportunity.ID, "https://example.com/a", "/a.html")
	second := env.seedSuggestion(t, opportunity.ID, "https://example.com/b", "/b.html")

	results := []remediation.GroupResult{
		{Fingerprint: "aaa", SuggestionIDs: []string{first.ID}, StatusCode: http.StatusOK},
		{Fingerprint: "bbb", SuggestionIDs: []string{second.ID}, StatusCode: http.StatusInternalServerError, Message: "webhook failed"},
	}
	env.applier.On("Apply", mock.Anything, mock.Anything, models.FixTypeContentUpdate, mock.MatchedBy(func(suggestions []models.Suggestion) bool {
		return len(suggestions) == 2
	})).Return(results, nil)

	recorder := env.request(t, "POST", fixesPath(site.ID, opportunity.ID)+"/apply", map[string]interface{}{
		"type":          "CONTENT_UPDATE",
		"suggestionIds": []string{first.ID, second.ID},
	})

	require.Equal(t, http.StatusMultiStatus, recorder.Code)

	var resp applyFixesResponse
	decodeBody(t, recorder, &resp)
	assert.Equal(t, 2, resp.Metadata.Total)
	assert.Equal(t, 1, resp.Metadata.Success)
	assert.Equal(t, 1, resp.Metadata.Failed)
	env.applier.AssertExpectations(t)
}

func TestApplyFixesUnexpectedError(t *testing.T) {
	env := newTestEnv(t)
	site := env.seedSite(t, false)
	opportunity := env.seedOpportunity(t, site.ID)
	suggestion := env.seedSuggestion(t, opportunity.ID, "https://example.com/a", "/a.html")

	env.applier.On("Apply", mock.Anything, mock.Anything, models.FixTypeContentUpdate, mock.Anything).
		Return(nil, errors.New("storage unavailable"))

	recorder := env.request(t, "POST", fixesPath(site.ID, opportunity.ID)+"/apply", map[string]interface{}{
		"type":          "CONTENT_UPDATE",
		"suggestionIds": []string{suggestion.ID},
	})

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Equal(t, "storage unavailable", recorder.Header().Get("x-error"))
}

package remediation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/siteoptic/audit-api/internal/data"
	"github.com/siteoptic/audit-api/internal/models"
	"github.com/siteoptic/audit-api/internal/storage"
)

// ErrNoMatchingFixes is returned when no suggestion group has a stored
// remediation report matching the requested fix type.
var ErrNoMatchingFixes = errors.New("no matching fixes found")

// ErrAuthentication is returned when the service token cannot be obtained.
var ErrAuthentication = errors.New("authentication failed")

// TokenSource supplies the service token used for webhook calls.
type TokenSource interface {
	GetServiceAccessToken(ctx context.Context) (string, error)
}

// GroupResult reports the outcome for one suggestion-fingerprint group.
type GroupResult struct {
	Fingerprint   string      `json:"fingerprint"`
	SuggestionIDs []string    `json:"suggestionIds"`
	StatusCode    int         `json:"statusCode"`
	Fix           *models.Fix `json:"fix,omitempty"`
	Message       string      `json:"message,omitempty"`
}

// fixReport is the stored report.json describing one prepared remediation.
type fixReport struct {
	Type         string   `json:"type"`
	UpdatedFiles []string `json:"updatedFiles"`
}

// Service orchestrates the accessibility-fix application pipeline.
type Service struct {
	storage     storage.StorageInterface
	tokens      TokenSource
	pr          PRInvokerInterface
	fixes       data.FixCollection
	suggestions data.SuggestionCollection
}

// NewService creates a new remediation service
func NewService(store storage.StorageInterface, tokens TokenSource, pr PRInvokerInterface, fixes data.FixCollection, suggestions data.SuggestionCollection) *Service {
	return &Service{
		storage:     store,
		tokens:      tokens,
		pr:          pr,
		fixes:       fixes,
		suggestions: suggestions,
	}
}

type group struct {
	fingerprint string
	url         string
	source      string
	issueTypes  map[string]bool
	suggestions []models.Suggestion
	reports     []matchedReport
}

type matchedReport struct {
	key    string
	report fixReport
}

// Apply groups the suggestions by fingerprint, discovers stored
// remediation reports for each group, and invokes the pull-request
// handler once per group. Group failures are recorded, not fatal;
// every group's outcome is returned.
func (s *Service) Apply(ctx context.Context, site *models.Site, fixType models.FixType, suggestions []models.Suggestion) ([]GroupResult, error) {
	groups, badData := s.groupByFingerprint(suggestions)

	// Discover candidate reports before touching IMS, so an opportunity
	// with nothing prepared fails fast with a validation error.
	anyMatch := false
	for _, g := range groups {
		if err := s.discoverReports(ctx, site.ID, g, fixType); err != nil {
			return nil, err
		}
		if len(g.reports) > 0 {
			anyMatch = true
		}
	}
	if !anyMatch {
		// When every suggestion was rejected for unusable data, the
		// per-suggestion 400 results are the answer, not a blanket error.
		if len(groups) == 0 && len(badData) > 0 {
			return badData, nil
		}
		return nil, ErrNoMatchingFixes
	}

	token, err := s.tokens.GetServiceAccessToken(ctx)
	if err != nil {
		logrus.Errorf("Failed to obtain service token: %v", err)
		return nil, ErrAuthentication
	}

	results := make([]GroupResult, 0, len(groups)+len(badData))
	for _, g := range groups {
		results = append(results, s.applyGroup(ctx, site, fixType, token, g))
	}
	results = append(results, badData...)

	return results, nil
}

func (s *Service) groupByFingerprint(suggestions []models.Suggestion) ([]*group, []GroupResult) {
	var ordered []*group
	byPrint := make(map[string]*group)
	var badData []GroupResult

	for _, suggestion := range suggestions {
		var payload models.SuggestionData
		if err := json.Unmarshal([]byte(suggestion.Data), &payload); err != nil || payload.URL == "" {
			badData = append(badData, GroupResult{
				SuggestionIDs: []string{suggestion.ID},
				StatusCode:    http.StatusBadRequest,
				Message:       "Suggestion has no usable url/source data",
			})
			continue
		}

		fp := Fingerprint(payload.URL, payload.Source)
		g, ok := byPrint[fp]
		if !ok {
			g = &group{
				fingerprint: fp,
				url:         payload.URL,
				source:      payload.Source,
				issueTypes:  make(map[string]bool),
			}
			byPrint[fp] = g
			ordered = append(ordered, g)
		}
		for _, issue := range payload.Issues {
			g.issueTypes[issue.Type] = true
		}
		g.suggestions = append(g.suggestions, suggestion)
	}

	return ordered, badData
}

func (s *Service) discoverReports(ctx context.Context, siteID string, g *group, fixType models.FixType) error {
	prefix := fmt.Sprintf("fixes/%s/%s/", siteID, g.fingerprint)
	keys, err := s.storage.List(ctx, prefix)
	if err != nil {
		return fmt.Errorf("failed to list fix candidates under %s: %w", prefix, err)
	}

	for _, key := range keys {
		if path.Base(key) != "report.json" {
			continue
		}

		raw, err := s.storage.Retrieve(ctx, key)
		if err != nil {
			logrus.Warnf("Skipping unreadable fix report %s: %v", key, err)
			continue
		}

		var report fixReport
		if err := json.Unmarshal(raw, &report); err != nil {
			logrus.Warnf("Skipping malformed fix report %s: %v", key, err)
			continue
		}

		// A report qualifies when its rule type matches one of the
		// group's issue types, or directly matches the requested fix type.
		if !g.issueTypes[report.Type] && report.Type != string(fixType) {
			continue
		}

		g.reports = append(g.reports, matchedReport{key: key, report: report})
	}

	return nil
}

func (s *Service) applyGroup(ctx context.Context, site *models.Site, fixType models.FixType, token string, g *group) GroupResult {
	result := GroupResult{
		Fingerprint:   g.fingerprint,
		SuggestionIDs: suggestionIDs(g.suggestions),
	}

	if len(g.reports) == 0 {
		result.StatusCode = http.StatusBadRequest
		result.Message = "No matching fixes found"
		return result
	}

	updatedFiles, err := s.collectFiles(ctx, g)
	if err != nil {
		logrus.Errorf("Failed to collect files for group %s: %v", g.fingerprint, err)
		result.StatusCode = http.StatusInternalServerError
		result.Message = "Failed to load fix assets"
		return result
	}

	pr := &PullRequest{
		Title:        fmt.Sprintf("Fix %s issues on %s", strings.ToLower(string(fixType)), g.url),
		VCSType:      "github",
		RepoURL:      site.GitHubURL,
		UpdatedFiles: updatedFiles,
	}

	if err := s.pr.CreatePullRequest(ctx, token, site.IMSOrgID, pr); err != nil {
		logrus.Errorf("Pull-request webhook failed for group %s: %v", g.fingerprint, err)
		result.StatusCode = http.StatusInternalServerError
		result.Message = "Pull-request handler invocation failed"
		return result
	}

	fix, err := s.persistFix(ctx, g, fixType)
	if err != nil {
		logrus.Errorf("Failed to persist fix for group %s: %v", g.fingerprint, err)
		result.StatusCode = http.StatusInternalServerError
		result.Message = "Failed to persist fix"
		return result
	}

	result.StatusCode = http.StatusOK
	result.Fix = fix
	return result
}

func (s *Service) collectFiles(ctx context.Context, g *group) ([]UpdatedFile, error) {
	var files []UpdatedFile
	seen := make(map[string]bool)

	for _, m := range g.reports {
		for _, filePath := range m.report.UpdatedFiles {
			if seen[filePath] {
				continue
			}
			seen[filePath] = true

			content, err := s.storage.Retrieve(ctx, filePath)
			if err != nil {
				return nil, fmt.Errorf("failed to retrieve %s: %w", filePath, err)
			}
			files = append(files, UpdatedFile{Path: filePath, Content: string(content)})
		}
	}

	return files, nil
}

func (s *Service) persistFix(ctx context.Context, g *group, fixType models.FixType) (*models.Fix, error) {
	details, _ := json.Marshal(map[string]interface{}{
		"url":         g.url,
		"source":      g.source,
		"fingerprint": g.fingerprint,
	})

	now := time.Now().UTC()
	fix := &models.Fix{
		ID:            uuid.NewString(),
		OpportunityID: g.suggestions[0].OpportunityID,
		Type:          fixType,
		Status:        models.FixStatusPending,
		Origin:        "AUTOMATION",
		ChangeDetails: models.JSONText(details),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.fixes.Create(ctx, fix); err != nil {
		return nil, err
	}

	for i := range g.suggestions {
		suggestion := g.suggestions[i]
		suggestion.FixID = &fix.ID
		suggestion.Status = models.SuggestionStatusInProgress
		suggestion.UpdatedAt = now
		if err := s.suggestions.Save(ctx, &suggestion); err != nil {
			return nil, err
		}
	}

	return fix, nil
}

func suggestionIDs(suggestions []models.Suggestion) []string {
	ids := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		ids = append(ids, s.ID)
	}
	return ids
}

package remediation

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// UpdatedFile is one file change shipped to the pull-request handler.
type UpdatedFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// PullRequest is the payload sent to the pull-request handler webhook.
type PullRequest struct {
	Title        string        `json:"title"`
	VCSType      string        `json:"vcsType"`
	RepoURL      string        `json:"repoURL"`
	UpdatedFiles []UpdatedFile `json:"updatedFiles"`
}

// PRInvokerInterface defines the contract for the pull-request handler
type PRInvokerInterface interface {
	CreatePullRequest(ctx context.Context, token, imsOrgID string, pr *PullRequest) error
}

// PRClient invokes the external pull-request handler webhook
type PRClient struct {
	webhookURL string
	client     *resty.Client
}

var _ PRInvokerInterface = (*PRClient)(nil)

// NewPRClient creates a new pull-request webhook client
func NewPRClient(webhookURL string) *PRClient {
	return &PRClient{
		webhookURL: webhookURL,
		client:     resty.New().SetTimeout(30 * time.Second),
	}
}

// CreatePullRequest posts the payload to the webhook with the service
// token and org header.
func (c *PRClient) CreatePullRequest(ctx context.Context, token, imsOrgID string, pr *PullRequest) error {
	if c.webhookURL == "" {
		return fmt.Errorf("pull-request webhook URL is not configured")
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+token).
		SetHeader("x-gw-ims-org-id", imsOrgID).
		SetBody(pr).
		Post(c.webhookURL)

	if err != nil {
		return fmt.Errorf("failed to invoke pull-request webhook: %w", err)
	}
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("pull-request webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

package ims

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// Client talks to the IMS token service
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	client       *resty.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type profileResponse struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Orgs   []struct {
		OrgID string `json:"orgId"`
	} `json:"orgs"`
}

// NewClient creates a new IMS client
func NewClient(baseURL, clientID, clientSecret string) *Client {
	return &Client{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       resty.New().SetTimeout(30 * time.Second),
	}
}

// GetServiceAccessToken returns a service-to-service token, exchanging
// client credentials on first use and caching the token until shortly
// before expiry.
func (c *Client) GetServiceAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	if c.clientID == "" || c.clientSecret == "" {
		return "", fmt.Errorf("IMS credentials are not configured")
	}

	var token tokenResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     c.clientID,
			"client_secret": c.clientSecret,
			"scope":         "openid,AdobeID,read_organizations",
		}).
		SetResult(&token).
		Post(c.baseURL + "/ims/token/v3")

	if err != nil {
		return "", fmt.Errorf("failed to request service token: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned an empty token")
	}

	c.accessToken = token.AccessToken
	// Refresh a minute early to avoid using a token at the expiry edge.
	c.expiresAt = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - time.Minute)

	logrus.Debug("Obtained IMS service access token")
	return c.accessToken, nil
}

// ValidateAccessToken checks the token locally for expiry and then
// resolves the caller's profile from IMS.
func (c *Client) ValidateAccessToken(ctx context.Context, token string) (*Profile, error) {
	if token == "" {
		return nil, fmt.Errorf("access token is required")
	}

	// Signature verification belongs to IMS; the local parse only
	// rejects malformed or expired tokens before the network call.
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("malformed access token: %w", err)
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.Before(time.Now()) {
		return nil, fmt.Errorf("access token is expired")
	}

	var profile profileResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetResult(&profile).
		Get(c.baseURL + "/ims/profile/v1")

	if err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("profile endpoint returned status %d", resp.StatusCode())
	}

	orgs := make([]string, 0, len(profile.Orgs))
	for _, org := range profile.Orgs {
		orgs = append(orgs, org.OrgID)
	}

	return &Profile{
		UserID: profile.UserID,
		Email:  profile.Email,
		Orgs:   orgs,
	}, nil
}

package ims

import "context"

// Profile describes the principal behind a validated access token.
type Profile struct {
	UserID string   `json:"userId"`
	Email  string   `json:"email"`
	Orgs   []string `json:"orgs"`
}

// ClientInterface defines the contract for the identity service
type ClientInterface interface {
	GetServiceAccessToken(ctx context.Context) (string, error)
	ValidateAccessToken(ctx context.Context, token string) (*Profile, error)
}

package ims

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestGetServiceAccessToken(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ims/token/v3", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
		assert.Equal(t, "client-1", r.FormValue("client_id"))

		calls++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "service-token",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "client-1", "secret")

	token, err := client.GetServiceAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "service-token", token)

	// The cached token is reused until it nears expiry.
	again, err := client.GetServiceAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "service-token", again)
	assert.Equal(t, 1, calls)
}

func TestGetServiceAccessTokenMissingCredentials(t *testing.T) {
	client := NewClient("https://ims.example.com", "", "")

	_, err := client.GetServiceAccessToken(context.Background())

	assert.Error(t, err)
}

func TestGetServiceAccessTokenUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid_client", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "client-1", "secret")

	_, err := client.GetServiceAccessToken(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestValidateAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ims/profile/v1", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"userId": "user-1",
			"email":  "user@example.com",
			"orgs": []map[string]string{
				{"orgId": "org-1"},
				{"orgId": "org-2"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "client-1", "secret")

	profile, err := client.ValidateAccessToken(context.Background(), signedToken(t, time.Now().Add(time.Hour)))

	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.UserID)
	assert.Equal(t, "user@example.com", profile.Email)
	assert.Equal(t, []string{"org-1", "org-2"}, profile.Orgs)
}

func TestValidateAccessTokenRejectsLocally(t *testing.T) {
	// No server: these must fail before any network call.
	client := NewClient("http://127.0.0.1:0", "client-1", "secret")

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"malformed", "not.a.jwt"},
		{"expired", signedToken(t, time.Now().Add(-time.Hour))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.ValidateAccessToken(context.Background(), tc.token)
			assert.Error(t, err)
		})
	}
}

func TestValidateAccessTokenUpstreamRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "client-1", "secret")

	_, err := client.ValidateAccessToken(context.Background(), signedToken(t, time.Now().Add(time.Hour)))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

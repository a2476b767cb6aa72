package api

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/siteoptic/audit-api/internal/storage"
)

func TestGetFile(t *testing.T) {
	env := newTestEnv(t)
	site := env.seedSite(t, false)

	key := fmt.Sprintf("files/%s/assets/logo.svg", site.ID)
	env.storage.On("Retrieve", mock.Anything, key).Return([]byte("<svg/>"), nil)

	recorder := env.request(t, "GET", fmt.Sprintf("/sites/%s/files?key=assets/logo.svg", site.ID), nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "<svg/>", recorder.Body.String())
}

func TestGetFileNotFound(t *testing.T) {
	env := newTestEnv(t)
	site := env.seedSite(t, false)

	env.storage.On("Retrieve", mock.Anything, mock.Anything).Return(nil, storage.ErrNotFound)

	recorder := env.request(t, "GET", fmt.Sprintf("/sites/%s/files?key=missing.txt", site.ID), nil)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	var body errorResponse
	decodeBody(t, recorder, &body)
	assert.Equal(t, "File not found", body.Message)
}

func TestGetFileKeyValidation(t *testing.T) {
	env := newTestEnv(t)
	site := env.seedSite(t, false)

	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"traversal", "../other-site/secret.txt"},
		{"absolute", "/etc/passwd"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := fmt.Sprintf("/sites/%s/files?key=%s", site.ID, url.QueryEscape(tc.key))
			recorder := env.request(t, "GET", path, nil)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	}
	env.storage.AssertNotCalled(t, "Retrieve", mock.Anything, mock.Anything)
}

func TestListScrapedContent(t *testing.T) {
	env := newTestEnv(t)
	site := env.seedSite(t, false)

	prefix := fmt.Sprintf("scrapes/%s/blog/", site.ID)
	env.storage.On("List", mock.Anything, prefix).Return([]string{
		prefix + "post-1.json",
		prefix + "post-2.json",
	}, nil)

	recorder := env.request(t, "GET", fmt.Sprintf("/sites/%s/scraped-content?path=blog/", site.ID), nil)

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp struct {
		Keys []string `json:"keys"`
	}
	decodeBody(t, recorder, &resp)
	assert.Len(t, resp.Keys, 2)
}

func TestListScrapedContentEmpty(t *testing.T) {
	env := newTestEnv(t)
	site := env.seedSite(t, false)

	env.storage.On("List", mock.Anything, mock.Anything).Return([]string{}, nil)

	recorder := env.request(t, "GET", fmt.Sprintf("/sites/%s/scraped-content", site.ID), nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"keys":[]}`, recorder.Body.String())
}

func TestGetScrapedFile(t *testing.T) {
	env := newTestEnv(t)
	site := env.seedSite(t, false)

	key := fmt.Sprintf("scrapes/%s/blog/post-1.json", site.ID)
	env.storage.On("Retrieve", mock.Anything, key).Return([]byte(`{"title":"Post 1"}`), nil)

	recorder := env.request(t, "GET", fmt.Sprintf("/sites/%s/scraped-content/file?key=blog/post-1.json", site.ID), nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"title":"Post 1"}`, recorder.Body.String())
}

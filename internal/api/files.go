package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/siteoptic/audit-api/internal/storage"
)

// validateKey rejects empty keys and path traversal attempts.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key query parameter is required")
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return fmt.Errorf("key must not escape the site prefix")
	}
	return nil
}

// streamObject fetches one object scoped under the given site prefix
// and writes it to the response.
func (h *Handler) streamObject(w http.ResponseWriter, r *http.Request, prefix, key string) {
	data, err := h.storage.Retrieve(r.Context(), prefix+key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			notFound(w, "File not found")
			return
		}
		internalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) getFile(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathUUID(w, r, "siteId")
	if !ok {
		return
	}

	key := r.URL.Query().Get("key")
	if err := validateKey(key); err != nil {
		badRequest(w, err.Error())
		return
	}

	site := h.requireSite(w, r, siteID)
	if site == nil {
		return
	}

	h.streamObject(w, r, fmt.Sprintf("files/%s/", site.ID), key)
}

func (h *Handler) listScrapedContent(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathUUID(w, r, "siteId")
	if !ok {
		return
	}

	path := r.URL.Query().Get("path")
	if strings.Contains(path, "..") {
		badRequest(w, "path must not escape the site prefix")
		return
	}

	site := h.requireSite(w, r, siteID)
	if site == nil {
		return
	}

	prefix := fmt.Sprintf("scrapes/%s/", site.ID)
	if path != "" {
		prefix += strings.TrimPrefix(path, "/")
	}

	keys, err := h.storage.List(r.Context(), prefix)
	if err != nil {
		internalError(w, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"keys": keys})
}

func (h *Handler) getScrapedFile(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathUUID(w, r, "siteId")
	if !ok {
		return
	}

	key := r.URL.Query().Get("key")
	if err := validateKey(key); err != nil {
		badRequest(w, err.Error())
		return
	}

	site := h.requireSite(w, r, siteID)
	if site == nil {
		return
	}

	h.streamObject(w, r, fmt.Sprintf("scrapes/%s/", site.ID), key)
}

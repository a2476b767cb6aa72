package api

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

type errorResponse struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Message: message})
}

func badRequest(w http.ResponseWriter, message string) {
	respondError(w, http.StatusBadRequest, message)
}

func unauthorized(w http.ResponseWriter, message string) {
	respondError(w, http.StatusUnauthorized, message)
}

func forbidden(w http.ResponseWriter) {
	respondError(w, http.StatusForbidden, "Access denied")
}

func notFound(w http.ResponseWriter, message string) {
	respondError(w, http.StatusNotFound, message)
}

// internalError hides the cause from the body; the detail travels in the
// x-error debug header and the log.
func internalError(w http.ResponseWriter, err error) {
	logrus.Errorf("Internal error: %v", err)
	w.Header().Set("x-error", err.Error())
	respondError(w, http.StatusInternalServerError, "Internal server error")
}

// batchMetadata summarizes a multi-status response.
type batchMetadata struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

func metadataFor(statusCodes []int) batchMetadata {
	md := batchMetadata{Total: len(statusCodes)}
	for _, code := range statusCodes {
		if code < 300 {
			md.Success++
		} else {
			md.Failed++
		}
	}
	return md
}

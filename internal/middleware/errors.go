package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"loc-portal/pkg/errors"
	"loc-portal/pkg/logger"
)

// writeErrorResponse writes an error response to the client
func writeErrorResponse(w http.ResponseWriter, r *http.Request, appErr *errors.AppError, logger *logger.Logger) {
	log := logger.WithFields(map[string]interface{}{
		"request_id": GetRequestID(r.Context()),
		"path":       r.URL.Path,
		"status":     appErr.StatusCode,
	})
	if appErr.StatusCode >= http.StatusInternalServerError {
		log.WithError(appErr).Error("Request error")
	} else {
		log.WithError(appErr).Debug("Request rejected")
	}

	response := errors.ErrorResponse{
		Success: false,
		Error: errors.ErrorBody{
			Type:      appErr.Type,
			Message:   appErr.Message,
			Details:   appErr.Details,
			RequestID: GetRequestID(r.Context()),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.WithError(err).Error("Failed to encode error response")
	}
}

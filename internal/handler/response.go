package handler

import (
	"context"
	"crypto/md5"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"loc-portal/internal/domain"
	"loc-portal/internal/middleware"
	"loc-portal/internal/service/notify"
	"loc-portal/internal/service/state"
	"loc-portal/pkg/errors"
	"loc-portal/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Response is the success envelope of every API endpoint
type Response struct {
	Success       bool                  `json:"success"`
	Message       string                `json:"message,omitempty"`
	Data          interface{}           `json:"data,omitempty"`
	Notifications []domain.Notification `json:"notifications,omitempty"`
}

type errorResponse struct {
	errors.ErrorResponse
	Notifications []domain.Notification `json:"notifications,omitempty"`
}

// respondJSON writes a success envelope with the request's notifications
func respondJSON(w http.ResponseWriter, r *http.Request, status int, message string, data interface{}) {
	writeJSON(w, status, Response{
		Success:       true,
		Message:       message,
		Data:          data,
		Notifications: drainNotifications(r.Context()),
	})
}

// respondError maps err to an AppError and writes the error envelope
func respondError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	appErr := toAppError(err)

	entry := log.WithFields(map[string]interface{}{
		"request_id": middleware.GetRequestID(r.Context()),
		"path":       r.URL.Path,
		"status":     appErr.StatusCode,
	}).WithError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Info("Request rejected")
	}

	writeJSON(w, appErr.StatusCode, errorResponse{
		ErrorResponse: errors.ErrorResponse{
			Success: false,
			Error: errors.ErrorBody{
				Type:      appErr.Type,
				Message:   appErr.Message,
				Details:   appErr.Details,
				RequestID: middleware.GetRequestID(r.Context()),
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			},
		},
		Notifications: drainNotifications(r.Context()),
	})
}

// toAppError classifies state container and collaborator failures
func toAppError(err error) *errors.AppError {
	switch {
	case stderrors.Is(err, state.ErrPaymentFailed):
		return errors.NewExternalError("Payment could not be processed. Please try again.", err)
	case stderrors.Is(err, state.ErrStorage):
		return errors.NewUnavailableError("Session storage is unavailable. Please try again.", err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewUnavailableError("The request timed out. Please try again.", err)
	}

	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}

	switch {
	case stderrors.Is(err, state.ErrNoActiveUser):
		return errors.NewPreconditionError("You need to be logged in", err)
	case stderrors.Is(err, state.ErrTeamExists):
		return errors.NewPreconditionError("You have already created a team", err)
	case stderrors.Is(err, state.ErrInvalidCredentials):
		return errors.NewAuthenticationError("Invalid email or password")
	case stderrors.Is(err, state.ErrInvalidInput):
		return errors.NewValidationError(err.Error(), nil)
	default:
		return errors.NewInternalError("Internal server error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func drainNotifications(ctx context.Context) []domain.Notification {
	if c := notify.FromContext(ctx); c != nil {
		return c.Drain()
	}
	return nil
}

// decodeJSON reads a bounded JSON body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if stderrors.Is(err, io.EOF) {
			return errors.NewValidationError("Request body is required", nil)
		}
		return errors.NewValidationError("Invalid request body", nil)
	}
	return nil
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be empty
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !stderrors.Is(err, io.EOF) {
		return errors.NewValidationError("Invalid request body", nil)
	}
	return nil
}

// currentState returns the state opened by the LoadState middleware
func currentState(r *http.Request) (*state.State, error) {
	st := middleware.GetState(r.Context())
	if st == nil {
		return nil, errors.NewInternalError("Session state not loaded", nil)
	}
	return st, nil
}

// requireUser returns the current record or a precondition error
func requireUser(r *http.Request) (*state.State, *domain.UserRecord, error) {
	st, err := currentState(r)
	if err != nil {
		return nil, nil, err
	}
	user := st.User()
	if user == nil {
		return nil, nil, state.ErrNoActiveUser
	}
	return st, user, nil
}

// generateETag hashes a response body for conditional GETs
func generateETag(data interface{}) string {
	body, _ := json.Marshal(data)
	return fmt.Sprintf(`"%x"`, md5.Sum(body))
}

// respondCached writes data with an ETag, answering 304 when the client has it
func respondCached(w http.ResponseWriter, r *http.Request, maxAge time.Duration, data interface{}) {
	etag := generateETag(data)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", fmt.Sprintf("private, max-age=%d", int(maxAge.Seconds())))
	respondJSON(w, r, http.StatusOK, "", data)
}

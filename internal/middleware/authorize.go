package middleware

import (
	"net/http"

	"loc-portal/internal/domain"
	"loc-portal/internal/guard"
	"loc-portal/pkg/errors"
	"loc-portal/pkg/logger"
)

// Authorize applies the navigation policy to API routes. Denied requests get
// 401 or 403 with the redirect the client should follow.
func Authorize(policy guard.Policy, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := policy.Evaluate(r.URL.Path, currentUser(r))

			var appErr *errors.AppError
			switch {
			case decision.Allowed:
			case decision.Reason == guard.ReasonUnauthenticated:
				appErr = errors.NewAuthenticationError("Please sign in to continue")
			case decision.Reason == guard.ReasonForbidden:
				appErr = errors.NewAuthorizationError("You do not have access to this resource")
			}
			if appErr != nil {
				appErr.Details = map[string]interface{}{"redirect": decision.Redirect}
				writeErrorResponse(w, r, appErr, logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Navigate applies the navigation policy to page routes with a 302 redirect
func Navigate(policy guard.Policy, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := policy.Evaluate(r.URL.Path, currentUser(r))
			if !decision.Allowed {
				logger.WithFields(map[string]interface{}{
					"route":    decision.Route,
					"redirect": decision.Redirect,
					"reason":   string(decision.Reason),
				}).Debug("Redirecting navigation")
				http.Redirect(w, r, decision.Redirect, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func currentUser(r *http.Request) *domain.UserRecord {
	if st := GetState(r.Context()); st != nil {
		return st.User()
	}
	return nil
}

package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"loc-portal/internal/service"
	"loc-portal/pkg/errors"
	"loc-portal/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	// SessionCookieName names the cookie that carries the client scope
	SessionCookieName = "loc-session"
	scopeValueKey     = "sid"
)

// NewCookieStore builds the signed cookie store that persists client scopes
func NewCookieStore(secret string, ttl time.Duration, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(int(ttl / time.Second))
	return store
}

// Session resolves the client scope for every request. A bearer token wins
// over the cookie; a request with neither gets a fresh scope stored in a
// new cookie.
func Session(store sessions.Store, tokens service.TokenService, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				if !strings.HasPrefix(authHeader, "Bearer ") {
					writeErrorResponse(w, r, errors.NewAuthenticationError("Invalid authorization header format"), logger)
					return
				}
				token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
				if token == "" {
					writeErrorResponse(w, r, errors.NewAuthenticationError("Token is required"), logger)
					return
				}

				claims, err := tokens.Parse(token)
				if err != nil {
					writeErrorResponse(w, r, errors.NewAuthenticationError("Invalid or expired token"), logger)
					return
				}

				ctx = context.WithValue(ctx, ScopeContextKey, claims.Scope)
				ctx = context.WithValue(ctx, ClaimsContextKey, claims)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			// A tampered or expired cookie yields a fresh session and an error
			sess, err := store.Get(r, SessionCookieName)
			if err != nil {
				logger.WithError(err).Debug("Discarding unreadable session cookie")
			}

			scope, _ := sess.Values[scopeValueKey].(string)
			if scope == "" {
				scope = uuid.NewString()
				sess.Values[scopeValueKey] = scope
				if err := sess.Save(r, w); err != nil {
					logger.WithError(err).Error("Failed to save session cookie")
					writeErrorResponse(w, r, errors.NewInternalError("Failed to start session", err), logger)
					return
				}
				logger.WithField("request_id", GetRequestID(ctx)).Debug("Started new client scope")
			}

			ctx = context.WithValue(ctx, ScopeContextKey, scope)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

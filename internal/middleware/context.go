package middleware

import (
	"context"

	"loc-portal/internal/domain"
	"loc-portal/internal/service/state"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
	// ScopeContextKey is the key for the client session scope
	ScopeContextKey ContextKey = "session_scope"
	// ClaimsContextKey holds bearer token claims when the request carried one
	ClaimsContextKey ContextKey = "session_claims"
	// StateContextKey is the key for the opened session state
	StateContextKey ContextKey = "session_state"
)

// GetRequestID returns the request ID, or "" outside the RequestID middleware
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDContextKey).(string)
	return id
}

// GetScope returns the client session scope resolved by Session
func GetScope(ctx context.Context) string {
	scope, _ := ctx.Value(ScopeContextKey).(string)
	return scope
}

// GetClaims returns the verified bearer claims, or nil for cookie sessions
func GetClaims(ctx context.Context) *domain.SessionClaims {
	claims, _ := ctx.Value(ClaimsContextKey).(*domain.SessionClaims)
	return claims
}

// GetState returns the state opened by LoadState, or nil
func GetState(ctx context.Context) *state.State {
	st, _ := ctx.Value(StateContextKey).(*state.State)
	return st
}

// WithScope attaches a scope to the context. Exported for handler tests.
func WithScope(ctx context.Context, scope string) context.Context {
	return context.WithValue(ctx, ScopeContextKey, scope)
}

// WithState attaches an opened state to the context. Exported for handler tests.
func WithState(ctx context.Context, st *state.State) context.Context {
	return context.WithValue(ctx, StateContextKey, st)
}

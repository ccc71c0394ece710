package handler

import (
	"net/http"
	"net/url"
	"strings"

	"loc-portal/internal/domain"
	"loc-portal/internal/guard"
	"loc-portal/internal/middleware"
	"loc-portal/internal/service"
	"loc-portal/internal/service/state"
	"loc-portal/pkg/errors"
	"loc-portal/pkg/logger"
)

// SessionTokenHeader carries a freshly issued bearer token
const SessionTokenHeader = "X-Session-Token"

// AuthHandler serves login, registration, logout and the session snapshot
type AuthHandler struct {
	tokens service.TokenService
	policy guard.Policy
	logger *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(tokens service.TokenService, policy guard.Policy, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		tokens: tokens,
		policy: policy,
		logger: logger.Named("auth"),
	}
}

// SessionView is the client's view of its scope
type SessionView struct {
	Authenticated bool                 `json:"authenticated"`
	User          *domain.UserRecord   `json:"user"`
	HasTeam       bool                 `json:"hasTeam"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
	Token         string               `json:"token,omitempty"`
	Navigation    *guard.Decision      `json:"navigation,omitempty"`
}

// LogoutView tells the client where to go once signed out
type LogoutView struct {
	Redirect   string         `json:"redirect"`
	Navigation guard.Decision `json:"navigation"`
}

// LoginRequest is the login form. Route is the page the client is on.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Route    string `json:"route,omitempty"`
}

// LogoutRequest is the optional logout body
type LogoutRequest struct {
	Route string `json:"route,omitempty"`
}

// RegisterRequest is the registration form
type RegisterRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Route           string `json:"route,omitempty"`
}

// Session handles GET /api/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	st, err := currentState(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, http.StatusOK, "", viewOf(st, ""))
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	st, err := currentState(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := st.Login(r.Context(), req.Email, req.Password); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	route := clientRoute(r, req.Route, guard.LoginRoute)
	h.respondWithToken(w, r, st, route, http.StatusOK, "Login successful")
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	st, err := currentState(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if details := validateRegistration(req); len(details) > 0 {
		respondError(w, r, h.logger, errors.NewValidationError("Please correct the highlighted fields", details))
		return
	}

	profile := domain.RegistrationProfile{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
	}
	if err := st.Register(r.Context(), profile, req.Password); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	route := clientRoute(r, req.Route, guard.RegisterRoute)
	h.respondWithToken(w, r, st, route, http.StatusCreated, "Registration successful")
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	st, err := currentState(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req LogoutRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := st.Logout(r.Context()); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	route := clientRoute(r, req.Route, guard.DashboardRoute)
	respondJSON(w, r, http.StatusOK, "Logged out", LogoutView{
		Redirect:   guard.LoginRoute,
		Navigation: h.policy.Evaluate(route, st.User()),
	})
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, st *state.State, route string, status int, message string) {
	token, err := h.tokens.Issue(st.Scope(), st.User())
	if err != nil {
		// The cookie session still works without a bearer token
		h.logger.WithError(err).Warn("Failed to issue session token")
		token = ""
	}
	if token != "" {
		w.Header().Set(SessionTokenHeader, token)
	}

	h.logger.WithField("request_id", middleware.GetRequestID(r.Context())).Debug(message)
	view := viewOf(st, token)
	decision := h.policy.Evaluate(route, st.User())
	view.Navigation = &decision
	respondJSON(w, r, status, message, view)
}

// clientRoute picks the route the client is on: the requested one, then the
// Referer path, then fallback
func clientRoute(r *http.Request, requested, fallback string) string {
	if route := strings.TrimSpace(requested); route != "" {
		return route
	}
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" {
		return ref.Path
	}
	return fallback
}

func viewOf(st *state.State, token string) SessionView {
	user := st.User()
	return SessionView{
		Authenticated: user != nil,
		User:          user,
		HasTeam:       st.HasTeam(),
		PaymentStatus: st.PaymentStatus(),
		Token:         token,
	}
}

func validateRegistration(req RegisterRequest) map[string]interface{} {
	details := map[string]interface{}{}
	if strings.TrimSpace(req.FirstName) == "" {
		details["firstName"] = "First name is required"
	}
	if strings.TrimSpace(req.LastName) == "" {
		details["lastName"] = "Last name is required"
	}
	if !domain.IsValidEmail(req.Email) {
		details["email"] = "Valid email is required"
	}
	if len(req.Password) < domain.MinPasswordLength {
		details["password"] = "Password must be at least 8 characters"
	}
	if req.Password != req.ConfirmPassword {
		details["confirmPassword"] = "Passwords do not match"
	}
	if len(details) > 0 && req.Password != "" {
		_, strength := domain.PasswordStrength(req.Password)
		details["passwordStrength"] = strength
	}
	return details
}

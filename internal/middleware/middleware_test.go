package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"loc-portal/internal/guard"
	"loc-portal/internal/service"
	"loc-portal/internal/service/auth"
	"loc-portal/internal/service/notify"
	"loc-portal/internal/service/payment"
	"loc-portal/internal/service/session"
	"loc-portal/internal/service/state"
	"loc-portal/pkg/errors"
	"loc-portal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	log     *logger.Logger
	store   *session.MemoryStore
	manager *state.Manager
	tokens  service.TokenService
	policy  guard.Policy
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewNop()
	store := session.NewMemoryStore(0)

	manager, err := state.NewManager(state.Dependencies{
		Store:    store,
		Auth:     auth.NewDemoAuthenticator([]string{"admin@loc.dev"}, log),
		Payments: payment.NewSimulatedProvider(0, log),
	})
	require.NoError(t, err)

	policy, err := guard.NewDefaultPolicy(nil)
	require.NoError(t, err)

	return &fixture{
		log:     log,
		store:   store,
		manager: manager,
		tokens:  auth.NewTokenService("test-secret", "loc-portal", time.Hour, log),
		policy:  policy,
	}
}

// chain wraps h in Session, LoadState and the given guard middleware
func (f *fixture) chain(guardMW func(http.Handler) http.Handler, h http.Handler) http.Handler {
	cookies := NewCookieStore("cookie-secret", time.Hour, false)
	return Session(cookies, f.tokens, f.log)(LoadState(f.manager, f.log)(guardMW(h)))
}

func (f *fixture) login(t *testing.T, scope, email string) {
	t.Helper()
	st, err := f.manager.Open(context.Background(), scope, nil)
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Login(context.Background(), email, "password123"))
}

func (f *fixture) bearer(t *testing.T, scope string) string {
	t.Helper()
	token, err := f.tokens.Issue(scope, nil)
	require.NoError(t, err)
	return "Bearer " + token
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(GetScope(r.Context())))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errors.ErrorResponse {
	t.Helper()
	var body errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCORS(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"http://localhost:3000"}
	h := CORS(cfg, logger.NewNop())(http.HandlerFunc(okHandler))

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/event", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("same origin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/event", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "edge-42")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "edge-42", seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "bad id\nwith newline")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.NotEqual(t, "bad id\nwith newline", seen)
	assert.Len(t, seen, 36)
}

func TestSession_CookieScope(t *testing.T) {
	f := newFixture(t)
	cookies := NewCookieStore("cookie-secret", time.Hour, false)
	h := Session(cookies, f.tokens, f.log)(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	scope := rec.Body.String()
	require.NotEmpty(t, scope)
	set := rec.Result().Cookies()
	require.Len(t, set, 1)
	assert.Equal(t, SessionCookieName, set[0].Name)
	assert.True(t, set[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(set[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, scope, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies(), "existing scope is not re-issued")
}

func TestSession_TamperedCookieStartsFresh(t *testing.T) {
	f := newFixture(t)
	h := Session(NewCookieStore("cookie-secret", time.Hour, false), f.tokens, f.log)(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "forged"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.String())
	assert.Len(t, rec.Result().Cookies(), 1)
}

func TestSession_BearerToken(t *testing.T) {
	f := newFixture(t)
	h := Session(NewCookieStore("cookie-secret", time.Hour, false), f.tokens, f.log)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NotNil(t, GetClaims(r.Context()))
			okHandler(w, r)
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", f.bearer(t, "scope-from-token"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "scope-from-token", rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())
}

func TestSession_BadBearer(t *testing.T) {
	f := newFixture(t)
	h := Session(NewCookieStore("cookie-secret", time.Hour, false), f.tokens, f.log)(http.HandlerFunc(okHandler))

	for _, header := range []string{"Basic abc", "Bearer ", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		body := decodeError(t, rec)
		assert.False(t, body.Success)
		assert.Equal(t, errors.ErrorTypeAuthentication, body.Error.Type)
	}
}

func TestLoadState_AttachesStateAndCollector(t *testing.T) {
	f := newFixture(t)
	f.login(t, "scope-1", "ada@loc.dev")

	h := f.chain(Authorize(f.policy, f.log), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := GetState(r.Context())
		require.NotNil(t, st)
		assert.Equal(t, "scope-1", st.Scope())
		assert.Equal(t, "ada@loc.dev", st.User().Email)
		assert.NotNil(t, notify.FromContext(r.Context()))
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/team", nil)
	req.Header.Set("Authorization", f.bearer(t, "scope-1"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// the scope lock is released once the request finishes
	st, err := f.manager.Open(context.Background(), "scope-1", nil)
	require.NoError(t, err)
	st.Close()
}

func TestLoadState_MissingScope(t *testing.T) {
	f := newFixture(t)
	h := LoadState(f.manager, f.log)(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAuthorize(t *testing.T) {
	f := newFixture(t)
	f.login(t, "participant", "ada@loc.dev")
	f.login(t, "admin", "admin@loc.dev")

	h := f.chain(Authorize(f.policy, f.log), http.HandlerFunc(okHandler))

	tests := []struct {
		name     string
		scope    string
		path     string
		status   int
		redirect string
	}{
		{"anonymous protected", "anon", "/api/dashboard/team", http.StatusUnauthorized, "/login"},
		{"anonymous public", "anon", "/api/event", http.StatusOK, ""},
		{"participant dashboard", "participant", "/api/dashboard/payment", http.StatusOK, ""},
		{"participant admin", "participant", "/api/admin/stats", http.StatusForbidden, "/dashboard"},
		{"admin admin", "admin", "/api/admin/stats", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Authorization", f.bearer(t, tt.scope))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.redirect != "" {
				body := decodeError(t, rec)
				assert.Equal(t, tt.redirect, body.Error.Details["redirect"])
			}
		})
	}
}

func TestNavigate(t *testing.T) {
	f := newFixture(t)
	f.login(t, "participant", "ada@loc.dev")

	h := f.chain(Navigate(f.policy, f.log), http.HandlerFunc(okHandler))

	tests := []struct {
		name     string
		scope    string
		path     string
		location string
	}{
		{"anonymous dashboard", "anon", "/dashboard", "/login"},
		{"user on login", "participant", "/login", "/dashboard"},
		{"participant admin", "participant", "/admin", "/dashboard"},
		{"user on dashboard", "participant", "/dashboard/team", ""},
		{"anonymous landing", "anon", "/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Authorization", f.bearer(t, tt.scope))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if tt.location == "" {
				assert.Equal(t, http.StatusOK, rec.Code)
				return
			}
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}

package guard

import (
	"testing"

	"loc-portal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPolicy(t *testing.T, extra ...string) *RulePolicy {
	t.Helper()
	p, err := NewDefaultPolicy(extra)
	require.NoError(t, err)
	return p
}

func TestEvaluate(t *testing.T) {
	participant := &domain.UserRecord{Role: domain.RoleParticipant}
	admin := &domain.UserRecord{Role: domain.RoleAdmin}

	tests := []struct {
		name     string
		route    string
		user     *domain.UserRecord
		allowed  bool
		redirect string
		reason   Reason
	}{
		{"anonymous landing", "/", nil, true, "", ReasonNone},
		{"anonymous login", "/login", nil, true, "", ReasonNone},
		{"anonymous register", "/register", nil, true, "", ReasonNone},
		{"anonymous dashboard", "/dashboard", nil, false, "/login", ReasonUnauthenticated},
		{"anonymous nested dashboard", "/dashboard/team", nil, false, "/login", ReasonUnauthenticated},
		{"anonymous admin", "/admin", nil, false, "/login", ReasonUnauthenticated},
		{"anonymous public api", "/api/event", nil, true, "", ReasonNone},
		{"anonymous protected api", "/api/dashboard/team", nil, false, "/login", ReasonUnauthenticated},
		{"anonymous static asset", "/static/app.js", nil, true, "", ReasonNone},
		{"user on login", "/login", participant, false, "/dashboard", ReasonAlreadyAuthenticated},
		{"user on register", "/register/", participant, false, "/dashboard", ReasonAlreadyAuthenticated},
		{"user on landing", "/", participant, true, "", ReasonNone},
		{"user on dashboard", "/dashboard/payment", participant, true, "", ReasonNone},
		{"participant on admin", "/admin", participant, false, "/dashboard", ReasonForbidden},
		{"participant on admin page", "/admin/participants", participant, false, "/dashboard", ReasonForbidden},
		{"participant on admin api", "/api/admin/stats", participant, false, "/dashboard", ReasonForbidden},
		{"participant on admin-like route", "/administrator", participant, true, "", ReasonNone},
		{"admin on admin", "/admin/participants", admin, true, "", ReasonNone},
		{"admin on login", "/login", admin, false, "/dashboard", ReasonAlreadyAuthenticated},
		{"query string ignored", "/dashboard?tab=team", nil, false, "/login", ReasonUnauthenticated},
	}

	p := newPolicy(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := p.Evaluate(tt.route, tt.user)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.redirect, d.Redirect)
			assert.Equal(t, tt.reason, d.Reason)
		})
	}
}

func TestExtraPublicRoutes(t *testing.T) {
	p := newPolicy(t, "/faq", "/sponsors/", "/blog*", " ")

	assert.True(t, p.Evaluate("/faq", nil).Allowed)
	assert.True(t, p.Evaluate("/sponsors/acme", nil).Allowed)
	assert.True(t, p.Evaluate("/blog/post-1", nil).Allowed)
	assert.False(t, p.Evaluate("/dashboard", nil).Allowed)
}

func TestNewRulePolicy_InvalidExpression(t *testing.T) {
	_, err := NewRulePolicy(nil, []Rule{{Name: "broken", Expression: `route ===`}})
	assert.ErrorContains(t, err, "broken")

	_, err = NewRulePolicy(nil, []Rule{{Name: "not-bool", Expression: `route`}})
	assert.Error(t, err)
}

func TestCustomRule(t *testing.T) {
	p, err := NewRulePolicy(nil, append(DefaultRules(), Rule{
		Name:       "team-required",
		Expression: `authenticated && route == "/dashboard/certificates" && role == ""`,
		Redirect:   "/dashboard/team",
		Reason:     ReasonForbidden,
	}))
	require.NoError(t, err)

	d := p.Evaluate("/dashboard/certificates", &domain.UserRecord{})
	assert.Equal(t, "/dashboard/team", d.Redirect)
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"":                    "/",
		"/":                   "/",
		"dashboard":           "/dashboard",
		"/dashboard/":         "/dashboard",
		"/dashboard/../admin": "/admin",
		"/login?next=/x":      "/login",
		"/team#members":       "/team",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), in)
	}
}

package guard

import (
	"fmt"
	"path"
	"strings"

	"loc-portal/internal/domain"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

const (
	LoginRoute     = "/login"
	RegisterRoute  = "/register"
	DashboardRoute = "/dashboard"
)

// Reason explains why a route was redirected
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonUnauthenticated      Reason = "unauthenticated"
	ReasonAlreadyAuthenticated Reason = "already_authenticated"
	ReasonForbidden            Reason = "forbidden"
)

// Decision is the guard's verdict for a route
type Decision struct {
	Route    string `json:"route"`
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
	Reason   Reason `json:"reason,omitempty"`
}

// Policy decides whether a user may view a route
type Policy interface {
	Evaluate(route string, user *domain.UserRecord) Decision
}

// Rule redirects to Redirect when Expression evaluates true. Expressions see
// the variables built by ruleEnv.
type Rule struct {
	Name       string
	Expression string
	Redirect   string
	Reason     Reason
}

// DefaultPublicRoutes are reachable without a user
var DefaultPublicRoutes = []string{
	"/",
	LoginRoute,
	RegisterRoute,
	"/health",
	"/api/session",
	"/api/auth/login",
	"/api/auth/register",
	"/api/auth/logout",
	"/api/navigation",
	"/api/event",
	"/api/contact",
}

// DefaultPublicPrefixes cover static assets
var DefaultPublicPrefixes = []string{"/static/", "/_next/", "/assets/"}

// DefaultRules are evaluated in order; the first match wins
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:       "require-login",
			Expression: `!authenticated && !public`,
			Redirect:   LoginRoute,
			Reason:     ReasonUnauthenticated,
		},
		{
			Name:       "skip-entry-pages",
			Expression: `authenticated && route in entryRoutes`,
			Redirect:   DashboardRoute,
			Reason:     ReasonAlreadyAuthenticated,
		},
		{
			Name:       "admin-only",
			Expression: `authenticated && role != "admin" && (route in adminRoutes || any(adminPrefixes, {route startsWith #}))`,
			Redirect:   DashboardRoute,
			Reason:     ReasonForbidden,
		},
	}
}

type compiledRule struct {
	Rule
	program *exprvm.Program
}

// RulePolicy evaluates compiled expression rules
type RulePolicy struct {
	public   map[string]struct{}
	prefixes []string
	rules    []compiledRule
}

// NewRulePolicy compiles rules. Extra public routes are added to the defaults;
// entries ending in "/" or "*" are treated as prefixes.
func NewRulePolicy(extraPublic []string, rules []Rule) (*RulePolicy, error) {
	p := &RulePolicy{
		public:   make(map[string]struct{}),
		prefixes: append([]string(nil), DefaultPublicPrefixes...),
	}
	for _, r := range DefaultPublicRoutes {
		p.public[r] = struct{}{}
	}
	for _, r := range extraPublic {
		r = strings.TrimSpace(r)
		switch {
		case r == "":
		case strings.HasSuffix(r, "*"):
			p.prefixes = append(p.prefixes, strings.TrimSuffix(r, "*"))
		case strings.HasSuffix(r, "/") && r != "/":
			p.prefixes = append(p.prefixes, r)
		default:
			p.public[Normalize(r)] = struct{}{}
		}
	}

	for _, rule := range rules {
		program, err := exprlang.Compile(rule.Expression,
			exprlang.Env(ruleEnv("", false, "", false)),
			exprlang.AsBool(),
		)
		if err != nil {
			return nil, fmt.Errorf("compile guard rule %q: %w", rule.Name, err)
		}
		p.rules = append(p.rules, compiledRule{Rule: rule, program: program})
	}
	return p, nil
}

// NewDefaultPolicy builds the policy with DefaultRules
func NewDefaultPolicy(extraPublic []string) (*RulePolicy, error) {
	return NewRulePolicy(extraPublic, DefaultRules())
}

// Evaluate implements Policy. A rule that fails at runtime denies access.
func (p *RulePolicy) Evaluate(route string, user *domain.UserRecord) Decision {
	route = Normalize(route)

	role := ""
	if user != nil {
		role = string(user.Role)
	}
	env := ruleEnv(route, user != nil, role, p.IsPublic(route))

	for _, rule := range p.rules {
		out, err := exprlang.Run(rule.program, env)
		if err != nil {
			return Decision{Route: route, Redirect: LoginRoute, Reason: ReasonForbidden}
		}
		if matched, _ := out.(bool); matched {
			return Decision{Route: route, Redirect: rule.Redirect, Reason: rule.Reason}
		}
	}
	return Decision{Route: route, Allowed: true}
}

// IsPublic reports whether a normalized route needs no user
func (p *RulePolicy) IsPublic(route string) bool {
	if _, ok := p.public[route]; ok {
		return true
	}
	for _, prefix := range p.prefixes {
		if strings.HasPrefix(route, prefix) {
			return true
		}
	}
	return false
}

func ruleEnv(route string, authenticated bool, role string, public bool) map[string]any {
	return map[string]any{
		"route":         route,
		"authenticated": authenticated,
		"role":          role,
		"public":        public,
		"entryRoutes":   []string{LoginRoute, RegisterRoute},
		"adminRoutes":   []string{"/admin", "/api/admin"},
		"adminPrefixes": []string{"/admin/", "/api/admin/"},
	}
}

// Normalize strips query and fragment, cleans the path and drops any trailing slash
func Normalize(route string) string {
	if i := strings.IndexAny(route, "?#"); i >= 0 {
		route = route[:i]
	}
	route = strings.TrimSpace(route)
	if route == "" {
		return "/"
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return path.Clean(route)
}

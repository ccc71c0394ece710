package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"loc-portal/internal/domain"
	"loc-portal/internal/guard"
	"loc-portal/internal/middleware"
	"loc-portal/pkg/logger"
)

// PageHandler serves the portal's page routes. With a static directory it
// serves the exported front-end; otherwise it answers with a JSON page
// descriptor the client renders.
type PageHandler struct {
	staticDir string
	logger    *logger.Logger
}

// NewPageHandler creates a page handler
func NewPageHandler(staticDir string, logger *logger.Logger) *PageHandler {
	return &PageHandler{
		staticDir: staticDir,
		logger:    logger.Named("pages"),
	}
}

// PageDescriptor describes a page for a client-rendered front-end
type PageDescriptor struct {
	Route         string               `json:"route"`
	Title         string               `json:"title"`
	User          *domain.UserRecord   `json:"user"`
	HasTeam       bool                 `json:"hasTeam"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
}

var pageTitles = map[string]string{
	"/":                       "League of Coders",
	guard.LoginRoute:          "Sign in",
	guard.RegisterRoute:       "Register",
	guard.DashboardRoute:      "Dashboard",
	"/dashboard/profile":      "Profile",
	"/dashboard/team":         "My Team",
	"/dashboard/create-team":  "Create Team",
	"/dashboard/payment":      "Payment",
	"/dashboard/certificates": "Certificates",
	"/dashboard/resources":    "Resources",
	"/admin":                  "Admin",
	"/admin/participants":     "Participants",
}

// Page handles the guarded page routes
func (h *PageHandler) Page(w http.ResponseWriter, r *http.Request) {
	route := guard.Normalize(r.URL.Path)

	if h.staticDir != "" {
		http.ServeFile(w, r, h.resolve(route))
		return
	}

	title, ok := pageTitles[route]
	if !ok {
		http.NotFound(w, r)
		return
	}

	desc := PageDescriptor{Route: route, Title: title, PaymentStatus: domain.PaymentUnpaid}
	if st := middleware.GetState(r.Context()); st != nil {
		desc.User = st.User()
		desc.HasTeam = st.HasTeam()
		desc.PaymentStatus = st.PaymentStatus()
	}
	respondJSON(w, r, http.StatusOK, "", desc)
}

// Logout handles GET /logout: it clears the session and sends the client to the login page
func (h *PageHandler) Logout(w http.ResponseWriter, r *http.Request) {
	st, err := currentState(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := st.Logout(r.Context()); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	http.Redirect(w, r, guard.LoginRoute, http.StatusFound)
}

// resolve maps a route onto the exported bundle: route.html, route/index.html,
// then the root index for client-side routing.
func (h *PageHandler) resolve(route string) string {
	rel := filepath.FromSlash(strings.TrimPrefix(route, "/"))
	candidates := []string{
		filepath.Join(h.staticDir, rel+".html"),
		filepath.Join(h.staticDir, rel, "index.html"),
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return filepath.Join(h.staticDir, "index.html")
}

package handler

import (
	"net/http"
	"time"

	"loc-portal/internal/container"
	"loc-portal/internal/middleware"
	"loc-portal/pkg/errors"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter configures and returns the HTTP router
func NewRouter(c *container.Container) *chi.Mux {
	cfg := c.GetConfig()
	log := c.GetLogger()
	services := c.Services

	r := chi.NewRouter()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins

	r.Use(middleware.CORS(corsConfig, log))
	r.Use(middleware.RequestID(log))
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	healthHandler := NewHealthHandler(c)
	authHandler := NewAuthHandler(services.Tokens, c.Policy, log)
	publicHandler := NewPublicHandler(c.Schedule(), c.Policy, services.Contact, log)
	dashboardHandler := NewDashboardHandler(c.Schedule(), log)
	adminHandler := NewAdminHandler(services.Admin, log)
	pageHandler := NewPageHandler(cfg.StaticDir, log)

	// Health check (no session)
	r.Get("/health", healthHandler.Check)

	if cfg.StaticDir != "" {
		assets := http.FileServer(http.Dir(cfg.StaticDir))
		r.Handle("/_next/*", assets)
		r.Handle("/static/*", assets)
		r.Handle("/assets/*", assets)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(c.Cookies, services.Tokens, log))
		r.Use(middleware.LoadState(services.State, log))

		r.Route("/api", func(r chi.Router) {
			r.Use(middleware.Authorize(c.Policy, log))

			r.Get("/session", authHandler.Session)
			r.Route("/auth", func(r chi.Router) {
				r.Post("/login", authHandler.Login)
				r.Post("/register", authHandler.Register)
				r.Post("/logout", authHandler.Logout)
			})

			r.Get("/navigation", publicHandler.Navigation)
			r.Get("/event", publicHandler.Event)
			r.Post("/contact", publicHandler.Contact)

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/profile", dashboardHandler.Profile)
				r.Put("/profile", dashboardHandler.UpdateProfile)
				r.Get("/team", dashboardHandler.Team)
				r.Post("/team", dashboardHandler.CreateTeam)
				r.Get("/payment", dashboardHandler.Payment)
				r.Post("/payment", dashboardHandler.Pay)
				r.Get("/payment/invoice/{transactionId}", dashboardHandler.Invoice)
				r.Get("/certificates", dashboardHandler.Certificates)
				r.Get("/resources", dashboardHandler.Resources)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Get("/stats", adminHandler.Stats)
				r.Get("/participants", adminHandler.Participants)
				r.Get("/participants/{email}", adminHandler.Participant)
			})
		})

		// Page routes redirect instead of answering 401/403
		r.Group(func(r chi.Router) {
			r.Use(middleware.Navigate(c.Policy, log))

			r.Get("/", pageHandler.Page)
			r.Get("/login", pageHandler.Page)
			r.Get("/register", pageHandler.Page)
			r.Get("/dashboard", pageHandler.Page)
			r.Get("/dashboard/*", pageHandler.Page)
			r.Get("/admin", pageHandler.Page)
			r.Get("/admin/*", pageHandler.Page)
		})

		r.Get("/logout", pageHandler.Logout)
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errors.ErrorResponse{
			Success: false,
			Error: errors.ErrorBody{
				Type:      errors.ErrorTypeNotFound,
				Message:   "Endpoint not found",
				RequestID: middleware.GetRequestID(r.Context()),
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			},
		})
	})

	log.Info("Router configured successfully")
	return r
}

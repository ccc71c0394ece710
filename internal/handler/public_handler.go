package handler

import (
	"net"
	"net/http"
	"time"

	"loc-portal/internal/domain"
	"loc-portal/internal/guard"
	"loc-portal/internal/middleware"
	"loc-portal/internal/service"
	"loc-portal/internal/service/notify"
	"loc-portal/pkg/errors"
	"loc-portal/pkg/logger"
)

// PublicHandler serves the landing page endpoints
type PublicHandler struct {
	schedule domain.EventSchedule
	policy   guard.Policy
	contact  service.ContactSubmitter
	now      func() time.Time
	logger   *logger.Logger
}

// NewPublicHandler creates a public handler
func NewPublicHandler(schedule domain.EventSchedule, policy guard.Policy, contact service.ContactSubmitter, logger *logger.Logger) *PublicHandler {
	return &PublicHandler{
		schedule: schedule,
		policy:   policy,
		contact:  contact,
		now:      time.Now,
		logger:   logger.Named("public"),
	}
}

// Event handles GET /api/event
func (h *PublicHandler) Event(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, "", h.schedule.Info(h.now()))
}

// Navigation handles GET /api/navigation?path=
func (h *PublicHandler) Navigation(w http.ResponseWriter, r *http.Request) {
	route := r.URL.Query().Get("path")
	if route == "" {
		respondError(w, r, h.logger, errors.NewValidationError("path query parameter is required", nil))
		return
	}

	var user *domain.UserRecord
	if st := middleware.GetState(r.Context()); st != nil {
		user = st.User()
	}
	respondJSON(w, r, http.StatusOK, "", h.policy.Evaluate(route, user))
}

// Contact handles POST /api/contact
func (h *PublicHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var msg domain.ContactMessage
	if err := decodeJSON(w, r, &msg); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	collector := notify.FromContext(r.Context())
	if err := h.contact.Submit(r.Context(), clientIP(r), msg); err != nil {
		if collector != nil {
			collector.Notify(domain.Notification{
				Title:       "Error sending message",
				Description: "Please try again later.",
				Variant:     domain.VariantDestructive,
			})
		}
		respondError(w, r, h.logger, err)
		return
	}

	if collector != nil {
		collector.Notify(domain.Notification{
			Title:       "Message sent successfully!",
			Description: "We'll get back to you as soon as possible.",
		})
	}
	respondJSON(w, r, http.StatusAccepted, "Message sent", nil)
}

// clientIP strips the port from RemoteAddr, which chi's RealIP has already
// replaced with the forwarded address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package handler

import (
	"net/http"
	"strconv"
	"strings"

	"loc-portal/internal/service"
	"loc-portal/pkg/errors"
	"loc-portal/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// AdminHandler serves the admin dashboard from the participant registry
type AdminHandler struct {
	admin  service.AdminService
	logger *logger.Logger
}

// NewAdminHandler creates an admin handler. admin may be nil when no
// database is configured; every endpoint then answers 503.
func NewAdminHandler(admin service.AdminService, logger *logger.Logger) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		logger: logger.Named("admin"),
	}
}

// Stats handles GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}

	stats, err := h.admin.Stats(r.Context())
	if err != nil {
		respondError(w, r, h.logger, errors.NewUnavailableError("Failed to load participant stats", err))
		return
	}
	respondJSON(w, r, http.StatusOK, "", stats)
}

// Participants handles GET /api/admin/participants?limit=&offset=
func (h *AdminHandler) Participants(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}

	limit, err := queryInt(r, "limit")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	list, err := h.admin.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, r, h.logger, errors.NewUnavailableError("Failed to list participants", err))
		return
	}
	respondJSON(w, r, http.StatusOK, "", list)
}

// Participant handles GET /api/admin/participants/{email}
func (h *AdminHandler) Participant(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "email")))
	record, err := h.admin.Get(r.Context(), email)
	if err != nil {
		respondError(w, r, h.logger, errors.NewUnavailableError("Failed to load participant", err))
		return
	}
	if record == nil {
		respondError(w, r, h.logger, errors.NewNotFoundError("Participant not found"))
		return
	}
	respondJSON(w, r, http.StatusOK, "", record)
}

func (h *AdminHandler) available(w http.ResponseWriter, r *http.Request) bool {
	if h.admin == nil {
		respondError(w, r, h.logger, errors.NewUnavailableError("Participant registry is not configured", nil))
		return false
	}
	return true
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewValidationError(key+" must be an integer", map[string]interface{}{key: raw})
	}
	return n, nil
}

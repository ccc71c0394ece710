package handler

import (
	"net/http"
	"strings"
	"time"

	"loc-portal/internal/domain"
	"loc-portal/pkg/errors"
	"loc-portal/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// DashboardHandler serves the signed-in participant's pages
type DashboardHandler struct {
	schedule domain.EventSchedule
	now      func() time.Time
	logger   *logger.Logger
}

// NewDashboardHandler creates a dashboard handler
func NewDashboardHandler(schedule domain.EventSchedule, logger *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		schedule: schedule,
		now:      time.Now,
		logger:   logger.Named("dashboard"),
	}
}

// ProfileRequest is the profile form. Password fields are optional.
type ProfileRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	ProfileImage    string `json:"profileImage,omitempty"`
	CurrentPassword string `json:"currentPassword,omitempty"`
	NewPassword     string `json:"newPassword,omitempty"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
}

// TeamView is returned by the team endpoints
type TeamView struct {
	HasTeam bool         `json:"hasTeam"`
	Team    *domain.Team `json:"team"`
}

// PaymentView is returned by the payment endpoints
type PaymentView struct {
	Status  domain.PaymentStatus `json:"status"`
	Payment *domain.PaymentInfo  `json:"payment"`
}

// Invoice summarizes a settled registration fee
type Invoice struct {
	TransactionID string    `json:"transactionId"`
	ParticipantID string    `json:"participantId"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Event         string    `json:"event"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	PaidDate      time.Time `json:"paidDate"`
}

// Profile handles GET /api/dashboard/profile
func (h *DashboardHandler) Profile(w http.ResponseWriter, r *http.Request) {
	_, user, err := requireUser(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, http.StatusOK, "", user)
}

// UpdateProfile handles PUT /api/dashboard/profile
func (h *DashboardHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	st, _, err := requireUser(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req ProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

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
	passwordChange := req.NewPassword != "" || req.ConfirmPassword != ""
	if passwordChange {
		switch {
		case req.CurrentPassword == "":
			details["password"] = "Current password is required to change password"
		case len(req.NewPassword) < domain.MinPasswordLength:
			details["password"] = "New password must be at least 8 characters long"
		case req.NewPassword != req.ConfirmPassword:
			details["password"] = "New passwords do not match"
		}
	}
	if len(details) > 0 {
		respondError(w, r, h.logger, errors.NewValidationError("Please correct the highlighted fields", details))
		return
	}

	update := domain.ProfileUpdate{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		ProfileImage:    req.ProfileImage,
		PasswordChanged: passwordChange,
	}
	if err := st.UpdateProfile(r.Context(), update); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, r, http.StatusOK, "Profile updated", st.User())
}

// Team handles GET /api/dashboard/team
func (h *DashboardHandler) Team(w http.ResponseWriter, r *http.Request) {
	st, user, err := requireUser(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, http.StatusOK, "", TeamView{HasTeam: st.HasTeam(), Team: user.Team})
}

// CreateTeam handles POST /api/dashboard/team
func (h *DashboardHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	st, _, err := requireUser(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	var req domain.TeamRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	members := make([]string, 0, len(req.Members))
	for _, m := range req.Members {
		if m = strings.TrimSpace(m); m != "" {
			members = append(members, m)
		}
	}

	details := map[string]interface{}{}
	if strings.TrimSpace(req.Name) == "" {
		details["name"] = "Team name is required"
	}
	if len(members) > domain.MaxInvitedMembers {
		details["members"] = "A team has at most 4 members including you"
	}
	if len(details) > 0 {
		respondError(w, r, h.logger, errors.NewValidationError("Please correct the highlighted fields", details))
		return
	}

	if err := st.CreateTeam(r.Context(), req.Name, req.Description, members); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, "Team created", TeamView{HasTeam: true, Team: st.User().Team})
}

// Payment handles GET /api/dashboard/payment
func (h *DashboardHandler) Payment(w http.ResponseWriter, r *http.Request) {
	st, user, err := requireUser(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, http.StatusOK, "", PaymentView{Status: st.PaymentStatus(), Payment: user.Payment})
}

// Pay handles POST /api/dashboard/payment
func (h *DashboardHandler) Pay(w http.ResponseWriter, r *http.Request) {
	st, _, err := requireUser(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := st.MakePayment(r.Context()); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, r, http.StatusOK, "Payment successful", PaymentView{Status: st.PaymentStatus(), Payment: st.User().Payment})
}

// Invoice handles GET /api/dashboard/payment/invoice/{transactionId}
func (h *DashboardHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	_, user, err := requireUser(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	txn := chi.URLParam(r, "transactionId")
	if !user.Payment.IsPaid() || user.Payment.TransactionID != txn {
		respondError(w, r, h.logger, errors.NewNotFoundError("Invoice not found"))
		return
	}

	respondJSON(w, r, http.StatusOK, "", Invoice{
		TransactionID: user.Payment.TransactionID,
		ParticipantID: user.ParticipantID,
		Name:          user.FullName(),
		Email:         user.Email,
		Event:         h.schedule.Name,
		Amount:        user.Payment.Amount,
		Currency:      user.Payment.Currency,
		PaidDate:      *user.Payment.PaidDate,
	})
}

// Certificates handles GET /api/dashboard/certificates
func (h *DashboardHandler) Certificates(w http.ResponseWriter, r *http.Request) {
	_, user, err := requireUser(r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, http.StatusOK, "", domain.CertificatesFor(user, h.schedule, h.now()))
}

// Resources handles GET /api/dashboard/resources
func (h *DashboardHandler) Resources(w http.ResponseWriter, r *http.Request) {
	respondCached(w, r, 5*time.Minute, domain.DefaultResources())
}

package auth

import (
	"context"
	"strings"

	"loc-portal/internal/domain"
	"loc-portal/internal/service"
	"loc-portal/pkg/errors"
	"loc-portal/pkg/logger"
)

// DemoAuthenticator accepts any credentials. Login always yields the demo
// identity for the given email; emails on the admin list get the admin role.
type DemoAuthenticator struct {
	admins map[string]struct{}
	logger *logger.Logger
}

// NewDemoAuthenticator creates the credential-free authenticator
func NewDemoAuthenticator(adminEmails []string, logger *logger.Logger) service.Authenticator {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		admins[normalizeEmail(email)] = struct{}{}
	}
	return &DemoAuthenticator{admins: admins, logger: logger}
}

func (a *DemoAuthenticator) Authenticate(_ context.Context, email, password string) (*domain.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errors.NewValidationError("Email and password are required", nil)
	}

	identity := &domain.Identity{
		FirstName: "John",
		LastName:  "Doe",
		Email:     email,
		Role:      a.roleFor(email),
	}
	a.logger.WithField("role", identity.Role).Debug("Demo credentials accepted")
	return identity, nil
}

func (a *DemoAuthenticator) Enroll(_ context.Context, profile domain.RegistrationProfile, password string) (*domain.Identity, error) {
	details := map[string]interface{}{}
	if strings.TrimSpace(profile.FirstName) == "" {
		details["firstName"] = "required"
	}
	if strings.TrimSpace(profile.LastName) == "" {
		details["lastName"] = "required"
	}
	if strings.TrimSpace(profile.Email) == "" {
		details["email"] = "required"
	}
	if password == "" {
		details["password"] = "required"
	}
	if len(details) > 0 {
		return nil, errors.NewValidationError("Registration form is incomplete", details)
	}

	email := strings.TrimSpace(profile.Email)
	return &domain.Identity{
		FirstName: strings.TrimSpace(profile.FirstName),
		LastName:  strings.TrimSpace(profile.LastName),
		Email:     email,
		Role:      a.roleFor(email),
	}, nil
}

func (a *DemoAuthenticator) roleFor(email string) domain.Role {
	if _, ok := a.admins[normalizeEmail(email)]; ok {
		return domain.RoleAdmin
	}
	return domain.RoleParticipant
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

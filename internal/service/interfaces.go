package service

import (
	"context"
	"errors"

	"loc-portal/internal/domain"
)

// ErrInvalidRecord is returned by a SessionStore when the stored blob no
// longer decodes into a UserRecord
var ErrInvalidRecord = errors.New("stored user record is unreadable")

// SessionStore persists one UserRecord per client scope under a fixed key
type SessionStore interface {
	// Get returns the scope's record, or nil when none is stored
	Get(ctx context.Context, scope string) (*domain.UserRecord, error)

	// Set overwrites the scope's record
	Set(ctx context.Context, scope string, record *domain.UserRecord) error

	// Delete removes the scope's record; deleting an absent record is not an error
	Delete(ctx context.Context, scope string) error
}

// Authenticator vouches for credentials and new registrations
type Authenticator interface {
	// Authenticate resolves credentials to an identity
	Authenticate(ctx context.Context, email, password string) (*domain.Identity, error)

	// Enroll registers a new account and returns its identity
	Enroll(ctx context.Context, profile domain.RegistrationProfile, password string) (*domain.Identity, error)
}

// WelcomeMailer delivers the registration welcome email
type WelcomeMailer interface {
	SendWelcome(ctx context.Context, msg domain.WelcomeEmail) error
}

// PaymentProvider settles the registration fee
type PaymentProvider interface {
	Charge(ctx context.Context, req domain.ChargeRequest) (*domain.PaymentReceipt, error)
}

// ParticipantRecorder mirrors committed records to the participant registry
type ParticipantRecorder interface {
	Record(ctx context.Context, record *domain.UserRecord) error
}

// Notifier receives user-visible status messages
type Notifier interface {
	Notify(n domain.Notification)
}

// TokenService issues and verifies bearer session tokens
type TokenService interface {
	Issue(scope string, record *domain.UserRecord) (string, error)
	Parse(token string) (*domain.SessionClaims, error)
}

// ContactSubmitter forwards contact form messages
type ContactSubmitter interface {
	Submit(ctx context.Context, clientIP string, msg domain.ContactMessage) error
}

// AdminService backs the admin shell
type AdminService interface {
	Stats(ctx context.Context) (*domain.ParticipantStats, error)
	List(ctx context.Context, limit, offset int) ([]domain.ParticipantSummary, error)
	Get(ctx context.Context, email string) (*domain.UserRecord, error)
}

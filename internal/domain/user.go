package domain

import (
	"strings"
	"time"
)

// Role is the access level of a UserRecord
type Role string

const (
	RoleParticipant Role = "participant"
	RoleAdmin       Role = "admin"
)

// UserRecord is the single authenticated participant held by a session scope.
// JSON names follow the persisted blob layout.
type UserRecord struct {
	FirstName        string       `json:"firstName"`
	LastName         string       `json:"lastName"`
	Email            string       `json:"email"`
	ProfileImage     string       `json:"profileImage,omitempty"`
	Role             Role         `json:"role"`
	RegistrationDate time.Time    `json:"registrationDate"`
	ParticipantID    string       `json:"participantId"`
	Team             *Team        `json:"team,omitempty"`
	Payment          *PaymentInfo `json:"payment,omitempty"`
}

// FullName joins first and last name
func (u *UserRecord) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsAdmin reports whether the record carries the admin role
func (u *UserRecord) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// HasTeam reports whether a team has been formed
func (u *UserRecord) HasTeam() bool {
	return u != nil && u.Team != nil
}

// Clone returns a deep copy so callers can build the next record without
// touching the committed one.
func (u *UserRecord) Clone() *UserRecord {
	if u == nil {
		return nil
	}
	cp := *u
	if u.Team != nil {
		team := *u.Team
		team.Members = append([]TeamMember(nil), u.Team.Members...)
		cp.Team = &team
	}
	if u.Payment != nil {
		payment := *u.Payment
		if u.Payment.PaidDate != nil {
			paid := *u.Payment.PaidDate
			payment.PaidDate = &paid
		}
		cp.Payment = &payment
	}
	return &cp
}

// Identity is what an authenticator vouches for
type Identity struct {
	FirstName    string
	LastName     string
	Email        string
	ProfileImage string
	Role         Role
}

// RegistrationProfile is the caller-validated sign-up form
type RegistrationProfile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// ProfileUpdate carries the editable profile fields
type ProfileUpdate struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	ProfileImage string `json:"profileImage,omitempty"`

	// PasswordChanged is set once the caller has validated a password change
	PasswordChanged bool `json:"-"`
}

// SessionClaims are the fields carried by a bearer session token
type SessionClaims struct {
	Scope         string `json:"sid"`
	Role          Role   `json:"role"`
	ParticipantID string `json:"pid"`
	ExpiresAt     time.Time
}

// WelcomeEmail is the input of the welcome mail collaborator
type WelcomeEmail struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

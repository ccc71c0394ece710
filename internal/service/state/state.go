package state

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"loc-portal/internal/domain"
	"loc-portal/internal/service"
	"loc-portal/pkg/retry"

	"go.uber.org/zap"
)

// State is the locked view of one session scope. Every mutation is written
// to the session store before the in-memory record changes.
type State struct {
	m        *Manager
	scope    string
	user     *domain.UserRecord
	notifier service.Notifier
	release  func()
	closed   bool
}

// Close releases the scope lock. Safe to call more than once.
func (s *State) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.release()
}

// Scope returns the client scope this state belongs to
func (s *State) Scope() string {
	return s.scope
}

// User returns a copy of the current record, or nil when logged out
func (s *State) User() *domain.UserRecord {
	return s.user.Clone()
}

// HasTeam reports whether the current user has formed a team
func (s *State) HasTeam() bool {
	return s.user.HasTeam()
}

// PaymentStatus projects the fee status, unpaid when there is no record or payment
func (s *State) PaymentStatus() domain.PaymentStatus {
	if s.user == nil || s.user.Payment == nil || s.user.Payment.Status == "" {
		return domain.PaymentUnpaid
	}
	return s.user.Payment.Status
}

// Login replaces the scope's record with a fresh one for the authenticated identity
func (s *State) Login(ctx context.Context, email, password string) error {
	if err := s.usable(); err != nil {
		return err
	}

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		s.fail("Login failed", "Please enter your email and password.")
		return fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	identity, err := s.m.auth.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.fail("Login failed", "Invalid email or password.")
		} else {
			s.fail("Login failed", "There was an error signing you in. Please try again.")
		}
		return err
	}

	record := s.m.newRecord(identity)
	if err := s.commit(ctx, record); err != nil {
		s.fail("Login failed", "There was an error signing you in. Please try again.")
		return err
	}

	s.m.log.Info("User logged in",
		zap.String("participant_id", record.ParticipantID),
		zap.String("role", string(record.Role)))
	s.notify("Login successful", "Welcome back to League of Coders!")
	return nil
}

// Register enrolls a new participant. The welcome email is best effort.
func (s *State) Register(ctx context.Context, profile domain.RegistrationProfile, password string) error {
	if err := s.usable(); err != nil {
		return err
	}

	identity, err := s.m.auth.Enroll(ctx, profile, password)
	if err != nil {
		s.fail("Registration failed", "There was an error during registration. Please try again.")
		return err
	}

	if s.m.mailer != nil {
		welcome := domain.WelcomeEmail{
			FirstName: identity.FirstName,
			LastName:  identity.LastName,
			Email:     identity.Email,
		}
		if err := s.m.mailer.SendWelcome(ctx, welcome); err != nil {
			s.m.log.Warn("Failed to send welcome email", zap.Error(err))
		}
	}

	record := s.m.newRecord(identity)
	if err := s.commit(ctx, record); err != nil {
		s.fail("Registration failed", "There was an error during registration. Please try again.")
		return err
	}

	s.m.log.Info("User registered", zap.String("participant_id", record.ParticipantID))
	s.notify("Registration successful", "Welcome to League of Coders! Check your email for confirmation.")
	return nil
}

// Logout clears the in-memory and persisted record
func (s *State) Logout(ctx context.Context) error {
	if err := s.usable(); err != nil {
		return err
	}

	err := retry.DoIfRetryable(ctx, s.m.retry, func() error {
		return s.m.store.Delete(ctx, s.scope)
	})
	if err != nil {
		s.fail("Logout failed", "There was an error signing you out. Please try again.")
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if s.user != nil {
		s.m.log.Info("User logged out", zap.String("participant_id", s.user.ParticipantID))
	}
	s.user = nil
	s.notify("Logged out", "You have been successfully logged out.")
	return nil
}

// CreateTeam forms a team led by the current user. One placeholder member is
// added per identifier; identifiers beyond the first three are ignored.
func (s *State) CreateTeam(ctx context.Context, name, description string, members []string) error {
	if err := s.usable(); err != nil {
		return err
	}
	if s.user == nil {
		s.fail("Team creation failed", "You need to be logged in to create a team.")
		return ErrNoActiveUser
	}
	if s.user.Team != nil {
		s.fail("Team creation failed", "You have already created a team.")
		return ErrTeamExists
	}

	name = strings.TrimSpace(name)
	if name == "" {
		s.fail("Team creation failed", "Team name is required.")
		return fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}

	if len(members) > domain.MaxInvitedMembers {
		members = members[:domain.MaxInvitedMembers]
	}

	team := &domain.Team{
		ID:          newTeamID(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   s.m.now().UTC(),
		Members: []domain.TeamMember{{
			ID:       newMemberID(),
			Name:     s.user.FullName(),
			Email:    s.user.Email,
			Role:     leaderRole,
			IsLeader: true,
		}},
	}
	for i := range members {
		team.Members = append(team.Members, domain.TeamMember{
			ID:    newMemberID(),
			Name:  fmt.Sprintf("Team Member %d", i+1),
			Email: fmt.Sprintf("member%d@example.com", i+1),
			Role:  placeholderRoles[i%len(placeholderRoles)],
		})
	}

	next := s.user.Clone()
	next.Team = team
	if err := s.commit(ctx, next); err != nil {
		s.fail("Team creation failed", "There was an error creating your team. Please try again.")
		return err
	}

	s.m.log.Info("Team created",
		zap.String("participant_id", next.ParticipantID),
		zap.String("team_id", team.ID),
		zap.Int("members", len(team.Members)))
	s.notify("Team created successfully", fmt.Sprintf("Your team %q has been created.", name))
	return nil
}

// MakePayment charges the registration fee and marks it paid. Paying an
// already settled fee is a no-op.
func (s *State) MakePayment(ctx context.Context) error {
	if err := s.usable(); err != nil {
		return err
	}
	if s.user == nil {
		s.fail("Payment failed", "You need to be logged in to make a payment.")
		return ErrNoActiveUser
	}
	if s.user.Payment.IsPaid() {
		s.notify("Payment already completed", "Your registration fee has already been paid.")
		return nil
	}

	next := s.user.Clone()
	if next.Payment == nil {
		next.Payment = s.m.newPayment(s.m.now().UTC())
	}

	req := domain.ChargeRequest{
		ParticipantID: next.ParticipantID,
		Email:         next.Email,
		Amount:        next.Payment.Amount,
		Currency:      next.Payment.Currency,
	}

	var receipt *domain.PaymentReceipt
	err := retry.DoIfRetryable(ctx, s.m.retry, func() error {
		var chargeErr error
		receipt, chargeErr = s.m.payments.Charge(ctx, req)
		return chargeErr
	})
	if err != nil {
		s.m.log.Warn("Payment charge failed",
			zap.String("participant_id", next.ParticipantID),
			zap.Error(err))
		s.fail("Payment failed", "There was an error processing your payment. Please try again.")
		return fmt.Errorf("%w: %w", ErrPaymentFailed, err)
	}

	paidAt := receipt.PaidAt.UTC()
	next.Payment.Status = domain.PaymentPaid
	next.Payment.PaidDate = &paidAt
	next.Payment.TransactionID = receipt.TransactionID
	next.Payment.InvoiceURL = receipt.InvoiceURL

	if err := s.commit(ctx, next); err != nil {
		s.m.log.Error("Charged payment could not be stored",
			zap.String("participant_id", next.ParticipantID),
			zap.String("transaction_id", receipt.TransactionID),
			zap.Error(err))
		s.fail("Payment failed", "There was an error processing your payment. Please try again.")
		return err
	}

	s.m.log.Info("Payment completed",
		zap.String("participant_id", next.ParticipantID),
		zap.String("transaction_id", receipt.TransactionID))
	s.notify("Payment successful", "Your payment has been processed successfully.")
	return nil
}

// UpdateProfile edits the current user's name, email and picture.
// Participant id, role, team and payment are left alone.
func (s *State) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) error {
	if err := s.usable(); err != nil {
		return err
	}
	if s.user == nil {
		s.fail("Profile update failed", "You need to be logged in to update your profile.")
		return ErrNoActiveUser
	}

	update.FirstName = strings.TrimSpace(update.FirstName)
	update.LastName = strings.TrimSpace(update.LastName)
	update.Email = strings.TrimSpace(update.Email)
	if update.FirstName == "" || update.LastName == "" || update.Email == "" {
		s.fail("Profile update failed", "Name and email are required.")
		return fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}

	next := s.user.Clone()
	next.FirstName = update.FirstName
	next.LastName = update.LastName
	next.Email = update.Email
	if update.ProfileImage != "" {
		next.ProfileImage = update.ProfileImage
	}
	if next.Team != nil {
		if leader := next.Team.Leader(); leader != nil {
			leader.Name = next.FullName()
			leader.Email = next.Email
		}
	}

	if err := s.commit(ctx, next); err != nil {
		s.fail("Profile update failed", "There was an error saving your profile. Please try again.")
		return err
	}

	if update.PasswordChanged {
		s.notify("Profile updated", "Your profile and password have been updated successfully.")
	} else {
		s.notify("Profile updated", "Your profile has been updated successfully.")
	}
	return nil
}

// commit persists next and only then makes it the current record
func (s *State) commit(ctx context.Context, next *domain.UserRecord) error {
	err := retry.DoIfRetryable(ctx, s.m.retry, func() error {
		return s.m.store.Set(ctx, s.scope, next)
	})
	if err != nil {
		s.m.log.Error("Failed to persist session record", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.user = next

	if s.m.recorder != nil {
		if err := s.m.recorder.Record(ctx, next.Clone()); err != nil {
			s.m.log.Warn("Failed to mirror participant record",
				zap.String("participant_id", next.ParticipantID),
				zap.Error(err))
		}
	}
	return nil
}

func (s *State) usable() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *State) notify(title, description string) {
	s.notifier.Notify(domain.Notification{Title: title, Description: description, Variant: domain.VariantDefault})
}

func (s *State) fail(title, description string) {
	s.notifier.Notify(domain.Notification{Title: title, Description: description, Variant: domain.VariantDestructive})
}

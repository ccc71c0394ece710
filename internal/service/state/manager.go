package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loc-portal/internal/domain"
	"loc-portal/internal/service"
	"loc-portal/internal/service/notify"
	"loc-portal/pkg/retry"

	"go.uber.org/zap"
)

// DefaultProfileImage is assigned when the identity carries no picture
const DefaultProfileImage = "/placeholder.svg?height=200&width=200"

// FeeSettings describe the registration fee attached to new records
type FeeSettings struct {
	Amount   float64
	Currency string
	DueIn    time.Duration
}

// Dependencies wires the collaborators of the state container
type Dependencies struct {
	Store    service.SessionStore
	Auth     service.Authenticator
	Payments service.PaymentProvider
	Mailer   service.WelcomeMailer       // optional, welcome mail is skipped when nil
	Recorder service.ParticipantRecorder // optional participant registry mirror
	Logger   *zap.Logger
	Fee      FeeSettings
	Retry    *retry.Config
	Clock    func() time.Time
}

// Manager hands out per-scope State instances. Each scope has at most one
// open State at a time; Open blocks until the previous holder closes.
type Manager struct {
	store    service.SessionStore
	auth     service.Authenticator
	payments service.PaymentProvider
	mailer   service.WelcomeMailer
	recorder service.ParticipantRecorder
	log      *zap.Logger
	fee      FeeSettings
	retry    *retry.Config
	now      func() time.Time
	locks    *scopeLocks
}

func NewManager(deps Dependencies) (*Manager, error) {
	if deps.Store == nil {
		return nil, errors.New("state manager requires a session store")
	}
	if deps.Auth == nil {
		return nil, errors.New("state manager requires an authenticator")
	}
	if deps.Payments == nil {
		return nil, errors.New("state manager requires a payment provider")
	}

	m := &Manager{
		store:    deps.Store,
		auth:     deps.Auth,
		payments: deps.Payments,
		mailer:   deps.Mailer,
		recorder: deps.Recorder,
		log:      deps.Logger,
		fee:      deps.Fee,
		retry:    deps.Retry,
		now:      deps.Clock,
		locks:    newScopeLocks(),
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	if m.retry == nil {
		m.retry = retry.DefaultConfig()
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.fee.Currency == "" {
		m.fee = FeeSettings{Amount: 50, Currency: "USD", DueIn: 7 * 24 * time.Hour}
	}
	return m, nil
}

// Open locks the scope and loads its record. The caller must Close the
// returned State. An unreadable stored record is discarded and the scope
// starts logged out.
func (m *Manager) Open(ctx context.Context, scope string, notifier service.Notifier) (*State, error) {
	if scope == "" {
		return nil, fmt.Errorf("%w: empty session scope", ErrInvalidInput)
	}

	release, err := m.locks.acquire(ctx, scope)
	if err != nil {
		return nil, err
	}

	var record *domain.UserRecord
	err = retry.DoIfRetryable(ctx, m.retry, func() error {
		var getErr error
		record, getErr = m.store.Get(ctx, scope)
		return getErr
	})
	if errors.Is(err, service.ErrInvalidRecord) {
		m.log.Warn("Discarding unreadable session record", zap.Error(err))
		if delErr := m.store.Delete(ctx, scope); delErr != nil {
			m.log.Warn("Failed to delete unreadable session record", zap.Error(delErr))
		}
		record, err = nil, nil
	}
	if err != nil {
		release()
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if notifier == nil {
		notifier = notify.Discard{}
	}

	return &State{
		m:        m,
		scope:    scope,
		user:     record,
		notifier: notifier,
		release:  release,
	}, nil
}

func (m *Manager) newRecord(identity *domain.Identity) *domain.UserRecord {
	now := m.now().UTC()

	role := identity.Role
	if role == "" {
		role = domain.RoleParticipant
	}
	image := identity.ProfileImage
	if image == "" {
		image = DefaultProfileImage
	}

	return &domain.UserRecord{
		FirstName:        identity.FirstName,
		LastName:         identity.LastName,
		Email:            identity.Email,
		ProfileImage:     image,
		Role:             role,
		RegistrationDate: now,
		ParticipantID:    newParticipantID(),
		Payment:          m.newPayment(now),
	}
}

func (m *Manager) newPayment(now time.Time) *domain.PaymentInfo {
	return &domain.PaymentInfo{
		Status:   domain.PaymentUnpaid,
		Amount:   m.fee.Amount,
		Currency: m.fee.Currency,
		DueDate:  now.Add(m.fee.DueIn),
	}
}

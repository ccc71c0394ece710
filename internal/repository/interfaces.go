package repository

import (
	"context"

	"loc-portal/internal/domain"
)

// ParticipantRepository mirrors session records into the participant registry
type ParticipantRepository interface {
	// Upsert inserts or replaces the participant keyed by email
	Upsert(ctx context.Context, record *domain.UserRecord) error

	// Get returns the stored record for an email, or nil when unknown
	Get(ctx context.Context, email string) (*domain.UserRecord, error)

	// List returns participants ordered by most recent update
	List(ctx context.Context, limit, offset int) ([]domain.ParticipantSummary, error)

	// Stats aggregates registry counters for the admin dashboard
	Stats(ctx context.Context) (*domain.ParticipantStats, error)
}


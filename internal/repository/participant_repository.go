package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"loc-portal/internal/domain"
	"loc-portal/pkg/database"

	"github.com/jackc/pgx/v5"
)

// participantRepository stores participants in PostgreSQL
type participantRepository struct {
	db *database.PostgresDB
}

// NewParticipantRepository creates a new participant repository
func NewParticipantRepository(db *database.PostgresDB) ParticipantRepository {
	return &participantRepository{
		db: db,
	}
}

// Upsert inserts or replaces the participant keyed by email
func (r *participantRepository) Upsert(ctx context.Context, record *domain.UserRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode participant record: %w", err)
	}

	var teamName *string
	if record.Team != nil {
		teamName = &record.Team.Name
	}

	paymentStatus := domain.PaymentUnpaid
	if record.Payment != nil && record.Payment.Status != "" {
		paymentStatus = record.Payment.Status
	}

	query := `
		INSERT INTO participants (email, participant_id, first_name, last_name, role, team_name, payment_status, record, registered_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, NOW())
		ON CONFLICT (email) DO UPDATE SET
			participant_id = EXCLUDED.participant_id,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			role = EXCLUDED.role,
			team_name = EXCLUDED.team_name,
			payment_status = EXCLUDED.payment_status,
			record = EXCLUDED.record,
			registered_at = EXCLUDED.registered_at,
			updated_at = NOW()
	`

	_, err = r.db.Pool.Exec(ctx, query,
		normalizeEmail(record.Email),
		record.ParticipantID,
		record.FirstName,
		record.LastName,
		string(record.Role),
		teamName,
		string(paymentStatus),
		string(data),
		record.RegistrationDate,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert participant: %w", err)
	}

	return nil
}

// Get returns the stored record for an email, or nil when unknown
func (r *participantRepository) Get(ctx context.Context, email string) (*domain.UserRecord, error) {
	query := `SELECT record FROM participants WHERE email = $1`

	var data []byte
	err := r.db.GetReadPool().QueryRow(ctx, query, normalizeEmail(email)).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	var record domain.UserRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode participant record: %w", err)
	}
	return &record, nil
}

// List returns participants ordered by most recent update
func (r *participantRepository) List(ctx context.Context, limit, offset int) ([]domain.ParticipantSummary, error) {
	query := `
		SELECT participant_id, first_name, last_name, email, role, COALESCE(team_name, ''), payment_status, updated_at
		FROM participants
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.GetReadPool().Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	participants := []domain.ParticipantSummary{}
	for rows.Next() {
		var (
			p                   domain.ParticipantSummary
			firstName, lastName string
			role, status        string
			updatedAt           time.Time
		)
		if err := rows.Scan(&p.ParticipantID, &firstName, &lastName, &p.Email, &role, &p.TeamName, &status, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		p.Name = strings.TrimSpace(firstName + " " + lastName)
		p.Role = domain.Role(role)
		p.PaymentStatus = domain.PaymentStatus(status)
		p.UpdatedAt = updatedAt
		participants = append(participants, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}

	return participants, nil
}

// Stats aggregates registry counters for the admin dashboard
func (r *participantRepository) Stats(ctx context.Context) (*domain.ParticipantStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE role = 'admin'),
			COUNT(*) FILTER (WHERE team_name IS NOT NULL),
			COUNT(*) FILTER (WHERE payment_status = 'paid'),
			COUNT(*) FILTER (WHERE payment_status <> 'paid')
		FROM participants
	`

	stats := &domain.ParticipantStats{}
	err := r.db.GetReadPool().QueryRow(ctx, query).Scan(
		&stats.Participants,
		&stats.Admins,
		&stats.Teams,
		&stats.Paid,
		&stats.Unpaid,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant stats: %w", err)
	}

	stats.GeneratedAt = time.Now().UTC()
	return stats, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

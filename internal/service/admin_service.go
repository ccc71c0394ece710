package service

import (
	"context"
	"fmt"

	"loc-portal/internal/domain"
	"loc-portal/internal/repository"

	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// ParticipantService backs the admin shell and receives every committed
// session record as a best-effort mirror.
type ParticipantService struct {
	repo   repository.ParticipantRepository
	cache  *CacheService
	logger *zap.Logger
}

// NewParticipantService creates a participant service
func NewParticipantService(repo repository.ParticipantRepository, cache *CacheService, logger *zap.Logger) *ParticipantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = NewCacheService(nil, logger)
	}
	return &ParticipantService{repo: repo, cache: cache, logger: logger}
}

// Record implements ParticipantRecorder
func (s *ParticipantService) Record(ctx context.Context, record *domain.UserRecord) error {
	if record == nil || record.Email == "" {
		return nil
	}

	if err := s.repo.Upsert(ctx, record); err != nil {
		return fmt.Errorf("record participant: %w", err)
	}

	// Stale counters only cost a refresh
	_ = s.cache.InvalidateStats(ctx)

	s.logger.Debug("Participant recorded", zap.String("participant_id", record.ParticipantID))
	return nil
}

// Stats returns the admin dashboard counters
func (s *ParticipantService) Stats(ctx context.Context) (*domain.ParticipantStats, error) {
	return s.cache.GetStatsWithCache(ctx, s.repo.Stats)
}

// List returns one page of participants
func (s *ParticipantService) List(ctx context.Context, limit, offset int) ([]domain.ParticipantSummary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// Get returns the registry copy of a participant's record
func (s *ParticipantService) Get(ctx context.Context, email string) (*domain.UserRecord, error) {
	return s.repo.Get(ctx, email)
}

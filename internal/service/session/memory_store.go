package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"loc-portal/internal/domain"
	"loc-portal/internal/service"
)

// sweepInterval bounds how often Set scans for expired scopes
const sweepInterval = time.Minute

type memoryEntry struct {
	blob      []byte
	expiresAt time.Time
}

// MemoryStore is the process-local fallback used when Redis is not configured.
// Records are stored encoded so readers never share memory with the writer.
type MemoryStore struct {
	mu        sync.RWMutex
	entries   map[string]memoryEntry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, scope string) (*domain.UserRecord, error) {
	s.mu.RLock()
	entry, ok := s.entries[scope]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if s.ttl > 0 && !s.now().Before(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, scope)
		s.mu.Unlock()
		return nil, nil
	}

	var record domain.UserRecord
	if err := json.Unmarshal(entry.blob, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidRecord, err)
	}
	return &record, nil
}

func (s *MemoryStore) Set(ctx context.Context, scope string, record *domain.UserRecord) error {
	if record == nil {
		return s.Delete(ctx, scope)
	}

	blob, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}

	now := s.now()
	s.mu.Lock()
	s.sweepLocked(now)
	s.entries[scope] = memoryEntry{blob: blob, expiresAt: now.Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

// sweepLocked drops expired scopes that were never read again
func (s *MemoryStore) sweepLocked(now time.Time) {
	if s.ttl <= 0 || now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	for scope, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, scope)
		}
	}
	s.lastSweep = now
}

func (s *MemoryStore) Delete(_ context.Context, scope string) error {
	s.mu.Lock()
	delete(s.entries, scope)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored scopes
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

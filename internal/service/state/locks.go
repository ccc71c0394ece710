package state

import (
	"context"
	"sync"
)

type scopeLock struct {
	ch   chan struct{}
	refs int
}

// scopeLocks serializes access per scope. Entries are dropped once no
// holder or waiter references them.
type scopeLocks struct {
	mu    sync.Mutex
	locks map[string]*scopeLock
}

func newScopeLocks() *scopeLocks {
	return &scopeLocks{locks: make(map[string]*scopeLock)}
}

func (s *scopeLocks) acquire(ctx context.Context, scope string) (func(), error) {
	s.mu.Lock()
	l, ok := s.locks[scope]
	if !ok {
		l = &scopeLock{ch: make(chan struct{}, 1)}
		s.locks[scope] = l
	}
	l.refs++
	s.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		s.unref(scope, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.ch
			s.unref(scope, l)
		})
	}, nil
}

func (s *scopeLocks) unref(scope string, l *scopeLock) {
	s.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, scope)
	}
	s.mu.Unlock()
}

func (s *scopeLocks) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}

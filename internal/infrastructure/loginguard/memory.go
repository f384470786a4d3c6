// Package loginguard stores failed login counters and lockouts.
package loginguard

import (
	"context"
	"sync"
	"time"

	"cardealer-backend/internal/domain"

	gocache "github.com/patrickmn/go-cache"
)

const (
	failPrefix = "login:fail:"
	lockPrefix = "login:lock:"
)

// MemoryStore is a single-instance store backed by go-cache.
type MemoryStore struct {
	mu     sync.Mutex
	store  *gocache.Cache
	window time.Duration
}

// NewMemoryStore counts failures in fixed windows starting at the first failure.
func NewMemoryStore(window time.Duration) domain.LoginAttemptStore {
	return &MemoryStore{
		store:  gocache.New(window, window),
		window: window,
	}
}

func (s *MemoryStore) IsLocked(_ context.Context, key string) (bool, error) {
	_, found := s.store.Get(lockPrefix + key)
	return found, nil
}

func (s *MemoryStore) RegisterFailure(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := failPrefix + key
	if err := s.store.Add(k, 1, s.window); err == nil {
		return 1, nil
	}
	n, err := s.store.IncrementInt(k, 1)
	if err != nil {
		// expired between Add and Increment
		s.store.Set(k, 1, s.window)
		return 1, nil
	}
	return n, nil
}

func (s *MemoryStore) Lock(_ context.Context, key string, d time.Duration) error {
	s.store.Set(lockPrefix+key, true, d)
	return nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.store.Delete(failPrefix + key)
	s.store.Delete(lockPrefix + key)
	return nil
}

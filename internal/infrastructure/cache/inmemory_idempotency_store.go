package cache

import (
	"context"
	"sync"
	"time"

	"github.com/fincore/backend/internal/domain/shared"
)

const sweepInterval = 5 * time.Minute

// InMemoryIdempotencyStore keeps claimed keys in process memory. It serves a
// single API instance when Redis is not configured; keys do not survive a
// restart.
type InMemoryIdempotencyStore struct {
	mu      sync.Mutex
	expiry  map[string]time.Time
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
	now     func() time.Time
}

// NewInMemoryIdempotencyStore creates the store and starts sweeping expired
// keys until Close
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	ctx, cancel := context.WithCancel(context.Background())
	s := &InMemoryIdempotencyStore{
		expiry:  make(map[string]time.Time),
		cancel:  cancel,
		stopped: make(chan struct{}),
		now:     time.Now,
	}
	go s.sweep(ctx)
	return s
}

// MarkProcessed claims key for ttl. It returns false while an earlier
// claim is still live.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if until, ok := s.expiry[key]; ok && now.Before(until) {
		return false, nil
	}
	s.expiry[key] = now.Add(ttl)
	return true, nil
}

// IsProcessed reports whether key holds a live claim
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.expiry[key]
	return ok && s.now().Before(until), nil
}

// Release drops the claim on key
func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.expiry, key)
	s.mu.Unlock()
	return nil
}

// Close stops the sweeper; it is safe to call more than once
func (s *InMemoryIdempotencyStore) Close() error {
	s.once.Do(func() {
		s.cancel()
		<-s.stopped
	})
	return nil
}

// Size returns the number of stored keys, live or not yet swept
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expiry)
}

func (s *InMemoryIdempotencyStore) sweep(ctx context.Context) {
	defer close(s.stopped)
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryIdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key, until := range s.expiry {
		if !now.Before(until) {
			delete(s.expiry, key)
		}
	}
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)

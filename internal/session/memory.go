package session

import (
	"context"
	"sync"
	"time"

	"feedshop-gateway/internal/entity"

	"github.com/google/uuid"
)

// memorySessionTTL bounds session lifetime in degraded mode, standing
// in for the TTL redis would apply.
const memorySessionTTL = 7 * 24 * time.Hour

type memorySession struct {
	sess      *entity.Session
	expiresAt time.Time
}

type memoryCheckout struct {
	orderID   string
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. It backs tests and the
// degraded mode used when redis is unreachable at startup. Entries
// carry the same TTLs redis would enforce and are swept lazily, so a
// gateway running without redis does not grow without bound.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  map[string]memorySession
	checkouts map[string]memoryCheckout
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:  make(map[string]memorySession),
		checkouts: make(map[string]memoryCheckout),
		now:       time.Now,
	}
}

func (s *MemoryStore) Create(ctx context.Context, token string) (*entity.Session, error) {
	sess := &entity.Session{
		ID:        uuid.New().String(),
		Token:     token,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	s.sessions[sess.ID] = memorySession{
		sess:      cloneSession(sess),
		expiresAt: s.now().Add(memorySessionTTL),
	}
	return sess, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok || !s.now().Before(entry.expiresAt) {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}
	return cloneSession(entry.sess), nil
}

func (s *MemoryStore) Save(ctx context.Context, sess *entity.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = memorySession{
		sess:      cloneSession(sess),
		expiresAt: s.now().Add(memorySessionTTL),
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) ReserveCheckout(ctx context.Context, sessionID, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()

	mapKey := checkoutKey(sessionID, key)
	entry, ok := s.checkouts[mapKey]
	if !ok {
		s.checkouts[mapKey] = memoryCheckout{
			orderID:   checkoutPending,
			expiresAt: s.now().Add(checkoutTTL),
		}
		return "", true, nil
	}
	if entry.orderID == checkoutPending {
		return "", false, ErrCheckoutInFlight
	}
	return entry.orderID, false, nil
}

func (s *MemoryStore) CompleteCheckout(ctx context.Context, sessionID, key, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkouts[checkoutKey(sessionID, key)] = memoryCheckout{
		orderID:   orderID,
		expiresAt: s.now().Add(checkoutTTL),
	}
	return nil
}

func (s *MemoryStore) ReleaseCheckout(ctx context.Context, sessionID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.checkouts, checkoutKey(sessionID, key))
	return nil
}

// sweep drops expired entries. Called with the lock held.
func (s *MemoryStore) sweep() {
	now := s.now()
	for id, entry := range s.sessions {
		if !now.Before(entry.expiresAt) {
			delete(s.sessions, id)
		}
	}
	for key, entry := range s.checkouts {
		if !now.Before(entry.expiresAt) {
			delete(s.checkouts, key)
		}
	}
}

func cloneSession(sess *entity.Session) *entity.Session {
	cp := *sess
	if sess.Profile != nil {
		profile := *sess.Profile
		cp.Profile = &profile
	}
	return &cp
}

package spotify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultStateTTL bounds how long an issued state nonce stays valid.
const DefaultStateTTL = 5 * time.Minute

// StateStore tracks outstanding OAuth state nonces. A nonce is valid
// for one callback only: Consume removes it, so a replayed callback
// fails closed. Entries expire after the TTL and are pruned on access.
type StateStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	issued map[string]time.Time
	now    func() time.Time
}

// NewStateStore creates a state store with the given nonce TTL.
func NewStateStore(ttl time.Duration) *StateStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &StateStore{
		ttl:    ttl,
		issued: make(map[string]time.Time),
		now:    time.Now,
	}
}

// Issue generates a fresh nonce and records it as outstanding.
func (s *StateStore) Issue() string {
	state := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	s.issued[state] = s.now()
	return state
}

// Consume reports whether state is outstanding and removes it so it
// cannot be used again.
func (s *StateStore) Consume(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()

	if _, ok := s.issued[state]; !ok {
		return false
	}
	delete(s.issued, state)
	return true
}

// prune drops expired nonces. Caller holds the lock.
func (s *StateStore) prune() {
	cutoff := s.now().Add(-s.ttl)
	for state, issuedAt := range s.issued {
		if issuedAt.Before(cutoff) {
			delete(s.issued, state)
		}
	}
}

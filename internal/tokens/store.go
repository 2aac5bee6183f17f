// Package tokens issues and validates the short-lived access tokens that
// scope a participant's phone session to one signage instance.
package tokens

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// tokenBytes is the random length of a token; hex-encoded to 48 chars.
const tokenBytes = 24

// record is one issued token. Records are never mutated after insertion.
type record struct {
	signageID string
	issuedAt  time.Time
	expiresAt time.Time
}

// Store is the process-local token store. Tokens are consumed read-only on
// every validate/relay/submit call and expire naturally; an opportunistic
// sweep on issue keeps the map bounded.
type Store struct {
	mu     sync.RWMutex
	tokens map[string]record
	ttl    time.Duration
	now    func() time.Time
}

// NewStore creates a token store with the given TTL.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		tokens: make(map[string]record),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue generates a cryptographically unpredictable token bound to signageID.
func (s *Store) Issue(signageID string) (token string, expiresAt time.Time, err error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, fmt.Errorf("generate token: %w", err)
	}
	token = hex.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for t, r := range s.tokens {
		if now.After(r.expiresAt) {
			delete(s.tokens, t)
		}
	}
	expiresAt = now.Add(s.ttl)
	s.tokens[token] = record{signageID: signageID, issuedAt: now, expiresAt: expiresAt}
	return token, expiresAt, nil
}

// Validate reports whether token exists, is unexpired, and was issued for
// signageID. Read-only: a token may be validated any number of times within
// its window (initial validate, relay calls, final submit).
func (s *Store) Validate(token, signageID string) bool {
	if token == "" || signageID == "" {
		return false
	}
	s.mu.RLock()
	r, ok := s.tokens[token]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return !s.now().After(r.expiresAt) && r.signageID == signageID
}

// TTL returns the configured token lifetime.
func (s *Store) TTL() time.Duration { return s.ttl }

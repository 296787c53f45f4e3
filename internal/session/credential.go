package session

import (
	"strings"
	"sync"

	"github.com/yndnr/ecoply-go/internal/core/domain"
)

// TokenSource reads the current bearer token.
//
// ok is false when no token is stored. A non-nil error means the backing
// storage could not be read; callers must not treat that as "absent".
type TokenSource interface {
	Get() (token string, ok bool, err error)
}

// CredentialStore is durable single-key storage for the bearer token.
//
// Set and Clear are observable by any reader on its next Get; there is no
// change notification. Clear on an empty store is a no-op.
type CredentialStore interface {
	TokenSource
	Set(token string) error
	Clear() error
}

// ValidateToken rejects tokens no store accepts: blank tokens and tokens
// with line breaks, which cannot travel in an Authorization header.
// Any other token is stored and returned byte for byte.
func ValidateToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return domain.ErrInvalidArgument.WithDetails("token must not be empty or blank")
	}
	if strings.ContainsAny(token, "\r\n") {
		return domain.ErrInvalidArgument.WithDetails("token must not contain line breaks")
	}
	return nil
}

// MemoryStore is a CredentialStore that does not survive the process.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the stored token.
func (s *MemoryStore) Get() (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != "", nil
}

// Set stores token, replacing any previous one.
func (s *MemoryStore) Set(token string) error {
	if err := ValidateToken(token); err != nil {
		return err
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Clear removes the stored token.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

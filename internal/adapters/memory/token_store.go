// Package memory provides in-process adapters used when no Redis is configured.
package memory

import (
	"context"
	"sync"

	"github.com/target/dash-console/internal/ports"
)

var _ ports.TokenStore = (*TokenStore)(nil)

// TokenStore keeps the access token in process memory.
type TokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewTokenStore returns a store, optionally seeded with a token.
func NewTokenStore(seed string) *TokenStore {
	return &TokenStore{token: seed}
}

func (s *TokenStore) Load(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *TokenStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *TokenStore) Purge(_ context.Context) error {
	return s.Save(context.Background(), "")
}

// Package redis provides Redis-based adapters for the dash console.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/dash-console/internal/data/cryptoutil"
	"github.com/target/dash-console/internal/ports"
)

var _ ports.TokenStore = (*TokenStore)(nil)

// DefaultTokenKey is the storage key of the access token.
const DefaultTokenKey = "accessToken"

// TokenStore persists the access token in Redis, sealed with an Encryptor.
type TokenStore struct {
	client    redis.UniversalClient
	key       string
	encryptor cryptoutil.Encryptor
	ttl       time.Duration
}

// TokenStoreOptions configure a TokenStore.
type TokenStoreOptions struct {
	// Prefix is prepended to Key, e.g. "dash:".
	Prefix string
	// Key defaults to DefaultTokenKey.
	Key string
	// Encryptor defaults to cryptoutil.NoopEncryptor.
	Encryptor cryptoutil.Encryptor
	// TTL bounds how long a token survives without being re-saved; zero keeps it forever.
	TTL time.Duration
}

// NewTokenStore creates a Redis-based token store.
func NewTokenStore(client redis.UniversalClient, opts TokenStoreOptions) *TokenStore {
	key := opts.Key
	if key == "" {
		key = DefaultTokenKey
	}
	enc := opts.Encryptor
	if enc == nil {
		enc = cryptoutil.NoopEncryptor{}
	}
	return &TokenStore{
		client:    client,
		key:       opts.Prefix + key,
		encryptor: enc,
		ttl:       opts.TTL,
	}
}

// Load returns the stored token, or "" when none is stored.
func (s *TokenStore) Load(ctx context.Context) (string, error) {
	data, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis get: %w", err)
	}

	plain, err := s.encryptor.Decrypt(data)
	if err != nil {
		return "", fmt.Errorf("decrypt stored token: %w", err)
	}
	return string(plain), nil
}

// Save stores token, replacing any previous value. An empty token purges.
func (s *TokenStore) Save(ctx context.Context, token string) error {
	if token == "" {
		return s.Purge(ctx)
	}
	sealed, err := s.encryptor.Encrypt([]byte(token))
	if err != nil {
		return fmt.Errorf("encrypt token: %w", err)
	}
	if err := s.client.Set(ctx, s.key, sealed, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Purge removes the stored token. Purging an empty store is not an error.
func (s *TokenStore) Purge(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const tokenPrefix = "merchant:store:"

// TokenStore is the persistent key/value store for the session token and
// user id. Writes are last-write-wins and keys never expire.
type TokenStore struct {
	client *redis.Client
}

// NewTokenStore creates a TokenStore wrapping the given Redis client.
func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

func (s *TokenStore) Save(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, tokenPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("token store save %s: %w", key, err)
	}
	return nil
}

// Get returns "" when key is absent.
func (s *TokenStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, tokenPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("token store get %s: %w", key, err)
	}
	return v, nil
}

func (s *TokenStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, tokenPrefix+key).Err(); err != nil {
		return fmt.Errorf("token store delete %s: %w", key, err)
	}
	return nil
}

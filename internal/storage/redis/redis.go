// Package redis provides a Redis-backed, session-scoped storage tier. Every key carries a
// TTL, so a forgotten session expires on its own. It suits shared terminals where several
// hosts should see the same short-lived session.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lodgeportal/cli/internal/storage"
)

// Store implements storage.Store on top of a redis client.
type Store struct {
	rdb       redis.UniversalClient
	prefix    string
	ttl       time.Duration
	opTimeout time.Duration
}

var _ storage.Store = (*Store)(nil)

// NewStore returns a Store that namespaces keys with prefix and expires them after ttl.
// A non-positive ttl stores keys without expiry.
func NewStore(rdb redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	return &Store{rdb: rdb, prefix: prefix, ttl: ttl, opTimeout: 3 * time.Second}
}

// Dial connects to addr and verifies the connection with PING.
func Dial(ctx context.Context, addr, prefix string, ttl time.Duration) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return NewStore(rdb, prefix, ttl), nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) key(k string) string {
	return s.prefix + ":" + k
}

func (s *Store) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.opTimeout)
}

func (s *Store) Get(key string) (string, error) {
	ctx, cancel := s.ctx()
	defer cancel()

	v, err := s.rdb.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%s: %w", key, storage.ErrNotFound)
	}
	return v, err
}

func (s *Store) Set(key, value string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	return s.rdb.Set(ctx, s.key(key), value, ttl).Err()
}

func (s *Store) Delete(key string) error {
	ctx, cancel := s.ctx()
	defer cancel()

	return s.rdb.Del(ctx, s.key(key)).Err()
}

package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"lodgeportal/cli/internal/storage"
	"lodgeportal/cli/internal/storage/storagetest"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore(t *testing.T) {
	_, rdb := newTestRedis(t)
	storagetest.RunStoreTests(t, NewStore(rdb, "lodge", time.Hour))
}

func TestRedisStoreNamespacesKeys(t *testing.T) {
	mr, rdb := newTestRedis(t)
	s := NewStore(rdb, "lodge:u42", time.Hour)

	if err := s.Set("refresh_token", "r-1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !mr.Exists("lodge:u42:refresh_token") {
		t.Fatal("expected namespaced key to exist")
	}
}

func TestRedisStoreExpires(t *testing.T) {
	mr, rdb := newTestRedis(t)
	s := NewStore(rdb, "lodge", 30*time.Minute)

	if err := s.Set("refresh_token", "r-1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	mr.FastForward(31 * time.Minute)

	if _, err := s.Get("refresh_token"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected key to expire, got %v", err)
	}
}

func TestDialFailsWithoutServer(t *testing.T) {
	mr, _ := newTestRedis(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := Dial(ctx, addr, "lodge", time.Hour); err == nil {
		t.Fatal("expected Dial to fail against a closed server")
	}
}

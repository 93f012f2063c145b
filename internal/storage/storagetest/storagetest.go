// Package storagetest holds the contract suite shared by the storage tier tests.
package storagetest

import (
	"errors"
	"testing"

	"lodgeportal/cli/internal/storage"
)

// RunStoreTests runs the common contract suite against any Store implementation.
// Backend packages call it from their own tests.
func RunStoreTests(t *testing.T, s storage.Store) {
	t.Helper()

	t.Run("SetAndGet", func(t *testing.T) {
		if err := s.Set("token", "access-1"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		got, err := s.Get("token")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got != "access-1" {
			t.Fatalf("got %q, want %q", got, "access-1")
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		_ = s.Set("refresh_token", "r-1")
		_ = s.Set("refresh_token", "r-2")
		got, err := s.Get("refresh_token")
		if err != nil || got != "r-2" {
			t.Fatalf("got %q, %v; want r-2", got, err)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := s.Get("no-such-key")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected storage.ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		_ = s.Set("to-delete", "x")
		if err := s.Delete("to-delete"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := s.Get("to-delete"); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("expected storage.ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		if err := s.Delete("never-existed"); err != nil {
			t.Fatalf("Delete of missing key returned %v", err)
		}
	})
}

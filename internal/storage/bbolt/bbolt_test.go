package bbolt

import (
	"errors"
	"path/filepath"
	"testing"

	"lodgeportal/cli/internal/storage"
	"lodgeportal/cli/internal/storage/storagetest"
)

func TestBboltStore(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	storagetest.RunStoreTests(t, s)
}

func TestBboltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.Set("refresh_token", "r-1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	got, err := s.Get("refresh_token")
	if err != nil || got != "r-1" {
		t.Fatalf("got %q, %v; want r-1", got, err)
	}
}

func TestOpenRuntimeUsesXDGRuntimeDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)

	s, ephemeral, err := OpenRuntime()
	if err != nil {
		t.Fatalf("OpenRuntime failed: %v", err)
	}
	defer s.Close()

	if !ephemeral {
		t.Fatal("expected runtime dir to be reported as ephemeral")
	}
	if _, err := s.Get("token"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected empty store, got %v", err)
	}
}

// Package bbolt provides a BBolt-backed storage tier. Placed under XDG_RUNTIME_DIR it
// acts as session-scoped storage: the file disappears when the login session ends.
package bbolt

import (
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"lodgeportal/cli/internal/storage"
	"lodgeportal/cli/internal/xdg"
)

// FileName is the database file created inside the runtime directory.
const FileName = "session.db"

var bucketName = []byte("session")

// Store implements storage.Store backed by a BBolt database.
type Store struct {
	db *bbolt.DB
}

var _ storage.Store = (*Store)(nil)

// NewStore returns a Store backed by the given BBolt database.
func NewStore(db *bbolt.DB) (*Store, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating session bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Open opens (creating if needed) a BBolt database at path with 0600 permissions.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	s, err := NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// OpenRuntime opens the session database in the XDG runtime directory. ephemeral is false
// when XDG_RUNTIME_DIR is unset and the state directory had to be used instead.
func OpenRuntime() (s *Store, ephemeral bool, err error) {
	dir, ephemeral, err := xdg.RuntimeDir()
	if err != nil {
		return nil, false, err
	}
	s, err = Open(filepath.Join(dir, FileName))
	return s, ephemeral, err
}

// Close closes the underlying BBolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(key string) (string, error) {
	var out string
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketName).Get([]byte(key))
		if data == nil {
			return fmt.Errorf("%s: %w", key, storage.ErrNotFound)
		}
		out = string(data)
		return nil
	})
	return out, err
}

func (s *Store) Set(key, value string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), []byte(value))
	})
}

func (s *Store) Delete(key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})
}

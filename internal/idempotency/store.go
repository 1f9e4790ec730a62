// Package idempotency maps client-supplied idempotency keys to the checkout
// session they created, so replayed create requests return the original
// session instead of creating a duplicate.
package idempotency

import (
	"errors"
	"time"

	bolt "github.com/boltdb/bolt"
)

const bucketName = "idempotency-keys"

// ErrKeyNotFound is returned when no session is recorded for a key.
var ErrKeyNotFound = errors.New("idempotency key not found")

// Store persists key → session id mappings in an embedded BoltDB file, so
// replays survive a restart without an external database.
type Store struct {
	db *bolt.DB
}

// New opens (or creates) the database at the given path and ensures the
// bucket exists.
func New(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the session id recorded for the key, or ErrKeyNotFound.
func (s *Store) Get(key string) (string, error) {
	var sessionID string
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketName)).Get([]byte(key))
		if v == nil {
			return ErrKeyNotFound
		}
		sessionID = string(v)
		return nil
	})
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

// Put records the session id for a key. If the key is already present the
// stored id is returned unchanged and no write is performed, which makes
// concurrent replays of the same create request safe.
func (s *Store) Put(key, sessionID string) (string, error) {
	stored := sessionID
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if v := b.Get([]byte(key)); v != nil {
			stored = string(v)
			return nil
		}
		return b.Put([]byte(key), []byte(sessionID))
	})
	if err != nil {
		return "", err
	}
	return stored, nil
}

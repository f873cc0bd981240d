// Package bolt implements the SecureStore port on a single bbolt file.
package bolt

import (
	"context"
	"fmt"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/ericfisherdev/passkeep/internal/adapter/driven/sealing"
	"github.com/ericfisherdev/passkeep/internal/domain/port/driven"
)

var (
	itemsBucket = []byte("items")
	metaBucket  = []byte("meta")
	saltKey     = []byte("kdf_salt")
)

// Compile-time interface satisfaction checks.
var (
	_ driven.SecureStore = (*Store)(nil)
	_ driven.Transactor  = (*Store)(nil)
)

// DB wraps an open bbolt database with the buckets passkeep needs.
type DB struct {
	bolt *bbolt.DB
}

// Open opens or creates the bbolt file at path. bbolt holds an exclusive
// file lock, so a second process waits up to one second and then fails.
func Open(path string) (*DB, error) {
	b, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db %q: %w", path, err)
	}

	err = b.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{itemsBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = b.Close()
		return nil, err
	}

	return &DB{bolt: b}, nil
}

// Close releases the file lock.
func (db *DB) Close() error {
	return db.bolt.Close()
}

// LoadOrCreateSalt returns the passphrase salt kept in the meta bucket,
// generating one on first use.
func (db *DB) LoadOrCreateSalt() ([]byte, error) {
	var salt []byte
	err := db.bolt.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(metaBucket)
		if v := meta.Get(saltKey); v != nil {
			salt = append([]byte(nil), v...)
			return nil
		}

		fresh, err := sealing.NewSalt()
		if err != nil {
			return err
		}
		salt = fresh
		return meta.Put(saltKey, fresh)
	})
	if err != nil {
		return nil, fmt.Errorf("load key salt: %w", err)
	}
	return salt, nil
}

// Store is the bbolt implementation of the SecureStore port. Values are
// sealed before they are written.
type Store struct {
	db     *DB
	sealer *sealing.Sealer
}

// NewStore creates a Store over db.
func NewStore(db *DB, sealer *sealing.Sealer) *Store {
	return &Store{db: db, sealer: sealer}
}

// Get returns the plaintext value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var (
		value string
		found bool
	)
	err := s.db.bolt.View(func(tx *bbolt.Tx) error {
		var err error
		value, found, err = bucketStore{b: tx.Bucket(itemsBucket), sealer: s.sealer}.get(key)
		return err
	})
	return value, found, err
}

// Set stores or replaces the value under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.Update(ctx, func(tx driven.SecureStore) error {
		return tx.Set(ctx, key, value)
	})
}

// Delete removes key. No-op if the key does not exist.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.Update(ctx, func(tx driven.SecureStore) error {
		return tx.Delete(ctx, key)
	})
}

// Update runs fn inside one bbolt read-write transaction. bbolt rolls the
// transaction back when fn returns an error.
func (s *Store) Update(ctx context.Context, fn func(tx driven.SecureStore) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.bolt.Update(func(tx *bbolt.Tx) error {
		return fn(bucketStore{b: tx.Bucket(itemsBucket), sealer: s.sealer})
	})
}

// bucketStore is the SecureStore view of the items bucket inside one
// transaction.
type bucketStore struct {
	b      *bbolt.Bucket
	sealer *sealing.Sealer
}

func (bs bucketStore) Get(_ context.Context, key string) (string, bool, error) {
	return bs.get(key)
}

func (bs bucketStore) Set(_ context.Context, key, value string) error {
	sealed, err := bs.sealer.Seal(value)
	if err != nil {
		return err
	}
	if err := bs.b.Put([]byte(key), []byte(sealed)); err != nil {
		return fmt.Errorf("set item %q: %w", key, err)
	}
	return nil
}

func (bs bucketStore) Delete(_ context.Context, key string) error {
	if !bs.sealer.Enabled() {
		return driven.ErrEncryptionKeyNotSet
	}
	if err := bs.b.Delete([]byte(key)); err != nil {
		return fmt.Errorf("delete item %q: %w", key, err)
	}
	return nil
}

func (bs bucketStore) get(key string) (string, bool, error) {
	if !bs.sealer.Enabled() {
		return "", false, driven.ErrEncryptionKeyNotSet
	}

	// The returned slice is only valid for the life of the transaction;
	// Open copies it into a new string.
	raw := bs.b.Get([]byte(key))
	if raw == nil {
		return "", false, nil
	}

	plaintext, err := bs.sealer.Open(string(raw))
	if err != nil {
		return "", false, fmt.Errorf("decrypt item %q: %w", key, err)
	}
	return plaintext, true, nil
}

// Package keyring implements the SecureStore port on the operating system
// keyring via 99designs/keyring. The keyring does its own encryption, so
// values are stored as given.
package keyring

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	kr "github.com/99designs/keyring"

	"github.com/ericfisherdev/passkeep/internal/domain/port/driven"
)

// Compile-time interface satisfaction check. The keyring offers no
// transactions, so Store deliberately does not implement driven.Transactor.
var _ driven.SecureStore = (*Store)(nil)

// Config selects and configures the keyring backend.
type Config struct {
	ServiceName string
	// Backends restricts the backends tried, e.g. "keychain", "secret-service",
	// "wincred", "file". Empty means every backend available on the platform.
	Backends []string
	// FileDir is where the encrypted-file backend keeps its items.
	FileDir string
	// Passphrase unlocks the encrypted-file backend without prompting.
	Passphrase string
}

// Store is the keyring implementation of the SecureStore port.
type Store struct {
	ring    kr.Keyring
	service string
}

// Open opens the OS keyring. If it fails the error is returned so callers
// can fall back to another backend.
func Open(cfg Config) (*Store, error) {
	krCfg := kr.Config{
		ServiceName: cfg.ServiceName,
		FileDir:     cfg.FileDir,
	}
	for _, b := range cfg.Backends {
		krCfg.AllowedBackends = append(krCfg.AllowedBackends, kr.BackendType(b))
	}
	if cfg.Passphrase != "" {
		krCfg.FilePasswordFunc = kr.FixedStringPrompt(cfg.Passphrase)
	}

	ring, err := kr.Open(krCfg)
	if err != nil {
		return nil, fmt.Errorf("open keyring %q: %w", cfg.ServiceName, err)
	}
	return &Store{ring: ring, service: cfg.ServiceName}, nil
}

// NewMemoryStore returns a Store over an in-process array keyring. Nothing
// survives the process.
func NewMemoryStore() *Store {
	return New(kr.NewArrayKeyring(nil), "memory")
}

// New wraps an already opened keyring.
func New(ring kr.Keyring, service string) *Store {
	return &Store{ring: ring, service: service}
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	item, err := s.ring.Get(key)
	if errors.Is(err, kr.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get item %q: %w", key, err)
	}
	return string(item.Data), true, nil
}

// Set stores or replaces the value under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.ring.Set(kr.Item{
		Key:   key,
		Data:  []byte(value),
		Label: s.service + ": " + key,
	})
	if err != nil {
		return fmt.Errorf("set item %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Backends disagree on how a missing key is reported,
// so both forms are treated as success.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.ring.Remove(key)
	if err == nil || errors.Is(err, kr.ErrKeyNotFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("delete item %q: %w", key, err)
}

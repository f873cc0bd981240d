package driven

import (
	"context"
	"errors"
)

// ErrEncryptionKeyNotSet is returned by sealing SecureStore adapters when
// neither PASSKEEP_SECRET_KEY nor PASSKEEP_PASSPHRASE has been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set PASSKEEP_SECRET_KEY or PASSKEEP_PASSPHRASE")

// SecureStore defines the driven port for the on-device encrypted key-value
// primitive. Adapters own encryption; values cross this boundary as plaintext.
type SecureStore interface {
	// Get returns the value stored under key. found is false when the key
	// has never been set or has been deleted.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores or replaces the value under key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Transactor is implemented by SecureStore adapters that can apply several
// writes atomically. fn receives a SecureStore bound to the transaction; if
// fn returns an error none of its writes are applied.
type Transactor interface {
	Update(ctx context.Context, fn func(tx SecureStore) error) error
}

package application

import (
	"errors"
	"fmt"

	"github.com/ericfisherdev/passkeep/internal/domain/model"
)

// ErrStorageUnavailable matches any failure of the underlying secure store.
// Use errors.Is against errors returned by CredentialService.
var ErrStorageUnavailable = errors.New("secure storage unavailable")

// ErrReservedWebsite is returned when a caller uses the index key as a
// website identifier.
var ErrReservedWebsite = fmt.Errorf("website %q is reserved", model.IndexKey)

// StoreError records a failed secure store call and the key it touched.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is makes every StoreError match ErrStorageUnavailable.
func (e *StoreError) Is(target error) bool {
	return target == ErrStorageUnavailable
}

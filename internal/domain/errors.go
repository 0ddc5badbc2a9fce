package domain

import (
	"errors"
	"fmt"
)

// StorageError marks a durable-store failure. It is the only error class
// that propagates out of registry write paths; cache and publish failures
// degrade silently.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err originated in the durable store.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

var (
	ErrServiceNotFound = errors.New("service not found")
	ErrFlagNotFound    = errors.New("feature flag not found")
	ErrFlagExists      = errors.New("feature flag already exists")
	ErrInvalidRequest  = errors.New("invalid request")
)

var (
	ErrTokenExpired          = errors.New("token has expired")
	ErrTokenNotYetValid      = errors.New("token is not yet valid")
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenInvalidSignature = errors.New("token has invalid signature")
	ErrTokenInvalidSubject   = errors.New("token has invalid subject")
	ErrTokenInvalidIssuer    = errors.New("token has invalid issuer")
	ErrTokenIssuerNotAllowed = errors.New("token issuer not allowed")
)

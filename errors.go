// errors.go
package typedprefs

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input parameters")
	ErrInvalidKey            = errors.New("invalid preference key")
	ErrDuplicateKey          = errors.New("duplicate preference key")
	ErrInvalidType           = errors.New("invalid preference type")
	ErrInvalidValue          = errors.New("invalid preference value")
	ErrNotFound              = errors.New("preference not found")
	ErrPreferenceNotDefined  = errors.New("preference not defined")
	ErrNotInitialized        = errors.New("registry not initialized")
	ErrAlreadyInitialized    = errors.New("registry already initialized")
	ErrResolution            = errors.New("default value resolution failed")
	ErrResourceNotFound      = errors.New("resource not found")
	ErrTypeMismatch          = errors.New("resource type mismatch")
	ErrValidation            = errors.New("preference validation failed")
	ErrStore                 = errors.New("preference store failure")
	ErrSerialization         = errors.New("preference serialization failed")
	ErrStorageUnavailable    = errors.New("storage backend unavailable")
	ErrCacheUnavailable      = errors.New("cache backend unavailable")
	ErrEncryptionUnavailable = errors.New("encryption not configured")
)

// ResolutionError reports a resource-backed default whose id the resolver does not know.
type ResolutionError struct {
	Key       string
	MissingID int
	Err       error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resolve default for %q: resource 0x%x: %v", e.Key, e.MissingID, e.Err)
	}
	return fmt.Sprintf("resolve default for %q: resource 0x%x not found", e.Key, e.MissingID)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

func (e *ResolutionError) Is(target error) bool { return target == ErrResolution }

// TypeMismatchError reports a resolved resource that cannot be coerced to the declared type.
type TypeMismatchError struct {
	Key      string
	Expected ValueType
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("preference %q: expected %s, resource holds %s", e.Key, e.Expected, e.Actual)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

// ValidationError reports a value rejected before it reached the store.
type ValidationError struct {
	Key    string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("preference %q: invalid value %v: %s", e.Key, e.Value, e.Reason)
}

// Is matches both ErrValidation and ErrInvalidValue.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation || target == ErrInvalidValue
}

// StoreError wraps a failure returned by the bound Storage.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStore }

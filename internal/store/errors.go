package store

import (
	"errors"
	"fmt"
)

// StorageError represents a typed persistence failure.
//
// Storage errors include:
//   - Corrupt store: the backing file exists but cannot be read as a
//     database. Fatal for that store only; other stores stay usable.
//   - Duplicate session: create on an id that already exists.
//   - Coercion failure: a stored value could not be decoded into its
//     typed record (bad JSON payload, malformed number).
//
// StorageError includes structured fields for diagnostics.
type StorageError struct {
	// Code identifies the error category.
	Code StorageErrorCode

	// Message is a human-readable description.
	Message string

	// Store names the affected domain store (weapons, user_data, ...).
	Store string

	// Key identifies the affected row, when known.
	Key string

	// Err is the underlying cause, if any.
	Err error
}

// StorageErrorCode categorizes storage errors.
type StorageErrorCode string

const (
	// CodeCorrupt indicates the backing file is unreadable as a database.
	CodeCorrupt StorageErrorCode = "STORAGE_CORRUPT"

	// CodeDuplicateSession indicates a session id already exists.
	CodeDuplicateSession StorageErrorCode = "DUPLICATE_SESSION"

	// CodeCoercion indicates a stored value failed to decode.
	CodeCoercion StorageErrorCode = "VALUE_COERCION"
)

// Error implements the error interface.
func (e *StorageError) Error() string {
	switch {
	case e.Store != "" && e.Key != "":
		return fmt.Sprintf("%s: %s (store=%s, key=%s)", e.Code, e.Message, e.Store, e.Key)
	case e.Store != "":
		return fmt.Sprintf("%s: %s (store=%s)", e.Code, e.Message, e.Store)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsCorrupt returns true if the error is a corrupt-store error.
// Uses errors.As to handle wrapped errors.
func IsCorrupt(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Code == CodeCorrupt
}

// IsDuplicateSession returns true if the error is a duplicate-session error.
func IsDuplicateSession(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Code == CodeDuplicateSession
}

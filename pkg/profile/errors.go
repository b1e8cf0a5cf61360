package profile

import (
	"errors"
	"fmt"
)

// Sentinel errors for profile store operations.
var (
	// ErrInvalidCategory indicates an unrecognized profile category.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrInvalidName indicates a name that sanitizes to nothing.
	ErrInvalidName = errors.New("invalid profile name")

	// ErrInvalidDocument indicates an upload that is not a valid profile
	// document (not JSON, or not a JSON object).
	ErrInvalidDocument = errors.New("invalid profile document")

	// ErrNotFound indicates the referenced profile does not exist.
	ErrNotFound = errors.New("profile not found")

	// ErrConflict indicates the target name is already taken.
	ErrConflict = errors.New("profile already exists")
)

// StoreError wraps store failures with operation context.
type StoreError struct {
	// Op is the operation that failed (e.g., "Create", "Rename").
	Op string

	// Category and Name address the profile, if applicable.
	Category Category
	Name     string

	// Err is the underlying error.
	Err error
}

func (e *StoreError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Category, e.Name, e.Err)
	}
	if e.Category != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Category, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error indicates a missing profile.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict returns true if the error indicates a name collision.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsInvalidDocument returns true if the error indicates an unparseable upload.
func IsInvalidDocument(err error) bool {
	return errors.Is(err, ErrInvalidDocument)
}

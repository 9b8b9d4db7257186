package errs

import "errors"

// Error categories. Every domain error is marked with exactly one of these so
// callers can classify failures with Is without knowing the specific error.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidState    = errors.New("invalid state")
	ErrConflict        = errors.New("conflict")
	ErrPolicyViolation = errors.New("policy violation")
	ErrValidation      = errors.New("validation failed")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)

// Category creates a sentinel error that also matches the given category.
func Category(msg string, category error) error {
	return Mark(New(msg), category)
}

// IsExpected reports whether err belongs to one of the typed failure categories
// rather than an infrastructure fault.
func IsExpected(err error) bool {
	return Is(err, ErrNotFound) ||
		Is(err, ErrInvalidState) ||
		Is(err, ErrConflict) ||
		Is(err, ErrPolicyViolation) ||
		Is(err, ErrValidation)
}

package domain

import (
	"errors"
)

var (
	// ErrMalformedInput signals an unparseable or structurally invalid table.
	ErrMalformedInput = errors.New("malformed input")
	// ErrEncoding signals an unknown charset or invalid byte sequence.
	ErrEncoding = errors.New("invalid text encoding")
	// ErrUnknownColumn signals a column (or value) index outside the table.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrInvalidWeight signals a negative, non-finite or all-zero weight set.
	ErrInvalidWeight = errors.New("invalid weight")
	// ErrMissingCategory signals that a strategy needs categories that were not supplied.
	ErrMissingCategory = errors.New("missing category")
	// ErrDuplicateCategory signals the same column requested twice as a category.
	ErrDuplicateCategory = errors.New("duplicate category")
	// ErrInvalidTeamCount signals a team count outside 1..rows.
	ErrInvalidTeamCount = errors.New("invalid team count")
	// ErrInvalidTrialBudget signals a non-positive or oversized search budget.
	ErrInvalidTrialBudget = errors.New("invalid trial budget")
	// ErrUnknownStrategy signals an unsupported generation strategy.
	ErrUnknownStrategy = errors.New("unknown strategy")

	// ErrTableNotFound signals a missing or expired uploaded table.
	ErrTableNotFound = errors.New("table not found")
)

// KeyPrefix namespaces every key the service writes to the store.
const KeyPrefix = "teammaker:"

var callerErrors = []error{
	ErrMalformedInput, ErrEncoding, ErrUnknownColumn, ErrInvalidWeight,
	ErrMissingCategory, ErrDuplicateCategory, ErrInvalidTeamCount,
	ErrInvalidTrialBudget, ErrUnknownStrategy, ErrTableNotFound,
}

// IsCallerError reports whether err wraps one of the sentinels above,
// i.e. a precondition the caller violated rather than an internal fault.
func IsCallerError(err error) bool {
	for _, target := range callerErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

package domain

import "errors"

// Error taxonomy shared by ingestion, matching and the workflow controller.
// Row-level parse failures are counted, never returned.
var (
	// ErrStructuralInput marks an empty file or an unreadable workbook
	ErrStructuralInput = errors.New("structural input error")

	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized marks a missing or invalid session
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden marks access to another tenant's records
	ErrForbidden = errors.New("forbidden")

	// ErrStateConflict marks a transition that the current state forbids,
	// such as confirming a rejected match or linking a closed account
	ErrStateConflict = errors.New("state conflict")

	ErrNotFound = errors.New("not found")
)

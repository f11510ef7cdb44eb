package vip

import "errors"

// Sentinel errors for the monitoring repositories. Handlers map these to
// HTTP statuses with errors.Is.
var (
	// ErrNotFound means the requested VIP, threat, or campaign does not
	// exist for the given account.
	ErrNotFound = errors.New("record not found")

	// ErrValidation marks a rejected create or update payload.
	ErrValidation = errors.New("validation failed")
)

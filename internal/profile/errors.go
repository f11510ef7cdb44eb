package profile

import "errors"

// Domain errors for the profile package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, profile.ErrValidation) {
//	    // handle form validation failure
//	}
var (
	// ErrValidation is returned when a registration field is empty or malformed.
	ErrValidation = errors.New("profile: validation failed")

	// ErrInvalidCredentials is returned when a login username/password pair
	// does not match the stored profile.
	ErrInvalidCredentials = errors.New("profile: invalid credentials")

	// ErrNoProfile is returned when an operation requires a registered
	// profile and none exists.
	ErrNoProfile = errors.New("profile: no profile registered")

	// ErrNotEnrolled is returned when authentication is requested before
	// enrollment is complete.
	ErrNotEnrolled = errors.New("profile: enrollment not complete")
)

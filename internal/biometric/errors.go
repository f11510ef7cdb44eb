package biometric

import "errors"

// Domain errors for the biometric package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, biometric.ErrInvalidModality) {
//	    // handle unknown modality
//	}
var (
	// ErrInvalidModality is returned when a modality value is not recognised.
	ErrInvalidModality = errors.New("biometric: invalid modality")

	// ErrInvalidSample is returned when a sample payload fails validation.
	ErrInvalidSample = errors.New("biometric: invalid sample")
)

package capture

import "errors"

// Domain errors for the capture package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, capture.ErrPermissionDenied) {
//	    // surface an inline retry prompt
//	}
var (
	// ErrPermissionDenied is returned when camera or microphone access is
	// refused. Recoverable by retrying the step.
	ErrPermissionDenied = errors.New("capture: device permission denied")

	// ErrNoFaceDetected is returned when the face extractor finds no face
	// in the captured frame.
	ErrNoFaceDetected = errors.New("capture: no face detected")

	// ErrRecordingTooShort is returned when a voice recording ends before
	// the minimum duration.
	ErrRecordingTooShort = errors.New("capture: recording too short")

	// ErrUnknownGesture is returned when the requested target gesture is
	// not in the selectable set.
	ErrUnknownGesture = errors.New("capture: unknown gesture")
)

package capture

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/biofusionhq/biofusion-core/internal/biometric"
)

// gestureLandmarkCount matches the hand-landmark model's 21 points.
const gestureLandmarkCount = 21

// GestureAdapter observes the camera for a fixed hold window and emits a
// landmark payload tagged with the user's chosen target gesture.
//
// No image-based classification occurs: the label comes from the user, and
// verification later just string-compares it.
type GestureAdapter struct {
	camera MediaDevice
	hold   time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGestureAdapter creates a gesture capture adapter.
func NewGestureAdapter(camera MediaDevice, hold time.Duration, src rand.Source) *GestureAdapter {
	return &GestureAdapter{
		camera: camera,
		hold:   hold,
		rng:    rand.New(src), //nolint:gosec // fabricated landmarks, not security material
	}
}

// Capture validates the chosen label, acquires the camera for the hold
// window, and emits the landmark payload.
//
// The camera is released on every path. Cancelling mid-hold produces no
// sample.
func (a *GestureAdapter) Capture(ctx context.Context, label string) (*biometric.Sample, error) {
	if !biometric.IsValidGestureLabel(label) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGesture, label)
	}

	stream, err := a.camera.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := wait(ctx, a.hold); err != nil {
		return nil, err
	}

	return &biometric.Sample{
		Modality: biometric.ModalityGesture,
		Gesture: &biometric.GestureSample{
			Landmarks: a.landmarks(gestureLandmarkCount),
			Label:     label,
		},
		CapturedAt: time.Now().UTC(),
	}, nil
}

func (a *GestureAdapter) landmarks(n int) [][2]float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	points := make([][2]float64, n)
	for i := range points {
		points[i] = [2]float64{a.rng.Float64(), a.rng.Float64()}
	}
	return points
}

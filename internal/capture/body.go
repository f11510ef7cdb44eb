package capture

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/biofusionhq/biofusion-core/internal/biometric"
)

// bodyKeypointCount matches the pose model's 17 keypoints.
const bodyKeypointCount = 17

// BodyAdapter cycles through the fixed pose sequence, holding each pose for
// a fixed window and recording it as detected. Detection is time-based, not
// vision-based: completing a pose's window marks it observed.
type BodyAdapter struct {
	camera   MediaDevice
	poseHold time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewBodyAdapter creates a body pattern capture adapter.
func NewBodyAdapter(camera MediaDevice, poseHold time.Duration, src rand.Source) *BodyAdapter {
	return &BodyAdapter{
		camera:   camera,
		poseHold: poseHold,
		rng:      rand.New(src), //nolint:gosec // fabricated keypoints, not security material
	}
}

// Capture acquires the camera and walks the pose sequence. Each completed
// window appends its pose label; cancellation mid-sequence releases the
// camera and produces no sample, not even a partial one.
func (a *BodyAdapter) Capture(ctx context.Context) (*biometric.Sample, error) {
	stream, err := a.camera.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var observed []string
	for _, pose := range biometric.PoseSequence {
		if err := wait(ctx, a.poseHold); err != nil {
			return nil, err
		}
		observed = append(observed, pose)
	}

	return &biometric.Sample{
		Modality: biometric.ModalityBody,
		Body: &biometric.BodySample{
			Keypoints: a.keypoints(bodyKeypointCount),
			Poses:     observed,
		},
		CapturedAt: time.Now().UTC(),
	}, nil
}

func (a *BodyAdapter) keypoints(n int) [][2]float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	points := make([][2]float64, n)
	for i := range points {
		points[i] = [2]float64{a.rng.Float64(), a.rng.Float64()}
	}
	return points
}

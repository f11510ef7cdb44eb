package capture

import (
	"context"
	"time"

	"github.com/biofusionhq/biofusion-core/internal/biometric"
)

// FaceAdapter captures one camera frame after a countdown and reduces it to
// a feature descriptor via the extractor.
type FaceAdapter struct {
	camera    MediaDevice
	extractor Extractor
	countdown time.Duration
}

// NewFaceAdapter creates a face capture adapter.
func NewFaceAdapter(camera MediaDevice, extractor Extractor, countdown time.Duration) *FaceAdapter {
	return &FaceAdapter{camera: camera, extractor: extractor, countdown: countdown}
}

// Capture acquires the camera, holds the preview for the countdown window,
// grabs a single frame, and extracts its descriptor.
//
// The camera is released on every path: success, extraction failure, or
// cancellation. Cancelling mid-countdown produces no sample.
func (a *FaceAdapter) Capture(ctx context.Context) (*biometric.Sample, error) {
	stream, err := a.camera.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	// Countdown before capture: an observable timing guarantee, not a
	// correctness requirement.
	if err := wait(ctx, a.countdown); err != nil {
		return nil, err
	}

	descriptor, err := a.extractor.ExtractDescriptor(ctx, Frame{Width: 640, Height: 480})
	if err != nil {
		return nil, err
	}

	return &biometric.Sample{
		Modality:   biometric.ModalityFace,
		Face:       &biometric.FaceSample{Descriptor: descriptor},
		CapturedAt: time.Now().UTC(),
	}, nil
}

// wait blocks for d or until the context is cancelled.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/biofusionhq/biofusion-core/internal/biometric"
)

// mfccCount is the number of cepstral coefficients in a voice descriptor.
const mfccCount = 13

// VoiceDescriptor is the lightweight feature blob derived from a recording.
// The values are simulated approximations, not real signal analysis.
type VoiceDescriptor struct {
	Pitch            float64   `json:"pitch"`             // 80-180 Hz
	Amplitude        float64   `json:"amplitude"`         // 0.2-1.0
	SpectralCentroid float64   `json:"spectral_centroid"` // 1000-3000 Hz
	MFCC             []float64 `json:"mfcc"`              // 13 coefficients in [-1, 1]
}

// VoiceAdapter records from the microphone for a bounded window and derives
// a pattern descriptor.
type VoiceAdapter struct {
	microphone MediaDevice
	maxWindow  time.Duration
	minSeconds float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewVoiceAdapter creates a voice capture adapter. Recordings auto-stop at
// maxWindow; recordings shorter than minSeconds are rejected.
func NewVoiceAdapter(microphone MediaDevice, maxWindow time.Duration, minSeconds float64, src rand.Source) *VoiceAdapter {
	return &VoiceAdapter{
		microphone: microphone,
		maxWindow:  maxWindow,
		minSeconds: minSeconds,
		rng:        rand.New(src), //nolint:gosec // simulated features, not security material
	}
}

// Capture records for the requested duration, capped at the adapter's
// maximum window. A zero or negative duration records the full window.
// Recordings shorter than the minimum are rejected with
// ErrRecordingTooShort before any descriptor is derived.
//
// The microphone is released on every path. Cancelling mid-recording
// produces no sample.
func (a *VoiceAdapter) Capture(ctx context.Context, speakFor time.Duration) (*biometric.Sample, error) {
	recorded := speakFor
	if recorded <= 0 || recorded > a.maxWindow {
		// Auto-stop: the recorder never runs past the window, and an
		// unspecified duration records all of it.
		recorded = a.maxWindow
	}

	stream, err := a.microphone.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := wait(ctx, recorded); err != nil {
		return nil, err
	}

	duration := recorded.Seconds()
	if duration < a.minSeconds {
		return nil, fmt.Errorf("%w: %.1fs recorded, %.1fs required", ErrRecordingTooShort, duration, a.minSeconds)
	}

	pattern, err := a.describe()
	if err != nil {
		return nil, err
	}

	return &biometric.Sample{
		Modality:   biometric.ModalityVoice,
		Voice:      &biometric.VoiceSample{Pattern: pattern, Duration: duration},
		CapturedAt: time.Now().UTC(),
	}, nil
}

// describe fabricates a serialised voice descriptor.
func (a *VoiceAdapter) describe() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	d := VoiceDescriptor{
		Pitch:            a.rng.Float64()*100 + 80,
		Amplitude:        a.rng.Float64()*0.8 + 0.2,
		SpectralCentroid: a.rng.Float64()*2000 + 1000,
		MFCC:             make([]float64, mfccCount),
	}
	for i := range d.MFCC {
		d.MFCC[i] = a.rng.Float64()*2 - 1
	}

	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshalling voice descriptor: %w", err)
	}
	return string(b), nil
}

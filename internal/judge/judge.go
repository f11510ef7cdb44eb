// Package judge implements the verification decision procedure.
//
// The decisions are simulated, reproducing the demo's behaviour faithfully:
// face, voice, and body acceptance is drawn from a uniform random value
// compared against a fixed threshold after a crude data-presence check, and
// only the gesture rule is deterministic (a string comparison of the chosen
// label). No biometric signal comparison of any kind takes place.
//
// A missing stored sample rejects; it never errors. There is no retry limit
// and no lockout.
package judge

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/biofusionhq/biofusion-core/internal/biometric"
)

// Acceptance thresholds. A uniform draw must exceed the threshold, so face
// and voice accept ~70% of the time and body ~80%.
const (
	faceThreshold  = 0.3
	voiceThreshold = 0.3
	bodyThreshold  = 0.2

	// minVoiceSeconds is the minimum recorded duration the voice rule accepts.
	minVoiceSeconds = 2.0
)

// Judge decides verification outcomes. Randomness comes from an injectable
// source so tests can pin the draws.
type Judge struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Judge with a time-seeded random source.
func New() *Judge {
	return NewWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewWithSource creates a Judge drawing from the given source.
func NewWithSource(src rand.Source) *Judge {
	return &Judge{rng: rand.New(src)} //nolint:gosec // simulated outcomes, not security material
}

// Decide applies the modality's acceptance rule to a fresh capture against
// the stored enrollment sample. A nil stored or fresh sample rejects.
func (j *Judge) Decide(_ context.Context, m biometric.Modality, stored, fresh *biometric.Sample) (bool, error) {
	if stored == nil || fresh == nil {
		return false, nil
	}

	switch m {
	case biometric.ModalityFace:
		if stored.Face == nil || fresh.Face == nil || len(fresh.Face.Descriptor) == 0 {
			return false, nil
		}
		return j.draw() > faceThreshold, nil

	case biometric.ModalityVoice:
		if stored.Voice == nil || fresh.Voice == nil {
			return false, nil
		}
		return fresh.Voice.Duration > minVoiceSeconds && j.draw() > voiceThreshold, nil

	case biometric.ModalityGesture:
		if stored.Gesture == nil || fresh.Gesture == nil {
			return false, nil
		}
		// Deterministic: the demo never randomised gestures.
		return fresh.Gesture.Label == stored.Gesture.Label, nil

	case biometric.ModalityBody:
		if stored.Body == nil || fresh.Body == nil {
			return false, nil
		}
		return len(fresh.Body.Poses) > 0 && j.draw() > bodyThreshold, nil
	}

	return false, nil
}

// draw returns a uniform value in [0, 1).
func (j *Judge) draw() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.rng.Float64()
}

package judge

import (
	"context"
	"math/rand"
	"testing"

	"github.com/biofusionhq/biofusion-core/internal/biometric"
)

// fixedSource always yields the same fraction from Float64().
// Float64 uses the top 53 bits of Int63, so value = frac * 2^63.
type fixedSource struct {
	frac float64
}

func (s fixedSource) Int63() int64 { return int64(s.frac * (1 << 63)) }
func (s fixedSource) Seed(int64)   {}

// judgeWithDraw returns a Judge whose next uniform draws are all ~frac.
func judgeWithDraw(frac float64) *Judge {
	return NewWithSource(fixedSource{frac: frac})
}

func faceSample() *biometric.Sample {
	return &biometric.Sample{
		Modality: biometric.ModalityFace,
		Face:     &biometric.FaceSample{Descriptor: make([]float64, biometric.DescriptorLength)},
	}
}

func TestDecide_MissingSamples(t *testing.T) {
	j := judgeWithDraw(0.99)
	ctx := context.Background()

	ok, err := j.Decide(ctx, biometric.ModalityFace, nil, faceSample())
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if ok {
		t.Error("Decide() with nil stored sample should reject")
	}

	ok, err = j.Decide(ctx, biometric.ModalityFace, faceSample(), nil)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if ok {
		t.Error("Decide() with nil fresh sample should reject")
	}
}

func TestDecide_Face(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		draw float64
		want bool
	}{
		{"draw above threshold accepts", 0.9, true},
		{"draw below threshold rejects", 0.1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := judgeWithDraw(tt.draw)
			ok, err := j.Decide(ctx, biometric.ModalityFace, faceSample(), faceSample())
			if err != nil {
				t.Fatalf("Decide() error = %v", err)
			}
			if ok != tt.want {
				t.Errorf("Decide() = %v, want %v", ok, tt.want)
			}
		})
	}

	// Fresh sample without a descriptor always rejects, even on a high draw.
	j := judgeWithDraw(0.9)
	fresh := &biometric.Sample{Modality: biometric.ModalityFace, Face: &biometric.FaceSample{}}
	ok, err := j.Decide(ctx, biometric.ModalityFace, faceSample(), fresh)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if ok {
		t.Error("Decide() should reject a fresh face sample without a descriptor")
	}
}

func TestDecide_Voice(t *testing.T) {
	ctx := context.Background()
	stored := &biometric.Sample{
		Modality: biometric.ModalityVoice,
		Voice:    &biometric.VoiceSample{Pattern: "blob", Duration: 5},
	}

	tests := []struct {
		name     string
		duration float64
		draw     float64
		want     bool
	}{
		{"long recording, high draw", 3.5, 0.9, true},
		{"long recording, low draw", 3.5, 0.1, false},
		{"short recording rejects regardless of draw", 1.9, 0.9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := judgeWithDraw(tt.draw)
			fresh := &biometric.Sample{
				Modality: biometric.ModalityVoice,
				Voice:    &biometric.VoiceSample{Pattern: "blob", Duration: tt.duration},
			}
			ok, err := j.Decide(ctx, biometric.ModalityVoice, stored, fresh)
			if err != nil {
				t.Fatalf("Decide() error = %v", err)
			}
			if ok != tt.want {
				t.Errorf("Decide() = %v, want %v", ok, tt.want)
			}
		})
	}
}

// TestDecide_GestureDeterminism pins the one deterministic rule: matching
// labels always accept, mismatched labels always reject, no randomness.
func TestDecide_GestureDeterminism(t *testing.T) {
	ctx := context.Background()
	stored := &biometric.Sample{
		Modality: biometric.ModalityGesture,
		Gesture:  &biometric.GestureSample{Label: "peace"},
	}

	for _, draw := range []float64{0.01, 0.5, 0.99} {
		j := judgeWithDraw(draw)

		match := &biometric.Sample{Modality: biometric.ModalityGesture, Gesture: &biometric.GestureSample{Label: "peace"}}
		ok, err := j.Decide(ctx, biometric.ModalityGesture, stored, match)
		if err != nil {
			t.Fatalf("Decide() error = %v", err)
		}
		if !ok {
			t.Errorf("draw=%v: matching gesture label should always accept", draw)
		}

		mismatch := &biometric.Sample{Modality: biometric.ModalityGesture, Gesture: &biometric.GestureSample{Label: "fist"}}
		ok, err = j.Decide(ctx, biometric.ModalityGesture, stored, mismatch)
		if err != nil {
			t.Fatalf("Decide() error = %v", err)
		}
		if ok {
			t.Errorf("draw=%v: mismatched gesture label should always reject", draw)
		}
	}
}

func TestDecide_Body(t *testing.T) {
	ctx := context.Background()
	stored := &biometric.Sample{
		Modality: biometric.ModalityBody,
		Body:     &biometric.BodySample{Poses: []string{"Stand naturally"}},
	}

	j := judgeWithDraw(0.9)
	fresh := &biometric.Sample{
		Modality: biometric.ModalityBody,
		Body:     &biometric.BodySample{Poses: []string{"Cross your arms"}},
	}
	ok, err := j.Decide(ctx, biometric.ModalityBody, stored, fresh)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if !ok {
		t.Error("Decide() with detected poses and high draw should accept")
	}

	// No detected poses rejects regardless of draw.
	empty := &biometric.Sample{Modality: biometric.ModalityBody, Body: &biometric.BodySample{}}
	ok, err = j.Decide(ctx, biometric.ModalityBody, stored, empty)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if ok {
		t.Error("Decide() with no detected poses should reject")
	}
}

func TestDecide_UnknownModality(t *testing.T) {
	j := NewWithSource(rand.NewSource(1))
	ok, err := j.Decide(context.Background(), "retina", faceSample(), faceSample())
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if ok {
		t.Error("Decide() with unknown modality should reject")
	}
}

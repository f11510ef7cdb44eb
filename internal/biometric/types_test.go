package biometric

import (
	"errors"
	"testing"
	"time"
)

func TestIsValidModality(t *testing.T) {
	tests := []struct {
		modality Modality
		want     bool
	}{
		{ModalityFace, true},
		{ModalityVoice, true},
		{ModalityGesture, true},
		{ModalityBody, true},
		{"fingerprint", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValidModality(tt.modality); got != tt.want {
			t.Errorf("IsValidModality(%q) = %v, want %v", tt.modality, got, tt.want)
		}
	}
}

func TestSequenceOrder(t *testing.T) {
	want := []Modality{ModalityFace, ModalityVoice, ModalityGesture, ModalityBody}
	if len(Sequence) != len(want) {
		t.Fatalf("Sequence length = %d, want %d", len(Sequence), len(want))
	}
	for i, m := range want {
		if Sequence[i] != m {
			t.Errorf("Sequence[%d] = %q, want %q", i, Sequence[i], m)
		}
	}
}

func TestSampleValidate(t *testing.T) {
	descriptor := make([]float64, DescriptorLength)

	tests := []struct {
		name    string
		sample  Sample
		wantErr error
	}{
		{
			name:   "valid face",
			sample: Sample{Modality: ModalityFace, Face: &FaceSample{Descriptor: descriptor}},
		},
		{
			name:    "face missing payload",
			sample:  Sample{Modality: ModalityFace},
			wantErr: ErrInvalidSample,
		},
		{
			name:    "face wrong descriptor length",
			sample:  Sample{Modality: ModalityFace, Face: &FaceSample{Descriptor: make([]float64, 64)}},
			wantErr: ErrInvalidSample,
		},
		{
			name:   "valid voice",
			sample: Sample{Modality: ModalityVoice, Voice: &VoiceSample{Pattern: "blob", Duration: 3.2}},
		},
		{
			name:    "voice empty pattern",
			sample:  Sample{Modality: ModalityVoice, Voice: &VoiceSample{Duration: 3.2}},
			wantErr: ErrInvalidSample,
		},
		{
			name:   "valid gesture",
			sample: Sample{Modality: ModalityGesture, Gesture: &GestureSample{Label: "peace"}},
		},
		{
			name:    "gesture unknown label",
			sample:  Sample{Modality: ModalityGesture, Gesture: &GestureSample{Label: "wave"}},
			wantErr: ErrInvalidSample,
		},
		{
			name:   "valid body",
			sample: Sample{Modality: ModalityBody, Body: &BodySample{Poses: []string{"Stand naturally"}}},
		},
		{
			name:    "unknown modality",
			sample:  Sample{Modality: "retina"},
			wantErr: ErrInvalidModality,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sample.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSamplePayloadRoundTrip(t *testing.T) {
	in := Sample{
		Modality:   ModalityGesture,
		Gesture:    &GestureSample{Landmarks: [][2]float64{{0.1, 0.2}, {0.3, 0.4}}, Label: "fist"},
		CapturedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	payload, err := in.MarshalPayload()
	if err != nil {
		t.Fatalf("MarshalPayload() error = %v", err)
	}

	out, err := UnmarshalPayload(payload)
	if err != nil {
		t.Fatalf("UnmarshalPayload() error = %v", err)
	}

	if out.Modality != ModalityGesture {
		t.Errorf("Modality = %q, want %q", out.Modality, ModalityGesture)
	}
	if out.Gesture == nil || out.Gesture.Label != "fist" {
		t.Errorf("Gesture payload not preserved: %+v", out.Gesture)
	}
	if !out.CapturedAt.Equal(in.CapturedAt) {
		t.Errorf("CapturedAt = %v, want %v", out.CapturedAt, in.CapturedAt)
	}
}

func TestSampleClone(t *testing.T) {
	orig := Sample{
		Modality:   ModalityGesture,
		Face:       &FaceSample{Descriptor: []float64{0.5, 0.6}},
		Gesture:    &GestureSample{Landmarks: [][2]float64{{0.1, 0.2}}, Label: "fist"},
		Body:       &BodySample{Keypoints: [][2]float64{{0.7, 0.8}}, Poses: []string{"arms_raised"}},
		Voice:      &VoiceSample{Pattern: "v1:abc", Duration: 2.5},
		CapturedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	clone := orig.Clone()
	if clone == &orig {
		t.Fatal("Clone() returned the receiver")
	}
	if clone.Face == orig.Face || clone.Voice == orig.Voice || clone.Gesture == orig.Gesture || clone.Body == orig.Body {
		t.Fatal("Clone() shares payload pointers with the original")
	}

	clone.Face.Descriptor[0] = 9.9
	clone.Voice.Pattern = "v1:mutated"
	clone.Gesture.Landmarks[0] = [2]float64{9, 9}
	clone.Gesture.Label = "wave"
	clone.Body.Keypoints[0] = [2]float64{9, 9}
	clone.Body.Poses[0] = "crouched"

	if orig.Face.Descriptor[0] != 0.5 {
		t.Errorf("Face.Descriptor[0] = %v after mutating clone, want 0.5", orig.Face.Descriptor[0])
	}
	if orig.Voice.Pattern != "v1:abc" {
		t.Errorf("Voice.Pattern = %q after mutating clone, want %q", orig.Voice.Pattern, "v1:abc")
	}
	if orig.Gesture.Landmarks[0] != [2]float64{0.1, 0.2} || orig.Gesture.Label != "fist" {
		t.Errorf("Gesture payload changed after mutating clone: %+v", orig.Gesture)
	}
	if orig.Body.Keypoints[0] != [2]float64{0.7, 0.8} || orig.Body.Poses[0] != "arms_raised" {
		t.Errorf("Body payload changed after mutating clone: %+v", orig.Body)
	}

	var nilSample *Sample
	if nilSample.Clone() != nil {
		t.Error("Clone() of nil sample != nil")
	}
}

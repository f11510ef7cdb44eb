package biometric

import (
	"encoding/json"
	"fmt"
	"time"
)

// Modality identifies one biometric capture category.
type Modality string

const (
	// ModalityFace is a single camera frame reduced to a feature descriptor.
	ModalityFace Modality = "face"

	// ModalityVoice is a bounded microphone recording reduced to a pattern descriptor.
	ModalityVoice Modality = "voice"

	// ModalityGesture is a hand landmark capture tagged with a user-chosen label.
	ModalityGesture Modality = "gesture"

	// ModalityBody is a pose keypoint capture with the list of observed poses.
	ModalityBody Modality = "body"
)

// Sequence is the fixed enrollment order. A later step must not run while an
// earlier step's sample is missing.
var Sequence = []Modality{ModalityFace, ModalityVoice, ModalityGesture, ModalityBody}

// IsValidModality returns true if m is a recognised modality.
func IsValidModality(m Modality) bool {
	switch m {
	case ModalityFace, ModalityVoice, ModalityGesture, ModalityBody:
		return true
	}
	return false
}

// GestureLabels is the fixed set of target gestures a user can choose from.
var GestureLabels = []string{"peace", "thumbs_up", "open_palm", "fist", "ok_sign"}

// IsValidGestureLabel returns true if label is one of the selectable gestures.
func IsValidGestureLabel(label string) bool {
	for _, g := range GestureLabels {
		if g == label {
			return true
		}
	}
	return false
}

// PoseSequence is the fixed ordered list of poses the body adapter cycles
// through, four seconds each.
var PoseSequence = []string{
	"Stand naturally",
	"Raise your right hand",
	"Place hands on hips",
	"Cross your arms",
	"Stand with feet apart",
}

// DescriptorLength is the length of a face feature descriptor.
const DescriptorLength = 128

// FaceSample is the stored payload for the face modality.
type FaceSample struct {
	// Descriptor is the fixed-length feature vector produced by the
	// external extractor. Its contents are opaque to this system.
	Descriptor []float64 `json:"descriptor"`
}

// VoiceSample is the stored payload for the voice modality.
type VoiceSample struct {
	// Pattern is a serialised feature blob (see capture.VoiceDescriptor).
	Pattern string `json:"pattern"`

	// Duration is the recording length in seconds.
	Duration float64 `json:"duration"`
}

// GestureSample is the stored payload for the gesture modality.
type GestureSample struct {
	// Landmarks are 2-D hand landmark points in capture order.
	Landmarks [][2]float64 `json:"landmarks"`

	// Label is the user-chosen target gesture. Verification compares this
	// string, nothing else.
	Label string `json:"label"`
}

// BodySample is the stored payload for the body pattern modality.
type BodySample struct {
	// Keypoints are 2-D body keypoints in capture order.
	Keypoints [][2]float64 `json:"keypoints"`

	// Poses are the pose labels observed during the capture window.
	Poses []string `json:"poses"`
}

// Sample is one captured modality payload stamped with its capture time.
// Exactly one of the payload fields is set, matching the Modality.
type Sample struct {
	Modality   Modality       `json:"modality"`
	Face       *FaceSample    `json:"face,omitempty"`
	Voice      *VoiceSample   `json:"voice,omitempty"`
	Gesture    *GestureSample `json:"gesture,omitempty"`
	Body       *BodySample    `json:"body,omitempty"`
	CapturedAt time.Time      `json:"captured_at"`
}

// Validate checks that the sample's payload matches its modality and carries
// the fields the judge requires.
func (s *Sample) Validate() error {
	switch s.Modality {
	case ModalityFace:
		if s.Face == nil {
			return fmt.Errorf("%w: face payload missing", ErrInvalidSample)
		}
		if len(s.Face.Descriptor) != DescriptorLength {
			return fmt.Errorf("%w: descriptor length %d, want %d", ErrInvalidSample, len(s.Face.Descriptor), DescriptorLength)
		}
	case ModalityVoice:
		if s.Voice == nil {
			return fmt.Errorf("%w: voice payload missing", ErrInvalidSample)
		}
		if s.Voice.Pattern == "" {
			return fmt.Errorf("%w: voice pattern missing", ErrInvalidSample)
		}
	case ModalityGesture:
		if s.Gesture == nil {
			return fmt.Errorf("%w: gesture payload missing", ErrInvalidSample)
		}
		if !IsValidGestureLabel(s.Gesture.Label) {
			return fmt.Errorf("%w: unknown gesture label %q", ErrInvalidSample, s.Gesture.Label)
		}
	case ModalityBody:
		if s.Body == nil {
			return fmt.Errorf("%w: body payload missing", ErrInvalidSample)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidModality, s.Modality)
	}
	return nil
}

// Clone returns an independent copy of the sample. Payload structs and
// their slices are copied too, so mutating the clone never reaches the
// original.
func (s *Sample) Clone() *Sample {
	if s == nil {
		return nil
	}
	c := *s
	if s.Face != nil {
		fc := *s.Face
		fc.Descriptor = append([]float64(nil), s.Face.Descriptor...)
		c.Face = &fc
	}
	if s.Voice != nil {
		vc := *s.Voice
		c.Voice = &vc
	}
	if s.Gesture != nil {
		gc := *s.Gesture
		gc.Landmarks = append([][2]float64(nil), s.Gesture.Landmarks...)
		c.Gesture = &gc
	}
	if s.Body != nil {
		bc := *s.Body
		bc.Keypoints = append([][2]float64(nil), s.Body.Keypoints...)
		bc.Poses = append([]string(nil), s.Body.Poses...)
		c.Body = &bc
	}
	return &c
}

// MarshalPayload serialises the sample payload for storage.
func (s *Sample) MarshalPayload() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshalling %s sample: %w", s.Modality, err)
	}
	return string(b), nil
}

// UnmarshalPayload deserialises a stored sample payload.
func UnmarshalPayload(payload string) (*Sample, error) {
	var s Sample
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return nil, fmt.Errorf("unmarshalling sample: %w", err)
	}
	return &s, nil
}

package capture

import (
	"math/rand"
	"time"

	"github.com/biofusionhq/biofusion-core/internal/infrastructure/config"
)

// Capabilities reports which optional platform services are available.
// Resolved once at station construction and never re-probed; callers gate
// the relevant actions on the flags instead of re-inspecting at runtime.
type Capabilities struct {
	SpeechRecognition bool `json:"speech_recognition"`
	SpeechSynthesis   bool `json:"speech_synthesis"`
}

// Station owns the demo station's capture devices and adapters. Each
// modality has exactly one adapter; a device is exclusively held by the
// step that acquired it for the duration of one capture.
type Station struct {
	camera     *SimulatedDevice
	microphone *SimulatedDevice
	extractor  *SimulatedExtractor

	face    *FaceAdapter
	voice   *VoiceAdapter
	gesture *GestureAdapter
	body    *BodyAdapter

	capabilities Capabilities
}

// NewStation builds a station from capture configuration. The random source
// seeds all fabricated payloads; pass a fixed source in tests.
func NewStation(cfg config.CaptureConfig, src rand.Source) *Station {
	camera := NewSimulatedCamera()
	microphone := NewSimulatedMicrophone()

	rng := rand.New(src) //nolint:gosec // seeds for fabricated payloads only
	extractor := NewSimulatedExtractor(cfg.DescriptorLength, rand.NewSource(rng.Int63()))

	return &Station{
		camera:     camera,
		microphone: microphone,
		extractor:  extractor,
		face:       NewFaceAdapter(camera, extractor, cfg.FaceCountdown()),
		voice:      NewVoiceAdapter(microphone, cfg.VoiceMax(), cfg.VoiceMinSeconds, rand.NewSource(rng.Int63())),
		gesture:    NewGestureAdapter(camera, cfg.GestureHold(), rand.NewSource(rng.Int63())),
		body:       NewBodyAdapter(camera, cfg.PoseHold(), rand.NewSource(rng.Int63())),
		capabilities: Capabilities{
			SpeechRecognition: cfg.SpeechServices,
			SpeechSynthesis:   cfg.SpeechServices,
		},
	}
}

// Face returns the face capture adapter.
func (s *Station) Face() *FaceAdapter { return s.face }

// Voice returns the voice capture adapter.
func (s *Station) Voice() *VoiceAdapter { return s.voice }

// Gesture returns the gesture capture adapter.
func (s *Station) Gesture() *GestureAdapter { return s.gesture }

// Body returns the body pattern capture adapter.
func (s *Station) Body() *BodyAdapter { return s.body }

// Camera exposes the camera device for health reporting and tests.
func (s *Station) Camera() *SimulatedDevice { return s.camera }

// Microphone exposes the microphone device for health reporting and tests.
func (s *Station) Microphone() *SimulatedDevice { return s.microphone }

// Extractor exposes the face extractor for tests.
func (s *Station) Extractor() *SimulatedExtractor { return s.extractor }

// Capabilities returns the platform capabilities detected at startup.
func (s *Station) Capabilities() Capabilities { return s.capabilities }

// NewDefaultStation builds a station with production timings and a
// time-seeded source.
func NewDefaultStation(cfg config.CaptureConfig) *Station {
	return NewStation(cfg, rand.NewSource(time.Now().UnixNano()))
}

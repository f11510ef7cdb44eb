package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/biofusionhq/biofusion-core/internal/audit"
	"github.com/biofusionhq/biofusion-core/internal/biometric"
	"github.com/biofusionhq/biofusion-core/internal/capture"
	"github.com/biofusionhq/biofusion-core/internal/flow"
	"github.com/biofusionhq/biofusion-core/internal/infrastructure/mqtt"
	"github.com/biofusionhq/biofusion-core/internal/profile"
)

// WebSocket channels for capture flow events.
const (
	ChannelSampleAdded         = "enrollment.sample_added"
	ChannelVerificationOutcome = "verification.outcome"
)

// captureRequest carries the per-step capture parameters.
type captureRequest struct {
	// GestureLabel is the target gesture for the gesture step.
	GestureLabel string `json:"gesture_label,omitempty"`

	// SpeakForSeconds simulates how long the user spoke during the voice
	// step. Zero means the full recording window.
	SpeakForSeconds float64 `json:"speak_for_seconds,omitempty"`
}

// captureResponse reports the outcome of a capture step.
type captureResponse struct {
	Step               flow.Step           `json:"step"`
	Mode               profile.SessionMode `json:"mode"`
	Accepted           bool                `json:"accepted"`
	NextStep           flow.Step           `json:"next_step"`
	EnrollmentComplete bool                `json:"enrollment_complete"`
	Authenticated      bool                `json:"authenticated"`
	Sample             *biometric.Sample   `json:"sample,omitempty"`
}

// flowPositionResponse reports where the session currently sits.
type flowPositionResponse struct {
	Mode               profile.SessionMode  `json:"mode"`
	Step               flow.Step            `json:"step"`
	Registered         []biometric.Modality `json:"registered_modalities"`
	EnrollmentComplete bool                 `json:"enrollment_complete"`
	Authenticated      bool                 `json:"authenticated"`
	Capabilities       capture.Capabilities `json:"capabilities"`
}

// handleFlowPosition returns the step the session should be on.
func (s *Server) handleFlowPosition(w http.ResponseWriter, _ *http.Request) {
	step, err := s.flow.Position()
	if err != nil {
		if errors.Is(err, profile.ErrNoProfile) {
			writeNotFound(w, "no profile registered on this station")
			return
		}
		s.logger.Error("flow position failed", "error", err)
		writeInternalError(w, "failed to compute flow position")
		return
	}

	p := s.store.Current()
	writeJSON(w, http.StatusOK, flowPositionResponse{
		Mode:               s.store.Mode(),
		Step:               step,
		Registered:         s.store.RegisteredModalities(),
		EnrollmentComplete: p.EnrollmentComplete,
		Authenticated:      p.IsAuthenticated,
		Capabilities:       s.station.Capabilities(),
	})
}

// handleCaptureStep runs one capture step end to end: gate the step, drive
// the simulated adapter for its full duration, store or verify the sample,
// and advance the flow. The request blocks for the adapter's capture time.
func (s *Server) handleCaptureStep(w http.ResponseWriter, r *http.Request) { //nolint:gocognit,gocyclo // capture pipeline: gate + adapter dispatch + judge + fan-out
	step := flow.Step(chi.URLParam(r, "step"))
	if step == flow.StepComplete {
		writeBadRequest(w, "complete is not a capture step")
		return
	}

	var req captureRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadRequest(w, "invalid JSON body")
			return
		}
	}

	gate, err := s.flow.Gate(step)
	if err != nil {
		switch {
		case errors.Is(err, flow.ErrUnknownStep):
			writeBadRequest(w, err.Error())
		case errors.Is(err, profile.ErrNoProfile):
			writeNotFound(w, "no profile registered on this station")
		default:
			s.logger.Error("flow gate failed", "step", step, "error", err)
			writeInternalError(w, "failed to gate step")
		}
		return
	}
	if gate != step {
		writeStepRedirect(w, string(gate))
		return
	}

	modality := biometric.Modality(step)
	started := time.Now()
	sample, err := s.captureSample(r, modality, req)
	if err != nil {
		s.writeCaptureError(w, modality, err)
		return
	}
	captureSeconds := time.Since(started).Seconds()

	mode := s.store.Mode()
	accepted := true
	if mode == profile.ModeEnrolling {
		if err := s.store.AddSample(r.Context(), modality, sample); err != nil {
			s.logger.Error("sample store failed", "modality", modality, "error", err)
			writeInternalError(w, "failed to store sample")
			return
		}
	} else {
		accepted, err = s.store.VerifySample(r.Context(), modality, sample)
		if err != nil {
			s.logger.Error("verification failed", "modality", modality, "error", err)
			writeInternalError(w, "verification failed")
			return
		}
	}

	next := step
	if accepted {
		next, err = s.flow.Advance(r.Context(), modality)
		if err != nil {
			s.logger.Error("flow advance failed", "modality", modality, "error", err)
			writeInternalError(w, "failed to advance flow")
			return
		}
	}

	p := s.store.Current()
	s.recordOutcome(r, modality, mode, accepted, captureSeconds)

	writeJSON(w, http.StatusOK, captureResponse{
		Step:               step,
		Mode:               mode,
		Accepted:           accepted,
		NextStep:           next,
		EnrollmentComplete: p.EnrollmentComplete,
		Authenticated:      p.IsAuthenticated,
		Sample:             sample,
	})
}

// captureSample dispatches to the adapter for the given modality.
func (s *Server) captureSample(r *http.Request, m biometric.Modality, req captureRequest) (*biometric.Sample, error) {
	ctx := r.Context()
	switch m {
	case biometric.ModalityFace:
		return s.station.Face().Capture(ctx)
	case biometric.ModalityVoice:
		speakFor := time.Duration(req.SpeakForSeconds * float64(time.Second))
		return s.station.Voice().Capture(ctx, speakFor)
	case biometric.ModalityGesture:
		return s.station.Gesture().Capture(ctx, req.GestureLabel)
	case biometric.ModalityBody:
		return s.station.Body().Capture(ctx)
	default:
		return nil, biometric.ErrInvalidModality
	}
}

// writeCaptureError maps adapter errors onto the HTTP envelope. Retryable
// capture failures come back as 422 so the kiosk re-runs the same step.
func (s *Server) writeCaptureError(w http.ResponseWriter, m biometric.Modality, err error) {
	switch {
	case errors.Is(err, capture.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, ErrCodeForbidden, "device permission denied")
	case errors.Is(err, capture.ErrNoFaceDetected),
		errors.Is(err, capture.ErrRecordingTooShort),
		errors.Is(err, capture.ErrUnknownGesture):
		writeValidationError(w, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Client went away mid-capture; the adapter has already released
		// its devices. Nothing useful to write.
	default:
		s.logger.Error("capture failed", "modality", m, "error", err)
		writeInternalError(w, "capture failed")
	}
}

// recordOutcome fans a capture decision out to the audit log, the WebSocket
// hub, the MQTT feed, and InfluxDB. All writes are best-effort.
func (s *Server) recordOutcome(r *http.Request, m biometric.Modality, mode profile.SessionMode, accepted bool, captureSeconds float64) {
	path := audit.PathEnrollment
	channel := ChannelSampleAdded
	if mode == profile.ModeVerifying {
		path = audit.PathVerification
		channel = ChannelVerificationOutcome
	}

	p := s.store.Current()
	profileID := ""
	if p != nil {
		profileID = p.ID
	}

	if s.auditRepo != nil {
		entry := &audit.VerificationLog{
			ProfileID: profileID,
			Modality:  m,
			Path:      path,
			Accepted:  accepted,
			Details: map[string]any{
				"capture_seconds": captureSeconds,
			},
		}
		if err := s.auditRepo.Create(r.Context(), entry); err != nil {
			s.logger.Error("audit log write failed", "modality", m, "error", err)
		}
	}

	event := map[string]any{
		"profile_id": profileID,
		"modality":   m,
		"path":       path,
		"accepted":   accepted,
	}

	if s.hub != nil {
		s.hub.Broadcast(channel, event)
	}

	if s.mqtt != nil && s.mqtt.IsConnected() {
		topic := mqtt.Topics{}.CaptureEvent(string(m), profileID)
		if mode == profile.ModeVerifying {
			topic = mqtt.Topics{}.VerificationOutcome(string(m), profileID)
		}
		if payload, err := json.Marshal(event); err == nil {
			if err := s.mqtt.Publish(topic, payload, 0, false); err != nil {
				s.logger.Debug("capture event publish failed", "topic", topic, "error", err)
			}
		}

		// Enrolment progress rides its own topic so kiosk-side displays
		// can track registration without parsing capture events.
		if mode == profile.ModeEnrolling && accepted && p != nil {
			status := map[string]any{
				"profile_id":            profileID,
				"registered_modalities": p.RegisteredModalities(),
				"enrollment_complete":   p.EnrollmentComplete,
			}
			topic := mqtt.Topics{}.EnrollmentStatus(profileID)
			if payload, err := json.Marshal(status); err == nil {
				if err := s.mqtt.Publish(topic, payload, 0, false); err != nil {
					s.logger.Debug("enrollment status publish failed", "topic", topic, "error", err)
				}
			}
		}
	}

	if s.influx != nil {
		s.influx.WriteCaptureMetric(string(m), captureSeconds)
		s.influx.WriteVerificationOutcome(string(m), string(path), accepted)
	}
}

// handleCapabilities reports the capabilities detected at station startup.
func (s *Server) handleCapabilities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.station.Capabilities())
}

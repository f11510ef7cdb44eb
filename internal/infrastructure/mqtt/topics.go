package mqtt

import "fmt"

// Topic prefixes for the BioFusion event feed.
//
// All event topics use the flat scheme: biofusion/{category}/{kind}/{id}.
// Retained messages are reserved for the system status topic; capture and
// threat events are fire-and-forget.
const (
	// TopicPrefix is the base for all BioFusion topics.
	TopicPrefix = "biofusion"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "biofusion/system"
)

// Topics provides builders for BioFusion MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	t := topics.CaptureEvent("face", "prf-1a2b3c4d")
//	// Returns: "biofusion/capture/face/prf-1a2b3c4d"
type Topics struct{}

// CaptureEvent returns the topic for completed capture samples.
//
// Example: biofusion/capture/face/prf-1a2b3c4d
func (Topics) CaptureEvent(modality, profileID string) string {
	return fmt.Sprintf("%s/capture/%s/%s", TopicPrefix, modality, profileID)
}

// VerificationOutcome returns the topic for judge decisions.
//
// Example: biofusion/verification/voice/prf-1a2b3c4d
func (Topics) VerificationOutcome(modality, profileID string) string {
	return fmt.Sprintf("%s/verification/%s/%s", TopicPrefix, modality, profileID)
}

// EnrollmentStatus returns the topic for enrollment progress updates.
//
// Example: biofusion/enrollment/status/prf-1a2b3c4d
func (Topics) EnrollmentStatus(profileID string) string {
	return fmt.Sprintf("%s/enrollment/status/%s", TopicPrefix, profileID)
}

// ThreatFeed returns the topic for an account's threat detection feed.
//
// Example: biofusion/threat/feed/acc-9f8e7d6c
func (Topics) ThreatFeed(accountID string) string {
	return fmt.Sprintf("%s/threat/feed/%s", TopicPrefix, accountID)
}

// QuantumRisk returns the topic for risk score updates from the
// simulation loop.
//
// Example: biofusion/quantum/risk
func (Topics) QuantumRisk() string {
	return fmt.Sprintf("%s/quantum/risk", TopicPrefix)
}

// QuantumEvent returns the topic for simulated quantum events.
//
// Example: biofusion/quantum/event/shor_test
func (Topics) QuantumEvent(kind string) string {
	return fmt.Sprintf("%s/quantum/event/%s", TopicPrefix, kind)
}

// SystemStatus returns the system status topic.
//
// Example: biofusion/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllVerificationOutcomes returns a pattern matching judge decisions for
// every modality and profile. External consumers subscribe here.
//
// Pattern: biofusion/verification/+/+
func (Topics) AllVerificationOutcomes() string {
	return fmt.Sprintf("%s/verification/+/+", TopicPrefix)
}

package profile

import (
	"time"

	"github.com/biofusionhq/biofusion-core/internal/biometric"
)

// SessionMode tracks which phase of the demo flow the profile is in.
type SessionMode string

const (
	// ModeEnrolling means the profile was just registered and is capturing
	// its first samples. Step order is enforced in this mode.
	ModeEnrolling SessionMode = "enrolling"

	// ModeVerifying means a login succeeded and fresh captures are being
	// compared against the enrolled samples.
	ModeVerifying SessionMode = "verifying"
)

// RequiredSamples is how many modality samples make enrollment complete.
const RequiredSamples = 3

// Profile is the single local user record: credentials plus per-modality
// biometric samples. Exactly one profile exists in storage at a time.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`

	// PasswordHash is an Argon2id PHC string verified at login.
	PasswordHash string `json:"-"`

	// LegacyCheck is the 32-bit checksum the original demo stored as its
	// "hash" field. It is never used for verification; it is kept so
	// exported profiles stay readable by the legacy dashboard pages.
	LegacyCheck string `json:"-"`

	// Samples holds at most one sample per modality.
	Samples map[biometric.Modality]*biometric.Sample `json:"samples"`

	SessionMode        SessionMode `json:"session_mode"`
	IsAuthenticated    bool        `json:"is_authenticated"`
	EnrollmentComplete bool        `json:"enrollment_complete"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegisteredModalities returns the modalities with a stored sample, in
// enrollment sequence order.
func (p *Profile) RegisteredModalities() []biometric.Modality {
	var out []biometric.Modality
	for _, m := range biometric.Sequence {
		if _, ok := p.Samples[m]; ok {
			out = append(out, m)
		}
	}
	return out
}

// HasSample returns true if a sample is stored for the given modality.
func (p *Profile) HasSample(m biometric.Modality) bool {
	_, ok := p.Samples[m]
	return ok
}

// recomputeEnrollment updates EnrollmentComplete from the sample count.
// Completion never resets except on full logout/deletion.
func (p *Profile) recomputeEnrollment() {
	if len(p.Samples) >= RequiredSamples {
		p.EnrollmentComplete = true
	}
}

// DeepCopy creates an independent copy of the Profile so callers cannot
// mutate the store's in-memory state.
func (p *Profile) DeepCopy() *Profile {
	if p == nil {
		return nil
	}
	cpy := *p
	cpy.Samples = make(map[biometric.Modality]*biometric.Sample, len(p.Samples))
	for m, s := range p.Samples {
		cpy.Samples[m] = s.Clone()
	}
	return &cpy
}

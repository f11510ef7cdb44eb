package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/biofusionhq/biofusion-core/internal/biometric"
	"github.com/biofusionhq/biofusion-core/internal/profile"
)

// Step is a position in the station's linear capture flow.
type Step string

const (
	// StepFace is the first capture step.
	StepFace Step = "face"

	// StepVoice follows face.
	StepVoice Step = "voice"

	// StepGesture follows voice.
	StepGesture Step = "gesture"

	// StepBody follows gesture.
	StepBody Step = "body"

	// StepComplete is the terminal dashboard position.
	StepComplete Step = "complete"
)

// Order is the fixed traversal order of the capture steps.
var Order = []Step{StepFace, StepVoice, StepGesture, StepBody}

// ErrUnknownStep marks a step name outside the fixed flow.
var ErrUnknownStep = errors.New("unknown flow step")

// StepFor maps a modality onto its flow step.
func StepFor(m biometric.Modality) Step {
	return Step(m)
}

// modalityFor maps a capture step back onto its modality.
func modalityFor(s Step) (biometric.Modality, bool) {
	switch s {
	case StepFace, StepVoice, StepGesture, StepBody:
		return biometric.Modality(s), true
	default:
		return "", false
	}
}

// Controller enforces the linear step order over the profile store. It
// gates entry to each step and computes the next position after a
// successful capture. Judge rejections never move the position; the
// caller simply retries the same step.
//
// During verification the controller tracks which registered modalities
// have passed this session; the terminal position is reached only after
// all of them have, at which point the profile is marked authenticated.
type Controller struct {
	store *profile.Store

	mu     sync.Mutex
	passed map[biometric.Modality]bool
}

// NewController creates a flow controller over the given store.
func NewController(store *profile.Store) *Controller {
	return &Controller{
		store:  store,
		passed: make(map[biometric.Modality]bool),
	}
}

// Reset clears per-session verification progress. Call on login, logout,
// and registration.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.passed = make(map[biometric.Modality]bool)
	c.mu.Unlock()
}

// Gate decides whether the requested step may open. It returns the step
// the caller should actually be on: the requested step when entry is
// allowed, or the earliest step still owed when the linear order would be
// violated. No step is reachable without an established profile.
func (c *Controller) Gate(requested Step) (Step, error) {
	if _, ok := modalityFor(requested); !ok && requested != StepComplete {
		return "", fmt.Errorf("%w: %q", ErrUnknownStep, requested)
	}

	current := c.store.Current()
	if current == nil {
		return "", profile.ErrNoProfile
	}

	if c.store.Mode() == profile.ModeEnrolling {
		return c.gateEnrolling(current, requested), nil
	}
	return c.gateVerifying(current, requested), nil
}

// gateEnrolling redirects to the earliest modality missing from the
// profile when the requested step sits past it.
func (c *Controller) gateEnrolling(p *profile.Profile, requested Step) Step {
	if p.EnrollmentComplete {
		return StepComplete
	}
	if requested == StepComplete {
		requested = StepBody
	}
	for _, step := range Order {
		if step == requested {
			return requested
		}
		m, _ := modalityFor(step)
		if !p.HasSample(m) {
			return step
		}
	}
	return requested
}

// gateVerifying holds the user on the earliest registered modality that
// has not passed this session.
func (c *Controller) gateVerifying(p *profile.Profile, requested Step) Step {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, m := range p.RegisteredModalities() {
		if !c.passed[m] {
			return StepFor(m)
		}
	}
	return StepComplete
}

// Advance records a successful capture for the given modality and returns
// the next flow position.
//
// While enrolling, the next position is the following step in the fixed
// order, or the terminal dashboard once the enrollment threshold is met.
// While verifying, the next position is the next registered modality still
// unpassed; clearing the last one marks the profile authenticated and
// lands on the terminal dashboard.
func (c *Controller) Advance(ctx context.Context, m biometric.Modality) (Step, error) {
	current := c.store.Current()
	if current == nil {
		return "", profile.ErrNoProfile
	}
	if !biometric.IsValidModality(m) {
		return "", fmt.Errorf("%w: %q", biometric.ErrInvalidModality, m)
	}

	if c.store.Mode() == profile.ModeEnrolling {
		return c.advanceEnrolling(m), nil
	}
	return c.advanceVerifying(ctx, current, m)
}

func (c *Controller) advanceEnrolling(m biometric.Modality) Step {
	if p := c.store.Current(); p != nil && p.EnrollmentComplete {
		return StepComplete
	}
	step := StepFor(m)
	for i, s := range Order {
		if s == step && i+1 < len(Order) {
			return Order[i+1]
		}
	}
	return StepComplete
}

func (c *Controller) advanceVerifying(ctx context.Context, p *profile.Profile, m biometric.Modality) (Step, error) {
	c.mu.Lock()
	c.passed[m] = true
	remaining := Step("")
	for _, registered := range p.RegisteredModalities() {
		if !c.passed[registered] {
			remaining = StepFor(registered)
			break
		}
	}
	c.mu.Unlock()

	if remaining != "" {
		return remaining, nil
	}
	if err := c.store.MarkAuthenticated(ctx); err != nil {
		return "", err
	}
	return StepComplete, nil
}

// Position reports where the flow currently stands without recording any
// progress: the earliest step still owed, or the terminal dashboard.
func (c *Controller) Position() (Step, error) {
	return c.Gate(StepComplete)
}

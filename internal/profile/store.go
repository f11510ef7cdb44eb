package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/biofusionhq/biofusion-core/internal/biometric"
)

// Judge decides whether a fresh capture matches a stored sample.
// The judge package provides the simulated implementation.
type Judge interface {
	Decide(ctx context.Context, m biometric.Modality, stored, fresh *biometric.Sample) (bool, error)
}

// Store is the session/profile store: it owns the single in-memory Profile,
// persists every mutation synchronously, and gates the verification rules
// behind the injected Judge.
//
// Thread Safety: all methods are safe for concurrent use. Mutations are
// serialised by an internal mutex, so there is never more than one writer.
type Store struct {
	repo  Repository
	judge Judge

	mu      sync.RWMutex
	current *Profile
}

// NewStore creates a profile store backed by the given repository.
func NewStore(repo Repository, judge Judge) *Store {
	return &Store{repo: repo, judge: judge}
}

// Rehydrate loads a previously persisted profile into memory, if one exists.
// Call once at startup; a missing profile is not an error.
func (s *Store) Rehydrate(ctx context.Context) error {
	p, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNoProfile) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	s.current = p
	s.mu.Unlock()
	return nil
}

// Register creates a new Profile with empty samples, persists it, and marks
// the session as enrolling. Any previously stored profile is replaced.
//
// Returns ErrValidation if any field is empty or the email is malformed.
func (s *Store) Register(ctx context.Context, username, email, password string) (*Profile, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email address", ErrValidation)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	p := &Profile{
		ID:           "prf-" + uuid.NewString()[:8],
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		LegacyCheck:  LegacyChecksum(password),
		Samples:      make(map[biometric.Modality]*biometric.Sample),
		SessionMode:  ModeEnrolling,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.current = p
	return p.DeepCopy(), nil
}

// Login checks the supplied credentials against the stored profile. On
// success it switches the session mode to verifying (not yet authenticated)
// and returns true. A username or password mismatch returns false without
// an error; errors are reserved for storage failures.
func (s *Store) Login(ctx context.Context, username, password string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.current
	if p == nil {
		loaded, err := s.repo.Load(ctx)
		if err != nil {
			if errors.Is(err, ErrNoProfile) {
				return false, nil
			}
			return false, err
		}
		p = loaded
	}

	if p.Username != username {
		return false, nil
	}

	ok, err := VerifyPassword(password, p.PasswordHash)
	if err != nil {
		return false, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return false, nil
	}

	p.SessionMode = ModeVerifying
	p.IsAuthenticated = false
	if err := s.repo.Save(ctx, p); err != nil {
		return false, err
	}
	s.current = p
	return true, nil
}

// AddSample attaches a captured sample to the profile, stamped with the
// current time if the capture did not stamp it, recomputes enrollment
// completion, and persists before returning.
func (s *Store) AddSample(ctx context.Context, m biometric.Modality, sample *biometric.Sample) error {
	if sample == nil {
		return fmt.Errorf("%w: nil sample", biometric.ErrInvalidSample)
	}
	sample.Modality = m
	if err := sample.Validate(); err != nil {
		return err
	}
	if sample.CapturedAt.IsZero() {
		sample.CapturedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ErrNoProfile
	}

	s.current.Samples[m] = sample
	s.current.recomputeEnrollment()
	return s.repo.SaveSample(ctx, s.current, m)
}

// VerifySample compares a fresh capture against the stored sample for the
// same modality. A missing stored sample rejects immediately rather than
// erroring; the acceptance rule itself belongs to the Judge.
func (s *Store) VerifySample(ctx context.Context, m biometric.Modality, fresh *biometric.Sample) (bool, error) {
	s.mu.RLock()
	p := s.current
	var stored *biometric.Sample
	if p != nil {
		stored = p.Samples[m]
	}
	s.mu.RUnlock()

	if p == nil || stored == nil {
		return false, nil
	}

	return s.judge.Decide(ctx, m, stored, fresh)
}

// MarkAuthenticated sets IsAuthenticated on the profile. It is only
// meaningful once enrollment is complete; calling it earlier returns
// ErrNotEnrolled.
func (s *Store) MarkAuthenticated(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return ErrNoProfile
	}
	if !s.current.EnrollmentComplete {
		return ErrNotEnrolled
	}

	s.current.IsAuthenticated = true
	return s.repo.Save(ctx, s.current)
}

// Logout clears the in-memory profile and durable storage. Logging out
// twice leaves the store in the same cleared state as logging out once.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	return s.repo.Clear(ctx)
}

// RegisteredModalities returns the modalities with a stored sample, in
// enrollment sequence order. Returns nil when no profile exists.
func (s *Store) RegisteredModalities() []biometric.Modality {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	return s.current.RegisteredModalities()
}

// Current returns a copy of the active profile, or nil if none exists.
func (s *Store) Current() *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.DeepCopy()
}

// Mode returns the active session mode, or "" when no profile exists.
func (s *Store) Mode() SessionMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.SessionMode
}

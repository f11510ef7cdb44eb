package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/biofusionhq/biofusion-core/internal/biometric"
)

func TestRegister(t *testing.T) {
	s := testStore(t, nil)
	ctx := context.Background()

	p, err := s.Register(ctx, "alice", "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if p.ID == "" {
		t.Error("Register() should assign an ID")
	}
	if p.Username != "alice" {
		t.Errorf("Username = %q, want %q", p.Username, "alice")
	}
	if p.SessionMode != ModeEnrolling {
		t.Errorf("SessionMode = %q, want %q", p.SessionMode, ModeEnrolling)
	}
	if p.EnrollmentComplete {
		t.Error("EnrollmentComplete should be false for a new profile")
	}
	if len(p.Samples) != 0 {
		t.Errorf("new profile has %d samples, want 0", len(p.Samples))
	}
	if p.PasswordHash == "" || p.PasswordHash == "secret1" {
		t.Error("PasswordHash should be a hash, not empty or plaintext")
	}
	if p.LegacyCheck == "" {
		t.Error("LegacyCheck should be populated for export compatibility")
	}
}

func TestRegister_Validation(t *testing.T) {
	s := testStore(t, nil)
	ctx := context.Background()

	tests := []struct {
		name                      string
		username, email, password string
	}{
		{"empty username", "", "a@example.com", "pw"},
		{"empty email", "alice", "", "pw"},
		{"empty password", "alice", "a@example.com", ""},
		{"malformed email", "alice", "not-an-email", "pw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(ctx, tt.username, tt.email, tt.password)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Register() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRegister_ReplacesPreviousProfile(t *testing.T) {
	s := testStore(t, nil)
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	if _, err := s.Register(ctx, "bob", "bob@example.com", "secret2"); err != nil {
		t.Fatalf("second Register() error = %v", err)
	}

	// Only one profile may exist; logging in as the old profile must fail.
	ok, err := s.Login(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if ok {
		t.Error("Login() as replaced profile should fail")
	}

	ok, err = s.Login(ctx, "bob", "secret2")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !ok {
		t.Error("Login() as current profile should succeed")
	}
}

func TestLogin(t *testing.T) {
	s := testStore(t, nil)
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name               string
		username, password string
		want               bool
	}{
		{"correct credentials", "alice", "secret1", true},
		{"wrong password", "alice", "wrong", false},
		{"wrong username", "mallory", "secret1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := s.Login(ctx, tt.username, tt.password)
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if ok != tt.want {
				t.Errorf("Login() = %v, want %v", ok, tt.want)
			}
		})
	}

	// A successful login switches to verifying mode without authenticating.
	if _, err := s.Login(ctx, "alice", "secret1"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	p := s.Current()
	if p.SessionMode != ModeVerifying {
		t.Errorf("SessionMode = %q, want %q", p.SessionMode, ModeVerifying)
	}
	if p.IsAuthenticated {
		t.Error("IsAuthenticated should be false immediately after login")
	}
}

func TestLogin_NoProfile(t *testing.T) {
	s := testStore(t, nil)

	ok, err := s.Login(context.Background(), "alice", "secret1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if ok {
		t.Error("Login() with no stored profile should fail")
	}
}

// TestEnrollmentThreshold verifies that enrollment completes exactly at the
// third sample and never resets short of logout.
func TestEnrollmentThreshold(t *testing.T) {
	s := testStore(t, nil)
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	steps := []struct {
		modality biometric.Modality
		sample   *biometric.Sample
		complete bool
	}{
		{biometric.ModalityFace, faceSample(), false},
		{biometric.ModalityVoice, voiceSample(3), false},
		{biometric.ModalityGesture, gestureSample("peace"), true},
	}

	for _, step := range steps {
		if err := s.AddSample(ctx, step.modality, step.sample); err != nil {
			t.Fatalf("AddSample(%s) error = %v", step.modality, err)
		}
		if got := s.Current().EnrollmentComplete; got != step.complete {
			t.Errorf("after %s: EnrollmentComplete = %v, want %v", step.modality, got, step.complete)
		}
	}

	// Re-adding an existing modality keeps the count at 3 and the latch set.
	if err := s.AddSample(ctx, biometric.ModalityFace, faceSample()); err != nil {
		t.Fatalf("AddSample() error = %v", err)
	}
	if !s.Current().EnrollmentComplete {
		t.Error("EnrollmentComplete should stay true after re-capturing a modality")
	}
}

func TestAddSample_NoProfile(t *testing.T) {
	s := testStore(t, nil)

	err := s.AddSample(context.Background(), biometric.ModalityFace, faceSample())
	if !errors.Is(err, ErrNoProfile) {
		t.Errorf("AddSample() error = %v, want ErrNoProfile", err)
	}
}

func TestAddSample_InvalidPayload(t *testing.T) {
	s := testStore(t, nil)
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	err := s.AddSample(ctx, biometric.ModalityFace, &biometric.Sample{})
	if !errors.Is(err, biometric.ErrInvalidSample) {
		t.Errorf("AddSample() error = %v, want ErrInvalidSample", err)
	}
}

func TestVerifySample_MissingStored(t *testing.T) {
	s := testStore(t, nil)
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// No stored face sample: must reject without error, never panic or throw.
	ok, err := s.VerifySample(ctx, biometric.ModalityFace, faceSample())
	if err != nil {
		t.Fatalf("VerifySample() error = %v", err)
	}
	if ok {
		t.Error("VerifySample() with no stored sample should reject")
	}
}

func TestVerifySample_DelegatesToJudge(t *testing.T) {
	ctx := context.Background()

	accept := testStore(t, acceptAllJudge{})
	if _, err := accept.Register(ctx, "alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := accept.AddSample(ctx, biometric.ModalityGesture, gestureSample("peace")); err != nil {
		t.Fatalf("AddSample() error = %v", err)
	}
	ok, err := accept.VerifySample(ctx, biometric.ModalityGesture, gestureSample("peace"))
	if err != nil {
		t.Fatalf("VerifySample() error = %v", err)
	}
	if !ok {
		t.Error("VerifySample() should accept when the judge accepts")
	}

	reject := testStore(t, rejectAllJudge{})
	if _, err := reject.Register(ctx, "alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := reject.AddSample(ctx, biometric.ModalityGesture, gestureSample("peace")); err != nil {
		t.Fatalf("AddSample() error = %v", err)
	}
	ok, err = reject.VerifySample(ctx, biometric.ModalityGesture, gestureSample("peace"))
	if err != nil {
		t.Fatalf("VerifySample() error = %v", err)
	}
	if ok {
		t.Error("VerifySample() should reject when the judge rejects")
	}
}

func TestMarkAuthenticated(t *testing.T) {
	s := testStore(t, nil)
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Before enrollment completes it must refuse.
	if err := s.MarkAuthenticated(ctx); !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("MarkAuthenticated() error = %v, want ErrNotEnrolled", err)
	}

	for m, sample := range map[biometric.Modality]*biometric.Sample{
		biometric.ModalityFace:    faceSample(),
		biometric.ModalityVoice:   voiceSample(3),
		biometric.ModalityGesture: gestureSample("peace"),
	} {
		if err := s.AddSample(ctx, m, sample); err != nil {
			t.Fatalf("AddSample(%s) error = %v", m, err)
		}
	}

	if err := s.MarkAuthenticated(ctx); err != nil {
		t.Fatalf("MarkAuthenticated() error = %v", err)
	}
	if !s.Current().IsAuthenticated {
		t.Error("IsAuthenticated should be true after MarkAuthenticated")
	}
}

// TestLogoutIdempotent verifies that a second logout leaves the store in the
// same cleared state as the first.
func TestLogoutIdempotent(t *testing.T) {
	s := testStore(t, nil)
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := s.Logout(ctx); err != nil {
		t.Fatalf("first Logout() error = %v", err)
	}
	if err := s.Logout(ctx); err != nil {
		t.Fatalf("second Logout() error = %v", err)
	}

	if s.Current() != nil {
		t.Error("Current() should be nil after logout")
	}
	if got := s.RegisteredModalities(); len(got) != 0 {
		t.Errorf("RegisteredModalities() = %v, want empty", got)
	}
}

func TestRegisteredModalities_SequenceOrder(t *testing.T) {
	s := testStore(t, nil)
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Add out of order; the result must still follow the fixed sequence.
	if err := s.AddSample(ctx, biometric.ModalityGesture, gestureSample("peace")); err != nil {
		t.Fatalf("AddSample() error = %v", err)
	}
	if err := s.AddSample(ctx, biometric.ModalityFace, faceSample()); err != nil {
		t.Fatalf("AddSample() error = %v", err)
	}

	got := s.RegisteredModalities()
	want := []biometric.Modality{biometric.ModalityFace, biometric.ModalityGesture}
	if len(got) != len(want) {
		t.Fatalf("RegisteredModalities() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RegisteredModalities()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// TestRehydrate verifies a page-reload-equivalent: a new Store over the same
// database sees the persisted session.
func TestRehydrate(t *testing.T) {
	db := testDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	s1 := NewStore(repo, acceptAllJudge{})
	if _, err := s1.Register(ctx, "alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := s1.AddSample(ctx, biometric.ModalityFace, faceSample()); err != nil {
		t.Fatalf("AddSample() error = %v", err)
	}

	s2 := NewStore(repo, acceptAllJudge{})
	if err := s2.Rehydrate(ctx); err != nil {
		t.Fatalf("Rehydrate() error = %v", err)
	}

	p := s2.Current()
	if p == nil {
		t.Fatal("Current() = nil after rehydrate")
	}
	if p.Username != "alice" {
		t.Errorf("Username = %q, want %q", p.Username, "alice")
	}
	if !p.HasSample(biometric.ModalityFace) {
		t.Error("rehydrated profile should have the face sample")
	}
}

func TestRehydrate_EmptyStorage(t *testing.T) {
	s := testStore(t, nil)
	if err := s.Rehydrate(context.Background()); err != nil {
		t.Fatalf("Rehydrate() with empty storage error = %v", err)
	}
	if s.Current() != nil {
		t.Error("Current() should be nil with empty storage")
	}
}

func TestCurrent_IsolatedFromCallers(t *testing.T) {
	s := testStore(t, nil)
	ctx := context.Background()

	if _, err := s.Register(ctx, "alice", "alice@example.com", "secret1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := s.AddSample(ctx, biometric.ModalityFace, faceSample()); err != nil {
		t.Fatalf("AddSample() error = %v", err)
	}

	p := s.Current()
	p.Username = "mallory"
	p.Samples[biometric.ModalityFace].Face.Descriptor[0] = 99

	fresh := s.Current()
	if fresh.Username != "alice" {
		t.Errorf("Username = %q after mutating a returned copy, want %q", fresh.Username, "alice")
	}
	if got := fresh.Samples[biometric.ModalityFace].Face.Descriptor[0]; got != 0 {
		t.Errorf("Descriptor[0] = %v after mutating a returned copy, want 0", got)
	}
}

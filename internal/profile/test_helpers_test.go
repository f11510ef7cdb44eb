package profile

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/biofusionhq/biofusion-core/internal/biometric"
)

// testDB creates a temporary SQLite database with the profile schema applied.
// The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use a temp file so WAL mode works (in-memory doesn't support it)
	f, err := os.CreateTemp("", "profile-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	migrationSQL := `
		CREATE TABLE profiles (
			id TEXT PRIMARY KEY,
			slot INTEGER NOT NULL DEFAULT 1 UNIQUE CHECK (slot = 1),
			username TEXT NOT NULL,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			legacy_check TEXT NOT NULL DEFAULT '',
			session_mode TEXT NOT NULL DEFAULT 'enrolling',
			is_authenticated INTEGER NOT NULL DEFAULT 0,
			enrollment_complete INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		) STRICT;

		CREATE TABLE modality_samples (
			profile_id TEXT NOT NULL,
			modality TEXT NOT NULL,
			payload TEXT NOT NULL,
			captured_at TEXT NOT NULL,
			PRIMARY KEY (profile_id, modality),
			FOREIGN KEY (profile_id) REFERENCES profiles(id) ON DELETE CASCADE
		) STRICT;
	`
	if _, err := db.Exec(migrationSQL); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	return db
}

// acceptAllJudge accepts every verification attempt.
type acceptAllJudge struct{}

func (acceptAllJudge) Decide(_ context.Context, _ biometric.Modality, stored, fresh *biometric.Sample) (bool, error) {
	return stored != nil && fresh != nil, nil
}

// rejectAllJudge rejects every verification attempt.
type rejectAllJudge struct{}

func (rejectAllJudge) Decide(context.Context, biometric.Modality, *biometric.Sample, *biometric.Sample) (bool, error) {
	return false, nil
}

// testStore creates a Store over a fresh temp database.
func testStore(t *testing.T, j Judge) *Store {
	t.Helper()
	if j == nil {
		j = acceptAllJudge{}
	}
	return NewStore(NewSQLiteRepository(testDB(t)), j)
}

// gestureSample builds a valid gesture sample with the given label.
func gestureSample(label string) *biometric.Sample {
	return &biometric.Sample{
		Modality: biometric.ModalityGesture,
		Gesture: &biometric.GestureSample{
			Landmarks: [][2]float64{{0.1, 0.2}},
			Label:     label,
		},
	}
}

// faceSample builds a valid face sample.
func faceSample() *biometric.Sample {
	return &biometric.Sample{
		Modality: biometric.ModalityFace,
		Face:     &biometric.FaceSample{Descriptor: make([]float64, biometric.DescriptorLength)},
	}
}

// voiceSample builds a valid voice sample with the given duration.
func voiceSample(duration float64) *biometric.Sample {
	return &biometric.Sample{
		Modality: biometric.ModalityVoice,
		Voice:    &biometric.VoiceSample{Pattern: "blob", Duration: duration},
	}
}

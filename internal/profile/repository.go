package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/biofusionhq/biofusion-core/internal/biometric"
)

// Repository defines the interface for profile persistence.
//
// There is at most one profile in storage; Load returns ErrNoProfile when
// the slot is empty.
type Repository interface {
	// Save writes the profile and all of its samples, replacing any profile
	// previously stored. The write is synchronous: when Save returns, a
	// restart will rehydrate exactly this state.
	Save(ctx context.Context, p *Profile) error

	// SaveSample upserts one modality sample for the stored profile and
	// refreshes the profile row's flags.
	SaveSample(ctx context.Context, p *Profile, m biometric.Modality) error

	// Load reads the stored profile with all samples.
	Load(ctx context.Context) (*Profile, error)

	// Clear removes the stored profile and its samples. Clearing an empty
	// slot is not an error.
	Clear(ctx context.Context) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed profile repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Save writes the profile and all of its samples in one transaction.
// Any previously stored profile is removed first: the slot column on the
// profiles table enforces the single-profile invariant at the schema level.
func (r *SQLiteRepository) Save(ctx context.Context, p *Profile) error {
	if p.ID == "" {
		p.ID = "prf-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM profiles WHERE id != ?", p.ID); err != nil {
		return fmt.Errorf("clearing previous profile: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO profiles (id, username, email, password_hash, legacy_check, session_mode, is_authenticated, enrollment_complete, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   username = excluded.username,
		   email = excluded.email,
		   password_hash = excluded.password_hash,
		   legacy_check = excluded.legacy_check,
		   session_mode = excluded.session_mode,
		   is_authenticated = excluded.is_authenticated,
		   enrollment_complete = excluded.enrollment_complete,
		   updated_at = excluded.updated_at`,
		p.ID, p.Username, p.Email, p.PasswordHash, p.LegacyCheck,
		string(p.SessionMode), boolToInt(p.IsAuthenticated), boolToInt(p.EnrollmentComplete),
		p.CreatedAt.Format(time.RFC3339), p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}

	for m := range p.Samples {
		if err := saveSampleTx(ctx, tx, p, m); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save: %w", err)
	}
	return nil
}

// SaveSample upserts one modality sample and refreshes the profile flags.
func (r *SQLiteRepository) SaveSample(ctx context.Context, p *Profile, m biometric.Modality) error {
	p.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning sample save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	if err := saveSampleTx(ctx, tx, p, m); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE profiles SET session_mode = ?, is_authenticated = ?, enrollment_complete = ?, updated_at = ? WHERE id = ?`,
		string(p.SessionMode), boolToInt(p.IsAuthenticated), boolToInt(p.EnrollmentComplete),
		p.UpdatedAt.Format(time.RFC3339), p.ID,
	); err != nil {
		return fmt.Errorf("updating profile flags: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing sample save: %w", err)
	}
	return nil
}

func saveSampleTx(ctx context.Context, tx *sql.Tx, p *Profile, m biometric.Modality) error {
	s, ok := p.Samples[m]
	if !ok {
		return fmt.Errorf("profile has no %s sample to save", m)
	}

	payload, err := s.MarshalPayload()
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO modality_samples (profile_id, modality, payload, captured_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(profile_id, modality) DO UPDATE SET
		   payload = excluded.payload,
		   captured_at = excluded.captured_at`,
		p.ID, string(m), payload, s.CapturedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving %s sample: %w", m, err)
	}
	return nil
}

// Load reads the stored profile with all of its samples.
func (r *SQLiteRepository) Load(ctx context.Context) (*Profile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, legacy_check, session_mode, is_authenticated, enrollment_complete, created_at, updated_at
		 FROM profiles LIMIT 1`)

	var p Profile
	var mode string
	var isAuth, complete int
	var createdAt, updatedAt string

	err := row.Scan(&p.ID, &p.Username, &p.Email, &p.PasswordHash, &p.LegacyCheck,
		&mode, &isAuth, &complete, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoProfile
		}
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	p.SessionMode = SessionMode(mode)
	p.IsAuthenticated = isAuth == 1
	p.EnrollmentComplete = complete == 1
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled
	p.Samples = make(map[biometric.Modality]*biometric.Sample)

	rows, err := r.db.QueryContext(ctx,
		"SELECT modality, payload FROM modality_samples WHERE profile_id = ?", p.ID)
	if err != nil {
		return nil, fmt.Errorf("loading samples: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var modality, payload string
		if err := rows.Scan(&modality, &payload); err != nil {
			return nil, fmt.Errorf("scanning sample row: %w", err)
		}
		s, err := biometric.UnmarshalPayload(payload)
		if err != nil {
			return nil, err
		}
		p.Samples[biometric.Modality(modality)] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating samples: %w", err)
	}

	return &p, nil
}

// Clear removes the stored profile and, via cascade, its samples.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM profiles"); err != nil {
		return fmt.Errorf("clearing profile: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

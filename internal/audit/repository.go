// Package audit provides access to the verification_logs table for
// querying capture decision history.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/biofusionhq/biofusion-core/internal/biometric"
)

// Path distinguishes the two capture contexts a decision can occur in.
type Path string

const (
	// PathEnrollment marks a sample recorded while enrolling.
	PathEnrollment Path = "enrollment"

	// PathVerification marks a judge decision during verification.
	PathVerification Path = "verification"
)

// VerificationLog represents one recorded capture decision.
type VerificationLog struct {
	ID        string             `json:"id"`
	ProfileID string             `json:"profile_id,omitempty"`
	Modality  biometric.Modality `json:"modality"`
	Path      Path               `json:"path"`
	Accepted  bool               `json:"accepted"`
	Details   map[string]any     `json:"details,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// Filter controls which verification logs to return.
type Filter struct {
	Modality biometric.Modality // optional: filter by modality
	Path     Path               // optional: filter by path (enrollment, verification)
	Accepted *bool              // optional: filter by outcome
	Limit    int                // default 50, max 200
	Offset   int                // pagination offset
}

// ListResult contains the paginated verification log results.
type ListResult struct {
	Logs   []VerificationLog `json:"logs"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// Repository defines the interface for verification log operations.
type Repository interface {
	Create(ctx context.Context, log *VerificationLog) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

// SQLiteRepository reads verification logs from SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new verification log repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new verification log entry. The ID and CreatedAt are
// generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, log *VerificationLog) error {
	if log.ID == "" {
		log.ID = "vlg-" + uuid.NewString()[:8]
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	var detailsJSON *string
	if log.Details != nil {
		b, err := json.Marshal(log.Details)
		if err != nil {
			return fmt.Errorf("marshalling verification log details: %w", err)
		}
		s := string(b)
		detailsJSON = &s
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO verification_logs (id, profile_id, modality, path, accepted, details, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		log.ID, nullableString(log.ProfileID),
		string(log.Modality), string(log.Path),
		boolToInt(log.Accepted), detailsJSON,
		log.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting verification log: %w", err)
	}

	return nil
}

// nullableString returns nil for empty strings, or the string otherwise.
// Used for nullable TEXT columns in SQLite.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// List returns verification logs matching the filter, ordered by most
// recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) { //nolint:gocognit,gocyclo // dynamic query builder: WHERE clause assembly from filter fields
	// Clamp limit.
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 { //nolint:mnd // max page size for verification log queries
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	// Build WHERE clause dynamically.
	var conditions []string
	var args []any

	if filter.Modality != "" {
		conditions = append(conditions, "modality = ?")
		args = append(args, string(filter.Modality))
	}
	if filter.Path != "" {
		conditions = append(conditions, "path = ?")
		args = append(args, string(filter.Path))
	}
	if filter.Accepted != nil {
		conditions = append(conditions, "accepted = ?")
		args = append(args, boolToInt(*filter.Accepted))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Get total count.
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM verification_logs %s", where) //nolint:gosec // WHERE built from parameterised conditions, not user input
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting verification logs: %w", err)
	}

	// Get paginated results.
	query := fmt.Sprintf( //nolint:gosec // WHERE built from parameterised conditions, not user input
		"SELECT id, profile_id, modality, path, accepted, details, created_at FROM verification_logs %s ORDER BY created_at DESC LIMIT ? OFFSET ?",
		where,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying verification logs: %w", err)
	}
	defer rows.Close()

	var logs []VerificationLog
	for rows.Next() {
		var log VerificationLog
		var profileID, detailsJSON sql.NullString
		var modality, path, createdAt string
		var accepted int

		if err := rows.Scan(&log.ID, &profileID, &modality, &path,
			&accepted, &detailsJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning verification log: %w", err)
		}

		log.Modality = biometric.Modality(modality)
		log.Path = Path(path)
		log.Accepted = accepted != 0
		if profileID.Valid {
			log.ProfileID = profileID.String
		}
		if detailsJSON.Valid && detailsJSON.String != "" {
			var details map[string]any
			if json.Unmarshal([]byte(detailsJSON.String), &details) == nil {
				log.Details = details
			}
		}

		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing verification log timestamp %q: %w", createdAt, err)
		}
		log.CreatedAt = t

		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating verification logs: %w", err)
	}

	if logs == nil {
		logs = []VerificationLog{}
	}

	return &ListResult{
		Logs:   logs,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

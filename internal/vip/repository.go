package vip

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ThreatFilter narrows a threat listing.
type ThreatFilter struct {
	VIPID  string // optional: threats against one VIP
	Status string // optional: active, reviewed, dismissed
	Limit  int    // default 50, max 200
	Offset int
}

// Repository defines the monitoring data operations. All reads and writes
// are scoped to an account: one account never sees another's records.
type Repository interface {
	CreateVIP(ctx context.Context, v *VIP) error
	ListVIPs(ctx context.Context, accountID string) ([]VIP, error)
	GetVIP(ctx context.Context, accountID, id string) (*VIP, error)
	DeleteVIP(ctx context.Context, accountID, id string) error

	CreateThreat(ctx context.Context, accountID string, t *ThreatDetection) error
	ListThreats(ctx context.Context, accountID string, filter ThreatFilter) ([]ThreatDetection, error)
	UpdateThreatStatus(ctx context.Context, accountID, id, status string) error

	CreateCampaign(ctx context.Context, c *CampaignRecord) error
	ListCampaigns(ctx context.Context, accountID string) ([]CampaignRecord, error)

	Stats(ctx context.Context, accountID string) (*Stats, error)
}

// SQLiteRepository stores monitoring records in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new monitoring repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateVIP inserts a monitored target. The ID and CreatedAt are generated
// if empty.
func (r *SQLiteRepository) CreateVIP(ctx context.Context, v *VIP) error {
	if strings.TrimSpace(v.FullName) == "" {
		return fmt.Errorf("%w: full_name is required", ErrValidation)
	}
	if v.AccountID == "" {
		return fmt.Errorf("%w: account_id is required", ErrValidation)
	}
	if v.ID == "" {
		v.ID = "vip-" + uuid.NewString()[:8]
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	var keywordsJSON *string
	if len(v.Keywords) > 0 {
		b, err := json.Marshal(v.Keywords)
		if err != nil {
			return fmt.Errorf("marshalling keywords: %w", err)
		}
		s := string(b)
		keywordsJSON = &s
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO vips (id, account_id, full_name, display_name, profile_image_url, keywords, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.AccountID, v.FullName,
		nullableString(v.DisplayName), nullableString(v.ProfileImageURL),
		keywordsJSON, v.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting vip: %w", err)
	}
	return nil
}

// ListVIPs returns the account's monitored targets, newest first.
func (r *SQLiteRepository) ListVIPs(ctx context.Context, accountID string) ([]VIP, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, full_name, display_name, profile_image_url, keywords, created_at
		 FROM vips WHERE account_id = ? ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("querying vips: %w", err)
	}
	defer rows.Close()

	vips := []VIP{}
	for rows.Next() {
		v, err := scanVIP(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning vip: %w", err)
		}
		vips = append(vips, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vips: %w", err)
	}
	return vips, nil
}

// GetVIP returns one target, or ErrNotFound.
func (r *SQLiteRepository) GetVIP(ctx context.Context, accountID, id string) (*VIP, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, account_id, full_name, display_name, profile_image_url, keywords, created_at
		 FROM vips WHERE account_id = ? AND id = ?`, accountID, id)
	v, err := scanVIP(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return v, err
}

// DeleteVIP removes a target and, via the schema's cascade, its threat
// detections.
func (r *SQLiteRepository) DeleteVIP(ctx context.Context, accountID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM vips WHERE account_id = ? AND id = ?`, accountID, id)
	if err != nil {
		return fmt.Errorf("deleting vip: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateThreat inserts a detection against one of the account's VIPs. The
// VIP must belong to the account.
func (r *SQLiteRepository) CreateThreat(ctx context.Context, accountID string, t *ThreatDetection) error {
	if t.Platform == "" || t.ThreatType == "" {
		return fmt.Errorf("%w: platform and threat_type are required", ErrValidation)
	}
	if t.ConfidenceScore < 0 || t.ConfidenceScore > 1 {
		return fmt.Errorf("%w: confidence_score must be in [0, 1]", ErrValidation)
	}
	if _, err := r.GetVIP(ctx, accountID, t.VIPID); err != nil {
		return err
	}

	if t.ID == "" {
		t.ID = "thr-" + uuid.NewString()[:8]
	}
	if t.Status == "" {
		t.Status = StatusActive
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.Severity = SeverityFor(t.ConfidenceScore)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO threat_detections (id, vip_id, platform, threat_type, content_url, content_text, confidence_score, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.VIPID, t.Platform, t.ThreatType,
		nullableString(t.ContentURL), nullableString(t.ContentText),
		t.ConfidenceScore, t.Status, t.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting threat detection: %w", err)
	}
	return nil
}

// ListThreats returns detections across the account's VIPs, newest first.
func (r *SQLiteRepository) ListThreats(ctx context.Context, accountID string, filter ThreatFilter) ([]ThreatDetection, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 { //nolint:mnd // max page size
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	conditions := []string{"v.account_id = ?"}
	args := []any{accountID}
	if filter.VIPID != "" {
		conditions = append(conditions, "t.vip_id = ?")
		args = append(args, filter.VIPID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "t.status = ?")
		args = append(args, filter.Status)
	}

	query := fmt.Sprintf( //nolint:gosec // WHERE built from parameterised conditions, not user input
		`SELECT t.id, t.vip_id, t.platform, t.threat_type, t.content_url, t.content_text, t.confidence_score, t.status, t.created_at
		 FROM threat_detections t JOIN vips v ON v.id = t.vip_id
		 WHERE %s ORDER BY t.created_at DESC LIMIT ? OFFSET ?`,
		strings.Join(conditions, " AND "),
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying threat detections: %w", err)
	}
	defer rows.Close()

	threats := []ThreatDetection{}
	for rows.Next() {
		var t ThreatDetection
		var contentURL, contentText sql.NullString
		var confidence sql.NullFloat64
		var createdAt string

		if err := rows.Scan(&t.ID, &t.VIPID, &t.Platform, &t.ThreatType,
			&contentURL, &contentText, &confidence, &t.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning threat detection: %w", err)
		}
		if contentURL.Valid {
			t.ContentURL = contentURL.String
		}
		if contentText.Valid {
			t.ContentText = contentText.String
		}
		if confidence.Valid {
			t.ConfidenceScore = confidence.Float64
		}
		t.Severity = SeverityFor(t.ConfidenceScore)

		ts, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing threat timestamp %q: %w", createdAt, err)
		}
		t.CreatedAt = ts

		threats = append(threats, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating threat detections: %w", err)
	}
	return threats, nil
}

// UpdateThreatStatus moves a detection between active, reviewed, and
// dismissed.
func (r *SQLiteRepository) UpdateThreatStatus(ctx context.Context, accountID, id, status string) error {
	switch status {
	case StatusActive, StatusReviewed, StatusDismissed:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE threat_detections SET status = ?
		 WHERE id = ? AND vip_id IN (SELECT id FROM vips WHERE account_id = ?)`,
		status, id, accountID)
	if err != nil {
		return fmt.Errorf("updating threat status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateCampaign inserts a coordinated-network record.
func (r *SQLiteRepository) CreateCampaign(ctx context.Context, c *CampaignRecord) error {
	if c.NetworkName == "" {
		return fmt.Errorf("%w: network_name is required", ErrValidation)
	}
	if c.AccountID == "" {
		return fmt.Errorf("%w: account_id is required", ErrValidation)
	}
	if c.ID == "" {
		c.ID = "cmp-" + uuid.NewString()[:8]
	}
	now := time.Now().UTC()
	if c.FirstSeen.IsZero() {
		c.FirstSeen = now
	}
	if c.LastSeen.IsZero() {
		c.LastSeen = now
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO campaign_records (id, account_id, vip_id, network_name, node_count, coordination_score, first_seen, last_seen)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.AccountID, nullableString(c.VIPID), c.NetworkName,
		c.NodeCount, c.CoordinationScore,
		c.FirstSeen.Format(time.RFC3339), c.LastSeen.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting campaign record: %w", err)
	}
	return nil
}

// ListCampaigns returns the account's network records, most recently seen
// first.
func (r *SQLiteRepository) ListCampaigns(ctx context.Context, accountID string) ([]CampaignRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, vip_id, network_name, node_count, coordination_score, first_seen, last_seen
		 FROM campaign_records WHERE account_id = ? ORDER BY last_seen DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("querying campaign records: %w", err)
	}
	defer rows.Close()

	campaigns := []CampaignRecord{}
	for rows.Next() {
		var c CampaignRecord
		var vipID sql.NullString
		var coordination sql.NullFloat64
		var firstSeen, lastSeen string

		if err := rows.Scan(&c.ID, &c.AccountID, &vipID, &c.NetworkName,
			&c.NodeCount, &coordination, &firstSeen, &lastSeen); err != nil {
			return nil, fmt.Errorf("scanning campaign record: %w", err)
		}
		if vipID.Valid {
			c.VIPID = vipID.String
		}
		if coordination.Valid {
			c.CoordinationScore = coordination.Float64
		}

		first, err := time.Parse(time.RFC3339, firstSeen)
		if err != nil {
			return nil, fmt.Errorf("parsing campaign first_seen %q: %w", firstSeen, err)
		}
		last, err := time.Parse(time.RFC3339, lastSeen)
		if err != nil {
			return nil, fmt.Errorf("parsing campaign last_seen %q: %w", lastSeen, err)
		}
		c.FirstSeen, c.LastSeen = first, last

		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating campaign records: %w", err)
	}
	return campaigns, nil
}

// Stats aggregates the account's monitoring counters for the dashboard
// header cards.
func (r *SQLiteRepository) Stats(ctx context.Context, accountID string) (*Stats, error) {
	stats := &Stats{PlatformCounts: map[string]int{}}

	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM vips WHERE account_id = ?`, accountID).Scan(&stats.TotalVIPs); err != nil {
		return nil, fmt.Errorf("counting vips: %w", err)
	}

	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN t.status = 'active' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN t.confidence_score > 0.8 THEN 1 ELSE 0 END), 0)
		 FROM threat_detections t JOIN vips v ON v.id = t.vip_id
		 WHERE v.account_id = ?`, accountID).
		Scan(&stats.TotalThreats, &stats.ActiveThreats, &stats.CriticalCount); err != nil {
		return nil, fmt.Errorf("counting threats: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT t.platform, COUNT(*)
		 FROM threat_detections t JOIN vips v ON v.id = t.vip_id
		 WHERE v.account_id = ? GROUP BY t.platform`, accountID)
	if err != nil {
		return nil, fmt.Errorf("counting platforms: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var platform string
		var count int
		if err := rows.Scan(&platform, &count); err != nil {
			return nil, fmt.Errorf("scanning platform count: %w", err)
		}
		stats.PlatformCounts[platform] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating platform counts: %w", err)
	}

	return stats, nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanVIP(row scanner) (*VIP, error) {
	var v VIP
	var displayName, imageURL, keywordsJSON sql.NullString
	var createdAt string

	if err := row.Scan(&v.ID, &v.AccountID, &v.FullName,
		&displayName, &imageURL, &keywordsJSON, &createdAt); err != nil {
		return nil, err
	}

	if displayName.Valid {
		v.DisplayName = displayName.String
	}
	if imageURL.Valid {
		v.ProfileImageURL = imageURL.String
	}
	if keywordsJSON.Valid && keywordsJSON.String != "" {
		if err := json.Unmarshal([]byte(keywordsJSON.String), &v.Keywords); err != nil {
			return nil, fmt.Errorf("unmarshalling keywords: %w", err)
		}
	}

	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing vip timestamp %q: %w", createdAt, err)
	}
	v.CreatedAt = t

	return &v, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

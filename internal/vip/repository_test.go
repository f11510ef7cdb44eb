package vip

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the monitoring schema
// applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "vip-test-*.db")
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
		CREATE TABLE vips (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			full_name TEXT NOT NULL,
			display_name TEXT,
			profile_image_url TEXT,
			keywords TEXT,
			created_at TEXT NOT NULL
		) STRICT;

		CREATE TABLE threat_detections (
			id TEXT PRIMARY KEY,
			vip_id TEXT NOT NULL,
			platform TEXT NOT NULL,
			threat_type TEXT NOT NULL,
			content_url TEXT,
			content_text TEXT,
			confidence_score REAL,
			status TEXT NOT NULL DEFAULT 'active',
			created_at TEXT NOT NULL,
			FOREIGN KEY (vip_id) REFERENCES vips(id) ON DELETE CASCADE
		) STRICT;

		CREATE TABLE campaign_records (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			vip_id TEXT,
			network_name TEXT NOT NULL,
			node_count INTEGER NOT NULL DEFAULT 0,
			coordination_score REAL,
			first_seen TEXT NOT NULL,
			last_seen TEXT NOT NULL,
			FOREIGN KEY (vip_id) REFERENCES vips(id) ON DELETE SET NULL
		) STRICT;
	`
	if _, err := db.Exec(migrationSQL); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	return db
}

func seedVIP(t *testing.T, repo *SQLiteRepository, accountID, name string) *VIP {
	t.Helper()
	v := &VIP{
		AccountID: accountID,
		FullName:  name,
		Keywords:  []string{"impersonation", name},
	}
	if err := repo.CreateVIP(context.Background(), v); err != nil {
		t.Fatalf("CreateVIP() error = %v", err)
	}
	return v
}

func seedThreat(t *testing.T, repo *SQLiteRepository, accountID, vipID, platform string, confidence float64) *ThreatDetection {
	t.Helper()
	threat := &ThreatDetection{
		VIPID:           vipID,
		Platform:        platform,
		ThreatType:      "impersonation",
		ConfidenceScore: confidence,
	}
	if err := repo.CreateThreat(context.Background(), accountID, threat); err != nil {
		t.Fatalf("CreateThreat() error = %v", err)
	}
	return threat
}

func TestSeverityFor(t *testing.T) {
	tests := []struct {
		confidence float64
		want       Severity
	}{
		{confidence: 0.95, want: SeverityCritical},
		{confidence: 0.81, want: SeverityCritical},
		{confidence: 0.8, want: SeverityHigh},
		{confidence: 0.61, want: SeverityHigh},
		{confidence: 0.6, want: SeverityMedium},
		{confidence: 0.41, want: SeverityMedium},
		{confidence: 0.4, want: SeverityLow},
		{confidence: 0, want: SeverityLow},
	}
	for _, tt := range tests {
		if got := SeverityFor(tt.confidence); got != tt.want {
			t.Errorf("SeverityFor(%v) = %s, want %s", tt.confidence, got, tt.want)
		}
	}
}

func TestVIPRoundTrip(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	v := seedVIP(t, repo, "acc-1", "Ada Lovelace")

	if !strings.HasPrefix(v.ID, "vip-") {
		t.Errorf("ID = %q, want vip- prefix", v.ID)
	}

	got, err := repo.GetVIP(context.Background(), "acc-1", v.ID)
	if err != nil {
		t.Fatalf("GetVIP() error = %v", err)
	}
	if got.FullName != "Ada Lovelace" {
		t.Errorf("FullName = %q, want %q", got.FullName, "Ada Lovelace")
	}
	if len(got.Keywords) != 2 {
		t.Errorf("len(Keywords) = %d, want 2", len(got.Keywords))
	}
}

func TestVIPAccountScoping(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	mine := seedVIP(t, repo, "acc-1", "Ada Lovelace")
	seedVIP(t, repo, "acc-2", "Grace Hopper")

	vips, err := repo.ListVIPs(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("ListVIPs() error = %v", err)
	}
	if len(vips) != 1 || vips[0].ID != mine.ID {
		t.Fatalf("ListVIPs(acc-1) = %d records, want only own record", len(vips))
	}

	// Another account cannot read or delete this record.
	if _, err := repo.GetVIP(context.Background(), "acc-2", mine.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetVIP() cross-account error = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteVIP(context.Background(), "acc-2", mine.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteVIP() cross-account error = %v, want ErrNotFound", err)
	}
}

func TestCreateVIPValidation(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))

	err := repo.CreateVIP(context.Background(), &VIP{AccountID: "acc-1", FullName: "   "})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("CreateVIP() error = %v, want ErrValidation", err)
	}
	err = repo.CreateVIP(context.Background(), &VIP{FullName: "Ada"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("CreateVIP() without account error = %v, want ErrValidation", err)
	}
}

func TestThreatLifecycle(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()
	v := seedVIP(t, repo, "acc-1", "Ada Lovelace")

	threat := seedThreat(t, repo, "acc-1", v.ID, "twitter", 0.92)
	if threat.Status != StatusActive {
		t.Errorf("Status = %q, want %q", threat.Status, StatusActive)
	}
	if threat.Severity != SeverityCritical {
		t.Errorf("Severity = %s, want %s", threat.Severity, SeverityCritical)
	}

	if err := repo.UpdateThreatStatus(ctx, "acc-1", threat.ID, StatusReviewed); err != nil {
		t.Fatalf("UpdateThreatStatus() error = %v", err)
	}
	threats, err := repo.ListThreats(ctx, "acc-1", ThreatFilter{})
	if err != nil {
		t.Fatalf("ListThreats() error = %v", err)
	}
	if len(threats) != 1 || threats[0].Status != StatusReviewed {
		t.Fatalf("ListThreats() = %+v, want one reviewed threat", threats)
	}

	if err := repo.UpdateThreatStatus(ctx, "acc-1", threat.ID, "escalated"); !errors.Is(err, ErrValidation) {
		t.Errorf("UpdateThreatStatus() unknown status error = %v, want ErrValidation", err)
	}
	if err := repo.UpdateThreatStatus(ctx, "acc-2", threat.ID, StatusDismissed); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateThreatStatus() cross-account error = %v, want ErrNotFound", err)
	}
}

func TestCreateThreatValidation(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()
	v := seedVIP(t, repo, "acc-1", "Ada Lovelace")

	tests := []struct {
		name    string
		threat  ThreatDetection
		wantErr error
	}{
		{name: "missing platform", threat: ThreatDetection{VIPID: v.ID, ThreatType: "impersonation"}, wantErr: ErrValidation},
		{name: "confidence out of range", threat: ThreatDetection{VIPID: v.ID, Platform: "twitter", ThreatType: "impersonation", ConfidenceScore: 1.5}, wantErr: ErrValidation},
		{name: "unknown vip", threat: ThreatDetection{VIPID: "vip-missing", Platform: "twitter", ThreatType: "impersonation"}, wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			threat := tt.threat
			if err := repo.CreateThreat(ctx, "acc-1", &threat); !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateThreat() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestListThreatsFilter(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()
	ada := seedVIP(t, repo, "acc-1", "Ada Lovelace")
	grace := seedVIP(t, repo, "acc-1", "Grace Hopper")

	seedThreat(t, repo, "acc-1", ada.ID, "twitter", 0.9)
	seedThreat(t, repo, "acc-1", grace.ID, "telegram", 0.5)
	dismissed := seedThreat(t, repo, "acc-1", grace.ID, "twitter", 0.7)
	if err := repo.UpdateThreatStatus(ctx, "acc-1", dismissed.ID, StatusDismissed); err != nil {
		t.Fatalf("UpdateThreatStatus() error = %v", err)
	}

	byVIP, err := repo.ListThreats(ctx, "acc-1", ThreatFilter{VIPID: grace.ID})
	if err != nil {
		t.Fatalf("ListThreats() error = %v", err)
	}
	if len(byVIP) != 2 {
		t.Errorf("ListThreats(vip) = %d, want 2", len(byVIP))
	}

	active, err := repo.ListThreats(ctx, "acc-1", ThreatFilter{Status: StatusActive})
	if err != nil {
		t.Fatalf("ListThreats() error = %v", err)
	}
	if len(active) != 2 {
		t.Errorf("ListThreats(active) = %d, want 2", len(active))
	}
}

func TestDeleteVIPCascadesThreats(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()
	v := seedVIP(t, repo, "acc-1", "Ada Lovelace")
	seedThreat(t, repo, "acc-1", v.ID, "twitter", 0.9)

	if err := repo.DeleteVIP(ctx, "acc-1", v.ID); err != nil {
		t.Fatalf("DeleteVIP() error = %v", err)
	}

	threats, err := repo.ListThreats(ctx, "acc-1", ThreatFilter{})
	if err != nil {
		t.Fatalf("ListThreats() error = %v", err)
	}
	if len(threats) != 0 {
		t.Errorf("ListThreats() after delete = %d, want 0", len(threats))
	}
}

func TestCampaignRoundTrip(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()
	v := seedVIP(t, repo, "acc-1", "Ada Lovelace")

	c := &CampaignRecord{
		AccountID:         "acc-1",
		VIPID:             v.ID,
		NetworkName:       "botnet-delta",
		NodeCount:         142,
		CoordinationScore: 0.77,
	}
	if err := repo.CreateCampaign(ctx, c); err != nil {
		t.Fatalf("CreateCampaign() error = %v", err)
	}
	if !strings.HasPrefix(c.ID, "cmp-") {
		t.Errorf("ID = %q, want cmp- prefix", c.ID)
	}

	campaigns, err := repo.ListCampaigns(ctx, "acc-1")
	if err != nil {
		t.Fatalf("ListCampaigns() error = %v", err)
	}
	if len(campaigns) != 1 {
		t.Fatalf("ListCampaigns() = %d, want 1", len(campaigns))
	}
	got := campaigns[0]
	if got.NetworkName != "botnet-delta" || got.NodeCount != 142 {
		t.Errorf("campaign = %+v, want botnet-delta with 142 nodes", got)
	}

	other, err := repo.ListCampaigns(ctx, "acc-2")
	if err != nil {
		t.Fatalf("ListCampaigns() error = %v", err)
	}
	if len(other) != 0 {
		t.Errorf("ListCampaigns(acc-2) = %d, want 0", len(other))
	}
}

func TestStats(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))
	ctx := context.Background()
	ada := seedVIP(t, repo, "acc-1", "Ada Lovelace")
	grace := seedVIP(t, repo, "acc-1", "Grace Hopper")
	seedVIP(t, repo, "acc-2", "Margaret Hamilton")

	seedThreat(t, repo, "acc-1", ada.ID, "twitter", 0.92)
	seedThreat(t, repo, "acc-1", ada.ID, "telegram", 0.85)
	dismissed := seedThreat(t, repo, "acc-1", grace.ID, "twitter", 0.3)
	if err := repo.UpdateThreatStatus(ctx, "acc-1", dismissed.ID, StatusDismissed); err != nil {
		t.Fatalf("UpdateThreatStatus() error = %v", err)
	}

	stats, err := repo.Stats(ctx, "acc-1")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalVIPs != 2 {
		t.Errorf("TotalVIPs = %d, want 2", stats.TotalVIPs)
	}
	if stats.TotalThreats != 3 {
		t.Errorf("TotalThreats = %d, want 3", stats.TotalThreats)
	}
	if stats.ActiveThreats != 2 {
		t.Errorf("ActiveThreats = %d, want 2", stats.ActiveThreats)
	}
	if stats.CriticalCount != 2 {
		t.Errorf("CriticalCount = %d, want 2", stats.CriticalCount)
	}
	if stats.PlatformCounts["twitter"] != 2 || stats.PlatformCounts["telegram"] != 1 {
		t.Errorf("PlatformCounts = %v, want twitter:2 telegram:1", stats.PlatformCounts)
	}
}

func TestStatsEmptyAccount(t *testing.T) {
	repo := NewSQLiteRepository(testDB(t))

	stats, err := repo.Stats(context.Background(), "acc-empty")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalVIPs != 0 || stats.TotalThreats != 0 {
		t.Errorf("Stats() = %+v, want zeroes", stats)
	}
	if stats.PlatformCounts == nil {
		t.Error("PlatformCounts is nil, want empty map")
	}
}

package vip

import "time"

// Threat status values.
const (
	StatusActive    = "active"
	StatusReviewed  = "reviewed"
	StatusDismissed = "dismissed"
)

// Severity is a display band derived from a threat's confidence score.
type Severity string

const (
	// SeverityCritical covers confidence above 0.8.
	SeverityCritical Severity = "critical"

	// SeverityHigh covers confidence above 0.6.
	SeverityHigh Severity = "high"

	// SeverityMedium covers confidence above 0.4.
	SeverityMedium Severity = "medium"

	// SeverityLow covers everything else.
	SeverityLow Severity = "low"
)

// SeverityFor bands a confidence score for display.
func SeverityFor(confidence float64) Severity {
	switch {
	case confidence > 0.8:
		return SeverityCritical
	case confidence > 0.6:
		return SeverityHigh
	case confidence > 0.4:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// VIP is a monitored high-profile target, owned by one account.
type VIP struct {
	ID              string    `json:"id"`
	AccountID       string    `json:"account_id"`
	FullName        string    `json:"full_name"`
	DisplayName     string    `json:"display_name,omitempty"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	Keywords        []string  `json:"keywords,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ThreatDetection is one flagged piece of content targeting a VIP.
type ThreatDetection struct {
	ID              string    `json:"id"`
	VIPID           string    `json:"vip_id"`
	Platform        string    `json:"platform"`
	ThreatType      string    `json:"threat_type"`
	ContentURL      string    `json:"content_url,omitempty"`
	ContentText     string    `json:"content_text,omitempty"`
	ConfidenceScore float64   `json:"confidence_score"`
	Status          string    `json:"status"`
	Severity        Severity  `json:"severity"`
	CreatedAt       time.Time `json:"created_at"`
}

// CampaignRecord describes a coordinated-network observation linked to an
// account and optionally to one of its VIPs.
type CampaignRecord struct {
	ID                string    `json:"id"`
	AccountID         string    `json:"account_id"`
	VIPID             string    `json:"vip_id,omitempty"`
	NetworkName       string    `json:"network_name"`
	NodeCount         int       `json:"node_count"`
	CoordinationScore float64   `json:"coordination_score"`
	FirstSeen         time.Time `json:"first_seen"`
	LastSeen          time.Time `json:"last_seen"`
}

// Stats is the aggregate view the monitoring dashboard renders. Counters
// are computed server-side from the account's threat detections.
type Stats struct {
	TotalVIPs      int            `json:"total_vips"`
	TotalThreats   int            `json:"total_threats"`
	ActiveThreats  int            `json:"active_threats"`
	CriticalCount  int            `json:"critical_count"`
	PlatformCounts map[string]int `json:"platform_counts"`
}

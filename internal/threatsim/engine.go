package threatsim

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/biofusionhq/biofusion-core/internal/infrastructure/config"
	"github.com/biofusionhq/biofusion-core/internal/infrastructure/logging"
	mqttclient "github.com/biofusionhq/biofusion-core/internal/infrastructure/mqtt"
)

// Drift bounds mirror the kiosk dashboard's live tiles: risk wanders in a
// narrow band around its seed, health stays near the top of the scale.
const (
	riskMin = 15.0
	riskMax = 35.0

	healthMin     = 95.0
	healthMax     = 100.0
	healthInitial = 98.0

	// riskDriftSpan and healthDriftSpan size each tick's random step:
	// next = prev + (draw - 0.5) * span.
	riskDriftSpan   = 4.0
	healthDriftSpan = 2.0

	// threatEventChance is the per-tick probability of fabricating a
	// threat event for the feed.
	threatEventChance = 0.15
)

// Risk level thresholds for the dashboard badge.
const (
	riskLevelLowBelow      = 25.0
	riskLevelModerateBelow = 50.0
	riskLevelHighBelow     = 75.0
)

// WebSocket channels the engine broadcasts on.
const (
	ChannelRiskUpdated    = "quantum.risk_updated"
	ChannelThreatDetected = "threat.detected"
	ChannelScanCompleted  = "quantum.scan_completed"
)

// Broadcaster pushes events to connected WebSocket clients.
// Satisfied by the API hub.
type Broadcaster interface {
	Broadcast(channel string, payload any)
}

// Publisher sends events to the MQTT feed. Satisfied by the mqtt client.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// MetricsWriter records simulation metrics. Satisfied by the influxdb
// client. All methods are non-blocking.
type MetricsWriter interface {
	WriteRiskScore(score float64)
	WriteThreatMetric(platform, threatType string, confidence float64)
}

// AlgorithmStatus is one post-quantum algorithm's dashboard row.
type AlgorithmStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Snapshot is the quantum dashboard's current state.
type Snapshot struct {
	RiskScore     float64           `json:"risk_score"`
	RiskLevel     string            `json:"risk_level"`
	SystemHealth  float64           `json:"system_health"`
	ActiveThreats int               `json:"active_threats"`
	Algorithms    []AlgorithmStatus `json:"algorithms"`
	ShorTests     int               `json:"shor_tests"`
	GroverTests   int               `json:"grover_tests"`
	LastScanAt    *time.Time        `json:"last_scan_at,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// ThreatEvent is one fabricated detection pushed to the live feed.
type ThreatEvent struct {
	Platform   string    `json:"platform"`
	ThreatType string    `json:"threat_type"`
	Confidence float64   `json:"confidence"`
	DetectedAt time.Time `json:"detected_at"`
}

var threatPlatforms = []string{"twitter", "telegram", "discord", "darkweb_forum"}

var threatTypes = []string{"impersonation", "credential_phishing", "deepfake", "coordinated_harassment"}

// Engine drives the mock security dashboards: it drifts the quantum risk
// score on a fixed tick, fabricates an occasional threat event, and runs
// on-demand vulnerability scans. Every value it produces is simulated;
// nothing here measures anything real.
type Engine struct {
	cfg    config.SimulationConfig
	stall  time.Duration
	logger *logging.Logger

	broadcaster Broadcaster
	publisher   Publisher
	metrics     MetricsWriter

	mu            sync.Mutex
	rng           *rand.Rand
	risk          float64
	health        float64
	activeThreats int
	shorTests     int
	groverTests   int
	lastScanAt    *time.Time
	updatedAt     time.Time
	scans         map[string]*Scan
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithBroadcaster wires the WebSocket hub.
func WithBroadcaster(b Broadcaster) Option {
	return func(e *Engine) { e.broadcaster = b }
}

// WithPublisher wires the MQTT event feed.
func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithMetrics wires the time-series metrics writer.
func WithMetrics(m MetricsWriter) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithSource replaces the random source; pass a fixed source in tests.
func WithSource(src rand.Source) Option {
	return func(e *Engine) { e.rng = rand.New(src) } //nolint:gosec // simulated metrics, not security material
}

// New creates a dashboard engine seeded at the configured initial risk.
// stall is the force-completion timeout for on-demand scans.
func New(cfg config.SimulationConfig, stall time.Duration, logger *logging.Logger, opts ...Option) *Engine {
	e := &Engine{
		cfg:       cfg,
		stall:     stall,
		logger:    logger,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // simulated metrics, not security material
		risk:      cfg.InitialRisk,
		health:    healthInitial,
		updatedAt: time.Now().UTC(),
		scans:     make(map[string]*Scan),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run drifts the dashboard state until the context is cancelled. Call in
// its own goroutine.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}

// Tick advances the simulation one step: risk and health drift within
// their bands, and occasionally a threat event is fabricated for the feed.
func (e *Engine) Tick() {
	e.mu.Lock()
	e.risk = clamp(e.risk+(e.rng.Float64()-0.5)*riskDriftSpan, riskMin, riskMax)
	e.health = clamp(e.health+(e.rng.Float64()-0.5)*healthDriftSpan, healthMin, healthMax)
	e.updatedAt = time.Now().UTC()

	var event *ThreatEvent
	if e.rng.Float64() < threatEventChance {
		event = &ThreatEvent{
			Platform:   threatPlatforms[e.rng.Intn(len(threatPlatforms))],
			ThreatType: threatTypes[e.rng.Intn(len(threatTypes))],
			Confidence: e.rng.Float64(),
			DetectedAt: e.updatedAt,
		}
		e.activeThreats++
	}
	risk := e.risk
	snapshot := e.snapshotLocked()
	e.mu.Unlock()

	e.emitRisk(risk, snapshot)
	if event != nil {
		e.emitThreat(event)
	}
}

// Snapshot returns the current dashboard state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		RiskScore:     e.risk,
		RiskLevel:     RiskLevel(e.risk),
		SystemHealth:  e.health,
		ActiveThreats: e.activeThreats,
		Algorithms: []AlgorithmStatus{
			{Name: "CRYSTALS-Kyber", Status: "active"},
			{Name: "SPHINCS+", Status: "active"},
			{Name: "Dilithium", Status: "active"},
		},
		ShorTests:   e.shorTests,
		GroverTests: e.groverTests,
		LastScanAt:  e.lastScanAt,
		UpdatedAt:   e.updatedAt,
	}
}

// RiskLevel bands a risk score for the dashboard badge.
func RiskLevel(score float64) string {
	switch {
	case score < riskLevelLowBelow:
		return "LOW"
	case score < riskLevelModerateBelow:
		return "MODERATE"
	case score < riskLevelHighBelow:
		return "HIGH"
	default:
		return "CRITICAL"
	}
}

func (e *Engine) emitRisk(risk float64, snapshot Snapshot) {
	if e.broadcaster != nil {
		e.broadcaster.Broadcast(ChannelRiskUpdated, snapshot)
	}
	if e.metrics != nil {
		e.metrics.WriteRiskScore(risk)
	}
	if e.publisher != nil {
		payload, err := json.Marshal(snapshot)
		if err == nil {
			if err := e.publisher.Publish(mqttclient.Topics{}.QuantumRisk(), payload, 0, false); err != nil {
				e.logger.Debug("risk publish failed", "error", err)
			}
		}
	}
}

func (e *Engine) emitThreat(event *ThreatEvent) {
	if e.broadcaster != nil {
		e.broadcaster.Broadcast(ChannelThreatDetected, event)
	}
	if e.metrics != nil {
		e.metrics.WriteThreatMetric(event.Platform, event.ThreatType, event.Confidence)
	}
	if e.publisher != nil {
		payload, err := json.Marshal(event)
		if err == nil {
			if err := e.publisher.Publish(mqttclient.Topics{}.QuantumEvent("threat_detected"), payload, 0, false); err != nil {
				e.logger.Debug("threat publish failed", "error", err)
			}
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

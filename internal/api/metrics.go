package api

import (
	"net/http"
	"runtime"
	"time"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string          `json:"timestamp"`
	Version       string          `json:"version"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Runtime       RuntimeMetrics  `json:"runtime"`
	WebSocket     WSMetrics       `json:"websocket"`
	MQTT          MQTTMetrics     `json:"mqtt"`
	InfluxDB      InfluxMetrics   `json:"influxdb"`
	Simulation    *SimMetrics     `json:"simulation,omitempty"`
	Profile       ProfileMetrics  `json:"profile"`
	Database      DatabaseMetrics `json:"database"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// MQTTMetrics contains MQTT client statistics.
type MQTTMetrics struct {
	Connected bool `json:"connected"`
}

// InfluxMetrics contains InfluxDB client statistics.
type InfluxMetrics struct {
	Connected bool `json:"connected"`
}

// SimMetrics contains simulation engine statistics.
type SimMetrics struct {
	RiskScore     float64 `json:"risk_score"`
	RiskLevel     string  `json:"risk_level"`
	ActiveThreats int     `json:"active_threats"`
	ShorTests     int     `json:"shor_tests"`
	GroverTests   int     `json:"grover_tests"`
}

// ProfileMetrics contains session store statistics.
type ProfileMetrics struct {
	Registered         bool   `json:"registered"`
	Mode               string `json:"mode,omitempty"`
	SampleCount        int    `json:"sample_count"`
	EnrollmentComplete bool   `json:"enrollment_complete"`
}

// DatabaseMetrics contains database connection pool statistics.
type DatabaseMetrics struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
}

// handleMetrics returns comprehensive system metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	// Collect runtime stats
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	// Build metrics response
	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
	}

	if s.hub != nil {
		metrics.WebSocket = WSMetrics{
			ConnectedClients: s.hub.ClientCount(),
		}
	}

	// MQTT metrics (if available)
	if s.mqtt != nil {
		metrics.MQTT = MQTTMetrics{
			Connected: s.mqtt.IsConnected(),
		}
	}

	// InfluxDB metrics (if available)
	if s.influx != nil {
		metrics.InfluxDB = InfluxMetrics{
			Connected: s.influx.IsConnected(),
		}
	}

	// Simulation engine metrics (if running)
	if s.sim != nil {
		snap := s.sim.Snapshot()
		metrics.Simulation = &SimMetrics{
			RiskScore:     snap.RiskScore,
			RiskLevel:     snap.RiskLevel,
			ActiveThreats: snap.ActiveThreats,
			ShorTests:     snap.ShorTests,
			GroverTests:   snap.GroverTests,
		}
	}

	// Session store stats
	if p := s.store.Current(); p != nil {
		metrics.Profile = ProfileMetrics{
			Registered:         true,
			Mode:               string(s.store.Mode()),
			SampleCount:        len(p.Samples),
			EnrollmentComplete: p.EnrollmentComplete,
		}
	}

	// Database stats (if available)
	if s.db != nil {
		dbStats := s.db.Stats()
		metrics.Database = DatabaseMetrics{
			OpenConnections: dbStats.OpenConnections,
			InUse:           dbStats.InUse,
			Idle:            dbStats.Idle,
			WaitCount:       dbStats.WaitCount,
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}

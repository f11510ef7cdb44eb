package influxdb_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/biofusionhq/biofusion-core/internal/infrastructure/config"
	"github.com/biofusionhq/biofusion-core/internal/infrastructure/influxdb"
)

// testConfig returns a configuration for the local dev InfluxDB.
func testConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "biofusion-dev-token",
		Org:           "biofusion",
		Bucket:        "metrics",
		BatchSize:     100,
		FlushInterval: 1, // 1 second for faster test feedback
	}
}

// skipIfNoInfluxDB skips the test if InfluxDB is not running.
func skipIfNoInfluxDB(t *testing.T) *influxdb.Client {
	t.Helper()
	client, err := influxdb.Connect(testConfig())
	if err != nil {
		t.Skip("InfluxDB not available, skipping integration test")
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestConnectDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	_, err := influxdb.Connect(cfg)
	if !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnectInvalidURL(t *testing.T) {
	cfg := testConfig()
	cfg.URL = "http://127.0.0.1:59999" // Non-existent port

	_, err := influxdb.Connect(cfg)
	if !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestConnect(t *testing.T) {
	client := skipIfNoInfluxDB(t)

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect()")
	}
}

func TestHealthCheck(t *testing.T) {
	client := skipIfNoInfluxDB(t)

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestDomainWriters(t *testing.T) {
	client := skipIfNoInfluxDB(t)

	// Writes are non-blocking; this verifies the write path does not
	// panic or error synchronously.
	client.WriteVerificationOutcome("face", "verification", true)
	client.WriteVerificationOutcome("gesture", "enrollment", false)
	client.WriteCaptureMetric("voice", 4.2)
	client.WriteRiskScore(23)
	client.WriteThreatMetric("twitter", "impersonation", 0.92)
	client.WritePoint("system_stats",
		map[string]string{"host": "station-01"},
		map[string]interface{}{"goroutines": 12})
	client.WritePointWithTime("quantum_risk", nil,
		map[string]interface{}{"score": 28.0},
		time.Now().Add(-time.Minute))

	client.Flush()
}

func TestWritersNoopWhenDisconnected(t *testing.T) {
	client := skipIfNoInfluxDB(t)
	if err := client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Writes after Close must be silent no-ops.
	client.WriteVerificationOutcome("face", "verification", true)
	client.WriteRiskScore(23)
	client.Flush()

	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
}

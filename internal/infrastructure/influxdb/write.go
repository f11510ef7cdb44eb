package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteVerificationOutcome records one judge decision.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - modality: The biometric modality (face, voice, gesture, body)
//   - path: The capture context (enrollment, verification)
//   - accepted: Whether the judge accepted the sample
//
// Example:
//
//	client.WriteVerificationOutcome("face", "verification", true)
func (c *Client) WriteVerificationOutcome(modality, path string, accepted bool) {
	if !c.IsConnected() {
		return
	}

	accept := 0
	if accepted {
		accept = 1
	}

	point := write.NewPoint(
		"verification_outcomes",
		map[string]string{
			"modality": modality,
			"path":     path,
		},
		map[string]interface{}{
			"accepted": accept,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteCaptureMetric records how long one capture step took.
//
// Parameters:
//   - modality: The biometric modality
//   - durationSeconds: Wall-clock duration of the capture
func (c *Client) WriteCaptureMetric(modality string, durationSeconds float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"capture_durations",
		map[string]string{
			"modality": modality,
		},
		map[string]interface{}{
			"seconds": durationSeconds,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteRiskScore records the simulation loop's current quantum risk score.
//
// Parameters:
//   - score: The risk score on the 0-100 dashboard scale
func (c *Client) WriteRiskScore(score float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"quantum_risk",
		nil,
		map[string]interface{}{
			"score": score,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteThreatMetric records a fabricated threat detection's confidence.
//
// Parameters:
//   - platform: The platform the detection was flagged on
//   - threatType: The detection category
//   - confidence: Confidence score in [0, 1]
func (c *Client) WriteThreatMetric(platform, threatType string, confidence float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"threat_detections",
		map[string]string{
			"platform":    platform,
			"threat_type": threatType,
		},
		map[string]interface{}{
			"confidence": confidence,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "station-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}

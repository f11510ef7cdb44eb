// Package vip stores the monitoring page's data: high-profile targets,
// threat detections flagged against them, and coordinated-network
// campaign records. Every operation is scoped to an opaque account ID so
// one account never reads another's records. Severity is a display band
// derived from each detection's confidence score; the dashboard's header
// counters are aggregated server-side by Stats.
package vip

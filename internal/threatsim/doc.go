// Package threatsim drives the demo security dashboards.
//
// The engine drifts a quantum risk score and a system health figure on a
// fixed tick, fabricates an occasional threat event for the live feed,
// and runs on-demand vulnerability scans that always produce the same
// canned findings. Events fan out to the WebSocket hub, the MQTT feed,
// and the time-series store through narrow interfaces so any of the
// three can be absent.
//
// Everything in this package is simulation. The values exist to make the
// kiosk dashboards move; they measure nothing.
package threatsim

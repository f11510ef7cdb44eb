// Package mqtt provides MQTT client connectivity for BioFusion Core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// BioFusion uses MQTT as an outbound event feed: capture completions,
// verification outcomes, and the simulated threat stream are published so
// kiosk displays and monitoring consoles can follow station activity
// without polling the HTTP API. The daemon never depends on inbound MQTT
// traffic; the feed is optional and the station runs fine without a
// broker (mqtt.enabled: false).
//
//	BioFusion Core → MQTT Broker → Displays / Consoles
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.VerificationOutcome("face", "prf-1a2b3c4d")
//	client.Publish(topic, []byte(`{"accepted":true}`), 1, false)
package mqtt

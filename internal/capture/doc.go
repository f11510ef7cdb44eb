// Package capture provides the simulated biometric capture pipeline for
// the demo station.
//
// Four adapters model the station's hardware steps: face (camera frame
// plus descriptor extraction after a countdown), voice (microphone
// recording with a minimum-duration gate and an auto-stop window),
// gesture (camera hold producing hand landmarks for a named gesture),
// and body (camera sequence cycling through guided poses). Every adapter
// acquires its device for the duration of one capture and releases it on
// completion or cancellation; an abandoned capture never yields a
// partial sample and never leaks an active track.
//
// All payloads are fabricated from a seeded random source. No real
// sensor I/O occurs anywhere in this package; the Station assembles the
// adapters from configuration and resolves platform capabilities once
// at construction.
package capture

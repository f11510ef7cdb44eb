// Package biometric defines the modality vocabulary shared across the
// capture, profile, judge, and flow packages: the four capture categories,
// their sample payload shapes, the fixed gesture label set, and the pose
// sequence the body adapter cycles through.
//
// Nothing in this package performs biometric matching. Samples are opaque
// payloads; the acceptance rules live in the judge package and are
// explicitly simulated.
package biometric

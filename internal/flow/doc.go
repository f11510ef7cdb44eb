// Package flow enforces the station's linear capture order.
//
// The flow is a fixed sequence of steps, face through body, ending at the
// terminal dashboard. While enrolling, a step may only open once every
// earlier modality has a stored sample; the gate redirects to the earliest
// step still owed. While verifying, the user walks their registered
// modalities in sequence order, and clearing the last one marks the
// profile authenticated. Rejections never move the position, so a failed
// step is always retryable in place.
package flow

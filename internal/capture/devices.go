package capture

import (
	"context"
	"sync"
)

// MediaKind identifies a class of capture hardware.
type MediaKind string

const (
	// KindCamera is a video capture device.
	KindCamera MediaKind = "camera"

	// KindMicrophone is an audio capture device.
	KindMicrophone MediaKind = "microphone"
)

// MediaDevice grants exclusive access to a capture device for the duration
// of one capture step. Implementations must fail with ErrPermissionDenied
// when access is refused and must account for every open stream so release
// can be verified.
type MediaDevice interface {
	// Acquire opens a stream. The caller owns the stream until Close.
	Acquire(ctx context.Context) (*Stream, error)

	// Kind reports the device class.
	Kind() MediaKind

	// ActiveTracks reports the number of currently open tracks across all
	// streams. Zero means the device is fully released.
	ActiveTracks() int
}

// Stream is one open capture session on a device. Closing is idempotent.
type Stream struct {
	device *SimulatedDevice
	tracks int

	mu     sync.Mutex
	closed bool
}

// Close releases the stream's tracks. It must be called on step exit,
// completion, or navigation away, regardless of outcome.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.device.release(s.tracks)
}

// Closed reports whether the stream has been released.
func (s *Stream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// SimulatedDevice is an in-process stand-in for a camera or microphone.
// It models the two behaviours the flow depends on: permission refusal
// and track accounting.
type SimulatedDevice struct {
	kind   MediaKind
	tracks int

	mu     sync.Mutex
	denied bool
	active int
	opens  int
}

// NewSimulatedCamera creates a camera stand-in with one video track.
func NewSimulatedCamera() *SimulatedDevice {
	return &SimulatedDevice{kind: KindCamera, tracks: 1}
}

// NewSimulatedMicrophone creates a microphone stand-in with one audio track.
func NewSimulatedMicrophone() *SimulatedDevice {
	return &SimulatedDevice{kind: KindMicrophone, tracks: 1}
}

// Acquire opens a stream, or fails with ErrPermissionDenied when access
// has been refused via SetDenied.
func (d *SimulatedDevice) Acquire(ctx context.Context) (*Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.denied {
		return nil, ErrPermissionDenied
	}

	d.active += d.tracks
	d.opens++
	return &Stream{device: d, tracks: d.tracks}, nil
}

// Kind reports the device class.
func (d *SimulatedDevice) Kind() MediaKind {
	return d.kind
}

// ActiveTracks reports the number of currently open tracks.
func (d *SimulatedDevice) ActiveTracks() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Opens reports how many times the device has been acquired.
func (d *SimulatedDevice) Opens() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens
}

// SetDenied switches permission refusal on or off. Refusal affects
// subsequent Acquire calls only; open streams are unaffected.
func (d *SimulatedDevice) SetDenied(denied bool) {
	d.mu.Lock()
	d.denied = denied
	d.mu.Unlock()
}

func (d *SimulatedDevice) release(tracks int) {
	d.mu.Lock()
	d.active -= tracks
	d.mu.Unlock()
}

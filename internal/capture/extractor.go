package capture

import (
	"context"
	"math/rand"
	"sync"
)

// Frame is a single captured camera frame. The contents are opaque; the
// extractor is the only consumer.
type Frame struct {
	Width  int
	Height int
}

// Extractor turns a camera frame into a face feature descriptor. The real
// system delegates this to an external face-detection library loaded from
// static model assets; it is treated as an opaque collaborator that either
// returns a fixed-length numeric vector or fails with ErrNoFaceDetected.
type Extractor interface {
	ExtractDescriptor(ctx context.Context, frame Frame) ([]float64, error)
}

// SimulatedExtractor fabricates descriptors in place of the external
// face-detection library.
type SimulatedExtractor struct {
	length int

	mu       sync.Mutex
	rng      *rand.Rand
	failNext bool
}

// NewSimulatedExtractor creates an extractor producing descriptors of the
// given length from the given source.
func NewSimulatedExtractor(length int, src rand.Source) *SimulatedExtractor {
	return &SimulatedExtractor{
		length: length,
		rng:    rand.New(src), //nolint:gosec // fabricated descriptors, not security material
	}
}

// ExtractDescriptor returns a fabricated descriptor, or ErrNoFaceDetected
// if FailNext was armed.
func (e *SimulatedExtractor) ExtractDescriptor(ctx context.Context, _ Frame) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.failNext {
		e.failNext = false
		return nil, ErrNoFaceDetected
	}

	descriptor := make([]float64, e.length)
	for i := range descriptor {
		descriptor[i] = e.rng.Float64()*2 - 1
	}
	return descriptor, nil
}

// FailNext arms a one-shot detection failure for the next extraction.
func (e *SimulatedExtractor) FailNext() {
	e.mu.Lock()
	e.failNext = true
	e.mu.Unlock()
}

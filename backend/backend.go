package backend

import (
	"errors"

	"github.com/gogpu/rendercmd"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when no registered backend can be created.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrClosed is returned when a backend is used after Close.
	ErrClosed = errors.New("backend: closed")
)

// Well-known backend names.
const (
	NameWGPU  = "wgpu"
	NameTrace = "trace"
)

// Backend is a RenderContext with a lifecycle.
//
// Commands dispatched by rendercmd.Queue.Execute are recorded by the
// backend; Flush hands them to the device. Backends are not required to be
// safe for concurrent use: one goroutine flushes a queue onto a backend.
type Backend interface {
	rendercmd.RenderContext

	// Name returns the backend identifier (e.g., "wgpu", "trace").
	Name() string

	// Flush submits all work recorded since the previous Flush.
	// It returns the first error the backend hit while recording or submitting.
	Flush() error

	// Close flushes, waits for outstanding work, and releases the backend.
	// The backend must not be used after Close.
	Close() error
}

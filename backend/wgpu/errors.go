package wgpu

import "errors"

// Package errors for the wgpu backend.
var (
	// ErrNilDevice is returned by New when the HAL device is nil.
	ErrNilDevice = errors.New("wgpu: nil device")

	// ErrNilQueue is returned by New when the HAL queue is nil.
	ErrNilQueue = errors.New("wgpu: nil queue")

	// ErrNoAdapter is returned by Open when no registered HAL backend
	// produced a usable adapter.
	ErrNoAdapter = errors.New("wgpu: no GPU adapter available")

	// ErrDriverPanic is returned when a HAL backend panics while Open
	// creates its instance or device.
	ErrDriverPanic = errors.New("wgpu: driver panicked")

	// ErrUnknownResource is recorded when a command names a handle the
	// context does not own, or one that has already been removed.
	ErrUnknownResource = errors.New("wgpu: unknown resource")

	// ErrCopyOutOfBounds is recorded when a buffer copy reaches past the
	// end of its source or destination.
	ErrCopyOutOfBounds = errors.New("wgpu: copy out of bounds")
)

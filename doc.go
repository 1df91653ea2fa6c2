// Package rendercmd records GPU transfer and lifecycle work as commands and
// replays it later onto a device-backed context.
//
// # Overview
//
// Rendering code decides what GPU work to do; a RenderContext does it.
// rendercmd sits between the two. Producers record commands into a Queue,
// from as many goroutines as they like, and a single flush later replays
// every pending command onto a RenderContext in recording order.
//
// # Quick Start
//
//	q := rendercmd.NewQueue()
//
//	// Any goroutine, any clone of q:
//	q.CopyBufferToBuffer(staging, 0, vertices, 0, 4096)
//	q.FreeBuffer(staging)
//
//	// Flush, once per frame:
//	q.Execute(ctx)
//
// # Commands
//
// The command set is closed:
//
//   - CopyBufferToBufferCommand: buffer to buffer copy
//   - CopyBufferToTextureCommand: buffer to texture subresource copy
//   - FreeBufferCommand: buffer release
//
// Commands carry opaque [resource.RenderResource] handles and never resolve
// them. Arguments are not validated here; that is the backend's job.
//
// # Sharing
//
// A Queue is a handle. Copies and Clone share storage, so per-node recorders
// can each hold their own handle and still feed the same flush.
//
// # Backends
//
// Execute accepts any [RenderContext]. This module ships two:
//
//   - backend/wgpu: records into a gogpu/wgpu HAL command encoder and submits
//   - backend/trace: records and logs every call, for tests and debugging
//
// Named backends are created through the backend registry:
//
//	import _ "github.com/gogpu/rendercmd/backend/trace"
//
//	b, err := backend.New("trace")
//	q.Execute(b)
//	err = b.Flush()
//
// # Thread Safety
//
// Queue methods are safe for concurrent use. Execute holds the queue lock
// only while detaching pending commands; the RenderContext runs unlocked.
package rendercmd

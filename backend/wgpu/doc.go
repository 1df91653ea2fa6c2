// Package wgpu executes rendercmd commands on a GPU through the gogpu/wgpu
// hardware abstraction layer.
//
// A Context owns a table of HAL buffers and textures addressed by
// resource.RenderResource handles. Queue.Execute records copies into a HAL
// command encoder; Flush submits them.
//
// # Opening a Device
//
// Open picks the best registered HAL backend. HAL backends register
// themselves when imported:
//
//	import (
//	    _ "github.com/gogpu/wgpu/hal/allbackends"
//
//	    "github.com/gogpu/rendercmd/backend/wgpu"
//	)
//
//	ctx, err := wgpu.Open()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Close()
//
// Applications that already have a device pass it to New instead and keep
// ownership of it.
//
// # Recording and Submitting
//
//	staging, _ := ctx.CreateBuffer(&hal.BufferDescriptor{
//	    Size:  4096,
//	    Usage: gputypes.BufferUsageCopySrc | gputypes.BufferUsageMapWrite,
//	})
//	vertices, _ := ctx.CreateBuffer(&hal.BufferDescriptor{
//	    Size:  4096,
//	    Usage: gputypes.BufferUsageCopyDst | gputypes.BufferUsageVertex,
//	})
//
//	q.CopyBufferToBuffer(staging, 0, vertices, 0, 4096)
//	q.FreeBuffer(staging)
//	q.Execute(ctx)
//	if err := ctx.Flush(); err != nil {
//	    log.Printf("flush: %v", err)
//	}
//
// The staging buffer above is removed from the handle table during
// Execute, but the HAL buffer survives until the submitted copy completes.
// Call Maintain once per frame, or rely on the next Flush, to reclaim it.
//
// # Errors
//
// RenderContext methods have no error return. Problems found while
// recording are kept and reported by the next Flush:
//
//   - ErrUnknownResource: a handle that was never created or already removed
//   - ErrCopyOutOfBounds: a copy range outside its buffer or texture
//   - backend.ErrClosed: a command recorded after Close
//
// # Registration
//
// Importing this package registers it with the backend registry as
// backend.NameWGPU. The registered factory calls Open with default options.
package wgpu

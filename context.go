package rendercmd

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/rendercmd/resource"
)

// RenderContext is the device-facing surface a Queue replays commands onto.
//
// Implementations own the real GPU objects behind each handle. The methods
// have no error return: how a backend reports a bad handle or a device
// failure is up to the backend (see backend/wgpu for a sticky error).
type RenderContext interface {
	// CopyBufferToBuffer copies size bytes from src at srcOffset to dst at dstOffset.
	CopyBufferToBuffer(
		src resource.RenderResource, srcOffset uint64,
		dst resource.RenderResource, dstOffset uint64,
		size uint64,
	)

	// CopyBufferToTexture copies rows of srcBytesPerRow bytes from src into
	// the given mip level and array layer of dst.
	CopyBufferToTexture(
		src resource.RenderResource, srcOffset uint64, srcBytesPerRow uint32,
		dst resource.RenderResource, dstOrigin gputypes.Origin3D,
		dstMipLevel, dstArrayLayer uint32,
		size gputypes.Extent3D,
	)

	// Resources returns the resource manager of this context.
	Resources() ResourceManager
}

// ResourceManager releases GPU resources named by handles.
type ResourceManager interface {
	// RemoveBuffer releases the buffer named by h.
	RemoveBuffer(h resource.RenderResource)
}

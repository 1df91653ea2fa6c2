package trace

import (
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rendercmd"
	"github.com/gogpu/rendercmd/backend"
	"github.com/gogpu/rendercmd/resource"
)

func init() {
	backend.Register(backend.NameTrace, func() (backend.Backend, error) {
		return New(), nil
	})
}

// Call is one recorded RenderContext call.
type Call struct {
	// Op identifies the operation.
	Op rendercmd.CommandType

	// Command holds the arguments the call was made with.
	Command rendercmd.Command
}

// Context records every call it receives.
//
// Context is safe for concurrent use.
type Context struct {
	mu      sync.Mutex
	calls   []Call
	flushes int
	closed  bool
}

// New creates an empty trace context.
func New() *Context {
	return &Context{}
}

// Name returns backend.NameTrace.
func (c *Context) Name() string { return backend.NameTrace }

// CopyBufferToBuffer records a buffer to buffer copy.
func (c *Context) CopyBufferToBuffer(src resource.RenderResource, srcOffset uint64, dst resource.RenderResource, dstOffset, size uint64) {
	c.record(rendercmd.CopyBufferToBufferCommand{
		SourceBuffer:      src,
		SourceOffset:      srcOffset,
		DestinationBuffer: dst,
		DestinationOffset: dstOffset,
		Size:              size,
	})
}

// CopyBufferToTexture records a buffer to texture copy.
func (c *Context) CopyBufferToTexture(
	src resource.RenderResource, srcOffset uint64, srcBytesPerRow uint32,
	dst resource.RenderResource, dstOrigin gputypes.Origin3D, dstMipLevel, dstArrayLayer uint32,
	size gputypes.Extent3D,
) {
	c.record(rendercmd.CopyBufferToTextureCommand{
		SourceBuffer:          src,
		SourceOffset:          srcOffset,
		SourceBytesPerRow:     srcBytesPerRow,
		DestinationTexture:    dst,
		DestinationOrigin:     dstOrigin,
		DestinationMipLevel:   dstMipLevel,
		DestinationArrayLayer: dstArrayLayer,
		Size:                  size,
	})
}

// Resources returns the context itself; buffer removals are recorded like
// any other call.
func (c *Context) Resources() rendercmd.ResourceManager { return c }

// RemoveBuffer records a buffer release.
func (c *Context) RemoveBuffer(h resource.RenderResource) {
	c.record(rendercmd.FreeBufferCommand{Buffer: h})
}

func (c *Context) record(cmd rendercmd.Command) {
	rendercmd.Logger().Debug("trace: call", "op", cmd.Type().String(), "command", cmd)

	c.mu.Lock()
	c.calls = append(c.calls, Call{Op: cmd.Type(), Command: cmd})
	c.mu.Unlock()
}

// Calls returns a copy of the recorded calls in the order they were made.
func (c *Context) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// Len returns the number of recorded calls.
func (c *Context) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// Reset discards the recorded calls.
func (c *Context) Reset() {
	c.mu.Lock()
	c.calls = c.calls[:0]
	c.mu.Unlock()
}

// Flushes returns how many times Flush has succeeded.
func (c *Context) Flushes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushes
}

// Flush logs the number of calls recorded so far. It returns
// backend.ErrClosed after Close.
func (c *Context) Flush() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return backend.ErrClosed
	}
	c.flushes++
	n := len(c.calls)
	c.mu.Unlock()

	rendercmd.Logger().Debug("trace: flush", "calls", n)
	return nil
}

// Close marks the context closed. Recorded calls stay readable.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return backend.ErrClosed
	}
	c.closed = true
	return nil
}

var _ backend.Backend = (*Context)(nil)

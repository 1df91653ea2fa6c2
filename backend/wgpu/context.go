package wgpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendercmd"
	"github.com/gogpu/rendercmd/backend"
	"github.com/gogpu/rendercmd/resource"
)

// buffer is a HAL buffer owned by a Context.
type buffer struct {
	raw  hal.Buffer
	size uint64
}

// texture is a HAL texture owned by a Context, with the usage state the
// context last transitioned it to.
type texture struct {
	raw    hal.Texture
	mips   uint32
	layers uint32
	usage  gputypes.TextureUsage
}

// release is a HAL object waiting for the GPU before it can be destroyed.
type release struct {
	buffer  hal.Buffer
	texture hal.Texture
}

// usageChange is a texture transition recorded into the current encoder.
type usageChange struct {
	texture *texture
	old     gputypes.TextureUsage
}

// submission tracks one queue submission until the GPU completes it.
type submission struct {
	index    uint64
	encoder  hal.CommandEncoder
	cmdBuf   hal.CommandBuffer
	releases []release
}

// Context records rendercmd commands into a HAL command encoder.
//
// Copies are recorded lazily into one encoder per Flush. Buffers removed
// through Resources().RemoveBuffer disappear from the handle table at once,
// but their HAL objects are destroyed only after every submission recorded
// before the removal has completed on the GPU.
//
// Errors hit while recording (unknown handles, out of bounds copies, encoder
// failures) do not interrupt a queue flush. The first one is kept and
// returned by the next Flush.
//
// Context is safe for concurrent use.
type Context struct {
	device   hal.Device
	queue    hal.Queue
	instance hal.Instance
	owned    bool
	info     GPUInfo
	opts     options

	buffers  *resource.Table[*buffer]
	textures *resource.Table[*texture]

	mu            sync.Mutex
	encoder       hal.CommandEncoder
	recorded      int
	transitions   []usageChange
	pending       []release
	inflight      []submission
	lastSubmitted uint64
	err           error
	closed        bool
}

// New creates a Context on an existing HAL device and queue.
// The caller keeps ownership of the device; Close does not destroy it.
func New(device hal.Device, queue hal.Queue, opts ...Option) (*Context, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if queue == nil {
		return nil, ErrNilQueue
	}
	return newContext(device, queue, newOptions(opts)), nil
}

func newContext(device hal.Device, queue hal.Queue, o options) *Context {
	return &Context{
		device:   device,
		queue:    queue,
		opts:     o,
		buffers:  resource.NewTable[*buffer](),
		textures: resource.NewTable[*texture](),
	}
}

// Name returns backend.NameWGPU.
func (c *Context) Name() string { return backend.NameWGPU }

// Info describes the GPU the context opened. It is zero for contexts
// created with New.
func (c *Context) Info() GPUInfo { return c.info }

// Device returns the underlying HAL device.
func (c *Context) Device() hal.Device { return c.device }

// Queue returns the underlying HAL queue.
func (c *Context) Queue() hal.Queue { return c.queue }

// CreateBuffer creates a HAL buffer and returns its handle.
func (c *Context) CreateBuffer(desc *hal.BufferDescriptor) (resource.RenderResource, error) {
	if desc == nil {
		return resource.RenderResource{}, errors.New("wgpu: nil buffer descriptor")
	}
	if err := c.checkOpen(); err != nil {
		return resource.RenderResource{}, err
	}
	d := *desc
	if d.Label == "" {
		d.Label = c.opts.label
	}
	raw, err := c.device.CreateBuffer(&d)
	if err != nil {
		return resource.RenderResource{}, fmt.Errorf("wgpu: create buffer %q: %w", d.Label, err)
	}
	return c.buffers.Insert(&buffer{raw: raw, size: d.Size}), nil
}

// CreateTexture creates a HAL texture and returns its handle.
func (c *Context) CreateTexture(desc *hal.TextureDescriptor) (resource.RenderResource, error) {
	if desc == nil {
		return resource.RenderResource{}, errors.New("wgpu: nil texture descriptor")
	}
	if err := c.checkOpen(); err != nil {
		return resource.RenderResource{}, err
	}
	d := *desc
	if d.Label == "" {
		d.Label = c.opts.label
	}
	if d.MipLevelCount == 0 {
		d.MipLevelCount = 1
	}
	if d.SampleCount == 0 {
		d.SampleCount = 1
	}
	raw, err := c.device.CreateTexture(&d)
	if err != nil {
		return resource.RenderResource{}, fmt.Errorf("wgpu: create texture %q: %w", d.Label, err)
	}

	layers := d.Size.DepthOrArrayLayers
	if d.Dimension == gputypes.TextureDimension3D || layers == 0 {
		layers = 1
	}
	return c.textures.Insert(&texture{raw: raw, mips: d.MipLevelCount, layers: layers}), nil
}

// Buffer returns the HAL buffer behind h.
func (c *Context) Buffer(h resource.RenderResource) (hal.Buffer, bool) {
	b, ok := c.buffers.Get(h)
	if !ok {
		return nil, false
	}
	return b.raw, true
}

// Texture returns the HAL texture behind h.
func (c *Context) Texture(h resource.RenderResource) (hal.Texture, bool) {
	t, ok := c.textures.Get(h)
	if !ok {
		return nil, false
	}
	return t.raw, true
}

// WriteBuffer writes data into the buffer behind h through the queue.
func (c *Context) WriteBuffer(h resource.RenderResource, offset uint64, data []byte) error {
	b, ok := c.buffers.Get(h)
	if !ok {
		return fmt.Errorf("%w: buffer %v", ErrUnknownResource, h)
	}
	if !inBounds(offset, uint64(len(data)), b.size) {
		return fmt.Errorf("%w: write of %d bytes at %d into buffer %v of %d bytes",
			ErrCopyOutOfBounds, len(data), offset, h, b.size)
	}
	if err := c.queue.WriteBuffer(b.raw, offset, data); err != nil {
		return fmt.Errorf("wgpu: write buffer %v: %w", h, err)
	}
	return nil
}

// RemoveTexture releases the texture behind h once the GPU is done with it.
func (c *Context) RemoveTexture(h resource.RenderResource) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.textures.Remove(h)
	if !ok {
		return fmt.Errorf("%w: texture %v", ErrUnknownResource, h)
	}
	c.pending = append(c.pending, release{texture: t.raw})
	return nil
}

// Resources returns the context itself.
func (c *Context) Resources() rendercmd.ResourceManager { return c }

// RemoveBuffer removes the buffer behind h. The HAL buffer is destroyed
// after all work submitted or recorded so far has completed.
func (c *Context) RemoveBuffer(h resource.RenderResource) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.buffers.Remove(h)
	if !ok {
		c.fail(fmt.Errorf("%w: free of buffer %v", ErrUnknownResource, h))
		return
	}
	c.pending = append(c.pending, release{buffer: b.raw})
}

// CopyBufferToBuffer records a buffer to buffer copy.
func (c *Context) CopyBufferToBuffer(src resource.RenderResource, srcOffset uint64, dst resource.RenderResource, dstOffset, size uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.buffers.Get(src)
	if !ok {
		c.fail(fmt.Errorf("%w: copy source buffer %v", ErrUnknownResource, src))
		return
	}
	d, ok := c.buffers.Get(dst)
	if !ok {
		c.fail(fmt.Errorf("%w: copy destination buffer %v", ErrUnknownResource, dst))
		return
	}
	if !inBounds(srcOffset, size, s.size) || !inBounds(dstOffset, size, d.size) {
		c.fail(fmt.Errorf("%w: %d bytes from %v+%d to %v+%d", ErrCopyOutOfBounds, size, src, srcOffset, dst, dstOffset))
		return
	}
	if !c.begin() {
		return
	}

	c.encoder.CopyBufferToBuffer(s.raw, d.raw, []hal.BufferCopy{{
		SrcOffset: srcOffset,
		DstOffset: dstOffset,
		Size:      size,
	}})
	c.recorded++
}

// CopyBufferToTexture records a buffer to texture copy. The destination
// origin's Z is offset by dstArrayLayer, which is how HAL addresses layers
// of 2D array textures.
func (c *Context) CopyBufferToTexture(
	src resource.RenderResource, srcOffset uint64, srcBytesPerRow uint32,
	dst resource.RenderResource, dstOrigin gputypes.Origin3D, dstMipLevel, dstArrayLayer uint32,
	size gputypes.Extent3D,
) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.buffers.Get(src)
	if !ok {
		c.fail(fmt.Errorf("%w: copy source buffer %v", ErrUnknownResource, src))
		return
	}
	t, ok := c.textures.Get(dst)
	if !ok {
		c.fail(fmt.Errorf("%w: copy destination texture %v", ErrUnknownResource, dst))
		return
	}
	if srcOffset > s.size || dstMipLevel >= t.mips || dstArrayLayer >= t.layers {
		c.fail(fmt.Errorf("%w: buffer %v+%d to texture %v mip %d layer %d",
			ErrCopyOutOfBounds, src, srcOffset, dst, dstMipLevel, dstArrayLayer))
		return
	}
	if !c.begin() {
		return
	}

	if t.usage != gputypes.TextureUsageCopyDst {
		c.encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: t.raw,
			Range: hal.TextureRange{
				Aspect:          gputypes.TextureAspectAll,
				MipLevelCount:   t.mips,
				ArrayLayerCount: t.layers,
			},
			Usage: hal.TextureUsageTransition{
				OldUsage: t.usage,
				NewUsage: gputypes.TextureUsageCopyDst,
			},
		}})
		c.transitions = append(c.transitions, usageChange{texture: t, old: t.usage})
		t.usage = gputypes.TextureUsageCopyDst
	}

	c.encoder.CopyBufferToTexture(s.raw, t.raw, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{
			Offset:       srcOffset,
			BytesPerRow:  srcBytesPerRow,
			RowsPerImage: size.Height,
		},
		TextureBase: hal.ImageCopyTexture{
			Texture:  t.raw,
			MipLevel: dstMipLevel,
			Origin: hal.Origin3D{
				X: dstOrigin.X,
				Y: dstOrigin.Y,
				Z: dstOrigin.Z + dstArrayLayer,
			},
			Aspect: gputypes.TextureAspectAll,
		},
		Size: hal.Extent3D{
			Width:              size.Width,
			Height:             size.Height,
			DepthOrArrayLayers: size.DepthOrArrayLayers,
		},
	}})
	c.recorded++
}

// begin makes sure an encoder is recording. c.mu must be held.
func (c *Context) begin() bool {
	if c.closed {
		c.fail(backend.ErrClosed)
		return false
	}
	if c.encoder != nil {
		return true
	}
	enc, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: c.opts.label})
	if err != nil {
		c.fail(fmt.Errorf("wgpu: create command encoder: %w", err))
		return false
	}
	if err := enc.BeginEncoding(c.opts.label); err != nil {
		enc.Destroy()
		c.fail(fmt.Errorf("wgpu: begin encoding: %w", err))
		return false
	}
	c.encoder = enc
	return true
}

// fail records err if no earlier error is pending. c.mu must be held.
func (c *Context) fail(err error) {
	c.opts.log().Warn("wgpu: command dropped", "err", err)
	if c.err == nil {
		c.err = err
	}
}

// Err returns the error that the next Flush will report, if any.
func (c *Context) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Context) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return backend.ErrClosed
	}
	return nil
}

// inBounds reports whether [offset, offset+n) lies within a resource of
// the given size, without overflowing.
func inBounds(offset, n, size uint64) bool {
	return offset <= size && n <= size-offset
}

var _ backend.Backend = (*Context)(nil)

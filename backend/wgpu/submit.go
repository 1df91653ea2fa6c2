package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendercmd/backend"
	"github.com/gogpu/rendercmd/resource"
)

// Flush submits the commands recorded since the previous Flush and then
// runs Maintain.
//
// Resources removed since the previous Flush are attached to this
// submission, or to the most recent earlier one when nothing was recorded,
// and destroyed once the GPU reports it complete.
//
// Flush returns the first error recorded since the previous Flush.
func (c *Context) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return backend.ErrClosed
	}
	c.submit()
	c.maintain()

	err := c.err
	c.err = nil
	return err
}

// Maintain destroys resources and encoders whose submissions the GPU has
// completed. It returns the number of submissions still in flight.
func (c *Context) Maintain() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maintain()
	return len(c.inflight)
}

// Close submits outstanding work, waits for the device to go idle and
// destroys every resource the context still owns. A device opened by Open
// is destroyed as well.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return backend.ErrClosed
	}
	c.submit()

	var waitErr error
	if err := c.device.WaitIdle(); err != nil {
		waitErr = fmt.Errorf("wgpu: wait idle: %w", err)
	}
	for _, s := range c.inflight {
		c.retire(s)
	}
	c.inflight = nil

	c.buffers.Each(func(_ resource.RenderResource, b *buffer) {
		c.device.DestroyBuffer(b.raw)
	})
	c.textures.Each(func(_ resource.RenderResource, t *texture) {
		c.device.DestroyTexture(t.raw)
	})
	c.buffers = resource.NewTable[*buffer]()
	c.textures = resource.NewTable[*texture]()

	if c.owned {
		c.device.Destroy()
		if c.instance != nil {
			c.instance.Destroy()
		}
	}
	c.closed = true
	c.opts.log().Debug("wgpu: context closed", "owned", c.owned)

	err := errors.Join(c.err, waitErr)
	c.err = nil
	return err
}

// submit ends the current encoder, if any, and queues it. c.mu must be held.
func (c *Context) submit() {
	sub := submission{index: c.lastSubmitted, releases: c.pending}
	c.pending = nil

	if enc := c.encoder; enc != nil {
		n := c.recorded
		transitions := c.transitions
		c.encoder = nil
		c.recorded = 0
		c.transitions = nil

		if idx, cmdBuf, err := c.submitEncoder(enc); err != nil {
			// The barriers went away with the encoder.
			for i := len(transitions) - 1; i >= 0; i-- {
				transitions[i].texture.usage = transitions[i].old
			}
			c.fail(err)
		} else {
			sub.index = idx
			sub.encoder = enc
			sub.cmdBuf = cmdBuf
			c.lastSubmitted = idx
			c.opts.log().Debug("wgpu: submitted", "index", idx, "commands", n, "releases", len(sub.releases))
		}
	}

	if sub.encoder != nil || len(sub.releases) > 0 {
		c.inflight = append(c.inflight, sub)
	}
}

func (c *Context) submitEncoder(enc hal.CommandEncoder) (uint64, hal.CommandBuffer, error) {
	cmdBuf, err := enc.EndEncoding()
	if err != nil {
		enc.DiscardEncoding()
		enc.Destroy()
		return 0, nil, fmt.Errorf("wgpu: end encoding: %w", err)
	}
	idx, err := c.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		c.device.FreeCommandBuffer(cmdBuf)
		enc.Destroy()
		return 0, nil, fmt.Errorf("wgpu: submit: %w", err)
	}
	return idx, cmdBuf, nil
}

// maintain retires completed submissions. c.mu must be held.
func (c *Context) maintain() {
	if len(c.inflight) == 0 {
		return
	}
	done := c.queue.PollCompleted()

	kept := c.inflight[:0]
	for _, s := range c.inflight {
		if s.index > done {
			kept = append(kept, s)
			continue
		}
		c.retire(s)
	}
	clear(c.inflight[len(kept):])
	c.inflight = kept
}

func (c *Context) retire(s submission) {
	if s.cmdBuf != nil {
		c.device.FreeCommandBuffer(s.cmdBuf)
	}
	if s.encoder != nil {
		s.encoder.Destroy()
	}
	for _, r := range s.releases {
		if r.buffer != nil {
			c.device.DestroyBuffer(r.buffer)
		}
		if r.texture != nil {
			c.device.DestroyTexture(r.texture)
		}
	}
	if len(s.releases) > 0 {
		c.opts.log().Debug("wgpu: released resources", "index", s.index, "count", len(s.releases))
	}
}

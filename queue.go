package rendercmd

import (
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rendercmd/resource"
)

// Queue records GPU commands for later replay onto a RenderContext.
//
// A Queue is a handle to shared storage. Copying a Queue, or calling Clone,
// yields another handle to the same commands: a push through any handle is
// seen by Execute through every other. Storage lives as long as any handle
// does.
//
// Any number of goroutines may record into a queue at the same time; their
// commands are ordered by lock acquisition. Execute replays commands in the
// order they were recorded.
//
// The zero Queue has no storage and panics on use. Create queues with
// NewQueue.
type Queue struct {
	s *queueState
}

type queueState struct {
	mu       sync.Mutex
	commands []Command

	// flushMu serializes Execute so two flushes never interleave dispatch.
	flushMu sync.Mutex
}

// NewQueue creates an empty queue with its own storage.
func NewQueue(opts ...QueueOption) Queue {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return Queue{s: &queueState{
		commands: make([]Command, 0, o.capacity),
	}}
}

// Clone returns another handle to the same underlying commands.
func (q Queue) Clone() Queue {
	return q
}

// zeroQueuePanic is the panic value of methods called on the zero Queue.
const zeroQueuePanic = "rendercmd: use of zero Queue; create queues with NewQueue"

func (q Queue) state() *queueState {
	if q.s == nil {
		panic(zeroQueuePanic)
	}
	return q.s
}

func (q Queue) push(cmd Command) {
	s := q.state()
	s.mu.Lock()
	s.commands = append(s.commands, cmd)
	s.mu.Unlock()
}

// CopyBufferToBuffer records a copy of size bytes from src at srcOffset
// to dst at dstOffset.
func (q Queue) CopyBufferToBuffer(
	src resource.RenderResource, srcOffset uint64,
	dst resource.RenderResource, dstOffset uint64,
	size uint64,
) {
	q.push(CopyBufferToBufferCommand{
		SourceBuffer:      src,
		SourceOffset:      srcOffset,
		DestinationBuffer: dst,
		DestinationOffset: dstOffset,
		Size:              size,
	})
}

// CopyBufferToTexture records a copy from src into a subresource of dst.
func (q Queue) CopyBufferToTexture(
	src resource.RenderResource, srcOffset uint64, srcBytesPerRow uint32,
	dst resource.RenderResource, dstOrigin gputypes.Origin3D,
	dstMipLevel, dstArrayLayer uint32,
	size gputypes.Extent3D,
) {
	q.push(CopyBufferToTextureCommand{
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

// FreeBuffer records the release of buffer.
func (q Queue) FreeBuffer(buffer resource.RenderResource) {
	q.push(FreeBufferCommand{Buffer: buffer})
}

// Len returns the number of commands waiting for Execute.
func (q Queue) Len() int {
	s := q.state()
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.commands)
}

// Pending returns a copy of the commands waiting for Execute, oldest first.
func (q Queue) Pending() []Command {
	s := q.state()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Command, len(s.commands))
	copy(out, s.commands)
	return out
}

// take detaches the pending commands and leaves the queue empty.
func (s *queueState) take() []Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	cmds := s.commands
	if len(cmds) == 0 {
		return nil
	}
	s.commands = make([]Command, 0, cap(cmds))
	return cmds
}

// Execute removes every pending command and replays it onto rc in the order
// it was recorded.
//
// The queue lock is held only while the pending commands are detached, so
// producers keep recording while rc runs; anything they record lands in the
// next Execute. Each detached command is dispatched exactly once. Failures
// inside rc are not caught: if rc panics, the rest of the detached commands
// are dropped and the queue stays usable.
func (q Queue) Execute(rc RenderContext) {
	s := q.state()
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	cmds := s.take()
	if len(cmds) == 0 {
		return
	}

	Logger().Debug("rendercmd: executing commands", "count", len(cmds))

	for _, cmd := range cmds {
		switch c := cmd.(type) {
		case CopyBufferToBufferCommand:
			rc.CopyBufferToBuffer(
				c.SourceBuffer, c.SourceOffset,
				c.DestinationBuffer, c.DestinationOffset,
				c.Size,
			)
		case CopyBufferToTextureCommand:
			rc.CopyBufferToTexture(
				c.SourceBuffer, c.SourceOffset, c.SourceBytesPerRow,
				c.DestinationTexture, c.DestinationOrigin,
				c.DestinationMipLevel, c.DestinationArrayLayer,
				c.Size,
			)
		case FreeBufferCommand:
			rc.Resources().RemoveBuffer(c.Buffer)
		}
	}
}

package rendercmd

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/rendercmd/resource"
)

// CommandType identifies the kind of a recorded command.
type CommandType uint8

const (
	CmdCopyBufferToBuffer  CommandType = iota // Buffer to buffer copy
	CmdCopyBufferToTexture                    // Buffer to texture copy
	CmdFreeBuffer                             // Release a buffer
)

var commandTypeNames = [...]string{
	CmdCopyBufferToBuffer:  "CopyBufferToBuffer",
	CmdCopyBufferToTexture: "CopyBufferToTexture",
	CmdFreeBuffer:          "FreeBuffer",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is one recorded unit of GPU work.
//
// The set of commands is closed: only the types declared in this package
// implement Command. Commands are plain data and never resolve the handles
// they carry.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType

	sealed()
}

// CopyBufferToBufferCommand copies Size bytes between two buffers.
type CopyBufferToBufferCommand struct {
	SourceBuffer      resource.RenderResource
	SourceOffset      uint64
	DestinationBuffer resource.RenderResource
	DestinationOffset uint64
	Size              uint64
}

// Type implements Command.
func (CopyBufferToBufferCommand) Type() CommandType { return CmdCopyBufferToBuffer }

func (CopyBufferToBufferCommand) sealed() {}

// CopyBufferToTextureCommand copies tightly described rows from a buffer
// into a texture subresource.
type CopyBufferToTextureCommand struct {
	SourceBuffer      resource.RenderResource
	SourceOffset      uint64
	SourceBytesPerRow uint32

	DestinationTexture    resource.RenderResource
	DestinationOrigin     gputypes.Origin3D
	DestinationMipLevel   uint32
	DestinationArrayLayer uint32

	// Size is the copy extent in texels.
	Size gputypes.Extent3D
}

// Type implements Command.
func (CopyBufferToTextureCommand) Type() CommandType { return CmdCopyBufferToTexture }

func (CopyBufferToTextureCommand) sealed() {}

// FreeBufferCommand releases a buffer once earlier work no longer needs it.
type FreeBufferCommand struct {
	Buffer resource.RenderResource
}

// Type implements Command.
func (FreeBufferCommand) Type() CommandType { return CmdFreeBuffer }

func (FreeBufferCommand) sealed() {}

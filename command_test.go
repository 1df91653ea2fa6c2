package rendercmd

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestCommandType_String(t *testing.T) {
	tests := []struct {
		ct   CommandType
		want string
	}{
		{CmdCopyBufferToBuffer, "CopyBufferToBuffer"},
		{CmdCopyBufferToTexture, "CopyBufferToTexture"},
		{CmdFreeBuffer, "FreeBuffer"},
		{CommandType(254), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.ct.String(); got != tt.want {
				t.Errorf("CommandType.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCommandInterface(t *testing.T) {
	commands := []Command{
		CopyBufferToBufferCommand{SourceBuffer: testHandle(1), DestinationBuffer: testHandle(2), Size: 64},
		CopyBufferToTextureCommand{
			SourceBuffer:       testHandle(1),
			SourceBytesPerRow:  256,
			DestinationTexture: testHandle(3),
			Size:               gputypes.NewExtent2D(64, 64),
		},
		FreeBufferCommand{Buffer: testHandle(1)},
	}
	want := []CommandType{CmdCopyBufferToBuffer, CmdCopyBufferToTexture, CmdFreeBuffer}

	for i, cmd := range commands {
		if got := cmd.Type(); got != want[i] {
			t.Errorf("commands[%d].Type() = %v, want %v", i, got, want[i])
		}
	}
}

func TestCommandsAreComparable(t *testing.T) {
	a := CopyBufferToTextureCommand{
		SourceBuffer:          testHandle(1),
		SourceOffset:          512,
		SourceBytesPerRow:     1024,
		DestinationTexture:    testHandle(2),
		DestinationOrigin:     gputypes.Origin3D{X: 1, Y: 2, Z: 0},
		DestinationMipLevel:   1,
		DestinationArrayLayer: 3,
		Size:                  gputypes.NewExtent3D(8, 8, 1),
	}
	b := a
	if Command(a) != Command(b) {
		t.Error("identical commands should compare equal")
	}
	b.DestinationMipLevel = 2
	if Command(a) == Command(b) {
		t.Error("commands with different fields should differ")
	}
}

package trace

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rendercmd"
	"github.com/gogpu/rendercmd/backend"
	"github.com/gogpu/rendercmd/resource"
)

func TestRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.NameTrace) {
		t.Fatal("trace backend should register itself on import")
	}
	b, err := backend.New(backend.NameTrace)
	if err != nil {
		t.Fatalf("backend.New(%q) error = %v", backend.NameTrace, err)
	}
	if b.Name() != backend.NameTrace {
		t.Errorf("Name() = %q, want %q", b.Name(), backend.NameTrace)
	}
}

func TestExecuteRecordsInOrder(t *testing.T) {
	ctx := New()
	q := rendercmd.NewQueue()

	a, b, tex := resource.New(0, 1), resource.New(1, 1), resource.New(2, 1)
	q.CopyBufferToBuffer(a, 0, b, 128, 64)
	q.CopyBufferToTexture(a, 256, 1024, tex, gputypes.Origin3D{X: 4, Y: 8}, 1, 2, gputypes.NewExtent3D(16, 16, 1))
	q.FreeBuffer(a)
	q.Execute(ctx)

	calls := ctx.Calls()
	if len(calls) != 3 {
		t.Fatalf("got %d calls, want 3", len(calls))
	}

	wantOps := []rendercmd.CommandType{
		rendercmd.CmdCopyBufferToBuffer,
		rendercmd.CmdCopyBufferToTexture,
		rendercmd.CmdFreeBuffer,
	}
	for i, c := range calls {
		if c.Op != wantOps[i] {
			t.Errorf("calls[%d].Op = %v, want %v", i, c.Op, wantOps[i])
		}
	}

	want := rendercmd.CopyBufferToTextureCommand{
		SourceBuffer:          a,
		SourceOffset:          256,
		SourceBytesPerRow:     1024,
		DestinationTexture:    tex,
		DestinationOrigin:     gputypes.Origin3D{X: 4, Y: 8},
		DestinationMipLevel:   1,
		DestinationArrayLayer: 2,
		Size:                  gputypes.NewExtent3D(16, 16, 1),
	}
	if calls[1].Command != rendercmd.Command(want) {
		t.Errorf("calls[1].Command = %+v, want %+v", calls[1].Command, want)
	}
	if got := calls[2].Command.(rendercmd.FreeBufferCommand).Buffer; got != a {
		t.Errorf("freed %v, want %v", got, a)
	}
}

func TestResetAndLen(t *testing.T) {
	ctx := New()
	ctx.RemoveBuffer(resource.New(0, 1))
	ctx.RemoveBuffer(resource.New(1, 1))
	if ctx.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ctx.Len())
	}
	ctx.Reset()
	if ctx.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", ctx.Len())
	}
}

func TestCallsIsCopy(t *testing.T) {
	ctx := New()
	ctx.RemoveBuffer(resource.New(0, 1))
	calls := ctx.Calls()
	calls[0].Op = rendercmd.CmdCopyBufferToBuffer
	if ctx.Calls()[0].Op != rendercmd.CmdFreeBuffer {
		t.Error("mutating Calls() result should not affect the context")
	}
}

func TestFlushAndClose(t *testing.T) {
	ctx := New()
	if err := ctx.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if ctx.Flushes() != 1 {
		t.Errorf("Flushes() = %d, want 1", ctx.Flushes())
	}
	if err := ctx.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := ctx.Flush(); !errors.Is(err, backend.ErrClosed) {
		t.Errorf("Flush() after Close error = %v, want ErrClosed", err)
	}
	if err := ctx.Close(); !errors.Is(err, backend.ErrClosed) {
		t.Errorf("second Close() error = %v, want ErrClosed", err)
	}
}

func TestLogsCalls(t *testing.T) {
	orig := rendercmd.Logger()
	t.Cleanup(func() { rendercmd.SetLogger(orig) })

	var buf bytes.Buffer
	rendercmd.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	ctx := New()
	ctx.RemoveBuffer(resource.New(3, 1))

	if !strings.Contains(buf.String(), "op=FreeBuffer") {
		t.Errorf("expected debug log with op=FreeBuffer, got: %s", buf.String())
	}
}

func TestConcurrentProducersSingleFlush(t *testing.T) {
	const producers, perProducer = 4, 250

	q := rendercmd.NewQueue()
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(qc rendercmd.Queue, p uint32) {
			defer wg.Done()
			for i := uint32(0); i < perProducer; i++ {
				qc.FreeBuffer(resource.New(p*perProducer+i, 1))
			}
		}(q.Clone(), uint32(p))
	}
	wg.Wait()

	ctx := New()
	q.Execute(ctx)

	seen := make(map[resource.RenderResource]bool, producers*perProducer)
	for _, c := range ctx.Calls() {
		h := c.Command.(rendercmd.FreeBufferCommand).Buffer
		if seen[h] {
			t.Fatalf("buffer %v freed twice", h)
		}
		seen[h] = true
	}
	if len(seen) != producers*perProducer {
		t.Errorf("got %d frees, want %d", len(seen), producers*perProducer)
	}
	if q.Len() != 0 {
		t.Errorf("queue Len() = %d after Execute, want 0", q.Len())
	}
}

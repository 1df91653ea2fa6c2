package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/gogpu/rendercmd"
	"github.com/gogpu/rendercmd/backend"
	"github.com/gogpu/rendercmd/backend/trace"
)

func TestWorkloadRecord(t *testing.T) {
	cfg := config{Producers: 3, Commands: 10}
	tc := trace.New()

	w, err := newWorkload(tc, cfg)
	if err != nil {
		t.Fatalf("newWorkload() error = %v", err)
	}
	if len(w.staging) != cfg.Producers {
		t.Fatalf("got %d staging buffers, want %d", len(w.staging), cfg.Producers)
	}

	q := rendercmd.NewQueue()
	for p := 0; p < cfg.Producers; p++ {
		w.record(q.Clone(), p)
	}
	q.Execute(tc)

	calls := tc.Calls()
	if want := cfg.Producers * (cfg.Commands + 1); len(calls) != want {
		t.Fatalf("got %d calls, want %d", len(calls), want)
	}

	perProducer := cfg.Commands + 1
	for p := 0; p < cfg.Producers; p++ {
		block := calls[p*perProducer : (p+1)*perProducer]
		if block[0].Op != rendercmd.CmdCopyBufferToBuffer || block[1].Op != rendercmd.CmdCopyBufferToTexture {
			t.Errorf("producer %d: copies do not alternate: %v, %v", p, block[0].Op, block[1].Op)
		}
		last := block[len(block)-1]
		if last.Op != rendercmd.CmdFreeBuffer {
			t.Errorf("producer %d: last op = %v, want FreeBuffer", p, last.Op)
		}
		if got := last.Command.(rendercmd.FreeBufferCommand).Buffer; got != w.staging[p] {
			t.Errorf("producer %d freed %v, want %v", p, got, w.staging[p])
		}

		tex := block[1].Command.(rendercmd.CopyBufferToTextureCommand)
		if tex.DestinationArrayLayer != uint32(p) || tex.SourceOffset != chunk {
			t.Errorf("producer %d: texture copy = %+v", p, tex)
		}
	}
}

func TestRunTrace(t *testing.T) {
	orig := rendercmd.Logger()
	t.Cleanup(func() { rendercmd.SetLogger(orig) })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rendercmd.SetLogger(logger)

	cfg := config{Backend: backend.NameTrace, Producers: 4, Commands: 50}
	if err := run(context.Background(), cfg, logger); err != nil {
		t.Fatalf("run() error = %v", err)
	}
}

func TestRunDefaultBackend(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// No -backend: the best registered backend is used. Without a GPU that
	// is wgpu on the noop HAL device.
	cfg := config{Producers: 2, Commands: 4}
	if err := run(context.Background(), cfg, logger); err != nil {
		t.Fatalf("run() error = %v", err)
	}
}

func TestOpenBackendDefault(t *testing.T) {
	b, err := openBackend("")
	if err != nil {
		t.Fatalf("openBackend(\"\") error = %v", err)
	}
	defer b.Close()
	if b.Name() != backend.NameWGPU {
		t.Errorf("default backend = %q, want %q", b.Name(), backend.NameWGPU)
	}
}

func TestRunUnknownBackend(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := run(context.Background(), config{Backend: "nope", Producers: 1, Commands: 1}, logger); err == nil {
		t.Error("expected error for unknown backend")
	}
}

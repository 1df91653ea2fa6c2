// Command cmdqueue records GPU copy commands from several goroutines into
// one shared queue and flushes them onto a backend.
//
// Usage:
//
//	cmdqueue -backend trace -producers 8 -commands 1000
//
// Every flag has an environment variable default: RENDERCMD_BACKEND,
// RENDERCMD_PRODUCERS, RENDERCMD_COMMANDS, RENDERCMD_LOG_LEVEL and
// RENDERCMD_OTEL_ENDPOINT.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/noop"
	_ "github.com/gogpu/wgpu/hal/vulkan"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/gogpu/rendercmd"
	"github.com/gogpu/rendercmd/backend"
	"github.com/gogpu/rendercmd/backend/trace"
	"github.com/gogpu/rendercmd/backend/wgpu"
	"github.com/gogpu/rendercmd/internal/telemetry"
	"github.com/gogpu/rendercmd/internal/workers"
	"github.com/gogpu/rendercmd/resource"
)

const tracerName = "github.com/gogpu/rendercmd/cmd/cmdqueue"

// Each copy moves one RGBA8 row of rowTexels texels.
const (
	rowTexels = 64
	chunk     = rowTexels * 4
)

func main() {
	cfg, err := loadConfig(os.Args[1:], nil)
	if err != nil {
		log.Fatalf("cmdqueue: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	rendercmd.SetLogger(logger)

	ctx := context.Background()
	shutdown, err := telemetry.Setup(ctx, "cmdqueue", cfg.OTelEndpoint)
	if err != nil {
		log.Fatalf("cmdqueue: telemetry: %v", err)
	}

	runErr := run(ctx, cfg, logger)
	if err := shutdown(ctx); err != nil {
		logger.Warn("telemetry shutdown", "err", err)
	}
	if runErr != nil {
		log.Fatalf("cmdqueue: %v", runErr)
	}
}

func run(ctx context.Context, cfg config, logger *slog.Logger) (err error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "cmdqueue.run", oteltrace.WithAttributes(
		attribute.String("backend", cfg.Backend),
		attribute.Int("producers", cfg.Producers),
		attribute.Int("commands", cfg.Commands),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	b, err := openBackend(cfg.Backend)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.String("backend.name", b.Name()))
	defer func() {
		if err := b.Close(); err != nil {
			logger.Warn("close backend", "backend", b.Name(), "err", err)
		}
	}()
	logger.Info("backend ready", "backend", b.Name(), "available", backend.Available())

	w, err := newWorkload(b, cfg)
	if err != nil {
		return err
	}

	q := rendercmd.NewQueue(rendercmd.WithCapacity(cfg.Producers * (cfg.Commands + 1)))
	start := time.Now()

	producers := workers.New(cfg.Producers)
	defer producers.Close()

	jobs := make([]func(), cfg.Producers)
	for p := range jobs {
		qc := q.Clone()
		jobs[p] = func() { w.record(qc, p) }
	}
	_, recordSpan := tracer.Start(ctx, "cmdqueue.record")
	producers.RunAll(jobs)
	recorded := q.Len()
	recordSpan.SetAttributes(attribute.Int("queue.len", recorded))
	recordSpan.End()

	_, execSpan := tracer.Start(ctx, "cmdqueue.execute")
	q.Execute(b)
	execSpan.End()

	_, flushSpan := tracer.Start(ctx, "cmdqueue.flush")
	err = b.Flush()
	flushSpan.End()
	if err != nil {
		return fmt.Errorf("flush %s: %w", b.Name(), err)
	}

	logger.Info("flushed",
		"backend", b.Name(),
		"producers", cfg.Producers,
		"commands", recorded,
		"elapsed", time.Since(start),
	)
	if tc, ok := b.(*trace.Context); ok {
		logger.Info("trace", "calls", tc.Len())
	}
	return nil
}

func openBackend(name string) (backend.Backend, error) {
	if name == "" {
		return backend.Default()
	}
	return backend.New(name)
}

// workload holds the handles producers record against.
type workload struct {
	commands int
	staging  []resource.RenderResource
	dst      resource.RenderResource
	atlas    resource.RenderResource
}

// newWorkload creates one staging buffer per producer, a shared destination
// buffer and a texture array with one layer per producer. Backends that do
// not own GPU resources get handles minted from a local table.
func newWorkload(b backend.Backend, cfg config) (*workload, error) {
	w := &workload{commands: cfg.Commands}
	stagingSize := uint64(cfg.Commands) * chunk

	wc, ok := b.(*wgpu.Context)
	if !ok {
		names := resource.NewTable[string]()
		for p := 0; p < cfg.Producers; p++ {
			w.staging = append(w.staging, names.Insert(fmt.Sprintf("staging-%d", p)))
		}
		w.dst = names.Insert("dst")
		w.atlas = names.Insert("atlas")
		return w, nil
	}

	for p := 0; p < cfg.Producers; p++ {
		h, err := wc.CreateBuffer(&hal.BufferDescriptor{
			Label: fmt.Sprintf("staging-%d", p),
			Size:  stagingSize,
			Usage: gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, err
		}
		w.staging = append(w.staging, h)
	}

	var err error
	w.dst, err = wc.CreateBuffer(&hal.BufferDescriptor{
		Label: "dst",
		Size:  stagingSize * uint64(cfg.Producers),
		Usage: gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}

	w.atlas, err = wc.CreateTexture(&hal.TextureDescriptor{
		Label:         "atlas",
		Size:          hal.Extent3D{Width: rowTexels, Height: rowTexels, DepthOrArrayLayers: uint32(cfg.Producers)}, //nolint:gosec // producers validated positive
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// record alternates buffer and texture uploads out of producer p's staging
// buffer, then frees it.
func (w *workload) record(q rendercmd.Queue, p int) {
	src := w.staging[p]
	for i := 0; i < w.commands; i++ {
		srcOffset := uint64(i) * chunk
		if i%2 == 0 {
			dstOffset := uint64(p*w.commands+i) * chunk
			q.CopyBufferToBuffer(src, srcOffset, w.dst, dstOffset, chunk)
			continue
		}
		row := uint32((i / 2) % rowTexels) //nolint:gosec // bounded by rowTexels
		q.CopyBufferToTexture(
			src, srcOffset, chunk,
			w.atlas, gputypes.Origin3D{Y: row}, 0, uint32(p), //nolint:gosec // p < producers
			gputypes.NewExtent2D(rowTexels, 1),
		)
	}
	q.FreeBuffer(src)
}

package wgpu

import (
	"log/slog"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rendercmd"
)

// Option configures a Context during creation.
//
// Example:
//
//	ctx, err := wgpu.Open(
//	    wgpu.WithLabel("uploads"),
//	    wgpu.WithBackends(gputypes.BackendsVulkan),
//	)
type Option func(*options)

type options struct {
	label    string
	logger   *slog.Logger
	backends gputypes.Backends
}

func defaultOptions() options {
	return options{
		label:    "rendercmd",
		backends: gputypes.BackendsAll,
	}
}

func newOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// log returns the configured logger, falling back to the package logger
// at call time so later rendercmd.SetLogger calls take effect.
func (o *options) log() *slog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return rendercmd.Logger()
}

// WithLabel sets the debug label used for command encoders and resources
// created through the context.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}

// WithLogger overrides rendercmd.Logger for this context.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithBackends restricts which GPU APIs Open may pick.
//
// The empty HAL backend (noop or software, whichever is registered) is not
// part of any gputypes.Backends mask and is always tried last.
func WithBackends(b gputypes.Backends) Option {
	return func(o *options) {
		o.backends = b
	}
}

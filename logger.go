package rendercmd

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler drops every record. Enabled reports false, so Debug calls on
// the flush path cost a level check and nothing else.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// silent is what Logger returns until SetLogger installs something else.
var silent = slog.New(nopHandler{})

var current atomic.Pointer[slog.Logger]

// SetLogger sets the logger shared by Queue and the backend packages.
// A nil l makes rendercmd silent again, which is also the initial state.
//
// What gets logged:
//   - [slog.LevelDebug]: snapshot sizes in Execute, submission indices and
//     deferred releases in backend/wgpu, every call seen by backend/trace
//   - [slog.LevelInfo]: the device backend/wgpu opened
//   - [slog.LevelWarn]: commands a backend dropped (unknown handle, out of
//     bounds copy, failed submit)
//
// To see each flush:
//
//	rendercmd.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	current.Store(l)
}

// Logger returns the logger set by SetLogger. It never returns nil.
func Logger() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return silent
}

// Package trace provides a RenderContext that records calls instead of
// executing them.
//
// The trace backend is useful for tests and for inspecting what a queue
// flush would do on a real device. Every dispatched call is appended to an
// in-memory log and written to rendercmd.Logger at debug level.
//
// # Registration
//
// Importing the package registers it under backend.NameTrace:
//
//	import _ "github.com/gogpu/rendercmd/backend/trace"
//
//	b, err := backend.New(backend.NameTrace)
package trace

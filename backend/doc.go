// Package backend provides named, pluggable RenderContext implementations.
//
// A Backend is a rendercmd.RenderContext that can also be flushed and closed.
// Backends register themselves from init() using the database/sql driver
// pattern and are created by name:
//
//	import (
//	    "github.com/gogpu/rendercmd/backend"
//	    _ "github.com/gogpu/rendercmd/backend/trace" // registers "trace"
//	    _ "github.com/gogpu/rendercmd/backend/wgpu"  // registers "wgpu"
//	)
//
//	b, err := backend.New("wgpu")
//	if err != nil {
//	    // not registered, or the device could not be opened
//	}
//	defer b.Close()
//
//	q.Execute(b)
//	if err := b.Flush(); err != nil {
//	    // dispatch or submission failed
//	}
//
// # Backend Selection
//
// Default returns the first backend in priority order (wgpu, then trace)
// whose factory succeeds.
package backend

// Package resource defines the opaque handles used to name GPU resources.
//
// A RenderResource is an index plus a generation. Handles are small values:
// they are copied freely, compared with ==, and used as map keys. Nothing in
// this package dereferences a handle on its own; the subsystem that issued a
// handle is the only one that can resolve it, typically through a [Table].
package resource

import "fmt"

// RenderResource identifies a GPU buffer or texture owned elsewhere.
//
// The zero value is the invalid handle. Valid handles always carry a
// non-zero generation.
type RenderResource struct {
	index      uint32
	generation uint32
}

// New returns the handle for the given slot index and generation.
// A zero generation yields an invalid handle.
func New(index, generation uint32) RenderResource {
	return RenderResource{index: index, generation: generation}
}

// Index returns the slot index of the handle.
func (r RenderResource) Index() uint32 { return r.index }

// Generation returns the generation of the handle.
func (r RenderResource) Generation() uint32 { return r.generation }

// IsValid reports whether r could name a resource.
func (r RenderResource) IsValid() bool { return r.generation != 0 }

// String implements fmt.Stringer.
func (r RenderResource) String() string {
	if !r.IsValid() {
		return "res(invalid)"
	}
	return fmt.Sprintf("res(%dv%d)", r.index, r.generation)
}

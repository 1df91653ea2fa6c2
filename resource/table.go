package resource

import "sync"

// Table maps RenderResource handles to values of type T.
//
// Slots are reused after removal. Each reuse bumps the slot generation, so a
// handle that outlived its resource no longer resolves.
//
// Table is safe for concurrent use.
type Table[T any] struct {
	mu    sync.RWMutex
	slots []slot[T]
	free  []uint32
	live  int
}

type slot[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// NewTable creates an empty table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{
		slots: make([]slot[T], 0, 16),
	}
}

// Insert stores v and returns a fresh handle for it.
func (t *Table[T]) Insert(v T) RenderResource {
	t.mu.Lock()
	defer t.mu.Unlock()

	var index uint32
	if n := len(t.free); n > 0 {
		index = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		t.slots = append(t.slots, slot[T]{})
		index = uint32(len(t.slots) - 1) //nolint:gosec // slot count is far below uint32 max
	}

	s := &t.slots[index]
	s.generation++
	if s.generation == 0 {
		// Generation 0 marks invalid handles; skip it on wrap.
		s.generation = 1
	}
	s.value = v
	s.occupied = true
	t.live++
	return RenderResource{index: index, generation: s.generation}
}

// Get returns the value stored for h.
// The boolean is false if h is invalid, stale, or was never issued.
func (t *Table[T]) Get(h RenderResource) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.lookup(h)
	if !ok {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Remove deletes h and returns the value it named.
// Removing a stale or unknown handle is a no-op that returns false.
func (t *Table[T]) Remove(h RenderResource) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	s, ok := t.lookup(h)
	if !ok {
		return zero, false
	}
	v := s.value
	s.value = zero
	s.occupied = false
	t.free = append(t.free, h.index)
	t.live--
	return v, true
}

// Len returns the number of live entries.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.live
}

// Each calls fn for every live entry in slot order.
// fn must not call back into the table.
func (t *Table[T]) Each(fn func(RenderResource, T)) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := range t.slots {
		s := &t.slots[i]
		if s.occupied {
			fn(RenderResource{index: uint32(i), generation: s.generation}, s.value) //nolint:gosec // see Insert
		}
	}
}

// lookup must be called with t.mu held.
func (t *Table[T]) lookup(h RenderResource) (*slot[T], bool) {
	if !h.IsValid() || int(h.index) >= len(t.slots) {
		return nil, false
	}
	s := &t.slots[h.index]
	if !s.occupied || s.generation != h.generation {
		return nil, false
	}
	return s, true
}

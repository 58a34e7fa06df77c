package g3d

// handle is an arena slot index plus the slot's generation at allocation.
// Generation 0 is never issued, so the zero handle is nil.
type handle struct {
	index uint32
	gen   uint32
}

func (h handle) isNil() bool { return h.gen == 0 }

// key packs the handle into the non-zero integer the trace registries use.
func (h handle) key() uint64 {
	if h.isNil() {
		return 0
	}
	return uint64(h.gen)<<32 | uint64(h.index)
}

// Texture identifies a texture owned by a Device. The zero value is nil.
type Texture struct{ h handle }

// IsNil reports whether t refers to no texture.
func (t Texture) IsNil() bool { return t.h.isNil() }

// Buffer identifies a vertex or index buffer owned by a Device.
type Buffer struct{ h handle }

// IsNil reports whether b refers to no buffer.
func (b Buffer) IsNil() bool { return b.h.isNil() }

// Renderbuffer identifies a multisample color or depth-stencil surface.
type Renderbuffer struct{ h handle }

// IsNil reports whether r refers to no renderbuffer.
func (r Renderbuffer) IsNil() bool { return r.h.isNil() }

// Effect identifies a compiled effect.
type Effect struct{ h handle }

// IsNil reports whether e refers to no effect.
func (e Effect) IsNil() bool { return e.h.isNil() }

// Query identifies an occlusion query.
type Query struct{ h handle }

// IsNil reports whether q refers to no query.
func (q Query) IsNil() bool { return q.h.isNil() }

type slot[T any] struct {
	gen  uint32
	live bool
	obj  T
}

// arena stores backend objects behind generation-counted handles. Freed
// slots are reused, with the generation bumped so that handles to the
// previous occupant never resolve again. Only the owning goroutine touches
// an arena.
type arena[T any] struct {
	slots []slot[T]
	free  []uint32
}

func (a *arena[T]) alloc(obj T) handle {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots)) //nolint:gosec // arenas stay far below 2^32 slots
		a.slots = append(a.slots, slot[T]{gen: 1})
	}
	s := &a.slots[idx]
	s.live = true
	s.obj = obj
	return handle{index: idx, gen: s.gen}
}

func (a *arena[T]) get(h handle) (T, bool) {
	var zero T
	if h.isNil() || int(h.index) >= len(a.slots) {
		return zero, false
	}
	s := &a.slots[h.index]
	if !s.live || s.gen != h.gen {
		return zero, false
	}
	return s.obj, true
}

// release frees the slot behind h and returns its object.
func (a *arena[T]) release(h handle) (T, bool) {
	obj, ok := a.get(h)
	if !ok {
		return obj, false
	}
	s := &a.slots[h.index]
	var zero T
	s.obj = zero
	s.live = false
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	a.free = append(a.free, h.index)
	return obj, true
}

// each calls fn for every live object.
func (a *arena[T]) each(fn func(h handle, obj T)) {
	for i := range a.slots {
		if s := &a.slots[i]; s.live {
			fn(handle{index: uint32(i), gen: s.gen}, s.obj) //nolint:gosec // see alloc
		}
	}
}

func (a *arena[T]) len() int { return len(a.slots) - len(a.free) }

package trace

import (
	"errors"
	"fmt"
)

// ErrNotRegistered is returned when an object has no interned id, either
// because it was never created under tracing or because it was disposed.
var ErrNotRegistered = errors.New("trace: object not registered")

// Registry interns live objects of one category as small integers. Ids are
// the lowest free slot, so a disposed object's id is reused by the next
// registration. Key 0 is the nil object and always maps to NilID.
//
// Registry is not safe for concurrent use; the Recorder serialises access.
type Registry struct {
	name  string
	slots []uint64
	ids   map[uint64]ObjectID
}

// NewRegistry returns an empty registry. name appears in error messages.
func NewRegistry(name string) *Registry {
	return &Registry{name: name, ids: make(map[uint64]ObjectID)}
}

// Register interns key and returns its id. Registering a live key returns
// its existing id.
func (r *Registry) Register(key uint64) ObjectID {
	if key == 0 {
		return NilID
	}
	if id, ok := r.ids[key]; ok {
		return id
	}
	slot := len(r.slots)
	for i, k := range r.slots {
		if k == 0 {
			slot = i
			break
		}
	}
	if slot == len(r.slots) {
		r.slots = append(r.slots, key)
	} else {
		r.slots[slot] = key
	}
	id := ObjectID(slot) //nolint:gosec // slot count is bounded by live objects
	r.ids[key] = id
	return id
}

// Lookup returns the id of a live key.
func (r *Registry) Lookup(key uint64) (ObjectID, error) {
	if key == 0 {
		return NilID, nil
	}
	id, ok := r.ids[key]
	if !ok {
		return NilID, fmt.Errorf("%w: %s %#x", ErrNotRegistered, r.name, key)
	}
	return id, nil
}

// Unregister retires key and frees its id for reuse.
func (r *Registry) Unregister(key uint64) (ObjectID, error) {
	id, err := r.Lookup(key)
	if err != nil || key == 0 {
		return id, err
	}
	delete(r.ids, key)
	r.slots[id] = 0
	return id, nil
}

// Live returns the number of registered objects.
func (r *Registry) Live() int { return len(r.ids) }

// Registries holds one Registry per object category. Vertex and index
// buffers share the Buffers category.
type Registries struct {
	Textures      *Registry
	Buffers       *Registry
	Renderbuffers *Registry
	Effects       *Registry
	Queries       *Registry
}

// NewRegistries returns empty registries for every category.
func NewRegistries() *Registries {
	return &Registries{
		Textures:      NewRegistry("texture"),
		Buffers:       NewRegistry("buffer"),
		Renderbuffers: NewRegistry("renderbuffer"),
		Effects:       NewRegistry("effect"),
		Queries:       NewRegistry("query"),
	}
}

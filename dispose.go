package g3d

import (
	"sync"

	"github.com/gogpu/g3d/trace"
)

type disposeKind uint8

const (
	disposeTexture disposeKind = iota
	disposeRenderbuffer
	disposeVertexBuffer
	disposeIndexBuffer
	disposeEffect
	disposeQuery
)

var disposeKindNames = [...]string{
	disposeTexture:      "texture",
	disposeRenderbuffer: "renderbuffer",
	disposeVertexBuffer: "vertex buffer",
	disposeIndexBuffer:  "index buffer",
	disposeEffect:       "effect",
	disposeQuery:        "query",
}

func (k disposeKind) String() string { return disposeKindNames[k] }

type disposal struct {
	kind disposeKind
	h    handle
}

// disposalQueue collects dispose requests from any goroutine until the
// owning goroutine drains them.
type disposalQueue struct {
	mu    sync.Mutex
	items []disposal
}

func (q *disposalQueue) push(d disposal) {
	q.mu.Lock()
	q.items = append(q.items, d)
	q.mu.Unlock()
}

// swap hands the queued items to the caller and gives the queue buf to
// append into next.
func (q *disposalQueue) swap(buf []disposal) []disposal {
	q.mu.Lock()
	items := q.items
	q.items = buf[:0]
	q.mu.Unlock()
	return items
}

func (q *disposalQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (k disposeKind) registry(reg *trace.Registries) *trace.Registry {
	switch k {
	case disposeTexture:
		return reg.Textures
	case disposeRenderbuffer:
		return reg.Renderbuffers
	case disposeEffect:
		return reg.Effects
	case disposeQuery:
		return reg.Queries
	default:
		return reg.Buffers
	}
}

// addDispose retires the trace id and queues the teardown. Safe from any
// goroutine; never calls the backend.
func (d *Device) addDispose(kind disposeKind, h handle, record func(trace.Dispose) trace.Record) {
	if d == nil || h.isNil() {
		return
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return record(trace.Dispose{Object: l.retire(kind.registry(l.reg), h.key())})
		})
	}
	d.disposals.push(disposal{kind: kind, h: h})
}

// PendingDisposals returns the number of dispose requests not yet drained.
func (d *Device) PendingDisposals() int {
	if d == nil {
		return 0
	}
	return d.disposals.len()
}

// FlushDisposals tears down every resource queued by the AddDispose
// operations. It must run on the owning goroutine; SwapBuffers and
// DestroyDevice call it implicitly.
func (d *Device) FlushDisposals() {
	if !d.live() {
		return
	}
	items := d.disposals.swap(d.drained)
	for _, it := range items {
		if !d.teardown(it) {
			d.log.Warn("g3d: dispose of stale handle ignored",
				"kind", it.kind.String(), "index", it.h.index, "generation", it.h.gen)
		}
	}
	d.drained = items[:0]
}

func (d *Device) teardown(it disposal) bool {
	switch it.kind {
	case disposeTexture:
		obj, ok := d.textures.release(it.h)
		if ok {
			d.r.DisposeTexture(obj)
		}
		return ok
	case disposeRenderbuffer:
		obj, ok := d.renderbuffers.release(it.h)
		if ok {
			d.r.DisposeRenderbuffer(obj)
		}
		return ok
	case disposeVertexBuffer, disposeIndexBuffer:
		e, ok := d.buffers.release(it.h)
		if !ok {
			return false
		}
		if e.index != (it.kind == disposeIndexBuffer) {
			d.log.Warn("g3d: buffer disposed through the wrong kind", "kind", it.kind.String())
		}
		if e.index {
			d.r.DisposeIndexBuffer(e.obj)
		} else {
			d.r.DisposeVertexBuffer(e.obj)
		}
		return true
	case disposeEffect:
		e, ok := d.effects.release(it.h)
		if ok {
			d.r.DisposeEffect(e.obj)
		}
		return ok
	case disposeQuery:
		obj, ok := d.queries.release(it.h)
		if ok {
			d.r.DisposeQuery(obj)
		}
		return ok
	}
	return false
}

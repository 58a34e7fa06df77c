package software

import (
	"github.com/gogpu/g3d/driver"
	"github.com/gogpu/g3d/gfx"
)

// Buffer is the host copy of a vertex or index buffer.
type Buffer struct {
	index   bool
	dynamic bool
	usage   gfx.BufferUsage
	data    []byte

	// Backend is reserved for the renderer's Mirror.
	Backend any
}

func (b *Buffer) IsIndex() bool          { return b.index }
func (b *Buffer) Dynamic() bool          { return b.dynamic }
func (b *Buffer) Usage() gfx.BufferUsage { return b.usage }
func (b *Buffer) Size() int32            { return int32(len(b.data)) } //nolint:gosec // sizes come from int32

// Bytes returns the buffer contents. The slice is owned by the buffer.
func (b *Buffer) Bytes() []byte { return b.data }

func (r *Renderer) GenVertexBuffer(dynamic bool, usage gfx.BufferUsage, sizeInBytes int32) driver.Buffer {
	return r.genBuffer(false, dynamic, usage, sizeInBytes)
}

func (r *Renderer) GenIndexBuffer(dynamic bool, usage gfx.BufferUsage, sizeInBytes int32) driver.Buffer {
	return r.genBuffer(true, dynamic, usage, sizeInBytes)
}

func (r *Renderer) genBuffer(index, dynamic bool, usage gfx.BufferUsage, size int32) driver.Buffer {
	if size <= 0 {
		r.log.Error("software: invalid buffer size", "size", size, "index", index)
		return nil
	}
	b := &Buffer{index: index, dynamic: dynamic, usage: usage, data: make([]byte, size)}
	if r.mirror != nil {
		if err := r.mirror.BufferCreated(b); err != nil {
			r.log.Error("software: buffer mirror failed", "err", err)
			return nil
		}
	}
	return b
}

func (r *Renderer) DisposeVertexBuffer(buf driver.Buffer) { r.disposeBuffer(buf) }
func (r *Renderer) DisposeIndexBuffer(buf driver.Buffer)  { r.disposeBuffer(buf) }

func (r *Renderer) disposeBuffer(buf driver.Buffer) {
	b, ok := buf.(*Buffer)
	if !ok {
		return
	}
	kept := r.bindings[:0]
	for _, vb := range r.bindings {
		if vb.VertexBuffer != driver.Buffer(b) {
			kept = append(kept, vb)
		}
	}
	r.bindings = kept
	if r.mirror != nil {
		r.mirror.BufferDisposed(b)
	}
	b.data = nil
}

// SetVertexBufferData writes elementCount elements of elementSize bytes,
// vertexStride bytes apart, starting at offset. A stride of zero or equal
// to the element size is a plain copy.
func (r *Renderer) SetVertexBufferData(buf driver.Buffer, offset int32, data []byte, elementCount, elementSize, vertexStride int32, options gfx.SetDataOptions) {
	b, ok := buf.(*Buffer)
	if !ok {
		return
	}
	if options == gfx.SetDataDiscard {
		b.data = make([]byte, len(b.data))
	}
	span, ok := r.strided(b, offset, data, elementCount, elementSize, vertexStride, true)
	if ok && r.mirror != nil {
		r.mirror.BufferUpdated(b, offset, span)
	}
}

// GetVertexBufferData is the inverse of SetVertexBufferData.
func (r *Renderer) GetVertexBufferData(buf driver.Buffer, offset int32, data []byte, elementCount, elementSize, vertexStride int32) {
	if b, ok := buf.(*Buffer); ok {
		r.strided(b, offset, data, elementCount, elementSize, vertexStride, false)
	}
}

func (r *Renderer) SetIndexBufferData(buf driver.Buffer, offset int32, data []byte, options gfx.SetDataOptions) {
	b, ok := buf.(*Buffer)
	if !ok {
		return
	}
	if options == gfx.SetDataDiscard {
		b.data = make([]byte, len(b.data))
	}
	n := int32(len(data)) //nolint:gosec // bounded by the buffer size check
	span, ok := r.strided(b, offset, data, 1, n, 0, true)
	if ok && r.mirror != nil {
		r.mirror.BufferUpdated(b, offset, span)
	}
}

func (r *Renderer) GetIndexBufferData(buf driver.Buffer, offset int32, data []byte) {
	if b, ok := buf.(*Buffer); ok {
		r.strided(b, offset, data, 1, int32(len(data)), 0, false) //nolint:gosec // see above
	}
}

// strided copies between data and the buffer. It returns the number of
// buffer bytes spanned.
func (r *Renderer) strided(b *Buffer, offset int32, data []byte, count, size, stride int32, write bool) (int32, bool) {
	if stride == 0 {
		stride = size
	}
	if count <= 0 || size <= 0 {
		return 0, false
	}
	span := (count-1)*stride + size
	if offset < 0 || stride < size || int(offset)+int(span) > len(b.data) || len(data) < int(count)*int(size) {
		r.log.Warn("software: buffer access out of bounds",
			"offset", offset, "count", count, "size", size, "stride", stride, "buffer", len(b.data), "data", len(data))
		return 0, false
	}
	for i := range int(count) {
		at := int(offset) + i*int(stride)
		mem := b.data[at : at+int(size)]
		host := data[i*int(size) : (i+1)*int(size)]
		if write {
			copy(mem, host)
		} else {
			copy(host, mem)
		}
	}
	return span, true
}

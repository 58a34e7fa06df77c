package g3d

import (
	"github.com/gogpu/g3d/gfx"
	"github.com/gogpu/g3d/trace"
)

// CreateTexture2D creates a 2D texture with levelCount mip levels. It
// returns the nil handle if the backend cannot create it.
func (d *Device) CreateTexture2D(format gfx.SurfaceFormat, width, height, levelCount int32, isRenderTarget bool) Texture {
	if !d.live() {
		return Texture{}
	}
	obj := d.r.CreateTexture2D(format, width, height, levelCount, isRenderTarget)
	if obj == nil {
		d.log.Error("g3d: CreateTexture2D failed", "format", format.String(), "width", width, "height", height)
		return Texture{}
	}
	t := Texture{d.textures.alloc(obj)}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.CreateTexture2D{
				Format: format, Width: width, Height: height, LevelCount: levelCount,
				IsRenderTarget: isRenderTarget, Result: l.reg.Textures.Register(t.h.key()),
			}
		})
	}
	return t
}

// CreateTexture3D creates a volume texture.
func (d *Device) CreateTexture3D(format gfx.SurfaceFormat, width, height, depth, levelCount int32) Texture {
	if !d.live() {
		return Texture{}
	}
	obj := d.r.CreateTexture3D(format, width, height, depth, levelCount)
	if obj == nil {
		d.log.Error("g3d: CreateTexture3D failed", "format", format.String(), "width", width, "height", height, "depth", depth)
		return Texture{}
	}
	t := Texture{d.textures.alloc(obj)}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.CreateTexture3D{
				Format: format, Width: width, Height: height, Depth: depth,
				LevelCount: levelCount, Result: l.reg.Textures.Register(t.h.key()),
			}
		})
	}
	return t
}

// CreateTextureCube creates a cube texture with six size×size faces.
func (d *Device) CreateTextureCube(format gfx.SurfaceFormat, size, levelCount int32, isRenderTarget bool) Texture {
	if !d.live() {
		return Texture{}
	}
	obj := d.r.CreateTextureCube(format, size, levelCount, isRenderTarget)
	if obj == nil {
		d.log.Error("g3d: CreateTextureCube failed", "format", format.String(), "size", size)
		return Texture{}
	}
	t := Texture{d.textures.alloc(obj)}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.CreateTextureCube{
				Format: format, Size: size, LevelCount: levelCount,
				IsRenderTarget: isRenderTarget, Result: l.reg.Textures.Register(t.h.key()),
			}
		})
	}
	return t
}

// AddDisposeTexture queues tex for destruction. Safe from any goroutine.
func (d *Device) AddDisposeTexture(tex Texture) {
	d.addDispose(disposeTexture, tex.h, func(r trace.Dispose) trace.Record {
		return &trace.AddDisposeTexture{Dispose: r}
	})
}

// SetTextureData2D uploads a region of one mip level.
func (d *Device) SetTextureData2D(tex Texture, x, y, w, h, level int32, data []byte) {
	if !d.live() {
		return
	}
	obj, ok := d.texture(tex, "SetTextureData2D", false)
	if !ok {
		return
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.SetTextureData2D{Texture: l.texture(tex), X: x, Y: y, W: w, H: h, Level: level, Data: data}
		})
	}
	d.r.SetTextureData2D(obj, x, y, w, h, level, data)
}

// SetTextureData3D uploads a box of one mip level of a volume texture.
func (d *Device) SetTextureData3D(tex Texture, x, y, z, w, h, depth, level int32, data []byte) {
	if !d.live() {
		return
	}
	obj, ok := d.texture(tex, "SetTextureData3D", false)
	if !ok {
		return
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.SetTextureData3D{Texture: l.texture(tex), X: x, Y: y, Z: z, W: w, H: h, D: depth, Level: level, Data: data}
		})
	}
	d.r.SetTextureData3D(obj, x, y, z, w, h, depth, level, data)
}

// SetTextureDataCube uploads a region of one face and mip level.
func (d *Device) SetTextureDataCube(tex Texture, x, y, w, h int32, face gfx.CubeMapFace, level int32, data []byte) {
	if !d.live() {
		return
	}
	obj, ok := d.texture(tex, "SetTextureDataCube", false)
	if !ok {
		return
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.SetTextureDataCube{Texture: l.texture(tex), X: x, Y: y, W: w, H: h, Face: face, Level: level, Data: data}
		})
	}
	d.r.SetTextureDataCube(obj, x, y, w, h, face, level, data)
}

// SetTextureDataYUV uploads a planar YUV frame: the Y plane followed by the
// U and V planes, one byte per sample.
func (d *Device) SetTextureDataYUV(y, u, v Texture, yWidth, yHeight, uvWidth, uvHeight int32, data []byte) {
	if !d.live() {
		return
	}
	yo, ok := d.texture(y, "SetTextureDataYUV", false)
	if !ok {
		return
	}
	uo, ok := d.texture(u, "SetTextureDataYUV", false)
	if !ok {
		return
	}
	vo, ok := d.texture(v, "SetTextureDataYUV", false)
	if !ok {
		return
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.SetTextureDataYUV{
				Y: l.texture(y), U: l.texture(u), V: l.texture(v),
				YWidth: yWidth, YHeight: yHeight, UVWidth: uvWidth, UVHeight: uvHeight, Data: data,
			}
		})
	}
	d.r.SetTextureDataYUV(yo, uo, vo, yWidth, yHeight, uvWidth, uvHeight, data)
}

// GetTextureData2D reads a region of one mip level into data.
func (d *Device) GetTextureData2D(tex Texture, x, y, w, h, level int32, data []byte) {
	if !d.live() {
		return
	}
	obj, ok := d.texture(tex, "GetTextureData2D", false)
	if !ok {
		return
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.GetTextureData2D{Texture: l.texture(tex), X: x, Y: y, W: w, H: h, Level: level, DataLength: dataLen(data)}
		})
	}
	d.r.GetTextureData2D(obj, x, y, w, h, level, data)
}

// GetTextureData3D reads a box of one mip level into data.
func (d *Device) GetTextureData3D(tex Texture, x, y, z, w, h, depth, level int32, data []byte) {
	if !d.live() {
		return
	}
	obj, ok := d.texture(tex, "GetTextureData3D", false)
	if !ok {
		return
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.GetTextureData3D{Texture: l.texture(tex), X: x, Y: y, Z: z, W: w, H: h, D: depth, Level: level, DataLength: dataLen(data)}
		})
	}
	d.r.GetTextureData3D(obj, x, y, z, w, h, depth, level, data)
}

// GetTextureDataCube reads a region of one face and mip level into data.
func (d *Device) GetTextureDataCube(tex Texture, x, y, w, h int32, face gfx.CubeMapFace, level int32, data []byte) {
	if !d.live() {
		return
	}
	obj, ok := d.texture(tex, "GetTextureDataCube", false)
	if !ok {
		return
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.GetTextureDataCube{Texture: l.texture(tex), X: x, Y: y, W: w, H: h, Face: face, Level: level, DataLength: dataLen(data)}
		})
	}
	d.r.GetTextureDataCube(obj, x, y, w, h, face, level, data)
}

// SetTextureName attaches a debug name to tex.
func (d *Device) SetTextureName(tex Texture, name string) {
	if !d.live() {
		return
	}
	obj, ok := d.texture(tex, "SetTextureName", false)
	if !ok {
		return
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.SetTextureName{Texture: l.texture(tex), Name: name}
		})
	}
	d.r.SetTextureName(obj, name)
}

// GenColorRenderbuffer creates a multisample color surface. tex is the
// texture it resolves into and may be nil.
func (d *Device) GenColorRenderbuffer(width, height int32, format gfx.SurfaceFormat, multiSampleCount int32, tex Texture) Renderbuffer {
	if !d.live() {
		return Renderbuffer{}
	}
	to, ok := d.texture(tex, "GenColorRenderbuffer", true)
	if !ok {
		return Renderbuffer{}
	}
	obj := d.r.GenColorRenderbuffer(width, height, format, multiSampleCount, to)
	if obj == nil {
		d.log.Error("g3d: GenColorRenderbuffer failed", "width", width, "height", height)
		return Renderbuffer{}
	}
	rb := Renderbuffer{d.renderbuffers.alloc(obj)}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.GenColorRenderbuffer{
				Width: width, Height: height, Format: format, MultiSampleCount: multiSampleCount,
				Texture: l.texture(tex), Result: l.reg.Renderbuffers.Register(rb.h.key()),
			}
		})
	}
	return rb
}

// GenDepthStencilRenderbuffer creates a depth-stencil surface.
func (d *Device) GenDepthStencilRenderbuffer(width, height int32, format gfx.DepthFormat, multiSampleCount int32) Renderbuffer {
	if !d.live() {
		return Renderbuffer{}
	}
	obj := d.r.GenDepthStencilRenderbuffer(width, height, format, multiSampleCount)
	if obj == nil {
		d.log.Error("g3d: GenDepthStencilRenderbuffer failed", "width", width, "height", height)
		return Renderbuffer{}
	}
	rb := Renderbuffer{d.renderbuffers.alloc(obj)}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.GenDepthStencilRenderbuffer{
				Width: width, Height: height, Format: format, MultiSampleCount: multiSampleCount,
				Result: l.reg.Renderbuffers.Register(rb.h.key()),
			}
		})
	}
	return rb
}

// AddDisposeRenderbuffer queues rb for destruction. Safe from any goroutine.
func (d *Device) AddDisposeRenderbuffer(rb Renderbuffer) {
	d.addDispose(disposeRenderbuffer, rb.h, func(r trace.Dispose) trace.Record {
		return &trace.AddDisposeRenderbuffer{Dispose: r}
	})
}

func (d *Device) genBuffer(index, dynamic bool, usage gfx.BufferUsage, size int32) Buffer {
	if !d.live() {
		return Buffer{}
	}
	var obj any
	if index {
		obj = d.r.GenIndexBuffer(dynamic, usage, size)
	} else {
		obj = d.r.GenVertexBuffer(dynamic, usage, size)
	}
	if obj == nil {
		d.log.Error("g3d: buffer creation failed", "index", index, "size", size)
		return Buffer{}
	}
	b := Buffer{d.buffers.alloc(bufferEntry{obj: obj, index: index})}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			g := trace.GenBuffer{Dynamic: dynamic, Usage: usage, SizeInBytes: size, Result: l.reg.Buffers.Register(b.h.key())}
			if index {
				return &trace.GenIndexBuffer{GenBuffer: g}
			}
			return &trace.GenVertexBuffer{GenBuffer: g}
		})
	}
	return b
}

// GenVertexBuffer creates a vertex buffer of sizeInBytes.
func (d *Device) GenVertexBuffer(dynamic bool, usage gfx.BufferUsage, sizeInBytes int32) Buffer {
	return d.genBuffer(false, dynamic, usage, sizeInBytes)
}

// AddDisposeVertexBuffer queues buf for destruction. Safe from any goroutine.
func (d *Device) AddDisposeVertexBuffer(buf Buffer) {
	d.addDispose(disposeVertexBuffer, buf.h, func(r trace.Dispose) trace.Record {
		return &trace.AddDisposeVertexBuffer{Dispose: r}
	})
}

// SetVertexBufferData writes elementCount elements of elementSize bytes
// from data into buf at offset, vertexStride bytes apart.
func (d *Device) SetVertexBufferData(buf Buffer, offset int32, data []byte, elementCount, elementSize, vertexStride int32, options gfx.SetDataOptions) {
	if !d.live() {
		return
	}
	obj, ok := d.buffer(buf, "SetVertexBufferData", false)
	if !ok {
		return
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.SetVertexBufferData{
				Buffer: l.buffer(buf), Offset: offset, ElementCount: elementCount,
				ElementSize: elementSize, VertexStride: vertexStride, Options: options, Data: data,
			}
		})
	}
	d.r.SetVertexBufferData(obj, offset, data, elementCount, elementSize, vertexStride, options)
}

// GetVertexBufferData reads elements back from buf into data.
func (d *Device) GetVertexBufferData(buf Buffer, offset int32, data []byte, elementCount, elementSize, vertexStride int32) {
	if !d.live() {
		return
	}
	obj, ok := d.buffer(buf, "GetVertexBufferData", false)
	if !ok {
		return
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.GetVertexBufferData{
				Buffer: l.buffer(buf), Offset: offset, ElementCount: elementCount,
				ElementSize: elementSize, VertexStride: vertexStride, DataLength: dataLen(data),
			}
		})
	}
	d.r.GetVertexBufferData(obj, offset, data, elementCount, elementSize, vertexStride)
}

// GenIndexBuffer creates an index buffer of sizeInBytes.
func (d *Device) GenIndexBuffer(dynamic bool, usage gfx.BufferUsage, sizeInBytes int32) Buffer {
	return d.genBuffer(true, dynamic, usage, sizeInBytes)
}

// AddDisposeIndexBuffer queues buf for destruction. Safe from any goroutine.
func (d *Device) AddDisposeIndexBuffer(buf Buffer) {
	d.addDispose(disposeIndexBuffer, buf.h, func(r trace.Dispose) trace.Record {
		return &trace.AddDisposeIndexBuffer{Dispose: r}
	})
}

// SetIndexBufferData writes data into buf at offset.
func (d *Device) SetIndexBufferData(buf Buffer, offset int32, data []byte, options gfx.SetDataOptions) {
	if !d.live() {
		return
	}
	obj, ok := d.buffer(buf, "SetIndexBufferData", false)
	if !ok {
		return
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.SetIndexBufferData{Buffer: l.buffer(buf), Offset: offset, Options: options, Data: data}
		})
	}
	d.r.SetIndexBufferData(obj, offset, data, options)
}

// GetIndexBufferData reads len(data) bytes from buf at offset.
func (d *Device) GetIndexBufferData(buf Buffer, offset int32, data []byte) {
	if !d.live() {
		return
	}
	obj, ok := d.buffer(buf, "GetIndexBufferData", false)
	if !ok {
		return
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.GetIndexBufferData{Buffer: l.buffer(buf), Offset: offset, DataLength: dataLen(data)}
		})
	}
	d.r.GetIndexBufferData(obj, offset, data)
}

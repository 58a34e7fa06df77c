package g3d

import (
	"log/slog"

	"github.com/gogpu/g3d/driver"
	"github.com/gogpu/g3d/gfx"
	"github.com/gogpu/g3d/trace"
)

// Device is a live rendering device. Every method must be called from the
// goroutine that created the device, except the AddDispose family and
// PendingDisposals, which are safe from any goroutine.
//
// A nil *Device is valid: every method no-ops and returns the zero value.
type Device struct {
	r      driver.Renderer
	driver string
	debug  bool
	log    *slog.Logger
	rec    *trace.Recorder

	textures      arena[driver.Texture]
	buffers       arena[bufferEntry]
	renderbuffers arena[driver.Renderbuffer]
	effects       arena[effectEntry]
	queries       arena[driver.Query]

	disposals disposalQueue
	drained   []disposal
	targets   targetTracker

	rtScratch []driver.RenderTarget
	vbScratch []driver.VertexBufferBinding
}

type bufferEntry struct {
	obj   driver.Buffer
	index bool
}

type effectEntry struct {
	obj  driver.Effect
	data *gfx.EffectData
}

func newDevice(r driver.Renderer, name string, debug bool, log *slog.Logger) *Device {
	return &Device{r: r, driver: name, debug: debug, log: log}
}

func (d *Device) live() bool { return d != nil && d.r != nil }

func (d *Device) tracing() bool { return d.rec.Enabled() }

// DriverName returns the name of the driver the device runs on.
func (d *Device) DriverName() string {
	if d == nil {
		return ""
	}
	return d.driver
}

// TraceFile returns the active trace file, or "" when not tracing.
func (d *Device) TraceFile() string {
	if d == nil || !d.rec.Enabled() {
		return ""
	}
	return d.rec.Path()
}

// Renderer returns the backend renderer, or nil once destroyed. Backend
// objects reached through it bypass handle validation and tracing.
func (d *Device) Renderer() driver.Renderer {
	if d == nil {
		return nil
	}
	return d.r
}

// lookup resolves handles to trace ids while a record is built. The first
// failure is kept and disables the recorder.
type lookup struct {
	reg *trace.Registries
	err error
}

func (l *lookup) find(r *trace.Registry, key uint64) trace.ObjectID {
	id, err := r.Lookup(key)
	if err != nil && l.err == nil {
		l.err = err
	}
	return id
}

func (l *lookup) retire(r *trace.Registry, key uint64) trace.ObjectID {
	id, err := r.Unregister(key)
	if err != nil && l.err == nil {
		l.err = err
	}
	return id
}

func (l *lookup) texture(t Texture) trace.ObjectID { return l.find(l.reg.Textures, t.h.key()) }
func (l *lookup) buffer(b Buffer) trace.ObjectID   { return l.find(l.reg.Buffers, b.h.key()) }
func (l *lookup) effect(e Effect) trace.ObjectID   { return l.find(l.reg.Effects, e.h.key()) }
func (l *lookup) query(q Query) trace.ObjectID     { return l.find(l.reg.Queries, q.h.key()) }

func (l *lookup) renderbuffer(r Renderbuffer) trace.ObjectID {
	return l.find(l.reg.Renderbuffers, r.h.key())
}

func (d *Device) traceWith(build func(l *lookup) trace.Record) {
	d.rec.Record(func(reg *trace.Registries) (trace.Record, error) {
		l := lookup{reg: reg}
		rec := build(&l)
		return rec, l.err
	})
}

// resolve maps a handle to its backend object, logging a warning for a
// stale or foreign handle. A nil handle resolves to the zero object when
// allowNil is set.
func resolve[T any](d *Device, a *arena[T], h handle, kind, op string, allowNil bool) (T, bool) {
	if h.isNil() {
		var zero T
		if !allowNil {
			d.log.Warn("g3d: nil handle", "op", op, "kind", kind)
		}
		return zero, allowNil
	}
	obj, ok := a.get(h)
	if !ok {
		d.log.Warn("g3d: stale or foreign handle", "op", op, "kind", kind,
			"index", h.index, "generation", h.gen)
	}
	return obj, ok
}

func (d *Device) texture(t Texture, op string, allowNil bool) (driver.Texture, bool) {
	return resolve(d, &d.textures, t.h, "texture", op, allowNil)
}

func (d *Device) renderbuffer(r Renderbuffer, op string) (driver.Renderbuffer, bool) {
	return resolve(d, &d.renderbuffers, r.h, "renderbuffer", op, true)
}

func (d *Device) buffer(b Buffer, op string, allowNil bool) (driver.Buffer, bool) {
	e, ok := resolve(d, &d.buffers, b.h, "buffer", op, allowNil)
	return e.obj, ok
}

func (d *Device) effect(e Effect, op string) (effectEntry, bool) {
	return resolve(d, &d.effects, e.h, "effect", op, false)
}

func (d *Device) query(q Query, op string) (driver.Query, bool) {
	return resolve(d, &d.queries, q.h, "query", op, false)
}

// DestroyDevice drains pending disposals and destroys the backend. The
// device is inert afterwards.
func (d *Device) DestroyDevice() {
	if !d.live() {
		return
	}
	if d.tracing() {
		d.rec.Write(&trace.DestroyDevice{})
	}
	d.FlushDisposals()
	d.r.Destroy()
	d.r = nil
	d.rec.Stop()
	d.log.Info("g3d: device destroyed", "driver", d.driver)
}

// SwapBuffers presents the backbuffer to window, then drains pending
// disposals. src and dst select sub-rectangles; nil means the whole surface.
func (d *Device) SwapBuffers(src, dst *gfx.Rect, window any) {
	if !d.live() {
		return
	}
	if d.debug {
		d.targets.present(d.log)
	}
	if d.tracing() {
		d.rec.Write(&trace.SwapBuffers{Source: src, Destination: dst})
	}
	d.r.SwapBuffers(src, dst, window)
	d.FlushDisposals()
}

// Clear clears the selected buffers of the bound render targets.
func (d *Device) Clear(options gfx.ClearOptions, color gfx.Vec4, depth float32, stencil int32) {
	if !d.live() {
		return
	}
	if d.tracing() {
		d.rec.Write(&trace.Clear{Options: options, Color: color, Depth: depth, Stencil: stencil})
	}
	d.r.Clear(options, color, depth, stencil)
}

// DrawIndexedPrimitives draws indexed geometry from the bound vertex
// buffers.
func (d *Device) DrawIndexedPrimitives(pt gfx.PrimitiveType, baseVertex, minVertexIndex, numVertices, startIndex, primitiveCount int32, indices Buffer, size gfx.IndexElementSize) {
	if !d.live() {
		return
	}
	ib, ok := d.buffer(indices, "DrawIndexedPrimitives", false)
	if !ok {
		return
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.DrawIndexedPrimitives{
				PrimitiveType: pt, BaseVertex: baseVertex, MinVertexIndex: minVertexIndex,
				NumVertices: numVertices, StartIndex: startIndex, PrimitiveCount: primitiveCount,
				Indices: l.buffer(indices), IndexElementSize: size,
			}
		})
	}
	d.r.DrawIndexedPrimitives(pt, baseVertex, minVertexIndex, numVertices, startIndex, primitiveCount, ib, size)
}

// DrawInstancedPrimitives draws instanceCount copies of indexed geometry.
func (d *Device) DrawInstancedPrimitives(pt gfx.PrimitiveType, baseVertex, minVertexIndex, numVertices, startIndex, primitiveCount, instanceCount int32, indices Buffer, size gfx.IndexElementSize) {
	if !d.live() {
		return
	}
	ib, ok := d.buffer(indices, "DrawInstancedPrimitives", false)
	if !ok {
		return
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.DrawInstancedPrimitives{
				DrawIndexedPrimitives: trace.DrawIndexedPrimitives{
					PrimitiveType: pt, BaseVertex: baseVertex, MinVertexIndex: minVertexIndex,
					NumVertices: numVertices, StartIndex: startIndex, PrimitiveCount: primitiveCount,
					Indices: l.buffer(indices), IndexElementSize: size,
				},
				InstanceCount: instanceCount,
			}
		})
	}
	d.r.DrawInstancedPrimitives(pt, baseVertex, minVertexIndex, numVertices, startIndex, primitiveCount, instanceCount, ib, size)
}

// DrawPrimitives draws non-indexed geometry.
func (d *Device) DrawPrimitives(pt gfx.PrimitiveType, vertexStart, primitiveCount int32) {
	if !d.live() {
		return
	}
	if d.tracing() {
		d.rec.Write(&trace.DrawPrimitives{PrimitiveType: pt, VertexStart: vertexStart, PrimitiveCount: primitiveCount})
	}
	d.r.DrawPrimitives(pt, vertexStart, primitiveCount)
}

// SetViewport sets the viewport rectangle and depth range.
func (d *Device) SetViewport(vp gfx.Viewport) {
	if !d.live() {
		return
	}
	if d.tracing() {
		d.rec.Write(&trace.SetViewport{Viewport: vp})
	}
	d.r.SetViewport(vp)
}

// SetScissorRect sets the scissor rectangle.
func (d *Device) SetScissorRect(r gfx.Rect) {
	if !d.live() {
		return
	}
	if d.tracing() {
		d.rec.Write(&trace.SetScissorRect{Rect: r})
	}
	d.r.SetScissorRect(r)
}

// BlendFactor returns the current blend factor.
func (d *Device) BlendFactor() gfx.Color {
	if !d.live() {
		return gfx.Color{}
	}
	return d.r.BlendFactor()
}

// SetBlendFactor sets the constant blend color.
func (d *Device) SetBlendFactor(c gfx.Color) {
	if !d.live() {
		return
	}
	if d.tracing() {
		d.rec.Write(&trace.SetBlendFactor{Color: c})
	}
	d.r.SetBlendFactor(c)
}

// MultiSampleMask returns the current multisample coverage mask.
func (d *Device) MultiSampleMask() int32 {
	if !d.live() {
		return 0
	}
	return d.r.MultiSampleMask()
}

// SetMultiSampleMask sets the multisample coverage mask.
func (d *Device) SetMultiSampleMask(mask int32) {
	if !d.live() {
		return
	}
	if d.tracing() {
		d.rec.Write(&trace.SetMultiSampleMask{Mask: mask})
	}
	d.r.SetMultiSampleMask(mask)
}

// ReferenceStencil returns the current stencil reference value.
func (d *Device) ReferenceStencil() int32 {
	if !d.live() {
		return 0
	}
	return d.r.ReferenceStencil()
}

// SetReferenceStencil sets the stencil reference value.
func (d *Device) SetReferenceStencil(ref int32) {
	if !d.live() {
		return
	}
	if d.tracing() {
		d.rec.Write(&trace.SetReferenceStencil{Ref: ref})
	}
	d.r.SetReferenceStencil(ref)
}

// SetBlendState applies a blend state.
func (d *Device) SetBlendState(s *gfx.BlendState) {
	if !d.live() || s == nil {
		return
	}
	if d.tracing() {
		d.rec.Write(&trace.SetBlendState{State: *s})
	}
	d.r.SetBlendState(s)
}

// SetDepthStencilState applies a depth-stencil state.
func (d *Device) SetDepthStencilState(s *gfx.DepthStencilState) {
	if !d.live() || s == nil {
		return
	}
	if d.tracing() {
		d.rec.Write(&trace.SetDepthStencilState{State: *s})
	}
	d.r.SetDepthStencilState(s)
}

// ApplyRasterizerState applies a rasterizer state.
func (d *Device) ApplyRasterizerState(s *gfx.RasterizerState) {
	if !d.live() || s == nil {
		return
	}
	if d.tracing() {
		d.rec.Write(&trace.ApplyRasterizerState{State: *s})
	}
	d.r.ApplyRasterizerState(s)
}

// VerifySampler binds tex with sampler state s to fragment sampler index.
// A nil texture unbinds the slot.
func (d *Device) VerifySampler(index int32, tex Texture, s *gfx.SamplerState) {
	d.verifySampler(index, tex, s, false)
}

// VerifyVertexSampler binds tex with sampler state s to vertex sampler index.
func (d *Device) VerifyVertexSampler(index int32, tex Texture, s *gfx.SamplerState) {
	d.verifySampler(index, tex, s, true)
}

func (d *Device) verifySampler(index int32, tex Texture, s *gfx.SamplerState, vertex bool) {
	if !d.live() || s == nil {
		return
	}
	op := "VerifySampler"
	if vertex {
		op = "VerifyVertexSampler"
	}
	obj, ok := d.texture(tex, op, true)
	if !ok {
		return
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			v := trace.VerifySampler{Index: index, Texture: l.texture(tex), Sampler: *s}
			if vertex {
				return &trace.VerifyVertexSampler{VerifySampler: v}
			}
			return &v
		})
	}
	if vertex {
		d.r.VerifyVertexSampler(index, obj, s)
	} else {
		d.r.VerifySampler(index, obj, s)
	}
}

// ApplyVertexBufferBindings binds the vertex streams for the next draw.
// updated reports whether bindings changed since the last call.
func (d *Device) ApplyVertexBufferBindings(bindings []VertexBufferBinding, updated bool, baseVertex int32) {
	if !d.live() {
		return
	}
	vbs := d.vbScratch[:0]
	for i := range bindings {
		obj, ok := d.buffer(bindings[i].VertexBuffer, "ApplyVertexBufferBindings", false)
		if !ok {
			return
		}
		vbs = append(vbs, driver.VertexBufferBinding{
			VertexBuffer:      obj,
			Declaration:       bindings[i].Declaration,
			VertexOffset:      bindings[i].VertexOffset,
			InstanceFrequency: bindings[i].InstanceFrequency,
		})
	}
	d.vbScratch = vbs
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			rec := &trace.ApplyVertexBufferBindings{
				Bindings:   make([]trace.VertexBinding, len(bindings)),
				Updated:    updated,
				BaseVertex: baseVertex,
			}
			for i := range bindings {
				rec.Bindings[i] = trace.VertexBinding{
					Buffer:            l.buffer(bindings[i].VertexBuffer),
					Declaration:       bindings[i].Declaration,
					VertexOffset:      bindings[i].VertexOffset,
					InstanceFrequency: bindings[i].InstanceFrequency,
				}
			}
			return rec
		})
	}
	d.r.ApplyVertexBufferBindings(vbs, updated, baseVertex)
}

func (d *Device) resolveTarget(b *RenderTargetBinding, op string) (driver.RenderTarget, bool) {
	tex, ok := d.texture(b.Texture, op, false)
	if !ok {
		return driver.RenderTarget{}, false
	}
	cb, ok := d.renderbuffer(b.ColorBuffer, op)
	if !ok {
		return driver.RenderTarget{}, false
	}
	return driver.RenderTarget{
		Type:             b.Type,
		Width:            b.Width,
		Height:           b.Height,
		Size:             b.Size,
		Face:             b.Face,
		LevelCount:       b.LevelCount,
		MultiSampleCount: b.MultiSampleCount,
		Texture:          tex,
		ColorBuffer:      cb,
	}, true
}

func traceTarget(l *lookup, b *RenderTargetBinding) trace.RenderTarget {
	t := trace.RenderTarget{
		Type:             b.Type,
		LevelCount:       b.LevelCount,
		MultiSampleCount: b.MultiSampleCount,
		Texture:          l.texture(b.Texture),
		ColorBuffer:      l.renderbuffer(b.ColorBuffer),
	}
	if b.Type == RenderTarget2D {
		t.Width, t.Height = b.Width, b.Height
	} else {
		t.Size, t.Face = b.Size, b.Face
	}
	return t
}

// SetRenderTargets binds color targets and an optional depth-stencil
// surface. An empty targets slice binds the backbuffer. Targets that need a
// resolve must be passed to ResolveTarget after they are unbound.
func (d *Device) SetRenderTargets(targets []RenderTargetBinding, depthStencil Renderbuffer, depthFormat gfx.DepthFormat, preserve bool) {
	if !d.live() {
		return
	}
	rts := d.rtScratch[:0]
	for i := range targets {
		rt, ok := d.resolveTarget(&targets[i], "SetRenderTargets")
		if !ok {
			return
		}
		rts = append(rts, rt)
	}
	d.rtScratch = rts
	ds, ok := d.renderbuffer(depthStencil, "SetRenderTargets")
	if !ok {
		return
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			rec := &trace.SetRenderTargets{
				Targets:      make([]trace.RenderTarget, len(targets)),
				DepthStencil: l.renderbuffer(depthStencil),
				DepthFormat:  depthFormat,
				Preserve:     preserve,
			}
			for i := range targets {
				rec.Targets[i] = traceTarget(l, &targets[i])
			}
			return rec
		})
	}
	if d.debug {
		d.targets.set(d.log, targets)
	}
	d.r.SetRenderTargets(rts, ds, depthFormat, preserve)
}

// ResolveTarget copies multisampled contents into the target texture and
// regenerates its mip chain.
func (d *Device) ResolveTarget(target *RenderTargetBinding) {
	if !d.live() || target == nil {
		return
	}
	rt, ok := d.resolveTarget(target, "ResolveTarget")
	if !ok {
		return
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.ResolveTarget{Target: traceTarget(l, target)}
		})
	}
	if d.debug {
		d.targets.resolve(target)
	}
	d.r.ResolveTarget(&rt)
}

// ResetBackbuffer recreates the backbuffer with new presentation
// parameters.
func (d *Device) ResetBackbuffer(params *gfx.PresentationParameters) {
	if !d.live() || params == nil {
		return
	}
	if d.tracing() {
		d.rec.Write(&trace.ResetBackbuffer{Params: *params})
	}
	d.r.ResetBackbuffer(params)
}

// ReadBackbuffer copies a region of the backbuffer into data. This stalls
// until rendering completes.
func (d *Device) ReadBackbuffer(x, y, w, h int32, data []byte) {
	if !d.live() {
		return
	}
	if d.tracing() {
		d.rec.Write(&trace.ReadBackbuffer{X: x, Y: y, W: w, H: h, DataLength: dataLen(data)})
	}
	d.r.ReadBackbuffer(x, y, w, h, data)
}

func dataLen(p []byte) uint32 { return uint32(len(p)) } //nolint:gosec // bounded by wire.MaxPayload

// BackbufferSize returns the backbuffer dimensions.
func (d *Device) BackbufferSize() (w, h int32) {
	if !d.live() {
		return 0, 0
	}
	return d.r.BackbufferSize()
}

// BackbufferSurfaceFormat returns the backbuffer color format.
func (d *Device) BackbufferSurfaceFormat() gfx.SurfaceFormat {
	if !d.live() {
		return gfx.SurfaceFormatColor
	}
	return d.r.BackbufferSurfaceFormat()
}

// BackbufferDepthFormat returns the backbuffer depth format.
func (d *Device) BackbufferDepthFormat() gfx.DepthFormat {
	if !d.live() {
		return gfx.DepthFormatNone
	}
	return d.r.BackbufferDepthFormat()
}

// BackbufferMultiSampleCount returns the backbuffer sample count.
func (d *Device) BackbufferMultiSampleCount() int32 {
	if !d.live() {
		return 0
	}
	return d.r.BackbufferMultiSampleCount()
}

// SetStringMarker inserts a debug marker into the command stream.
func (d *Device) SetStringMarker(text string) {
	if !d.live() {
		return
	}
	if d.tracing() {
		d.rec.Write(&trace.SetStringMarker{Text: text})
	}
	d.r.SetStringMarker(text)
}

package g3d

import (
	"fmt"

	"github.com/gogpu/g3d/gfx"
	"github.com/gogpu/g3d/trace"
)

// CreateEffect compiles effect code. The returned EffectData is shared with
// the backend: parameter values written into it are picked up by the next
// ApplyEffect.
func (d *Device) CreateEffect(code []byte) (Effect, *gfx.EffectData, error) {
	if !d.live() {
		return Effect{}, nil, nil
	}
	obj, data, err := d.r.CreateEffect(code)
	if err != nil {
		d.log.Error("g3d: CreateEffect failed", "err", err)
		return Effect{}, nil, fmt.Errorf("g3d: create effect: %w", err)
	}
	e := Effect{d.effects.alloc(effectEntry{obj: obj, data: data})}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.CreateEffect{Code: code, Result: l.reg.Effects.Register(e.h.key())}
		})
	}
	return e, data, nil
}

// CloneEffect creates an independent copy of src with its own parameter
// values.
func (d *Device) CloneEffect(src Effect) (Effect, *gfx.EffectData, error) {
	if !d.live() {
		return Effect{}, nil, nil
	}
	se, ok := d.effect(src, "CloneEffect")
	if !ok {
		return Effect{}, nil, fmt.Errorf("g3d: clone effect: %w", ErrStaleHandle)
	}
	obj, data, err := d.r.CloneEffect(se.obj)
	if err != nil {
		d.log.Error("g3d: CloneEffect failed", "err", err)
		return Effect{}, nil, fmt.Errorf("g3d: clone effect: %w", err)
	}
	e := Effect{d.effects.alloc(effectEntry{obj: obj, data: data})}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.CloneEffect{Source: l.effect(src), Result: l.reg.Effects.Register(e.h.key())}
		})
	}
	return e, data, nil
}

// EffectData returns the parameter blob of e, or nil for a stale handle.
func (d *Device) EffectData(e Effect) *gfx.EffectData {
	if !d.live() {
		return nil
	}
	ee, ok := d.effects.get(e.h)
	if !ok {
		return nil
	}
	return ee.data
}

// AddDisposeEffect queues e for destruction. Safe from any goroutine.
func (d *Device) AddDisposeEffect(e Effect) {
	d.addDispose(disposeEffect, e.h, func(r trace.Dispose) trace.Record {
		return &trace.AddDisposeEffect{Dispose: r}
	})
}

// SetEffectTechnique selects the technique used by later passes.
func (d *Device) SetEffectTechnique(e Effect, technique int32) {
	if !d.live() {
		return
	}
	ee, ok := d.effect(e, "SetEffectTechnique")
	if !ok {
		return
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.SetEffectTechnique{Effect: l.effect(e), Technique: technique}
		})
	}
	d.r.SetEffectTechnique(ee.obj, technique)
}

// ApplyEffect applies pass of the current technique with the parameter
// values currently in the effect's data.
func (d *Device) ApplyEffect(e Effect, pass uint32) {
	if !d.live() {
		return
	}
	ee, ok := d.effect(e, "ApplyEffect")
	if !ok {
		return
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.ApplyEffect{Effect: l.effect(e), Pass: pass, Params: ee.data.ParameterValues()}
		})
	}
	d.r.ApplyEffect(ee.obj, pass)
}

// BeginPassRestore saves the render state an effect pass will change.
func (d *Device) BeginPassRestore(e Effect) {
	if !d.live() {
		return
	}
	ee, ok := d.effect(e, "BeginPassRestore")
	if !ok {
		return
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.BeginPassRestore{Effect: l.effect(e), Params: ee.data.ParameterValues()}
		})
	}
	d.r.BeginPassRestore(ee.obj)
}

// EndPassRestore restores the state saved by BeginPassRestore.
func (d *Device) EndPassRestore(e Effect) {
	if !d.live() {
		return
	}
	ee, ok := d.effect(e, "EndPassRestore")
	if !ok {
		return
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.EndPassRestore{Effect: l.effect(e)}
		})
	}
	d.r.EndPassRestore(ee.obj)
}

// CreateQuery creates an occlusion query.
func (d *Device) CreateQuery() Query {
	if !d.live() {
		return Query{}
	}
	obj := d.r.CreateQuery()
	if obj == nil {
		d.log.Error("g3d: CreateQuery failed")
		return Query{}
	}
	q := Query{d.queries.alloc(obj)}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.CreateQuery{Result: l.reg.Queries.Register(q.h.key())}
		})
	}
	return q
}

// AddDisposeQuery queues q for destruction. Safe from any goroutine.
func (d *Device) AddDisposeQuery(q Query) {
	d.addDispose(disposeQuery, q.h, func(r trace.Dispose) trace.Record {
		return &trace.AddDisposeQuery{Dispose: r}
	})
}

// QueryBegin starts counting samples that pass the depth test.
func (d *Device) QueryBegin(q Query) {
	if !d.live() {
		return
	}
	obj, ok := d.query(q, "QueryBegin")
	if !ok {
		return
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.QueryBegin{QueryOp: trace.QueryOp{Query: l.query(q)}}
		})
	}
	d.r.QueryBegin(obj)
}

// QueryEnd stops counting.
func (d *Device) QueryEnd(q Query) {
	if !d.live() {
		return
	}
	obj, ok := d.query(q, "QueryEnd")
	if !ok {
		return
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.QueryEnd{QueryOp: trace.QueryOp{Query: l.query(q)}}
		})
	}
	d.r.QueryEnd(obj)
}

// QueryComplete reports whether the result of q is available. Callers poll
// it until it returns true.
func (d *Device) QueryComplete(q Query) bool {
	if !d.live() {
		return false
	}
	obj, ok := d.query(q, "QueryComplete")
	if !ok {
		return false
	}
	return d.r.QueryComplete(obj)
}

// QueryPixelCount returns the number of samples counted by q.
func (d *Device) QueryPixelCount(q Query) int32 {
	if !d.live() {
		return 0
	}
	obj, ok := d.query(q, "QueryPixelCount")
	if !ok {
		return 0
	}
	if d.tracing() {
		d.traceWith(func(l *lookup) trace.Record {
			return &trace.QueryPixelCount{QueryOp: trace.QueryOp{Query: l.query(q)}}
		})
	}
	return d.r.QueryPixelCount(obj)
}

// SupportsDXT1 reports DXT1 texture support.
func (d *Device) SupportsDXT1() bool { return d.live() && d.r.SupportsDXT1() }

// SupportsS3TC reports DXT3 and DXT5 texture support.
func (d *Device) SupportsS3TC() bool { return d.live() && d.r.SupportsS3TC() }

// SupportsBC7 reports BC7 texture support.
func (d *Device) SupportsBC7() bool { return d.live() && d.r.SupportsBC7() }

// SupportsHardwareInstancing reports DrawInstancedPrimitives support.
func (d *Device) SupportsHardwareInstancing() bool {
	return d.live() && d.r.SupportsHardwareInstancing()
}

// SupportsNoOverwrite reports whether SetDataNoOverwrite avoids a stall.
func (d *Device) SupportsNoOverwrite() bool { return d.live() && d.r.SupportsNoOverwrite() }

// SupportsSRGBRenderTargets reports sRGB render target support.
func (d *Device) SupportsSRGBRenderTargets() bool {
	return d.live() && d.r.SupportsSRGBRenderTargets()
}

// MaxTextureSlots returns the number of fragment and vertex sampler slots.
func (d *Device) MaxTextureSlots() (textures, vertexTextures int32) {
	if !d.live() {
		return 0, 0
	}
	return d.r.MaxTextureSlots()
}

// MaxMultiSampleCount returns the largest supported sample count for format
// that does not exceed requested.
func (d *Device) MaxMultiSampleCount(format gfx.SurfaceFormat, requested int32) int32 {
	if !d.live() {
		return 0
	}
	return d.r.MaxMultiSampleCount(format, requested)
}

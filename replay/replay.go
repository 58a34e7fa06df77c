// Package replay re-issues a recorded trace against a live device.
//
// A [Player] keeps one id → handle table per object category. Creation
// records bind their result id to the handle the replayed call returns and
// dispose records unbind it, in stream order, so the tables follow the same
// lowest-free-slot reuse the recorder applied when it wrote the ids.
//
// Replaying a trace on a runtime that traces reproduces the original stream
// byte for byte: effect parameter snapshots are loaded back into the
// replayed effect before each ApplyEffect and BeginPassRestore, and
// readbacks are re-issued with buffers of the recorded length.
package replay

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/trace"
)

var (
	// ErrNoCreateDevice is returned when a stream does not start with
	// CreateDevice.
	ErrNoCreateDevice = errors.New("replay: trace does not start with CreateDevice")

	// ErrUnknownObject is returned when a record references an id that is
	// not bound.
	ErrUnknownObject = errors.New("replay: unknown object")

	// ErrCreateFailed is returned when a creation the trace recorded as
	// successful fails on the replay device.
	ErrCreateFailed = errors.New("replay: object creation failed")

	// ErrDestroyed is returned for records after DestroyDevice.
	ErrDestroyed = errors.New("replay: device destroyed")

	// ErrCorrupt is returned when a creation record names an id that is
	// already bound, or the nil id.
	ErrCorrupt = errors.New("replay: corrupt trace")
)

// table maps the interned ids of one category to replay handles.
type table[H any] struct {
	name string
	live map[trace.ObjectID]H
}

func newTable[H any](name string) table[H] {
	return table[H]{name: name, live: make(map[trace.ObjectID]H)}
}

// bind records h as the handle for id. The recorder never hands out a live
// id, so a collision means the stream is corrupt.
func (t *table[H]) bind(id trace.ObjectID, h H) error {
	if id == trace.NilID {
		return fmt.Errorf("%w: %s created with the nil id", ErrCorrupt, t.name)
	}
	if _, ok := t.live[id]; ok {
		return fmt.Errorf("%w: %s %d created while live", ErrCorrupt, t.name, id)
	}
	t.live[id] = h
	return nil
}

// get returns the handle bound to id. NilID is the nil handle.
func (t *table[H]) get(id trace.ObjectID) (H, error) {
	var zero H
	if id == trace.NilID {
		return zero, nil
	}
	h, ok := t.live[id]
	if !ok {
		return zero, fmt.Errorf("%w: %s %d", ErrUnknownObject, t.name, id)
	}
	return h, nil
}

func (t *table[H]) release(id trace.ObjectID) (H, error) {
	h, err := t.get(id)
	if err == nil {
		delete(t.live, id)
	}
	return h, err
}

// Option configures a [Player].
type Option func(*Player)

// WithLogger sets the player logger. The default is g3d.Logger().
func WithLogger(l *slog.Logger) Option {
	return func(p *Player) {
		p.log = l
	}
}

// WithFrameHook calls fn after every replayed SwapBuffers, with the number
// of frames presented so far.
func WithFrameHook(fn func(p *Player, frame int)) Option {
	return func(p *Player) {
		p.onFrame = fn
	}
}

// Player replays records on a device it owns. It must be used from the
// device's owning goroutine.
type Player struct {
	dev     *g3d.Device
	window  any
	log     *slog.Logger
	onFrame func(*Player, int)

	textures      table[g3d.Texture]
	buffers       table[g3d.Buffer]
	renderbuffers table[g3d.Renderbuffer]
	effects       table[g3d.Effect]
	queries       table[g3d.Query]

	scratch   []byte
	records   int
	frames    int
	destroyed bool
}

// NewPlayer creates the device described by first on rt and returns a
// player bound to it. The runtime must have a negotiated driver. window is
// handed to the device and to every replayed SwapBuffers.
func NewPlayer(rt *g3d.Runtime, first *trace.CreateDevice, window any, opts ...Option) (*Player, error) {
	p := &Player{
		window:        window,
		textures:      newTable[g3d.Texture]("texture"),
		buffers:       newTable[g3d.Buffer]("buffer"),
		renderbuffers: newTable[g3d.Renderbuffer]("renderbuffer"),
		effects:       newTable[g3d.Effect]("effect"),
		queries:       newTable[g3d.Query]("query"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = g3d.Logger()
	}
	params := first.Params
	params.DeviceWindowHandle = window
	dev, err := rt.CreateDevice(&params, first.DebugMode)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	p.dev = dev
	p.records = 1
	return p, nil
}

// Device returns the replay device.
func (p *Player) Device() *g3d.Device { return p.dev }

// Frames returns the number of SwapBuffers replayed.
func (p *Player) Frames() int { return p.frames }

// Records returns the number of records applied, CreateDevice included.
func (p *Player) Records() int { return p.records }

// Destroyed reports whether DestroyDevice has been replayed or Close called.
func (p *Player) Destroyed() bool { return p.destroyed }

// Close destroys the device unless the trace already did.
func (p *Player) Close() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.dev.DestroyDevice()
}

// Run replays a whole stream: it negotiates a driver on rt if none is
// selected, creates the device from the first record and applies the rest.
// The device is destroyed when the stream ends, even if the trace never
// recorded DestroyDevice.
func Run(rt *g3d.Runtime, r io.Reader, window any, opts ...Option) error {
	tr := trace.NewReader(r)
	rec, err := tr.Next()
	if errors.Is(err, io.EOF) {
		return ErrNoCreateDevice
	}
	if err != nil {
		return err
	}
	first, ok := rec.(*trace.CreateDevice)
	if !ok {
		return fmt.Errorf("%w: got %s", ErrNoCreateDevice, rec.Op())
	}
	if rt.Selected() == "" {
		if _, err := rt.PrepareWindowAttributes(); err != nil {
			return fmt.Errorf("replay: %w", err)
		}
	}
	p, err := NewPlayer(rt, first, window, opts...)
	if err != nil {
		return err
	}
	defer p.Close()
	for {
		rec, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := p.Apply(rec); err != nil {
			return err
		}
	}
}

// Apply replays one record. Errors carry the record index and opcode.
func (p *Player) Apply(rec trace.Record) error {
	if p.destroyed {
		return fmt.Errorf("%w: record %d (%s)", ErrDestroyed, p.records, rec.Op())
	}
	if err := p.apply(rec); err != nil {
		return fmt.Errorf("replay: record %d (%s): %w", p.records, rec.Op(), err)
	}
	p.records++
	return nil
}

// buf returns a zeroed scratch slice of n bytes for readbacks.
func (p *Player) buf(n uint32) []byte {
	if cap(p.scratch) < int(n) {
		p.scratch = make([]byte, n)
	}
	b := p.scratch[:n]
	clear(b)
	return b
}

func (p *Player) target(t *trace.RenderTarget) (g3d.RenderTargetBinding, error) {
	tex, err := p.textures.get(t.Texture)
	if err != nil {
		return g3d.RenderTargetBinding{}, err
	}
	cb, err := p.renderbuffers.get(t.ColorBuffer)
	if err != nil {
		return g3d.RenderTargetBinding{}, err
	}
	return g3d.RenderTargetBinding{
		Type:             t.Type,
		Width:            t.Width,
		Height:           t.Height,
		Size:             t.Size,
		Face:             t.Face,
		LevelCount:       t.LevelCount,
		MultiSampleCount: t.MultiSampleCount,
		Texture:          tex,
		ColorBuffer:      cb,
	}, nil
}

// loadParams copies a recorded parameter snapshot into the effect's blob.
func (p *Player) loadParams(e g3d.Effect, vals [][]byte) {
	p.dev.EffectData(e).LoadParameterValues(vals)
}

func created[H interface{ IsNil() bool }](t *table[H], id trace.ObjectID, h H) error {
	if h.IsNil() {
		return fmt.Errorf("%w: %s %d", ErrCreateFailed, t.name, id)
	}
	return t.bind(id, h)
}

//nolint:gocyclo,cyclop,funlen // one case per opcode
func (p *Player) apply(rec trace.Record) error {
	d := p.dev
	switch r := rec.(type) {
	case *trace.CreateDevice:
		return fmt.Errorf("%w: CreateDevice after the first record", ErrNoCreateDevice)
	case *trace.DestroyDevice:
		p.Close()
	case *trace.SwapBuffers:
		d.SwapBuffers(r.Source, r.Destination, p.window)
		p.frames++
		if p.onFrame != nil {
			p.onFrame(p, p.frames)
		}
	case *trace.Clear:
		d.Clear(r.Options, r.Color, r.Depth, r.Stencil)
	case *trace.DrawInstancedPrimitives:
		ib, err := p.buffers.get(r.Indices)
		if err != nil {
			return err
		}
		d.DrawInstancedPrimitives(r.PrimitiveType, r.BaseVertex, r.MinVertexIndex, r.NumVertices,
			r.StartIndex, r.PrimitiveCount, r.InstanceCount, ib, r.IndexElementSize)
	case *trace.DrawIndexedPrimitives:
		ib, err := p.buffers.get(r.Indices)
		if err != nil {
			return err
		}
		d.DrawIndexedPrimitives(r.PrimitiveType, r.BaseVertex, r.MinVertexIndex, r.NumVertices,
			r.StartIndex, r.PrimitiveCount, ib, r.IndexElementSize)
	case *trace.DrawPrimitives:
		d.DrawPrimitives(r.PrimitiveType, r.VertexStart, r.PrimitiveCount)
	case *trace.SetViewport:
		d.SetViewport(r.Viewport)
	case *trace.SetScissorRect:
		d.SetScissorRect(r.Rect)
	case *trace.SetBlendFactor:
		d.SetBlendFactor(r.Color)
	case *trace.SetMultiSampleMask:
		d.SetMultiSampleMask(r.Mask)
	case *trace.SetReferenceStencil:
		d.SetReferenceStencil(r.Ref)
	case *trace.SetBlendState:
		d.SetBlendState(&r.State)
	case *trace.SetDepthStencilState:
		d.SetDepthStencilState(&r.State)
	case *trace.ApplyRasterizerState:
		d.ApplyRasterizerState(&r.State)
	case *trace.VerifyVertexSampler:
		tex, err := p.textures.get(r.Texture)
		if err != nil {
			return err
		}
		d.VerifyVertexSampler(r.Index, tex, &r.Sampler)
	case *trace.VerifySampler:
		tex, err := p.textures.get(r.Texture)
		if err != nil {
			return err
		}
		d.VerifySampler(r.Index, tex, &r.Sampler)
	case *trace.ApplyVertexBufferBindings:
		bindings := make([]g3d.VertexBufferBinding, len(r.Bindings))
		for i, b := range r.Bindings {
			vb, err := p.buffers.get(b.Buffer)
			if err != nil {
				return err
			}
			bindings[i] = g3d.VertexBufferBinding{
				VertexBuffer:      vb,
				Declaration:       b.Declaration,
				VertexOffset:      b.VertexOffset,
				InstanceFrequency: b.InstanceFrequency,
			}
		}
		d.ApplyVertexBufferBindings(bindings, r.Updated, r.BaseVertex)
	case *trace.SetRenderTargets:
		var targets []g3d.RenderTargetBinding
		for i := range r.Targets {
			t, err := p.target(&r.Targets[i])
			if err != nil {
				return err
			}
			targets = append(targets, t)
		}
		ds, err := p.renderbuffers.get(r.DepthStencil)
		if err != nil {
			return err
		}
		d.SetRenderTargets(targets, ds, r.DepthFormat, r.Preserve)
	case *trace.ResolveTarget:
		t, err := p.target(&r.Target)
		if err != nil {
			return err
		}
		d.ResolveTarget(&t)
	case *trace.ResetBackbuffer:
		params := r.Params
		params.DeviceWindowHandle = p.window
		d.ResetBackbuffer(&params)
	case *trace.ReadBackbuffer:
		d.ReadBackbuffer(r.X, r.Y, r.W, r.H, p.buf(r.DataLength))

	case *trace.CreateTexture2D:
		return created(&p.textures, r.Result,
			d.CreateTexture2D(r.Format, r.Width, r.Height, r.LevelCount, r.IsRenderTarget))
	case *trace.CreateTexture3D:
		return created(&p.textures, r.Result,
			d.CreateTexture3D(r.Format, r.Width, r.Height, r.Depth, r.LevelCount))
	case *trace.CreateTextureCube:
		return created(&p.textures, r.Result,
			d.CreateTextureCube(r.Format, r.Size, r.LevelCount, r.IsRenderTarget))
	case *trace.AddDisposeTexture:
		tex, err := p.textures.release(r.Object)
		if err != nil {
			return err
		}
		d.AddDisposeTexture(tex)
	case *trace.SetTextureData2D:
		tex, err := p.textures.get(r.Texture)
		if err != nil {
			return err
		}
		d.SetTextureData2D(tex, r.X, r.Y, r.W, r.H, r.Level, r.Data)
	case *trace.SetTextureData3D:
		tex, err := p.textures.get(r.Texture)
		if err != nil {
			return err
		}
		d.SetTextureData3D(tex, r.X, r.Y, r.Z, r.W, r.H, r.D, r.Level, r.Data)
	case *trace.SetTextureDataCube:
		tex, err := p.textures.get(r.Texture)
		if err != nil {
			return err
		}
		d.SetTextureDataCube(tex, r.X, r.Y, r.W, r.H, r.Face, r.Level, r.Data)
	case *trace.SetTextureDataYUV:
		y, err := p.textures.get(r.Y)
		if err != nil {
			return err
		}
		u, err := p.textures.get(r.U)
		if err != nil {
			return err
		}
		v, err := p.textures.get(r.V)
		if err != nil {
			return err
		}
		d.SetTextureDataYUV(y, u, v, r.YWidth, r.YHeight, r.UVWidth, r.UVHeight, r.Data)
	case *trace.GetTextureData2D:
		tex, err := p.textures.get(r.Texture)
		if err != nil {
			return err
		}
		d.GetTextureData2D(tex, r.X, r.Y, r.W, r.H, r.Level, p.buf(r.DataLength))
	case *trace.GetTextureData3D:
		tex, err := p.textures.get(r.Texture)
		if err != nil {
			return err
		}
		d.GetTextureData3D(tex, r.X, r.Y, r.Z, r.W, r.H, r.D, r.Level, p.buf(r.DataLength))
	case *trace.GetTextureDataCube:
		tex, err := p.textures.get(r.Texture)
		if err != nil {
			return err
		}
		d.GetTextureDataCube(tex, r.X, r.Y, r.W, r.H, r.Face, r.Level, p.buf(r.DataLength))
	case *trace.SetTextureName:
		tex, err := p.textures.get(r.Texture)
		if err != nil {
			return err
		}
		d.SetTextureName(tex, r.Name)

	case *trace.GenColorRenderbuffer:
		tex, err := p.textures.get(r.Texture)
		if err != nil {
			return err
		}
		return created(&p.renderbuffers, r.Result,
			d.GenColorRenderbuffer(r.Width, r.Height, r.Format, r.MultiSampleCount, tex))
	case *trace.GenDepthStencilRenderbuffer:
		return created(&p.renderbuffers, r.Result,
			d.GenDepthStencilRenderbuffer(r.Width, r.Height, r.Format, r.MultiSampleCount))
	case *trace.AddDisposeRenderbuffer:
		rb, err := p.renderbuffers.release(r.Object)
		if err != nil {
			return err
		}
		d.AddDisposeRenderbuffer(rb)

	case *trace.GenVertexBuffer:
		return created(&p.buffers, r.Result, d.GenVertexBuffer(r.Dynamic, r.Usage, r.SizeInBytes))
	case *trace.GenIndexBuffer:
		return created(&p.buffers, r.Result, d.GenIndexBuffer(r.Dynamic, r.Usage, r.SizeInBytes))
	case *trace.AddDisposeVertexBuffer:
		buf, err := p.buffers.release(r.Object)
		if err != nil {
			return err
		}
		d.AddDisposeVertexBuffer(buf)
	case *trace.AddDisposeIndexBuffer:
		buf, err := p.buffers.release(r.Object)
		if err != nil {
			return err
		}
		d.AddDisposeIndexBuffer(buf)
	case *trace.SetVertexBufferData:
		buf, err := p.buffers.get(r.Buffer)
		if err != nil {
			return err
		}
		d.SetVertexBufferData(buf, r.Offset, r.Data, r.ElementCount, r.ElementSize, r.VertexStride, r.Options)
	case *trace.GetVertexBufferData:
		buf, err := p.buffers.get(r.Buffer)
		if err != nil {
			return err
		}
		d.GetVertexBufferData(buf, r.Offset, p.buf(r.DataLength), r.ElementCount, r.ElementSize, r.VertexStride)
	case *trace.SetIndexBufferData:
		buf, err := p.buffers.get(r.Buffer)
		if err != nil {
			return err
		}
		d.SetIndexBufferData(buf, r.Offset, r.Data, r.Options)
	case *trace.GetIndexBufferData:
		buf, err := p.buffers.get(r.Buffer)
		if err != nil {
			return err
		}
		d.GetIndexBufferData(buf, r.Offset, p.buf(r.DataLength))

	case *trace.CreateEffect:
		e, _, err := d.CreateEffect(r.Code)
		if err != nil {
			return err
		}
		return created(&p.effects, r.Result, e)
	case *trace.CloneEffect:
		src, err := p.effects.get(r.Source)
		if err != nil {
			return err
		}
		e, _, err := d.CloneEffect(src)
		if err != nil {
			return err
		}
		return created(&p.effects, r.Result, e)
	case *trace.AddDisposeEffect:
		e, err := p.effects.release(r.Object)
		if err != nil {
			return err
		}
		d.AddDisposeEffect(e)
	case *trace.SetEffectTechnique:
		e, err := p.effects.get(r.Effect)
		if err != nil {
			return err
		}
		d.SetEffectTechnique(e, r.Technique)
	case *trace.ApplyEffect:
		e, err := p.effects.get(r.Effect)
		if err != nil {
			return err
		}
		p.loadParams(e, r.Params)
		d.ApplyEffect(e, r.Pass)
	case *trace.BeginPassRestore:
		e, err := p.effects.get(r.Effect)
		if err != nil {
			return err
		}
		p.loadParams(e, r.Params)
		d.BeginPassRestore(e)
	case *trace.EndPassRestore:
		e, err := p.effects.get(r.Effect)
		if err != nil {
			return err
		}
		d.EndPassRestore(e)

	case *trace.CreateQuery:
		return created(&p.queries, r.Result, d.CreateQuery())
	case *trace.AddDisposeQuery:
		q, err := p.queries.release(r.Object)
		if err != nil {
			return err
		}
		d.AddDisposeQuery(q)
	case *trace.QueryBegin:
		q, err := p.queries.get(r.Query)
		if err != nil {
			return err
		}
		d.QueryBegin(q)
	case *trace.QueryEnd:
		q, err := p.queries.get(r.Query)
		if err != nil {
			return err
		}
		d.QueryEnd(q)
	case *trace.QueryPixelCount:
		q, err := p.queries.get(r.Query)
		if err != nil {
			return err
		}
		p.log.Debug("replay: query", "id", r.Query, "pixels", d.QueryPixelCount(q))
	case *trace.SetStringMarker:
		d.SetStringMarker(r.Text)
	default:
		return fmt.Errorf("%w: %s", trace.ErrUnknownOpcode, rec.Op())
	}
	return nil
}

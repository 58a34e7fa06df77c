package software

import (
	"image"
	"log/slog"
	"math"

	"golang.org/x/image/draw"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/driver"
	"github.com/gogpu/g3d/gfx"
)

const (
	maxTextureSlots       = 16
	maxVertexTextureSlots = 4
	maxSamples            = 8
)

// Stats counts the work submitted to a renderer.
type Stats struct {
	Clears     int
	Draws      int
	Primitives int64
	Vertices   int64
	Presents   int
	Resolves   int
	Rejected   int // draws dropped by validation
}

type samplerSlot struct {
	tex   *Texture
	state gfx.SamplerState
}

type passState struct {
	blend        gfx.BlendState
	depthStencil gfx.DepthStencilState
	raster       gfx.RasterizerState
}

// Renderer is the software implementation of driver.Renderer.
type Renderer struct {
	log       *slog.Logger
	reflect   Reflector
	mirror    Mirror
	debug     bool
	destroyed bool

	params     gfx.PresentationParameters
	backbuffer *image.RGBA
	bbDepth    *renderbuffer

	viewport    gfx.Viewport
	scissor     gfx.Rect
	blendFactor gfx.Color
	sampleMask  int32
	refStencil  int32
	pass        passState

	samplers       [maxTextureSlots]samplerSlot
	vertexSamplers [maxVertexTextureSlots]samplerSlot
	bindings       []driver.VertexBufferBinding
	baseVertex     int32

	targets      []driver.RenderTarget
	depthStencil *renderbuffer

	queries []*query
	markers []string
	stats   Stats
}

// NewRenderer creates a renderer with a backbuffer described by params.
func NewRenderer(params *gfx.PresentationParameters, debugMode bool, opts Options) (*Renderer, error) {
	if params.BackBufferWidth <= 0 || params.BackBufferHeight <= 0 {
		return nil, driver.ErrUnsupported
	}
	r := &Renderer{
		log:        opts.Logger,
		reflect:    opts.Reflector,
		mirror:     opts.Mirror,
		debug:      debugMode,
		sampleMask: -1,
		pass: passState{
			blend:  gfx.Opaque(),
			raster: gfx.RasterizerState{CullMode: gfx.CullCounterClockwiseFace},
		},
		blendFactor: gfx.Color{R: 255, G: 255, B: 255, A: 255},
	}
	if r.log == nil {
		r.log = g3d.Logger()
	}
	if r.reflect == nil {
		r.reflect = DefaultReflector
	}
	r.ResetBackbuffer(params)
	return r, nil
}

// Stats returns the work counters.
func (r *Renderer) Stats() Stats { return r.stats }

// Markers returns the string markers inserted so far.
func (r *Renderer) Markers() []string { return append([]string(nil), r.markers...) }

// Backbuffer returns the backbuffer image. It is owned by the renderer.
func (r *Renderer) Backbuffer() *image.RGBA { return r.backbuffer }

// Destroy implements driver.Renderer.
func (r *Renderer) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true
	if r.mirror != nil {
		r.mirror.Destroyed()
	}
	r.targets = nil
	r.bindings = nil
	r.backbuffer = nil
}

// SetStringMarker implements driver.Renderer.
func (r *Renderer) SetStringMarker(text string) {
	r.markers = append(r.markers, text)
}

// SwapBuffers scales the src region of the backbuffer into the dst region
// of window, which must be a *Window. Nil rectangles mean the whole surface.
func (r *Renderer) SwapBuffers(src, dst *gfx.Rect, window any) {
	r.stats.Presents++
	if r.mirror != nil {
		r.mirror.Presented(r.backbuffer)
	}
	w, ok := window.(*Window)
	if !ok || w == nil {
		return
	}
	sr := r.backbuffer.Bounds()
	if src != nil {
		sr = rectangle(*src).Intersect(sr)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	dr := w.img.Bounds()
	if dst != nil {
		dr = rectangle(*dst).Intersect(dr)
	}
	if sr.Empty() || dr.Empty() {
		return
	}
	draw.NearestNeighbor.Scale(w.img, dr, r.backbuffer, sr, draw.Src, nil)
}

func rectangle(r gfx.Rect) image.Rectangle {
	return image.Rect(int(r.X), int(r.Y), int(r.X+r.W), int(r.Y+r.H))
}

// ResetBackbuffer reallocates the backbuffer. Previous contents are lost.
func (r *Renderer) ResetBackbuffer(params *gfx.PresentationParameters) {
	r.params = *params
	w, h := int(params.BackBufferWidth), int(params.BackBufferHeight)
	r.backbuffer = image.NewRGBA(image.Rect(0, 0, w, h))
	r.bbDepth = nil
	if params.DepthStencilFormat != gfx.DepthFormatNone {
		r.bbDepth = newDepthRenderbuffer(params.BackBufferWidth, params.BackBufferHeight,
			params.DepthStencilFormat, params.MultiSampleCount)
	}
	r.viewport = gfx.Viewport{W: params.BackBufferWidth, H: params.BackBufferHeight, MaxDepth: 1}
	r.scissor = gfx.Rect{W: params.BackBufferWidth, H: params.BackBufferHeight}
}

// ReadBackbuffer copies a w×h region starting at (x, y) into data, four
// bytes per pixel in the backbuffer's channel order.
func (r *Renderer) ReadBackbuffer(x, y, w, h int32, data []byte) {
	region := image.Rect(int(x), int(y), int(x+w), int(y+h))
	if w <= 0 || h <= 0 || !region.In(r.backbuffer.Bounds()) {
		r.log.Warn("software: ReadBackbuffer region out of bounds", "x", x, "y", y, "w", w, "h", h)
		return
	}
	row := int(w) * 4
	if len(data) < row*int(h) {
		r.log.Warn("software: ReadBackbuffer data too small", "len", len(data), "need", row*int(h))
		return
	}
	bgra := r.params.BackBufferFormat == gfx.SurfaceFormatColorBgra
	for j := 0; j < int(h); j++ {
		off := r.backbuffer.PixOffset(int(x), int(y)+j)
		out := data[j*row : (j+1)*row]
		copy(out, r.backbuffer.Pix[off:off+row])
		if bgra {
			swapRB(out)
		}
	}
}

// BackbufferSize implements driver.Presenter.
func (r *Renderer) BackbufferSize() (w, h int32) {
	return r.params.BackBufferWidth, r.params.BackBufferHeight
}

// BackbufferSurfaceFormat implements driver.Presenter.
func (r *Renderer) BackbufferSurfaceFormat() gfx.SurfaceFormat { return r.params.BackBufferFormat }

// BackbufferDepthFormat implements driver.Presenter.
func (r *Renderer) BackbufferDepthFormat() gfx.DepthFormat { return r.params.DepthStencilFormat }

// BackbufferMultiSampleCount implements driver.Presenter.
func (r *Renderer) BackbufferMultiSampleCount() int32 { return r.params.MultiSampleCount }

func (r *Renderer) SetViewport(vp gfx.Viewport)   { r.viewport = vp }
func (r *Renderer) SetScissorRect(rect gfx.Rect)  { r.scissor = rect }
func (r *Renderer) BlendFactor() gfx.Color        { return r.blendFactor }
func (r *Renderer) SetBlendFactor(c gfx.Color)    { r.blendFactor = c }
func (r *Renderer) MultiSampleMask() int32        { return r.sampleMask }
func (r *Renderer) SetMultiSampleMask(mask int32) { r.sampleMask = mask }
func (r *Renderer) ReferenceStencil() int32       { return r.refStencil }
func (r *Renderer) SetReferenceStencil(ref int32) { r.refStencil = ref }

// SetBlendState applies s. The blend factor and sample mask follow it.
func (r *Renderer) SetBlendState(s *gfx.BlendState) {
	r.pass.blend = *s
	r.blendFactor = s.BlendFactor
	r.sampleMask = s.MultiSampleMask
}

// SetDepthStencilState applies s. The reference stencil follows it.
func (r *Renderer) SetDepthStencilState(s *gfx.DepthStencilState) {
	r.pass.depthStencil = *s
	r.refStencil = s.ReferenceStencil
}

func (r *Renderer) ApplyRasterizerState(s *gfx.RasterizerState) { r.pass.raster = *s }

func (r *Renderer) VerifySampler(index int32, tex driver.Texture, s *gfx.SamplerState) {
	r.bindSampler(r.samplers[:], index, tex, s)
}

func (r *Renderer) VerifyVertexSampler(index int32, tex driver.Texture, s *gfx.SamplerState) {
	r.bindSampler(r.vertexSamplers[:], index, tex, s)
}

func (r *Renderer) bindSampler(slots []samplerSlot, index int32, tex driver.Texture, s *gfx.SamplerState) {
	if index < 0 || int(index) >= len(slots) {
		r.log.Warn("software: sampler index out of range", "index", index, "slots", len(slots))
		return
	}
	t, _ := tex.(*Texture)
	slots[index].tex = t
	if s != nil {
		slots[index].state = *s
	}
}

// ApplyVertexBufferBindings records the vertex streams used by later draws.
func (r *Renderer) ApplyVertexBufferBindings(bindings []driver.VertexBufferBinding, updated bool, baseVertex int32) {
	if updated || len(r.bindings) != len(bindings) {
		r.bindings = r.bindings[:0]
		for _, b := range bindings {
			b.Declaration = b.Declaration.Clone()
			r.bindings = append(r.bindings, b)
		}
	}
	r.baseVertex = baseVertex
}

// SetRenderTargets binds targets, or the backbuffer when targets is empty.
func (r *Renderer) SetRenderTargets(targets []driver.RenderTarget, depthStencil driver.Renderbuffer, _ gfx.DepthFormat, _ bool) {
	r.targets = append(r.targets[:0], targets...)
	r.depthStencil, _ = depthStencil.(*renderbuffer)
	if len(targets) == 0 {
		r.viewport = gfx.Viewport{W: r.params.BackBufferWidth, H: r.params.BackBufferHeight, MaxDepth: 1}
		return
	}
	t := targets[0]
	w, h := t.Width, t.Height
	if t.Type == driver.RenderTargetCube {
		w, h = t.Size, t.Size
	}
	r.viewport = gfx.Viewport{W: w, H: h, MaxDepth: 1}
}

// Clear fills the bound color targets, or the backbuffer, and the bound
// depth-stencil surface.
func (r *Renderer) Clear(options gfx.ClearOptions, color gfx.Vec4, depth float32, stencil int32) {
	r.stats.Clears++
	px := [4]byte{unorm8(color.X), unorm8(color.Y), unorm8(color.Z), unorm8(color.W)}
	if options.Has(gfx.ClearTarget) {
		if len(r.targets) == 0 {
			fill(r.backbuffer.Pix, 4, orderPixel(px, r.params.BackBufferFormat == gfx.SurfaceFormatColorBgra))
		}
		for _, t := range r.targets {
			r.clearTarget(t, px)
		}
	}
	ds := r.bbDepth
	if len(r.targets) > 0 {
		ds = r.depthStencil
	}
	if ds == nil {
		return
	}
	if options.Has(gfx.ClearDepthBuffer) {
		for i := range ds.depth {
			ds.depth[i] = depth
		}
	}
	if options.Has(gfx.ClearStencil) && ds.stencil != nil {
		for i := range ds.stencil {
			ds.stencil[i] = uint8(stencil) //nolint:gosec // stencil is 8 bits
		}
	}
}

func (r *Renderer) clearTarget(t driver.RenderTarget, px [4]byte) {
	if rb, ok := t.ColorBuffer.(*renderbuffer); ok && rb != nil {
		if pix, ok := clearPixel(rb.format, px); ok {
			fill(rb.color, len(pix), pix)
		}
		return
	}
	tex, ok := t.Texture.(*Texture)
	if !ok || tex == nil {
		return
	}
	pix, ok := clearPixel(tex.format, px)
	if !ok {
		return
	}
	face := gfx.CubeMapFace(0)
	if t.Type == driver.RenderTargetCube {
		face = t.Face
	}
	fill(tex.level(face, 0), len(pix), pix)
	if r.mirror != nil {
		r.mirror.TextureUpdated(tex, face, 0)
	}
}

// clearPixel returns the stored bytes of a clear color in format f, or false
// for formats the software renderer does not clear.
func clearPixel(f gfx.SurfaceFormat, px [4]byte) ([]byte, bool) {
	switch f {
	case gfx.SurfaceFormatColor, gfx.SurfaceFormatColorSrgb:
		return px[:], true
	case gfx.SurfaceFormatColorBgra:
		p := orderPixel(px, true)
		return p, true
	case gfx.SurfaceFormatAlpha8:
		return px[3:], true
	}
	return nil, false
}

func orderPixel(px [4]byte, bgra bool) []byte {
	if bgra {
		px[0], px[2] = px[2], px[0]
	}
	return px[:]
}

func unorm8(v float32) byte {
	if v <= 0 || math.IsNaN(float64(v)) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}

func fill(dst []byte, stride int, pix []byte) {
	for i := 0; i+stride <= len(dst); i += stride {
		copy(dst[i:i+stride], pix)
	}
}

func swapRB(pix []byte) {
	for i := 0; i+4 <= len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}

// DrawIndexedPrimitives validates and counts an indexed draw.
func (r *Renderer) DrawIndexedPrimitives(pt gfx.PrimitiveType, baseVertex, minVertexIndex, numVertices, startIndex, primitiveCount int32, indices driver.Buffer, size gfx.IndexElementSize) {
	r.DrawInstancedPrimitives(pt, baseVertex, minVertexIndex, numVertices, startIndex, primitiveCount, 1, indices, size)
}

// DrawInstancedPrimitives validates and counts an instanced indexed draw.
func (r *Renderer) DrawInstancedPrimitives(pt gfx.PrimitiveType, baseVertex, minVertexIndex, numVertices, startIndex, primitiveCount, instanceCount int32, indices driver.Buffer, size gfx.IndexElementSize) {
	ib, _ := indices.(*Buffer)
	count := pt.VertexCount(primitiveCount)
	if ib == nil || !ib.index {
		r.reject("index buffer missing")
		return
	}
	if !r.indicesInRange(ib, startIndex, count, size, minVertexIndex, numVertices) {
		r.reject("index range out of bounds")
		return
	}
	r.count(primitiveCount, count, instanceCount)
}

// DrawPrimitives validates and counts a non-indexed draw.
func (r *Renderer) DrawPrimitives(pt gfx.PrimitiveType, vertexStart, primitiveCount int32) {
	if vertexStart < 0 {
		r.reject("negative vertex start")
		return
	}
	r.count(primitiveCount, pt.VertexCount(primitiveCount), 1)
}

func (r *Renderer) indicesInRange(ib *Buffer, start, count int32, size gfx.IndexElementSize, minIndex, numVertices int32) bool {
	if start < 0 || count < 0 {
		return false
	}
	n := int(size.Bytes())
	begin, end := int(start)*n, int(start+count)*n
	if end > len(ib.data) {
		return false
	}
	if numVertices <= 0 {
		return true
	}
	lo, hi := uint32(minIndex), uint32(minIndex+numVertices) //nolint:gosec // validated by caller
	for off := begin; off < end; off += n {
		var idx uint32
		if n == 2 {
			idx = uint32(ib.data[off]) | uint32(ib.data[off+1])<<8
		} else {
			idx = uint32(ib.data[off]) | uint32(ib.data[off+1])<<8 | uint32(ib.data[off+2])<<16 | uint32(ib.data[off+3])<<24
		}
		if idx < lo || idx >= hi {
			return false
		}
	}
	return true
}

func (r *Renderer) reject(reason string) {
	r.stats.Rejected++
	r.log.Warn("software: draw rejected", "reason", reason)
}

func (r *Renderer) count(primitives, vertices, instances int32) {
	if instances < 1 {
		instances = 1
	}
	submitted := int64(vertices) * int64(instances)
	r.stats.Draws++
	r.stats.Primitives += int64(primitives) * int64(instances)
	r.stats.Vertices += submitted
	for _, q := range r.queries {
		if q.active {
			q.samples += submitted
		}
	}
}

func (r *Renderer) SupportsDXT1() bool               { return true }
func (r *Renderer) SupportsS3TC() bool               { return true }
func (r *Renderer) SupportsBC7() bool                { return true }
func (r *Renderer) SupportsHardwareInstancing() bool { return true }
func (r *Renderer) SupportsNoOverwrite() bool        { return true }
func (r *Renderer) SupportsSRGBRenderTargets() bool  { return true }

func (r *Renderer) MaxTextureSlots() (textures, vertexTextures int32) {
	return maxTextureSlots, maxVertexTextureSlots
}

// MaxMultiSampleCount clamps requested to eight samples. Compressed formats
// cannot be multisampled.
func (r *Renderer) MaxMultiSampleCount(format gfx.SurfaceFormat, requested int32) int32 {
	if format.IsCompressed() || requested <= 0 {
		return 0
	}
	return min(requested, maxSamples)
}

var _ driver.Renderer = (*Renderer)(nil)

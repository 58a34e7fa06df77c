package software

import (
	"errors"

	"github.com/gogpu/g3d/driver"
	"github.com/gogpu/g3d/gfx"
)

var (
	errLevel     = errors.New("mip level out of range")
	errFace      = errors.New("cube face out of range")
	errRegion    = errors.New("region out of bounds")
	errShortData = errors.New("data shorter than region")
)

// TextureKind is the dimensionality of a texture.
type TextureKind uint8

const (
	Texture2D TextureKind = iota
	Texture3D
	TextureCube
)

// Texture is the host copy of one texture. Levels are stored tightly packed
// in block rows, face-major for cube textures.
type Texture struct {
	kind         TextureKind
	format       gfx.SurfaceFormat
	width        int32
	height       int32
	depth        int32
	levelCount   int32
	renderTarget bool
	name         string
	levels       [][]byte

	// Backend is reserved for the renderer's Mirror.
	Backend any
}

func newTexture(kind TextureKind, format gfx.SurfaceFormat, w, h, d, levelCount int32, rt bool) *Texture {
	t := &Texture{
		kind:         kind,
		format:       format,
		width:        w,
		height:       h,
		depth:        d,
		levelCount:   levelCount,
		renderTarget: rt,
	}
	faces := int32(1)
	if kind == TextureCube {
		faces = gfx.CubeMapFaceCount
	}
	t.levels = make([][]byte, faces*levelCount)
	for f := int32(0); f < faces; f++ {
		for l := int32(0); l < levelCount; l++ {
			lw, lh, ld := t.LevelSize(l)
			t.levels[f*levelCount+l] = make([]byte, format.TextureSize(lw, lh, ld))
		}
	}
	return t
}

func (t *Texture) Kind() TextureKind         { return t.kind }
func (t *Texture) Format() gfx.SurfaceFormat { return t.format }
func (t *Texture) LevelCount() int32         { return t.levelCount }
func (t *Texture) IsRenderTarget() bool      { return t.renderTarget }
func (t *Texture) Name() string              { return t.name }

// Size returns the dimensions of level 0. Depth is 1 for 2D and cube textures.
func (t *Texture) Size() (w, h, d int32) { return t.width, t.height, t.depth }

// LevelSize returns the dimensions of a mip level.
func (t *Texture) LevelSize(level int32) (w, h, d int32) {
	return max(1, t.width>>level), max(1, t.height>>level), max(1, t.depth>>level)
}

// Level returns the storage of one face and level. The slice is owned by
// the texture.
func (t *Texture) Level(face gfx.CubeMapFace, level int32) []byte {
	if level < 0 || level >= t.levelCount || face < 0 || int(face) >= len(t.levels)/int(t.levelCount) {
		return nil
	}
	return t.level(face, level)
}

func (t *Texture) level(face gfx.CubeMapFace, level int32) []byte {
	return t.levels[int32(face)*t.levelCount+level]
}

// access copies a region between data and one face and level, in either
// direction. Regions of block-compressed formats start on block boundaries.
func (t *Texture) access(face gfx.CubeMapFace, level, x, y, z, w, h, d int32, data []byte, write bool) error {
	if level < 0 || level >= t.levelCount {
		return errLevel
	}
	if face < 0 || int(face)*int(t.levelCount) >= len(t.levels) {
		return errFace
	}
	lw, lh, ld := t.LevelSize(level)
	if x < 0 || y < 0 || z < 0 || w <= 0 || h <= 0 || d <= 0 || x+w > lw || y+h > lh || z+d > ld {
		return errRegion
	}
	f := t.format
	bs := f.BlockSize()
	if x%bs != 0 || y%bs != 0 {
		return errRegion
	}
	pitch := int(f.RowPitch(lw))
	slice := pitch * int((lh+bs-1)/bs)
	rowBytes := int(f.RowPitch(w))
	rows := int((h + bs - 1) / bs)
	if len(data) < rowBytes*rows*int(d) {
		return errShortData
	}
	store := t.level(face, level)
	first := int(x/bs*f.BytesPerBlock()) + int(y/bs)*pitch
	i := 0
	for zi := int(z); zi < int(z+d); zi++ {
		for row := 0; row < rows; row++ {
			off := zi*slice + first + row*pitch
			if write {
				copy(store[off:off+rowBytes], data[i:i+rowBytes])
			} else {
				copy(data[i:i+rowBytes], store[off:off+rowBytes])
			}
			i += rowBytes
		}
	}
	return nil
}

func (r *Renderer) CreateTexture2D(format gfx.SurfaceFormat, width, height, levelCount int32, isRenderTarget bool) driver.Texture {
	return r.createTexture(Texture2D, format, width, height, 1, levelCount, isRenderTarget)
}

func (r *Renderer) CreateTexture3D(format gfx.SurfaceFormat, width, height, depth, levelCount int32) driver.Texture {
	return r.createTexture(Texture3D, format, width, height, depth, levelCount, false)
}

func (r *Renderer) CreateTextureCube(format gfx.SurfaceFormat, size, levelCount int32, isRenderTarget bool) driver.Texture {
	return r.createTexture(TextureCube, format, size, size, 1, levelCount, isRenderTarget)
}

// createTexture returns nil on failure so the device layer reports it.
func (r *Renderer) createTexture(kind TextureKind, format gfx.SurfaceFormat, w, h, d, levelCount int32, rt bool) driver.Texture {
	if !format.Valid() || w <= 0 || h <= 0 || d <= 0 || levelCount <= 0 {
		r.log.Error("software: invalid texture description",
			"format", format, "width", w, "height", h, "depth", d, "levels", levelCount)
		return nil
	}
	t := newTexture(kind, format, w, h, d, levelCount, rt)
	if r.mirror != nil {
		if err := r.mirror.TextureCreated(t); err != nil {
			r.log.Error("software: texture mirror failed", "err", err)
			return nil
		}
	}
	return t
}

func (r *Renderer) DisposeTexture(tex driver.Texture) {
	t, ok := tex.(*Texture)
	if !ok {
		return
	}
	for i := range r.samplers {
		if r.samplers[i].tex == t {
			r.samplers[i].tex = nil
		}
	}
	for i := range r.vertexSamplers {
		if r.vertexSamplers[i].tex == t {
			r.vertexSamplers[i].tex = nil
		}
	}
	if r.mirror != nil {
		r.mirror.TextureDisposed(t)
	}
	t.levels = nil
}

func (r *Renderer) SetTextureData2D(tex driver.Texture, x, y, w, h, level int32, data []byte) {
	r.setTextureData(tex, 0, x, y, 0, w, h, 1, level, data)
}

func (r *Renderer) SetTextureData3D(tex driver.Texture, x, y, z, w, h, d, level int32, data []byte) {
	r.setTextureData(tex, 0, x, y, z, w, h, d, level, data)
}

func (r *Renderer) SetTextureDataCube(tex driver.Texture, x, y, w, h int32, face gfx.CubeMapFace, level int32, data []byte) {
	r.setTextureData(tex, face, x, y, 0, w, h, 1, level, data)
}

func (r *Renderer) setTextureData(tex driver.Texture, face gfx.CubeMapFace, x, y, z, w, h, d, level int32, data []byte) {
	t, ok := tex.(*Texture)
	if !ok {
		return
	}
	if err := t.access(face, level, x, y, z, w, h, d, data, true); err != nil {
		r.log.Warn("software: texture upload ignored", "err", err,
			"format", t.format, "level", level, "x", x, "y", y, "w", w, "h", h)
		return
	}
	if r.mirror != nil {
		r.mirror.TextureUpdated(t, face, level)
	}
}

// SetTextureDataYUV splits data into its Y, U and V planes and uploads each
// into level 0 of the matching texture.
func (r *Renderer) SetTextureDataYUV(y, u, v driver.Texture, yWidth, yHeight, uvWidth, uvHeight int32, data []byte) {
	ySize := int(yWidth) * int(yHeight)
	uvSize := int(uvWidth) * int(uvHeight)
	if len(data) < ySize+2*uvSize {
		r.log.Warn("software: YUV upload ignored", "err", errShortData, "len", len(data))
		return
	}
	r.SetTextureData2D(y, 0, 0, yWidth, yHeight, 0, data[:ySize])
	r.SetTextureData2D(u, 0, 0, uvWidth, uvHeight, 0, data[ySize:ySize+uvSize])
	r.SetTextureData2D(v, 0, 0, uvWidth, uvHeight, 0, data[ySize+uvSize:ySize+2*uvSize])
}

func (r *Renderer) GetTextureData2D(tex driver.Texture, x, y, w, h, level int32, data []byte) {
	r.getTextureData(tex, 0, x, y, 0, w, h, 1, level, data)
}

func (r *Renderer) GetTextureData3D(tex driver.Texture, x, y, z, w, h, d, level int32, data []byte) {
	r.getTextureData(tex, 0, x, y, z, w, h, d, level, data)
}

func (r *Renderer) GetTextureDataCube(tex driver.Texture, x, y, w, h int32, face gfx.CubeMapFace, level int32, data []byte) {
	r.getTextureData(tex, face, x, y, 0, w, h, 1, level, data)
}

func (r *Renderer) getTextureData(tex driver.Texture, face gfx.CubeMapFace, x, y, z, w, h, d, level int32, data []byte) {
	t, ok := tex.(*Texture)
	if !ok {
		return
	}
	if err := t.access(face, level, x, y, z, w, h, d, data, false); err != nil {
		r.log.Warn("software: texture readback ignored", "err", err,
			"format", t.format, "level", level, "x", x, "y", y, "w", w, "h", h)
	}
}

func (r *Renderer) SetTextureName(tex driver.Texture, name string) {
	if t, ok := tex.(*Texture); ok {
		t.name = name
	}
}

// renderbuffer is a color or depth-stencil surface. Multisampled color
// renderbuffers store one resolved sample per pixel.
type renderbuffer struct {
	width, height int32
	samples       int32

	format  gfx.SurfaceFormat
	color   []byte
	texture *Texture

	depthFormat gfx.DepthFormat
	depth       []float32
	stencil     []uint8
}

func newDepthRenderbuffer(w, h int32, format gfx.DepthFormat, samples int32) *renderbuffer {
	rb := &renderbuffer{
		width:       w,
		height:      h,
		samples:     samples,
		depthFormat: format,
		depth:       make([]float32, int(w)*int(h)),
	}
	if format.HasStencil() {
		rb.stencil = make([]uint8, int(w)*int(h))
	}
	return rb
}

func (r *Renderer) GenColorRenderbuffer(width, height int32, format gfx.SurfaceFormat, multiSampleCount int32, tex driver.Texture) driver.Renderbuffer {
	if width <= 0 || height <= 0 || format.IsCompressed() {
		r.log.Error("software: invalid color renderbuffer", "format", format, "width", width, "height", height)
		return nil
	}
	t, _ := tex.(*Texture)
	return &renderbuffer{
		width:   width,
		height:  height,
		samples: multiSampleCount,
		format:  format,
		color:   make([]byte, format.TextureSize(width, height, 1)),
		texture: t,
	}
}

func (r *Renderer) GenDepthStencilRenderbuffer(width, height int32, format gfx.DepthFormat, multiSampleCount int32) driver.Renderbuffer {
	if width <= 0 || height <= 0 || format == gfx.DepthFormatNone {
		r.log.Error("software: invalid depth renderbuffer", "format", format, "width", width, "height", height)
		return nil
	}
	return newDepthRenderbuffer(width, height, format, multiSampleCount)
}

func (r *Renderer) DisposeRenderbuffer(rb driver.Renderbuffer) {
	b, ok := rb.(*renderbuffer)
	if !ok {
		return
	}
	if r.depthStencil == b {
		r.depthStencil = nil
	}
	b.color, b.depth, b.stencil, b.texture = nil, nil, nil, nil
}

// ResolveTarget copies a multisample color buffer into the target texture
// and regenerates its mip chain.
func (r *Renderer) ResolveTarget(target *driver.RenderTarget) {
	r.stats.Resolves++
	t, ok := target.Texture.(*Texture)
	if !ok || t == nil {
		return
	}
	face := gfx.CubeMapFace(0)
	if target.Type == driver.RenderTargetCube {
		face = target.Face
	}
	if rb, ok := target.ColorBuffer.(*renderbuffer); ok && rb != nil && rb.format == t.format {
		copy(t.level(face, 0), rb.color)
	}
	if t.levelCount > 1 {
		t.generateMips(face)
	}
	if r.mirror != nil {
		for l := int32(0); l < t.levelCount; l++ {
			r.mirror.TextureUpdated(t, face, l)
		}
	}
}

// generateMips box-filters each level from the one above. Only byte-channel
// formats are filtered; other levels are left untouched.
func (t *Texture) generateMips(face gfx.CubeMapFace) {
	var channels int
	switch t.format {
	case gfx.SurfaceFormatColor, gfx.SurfaceFormatColorBgra, gfx.SurfaceFormatColorSrgb:
		channels = 4
	case gfx.SurfaceFormatAlpha8:
		channels = 1
	default:
		return
	}
	for l := int32(1); l < t.levelCount; l++ {
		sw, sh, _ := t.LevelSize(l - 1)
		dw, dh, _ := t.LevelSize(l)
		src, dst := t.level(face, l-1), t.level(face, l)
		for y := range int(dh) {
			y0, y1 := min(2*y, int(sh)-1), min(2*y+1, int(sh)-1)
			for x := range int(dw) {
				x0, x1 := min(2*x, int(sw)-1), min(2*x+1, int(sw)-1)
				for c := range channels {
					sum := int(src[(y0*int(sw)+x0)*channels+c]) +
						int(src[(y0*int(sw)+x1)*channels+c]) +
						int(src[(y1*int(sw)+x0)*channels+c]) +
						int(src[(y1*int(sw)+x1)*channels+c])
					dst[(y*int(dw)+x)*channels+c] = byte((sum + 2) / 4)
				}
			}
		}
	}
}

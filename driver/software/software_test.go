package software

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"testing"

	"github.com/gogpu/g3d/driver"
	"github.com/gogpu/g3d/gfx"
)

func newTestRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()
	var o Options
	o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, opt := range opts {
		opt(&o)
	}
	r, err := NewRenderer(&gfx.PresentationParameters{
		BackBufferWidth:    8,
		BackBufferHeight:   4,
		BackBufferFormat:   gfx.SurfaceFormatColor,
		DepthStencilFormat: gfx.DepthFormatD24S8,
	}, false, o)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func TestNewRendererRejectsEmptyBackbuffer(t *testing.T) {
	_, err := NewRenderer(&gfx.PresentationParameters{}, false, Options{})
	if !errors.Is(err, driver.ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}

func TestTexture2DRoundTrip(t *testing.T) {
	r := newTestRenderer(t)
	tex := r.CreateTexture2D(gfx.SurfaceFormatColor, 64, 64, 1, false)
	if tex == nil {
		t.Fatal("CreateTexture2D returned nil")
	}
	src := make([]byte, 64*64*4)
	for i := range src {
		src[i] = byte(i * 7)
	}
	r.SetTextureData2D(tex, 0, 0, 64, 64, 0, src)

	got := make([]byte, len(src))
	r.GetTextureData2D(tex, 0, 0, 64, 64, 0, got)
	if !bytes.Equal(got, src) {
		t.Error("readback differs from upload")
	}
}

func TestTextureSubRegion(t *testing.T) {
	r := newTestRenderer(t)
	tex := r.CreateTexture2D(gfx.SurfaceFormatAlpha8, 4, 4, 1, false)
	r.SetTextureData2D(tex, 1, 2, 2, 2, 0, []byte{1, 2, 3, 4})

	got := make([]byte, 16)
	r.GetTextureData2D(tex, 0, 0, 4, 4, 0, got)
	want := []byte{
		0, 0, 0, 0,
		0, 0, 0, 0,
		0, 1, 2, 0,
		0, 3, 4, 0,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("level = %v, want %v", got, want)
	}
}

func TestTextureCompressedBlocks(t *testing.T) {
	r := newTestRenderer(t)
	tex := r.CreateTexture2D(gfx.SurfaceFormatDxt1, 8, 8, 1, false).(*Texture)
	if n := len(tex.Level(0, 0)); n != 4*8 {
		t.Fatalf("level size = %d, want 32", n)
	}
	block := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	r.SetTextureData2D(tex, 4, 4, 4, 4, 0, block)
	if !bytes.Equal(tex.Level(0, 0)[24:32], block) {
		t.Errorf("block 3 = %v, want %v", tex.Level(0, 0)[24:32], block)
	}

	// Unaligned regions are rejected.
	r.SetTextureData2D(tex, 2, 0, 4, 4, 0, block)
	if !bytes.Equal(tex.Level(0, 0)[:8], make([]byte, 8)) {
		t.Error("unaligned upload modified the texture")
	}
}

func TestTextureOutOfBoundsIgnored(t *testing.T) {
	r := newTestRenderer(t)
	tex := r.CreateTexture2D(gfx.SurfaceFormatColor, 2, 2, 2, false).(*Texture)
	tests := []struct {
		name              string
		x, y, w, h, level int32
		data              []byte
	}{
		{"level", 0, 0, 1, 1, 2, make([]byte, 4)},
		{"width", 1, 0, 2, 1, 0, make([]byte, 8)},
		{"short", 0, 0, 2, 2, 0, make([]byte, 15)},
		{"mip", 0, 0, 2, 1, 1, make([]byte, 8)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := range tt.data {
				tt.data[i] = 0xFF
			}
			r.SetTextureData2D(tex, tt.x, tt.y, tt.w, tt.h, tt.level, tt.data)
			for l := int32(0); l < tex.LevelCount(); l++ {
				if !bytes.Equal(tex.Level(0, l), make([]byte, len(tex.Level(0, l)))) {
					t.Errorf("level %d modified", l)
				}
			}
		})
	}
}

func TestTexture3DAndCube(t *testing.T) {
	r := newTestRenderer(t)

	vol := r.CreateTexture3D(gfx.SurfaceFormatAlpha8, 2, 2, 3, 1)
	r.SetTextureData3D(vol, 0, 0, 1, 2, 2, 2, 0, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	got := make([]byte, 12)
	r.GetTextureData3D(vol, 0, 0, 0, 2, 2, 3, 0, got)
	if want := []byte{0, 0, 0, 0, 1, 2, 3, 4, 5, 6, 7, 8}; !bytes.Equal(got, want) {
		t.Errorf("3D = %v, want %v", got, want)
	}

	cube := r.CreateTextureCube(gfx.SurfaceFormatAlpha8, 2, 1, false)
	r.SetTextureDataCube(cube, 0, 0, 2, 2, gfx.CubeMapNegativeZ, 0, []byte{9, 9, 9, 9})
	face := make([]byte, 4)
	r.GetTextureDataCube(cube, 0, 0, 2, 2, gfx.CubeMapPositiveX, 0, face)
	if !bytes.Equal(face, make([]byte, 4)) {
		t.Errorf("+X = %v, want zeros", face)
	}
	r.GetTextureDataCube(cube, 0, 0, 2, 2, gfx.CubeMapNegativeZ, 0, face)
	if !bytes.Equal(face, []byte{9, 9, 9, 9}) {
		t.Errorf("-Z = %v, want nines", face)
	}
}

func TestTextureYUV(t *testing.T) {
	r := newTestRenderer(t)
	y := r.CreateTexture2D(gfx.SurfaceFormatAlpha8, 4, 2, 1, false).(*Texture)
	u := r.CreateTexture2D(gfx.SurfaceFormatAlpha8, 2, 1, 1, false).(*Texture)
	v := r.CreateTexture2D(gfx.SurfaceFormatAlpha8, 2, 1, 1, false).(*Texture)
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8, 10, 11, 20, 21}
	r.SetTextureDataYUV(y, u, v, 4, 2, 2, 1, data)

	if !bytes.Equal(y.Level(0, 0), data[:8]) {
		t.Errorf("Y = %v", y.Level(0, 0))
	}
	if !bytes.Equal(u.Level(0, 0), data[8:10]) {
		t.Errorf("U = %v", u.Level(0, 0))
	}
	if !bytes.Equal(v.Level(0, 0), data[10:12]) {
		t.Errorf("V = %v", v.Level(0, 0))
	}
}

func TestVertexBufferStrided(t *testing.T) {
	r := newTestRenderer(t)
	buf := r.GenVertexBuffer(false, gfx.BufferUsageNone, 16)

	r.SetVertexBufferData(buf, 2, []byte{1, 2, 3, 4}, 2, 2, 6, gfx.SetDataNone)
	want := []byte{0, 0, 1, 2, 0, 0, 0, 0, 3, 4, 0, 0, 0, 0, 0, 0}
	if got := buf.(*Buffer).Bytes(); !bytes.Equal(got, want) {
		t.Errorf("buffer = %v, want %v", got, want)
	}

	out := make([]byte, 4)
	r.GetVertexBufferData(buf, 2, out, 2, 2, 6)
	if !bytes.Equal(out, []byte{1, 2, 3, 4}) {
		t.Errorf("readback = %v", out)
	}

	r.SetVertexBufferData(buf, 0, []byte{9}, 1, 1, 0, gfx.SetDataDiscard)
	if got := buf.(*Buffer).Bytes(); got[0] != 9 || got[2] != 0 {
		t.Errorf("discard kept old contents: %v", got)
	}
}

func TestIndexBufferBounds(t *testing.T) {
	r := newTestRenderer(t)
	buf := r.GenIndexBuffer(false, gfx.BufferUsageWriteOnly, 4)
	r.SetIndexBufferData(buf, 2, []byte{1, 2, 3}, gfx.SetDataNone)
	if got := buf.(*Buffer).Bytes(); !bytes.Equal(got, make([]byte, 4)) {
		t.Errorf("out-of-bounds write landed: %v", got)
	}
	r.SetIndexBufferData(buf, 2, []byte{1, 2}, gfx.SetDataNone)
	out := make([]byte, 4)
	r.GetIndexBufferData(buf, 0, out)
	if !bytes.Equal(out, []byte{0, 0, 1, 2}) {
		t.Errorf("readback = %v", out)
	}
}

func TestClearBackbufferAndRead(t *testing.T) {
	r := newTestRenderer(t)
	r.Clear(gfx.ClearAll, gfx.Vec4{X: 1, Y: 0, Z: 0.5, W: 1}, 0.25, 3)

	px := make([]byte, 8)
	r.ReadBackbuffer(6, 3, 2, 1, px)
	want := []byte{255, 0, 128, 255, 255, 0, 128, 255}
	if !bytes.Equal(px, want) {
		t.Errorf("pixels = %v, want %v", px, want)
	}
	if r.bbDepth.depth[0] != 0.25 || r.bbDepth.stencil[5] != 3 {
		t.Errorf("depth/stencil = %v/%v", r.bbDepth.depth[0], r.bbDepth.stencil[5])
	}
}

func TestClearRenderTargetTexture(t *testing.T) {
	r := newTestRenderer(t)
	tex := r.CreateTexture2D(gfx.SurfaceFormatColorBgra, 2, 2, 1, true).(*Texture)
	r.SetRenderTargets([]driver.RenderTarget{{Type: driver.RenderTarget2D, Width: 2, Height: 2, LevelCount: 1, Texture: tex}},
		nil, gfx.DepthFormatNone, false)
	r.Clear(gfx.ClearTarget, gfx.Vec4{X: 1, W: 1}, 0, 0)

	if got := tex.Level(0, 0)[:4]; !bytes.Equal(got, []byte{0, 0, 255, 255}) {
		t.Errorf("BGRA pixel = %v", got)
	}
	bb := make([]byte, 4)
	r.ReadBackbuffer(0, 0, 1, 1, bb)
	if !bytes.Equal(bb, make([]byte, 4)) {
		t.Errorf("backbuffer touched: %v", bb)
	}
}

func TestResolveTargetMips(t *testing.T) {
	r := newTestRenderer(t)
	tex := r.CreateTexture2D(gfx.SurfaceFormatAlpha8, 2, 2, 2, true).(*Texture)
	rb := r.GenColorRenderbuffer(2, 2, gfx.SurfaceFormatAlpha8, 4, tex)
	rt := driver.RenderTarget{Type: driver.RenderTarget2D, Width: 2, Height: 2, LevelCount: 2, MultiSampleCount: 4, Texture: tex, ColorBuffer: rb}
	r.SetRenderTargets([]driver.RenderTarget{rt}, nil, gfx.DepthFormatNone, false)
	r.Clear(gfx.ClearTarget, gfx.Vec4{W: 1}, 0, 0)
	r.ResolveTarget(&rt)

	if got := tex.Level(0, 0); !bytes.Equal(got, []byte{255, 255, 255, 255}) {
		t.Errorf("level 0 = %v", got)
	}
	if got := tex.Level(0, 1); !bytes.Equal(got, []byte{255}) {
		t.Errorf("level 1 = %v", got)
	}
}

func TestBoxFilter(t *testing.T) {
	tex := newTexture(Texture2D, gfx.SurfaceFormatAlpha8, 2, 2, 1, 2, true)
	copy(tex.level(0, 0), []byte{0, 10, 20, 30})
	tex.generateMips(0)
	if got := tex.level(0, 1)[0]; got != 15 {
		t.Errorf("mip = %d, want 15", got)
	}
}

func TestDrawValidation(t *testing.T) {
	r := newTestRenderer(t)
	ib := r.GenIndexBuffer(false, gfx.BufferUsageNone, 6)
	r.SetIndexBufferData(ib, 0, []byte{0, 0, 1, 0, 2, 0}, gfx.SetDataNone)

	r.DrawIndexedPrimitives(gfx.PrimitiveTriangleList, 0, 0, 3, 0, 1, ib, gfx.IndexElementSize16Bit)
	r.DrawIndexedPrimitives(gfx.PrimitiveTriangleList, 0, 0, 2, 0, 1, ib, gfx.IndexElementSize16Bit)
	r.DrawIndexedPrimitives(gfx.PrimitiveTriangleList, 0, 0, 3, 1, 1, ib, gfx.IndexElementSize16Bit)
	r.DrawIndexedPrimitives(gfx.PrimitiveTriangleList, 0, 0, 3, 0, 1, nil, gfx.IndexElementSize16Bit)
	r.DrawPrimitives(gfx.PrimitiveTriangleStrip, 0, 2)

	s := r.Stats()
	if s.Draws != 2 || s.Rejected != 3 {
		t.Errorf("draws = %d rejected = %d, want 2 and 3", s.Draws, s.Rejected)
	}
	if s.Vertices != 3+4 {
		t.Errorf("vertices = %d, want 7", s.Vertices)
	}
}

func TestOcclusionQuery(t *testing.T) {
	r := newTestRenderer(t)
	q := r.CreateQuery()
	if r.QueryComplete(q) {
		t.Error("fresh query complete")
	}
	r.DrawPrimitives(gfx.PrimitiveTriangleList, 0, 1)
	r.QueryBegin(q)
	r.DrawPrimitives(gfx.PrimitiveTriangleList, 0, 2)
	ib := r.GenIndexBuffer(false, gfx.BufferUsageNone, 12)
	r.DrawInstancedPrimitives(gfx.PrimitiveTriangleList, 0, 0, 0, 0, 1, 3, ib, gfx.IndexElementSize32Bit)
	r.QueryEnd(q)
	r.DrawPrimitives(gfx.PrimitiveTriangleList, 0, 5)

	if !r.QueryComplete(q) {
		t.Fatal("query not complete after QueryEnd")
	}
	if got := r.QueryPixelCount(q); got != 6+9 {
		t.Errorf("pixel count = %d, want 15", got)
	}
	r.DisposeQuery(q)
	if len(r.queries) != 0 {
		t.Errorf("queries = %d after dispose", len(r.queries))
	}
}

func TestEffects(t *testing.T) {
	reflect := func(code []byte) (*gfx.EffectData, error) {
		return &gfx.EffectData{
			Parameters: []*gfx.EffectParameter{{Name: "Tint", Class: gfx.ParameterVector, Type: gfx.ParameterFloat, Columns: 4, Values: make([]byte, 16)}},
			Techniques: []gfx.EffectTechnique{{Name: "A", Passes: []string{"P0"}}, {Name: "B", Passes: []string{"P0", "P1"}}},
		}, nil
	}
	r := newTestRenderer(t, WithReflector(reflect))
	e, data, err := r.CreateEffect([]byte("fx"))
	if err != nil {
		t.Fatalf("CreateEffect: %v", err)
	}
	data.Parameter("Tint").Values[0] = 7

	r.SetEffectTechnique(e, 1)
	r.ApplyEffect(e, 1)
	if got := e.(*Effect).Applied()[0][0]; got != 7 {
		t.Errorf("applied tint = %d, want 7", got)
	}
	r.ApplyEffect(e, 2)
	if n := e.(*Effect).Passes(); n != 1 {
		t.Errorf("passes = %d, want 1", n)
	}

	c, cdata, err := r.CloneEffect(e)
	if err != nil {
		t.Fatalf("CloneEffect: %v", err)
	}
	cdata.Parameter("Tint").Values[0] = 9
	if data.Parameter("Tint").Values[0] != 7 {
		t.Error("clone shares parameter storage")
	}
	if c.(*Effect).Data().CurrentTechnique != 1 {
		t.Error("clone lost current technique")
	}
}

func TestDefaultReflector(t *testing.T) {
	if _, err := DefaultReflector(nil); !errors.Is(err, ErrEmptyEffect) {
		t.Errorf("err = %v, want ErrEmptyEffect", err)
	}
	data, err := DefaultReflector([]byte("x"))
	if err != nil || len(data.Techniques) != 1 || data.Techniques[0].Passes[0] != "P0" {
		t.Errorf("data = %+v, err = %v", data, err)
	}
}

func TestPassRestore(t *testing.T) {
	r := newTestRenderer(t)
	e, _, _ := r.CreateEffect([]byte("fx"))
	r.BeginPassRestore(e)
	r.ApplyRasterizerState(&gfx.RasterizerState{CullMode: gfx.CullNone, FillMode: gfx.FillWireFrame})
	r.EndPassRestore(e)
	if r.pass.raster.FillMode != gfx.FillSolid {
		t.Error("rasterizer state not restored")
	}
}

func TestSwapBuffersScales(t *testing.T) {
	r := newTestRenderer(t)
	r.Clear(gfx.ClearTarget, gfx.Vec4{Y: 1, W: 1}, 0, 0)
	w := NewWindow(16, 8)
	r.SwapBuffers(nil, nil, w)

	img := w.Snapshot()
	if got := img.RGBAAt(15, 7); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("corner = %v", got)
	}

	r.Clear(gfx.ClearTarget, gfx.Vec4{X: 1, W: 1}, 0, 0)
	r.SwapBuffers(nil, &gfx.Rect{X: 0, Y: 0, W: 4, H: 4}, w)
	img = w.Snapshot()
	if got := img.RGBAAt(0, 0); got.R != 255 {
		t.Errorf("dst region not updated: %v", got)
	}
	if got := img.RGBAAt(8, 4); got.G != 255 {
		t.Errorf("outside dst region changed: %v", got)
	}
	if r.Stats().Presents != 2 {
		t.Errorf("presents = %d", r.Stats().Presents)
	}
}

func TestDriver(t *testing.T) {
	d := New()
	if d.Name() != "software" {
		t.Errorf("name = %q", d.Name())
	}
	if _, ok := d.PrepareWindowAttributes(); !ok {
		t.Error("software driver declined")
	}
	if w, h := d.DrawableSize(NewWindow(3, 5)); w != 3 || h != 5 {
		t.Errorf("drawable = %dx%d", w, h)
	}
	if w, h := d.DrawableSize(image.NewRGBA(image.Rect(0, 0, 1, 1))); w != 0 || h != 0 {
		t.Errorf("foreign window size = %dx%d", w, h)
	}
}

func TestMarkersAndCaps(t *testing.T) {
	r := newTestRenderer(t)
	r.SetStringMarker("frame 1")
	if m := r.Markers(); len(m) != 1 || m[0] != "frame 1" {
		t.Errorf("markers = %v", m)
	}
	if got := r.MaxMultiSampleCount(gfx.SurfaceFormatColor, 16); got != 8 {
		t.Errorf("max samples = %d, want 8", got)
	}
	if got := r.MaxMultiSampleCount(gfx.SurfaceFormatDxt5, 4); got != 0 {
		t.Errorf("compressed samples = %d, want 0", got)
	}
}

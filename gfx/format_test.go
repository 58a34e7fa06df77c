package gfx

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestTextureSize(t *testing.T) {
	tests := []struct {
		name   string
		format SurfaceFormat
		w, h   int32
		d      int32
		want   int32
	}{
		{"color 64x64", SurfaceFormatColor, 64, 64, 1, 64 * 64 * 4},
		{"alpha8 3x5", SurfaceFormatAlpha8, 3, 5, 1, 15},
		{"vector4 2x2x2", SurfaceFormatVector4, 2, 2, 2, 128},
		{"dxt1 64x64", SurfaceFormatDxt1, 64, 64, 1, 2048},
		{"dxt5 partial block", SurfaceFormatDxt5, 5, 5, 1, 4 * 16},
		{"dxt1 1x1", SurfaceFormatDxt1, 1, 1, 1, 8},
		{"bgr565 7x1", SurfaceFormatBgr565, 7, 1, 1, 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.TextureSize(tt.w, tt.h, tt.d); got != tt.want {
				t.Errorf("TextureSize(%d, %d, %d) = %d, want %d", tt.w, tt.h, tt.d, got, tt.want)
			}
		})
	}
}

func TestSurfaceFormatString(t *testing.T) {
	if got := SurfaceFormatBc7.String(); got != "Bc7" {
		t.Errorf("String() = %q, want %q", got, "Bc7")
	}
	if got := SurfaceFormat(99).String(); got != "Unknown" {
		t.Errorf("String() = %q, want %q", got, "Unknown")
	}
	if SurfaceFormat(-1).Valid() {
		t.Error("SurfaceFormat(-1).Valid() = true")
	}
}

func TestGPUFormatRoundTrip(t *testing.T) {
	for _, f := range []SurfaceFormat{SurfaceFormatColor, SurfaceFormatColorBgra, SurfaceFormatAlpha8} {
		tf := f.GPUFormat()
		if tf == gputypes.TextureFormatUndefined {
			t.Fatalf("%v has no GPU format", f)
		}
		back, ok := SurfaceFormatFromGPU(tf)
		if !ok || back != f {
			t.Errorf("SurfaceFormatFromGPU(%v) = %v, %v; want %v", tf, back, ok, f)
		}
	}
	if SurfaceFormatDxt1.GPUFormat() != gputypes.TextureFormatBC1RGBAUnorm {
		t.Error("Dxt1 should map to BC1")
	}
	if SurfaceFormatBc7Srgb.GPUFormat() != gputypes.TextureFormatBC7RGBAUnormSrgb {
		t.Error("Bc7Srgb should map to BC7 sRGB")
	}
	if SurfaceFormatHdrBlendable.GPUFormat() != gputypes.TextureFormatUndefined {
		t.Error("HdrBlendable should have no GPU format")
	}
	if DepthFormatD24S8.GPUFormat() != gputypes.TextureFormatDepth24PlusStencil8 {
		t.Error("D24S8 should map to Depth24PlusStencil8")
	}
}

func TestPrimitiveVertexCount(t *testing.T) {
	tests := []struct {
		p    PrimitiveType
		n    int32
		want int32
	}{
		{PrimitiveTriangleList, 2, 6},
		{PrimitiveTriangleStrip, 2, 4},
		{PrimitiveLineList, 3, 6},
		{PrimitiveLineStrip, 3, 4},
		{PrimitivePointList, 5, 5},
	}
	for _, tt := range tests {
		if got := tt.p.VertexCount(tt.n); got != tt.want {
			t.Errorf("%d.VertexCount(%d) = %d, want %d", tt.p, tt.n, got, tt.want)
		}
	}
}

func TestEffectDataCloneIsDeep(t *testing.T) {
	e := &EffectData{
		Parameters: []*EffectParameter{{Name: "World", Values: []byte{1, 2, 3, 4}}},
		Techniques: []EffectTechnique{{Name: "Main", Passes: []string{"P0"}}},
	}
	c := e.Clone()
	c.Parameters[0].Values[0] = 9
	c.Techniques[0].Passes[0] = "changed"
	if e.Parameters[0].Values[0] != 1 {
		t.Error("Clone shares parameter storage")
	}
	if e.Techniques[0].Passes[0] != "P0" {
		t.Error("Clone shares technique passes")
	}
}

func TestEffectDataLoadParameterValues(t *testing.T) {
	e := &EffectData{Parameters: []*EffectParameter{
		{Name: "a", Values: make([]byte, 4)},
		{Name: "b", Values: make([]byte, 2)},
	}}
	storage := e.Parameters[0].Values
	e.LoadParameterValues([][]byte{{1, 2, 3, 4}, {5, 6, 7}, {8}})
	if storage[3] != 4 {
		t.Error("same-length values should be copied in place")
	}
	if got := len(e.Parameters[1].Values); got != 3 {
		t.Errorf("resized parameter length = %d, want 3", got)
	}
	if e.Parameter("b") != e.Parameters[1] {
		t.Error("Parameter(b) lookup failed")
	}
	if e.Parameter("missing") != nil {
		t.Error("Parameter(missing) should be nil")
	}
}

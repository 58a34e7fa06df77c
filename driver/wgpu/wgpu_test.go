//go:build !nogpu

package wgpu

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/g3d/driver"
	"github.com/gogpu/g3d/driver/software"
	"github.com/gogpu/g3d/gfx"
)

const testShader = `
@group(0) @binding(0) var<uniform> tint: vec4<f32>;
@group(0) @binding(1) var tex: texture_2d<f32>;
@group(0) @binding(2) var samp: sampler;
@group(0) @binding(3) var<uniform> mvp: mat4x4<f32>;

@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    let x = f32(i32(i) - 1);
    return mvp * vec4<f32>(x, 0.0, 0.0, 1.0);
}

@fragment
fn fs_main(@builtin(position) p: vec4<f32>) -> @location(0) vec4<f32> {
    return textureSample(tex, samp, p.xy) * tint;
}
`

func noopInstance() (hal.Instance, error) {
	api := noop.API{}
	return api.CreateInstance(nil)
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	d := New(WithInstance(noopInstance), WithLogger(quiet()))
	r, err := d.CreateDevice(&gfx.PresentationParameters{
		BackBufferWidth:  32,
		BackBufferHeight: 16,
		BackBufferFormat: gfx.SurfaceFormatColor,
	}, false)
	if err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	wr, ok := r.(*Renderer)
	if !ok {
		t.Fatalf("CreateDevice returned %T", r)
	}
	return wr
}

func TestPrepareWindowAttributes(t *testing.T) {
	d := New(WithInstance(noopInstance))
	flags, ok := d.PrepareWindowAttributes()
	if !ok {
		t.Fatal("noop instance declined")
	}
	if flags&driver.WindowVulkan == 0 {
		t.Errorf("flags = %v, want Vulkan", flags)
	}

	failing := New(WithInstance(func() (hal.Instance, error) { return nil, ErrNoBackend }), WithLogger(quiet()))
	if _, ok := failing.PrepareWindowAttributes(); ok {
		t.Error("driver without an instance accepted")
	}
}

func TestCreateDeviceNoInstance(t *testing.T) {
	d := New(WithInstance(func() (hal.Instance, error) { return nil, ErrNoBackend }))
	_, err := d.CreateDevice(&gfx.PresentationParameters{BackBufferWidth: 4, BackBufferHeight: 4}, false)
	if !errors.Is(err, ErrNoBackend) {
		t.Errorf("err = %v, want ErrNoBackend", err)
	}
}

// surfaceProvider implements gpucontext.DeviceProvider without HAL access.
type surfaceProvider struct {
	format gputypes.TextureFormat
	name   string
}

func (p *surfaceProvider) Device() gpucontext.Device             { return nil }
func (p *surfaceProvider) Queue() gpucontext.Queue               { return nil }
func (p *surfaceProvider) Adapter() gpucontext.Adapter           { return nil }
func (p *surfaceProvider) SurfaceFormat() gputypes.TextureFormat { return p.format }
func (p *surfaceProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: p.name, Type: gpucontext.AdapterTypeUnknown}
}

var _ gpucontext.DeviceProvider = (*halProvider)(nil)

// halProvider also exposes a HAL device and queue.
type halProvider struct {
	surfaceProvider
	device hal.Device
	queue  hal.Queue
}

func (p *halProvider) HalDevice() any { return p.device }
func (p *halProvider) HalQueue() any  { return p.queue }

func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	instance, err := noopInstance()
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	return openDev.Device, openDev.Queue, func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
}

func TestDeviceProvider(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p := &halProvider{
		surfaceProvider: surfaceProvider{format: gputypes.TextureFormatBGRA8Unorm},
		device:          device,
		queue:           queue,
	}
	d := New(WithDeviceProvider(p), WithLogger(quiet()))
	if _, ok := d.PrepareWindowAttributes(); !ok {
		t.Fatal("provider-backed driver declined")
	}
	r, err := d.CreateDevice(&gfx.PresentationParameters{BackBufferWidth: 4, BackBufferHeight: 4}, false)
	if err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	defer r.Destroy()
	if got := r.BackbufferSurfaceFormat(); got != gfx.SurfaceFormatColorBgra {
		t.Errorf("backbuffer format = %v, want ColorBgra from the surface", got)
	}
	if got := r.(*Renderer).AdapterName(); got != "provided" {
		t.Errorf("adapter name = %q, want the unnamed default", got)
	}
	if r.SupportsDXT1() {
		t.Error("BC compression assumed on a borrowed device")
	}

	p.name = "Host GPU"
	named, err := d.CreateDevice(&gfx.PresentationParameters{BackBufferWidth: 4, BackBufferHeight: 4}, false)
	if err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	defer named.Destroy()
	if got := named.(*Renderer).AdapterName(); got != "Host GPU" {
		t.Errorf("adapter name = %q, want the provider's", got)
	}
}

// featureInstance wraps the noop instance to advertise adapter features and
// format capabilities, and records the features a device is opened with.
type featureInstance struct {
	hal.Instance
	features gputypes.Features
	caps     hal.TextureFormatCapabilityFlags
	opened   gputypes.Features
}

func (i *featureInstance) EnumerateAdapters(s hal.Surface) []hal.ExposedAdapter {
	adapters := i.Instance.EnumerateAdapters(s)
	for k := range adapters {
		adapters[k].Features = i.features
		adapters[k].Adapter = &featureAdapter{Adapter: adapters[k].Adapter, inst: i}
	}
	return adapters
}

type featureAdapter struct {
	hal.Adapter
	inst *featureInstance
}

func (a *featureAdapter) Open(f gputypes.Features, l gputypes.Limits) (hal.OpenDevice, error) {
	a.inst.opened = f
	return a.Adapter.Open(f, l)
}

func (a *featureAdapter) TextureFormatCapabilities(gputypes.TextureFormat) hal.TextureFormatCapabilities {
	return hal.TextureFormatCapabilities{Flags: a.inst.caps}
}

func newFeatureRenderer(t *testing.T, fi *featureInstance) *Renderer {
	t.Helper()
	d := New(WithLogger(quiet()), WithInstance(func() (hal.Instance, error) {
		inst, err := noopInstance()
		if err != nil {
			return nil, err
		}
		fi.Instance = inst
		return fi, nil
	}))
	r, err := d.CreateDevice(&gfx.PresentationParameters{BackBufferWidth: 8, BackBufferHeight: 8}, false)
	if err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	t.Cleanup(r.Destroy)
	return r.(*Renderer)
}

func TestCompressionSupport(t *testing.T) {
	plain := newTestRenderer(t)
	defer plain.Destroy()
	if plain.SupportsDXT1() || plain.SupportsS3TC() || plain.SupportsBC7() {
		t.Error("adapter without BC support reports compression")
	}
	if tex := plain.CreateTexture2D(gfx.SurfaceFormatDxt1, 8, 8, 1, false); tex == nil {
		t.Fatal("host copy of a compressed texture not created")
	}
	if s := plain.Uploads(); s.Textures != 0 || s.Skipped != 1 {
		t.Errorf("compressed texture mirrored without BC: %+v", s)
	}

	fi := &featureInstance{
		features: gputypes.Features(gputypes.FeatureTextureCompressionBC | gputypes.FeatureShaderF16),
		caps:     hal.TextureFormatCapabilitySampled,
	}
	bc := newFeatureRenderer(t, fi)
	if !bc.SupportsDXT1() || !bc.SupportsS3TC() || !bc.SupportsBC7() {
		t.Error("BC adapter reports no compression")
	}
	if fi.opened != gputypes.Features(gputypes.FeatureTextureCompressionBC) {
		t.Errorf("opened with features %#x, want only BC", uint64(fi.opened))
	}
	bc.CreateTexture2D(gfx.SurfaceFormatDxt1, 8, 8, 1, false)
	if got := bc.Uploads().Textures; got != 1 {
		t.Errorf("compressed textures mirrored = %d, want 1", got)
	}
}

func TestMaxMultiSampleCount(t *testing.T) {
	r := newTestRenderer(t)
	defer r.Destroy()
	tests := []struct {
		format    gfx.SurfaceFormat
		requested int32
		want      int32
	}{
		{gfx.SurfaceFormatColor, 16, 4},
		{gfx.SurfaceFormatColor, 8, 4},
		{gfx.SurfaceFormatColor, 2, 2},
		{gfx.SurfaceFormatColor, 0, 0},
		{gfx.SurfaceFormatDxt1, 4, 0},
	}
	for _, tt := range tests {
		if got := r.MaxMultiSampleCount(tt.format, tt.requested); got != tt.want {
			t.Errorf("MaxMultiSampleCount(%v, %d) = %d, want %d", tt.format, tt.requested, got, tt.want)
		}
	}

	single := newFeatureRenderer(t, &featureInstance{caps: hal.TextureFormatCapabilitySampled})
	if got := single.MaxMultiSampleCount(gfx.SurfaceFormatColor, 4); got != 0 {
		t.Errorf("format without multisample capability = %d, want 0", got)
	}
}

func TestDeviceProviderWithoutHAL(t *testing.T) {
	d := New(WithDeviceProvider(&surfaceProvider{}), WithLogger(quiet()))
	_, err := d.CreateDevice(&gfx.PresentationParameters{BackBufferWidth: 4, BackBufferHeight: 4}, false)
	if !errors.Is(err, ErrProvider) {
		t.Errorf("err = %v, want ErrProvider", err)
	}
}

func TestMirrorTextures(t *testing.T) {
	r := newTestRenderer(t)
	defer r.Destroy()

	tex := r.CreateTexture2D(gfx.SurfaceFormatColor, 8, 8, 4, false)
	if tex == nil {
		t.Fatal("CreateTexture2D returned nil")
	}
	cube := r.CreateTextureCube(gfx.SurfaceFormatColor, 4, 1, false)
	vol := r.CreateTexture3D(gfx.SurfaceFormatColor, 4, 4, 2, 1)
	if got := r.Uploads().Textures; got != 3 {
		t.Fatalf("live textures = %d, want 3", got)
	}

	r.SetTextureData2D(tex, 0, 0, 8, 8, 0, make([]byte, 8*8*4))
	r.SetTextureDataCube(cube, 0, 0, 4, 4, gfx.CubeMapNegativeZ, 0, make([]byte, 4*4*4))
	r.SetTextureData3D(vol, 0, 0, 0, 4, 4, 2, 0, make([]byte, 4*4*2*4))
	if got := r.Uploads().TextureUploads; got != 3 {
		t.Errorf("texture uploads = %d, want 3", got)
	}

	// Rejected writes never reach the GPU.
	r.SetTextureData2D(tex, 6, 6, 4, 4, 0, make([]byte, 4*4*4))
	if got := r.Uploads().TextureUploads; got != 3 {
		t.Errorf("out-of-bounds write uploaded, count = %d", got)
	}

	r.DisposeTexture(cube)
	if got := r.Uploads().Textures; got != 2 {
		t.Errorf("live textures after dispose = %d, want 2", got)
	}
}

func TestMirrorBuffers(t *testing.T) {
	r := newTestRenderer(t)
	defer r.Destroy()

	vb := r.GenVertexBuffer(false, gfx.BufferUsageNone, 30)
	ib := r.GenIndexBuffer(false, gfx.BufferUsageNone, 12)
	if got := r.Uploads().Buffers; got != 2 {
		t.Fatalf("live buffers = %d, want 2", got)
	}

	r.SetVertexBufferData(vb, 2, []byte{1, 2, 3, 4, 5}, 5, 1, 1, gfx.SetDataNone)
	r.SetIndexBufferData(ib, 0, []byte{0, 0, 1, 0, 2, 0}, gfx.SetDataNone)
	if got := r.Uploads().BufferUploads; got != 2 {
		t.Errorf("buffer uploads = %d, want 2", got)
	}

	r.DisposeVertexBuffer(vb)
	r.DisposeIndexBuffer(ib)
	if got := r.Uploads().Buffers; got != 0 {
		t.Errorf("live buffers after dispose = %d, want 0", got)
	}
}

func TestAlignUp(t *testing.T) {
	tests := []struct{ n, want int }{{0, 0}, {1, 4}, {4, 4}, {5, 8}, {30, 32}}
	for _, tt := range tests {
		if got := alignUp(tt.n, copyAlignment); got != tt.want {
			t.Errorf("alignUp(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestMirrorPresent(t *testing.T) {
	r := newTestRenderer(t)
	defer r.Destroy()

	r.SwapBuffers(nil, nil, nil)
	r.SwapBuffers(nil, nil, nil)
	r.ResetBackbuffer(&gfx.PresentationParameters{BackBufferWidth: 8, BackBufferHeight: 8})
	r.SwapBuffers(nil, nil, software.NewWindow(8, 8))
	if got := r.Uploads().Frames; got != 3 {
		t.Errorf("frames = %d, want 3", got)
	}
}

func TestMirrorDestroyed(t *testing.T) {
	r := newTestRenderer(t)
	r.CreateTexture2D(gfx.SurfaceFormatColor, 4, 4, 1, false)
	r.GenVertexBuffer(false, gfx.BufferUsageNone, 16)
	r.SwapBuffers(nil, nil, nil)
	r.Destroy()
	s := r.Uploads()
	if s.Textures != 0 || s.Buffers != 0 || s.Shaders != 0 {
		t.Errorf("objects survive Destroy: %+v", s)
	}
}

func TestReflect(t *testing.T) {
	data, err := Reflect([]byte(testShader))
	if err != nil {
		t.Fatalf("Reflect: %v", err)
	}
	if len(data.Techniques) != 1 || data.Techniques[0].Name != "Default" {
		t.Fatalf("techniques = %+v", data.Techniques)
	}
	if passes := data.Techniques[0].Passes; len(passes) != 1 || passes[0] != "fs_main" {
		t.Errorf("passes = %v, want [fs_main]", passes)
	}

	want := []struct {
		name  string
		class gfx.ParameterClass
		typ   gfx.ParameterType
		size  int
	}{
		{"tint", gfx.ParameterVector, gfx.ParameterFloat, 16},
		{"tex", gfx.ParameterObject, gfx.ParameterTexture, 0},
		{"samp", gfx.ParameterObject, gfx.ParameterSampler, 0},
		{"mvp", gfx.ParameterMatrixColumns, gfx.ParameterFloat, 64},
	}
	if len(data.Parameters) != len(want) {
		t.Fatalf("got %d parameters, want %d", len(data.Parameters), len(want))
	}
	for i, w := range want {
		p := data.Parameters[i]
		if p.Name != w.name || p.Class != w.class || p.Type != w.typ || len(p.Values) != w.size {
			t.Errorf("parameter %d = %s class=%d type=%d size=%d, want %+v",
				i, p.Name, p.Class, p.Type, len(p.Values), w)
		}
	}
}

func TestReflectErrors(t *testing.T) {
	if _, err := Reflect(nil); !errors.Is(err, software.ErrEmptyEffect) {
		t.Errorf("empty code: err = %v", err)
	}
	if _, err := Reflect([]byte("fn broken( {")); err == nil {
		t.Error("invalid WGSL accepted")
	}
}

func TestUniformParameter(t *testing.T) {
	tests := []struct {
		name     string
		decl     string
		class    gfx.ParameterClass
		typ      gfx.ParameterType
		rows     int32
		cols     int32
		elements int32
		size     int
	}{
		{"f32", "var<uniform> u: f32;", gfx.ParameterScalar, gfx.ParameterFloat, 1, 1, 0, 4},
		{"u32", "var<uniform> u: u32;", gfx.ParameterScalar, gfx.ParameterInt, 1, 1, 0, 4},
		{"vec2", "var<uniform> u: vec2<f32>;", gfx.ParameterVector, gfx.ParameterFloat, 1, 2, 0, 8},
		{"vec3i", "var<uniform> u: vec3<i32>;", gfx.ParameterVector, gfx.ParameterInt, 1, 3, 0, 12},
		{"mat3x2", "var<uniform> u: mat3x2<f32>;", gfx.ParameterMatrixColumns, gfx.ParameterFloat, 2, 3, 0, 24},
		{"array", "var<uniform> u: array<vec4<f32>, 3>;", gfx.ParameterVector, gfx.ParameterFloat, 1, 4, 3, 48},
		{"struct", "var<uniform> u: Lights;", gfx.ParameterStruct, gfx.ParameterVoid, 0, 0, 0, 0},
	}
	const prelude = "struct Lights { color: vec4<f32>, dir: vec4<f32> }\n@group(0) @binding(0) "
	const body = "\n@fragment fn fs() -> @location(0) vec4<f32> { return vec4<f32>(0.0); }\n"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Reflect([]byte(prelude + tt.decl + body))
			if err != nil {
				t.Fatalf("Reflect: %v", err)
			}
			if len(data.Parameters) != 1 {
				t.Fatalf("got %d parameters, want 1", len(data.Parameters))
			}
			p := data.Parameters[0]
			if p.Name != "u" || p.Class != tt.class || p.Type != tt.typ || p.Rows != tt.rows ||
				p.Columns != tt.cols || p.Elements != tt.elements || len(p.Values) != tt.size {
				t.Errorf("got %s class=%d type=%d rows=%d cols=%d elements=%d size=%d",
					p.Name, p.Class, p.Type, p.Rows, p.Columns, p.Elements, len(p.Values))
			}
		})
	}
}

func TestReflectIgnoresComments(t *testing.T) {
	const src = `
// @group(0) @binding(1) var<uniform> stale: vec4<f32>;
/* @fragment fn old_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); } */
@group(0) @binding(0) var<uniform> tint: vec4<f32>;

// @fragment fn old_main() -> @location(0) vec4<f32> { return tint; }
@fragment
fn fs() -> @location(0) vec4<f32> {
    return tint;
}
`
	data, err := Reflect([]byte(src))
	if err != nil {
		t.Fatalf("Reflect: %v", err)
	}
	if len(data.Parameters) != 1 || data.Parameters[0].Name != "tint" {
		names := make([]string, len(data.Parameters))
		for i, p := range data.Parameters {
			names[i] = p.Name
		}
		t.Errorf("parameters = %v, want [tint]", names)
	}
	if passes := data.Techniques[0].Passes; len(passes) != 1 || passes[0] != "fs" {
		t.Errorf("passes = %v, want [fs]", passes)
	}
}

func TestReflectReturnsCopies(t *testing.T) {
	a, err := Reflect([]byte(testShader))
	if err != nil {
		t.Fatalf("Reflect: %v", err)
	}
	a.Parameter("tint").Values[0] = 0xFF
	b, err := Reflect([]byte(testShader))
	if err != nil {
		t.Fatalf("Reflect: %v", err)
	}
	if b.Parameter("tint").Values[0] != 0 {
		t.Error("parameter storage shared between reflections")
	}
}

func TestSPIRVWords(t *testing.T) {
	words, err := spirvWords([]byte{0x03, 0x02, 0x23, 0x07, 1, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if len(words) != 2 || words[0] != 0x07230203 || words[1] != 1 {
		t.Errorf("words = %#x", words)
	}
	if _, err := spirvWords([]byte{1, 2, 3}); !errors.Is(err, ErrSPIRV) {
		t.Errorf("ragged input: err = %v", err)
	}
}

func TestMirrorEffects(t *testing.T) {
	r := newTestRenderer(t)
	defer r.Destroy()
	hits := compiled.Stats().Hits

	eff, data, err := r.CreateEffect([]byte(testShader))
	if err != nil {
		t.Fatalf("CreateEffect: %v", err)
	}
	if data.Parameter("tint") == nil {
		t.Error("tint not reflected")
	}
	clone, _, err := r.CloneEffect(eff)
	if err != nil {
		t.Fatalf("CloneEffect: %v", err)
	}
	if got := r.Uploads().Shaders; got != 2 {
		t.Errorf("shader modules = %d, want 2", got)
	}
	// Module creation for both effects reuses the reflected compile.
	if got := compiled.Stats().Hits - hits; got < 2 {
		t.Errorf("compile cache hits = %d, want >= 2", got)
	}
	r.DisposeEffect(eff)
	r.DisposeEffect(clone)
	if got := r.Uploads().Shaders; got != 0 {
		t.Errorf("shader modules after dispose = %d", got)
	}
}

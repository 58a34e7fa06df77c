//go:build !nogpu

package wgpu

import (
	"image"
	"log/slog"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d/driver/software"
	"github.com/gogpu/g3d/gfx"
)

// Renderer is a software renderer whose resources are mirrored on the GPU.
type Renderer struct {
	*software.Renderer
	gpu *mirror
}

// Uploads returns the mirror counters.
func (r *Renderer) Uploads() Stats { return r.gpu.stats }

// AdapterName returns the name of the adapter the device runs on.
func (r *Renderer) AdapterName() string { return r.gpu.dev.name }

// SupportsDXT1 reports whether BC texture compression is enabled on the
// device.
func (r *Renderer) SupportsDXT1() bool { return r.bc() }

// SupportsS3TC reports whether BC texture compression is enabled on the
// device.
func (r *Renderer) SupportsS3TC() bool { return r.bc() }

// SupportsBC7 reports whether BC texture compression is enabled on the
// device.
func (r *Renderer) SupportsBC7() bool { return r.bc() }

func (r *Renderer) bc() bool {
	return r.gpu.dev.features.Contains(gputypes.FeatureTextureCompressionBC)
}

// baselineSamples is the sample count WebGPU guarantees for formats that
// can be multisampled.
const baselineSamples = 4

// MaxMultiSampleCount returns the smaller of requested and the device
// maximum for format. Formats the adapter cannot multisample, and formats
// with no GPU equivalent, return 0.
func (r *Renderer) MaxMultiSampleCount(format gfx.SurfaceFormat, requested int32) int32 {
	gf := format.GPUFormat()
	if requested <= 0 || format.IsCompressed() || gf == gputypes.TextureFormatUndefined {
		return 0
	}
	if a := r.gpu.dev.adapter; a != nil {
		if a.TextureFormatCapabilities(gf).Flags&hal.TextureFormatCapabilityMultisample == 0 {
			return 0
		}
	}
	return min(requested, baselineSamples)
}

// Stats counts the GPU work issued by the mirror.
type Stats struct {
	Textures       int // live GPU textures
	Buffers        int // live GPU buffers
	Shaders        int // live shader modules
	TextureUploads int
	BufferUploads  int
	Frames         int
	Skipped        int // textures the device cannot hold, kept host-side only
}

// mirror implements software.Mirror on a HAL device.
type mirror struct {
	dev *halDevice
	log *slog.Logger

	textures map[*software.Texture]hal.Texture
	buffers  map[*software.Buffer]hal.Buffer
	shaders  map[*software.Effect]hal.ShaderModule

	frame     hal.Texture
	frameSize image.Point
	stats     Stats
}

func newMirror(dev *halDevice, log *slog.Logger) *mirror {
	return &mirror{
		dev:      dev,
		log:      log,
		textures: make(map[*software.Texture]hal.Texture),
		buffers:  make(map[*software.Buffer]hal.Buffer),
		shaders:  make(map[*software.Effect]hal.ShaderModule),
	}
}

func (m *mirror) TextureCreated(t *software.Texture) error {
	format := t.Format().GPUFormat()
	if format == gputypes.TextureFormatUndefined ||
		t.Format().IsCompressed() && !m.dev.features.Contains(gputypes.FeatureTextureCompressionBC) {
		m.stats.Skipped++
		m.log.Debug("wgpu: texture kept host-side", "format", t.Format())
		return nil
	}
	w, h, depth := t.Size()
	dim := gputypes.TextureDimension2D
	layers := uint32(1)
	switch t.Kind() {
	case software.Texture3D:
		dim = gputypes.TextureDimension3D
		layers = uint32(depth) //nolint:gosec // validated positive
	case software.TextureCube:
		layers = gfx.CubeMapFaceCount
	}
	usage := gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst
	if t.IsRenderTarget() {
		usage |= gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc
	}
	tex, err := m.dev.device.CreateTexture(&hal.TextureDescriptor{
		Label: t.Name(),
		Size: hal.Extent3D{
			Width:              uint32(w), //nolint:gosec // validated positive
			Height:             uint32(h), //nolint:gosec // validated positive
			DepthOrArrayLayers: layers,
		},
		MipLevelCount: uint32(t.LevelCount()), //nolint:gosec // validated positive
		SampleCount:   1,
		Dimension:     dim,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return err
	}
	m.textures[t] = tex
	m.stats.Textures++
	return nil
}

// TextureUpdated uploads the whole level. Cube faces are array layers.
func (m *mirror) TextureUpdated(t *software.Texture, face gfx.CubeMapFace, level int32) {
	tex, ok := m.textures[t]
	if !ok {
		return
	}
	data := t.Level(face, level)
	if data == nil {
		return
	}
	w, h, d := t.LevelSize(level)
	bs := t.Format().BlockSize()
	blockRows := (h + bs - 1) / bs
	z := uint32(0)
	if t.Kind() == software.TextureCube {
		z = uint32(face) //nolint:gosec // validated face
	}
	m.dev.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  tex,
			MipLevel: uint32(level), //nolint:gosec // validated level
			Origin:   hal.Origin3D{Z: z},
			Aspect:   gputypes.TextureAspectAll,
		},
		data,
		&hal.ImageDataLayout{
			BytesPerRow:  uint32(t.Format().RowPitch(w)), //nolint:gosec // small
			RowsPerImage: uint32(blockRows),              //nolint:gosec // small
		},
		// Copies of compressed levels cover whole blocks.
		&hal.Extent3D{Width: uint32(alignUp(int(w), int(bs))), Height: uint32(blockRows * bs), DepthOrArrayLayers: uint32(d)}, //nolint:gosec // small
	)
	m.stats.TextureUploads++
}

func (m *mirror) TextureDisposed(t *software.Texture) {
	if tex, ok := m.textures[t]; ok {
		m.dev.device.DestroyTexture(tex)
		delete(m.textures, t)
		m.stats.Textures--
	}
}

// copyAlignment is the WebGPU buffer copy granularity.
const copyAlignment = 4

func alignUp(n, a int) int { return (n + a - 1) / a * a }

func (m *mirror) BufferCreated(b *software.Buffer) error {
	usage := gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst
	if b.IsIndex() {
		usage = gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst
	}
	buf, err := m.dev.device.CreateBuffer(&hal.BufferDescriptor{
		Size:  uint64(alignUp(int(b.Size()), copyAlignment)), //nolint:gosec // positive
		Usage: usage,
	})
	if err != nil {
		return err
	}
	m.buffers[b] = buf
	m.stats.Buffers++
	return nil
}

// BufferUpdated widens the written span to the copy alignment.
func (m *mirror) BufferUpdated(b *software.Buffer, offset, size int32) {
	buf, ok := m.buffers[b]
	if !ok {
		return
	}
	data := b.Bytes()
	start := int(offset) / copyAlignment * copyAlignment
	end := alignUp(int(offset+size), copyAlignment)
	chunk := make([]byte, end-start)
	copy(chunk, data[start:min(end, len(data))])
	m.dev.queue.WriteBuffer(buf, uint64(start), chunk) //nolint:gosec // non-negative
	m.stats.BufferUploads++
}

func (m *mirror) BufferDisposed(b *software.Buffer) {
	if buf, ok := m.buffers[b]; ok {
		m.dev.device.DestroyBuffer(buf)
		delete(m.buffers, b)
		m.stats.Buffers--
	}
}

func (m *mirror) EffectCreated(e *software.Effect) error {
	module, err := createShaderModule(m.dev.device, "g3d_effect", e.Code())
	if err != nil {
		return err
	}
	m.shaders[e] = module
	m.stats.Shaders++
	return nil
}

func (m *mirror) EffectDisposed(e *software.Effect) {
	if module, ok := m.shaders[e]; ok {
		m.dev.device.DestroyShaderModule(module)
		delete(m.shaders, e)
		m.stats.Shaders--
	}
}

// Presented uploads the backbuffer into the frame texture, recreating it
// when the backbuffer size changes.
func (m *mirror) Presented(frame *image.RGBA) {
	if frame == nil {
		return
	}
	size := frame.Bounds().Size()
	if m.frame == nil || size != m.frameSize {
		m.destroyFrame()
		tex, err := m.dev.device.CreateTexture(&hal.TextureDescriptor{
			Label:         "g3d_backbuffer",
			Size:          hal.Extent3D{Width: uint32(size.X), Height: uint32(size.Y), DepthOrArrayLayers: 1}, //nolint:gosec // image size
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        gputypes.TextureFormatRGBA8Unorm,
			Usage:         gputypes.TextureUsageCopyDst | gputypes.TextureUsageCopySrc | gputypes.TextureUsageTextureBinding,
		})
		if err != nil {
			m.log.Warn("wgpu: frame texture", "err", err)
			return
		}
		m.frame, m.frameSize = tex, size
	}
	m.dev.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: m.frame, Aspect: gputypes.TextureAspectAll},
		frame.Pix,
		&hal.ImageDataLayout{BytesPerRow: uint32(frame.Stride), RowsPerImage: uint32(size.Y)},      //nolint:gosec // image size
		&hal.Extent3D{Width: uint32(size.X), Height: uint32(size.Y), DepthOrArrayLayers: 1}, //nolint:gosec // image size
	)
	m.stats.Frames++
}

func (m *mirror) destroyFrame() {
	if m.frame != nil {
		m.dev.device.DestroyTexture(m.frame)
		m.frame = nil
	}
}

// Destroyed releases every GPU object and, for standalone devices, the
// device and instance.
func (m *mirror) Destroyed() {
	m.destroyFrame()
	for t, tex := range m.textures {
		m.dev.device.DestroyTexture(tex)
		delete(m.textures, t)
	}
	for b, buf := range m.buffers {
		m.dev.device.DestroyBuffer(buf)
		delete(m.buffers, b)
	}
	for e, module := range m.shaders {
		m.dev.device.DestroyShaderModule(module)
		delete(m.shaders, e)
	}
	m.stats.Textures, m.stats.Buffers, m.stats.Shaders = 0, 0, 0
	m.dev.close()
}

var _ software.Mirror = (*mirror)(nil)

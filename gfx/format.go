package gfx

import "github.com/gogpu/gputypes"

// SurfaceFormat is the pixel format of a texture, renderbuffer or backbuffer.
type SurfaceFormat int32

const (
	SurfaceFormatColor SurfaceFormat = iota
	SurfaceFormatBgr565
	SurfaceFormatBgra5551
	SurfaceFormatBgra4444
	SurfaceFormatDxt1
	SurfaceFormatDxt3
	SurfaceFormatDxt5
	SurfaceFormatNormalizedByte2
	SurfaceFormatNormalizedByte4
	SurfaceFormatRgba1010102
	SurfaceFormatRg32
	SurfaceFormatRgba64
	SurfaceFormatAlpha8
	SurfaceFormatSingle
	SurfaceFormatVector2
	SurfaceFormatVector4
	SurfaceFormatHalfSingle
	SurfaceFormatHalfVector2
	SurfaceFormatHalfVector4
	SurfaceFormatHdrBlendable
	SurfaceFormatColorBgra
	SurfaceFormatColorSrgb
	SurfaceFormatDxt5Srgb
	SurfaceFormatBc7
	SurfaceFormatBc7Srgb
)

type formatInfo struct {
	name       string
	blockBytes int32 // bytes per pixel, or per 4x4 block when compressed
	compressed bool
}

var formatInfos = [...]formatInfo{
	SurfaceFormatColor:           {"Color", 4, false},
	SurfaceFormatBgr565:          {"Bgr565", 2, false},
	SurfaceFormatBgra5551:        {"Bgra5551", 2, false},
	SurfaceFormatBgra4444:        {"Bgra4444", 2, false},
	SurfaceFormatDxt1:            {"Dxt1", 8, true},
	SurfaceFormatDxt3:            {"Dxt3", 16, true},
	SurfaceFormatDxt5:            {"Dxt5", 16, true},
	SurfaceFormatNormalizedByte2: {"NormalizedByte2", 2, false},
	SurfaceFormatNormalizedByte4: {"NormalizedByte4", 4, false},
	SurfaceFormatRgba1010102:     {"Rgba1010102", 4, false},
	SurfaceFormatRg32:            {"Rg32", 4, false},
	SurfaceFormatRgba64:          {"Rgba64", 8, false},
	SurfaceFormatAlpha8:          {"Alpha8", 1, false},
	SurfaceFormatSingle:          {"Single", 4, false},
	SurfaceFormatVector2:         {"Vector2", 8, false},
	SurfaceFormatVector4:         {"Vector4", 16, false},
	SurfaceFormatHalfSingle:      {"HalfSingle", 2, false},
	SurfaceFormatHalfVector2:     {"HalfVector2", 4, false},
	SurfaceFormatHalfVector4:     {"HalfVector4", 8, false},
	SurfaceFormatHdrBlendable:    {"HdrBlendable", 8, false},
	SurfaceFormatColorBgra:       {"ColorBgra", 4, false},
	SurfaceFormatColorSrgb:       {"ColorSrgb", 4, false},
	SurfaceFormatDxt5Srgb:        {"Dxt5Srgb", 16, true},
	SurfaceFormatBc7:             {"Bc7", 16, true},
	SurfaceFormatBc7Srgb:         {"Bc7Srgb", 16, true},
}

func (f SurfaceFormat) info() (formatInfo, bool) {
	if f < 0 || int(f) >= len(formatInfos) {
		return formatInfo{}, false
	}
	return formatInfos[f], true
}

// String returns the format name.
func (f SurfaceFormat) String() string {
	if fi, ok := f.info(); ok {
		return fi.name
	}
	return "Unknown"
}

// Valid reports whether f is a known format.
func (f SurfaceFormat) Valid() bool {
	_, ok := f.info()
	return ok
}

// IsCompressed reports whether f is a 4x4 block-compressed format.
func (f SurfaceFormat) IsCompressed() bool {
	fi, _ := f.info()
	return fi.compressed
}

// BlockSize returns the edge length in pixels of one storage block:
// 4 for block-compressed formats, 1 otherwise.
func (f SurfaceFormat) BlockSize() int32 {
	if f.IsCompressed() {
		return 4
	}
	return 1
}

// BytesPerBlock returns the bytes of one storage block (one pixel for
// uncompressed formats).
func (f SurfaceFormat) BytesPerBlock() int32 {
	fi, _ := f.info()
	return fi.blockBytes
}

// RowPitch returns the bytes of one row of blocks covering width pixels.
func (f SurfaceFormat) RowPitch(width int32) int32 {
	bs := f.BlockSize()
	return (width + bs - 1) / bs * f.BytesPerBlock()
}

// TextureSize returns the bytes needed for a width x height x depth region.
func (f SurfaceFormat) TextureSize(width, height, depth int32) int32 {
	bs := f.BlockSize()
	rows := (height + bs - 1) / bs
	return f.RowPitch(width) * rows * depth
}

// GPUFormat maps f to the WebGPU texture format used by hardware drivers.
// Formats with no direct equivalent map to [gputypes.TextureFormatUndefined].
// Block-compressed formats map to BC formats, which a device only accepts
// when BC compression is enabled.
func (f SurfaceFormat) GPUFormat() gputypes.TextureFormat {
	switch f {
	case SurfaceFormatColor, SurfaceFormatColorSrgb:
		return gputypes.TextureFormatRGBA8Unorm
	case SurfaceFormatColorBgra:
		return gputypes.TextureFormatBGRA8Unorm
	case SurfaceFormatAlpha8:
		return gputypes.TextureFormatR8Unorm
	case SurfaceFormatDxt1:
		return gputypes.TextureFormatBC1RGBAUnorm
	case SurfaceFormatDxt3:
		return gputypes.TextureFormatBC2RGBAUnorm
	case SurfaceFormatDxt5:
		return gputypes.TextureFormatBC3RGBAUnorm
	case SurfaceFormatDxt5Srgb:
		return gputypes.TextureFormatBC3RGBAUnormSrgb
	case SurfaceFormatBc7:
		return gputypes.TextureFormatBC7RGBAUnorm
	case SurfaceFormatBc7Srgb:
		return gputypes.TextureFormatBC7RGBAUnormSrgb
	}
	return gputypes.TextureFormatUndefined
}

// SurfaceFormatFromGPU maps a WebGPU texture format back to a SurfaceFormat.
// The second result is false when no equivalent exists.
func SurfaceFormatFromGPU(tf gputypes.TextureFormat) (SurfaceFormat, bool) {
	switch tf {
	case gputypes.TextureFormatRGBA8Unorm:
		return SurfaceFormatColor, true
	case gputypes.TextureFormatBGRA8Unorm:
		return SurfaceFormatColorBgra, true
	case gputypes.TextureFormatR8Unorm:
		return SurfaceFormatAlpha8, true
	}
	return SurfaceFormatColor, false
}

// DepthFormat is the format of a depth-stencil surface.
type DepthFormat int32

const (
	DepthFormatNone DepthFormat = iota
	DepthFormatD16
	DepthFormatD24
	DepthFormatD24S8
)

// BytesPerPixel returns the storage size of one depth-stencil sample.
func (f DepthFormat) BytesPerPixel() int32 {
	switch f {
	case DepthFormatD16:
		return 2
	case DepthFormatD24, DepthFormatD24S8:
		return 4
	}
	return 0
}

// HasStencil reports whether the format carries a stencil channel.
func (f DepthFormat) HasStencil() bool { return f == DepthFormatD24S8 }

// GPUFormat maps f to the WebGPU depth format used by hardware drivers.
func (f DepthFormat) GPUFormat() gputypes.TextureFormat {
	if f == DepthFormatNone {
		return gputypes.TextureFormatUndefined
	}
	return gputypes.TextureFormatDepth24PlusStencil8
}

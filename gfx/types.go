package gfx

// Rect is an integer rectangle in pixels.
type Rect struct {
	X, Y, W, H int32
}

// Vec4 is a four-component float vector, used for clear colors.
type Vec4 struct {
	X, Y, Z, W float32
}

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Viewport describes the region of the render target draws map into.
type Viewport struct {
	X, Y, W, H         int32
	MinDepth, MaxDepth float32
}

// ClearOptions selects which buffers Clear touches.
type ClearOptions int32

const (
	ClearTarget       ClearOptions = 1
	ClearDepthBuffer  ClearOptions = 2
	ClearStencil      ClearOptions = 4
	ClearAll                       = ClearTarget | ClearDepthBuffer | ClearStencil
	clearOptionsValid              = ClearAll
)

// Has reports whether all bits of o are set.
func (c ClearOptions) Has(o ClearOptions) bool { return c&o == o }

// Valid reports whether c contains only known bits.
func (c ClearOptions) Valid() bool { return c&^clearOptionsValid == 0 }

// PrimitiveType is the topology of a draw call.
type PrimitiveType int32

const (
	PrimitiveTriangleList PrimitiveType = iota
	PrimitiveTriangleStrip
	PrimitiveLineList
	PrimitiveLineStrip
	PrimitivePointList
)

// VertexCount returns the number of vertices consumed by primitiveCount
// primitives of this topology.
func (p PrimitiveType) VertexCount(primitiveCount int32) int32 {
	switch p {
	case PrimitiveTriangleList:
		return primitiveCount * 3
	case PrimitiveTriangleStrip:
		return primitiveCount + 2
	case PrimitiveLineList:
		return primitiveCount * 2
	case PrimitiveLineStrip:
		return primitiveCount + 1
	case PrimitivePointList:
		return primitiveCount
	}
	return 0
}

// IndexElementSize is the width of one index in an index buffer.
type IndexElementSize int32

const (
	IndexElementSize16Bit IndexElementSize = iota
	IndexElementSize32Bit
)

// Bytes returns the size of one index in bytes.
func (s IndexElementSize) Bytes() int32 {
	if s == IndexElementSize32Bit {
		return 4
	}
	return 2
}

// BufferUsage hints how the application accesses a buffer.
type BufferUsage int32

const (
	BufferUsageNone BufferUsage = iota
	BufferUsageWriteOnly
)

// SetDataOptions controls how a buffer upload interacts with in-flight data.
type SetDataOptions int32

const (
	SetDataNone SetDataOptions = iota
	SetDataDiscard
	SetDataNoOverwrite
)

// CubeMapFace selects one face of a cube texture.
type CubeMapFace int32

const (
	CubeMapPositiveX CubeMapFace = iota
	CubeMapNegativeX
	CubeMapPositiveY
	CubeMapNegativeY
	CubeMapPositiveZ
	CubeMapNegativeZ
)

// CubeMapFaceCount is the number of faces of a cube texture.
const CubeMapFaceCount = 6

// PresentInterval controls vertical sync.
type PresentInterval int32

const (
	PresentIntervalDefault PresentInterval = iota
	PresentIntervalOne
	PresentIntervalTwo
	PresentIntervalImmediate
)

// DisplayOrientation is the orientation of the backbuffer on screen.
type DisplayOrientation int32

const (
	DisplayOrientationDefault DisplayOrientation = iota
	DisplayOrientationLandscapeLeft
	DisplayOrientationLandscapeRight
	DisplayOrientationPortrait
)

// RenderTargetUsage controls whether target contents survive a rebind.
type RenderTargetUsage int32

const (
	RenderTargetUsageDiscardContents RenderTargetUsage = iota
	RenderTargetUsagePreserveContents
	RenderTargetUsagePlatformContents
)

// PresentationParameters describes the backbuffer and the window it presents to.
type PresentationParameters struct {
	BackBufferWidth      int32
	BackBufferHeight     int32
	BackBufferFormat     SurfaceFormat
	MultiSampleCount     int32
	DeviceWindowHandle   any
	IsFullScreen         bool
	DepthStencilFormat   DepthFormat
	PresentationInterval PresentInterval
	DisplayOrientation   DisplayOrientation
	RenderTargetUsage    RenderTargetUsage
}

// VertexElementFormat is the storage format of one vertex attribute.
type VertexElementFormat int32

const (
	VertexElementSingle VertexElementFormat = iota
	VertexElementVector2
	VertexElementVector3
	VertexElementVector4
	VertexElementColor
	VertexElementByte4
	VertexElementShort2
	VertexElementShort4
	VertexElementNormalizedShort2
	VertexElementNormalizedShort4
	VertexElementHalfVector2
	VertexElementHalfVector4
)

var vertexElementSizes = [...]int32{
	VertexElementSingle:           4,
	VertexElementVector2:          8,
	VertexElementVector3:          12,
	VertexElementVector4:          16,
	VertexElementColor:            4,
	VertexElementByte4:            4,
	VertexElementShort2:           4,
	VertexElementShort4:           8,
	VertexElementNormalizedShort2: 4,
	VertexElementNormalizedShort4: 8,
	VertexElementHalfVector2:      4,
	VertexElementHalfVector4:      8,
}

// Size returns the attribute size in bytes, or 0 for an unknown format.
func (f VertexElementFormat) Size() int32 {
	if f < 0 || int(f) >= len(vertexElementSizes) {
		return 0
	}
	return vertexElementSizes[f]
}

// VertexElementUsage is the semantic of a vertex attribute.
type VertexElementUsage int32

const (
	VertexUsagePosition VertexElementUsage = iota
	VertexUsageColor
	VertexUsageTextureCoordinate
	VertexUsageNormal
	VertexUsageBinormal
	VertexUsageTangent
	VertexUsageBlendIndices
	VertexUsageBlendWeight
	VertexUsageDepth
	VertexUsageFog
	VertexUsagePointSize
	VertexUsageSample
	VertexUsageTessellateFactor
)

// VertexElement is one attribute of a vertex declaration.
type VertexElement struct {
	Offset     int32
	Format     VertexElementFormat
	Usage      VertexElementUsage
	UsageIndex int32
}

// VertexDeclaration describes the layout of one vertex stream.
type VertexDeclaration struct {
	VertexStride int32
	Elements     []VertexElement
}

// Clone returns a deep copy of the declaration.
func (d VertexDeclaration) Clone() VertexDeclaration {
	d.Elements = append([]VertexElement(nil), d.Elements...)
	return d
}

package gfx

// Blend is a blend factor.
type Blend int32

const (
	BlendOne Blend = iota
	BlendZero
	BlendSourceColor
	BlendInverseSourceColor
	BlendSourceAlpha
	BlendInverseSourceAlpha
	BlendDestinationColor
	BlendInverseDestinationColor
	BlendDestinationAlpha
	BlendInverseDestinationAlpha
	BlendBlendFactor
	BlendInverseBlendFactor
	BlendSourceAlphaSaturation
)

// BlendFunction combines source and destination terms.
type BlendFunction int32

const (
	BlendFunctionAdd BlendFunction = iota
	BlendFunctionSubtract
	BlendFunctionReverseSubtract
	BlendFunctionMax
	BlendFunctionMin
)

// ColorWriteChannels is a mask of writable color channels.
type ColorWriteChannels int32

const (
	ColorWriteNone  ColorWriteChannels = 0
	ColorWriteRed   ColorWriteChannels = 1
	ColorWriteGreen ColorWriteChannels = 2
	ColorWriteBlue  ColorWriteChannels = 4
	ColorWriteAlpha ColorWriteChannels = 8
	ColorWriteAll   ColorWriteChannels = 15
)

// StencilOperation is applied to the stencil buffer on test outcomes.
type StencilOperation int32

const (
	StencilKeep StencilOperation = iota
	StencilZero
	StencilReplace
	StencilIncrement
	StencilDecrement
	StencilIncrementSaturation
	StencilDecrementSaturation
	StencilInvert
)

// CompareFunction is used by depth and stencil tests.
type CompareFunction int32

const (
	CompareAlways CompareFunction = iota
	CompareNever
	CompareLess
	CompareLessEqual
	CompareEqual
	CompareGreaterEqual
	CompareGreater
	CompareNotEqual
)

// CullMode selects which triangle winding is discarded.
type CullMode int32

const (
	CullNone CullMode = iota
	CullClockwiseFace
	CullCounterClockwiseFace
)

// FillMode selects solid or wireframe rasterization.
type FillMode int32

const (
	FillSolid FillMode = iota
	FillWireFrame
)

// TextureAddressMode handles texture coordinates outside [0, 1].
type TextureAddressMode int32

const (
	AddressWrap TextureAddressMode = iota
	AddressClamp
	AddressMirror
)

// TextureFilter selects minification, magnification and mip filtering.
type TextureFilter int32

const (
	FilterLinear TextureFilter = iota
	FilterPoint
	FilterAnisotropic
	FilterLinearMipPoint
	FilterPointMipLinear
	FilterMinLinearMagPointMipLinear
	FilterMinLinearMagPointMipPoint
	FilterMinPointMagLinearMipLinear
	FilterMinPointMagLinearMipPoint
)

// BlendState is the immutable blend configuration of the output merger.
type BlendState struct {
	ColorSourceBlend      Blend
	ColorDestinationBlend Blend
	ColorBlendFunction    BlendFunction
	AlphaSourceBlend      Blend
	AlphaDestinationBlend Blend
	AlphaBlendFunction    BlendFunction
	ColorWriteEnable      ColorWriteChannels
	ColorWriteEnable1     ColorWriteChannels
	ColorWriteEnable2     ColorWriteChannels
	ColorWriteEnable3     ColorWriteChannels
	BlendFactor           Color
	MultiSampleMask       int32
}

// Opaque returns the blend state that overwrites the destination.
func Opaque() BlendState {
	return BlendState{
		ColorSourceBlend:      BlendOne,
		ColorDestinationBlend: BlendZero,
		AlphaSourceBlend:      BlendOne,
		AlphaDestinationBlend: BlendZero,
		ColorWriteEnable:      ColorWriteAll,
		ColorWriteEnable1:     ColorWriteAll,
		ColorWriteEnable2:     ColorWriteAll,
		ColorWriteEnable3:     ColorWriteAll,
		BlendFactor:           Color{R: 255, G: 255, B: 255, A: 255},
		MultiSampleMask:       -1,
	}
}

// DepthStencilState is the immutable depth and stencil configuration.
type DepthStencilState struct {
	DepthBufferEnable         bool
	DepthBufferWriteEnable    bool
	DepthBufferFunction       CompareFunction
	StencilEnable             bool
	StencilMask               int32
	StencilWriteMask          int32
	TwoSidedStencilMode       bool
	StencilFail               StencilOperation
	StencilDepthBufferFail    StencilOperation
	StencilPass               StencilOperation
	StencilFunction           CompareFunction
	CCWStencilFail            StencilOperation
	CCWStencilDepthBufferFail StencilOperation
	CCWStencilPass            StencilOperation
	CCWStencilFunction        CompareFunction
	ReferenceStencil          int32
}

// RasterizerState is the immutable rasterizer configuration.
type RasterizerState struct {
	FillMode             FillMode
	CullMode             CullMode
	DepthBias            float32
	SlopeScaleDepthBias  float32
	ScissorTestEnable    bool
	MultiSampleAntiAlias bool
}

// SamplerState is the immutable configuration of one texture sampler.
type SamplerState struct {
	Filter                  TextureFilter
	AddressU                TextureAddressMode
	AddressV                TextureAddressMode
	AddressW                TextureAddressMode
	MipMapLevelOfDetailBias float32
	MaxAnisotropy           int32
	MaxMipLevel             int32
}

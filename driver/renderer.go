package driver

import "github.com/gogpu/g3d/gfx"

// Renderer is the operation table of one live device. Every method runs on
// the device's owning goroutine; implementations need no internal locking.
type Renderer interface {
	Presenter
	StateApplier
	Drawer
	TextureStore
	RenderbufferStore
	BufferStore
	EffectStore
	QueryStore
	Capabilities

	// Destroy releases all backend state. The renderer is unusable afterwards.
	Destroy()

	// SetStringMarker inserts a debug marker into the command stream.
	SetStringMarker(text string)
}

// Presenter covers the backbuffer and presentation.
type Presenter interface {
	SwapBuffers(src, dst *gfx.Rect, window any)
	ResetBackbuffer(params *gfx.PresentationParameters)
	ReadBackbuffer(x, y, w, h int32, data []byte)
	BackbufferSize() (w, h int32)
	BackbufferSurfaceFormat() gfx.SurfaceFormat
	BackbufferDepthFormat() gfx.DepthFormat
	BackbufferMultiSampleCount() int32
}

// StateApplier covers per-draw render state.
type StateApplier interface {
	SetViewport(vp gfx.Viewport)
	SetScissorRect(r gfx.Rect)
	BlendFactor() gfx.Color
	SetBlendFactor(c gfx.Color)
	MultiSampleMask() int32
	SetMultiSampleMask(mask int32)
	ReferenceStencil() int32
	SetReferenceStencil(ref int32)
	SetBlendState(s *gfx.BlendState)
	SetDepthStencilState(s *gfx.DepthStencilState)
	ApplyRasterizerState(s *gfx.RasterizerState)
	VerifySampler(index int32, tex Texture, s *gfx.SamplerState)
	VerifyVertexSampler(index int32, tex Texture, s *gfx.SamplerState)
	ApplyVertexBufferBindings(bindings []VertexBufferBinding, updated bool, baseVertex int32)
	SetRenderTargets(targets []RenderTarget, depthStencil Renderbuffer, depthFormat gfx.DepthFormat, preserve bool)
	ResolveTarget(target *RenderTarget)
}

// Drawer covers clears and draw submission.
type Drawer interface {
	Clear(options gfx.ClearOptions, color gfx.Vec4, depth float32, stencil int32)
	DrawIndexedPrimitives(pt gfx.PrimitiveType, baseVertex, minVertexIndex, numVertices, startIndex, primitiveCount int32, indices Buffer, size gfx.IndexElementSize)
	DrawInstancedPrimitives(pt gfx.PrimitiveType, baseVertex, minVertexIndex, numVertices, startIndex, primitiveCount, instanceCount int32, indices Buffer, size gfx.IndexElementSize)
	DrawPrimitives(pt gfx.PrimitiveType, vertexStart, primitiveCount int32)
}

// TextureStore covers texture creation, upload, readback and teardown.
type TextureStore interface {
	CreateTexture2D(format gfx.SurfaceFormat, width, height, levelCount int32, isRenderTarget bool) Texture
	CreateTexture3D(format gfx.SurfaceFormat, width, height, depth, levelCount int32) Texture
	CreateTextureCube(format gfx.SurfaceFormat, size, levelCount int32, isRenderTarget bool) Texture
	DisposeTexture(tex Texture)
	SetTextureData2D(tex Texture, x, y, w, h, level int32, data []byte)
	SetTextureData3D(tex Texture, x, y, z, w, h, d, level int32, data []byte)
	SetTextureDataCube(tex Texture, x, y, w, h int32, face gfx.CubeMapFace, level int32, data []byte)
	SetTextureDataYUV(y, u, v Texture, yWidth, yHeight, uvWidth, uvHeight int32, data []byte)
	GetTextureData2D(tex Texture, x, y, w, h, level int32, data []byte)
	GetTextureData3D(tex Texture, x, y, z, w, h, d, level int32, data []byte)
	GetTextureDataCube(tex Texture, x, y, w, h int32, face gfx.CubeMapFace, level int32, data []byte)
	SetTextureName(tex Texture, name string)
}

// RenderbufferStore covers intermediate multisample and depth surfaces.
type RenderbufferStore interface {
	GenColorRenderbuffer(width, height int32, format gfx.SurfaceFormat, multiSampleCount int32, tex Texture) Renderbuffer
	GenDepthStencilRenderbuffer(width, height int32, format gfx.DepthFormat, multiSampleCount int32) Renderbuffer
	DisposeRenderbuffer(rb Renderbuffer)
}

// BufferStore covers vertex and index buffers.
type BufferStore interface {
	GenVertexBuffer(dynamic bool, usage gfx.BufferUsage, sizeInBytes int32) Buffer
	DisposeVertexBuffer(buf Buffer)
	SetVertexBufferData(buf Buffer, offset int32, data []byte, elementCount, elementSize, vertexStride int32, options gfx.SetDataOptions)
	GetVertexBufferData(buf Buffer, offset int32, data []byte, elementCount, elementSize, vertexStride int32)
	GenIndexBuffer(dynamic bool, usage gfx.BufferUsage, sizeInBytes int32) Buffer
	DisposeIndexBuffer(buf Buffer)
	SetIndexBufferData(buf Buffer, offset int32, data []byte, options gfx.SetDataOptions)
	GetIndexBufferData(buf Buffer, offset int32, data []byte)
}

// EffectStore covers compiled shader effects. Effect code is opaque to the
// device layer; the backend parses it and exposes its parameters through the
// returned EffectData.
type EffectStore interface {
	CreateEffect(code []byte) (Effect, *gfx.EffectData, error)
	CloneEffect(src Effect) (Effect, *gfx.EffectData, error)
	DisposeEffect(e Effect)
	SetEffectTechnique(e Effect, technique int32)
	ApplyEffect(e Effect, pass uint32)
	BeginPassRestore(e Effect)
	EndPassRestore(e Effect)
}

// QueryStore covers occlusion queries.
type QueryStore interface {
	CreateQuery() Query
	DisposeQuery(q Query)
	QueryBegin(q Query)
	QueryEnd(q Query)
	QueryComplete(q Query) bool
	QueryPixelCount(q Query) int32
}

// Capabilities reports backend feature support.
type Capabilities interface {
	SupportsDXT1() bool
	SupportsS3TC() bool
	SupportsBC7() bool
	SupportsHardwareInstancing() bool
	SupportsNoOverwrite() bool
	SupportsSRGBRenderTargets() bool
	MaxTextureSlots() (textures, vertexTextures int32)
	MaxMultiSampleCount(format gfx.SurfaceFormat, requested int32) int32
}

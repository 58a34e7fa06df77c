package trace

import (
	"github.com/gogpu/g3d/driver"
	"github.com/gogpu/g3d/gfx"
)

// ObjectID is the interned integer a trace uses in place of a live object.
type ObjectID uint32

// NilID encodes a nil object reference.
const NilID ObjectID = 0xFFFFFFFF

// Record is one traced call. The concrete types are the pointer types
// declared in this file; type-switch on them to inspect a decoded stream.
type Record interface {
	Op() Opcode
	code(c coder)
}

// coder visits the fields of a record in wire order. The same visitor
// drives encoding and decoding, so field order is written down once.
type coder interface {
	u8(v *uint8)
	boolean(v *bool)
	i32(v *int32)
	u32(v *uint32)
	f32(v *float32)
	bytes(v *[]byte)
	str(v *string)
	// count codes a slice length: n on encode, the decoded length on decode.
	count(n int) int
}

func id(c coder, v *ObjectID) { c.u32((*uint32)(v)) }

func resize[T any](s []T, n int) []T {
	if len(s) == n {
		return s
	}
	return make([]T, n)
}

func codeRect(c coder, r *gfx.Rect) {
	c.i32(&r.X)
	c.i32(&r.Y)
	c.i32(&r.W)
	c.i32(&r.H)
}

func codeOptRect(c coder, r **gfx.Rect) {
	present := *r != nil
	c.boolean(&present)
	if !present {
		*r = nil
		return
	}
	if *r == nil {
		*r = new(gfx.Rect)
	}
	codeRect(c, *r)
}

func codeParams(c coder, p *gfx.PresentationParameters) {
	c.i32(&p.BackBufferWidth)
	c.i32(&p.BackBufferHeight)
	c.i32((*int32)(&p.BackBufferFormat))
	c.i32(&p.MultiSampleCount)
	c.boolean(&p.IsFullScreen)
	c.i32((*int32)(&p.DepthStencilFormat))
	c.i32((*int32)(&p.PresentationInterval))
	c.i32((*int32)(&p.DisplayOrientation))
	c.i32((*int32)(&p.RenderTargetUsage))
}

func codeColor(c coder, col *gfx.Color) {
	c.u8(&col.R)
	c.u8(&col.G)
	c.u8(&col.B)
	c.u8(&col.A)
}

func codeBlendState(c coder, s *gfx.BlendState) {
	c.i32((*int32)(&s.ColorSourceBlend))
	c.i32((*int32)(&s.ColorDestinationBlend))
	c.i32((*int32)(&s.ColorBlendFunction))
	c.i32((*int32)(&s.AlphaSourceBlend))
	c.i32((*int32)(&s.AlphaDestinationBlend))
	c.i32((*int32)(&s.AlphaBlendFunction))
	c.i32((*int32)(&s.ColorWriteEnable))
	c.i32((*int32)(&s.ColorWriteEnable1))
	c.i32((*int32)(&s.ColorWriteEnable2))
	c.i32((*int32)(&s.ColorWriteEnable3))
	codeColor(c, &s.BlendFactor)
	c.i32(&s.MultiSampleMask)
}

func codeDepthStencilState(c coder, s *gfx.DepthStencilState) {
	c.boolean(&s.DepthBufferEnable)
	c.boolean(&s.DepthBufferWriteEnable)
	c.i32((*int32)(&s.DepthBufferFunction))
	c.boolean(&s.StencilEnable)
	c.i32(&s.StencilMask)
	c.i32(&s.StencilWriteMask)
	c.boolean(&s.TwoSidedStencilMode)
	c.i32((*int32)(&s.StencilFail))
	c.i32((*int32)(&s.StencilDepthBufferFail))
	c.i32((*int32)(&s.StencilPass))
	c.i32((*int32)(&s.StencilFunction))
	c.i32((*int32)(&s.CCWStencilFail))
	c.i32((*int32)(&s.CCWStencilDepthBufferFail))
	c.i32((*int32)(&s.CCWStencilPass))
	c.i32((*int32)(&s.CCWStencilFunction))
	c.i32(&s.ReferenceStencil)
}

func codeRasterizerState(c coder, s *gfx.RasterizerState) {
	c.i32((*int32)(&s.FillMode))
	c.i32((*int32)(&s.CullMode))
	c.f32(&s.DepthBias)
	c.f32(&s.SlopeScaleDepthBias)
	c.boolean(&s.ScissorTestEnable)
	c.boolean(&s.MultiSampleAntiAlias)
}

func codeSamplerState(c coder, s *gfx.SamplerState) {
	c.i32((*int32)(&s.Filter))
	c.i32((*int32)(&s.AddressU))
	c.i32((*int32)(&s.AddressV))
	c.i32((*int32)(&s.AddressW))
	c.f32(&s.MipMapLevelOfDetailBias)
	c.i32(&s.MaxAnisotropy)
	c.i32(&s.MaxMipLevel)
}

// RenderTarget is a render-target binding with its objects interned.
type RenderTarget struct {
	Type             driver.RenderTargetType
	Width, Height    int32
	Size             int32
	Face             gfx.CubeMapFace
	LevelCount       int32
	MultiSampleCount int32
	Texture          ObjectID
	ColorBuffer      ObjectID
}

func codeTarget(c coder, t *RenderTarget) {
	c.u8((*uint8)(&t.Type))
	if t.Type == driver.RenderTarget2D {
		c.i32(&t.Width)
		c.i32(&t.Height)
	} else {
		c.i32(&t.Size)
		c.i32((*int32)(&t.Face))
	}
	c.i32(&t.LevelCount)
	c.i32(&t.MultiSampleCount)
	id(c, &t.Texture)
	id(c, &t.ColorBuffer)
}

// VertexBinding is a vertex stream binding with its buffer interned.
type VertexBinding struct {
	Buffer            ObjectID
	Declaration       gfx.VertexDeclaration
	VertexOffset      int32
	InstanceFrequency int32
}

func codeBinding(c coder, b *VertexBinding) {
	id(c, &b.Buffer)
	c.i32(&b.Declaration.VertexStride)
	b.Declaration.Elements = resize(b.Declaration.Elements, c.count(len(b.Declaration.Elements)))
	for i := range b.Declaration.Elements {
		e := &b.Declaration.Elements[i]
		c.i32(&e.Offset)
		c.i32((*int32)(&e.Format))
		c.i32((*int32)(&e.Usage))
		c.i32(&e.UsageIndex)
	}
	c.i32(&b.VertexOffset)
	c.i32(&b.InstanceFrequency)
}

func codeParamValues(c coder, vals *[][]byte) {
	*vals = resize(*vals, c.count(len(*vals)))
	for i := range *vals {
		c.bytes(&(*vals)[i])
	}
}

// CreateDevice opens a trace.
type CreateDevice struct {
	Params    gfx.PresentationParameters
	DebugMode bool
}

func (*CreateDevice) Op() Opcode { return OpCreateDevice }
func (r *CreateDevice) code(c coder) {
	codeParams(c, &r.Params)
	c.boolean(&r.DebugMode)
}

type DestroyDevice struct{}

func (*DestroyDevice) Op() Opcode   { return OpDestroyDevice }
func (*DestroyDevice) code(c coder) {}

type SwapBuffers struct {
	Source, Destination *gfx.Rect
}

func (*SwapBuffers) Op() Opcode { return OpSwapBuffers }
func (r *SwapBuffers) code(c coder) {
	codeOptRect(c, &r.Source)
	codeOptRect(c, &r.Destination)
}

type Clear struct {
	Options gfx.ClearOptions
	Color   gfx.Vec4
	Depth   float32
	Stencil int32
}

func (*Clear) Op() Opcode { return OpClear }
func (r *Clear) code(c coder) {
	c.i32((*int32)(&r.Options))
	c.f32(&r.Color.X)
	c.f32(&r.Color.Y)
	c.f32(&r.Color.Z)
	c.f32(&r.Color.W)
	c.f32(&r.Depth)
	c.i32(&r.Stencil)
}

type DrawIndexedPrimitives struct {
	PrimitiveType    gfx.PrimitiveType
	BaseVertex       int32
	MinVertexIndex   int32
	NumVertices      int32
	StartIndex       int32
	PrimitiveCount   int32
	Indices          ObjectID
	IndexElementSize gfx.IndexElementSize
}

func (*DrawIndexedPrimitives) Op() Opcode { return OpDrawIndexedPrimitives }
func (r *DrawIndexedPrimitives) code(c coder) {
	c.i32((*int32)(&r.PrimitiveType))
	c.i32(&r.BaseVertex)
	c.i32(&r.MinVertexIndex)
	c.i32(&r.NumVertices)
	c.i32(&r.StartIndex)
	c.i32(&r.PrimitiveCount)
	id(c, &r.Indices)
	c.i32((*int32)(&r.IndexElementSize))
}

type DrawInstancedPrimitives struct {
	DrawIndexedPrimitives
	InstanceCount int32
}

func (*DrawInstancedPrimitives) Op() Opcode { return OpDrawInstancedPrimitives }
func (r *DrawInstancedPrimitives) code(c coder) {
	r.DrawIndexedPrimitives.code(c)
	c.i32(&r.InstanceCount)
}

type DrawPrimitives struct {
	PrimitiveType  gfx.PrimitiveType
	VertexStart    int32
	PrimitiveCount int32
}

func (*DrawPrimitives) Op() Opcode { return OpDrawPrimitives }
func (r *DrawPrimitives) code(c coder) {
	c.i32((*int32)(&r.PrimitiveType))
	c.i32(&r.VertexStart)
	c.i32(&r.PrimitiveCount)
}

type SetViewport struct {
	Viewport gfx.Viewport
}

func (*SetViewport) Op() Opcode { return OpSetViewport }
func (r *SetViewport) code(c coder) {
	c.i32(&r.Viewport.X)
	c.i32(&r.Viewport.Y)
	c.i32(&r.Viewport.W)
	c.i32(&r.Viewport.H)
	c.f32(&r.Viewport.MinDepth)
	c.f32(&r.Viewport.MaxDepth)
}

type SetScissorRect struct {
	Rect gfx.Rect
}

func (*SetScissorRect) Op() Opcode     { return OpSetScissorRect }
func (r *SetScissorRect) code(c coder) { codeRect(c, &r.Rect) }

type SetBlendFactor struct {
	Color gfx.Color
}

func (*SetBlendFactor) Op() Opcode     { return OpSetBlendFactor }
func (r *SetBlendFactor) code(c coder) { codeColor(c, &r.Color) }

type SetMultiSampleMask struct {
	Mask int32
}

func (*SetMultiSampleMask) Op() Opcode     { return OpSetMultiSampleMask }
func (r *SetMultiSampleMask) code(c coder) { c.i32(&r.Mask) }

type SetReferenceStencil struct {
	Ref int32
}

func (*SetReferenceStencil) Op() Opcode     { return OpSetReferenceStencil }
func (r *SetReferenceStencil) code(c coder) { c.i32(&r.Ref) }

type SetBlendState struct {
	State gfx.BlendState
}

func (*SetBlendState) Op() Opcode     { return OpSetBlendState }
func (r *SetBlendState) code(c coder) { codeBlendState(c, &r.State) }

type SetDepthStencilState struct {
	State gfx.DepthStencilState
}

func (*SetDepthStencilState) Op() Opcode     { return OpSetDepthStencilState }
func (r *SetDepthStencilState) code(c coder) { codeDepthStencilState(c, &r.State) }

type ApplyRasterizerState struct {
	State gfx.RasterizerState
}

func (*ApplyRasterizerState) Op() Opcode     { return OpApplyRasterizerState }
func (r *ApplyRasterizerState) code(c coder) { codeRasterizerState(c, &r.State) }

// VerifySampler binds a texture and sampler to a fragment sampler slot.
type VerifySampler struct {
	Index   int32
	Texture ObjectID
	Sampler gfx.SamplerState
}

func (*VerifySampler) Op() Opcode { return OpVerifySampler }
func (r *VerifySampler) code(c coder) {
	c.i32(&r.Index)
	id(c, &r.Texture)
	codeSamplerState(c, &r.Sampler)
}

// VerifyVertexSampler binds a texture and sampler to a vertex sampler slot.
type VerifyVertexSampler struct {
	VerifySampler
}

func (*VerifyVertexSampler) Op() Opcode { return OpVerifyVertexSampler }

type ApplyVertexBufferBindings struct {
	Bindings   []VertexBinding
	Updated    bool
	BaseVertex int32
}

func (*ApplyVertexBufferBindings) Op() Opcode { return OpApplyVertexBufferBindings }
func (r *ApplyVertexBufferBindings) code(c coder) {
	r.Bindings = resize(r.Bindings, c.count(len(r.Bindings)))
	for i := range r.Bindings {
		codeBinding(c, &r.Bindings[i])
	}
	c.boolean(&r.Updated)
	c.i32(&r.BaseVertex)
}

type SetRenderTargets struct {
	Targets      []RenderTarget
	DepthStencil ObjectID
	DepthFormat  gfx.DepthFormat
	Preserve     bool
}

func (*SetRenderTargets) Op() Opcode { return OpSetRenderTargets }
func (r *SetRenderTargets) code(c coder) {
	r.Targets = resize(r.Targets, c.count(len(r.Targets)))
	for i := range r.Targets {
		codeTarget(c, &r.Targets[i])
	}
	id(c, &r.DepthStencil)
	c.i32((*int32)(&r.DepthFormat))
	c.boolean(&r.Preserve)
}

type ResolveTarget struct {
	Target RenderTarget
}

func (*ResolveTarget) Op() Opcode     { return OpResolveTarget }
func (r *ResolveTarget) code(c coder) { codeTarget(c, &r.Target) }

type ResetBackbuffer struct {
	Params gfx.PresentationParameters
}

func (*ResetBackbuffer) Op() Opcode     { return OpResetBackbuffer }
func (r *ResetBackbuffer) code(c coder) { codeParams(c, &r.Params) }

// ReadBackbuffer carries the request shape only; DataLength is the size of
// the caller's destination.
type ReadBackbuffer struct {
	X, Y, W, H int32
	DataLength uint32
}

func (*ReadBackbuffer) Op() Opcode { return OpReadBackbuffer }
func (r *ReadBackbuffer) code(c coder) {
	c.i32(&r.X)
	c.i32(&r.Y)
	c.i32(&r.W)
	c.i32(&r.H)
	c.u32(&r.DataLength)
}

type CreateTexture2D struct {
	Format         gfx.SurfaceFormat
	Width, Height  int32
	LevelCount     int32
	IsRenderTarget bool
	Result         ObjectID
}

func (*CreateTexture2D) Op() Opcode { return OpCreateTexture2D }
func (r *CreateTexture2D) code(c coder) {
	c.i32((*int32)(&r.Format))
	c.i32(&r.Width)
	c.i32(&r.Height)
	c.i32(&r.LevelCount)
	c.boolean(&r.IsRenderTarget)
	id(c, &r.Result)
}

type CreateTexture3D struct {
	Format               gfx.SurfaceFormat
	Width, Height, Depth int32
	LevelCount           int32
	Result               ObjectID
}

func (*CreateTexture3D) Op() Opcode { return OpCreateTexture3D }
func (r *CreateTexture3D) code(c coder) {
	c.i32((*int32)(&r.Format))
	c.i32(&r.Width)
	c.i32(&r.Height)
	c.i32(&r.Depth)
	c.i32(&r.LevelCount)
	id(c, &r.Result)
}

type CreateTextureCube struct {
	Format         gfx.SurfaceFormat
	Size           int32
	LevelCount     int32
	IsRenderTarget bool
	Result         ObjectID
}

func (*CreateTextureCube) Op() Opcode { return OpCreateTextureCube }
func (r *CreateTextureCube) code(c coder) {
	c.i32((*int32)(&r.Format))
	c.i32(&r.Size)
	c.i32(&r.LevelCount)
	c.boolean(&r.IsRenderTarget)
	id(c, &r.Result)
}

// Dispose is the shared shape of the AddDispose* records.
type Dispose struct {
	Object ObjectID
}

func (r *Dispose) code(c coder) { id(c, &r.Object) }

type AddDisposeTexture struct{ Dispose }

func (*AddDisposeTexture) Op() Opcode { return OpAddDisposeTexture }

type SetTextureData2D struct {
	Texture    ObjectID
	X, Y, W, H int32
	Level      int32
	Data       []byte
}

func (*SetTextureData2D) Op() Opcode { return OpSetTextureData2D }
func (r *SetTextureData2D) code(c coder) {
	id(c, &r.Texture)
	c.i32(&r.X)
	c.i32(&r.Y)
	c.i32(&r.W)
	c.i32(&r.H)
	c.i32(&r.Level)
	c.bytes(&r.Data)
}

type SetTextureData3D struct {
	Texture          ObjectID
	X, Y, Z, W, H, D int32
	Level            int32
	Data             []byte
}

func (*SetTextureData3D) Op() Opcode { return OpSetTextureData3D }
func (r *SetTextureData3D) code(c coder) {
	id(c, &r.Texture)
	c.i32(&r.X)
	c.i32(&r.Y)
	c.i32(&r.Z)
	c.i32(&r.W)
	c.i32(&r.H)
	c.i32(&r.D)
	c.i32(&r.Level)
	c.bytes(&r.Data)
}

type SetTextureDataCube struct {
	Texture    ObjectID
	X, Y, W, H int32
	Face       gfx.CubeMapFace
	Level      int32
	Data       []byte
}

func (*SetTextureDataCube) Op() Opcode { return OpSetTextureDataCube }
func (r *SetTextureDataCube) code(c coder) {
	id(c, &r.Texture)
	c.i32(&r.X)
	c.i32(&r.Y)
	c.i32(&r.W)
	c.i32(&r.H)
	c.i32((*int32)(&r.Face))
	c.i32(&r.Level)
	c.bytes(&r.Data)
}

type SetTextureDataYUV struct {
	Y, U, V           ObjectID
	YWidth, YHeight   int32
	UVWidth, UVHeight int32
	Data              []byte
}

func (*SetTextureDataYUV) Op() Opcode { return OpSetTextureDataYUV }
func (r *SetTextureDataYUV) code(c coder) {
	id(c, &r.Y)
	id(c, &r.U)
	id(c, &r.V)
	c.i32(&r.YWidth)
	c.i32(&r.YHeight)
	c.i32(&r.UVWidth)
	c.i32(&r.UVHeight)
	c.bytes(&r.Data)
}

type GetTextureData2D struct {
	Texture    ObjectID
	X, Y, W, H int32
	Level      int32
	DataLength uint32
}

func (*GetTextureData2D) Op() Opcode { return OpGetTextureData2D }
func (r *GetTextureData2D) code(c coder) {
	id(c, &r.Texture)
	c.i32(&r.X)
	c.i32(&r.Y)
	c.i32(&r.W)
	c.i32(&r.H)
	c.i32(&r.Level)
	c.u32(&r.DataLength)
}

type GetTextureData3D struct {
	Texture          ObjectID
	X, Y, Z, W, H, D int32
	Level            int32
	DataLength       uint32
}

func (*GetTextureData3D) Op() Opcode { return OpGetTextureData3D }
func (r *GetTextureData3D) code(c coder) {
	id(c, &r.Texture)
	c.i32(&r.X)
	c.i32(&r.Y)
	c.i32(&r.Z)
	c.i32(&r.W)
	c.i32(&r.H)
	c.i32(&r.D)
	c.i32(&r.Level)
	c.u32(&r.DataLength)
}

type GetTextureDataCube struct {
	Texture    ObjectID
	X, Y, W, H int32
	Face       gfx.CubeMapFace
	Level      int32
	DataLength uint32
}

func (*GetTextureDataCube) Op() Opcode { return OpGetTextureDataCube }
func (r *GetTextureDataCube) code(c coder) {
	id(c, &r.Texture)
	c.i32(&r.X)
	c.i32(&r.Y)
	c.i32(&r.W)
	c.i32(&r.H)
	c.i32((*int32)(&r.Face))
	c.i32(&r.Level)
	c.u32(&r.DataLength)
}

type GenColorRenderbuffer struct {
	Width, Height    int32
	Format           gfx.SurfaceFormat
	MultiSampleCount int32
	Texture          ObjectID
	Result           ObjectID
}

func (*GenColorRenderbuffer) Op() Opcode { return OpGenColorRenderbuffer }
func (r *GenColorRenderbuffer) code(c coder) {
	c.i32(&r.Width)
	c.i32(&r.Height)
	c.i32((*int32)(&r.Format))
	c.i32(&r.MultiSampleCount)
	id(c, &r.Texture)
	id(c, &r.Result)
}

type GenDepthStencilRenderbuffer struct {
	Width, Height    int32
	Format           gfx.DepthFormat
	MultiSampleCount int32
	Result           ObjectID
}

func (*GenDepthStencilRenderbuffer) Op() Opcode { return OpGenDepthStencilRenderbuffer }
func (r *GenDepthStencilRenderbuffer) code(c coder) {
	c.i32(&r.Width)
	c.i32(&r.Height)
	c.i32((*int32)(&r.Format))
	c.i32(&r.MultiSampleCount)
	id(c, &r.Result)
}

type AddDisposeRenderbuffer struct{ Dispose }

func (*AddDisposeRenderbuffer) Op() Opcode { return OpAddDisposeRenderbuffer }

// GenBuffer is the shared shape of GenVertexBuffer and GenIndexBuffer.
type GenBuffer struct {
	Dynamic     bool
	Usage       gfx.BufferUsage
	SizeInBytes int32
	Result      ObjectID
}

func (r *GenBuffer) code(c coder) {
	c.boolean(&r.Dynamic)
	c.i32((*int32)(&r.Usage))
	c.i32(&r.SizeInBytes)
	id(c, &r.Result)
}

type GenVertexBuffer struct{ GenBuffer }

func (*GenVertexBuffer) Op() Opcode { return OpGenVertexBuffer }

type AddDisposeVertexBuffer struct{ Dispose }

func (*AddDisposeVertexBuffer) Op() Opcode { return OpAddDisposeVertexBuffer }

type SetVertexBufferData struct {
	Buffer       ObjectID
	Offset       int32
	ElementCount int32
	ElementSize  int32
	VertexStride int32
	Options      gfx.SetDataOptions
	Data         []byte
}

func (*SetVertexBufferData) Op() Opcode { return OpSetVertexBufferData }
func (r *SetVertexBufferData) code(c coder) {
	id(c, &r.Buffer)
	c.i32(&r.Offset)
	c.i32(&r.ElementCount)
	c.i32(&r.ElementSize)
	c.i32(&r.VertexStride)
	c.i32((*int32)(&r.Options))
	c.bytes(&r.Data)
}

type GetVertexBufferData struct {
	Buffer       ObjectID
	Offset       int32
	ElementCount int32
	ElementSize  int32
	VertexStride int32
	DataLength   uint32
}

func (*GetVertexBufferData) Op() Opcode { return OpGetVertexBufferData }
func (r *GetVertexBufferData) code(c coder) {
	id(c, &r.Buffer)
	c.i32(&r.Offset)
	c.i32(&r.ElementCount)
	c.i32(&r.ElementSize)
	c.i32(&r.VertexStride)
	c.u32(&r.DataLength)
}

type GenIndexBuffer struct{ GenBuffer }

func (*GenIndexBuffer) Op() Opcode { return OpGenIndexBuffer }

type AddDisposeIndexBuffer struct{ Dispose }

func (*AddDisposeIndexBuffer) Op() Opcode { return OpAddDisposeIndexBuffer }

type SetIndexBufferData struct {
	Buffer  ObjectID
	Offset  int32
	Options gfx.SetDataOptions
	Data    []byte
}

func (*SetIndexBufferData) Op() Opcode { return OpSetIndexBufferData }
func (r *SetIndexBufferData) code(c coder) {
	id(c, &r.Buffer)
	c.i32(&r.Offset)
	c.i32((*int32)(&r.Options))
	c.bytes(&r.Data)
}

type GetIndexBufferData struct {
	Buffer     ObjectID
	Offset     int32
	DataLength uint32
}

func (*GetIndexBufferData) Op() Opcode { return OpGetIndexBufferData }
func (r *GetIndexBufferData) code(c coder) {
	id(c, &r.Buffer)
	c.i32(&r.Offset)
	c.u32(&r.DataLength)
}

type CreateEffect struct {
	Code   []byte
	Result ObjectID
}

func (*CreateEffect) Op() Opcode { return OpCreateEffect }
func (r *CreateEffect) code(c coder) {
	c.bytes(&r.Code)
	id(c, &r.Result)
}

type CloneEffect struct {
	Source ObjectID
	Result ObjectID
}

func (*CloneEffect) Op() Opcode { return OpCloneEffect }
func (r *CloneEffect) code(c coder) {
	id(c, &r.Source)
	id(c, &r.Result)
}

type AddDisposeEffect struct{ Dispose }

func (*AddDisposeEffect) Op() Opcode { return OpAddDisposeEffect }

type SetEffectTechnique struct {
	Effect    ObjectID
	Technique int32
}

func (*SetEffectTechnique) Op() Opcode { return OpSetEffectTechnique }
func (r *SetEffectTechnique) code(c coder) {
	id(c, &r.Effect)
	c.i32(&r.Technique)
}

// ApplyEffect carries a snapshot of every parameter value at apply time.
type ApplyEffect struct {
	Effect ObjectID
	Pass   uint32
	Params [][]byte
}

func (*ApplyEffect) Op() Opcode { return OpApplyEffect }
func (r *ApplyEffect) code(c coder) {
	id(c, &r.Effect)
	c.u32(&r.Pass)
	codeParamValues(c, &r.Params)
}

type BeginPassRestore struct {
	Effect ObjectID
	Params [][]byte
}

func (*BeginPassRestore) Op() Opcode { return OpBeginPassRestore }
func (r *BeginPassRestore) code(c coder) {
	id(c, &r.Effect)
	codeParamValues(c, &r.Params)
}

type EndPassRestore struct {
	Effect ObjectID
}

func (*EndPassRestore) Op() Opcode     { return OpEndPassRestore }
func (r *EndPassRestore) code(c coder) { id(c, &r.Effect) }

type CreateQuery struct {
	Result ObjectID
}

func (*CreateQuery) Op() Opcode     { return OpCreateQuery }
func (r *CreateQuery) code(c coder) { id(c, &r.Result) }

type AddDisposeQuery struct{ Dispose }

func (*AddDisposeQuery) Op() Opcode { return OpAddDisposeQuery }

// QueryOp is the shared shape of QueryBegin, QueryEnd and QueryPixelCount.
type QueryOp struct {
	Query ObjectID
}

func (r *QueryOp) code(c coder) { id(c, &r.Query) }

type QueryBegin struct{ QueryOp }

func (*QueryBegin) Op() Opcode { return OpQueryBegin }

type QueryEnd struct{ QueryOp }

func (*QueryEnd) Op() Opcode { return OpQueryEnd }

type QueryPixelCount struct{ QueryOp }

func (*QueryPixelCount) Op() Opcode { return OpQueryPixelCount }

type SetStringMarker struct {
	Text string
}

func (*SetStringMarker) Op() Opcode     { return OpSetStringMarker }
func (r *SetStringMarker) code(c coder) { c.str(&r.Text) }

type SetTextureName struct {
	Texture ObjectID
	Name    string
}

func (*SetTextureName) Op() Opcode { return OpSetTextureName }
func (r *SetTextureName) code(c coder) {
	id(c, &r.Texture)
	c.str(&r.Name)
}

var recordFactories = [opcodeCount]func() Record{
	OpCreateDevice:                func() Record { return new(CreateDevice) },
	OpDestroyDevice:               func() Record { return new(DestroyDevice) },
	OpSwapBuffers:                 func() Record { return new(SwapBuffers) },
	OpClear:                       func() Record { return new(Clear) },
	OpDrawIndexedPrimitives:       func() Record { return new(DrawIndexedPrimitives) },
	OpDrawInstancedPrimitives:     func() Record { return new(DrawInstancedPrimitives) },
	OpDrawPrimitives:              func() Record { return new(DrawPrimitives) },
	OpSetViewport:                 func() Record { return new(SetViewport) },
	OpSetScissorRect:              func() Record { return new(SetScissorRect) },
	OpSetBlendFactor:              func() Record { return new(SetBlendFactor) },
	OpSetMultiSampleMask:          func() Record { return new(SetMultiSampleMask) },
	OpSetReferenceStencil:         func() Record { return new(SetReferenceStencil) },
	OpSetBlendState:               func() Record { return new(SetBlendState) },
	OpSetDepthStencilState:        func() Record { return new(SetDepthStencilState) },
	OpApplyRasterizerState:        func() Record { return new(ApplyRasterizerState) },
	OpVerifySampler:               func() Record { return new(VerifySampler) },
	OpVerifyVertexSampler:         func() Record { return new(VerifyVertexSampler) },
	OpApplyVertexBufferBindings:   func() Record { return new(ApplyVertexBufferBindings) },
	OpSetRenderTargets:            func() Record { return new(SetRenderTargets) },
	OpResolveTarget:               func() Record { return new(ResolveTarget) },
	OpResetBackbuffer:             func() Record { return new(ResetBackbuffer) },
	OpReadBackbuffer:              func() Record { return new(ReadBackbuffer) },
	OpCreateTexture2D:             func() Record { return new(CreateTexture2D) },
	OpCreateTexture3D:             func() Record { return new(CreateTexture3D) },
	OpCreateTextureCube:           func() Record { return new(CreateTextureCube) },
	OpAddDisposeTexture:           func() Record { return new(AddDisposeTexture) },
	OpSetTextureData2D:            func() Record { return new(SetTextureData2D) },
	OpSetTextureData3D:            func() Record { return new(SetTextureData3D) },
	OpSetTextureDataCube:          func() Record { return new(SetTextureDataCube) },
	OpSetTextureDataYUV:           func() Record { return new(SetTextureDataYUV) },
	OpGetTextureData2D:            func() Record { return new(GetTextureData2D) },
	OpGetTextureData3D:            func() Record { return new(GetTextureData3D) },
	OpGetTextureDataCube:          func() Record { return new(GetTextureDataCube) },
	OpGenColorRenderbuffer:        func() Record { return new(GenColorRenderbuffer) },
	OpGenDepthStencilRenderbuffer: func() Record { return new(GenDepthStencilRenderbuffer) },
	OpAddDisposeRenderbuffer:      func() Record { return new(AddDisposeRenderbuffer) },
	OpGenVertexBuffer:             func() Record { return new(GenVertexBuffer) },
	OpAddDisposeVertexBuffer:      func() Record { return new(AddDisposeVertexBuffer) },
	OpSetVertexBufferData:         func() Record { return new(SetVertexBufferData) },
	OpGetVertexBufferData:         func() Record { return new(GetVertexBufferData) },
	OpGenIndexBuffer:              func() Record { return new(GenIndexBuffer) },
	OpAddDisposeIndexBuffer:       func() Record { return new(AddDisposeIndexBuffer) },
	OpSetIndexBufferData:          func() Record { return new(SetIndexBufferData) },
	OpGetIndexBufferData:          func() Record { return new(GetIndexBufferData) },
	OpCreateEffect:                func() Record { return new(CreateEffect) },
	OpCloneEffect:                 func() Record { return new(CloneEffect) },
	OpAddDisposeEffect:            func() Record { return new(AddDisposeEffect) },
	OpSetEffectTechnique:          func() Record { return new(SetEffectTechnique) },
	OpApplyEffect:                 func() Record { return new(ApplyEffect) },
	OpBeginPassRestore:            func() Record { return new(BeginPassRestore) },
	OpEndPassRestore:              func() Record { return new(EndPassRestore) },
	OpCreateQuery:                 func() Record { return new(CreateQuery) },
	OpAddDisposeQuery:             func() Record { return new(AddDisposeQuery) },
	OpQueryBegin:                  func() Record { return new(QueryBegin) },
	OpQueryEnd:                    func() Record { return new(QueryEnd) },
	OpQueryPixelCount:             func() Record { return new(QueryPixelCount) },
	OpSetStringMarker:             func() Record { return new(SetStringMarker) },
	OpSetTextureName:              func() Record { return new(SetTextureName) },
}

// New returns a zero record for op, or nil if op is unknown.
func New(op Opcode) Record {
	if !op.Valid() {
		return nil
	}
	return recordFactories[op]()
}

package trace

// Opcode tags one record in a trace stream. Values are part of the file
// format and must never be renumbered.
type Opcode uint8

const (
	OpCreateDevice Opcode = iota
	OpDestroyDevice
	OpSwapBuffers
	OpClear
	OpDrawIndexedPrimitives
	OpDrawInstancedPrimitives
	OpDrawPrimitives
	OpSetViewport
	OpSetScissorRect
	OpSetBlendFactor
	OpSetMultiSampleMask
	OpSetReferenceStencil
	OpSetBlendState
	OpSetDepthStencilState
	OpApplyRasterizerState
	OpVerifySampler
	OpVerifyVertexSampler
	OpApplyVertexBufferBindings
	OpSetRenderTargets
	OpResolveTarget
	OpResetBackbuffer
	OpReadBackbuffer
	OpCreateTexture2D
	OpCreateTexture3D
	OpCreateTextureCube
	OpAddDisposeTexture
	OpSetTextureData2D
	OpSetTextureData3D
	OpSetTextureDataCube
	OpSetTextureDataYUV
	OpGetTextureData2D
	OpGetTextureData3D
	OpGetTextureDataCube
	OpGenColorRenderbuffer
	OpGenDepthStencilRenderbuffer
	OpAddDisposeRenderbuffer
	OpGenVertexBuffer
	OpAddDisposeVertexBuffer
	OpSetVertexBufferData
	OpGetVertexBufferData
	OpGenIndexBuffer
	OpAddDisposeIndexBuffer
	OpSetIndexBufferData
	OpGetIndexBufferData
	OpCreateEffect
	OpCloneEffect
	OpAddDisposeEffect
	OpSetEffectTechnique
	OpApplyEffect
	OpBeginPassRestore
	OpEndPassRestore
	OpCreateQuery
	OpAddDisposeQuery
	OpQueryBegin
	OpQueryEnd
	OpQueryPixelCount
	OpSetStringMarker
	OpSetTextureName

	opcodeCount
)

var opcodeNames = [...]string{
	OpCreateDevice:                "CreateDevice",
	OpDestroyDevice:               "DestroyDevice",
	OpSwapBuffers:                 "SwapBuffers",
	OpClear:                       "Clear",
	OpDrawIndexedPrimitives:       "DrawIndexedPrimitives",
	OpDrawInstancedPrimitives:     "DrawInstancedPrimitives",
	OpDrawPrimitives:              "DrawPrimitives",
	OpSetViewport:                 "SetViewport",
	OpSetScissorRect:              "SetScissorRect",
	OpSetBlendFactor:              "SetBlendFactor",
	OpSetMultiSampleMask:          "SetMultiSampleMask",
	OpSetReferenceStencil:         "SetReferenceStencil",
	OpSetBlendState:               "SetBlendState",
	OpSetDepthStencilState:        "SetDepthStencilState",
	OpApplyRasterizerState:        "ApplyRasterizerState",
	OpVerifySampler:               "VerifySampler",
	OpVerifyVertexSampler:         "VerifyVertexSampler",
	OpApplyVertexBufferBindings:   "ApplyVertexBufferBindings",
	OpSetRenderTargets:            "SetRenderTargets",
	OpResolveTarget:               "ResolveTarget",
	OpResetBackbuffer:             "ResetBackbuffer",
	OpReadBackbuffer:              "ReadBackbuffer",
	OpCreateTexture2D:             "CreateTexture2D",
	OpCreateTexture3D:             "CreateTexture3D",
	OpCreateTextureCube:           "CreateTextureCube",
	OpAddDisposeTexture:           "AddDisposeTexture",
	OpSetTextureData2D:            "SetTextureData2D",
	OpSetTextureData3D:            "SetTextureData3D",
	OpSetTextureDataCube:          "SetTextureDataCube",
	OpSetTextureDataYUV:           "SetTextureDataYUV",
	OpGetTextureData2D:            "GetTextureData2D",
	OpGetTextureData3D:            "GetTextureData3D",
	OpGetTextureDataCube:          "GetTextureDataCube",
	OpGenColorRenderbuffer:        "GenColorRenderbuffer",
	OpGenDepthStencilRenderbuffer: "GenDepthStencilRenderbuffer",
	OpAddDisposeRenderbuffer:      "AddDisposeRenderbuffer",
	OpGenVertexBuffer:             "GenVertexBuffer",
	OpAddDisposeVertexBuffer:      "AddDisposeVertexBuffer",
	OpSetVertexBufferData:         "SetVertexBufferData",
	OpGetVertexBufferData:         "GetVertexBufferData",
	OpGenIndexBuffer:              "GenIndexBuffer",
	OpAddDisposeIndexBuffer:       "AddDisposeIndexBuffer",
	OpSetIndexBufferData:          "SetIndexBufferData",
	OpGetIndexBufferData:          "GetIndexBufferData",
	OpCreateEffect:                "CreateEffect",
	OpCloneEffect:                 "CloneEffect",
	OpAddDisposeEffect:            "AddDisposeEffect",
	OpSetEffectTechnique:          "SetEffectTechnique",
	OpApplyEffect:                 "ApplyEffect",
	OpBeginPassRestore:            "BeginPassRestore",
	OpEndPassRestore:              "EndPassRestore",
	OpCreateQuery:                 "CreateQuery",
	OpAddDisposeQuery:             "AddDisposeQuery",
	OpQueryBegin:                  "QueryBegin",
	OpQueryEnd:                    "QueryEnd",
	OpQueryPixelCount:             "QueryPixelCount",
	OpSetStringMarker:             "SetStringMarker",
	OpSetTextureName:              "SetTextureName",
}

// String returns the operation name.
func (op Opcode) String() string {
	if op < opcodeCount {
		return opcodeNames[op]
	}
	return "Unknown"
}

// Valid reports whether op is a known opcode.
func (op Opcode) Valid() bool { return op < opcodeCount }

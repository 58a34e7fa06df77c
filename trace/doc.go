// Package trace records device calls to a binary log and reads them back.
//
// A trace is a flat sequence of records. Each record is a one-byte [Opcode]
// followed by that operation's fields in a fixed order. There is no header,
// framing or checksum; the first record is always [CreateDevice].
//
// # Encoding
//
// All multi-byte values are little-endian.
//
//	i32, u32, f32   4 bytes
//	bool, u8        1 byte
//	bytes, string   u32 length, then the payload
//	id              u32 interned object, 0xFFFFFFFF for nil
//	rect?           bool present, then x, y, w, h as i32 when present
//
// Objects (textures, buffers, renderbuffers, effects, queries) are never
// written by address. A [Registry] per category interns each live object as
// the lowest free integer; the id is retired when the dispose record is
// written and may then be reused by the next creation. Creation records carry
// the result id last and are written after the backend call returns, so a
// replayer can bind the id to the object it just created.
//
// Nested layouts:
//
//	params      w, h, format, msaa i32, fullScreen bool, depthFormat,
//	            interval, orientation, usage i32
//	target      type u8, (w, h | size, face) i32, levels, msaa i32,
//	            texture id, colorBuffer id
//	binding     buffer id, stride i32, count u32 × (offset, format, usage,
//	            usageIndex i32), vertexOffset, instanceFrequency i32
//	blend       six i32 blend terms, four i32 write masks, factor 4×u8,
//	            multiSampleMask i32
//	depth       depthEnable, depthWrite bool, depthFunc i32, stencilEnable
//	            bool, mask, writeMask i32, twoSided bool, eight i32 stencil
//	            terms, reference i32
//	rasterizer  fill, cull i32, depthBias, slopeScaleDepthBias f32,
//	            scissor, msaa bool
//	sampler     filter, addressU, addressV, addressW i32, lodBias f32,
//	            maxAnisotropy, maxMipLevel i32
//
// # Recording
//
// A [Recorder] truncates the file at device creation and reopens it in
// append mode for every later record. One process-wide lock serialises id
// interning and file writes, so records from any goroutine appear in a
// single total order. Any failure disables the recorder and is logged once;
// rendering continues untraced.
package trace

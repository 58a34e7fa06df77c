// Package gfx defines the backend-agnostic value types shared by the g3d
// device layer, its drivers and the trace recorder.
//
// Everything here is plain data: presentation parameters, the immutable
// render-state blocks (blend, depth-stencil, rasterizer, sampler), vertex
// declarations, surface formats and the effect parameter blob. None of the
// types reference a live GPU object, which keeps the package importable from
// every layer without cycles.
//
// # Surface formats
//
// [SurfaceFormat] covers the uncompressed, packed, floating-point and
// block-compressed formats a game framework exposes. Use
// [SurfaceFormat.TextureSize] to compute the byte size of a region, taking
// 4x4 block compression into account:
//
//	n := gfx.SurfaceFormatDxt1.TextureSize(64, 64, 1) // 2048 bytes
package gfx

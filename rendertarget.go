package g3d

import (
	"log/slog"

	"github.com/gogpu/g3d/driver"
	"github.com/gogpu/g3d/gfx"
)

// Render target kinds.
const (
	RenderTarget2D   = driver.RenderTarget2D
	RenderTargetCube = driver.RenderTargetCube
)

// RenderTargetBinding describes one color target of SetRenderTargets. 2D
// targets use Width and Height; cube targets use Size and Face. ColorBuffer
// is the optional multisample surface rendered into before resolve.
type RenderTargetBinding struct {
	Type             driver.RenderTargetType
	Width, Height    int32
	Size             int32
	Face             gfx.CubeMapFace
	LevelCount       int32
	MultiSampleCount int32
	Texture          Texture
	ColorBuffer      Renderbuffer
}

// NeedsResolve reports whether ResolveTarget must run before the target's
// texture is sampled: the texture has a mip chain to regenerate or the
// rendering went to a separate multisample surface.
func (b *RenderTargetBinding) NeedsResolve() bool {
	return b.LevelCount > 1 || !b.ColorBuffer.IsNil()
}

// VertexBufferBinding binds one vertex stream for drawing.
type VertexBufferBinding struct {
	VertexBuffer      Buffer
	Declaration       gfx.VertexDeclaration
	VertexOffset      int32
	InstanceFrequency int32
}

// targetTracker follows the render target set lifecycle in debug mode.
// When a set is replaced, its targets that need a resolve become pending;
// ResolveTarget clears them. Anything still pending at the next
// SetRenderTargets or SwapBuffers was never resolved.
type targetTracker struct {
	bound   []RenderTargetBinding
	pending []RenderTargetBinding
}

func (t *targetTracker) set(log *slog.Logger, next []RenderTargetBinding) {
	t.reportPending(log, "SetRenderTargets")
	t.pending = t.pending[:0]
	for i := range t.bound {
		if t.bound[i].NeedsResolve() {
			t.pending = append(t.pending, t.bound[i])
		}
	}
	t.bound = append(t.bound[:0], next...)
}

func (t *targetTracker) resolve(b *RenderTargetBinding) {
	for i := range t.pending {
		if t.pending[i].Texture == b.Texture {
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			return
		}
	}
}

func (t *targetTracker) present(log *slog.Logger) {
	t.reportPending(log, "SwapBuffers")
	t.pending = t.pending[:0]
}

func (t *targetTracker) reportPending(log *slog.Logger, op string) {
	for i := range t.pending {
		p := &t.pending[i]
		log.Warn("g3d: render target replaced without ResolveTarget",
			"op", op, "levels", p.LevelCount, "multisample", !p.ColorBuffer.IsNil())
	}
}

package software

import (
	"errors"
	"image"
	"log/slog"

	"github.com/gogpu/g3d/gfx"
)

// ErrEmptyEffect is returned by the default reflector for empty code.
var ErrEmptyEffect = errors.New("software: empty effect code")

// Reflector parses effect code into its parameter and technique blob.
type Reflector func(code []byte) (*gfx.EffectData, error)

// DefaultReflector accepts any non-empty code and describes it as a single
// technique "Default" with one pass "P0" and no parameters.
func DefaultReflector(code []byte) (*gfx.EffectData, error) {
	if len(code) == 0 {
		return nil, ErrEmptyEffect
	}
	return &gfx.EffectData{
		Techniques: []gfx.EffectTechnique{{Name: "Default", Passes: []string{"P0"}}},
	}, nil
}

// Mirror receives every resource change of a [Renderer]. Hardware backends
// implement it to keep device objects in step with the host copies. All
// methods run on the device's owning goroutine.
type Mirror interface {
	TextureCreated(t *Texture) error
	TextureUpdated(t *Texture, face gfx.CubeMapFace, level int32)
	TextureDisposed(t *Texture)

	BufferCreated(b *Buffer) error
	BufferUpdated(b *Buffer, offset, size int32)
	BufferDisposed(b *Buffer)

	EffectCreated(e *Effect) error
	EffectDisposed(e *Effect)

	Presented(frame *image.RGBA)
	Destroyed()
}

// Options configures the renderers created by a [Driver].
type Options struct {
	Reflector Reflector
	Mirror    Mirror
	Logger    *slog.Logger
}

// Option configures a [Driver].
type Option func(*Options)

// WithReflector sets the effect reflector. The default is [DefaultReflector].
func WithReflector(fn Reflector) Option {
	return func(o *Options) {
		o.Reflector = fn
	}
}

// WithMirror attaches a resource mirror to every renderer.
func WithMirror(m Mirror) Option {
	return func(o *Options) {
		o.Mirror = m
	}
}

// WithLogger sets the renderer logger. The default is g3d.Logger().
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

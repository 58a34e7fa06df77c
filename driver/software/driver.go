// Package software is the reference CPU backend.
//
// Every resource lives in host memory with bit-exact storage: texture levels,
// buffers and renderbuffers read back exactly what was written. Draw calls
// are validated and counted but not rasterized; occlusion queries count the
// vertices submitted while they are active. SwapBuffers scales the
// backbuffer into a [Window].
//
// Importing the package registers the "software" driver with g3d:
//
//	import _ "github.com/gogpu/g3d/driver/software"
//
// Other backends build on [Renderer] by supplying a [Mirror] that receives
// every resource change.
package software

import (
	"image"
	"sync"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/driver"
	"github.com/gogpu/g3d/gfx"
)

// Name is the driver name used in priority lists and the override.
const Name = "software"

func init() {
	g3d.Register(New())
}

// Driver is the software driver descriptor.
type Driver struct {
	opts Options
}

// New returns a driver whose devices use opts.
func New(opts ...Option) *Driver {
	d := &Driver{}
	for _, opt := range opts {
		opt(&d.opts)
	}
	return d
}

// Name implements driver.Driver.
func (d *Driver) Name() string { return Name }

// PrepareWindowAttributes implements driver.Driver. The software driver
// runs everywhere and needs no window hints.
func (d *Driver) PrepareWindowAttributes() (driver.WindowFlags, bool) {
	return 0, true
}

// DrawableSize implements driver.Driver for *Window values.
func (d *Driver) DrawableSize(window any) (width, height int32) {
	if w, ok := window.(*Window); ok {
		return w.Size()
	}
	return 0, 0
}

// CreateDevice implements driver.Driver.
func (d *Driver) CreateDevice(params *gfx.PresentationParameters, debugMode bool) (driver.Renderer, error) {
	return NewRenderer(params, debugMode, d.opts)
}

// Window is an in-memory presentation surface.
type Window struct {
	mu  sync.Mutex
	img *image.RGBA
}

// NewWindow returns a window with a width×height drawable.
func NewWindow(width, height int) *Window {
	return &Window{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Size returns the drawable size.
func (w *Window) Size() (width, height int32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b := w.img.Bounds()
	return int32(b.Dx()), int32(b.Dy()) //nolint:gosec // window sizes fit int32
}

// Snapshot returns a copy of the last presented frame.
func (w *Window) Snapshot() *image.RGBA {
	w.mu.Lock()
	defer w.mu.Unlock()
	c := image.NewRGBA(w.img.Bounds())
	copy(c.Pix, w.img.Pix)
	return c
}

// Package driver defines the contract between the g3d device layer and a
// native graphics backend.
//
// A backend provides two things: a [Driver], the process-lifetime descriptor
// used for window negotiation and device creation, and a [Renderer], the
// table of operations a live device dispatches to. The device layer owns
// handle validation, deferred disposal and tracing; a Renderer only ever sees
// its own backend objects and is only ever called from the device's owning
// goroutine.
//
// Backends register themselves with g3d from an init function:
//
//	func init() {
//		g3d.Register(&Driver{})
//	}
package driver

import (
	"errors"

	"github.com/gogpu/g3d/gfx"
)

// ErrUnsupported is returned by CreateDevice when the backend cannot run
// with the requested presentation parameters.
var ErrUnsupported = errors.New("driver: unsupported configuration")

// WindowFlags are the OS-window hints a driver needs set before the window
// is created.
type WindowFlags uint32

const (
	WindowOpenGL WindowFlags = 1 << iota
	WindowVulkan
	WindowMetal
	WindowHighDPI
)

// Driver is a read-only descriptor of one backend.
type Driver interface {
	// Name is the identifier used for priority lists and the override.
	Name() string

	// PrepareWindowAttributes reports whether the backend can run in this
	// process and, if so, which window flags it requires.
	PrepareWindowAttributes() (WindowFlags, bool)

	// DrawableSize returns the size in pixels of the window's drawable area.
	DrawableSize(window any) (width, height int32)

	// CreateDevice creates the backend state for one device.
	CreateDevice(params *gfx.PresentationParameters, debugMode bool) (Renderer, error)
}

// Backend object types. Their concrete types are private to the backend that
// created them; the device layer stores them and passes them back unchanged.
type (
	Texture      any
	Buffer       any
	Renderbuffer any
	Effect       any
	Query        any
)

// RenderTargetType distinguishes 2D and cube render targets.
type RenderTargetType uint8

const (
	RenderTarget2D RenderTargetType = iota
	RenderTargetCube
)

// RenderTarget is a resolved render-target binding handed to the backend.
type RenderTarget struct {
	Type             RenderTargetType
	Width, Height    int32
	Size             int32
	Face             gfx.CubeMapFace
	LevelCount       int32
	MultiSampleCount int32
	Texture          Texture
	ColorBuffer      Renderbuffer
}

// VertexBufferBinding is a resolved vertex stream binding.
type VertexBufferBinding struct {
	VertexBuffer      Buffer
	Declaration       gfx.VertexDeclaration
	VertexOffset      int32
	InstanceFrequency int32
}

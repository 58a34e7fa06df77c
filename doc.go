// Package g3d is a 3D graphics hardware abstraction layer.
//
// # Overview
//
// g3d sits between a game framework and a native graphics backend. The
// framework talks to a [Device] through one fixed set of operations: clears,
// draws, render state, textures, buffers, effects and occlusion queries.
// The device validates handles, defers resource destruction to the owning
// goroutine and, when asked, records every call to a binary trace that
// package replay can play back.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/g3d"
//	    "github.com/gogpu/g3d/driver/software"
//	    "github.com/gogpu/g3d/gfx"
//	)
//
//	if _, err := g3d.PrepareWindowAttributes(); err != nil {
//	    log.Fatal(err)
//	}
//	win := software.NewWindow(640, 480)
//	dev, err := g3d.CreateDevice(&gfx.PresentationParameters{
//	    BackBufferWidth:  640,
//	    BackBufferHeight: 480,
//	}, false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.DestroyDevice()
//
//	dev.Clear(gfx.ClearAll, gfx.Vec4{Z: 1, W: 1}, 1, 0)
//	dev.SwapBuffers(nil, nil, win)
//
// # Drivers
//
// Driver packages register themselves from init. [PrepareWindowAttributes]
// asks each registered driver, in [DefaultPriority] order, whether it can run
// and selects the first that accepts. Setting G3D_FORCE_DRIVER restricts the
// choice to one driver by name.
//
// # Resource lifetime
//
// Handles are generation-counted: a handle to a destroyed object never
// resolves again, even after its slot is reused. The AddDispose operations
// may be called from any goroutine, including finalizers. They only queue
// the request; the backend object is destroyed on the owning goroutine at
// the next SwapBuffers, FlushDisposals or DestroyDevice.
//
// # Tracing
//
// With G3D_TRACE=1 (or [WithTrace]) CreateDevice truncates the trace file
// and every later call appends one record to it. See package trace for the
// format.
//
// # Logging
//
// g3d logs through [log/slog]. Use [SetLogger] to configure or silence it,
// or [HookLogFunctions] to route messages to three string sinks.
package g3d

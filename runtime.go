package g3d

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/gogpu/g3d/driver"
	"github.com/gogpu/g3d/gfx"
	"github.com/gogpu/g3d/trace"
)

var (
	// ErrNoDriver is returned by PrepareWindowAttributes when no driver
	// accepts negotiation.
	ErrNoDriver = errors.New("g3d: no driver accepted window negotiation")

	// ErrNoDriverSelected is returned by CreateDevice before a successful
	// PrepareWindowAttributes.
	ErrNoDriverSelected = errors.New("g3d: no driver selected")

	// ErrStaleHandle is returned when a handle does not resolve to a live
	// object of the device.
	ErrStaleHandle = errors.New("g3d: stale or foreign handle")

	// ErrNilParams is returned by CreateDevice without presentation parameters.
	ErrNilParams = errors.New("g3d: nil presentation parameters")
)

// Runtime is the process-lifetime context: the registered drivers, the
// negotiated selection and the configuration. Most programs use the default
// runtime through the package-level functions.
type Runtime struct {
	cfg Config

	mu       sync.RWMutex
	drivers  []driver.Driver
	selected driver.Driver
}

// NewRuntime returns a runtime with no drivers registered.
func NewRuntime(opts ...Option) *Runtime {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Runtime{cfg: cfg}
}

var defaultRuntime = NewRuntime()

// Default returns the runtime behind the package-level functions.
func Default() *Runtime { return defaultRuntime }

// Register makes a driver available to the default runtime. It is meant to
// be called from a driver package's init function and panics if d is nil or
// a driver with the same name is already registered.
func Register(d driver.Driver) { defaultRuntime.Register(d) }

// PrepareWindowAttributes negotiates a driver on the default runtime.
func PrepareWindowAttributes() (driver.WindowFlags, error) {
	return defaultRuntime.PrepareWindowAttributes()
}

// GetDrawableSize queries the selected driver of the default runtime.
func GetDrawableSize(window any) (width, height int32) {
	return defaultRuntime.GetDrawableSize(window)
}

// CreateDevice creates a device on the default runtime.
func CreateDevice(params *gfx.PresentationParameters, debugMode bool) (*Device, error) {
	return defaultRuntime.CreateDevice(params, debugMode)
}

func (rt *Runtime) logger() *slog.Logger {
	if rt.cfg.Logger != nil {
		return rt.cfg.Logger
	}
	return Logger()
}

// Register adds a driver. It panics if d is nil or its name is taken.
func (rt *Runtime) Register(d driver.Driver) {
	if d == nil {
		panic("g3d: Register driver is nil")
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for _, existing := range rt.drivers {
		if existing.Name() == d.Name() {
			panic("g3d: Register called twice for driver " + d.Name())
		}
	}
	rt.drivers = append(rt.drivers, d)
}

// Drivers returns the registered driver names in priority order.
func (rt *Runtime) Drivers() []string {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	ordered := rt.ordered()
	names := make([]string, len(ordered))
	for i, d := range ordered {
		names[i] = d.Name()
	}
	return names
}

// ordered returns the drivers with prioritised names first, the rest in
// registration order. Callers hold rt.mu.
func (rt *Runtime) ordered() []driver.Driver {
	out := make([]driver.Driver, 0, len(rt.drivers))
	for _, name := range rt.cfg.Priority {
		for _, d := range rt.drivers {
			if d.Name() == name && !slices.Contains(out, d) {
				out = append(out, d)
			}
		}
	}
	for _, d := range rt.drivers {
		if !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	return out
}

// Selected returns the name of the negotiated driver, or "" before a
// successful negotiation.
func (rt *Runtime) Selected() string {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	if rt.selected == nil {
		return ""
	}
	return rt.selected.Name()
}

// PrepareWindowAttributes asks each candidate driver, in priority order,
// whether it can run. The first to accept becomes the selection and its
// window flags are returned. When the driver override is set only that
// driver is asked. If none accepts, the selection is cleared and ErrNoDriver
// is returned.
func (rt *Runtime) PrepareWindowAttributes() (driver.WindowFlags, error) {
	log := rt.logger()
	override := rt.cfg.override()

	rt.mu.Lock()
	defer rt.mu.Unlock()
	for _, d := range rt.ordered() {
		if override != "" && d.Name() != override {
			continue
		}
		flags, ok := d.PrepareWindowAttributes()
		if !ok {
			log.Info("g3d: driver declined", "driver", d.Name())
			continue
		}
		if rt.selected != d {
			log.Info("g3d: driver selected", "driver", d.Name())
		}
		rt.selected = d
		return flags, nil
	}
	rt.selected = nil
	if override != "" {
		log.Error("g3d: no driver accepted window negotiation", "override", override)
		return 0, fmt.Errorf("%w: override %q", ErrNoDriver, override)
	}
	log.Error("g3d: no driver accepted window negotiation")
	return 0, ErrNoDriver
}

func (rt *Runtime) selection() driver.Driver {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.selected
}

// GetDrawableSize returns the drawable size of window as reported by the
// selected driver, or zeros before selection.
func (rt *Runtime) GetDrawableSize(window any) (width, height int32) {
	d := rt.selection()
	if d == nil {
		rt.logger().Error("g3d: GetDrawableSize called before driver selection")
		return 0, 0
	}
	return d.DrawableSize(window)
}

// CreateDevice creates a device on the selected driver. When tracing is
// enabled the trace file is truncated and begins with this call.
func (rt *Runtime) CreateDevice(params *gfx.PresentationParameters, debugMode bool) (*Device, error) {
	log := rt.logger()
	d := rt.selection()
	if d == nil {
		log.Error("g3d: CreateDevice called before driver selection")
		return nil, ErrNoDriverSelected
	}
	if params == nil {
		return nil, ErrNilParams
	}
	r, err := d.CreateDevice(params, debugMode)
	if err != nil {
		log.Error("g3d: device creation failed", "driver", d.Name(), "err", err)
		return nil, fmt.Errorf("g3d: %s: %w", d.Name(), err)
	}
	dev := newDevice(r, d.Name(), debugMode, log)

	if on, path := rt.cfg.tracing(); on {
		rec, err := trace.Start(path, log, &trace.CreateDevice{Params: *params, DebugMode: debugMode})
		if err != nil {
			log.Error("g3d: tracing disabled", "err", err)
		} else {
			log.Info("g3d: tracing", "file", rec.Path())
			dev.rec = rec
		}
	}
	log.Info("g3d: device created", "driver", d.Name(),
		"width", params.BackBufferWidth, "height", params.BackBufferHeight)
	return dev, nil
}

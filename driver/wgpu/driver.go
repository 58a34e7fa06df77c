//go:build !nogpu

// Package wgpu is the hardware driver. It runs the software renderer as the
// authoritative host copy and mirrors every texture, buffer, effect and
// presented frame into a WebGPU HAL device.
//
// The device comes from the host application when one is supplied with
// [WithDeviceProvider]; otherwise the driver opens its own Vulkan instance.
// Effect code is WGSL, compiled with naga.
//
// Importing the package registers the "wgpu" driver with g3d. Build with
// the nogpu tag to leave it out.
package wgpu

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan" // register the Vulkan backend

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/driver"
	"github.com/gogpu/g3d/driver/software"
	"github.com/gogpu/g3d/gfx"
)

// Name is the driver name used in priority lists and the override.
const Name = "wgpu"

var (
	// ErrNoAdapter is returned when the instance exposes no adapter.
	ErrNoAdapter = errors.New("wgpu: no GPU adapters found")

	// ErrNoBackend is returned when the Vulkan HAL backend is unavailable.
	ErrNoBackend = errors.New("wgpu: vulkan backend not available")

	// ErrProvider is returned when a device provider does not expose HAL
	// objects.
	ErrProvider = errors.New("wgpu: provider does not expose HAL device and queue")
)

func init() {
	g3d.Register(New())
}

// InstanceFunc creates the HAL instance a standalone device is opened on.
type InstanceFunc func() (hal.Instance, error)

// VulkanInstance opens the registered Vulkan backend.
func VulkanInstance() (hal.Instance, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, ErrNoBackend
	}
	return backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
}

// Option configures a [Driver].
type Option func(*Driver)

// WithDeviceProvider shares the host application's device. The provider
// must also implement HalDevice() any and HalQueue() any.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(d *Driver) {
		d.provider = p
	}
}

// WithInstance replaces the instance used for standalone devices.
func WithInstance(fn InstanceFunc) Option {
	return func(d *Driver) {
		d.instance = fn
	}
}

// WithLogger sets the driver logger. The default is g3d.Logger().
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		d.log = l
	}
}

// Driver is the wgpu driver descriptor.
type Driver struct {
	provider gpucontext.DeviceProvider
	instance InstanceFunc
	log      *slog.Logger
}

// New returns a driver configured by opts.
func New(opts ...Option) *Driver {
	d := &Driver{instance: VulkanInstance}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Driver) logger() *slog.Logger {
	if d.log != nil {
		return d.log
	}
	return g3d.Logger()
}

// Name implements driver.Driver.
func (d *Driver) Name() string { return Name }

// PrepareWindowAttributes accepts when a provider is set or an adapter can
// be enumerated.
func (d *Driver) PrepareWindowAttributes() (driver.WindowFlags, bool) {
	const flags = driver.WindowVulkan | driver.WindowHighDPI
	if d.provider != nil {
		return flags, true
	}
	inst, err := d.instance()
	if err != nil {
		d.logger().Info("wgpu: instance unavailable", "err", err)
		return 0, false
	}
	defer inst.Destroy()
	if len(inst.EnumerateAdapters(nil)) == 0 {
		d.logger().Info("wgpu: no adapters")
		return 0, false
	}
	return flags, true
}

// DrawableSize implements driver.Driver for *software.Window values.
func (d *Driver) DrawableSize(window any) (width, height int32) {
	if w, ok := window.(*software.Window); ok {
		return w.Size()
	}
	return 0, 0
}

// CreateDevice opens or borrows a HAL device and returns a renderer
// mirroring into it.
func (d *Driver) CreateDevice(params *gfx.PresentationParameters, debugMode bool) (driver.Renderer, error) {
	gpu, err := d.open()
	if err != nil {
		return nil, err
	}
	m := newMirror(gpu, d.logger())
	r, err := software.NewRenderer(d.surfaceParams(params), debugMode, software.Options{
		Reflector: Reflect,
		Mirror:    m,
		Logger:    d.logger(),
	})
	if err != nil {
		gpu.close()
		return nil, err
	}
	return &Renderer{Renderer: r, gpu: m}, nil
}

// surfaceParams adopts the provider's surface format for the backbuffer.
func (d *Driver) surfaceParams(p *gfx.PresentationParameters) *gfx.PresentationParameters {
	if d.provider == nil || p == nil {
		return p
	}
	f, ok := gfx.SurfaceFormatFromGPU(d.provider.SurfaceFormat())
	if !ok || f == p.BackBufferFormat {
		return p
	}
	d.logger().Info("wgpu: backbuffer follows surface format", "requested", p.BackBufferFormat, "surface", f)
	cp := *p
	cp.BackBufferFormat = f
	return &cp
}

// halDevice is an opened or borrowed HAL device.
type halDevice struct {
	device   hal.Device
	queue    hal.Queue
	adapter  hal.Adapter  // nil when the provider does not expose one
	instance hal.Instance // nil when borrowed
	features gputypes.Features
	name     string
}

// optionalFeatures are enabled at Open when the adapter supports them.
const optionalFeatures = gputypes.Features(gputypes.FeatureTextureCompressionBC)

func (g *halDevice) close() {
	if g.instance == nil {
		return
	}
	g.device.Destroy()
	g.instance.Destroy()
}

func (d *Driver) open() (*halDevice, error) {
	if d.provider != nil {
		return fromProvider(d.provider)
	}
	inst, err := d.instance()
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}
	adapters := inst.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		inst.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	features := selected.Features.Intersect(optionalFeatures)
	open, err := selected.Adapter.Open(features, gputypes.DefaultLimits())
	if err != nil {
		inst.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}
	return &halDevice{
		device:   open.Device,
		queue:    open.Queue,
		adapter:  selected.Adapter,
		instance: inst,
		features: features,
		name:     selected.Info.Name,
	}, nil
}

func fromProvider(p gpucontext.DeviceProvider) (*halDevice, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := p.(halProvider)
	if !ok {
		return nil, ErrProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, ErrProvider
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, ErrProvider
	}
	// The host's enabled features are unknown, so none are assumed.
	g := &halDevice{device: device, queue: queue, name: "provided"}
	if a, ok := p.Adapter().(hal.Adapter); ok {
		g.adapter = a
	}
	if info := p.AdapterInfo(); info.Name != "" {
		g.name = info.Name
	}
	return g, nil
}

package g3d

import (
	"log/slog"
	"os"

	"github.com/gogpu/g3d/trace"
)

// Environment variables consulted by a Runtime.
const (
	// EnvForceDriver names the only driver negotiation may select.
	EnvForceDriver = "G3D_FORCE_DRIVER"
	// EnvTrace enables tracing when set to "1".
	EnvTrace = "G3D_TRACE"
	// EnvTraceFile overrides the trace file path.
	EnvTraceFile = "G3D_TRACE_FILE"
)

// DefaultPriority is the driver order used when none is configured.
var DefaultPriority = []string{"wgpu", "software"}

// TraceMode selects how a Runtime decides whether to trace new devices.
type TraceMode uint8

const (
	// TraceFromEnv traces when EnvTrace is "1".
	TraceFromEnv TraceMode = iota
	// TraceOff never traces.
	TraceOff
	// TraceOn always traces.
	TraceOn
)

// Config is the resolved configuration of a Runtime. Explicit settings win
// over the environment; the environment is read lazily, at negotiation time
// for the driver override and at device creation for tracing.
type Config struct {
	// DriverOverride forces one driver by name. Empty consults EnvForceDriver.
	DriverOverride string

	// Priority lists driver names tried first, in order. Drivers not named
	// here follow in registration order.
	Priority []string

	Trace TraceMode

	// TraceFile is the trace path. Empty consults EnvTraceFile, then
	// trace.DefaultFile.
	TraceFile string

	// Getenv reads the environment. Defaults to os.Getenv.
	Getenv func(string) string

	// Logger overrides the package logger for this runtime and its devices.
	Logger *slog.Logger
}

// Option configures a Runtime during creation.
//
// Example:
//
//	rt := g3d.NewRuntime(
//	    g3d.WithDriverOverride("software"),
//	    g3d.WithTrace("frame.bin"),
//	)
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Priority: append([]string(nil), DefaultPriority...),
		Getenv:   os.Getenv,
	}
}

// WithDriverOverride restricts negotiation to the named driver.
func WithDriverOverride(name string) Option {
	return func(c *Config) {
		c.DriverOverride = name
	}
}

// WithPriority replaces the driver priority list.
func WithPriority(names ...string) Option {
	return func(c *Config) {
		c.Priority = append([]string(nil), names...)
	}
}

// WithTrace enables tracing to path. An empty path uses the environment or
// the default file name.
func WithTrace(path string) Option {
	return func(c *Config) {
		c.Trace = TraceOn
		c.TraceFile = path
	}
}

// WithoutTrace disables tracing regardless of the environment.
func WithoutTrace() Option {
	return func(c *Config) {
		c.Trace = TraceOff
	}
}

// WithGetenv replaces the environment lookup, mainly for tests.
func WithGetenv(getenv func(string) string) Option {
	return func(c *Config) {
		if getenv != nil {
			c.Getenv = getenv
		}
	}
}

// WithLogger sets the logger used by this runtime and the devices it
// creates.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

func (c *Config) override() string {
	if c.DriverOverride != "" {
		return c.DriverOverride
	}
	return c.Getenv(EnvForceDriver)
}

func (c *Config) tracing() (bool, string) {
	on := false
	switch c.Trace {
	case TraceOn:
		on = true
	case TraceFromEnv:
		on = c.Getenv(EnvTrace) == "1"
	}
	if !on {
		return false, ""
	}
	path := c.TraceFile
	if path == "" {
		path = c.Getenv(EnvTraceFile)
	}
	if path == "" {
		path = trace.DefaultFile
	}
	return true, path
}

package trace

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// DefaultFile is the trace file used when none is configured.
const DefaultFile = "g3d_trace.bin"

// mu serialises registry mutation and file writes across every recorder in
// the process.
var mu sync.Mutex

// Recorder appends records to a trace file. Each record reopens the file in
// append mode, so a crash loses at most the record being written.
//
// The first failure (I/O or an unregistered object) logs one error and
// disables the recorder for the rest of its life. A nil *Recorder is valid
// and records nothing.
type Recorder struct {
	path     string
	log      *slog.Logger
	reg      *Registries
	disabled atomic.Bool
	buf      bytes.Buffer
}

// Start truncates path, writes the device-creation record and returns the
// recorder for the rest of the session.
func Start(path string, logger *slog.Logger, rec *CreateDevice) (*Recorder, error) {
	if path == "" {
		path = DefaultFile
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recorder{path: path, log: logger, reg: NewRegistries()}

	mu.Lock()
	defer mu.Unlock()
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("trace: create %s: %w", path, err)
	}
	err = Encode(f, rec)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("trace: write %s: %w", path, err)
	}
	return r, nil
}

// Path returns the trace file path.
func (r *Recorder) Path() string {
	if r == nil {
		return ""
	}
	return r.path
}

// Enabled reports whether records are still being written.
func (r *Recorder) Enabled() bool {
	return r != nil && !r.disabled.Load()
}

// Write appends a record that references no objects, or whose ids the
// caller has already resolved.
func (r *Recorder) Write(rec Record) {
	r.Record(func(*Registries) (Record, error) { return rec, nil })
}

// Record builds a record under the process-wide lock and appends it. build
// interns or resolves object ids through the registries; an error from build
// disables the recorder.
func (r *Recorder) Record(build func(reg *Registries) (Record, error)) {
	if !r.Enabled() {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	if r.disabled.Load() {
		return
	}
	rec, err := build(r.reg)
	if err != nil {
		r.fail("registry lookup failed", err)
		return
	}
	if rec == nil {
		return
	}
	r.buf.Reset()
	if err := Encode(&r.buf, rec); err != nil {
		r.fail("encode failed", err, slog.String("op", rec.Op().String()))
		return
	}
	if err := r.appendFile(r.buf.Bytes()); err != nil {
		r.fail("append failed", err, slog.String("op", rec.Op().String()))
	}
}

// Stop disables the recorder. Later records are dropped.
func (r *Recorder) Stop() {
	if r != nil {
		r.disabled.Store(true)
	}
}

func (r *Recorder) appendFile(p []byte) error {
	f, err := os.OpenFile(r.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	_, err = f.Write(p)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

func (r *Recorder) fail(msg string, err error, attrs ...any) {
	r.disabled.Store(true)
	args := append([]any{slog.String("file", r.path), slog.Any("err", err)}, attrs...)
	r.log.Error("trace: "+msg+", tracing disabled", args...)
}

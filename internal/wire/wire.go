// Package wire implements the little-endian binary encoding used by trace
// files.
//
// Both Writer and Reader are sticky: once an error occurs every further call
// is a no-op (reads return zero values) and Err reports the first failure.
// Callers encode or decode a whole record and check the error once.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// MaxPayload bounds length-prefixed payloads on both sides, so a Writer
// never produces a stream its Reader rejects.
const MaxPayload = 1 << 30

// ErrPayloadTooLarge is returned when a payload or length prefix exceeds
// MaxPayload.
var ErrPayloadTooLarge = errors.New("wire: payload too large")

// Writer encodes values to an io.Writer.
type Writer struct {
	w   io.Writer
	max int
	tmp [8]byte
	err error
}

// NewWriter returns a Writer appending to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, max: MaxPayload}
}

// length writes a payload length prefix, failing before anything is
// written when n exceeds the limit.
func (w *Writer) length(n int) bool {
	if w.err != nil {
		return false
	}
	if n > w.max {
		w.err = fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, n)
		return false
	}
	w.Uint32(uint32(n)) //nolint:gosec // bounded by max
	return w.err == nil
}

// Err returns the first error encountered, if any.
func (w *Writer) Err() error { return w.err }

func (w *Writer) write(p []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(p)
	if err != nil {
		w.err = err
	} else if n != len(p) {
		w.err = io.ErrShortWrite
	}
}

// Uint8 writes one byte.
func (w *Writer) Uint8(v uint8) {
	w.tmp[0] = v
	w.write(w.tmp[:1])
}

// Bool writes a boolean as one byte.
func (w *Writer) Bool(v bool) {
	if v {
		w.Uint8(1)
	} else {
		w.Uint8(0)
	}
}

// Uint32 writes a 32-bit unsigned integer.
func (w *Writer) Uint32(v uint32) {
	binary.LittleEndian.PutUint32(w.tmp[:4], v)
	w.write(w.tmp[:4])
}

// Int32 writes a 32-bit signed integer.
func (w *Writer) Int32(v int32) { w.Uint32(uint32(v)) }

// Float32 writes an IEEE-754 single.
func (w *Writer) Float32(v float32) { w.Uint32(math.Float32bits(v)) }

// Bytes writes a length-prefixed byte payload.
func (w *Writer) Bytes(p []byte) {
	if w.length(len(p)) {
		w.write(p)
	}
}

// String writes a length-prefixed string.
func (w *Writer) String(s string) {
	if w.length(len(s)) {
		_, w.err = io.WriteString(w.w, s)
	}
}

// Reader decodes values from an io.Reader.
type Reader struct {
	r   io.Reader
	tmp [8]byte
	err error
}

// NewReader returns a Reader consuming r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Err returns the first error encountered, if any.
func (r *Reader) Err() error { return r.err }

// SetErr records err unless an earlier error is already set.
func (r *Reader) SetErr(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) read(p []byte) {
	if r.err != nil {
		return
	}
	n, err := io.ReadFull(r.r, p)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			r.err = err
			return
		}
		r.err = fmt.Errorf("wire: %w after %d bytes", err, n)
	}
}

// Uint8 reads one byte.
func (r *Reader) Uint8() uint8 {
	r.read(r.tmp[:1])
	if r.err != nil {
		return 0
	}
	return r.tmp[0]
}

// Bool reads a one-byte boolean.
func (r *Reader) Bool() bool { return r.Uint8() != 0 }

// Uint32 reads a 32-bit unsigned integer.
func (r *Reader) Uint32() uint32 {
	r.read(r.tmp[:4])
	if r.err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(r.tmp[:4])
}

// Int32 reads a 32-bit signed integer.
func (r *Reader) Int32() int32 { return int32(r.Uint32()) } //nolint:gosec // bit reinterpretation

// Float32 reads an IEEE-754 single.
func (r *Reader) Float32() float32 { return math.Float32frombits(r.Uint32()) }

func (r *Reader) length() int {
	n := r.Uint32()
	if r.err != nil {
		return 0
	}
	if n > MaxPayload {
		r.err = fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, n)
		return 0
	}
	return int(n)
}

// Bytes reads a length-prefixed byte payload.
func (r *Reader) Bytes() []byte {
	n := r.length()
	if r.err != nil {
		return nil
	}
	p := make([]byte, n)
	r.read(p)
	if r.err != nil {
		return nil
	}
	return p
}

// String reads a length-prefixed string.
func (r *Reader) String() string {
	return string(r.Bytes())
}

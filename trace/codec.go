package trace

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/gogpu/g3d/internal/wire"
)

// maxElements bounds decoded slice lengths (bindings, targets, parameters).
const maxElements = 1 << 16

var (
	// ErrUnknownOpcode is returned by Reader.Next for an opcode outside the catalogue.
	ErrUnknownOpcode = errors.New("trace: unknown opcode")

	// ErrCorrupt is returned by Reader.Next when a record is malformed.
	ErrCorrupt = errors.New("trace: corrupt record")
)

type encoder struct{ w *wire.Writer }

func (e encoder) u8(v *uint8)     { e.w.Uint8(*v) }
func (e encoder) boolean(v *bool) { e.w.Bool(*v) }
func (e encoder) i32(v *int32)    { e.w.Int32(*v) }
func (e encoder) u32(v *uint32)   { e.w.Uint32(*v) }
func (e encoder) f32(v *float32)  { e.w.Float32(*v) }
func (e encoder) bytes(v *[]byte) { e.w.Bytes(*v) }
func (e encoder) str(v *string)   { e.w.String(*v) }
func (e encoder) count(n int) int {
	e.w.Uint32(uint32(n)) //nolint:gosec // slice lengths
	return n
}

type decoder struct{ r *wire.Reader }

func (d decoder) u8(v *uint8)     { *v = d.r.Uint8() }
func (d decoder) boolean(v *bool) { *v = d.r.Bool() }
func (d decoder) i32(v *int32)    { *v = d.r.Int32() }
func (d decoder) u32(v *uint32)   { *v = d.r.Uint32() }
func (d decoder) f32(v *float32)  { *v = d.r.Float32() }
func (d decoder) bytes(v *[]byte) { *v = d.r.Bytes() }
func (d decoder) str(v *string)   { *v = d.r.String() }
func (d decoder) count(int) int {
	n := d.r.Uint32()
	if n > maxElements {
		d.r.SetErr(fmt.Errorf("%w: %d elements", ErrCorrupt, n))
		return 0
	}
	return int(n)
}

// Encode writes rec, opcode first, to w.
func Encode(w io.Writer, rec Record) error {
	ww := wire.NewWriter(w)
	ww.Uint8(uint8(rec.Op()))
	rec.code(encoder{ww})
	return ww.Err()
}

// Marshal returns the encoding of rec.
func Marshal(rec Record) []byte {
	var buf bytes.Buffer
	_ = Encode(&buf, rec) // fails only for payloads over wire.MaxPayload
	return buf.Bytes()
}

// Reader decodes a trace stream one record at a time.
type Reader struct {
	r   *wire.Reader
	n   int
	err error
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: wire.NewReader(bufio.NewReader(r))}
}

// Next returns the next record. It returns io.EOF when the stream ends on a
// record boundary; a stream cut mid-record yields io.ErrUnexpectedEOF.
func (r *Reader) Next() (Record, error) {
	if r.err != nil {
		return nil, r.err
	}
	op := Opcode(r.r.Uint8())
	if err := r.r.Err(); err != nil {
		if errors.Is(err, io.EOF) {
			r.err = io.EOF
		} else {
			r.err = fmt.Errorf("trace: record %d: %w", r.n, err)
		}
		return nil, r.err
	}
	rec := New(op)
	if rec == nil {
		r.err = fmt.Errorf("%w %d at record %d", ErrUnknownOpcode, op, r.n)
		return nil, r.err
	}
	rec.code(decoder{r.r})
	if err := r.r.Err(); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		r.err = fmt.Errorf("trace: record %d (%s): %w", r.n, op, err)
		return nil, r.err
	}
	r.n++
	return rec, nil
}

// ReadAll decodes every record in r.
func ReadAll(r io.Reader) ([]Record, error) {
	tr := NewReader(r)
	var recs []Record
	for {
		rec, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return recs, nil
		}
		if err != nil {
			return recs, err
		}
		recs = append(recs, rec)
	}
}

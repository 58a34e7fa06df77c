package wire

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestWriterLayout(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Uint8(0xAB)
	w.Bool(true)
	w.Int32(-2)
	w.Float32(1)
	w.Bytes([]byte{7, 8})
	w.String("hi")
	if err := w.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}

	want := []byte{
		0xAB,
		1,
		0xFE, 0xFF, 0xFF, 0xFF,
		0x00, 0x00, 0x80, 0x3F,
		2, 0, 0, 0, 7, 8,
		2, 0, 0, 0, 'h', 'i',
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("encoded = % x\nwant      % x", buf.Bytes(), want)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	if got := r.Uint8(); got != 0xAB {
		t.Errorf("Uint8() = %#x", got)
	}
	if !r.Bool() {
		t.Error("Bool() = false")
	}
	if got := r.Int32(); got != -2 {
		t.Errorf("Int32() = %d", got)
	}
	if got := r.Float32(); got != 1 {
		t.Errorf("Float32() = %v", got)
	}
	if got := r.Bytes(); !bytes.Equal(got, []byte{7, 8}) {
		t.Errorf("Bytes() = %v", got)
	}
	if got := r.String(); got != "hi" {
		t.Errorf("String() = %q", got)
	}
	if err := r.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	r.Uint8()
	if !errors.Is(r.Err(), io.EOF) {
		t.Errorf("reading past end: Err() = %v, want io.EOF", r.Err())
	}
}

type failWriter struct{ n int }

func (f *failWriter) Write(p []byte) (int, error) {
	if f.n <= 0 {
		return 0, errors.New("disk full")
	}
	f.n--
	return len(p), nil
}

func TestWriterSticky(t *testing.T) {
	fw := &failWriter{n: 1}
	w := NewWriter(fw)
	w.Uint32(1)
	w.Uint32(2)
	w.Uint32(3)
	if w.Err() == nil || w.Err().Error() != "disk full" {
		t.Errorf("Err() = %v, want disk full", w.Err())
	}
}

func TestReaderTruncatedPayload(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{4, 0, 0, 0, 1, 2}))
	if got := r.Bytes(); got != nil {
		t.Errorf("Bytes() = %v, want nil", got)
	}
	if !errors.Is(r.Err(), io.ErrUnexpectedEOF) {
		t.Errorf("Err() = %v, want ErrUnexpectedEOF", r.Err())
	}
}

func TestReaderPayloadLimit(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF}))
	r.Bytes()
	if !errors.Is(r.Err(), ErrPayloadTooLarge) {
		t.Errorf("Err() = %v, want ErrPayloadTooLarge", r.Err())
	}
}

func TestWriterPayloadLimit(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.max = 4
	w.Bytes([]byte{1, 2, 3, 4})
	if w.Err() != nil {
		t.Fatalf("payload at the limit: %v", w.Err())
	}
	n := buf.Len()
	w.Bytes([]byte{1, 2, 3, 4, 5})
	if !errors.Is(w.Err(), ErrPayloadTooLarge) {
		t.Errorf("Err() = %v, want ErrPayloadTooLarge", w.Err())
	}
	if buf.Len() != n {
		t.Errorf("oversized payload wrote %d bytes", buf.Len()-n)
	}

	s := NewWriter(&bytes.Buffer{})
	s.max = 2
	s.String("abc")
	if !errors.Is(s.Err(), ErrPayloadTooLarge) {
		t.Errorf("String: Err() = %v, want ErrPayloadTooLarge", s.Err())
	}
}

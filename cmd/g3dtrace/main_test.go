package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gogpu/g3d/trace"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		rec  trace.Record
		want string
	}{
		{&trace.Clear{Options: 1, Stencil: 2}, "{Options:1 Color:{X:0 Y:0 Z:0 W:0} Depth:0 Stencil:2}"},
		{&trace.SetIndexBufferData{Buffer: 3, Data: []byte{1, 2}}, "buf=3 offset=0 options=0 data=01 02"},
		{&trace.SetStringMarker{Text: "frame"}, "{Text:frame}"},
	}
	for _, tt := range tests {
		if got := describe(tt.rec); got != tt.want {
			t.Errorf("describe(%s) = %q, want %q", tt.rec.Op(), got, tt.want)
		}
	}

	big := describe(&trace.SetTextureData2D{Data: make([]byte, 100)})
	if !strings.HasSuffix(big, "(100 bytes)") {
		t.Errorf("payload not abbreviated: %q", big)
	}
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	printStats(&buf, map[trace.Opcode]int{
		trace.OpClear:       250,
		trace.OpSwapBuffers: 1000,
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "SwapBuffers") || !strings.HasPrefix(lines[2], "total") {
		t.Errorf("unexpected order:\n%s", buf.String())
	}
	if !strings.HasSuffix(lines[2], " 1,250") {
		t.Errorf("total line = %q", lines[2])
	}
	if !strings.HasSuffix(lines[1], " 20.0%") {
		t.Errorf("share not printed: %q", lines[1])
	}
}

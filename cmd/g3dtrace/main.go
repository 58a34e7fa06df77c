// Command g3dtrace prints a g3d trace as an opcode listing.
//
// Usage:
//
//	g3dtrace [-stats] [-n count] trace.bin
package main

import (
	"bufio"
	"cmp"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/g3d/trace"
)

func main() {
	var (
		stats = flag.Bool("stats", false, "print per-opcode counts instead of records")
		limit = flag.Int("n", 0, "stop after this many records (0: all)")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: g3dtrace [flags] trace.bin")
		flag.PrintDefaults()
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to open trace: %v", err)
	}
	defer f.Close()

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	counts := make(map[trace.Opcode]int)
	r := trace.NewReader(f)
	for i := 0; *limit == 0 || i < *limit; i++ {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			out.Flush()
			log.Fatalf("Trace error: %v", err)
		}
		if *stats {
			counts[rec.Op()]++
			continue
		}
		fmt.Fprintf(out, "%6d %-28s %s\n", i, rec.Op(), describe(rec))
	}
	if *stats {
		printStats(out, counts)
	}
}

// payload limits how many bytes of a data field are printed.
const payload = 16

func data(b []byte) string {
	if len(b) <= payload {
		return fmt.Sprintf("% x", b)
	}
	return fmt.Sprintf("% x ... (%d bytes)", b[:payload], len(b))
}

func params(vals [][]byte) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = data(v)
	}
	return "[" + strings.Join(parts, " | ") + "]"
}

// describe formats the record's fields, abbreviating bulk payloads.
func describe(rec trace.Record) string {
	switch r := rec.(type) {
	case *trace.SetTextureData2D:
		return fmt.Sprintf("tex=%d rect=(%d,%d %dx%d) level=%d data=%s", r.Texture, r.X, r.Y, r.W, r.H, r.Level, data(r.Data))
	case *trace.SetTextureData3D:
		return fmt.Sprintf("tex=%d box=(%d,%d,%d %dx%dx%d) level=%d data=%s",
			r.Texture, r.X, r.Y, r.Z, r.W, r.H, r.D, r.Level, data(r.Data))
	case *trace.SetTextureDataCube:
		return fmt.Sprintf("tex=%d face=%d rect=(%d,%d %dx%d) level=%d data=%s",
			r.Texture, r.Face, r.X, r.Y, r.W, r.H, r.Level, data(r.Data))
	case *trace.SetTextureDataYUV:
		return fmt.Sprintf("y=%d u=%d v=%d y=%dx%d uv=%dx%d data=%s",
			r.Y, r.U, r.V, r.YWidth, r.YHeight, r.UVWidth, r.UVHeight, data(r.Data))
	case *trace.SetVertexBufferData:
		return fmt.Sprintf("buf=%d offset=%d count=%d size=%d stride=%d options=%d data=%s",
			r.Buffer, r.Offset, r.ElementCount, r.ElementSize, r.VertexStride, r.Options, data(r.Data))
	case *trace.SetIndexBufferData:
		return fmt.Sprintf("buf=%d offset=%d options=%d data=%s", r.Buffer, r.Offset, r.Options, data(r.Data))
	case *trace.CreateEffect:
		return fmt.Sprintf("result=%d code=%s", r.Result, data(r.Code))
	case *trace.ApplyEffect:
		return fmt.Sprintf("effect=%d pass=%d params=%s", r.Effect, r.Pass, params(r.Params))
	case *trace.BeginPassRestore:
		return fmt.Sprintf("effect=%d params=%s", r.Effect, params(r.Params))
	}
	return strings.TrimPrefix(fmt.Sprintf("%+v", rec), "&")
}

// printStats lists opcodes by descending count with their share of the
// trace. Counts are digit-grouped.
func printStats(w io.Writer, counts map[trace.Opcode]int) {
	ops := make([]trace.Opcode, 0, len(counts))
	total := 0
	for op, n := range counts {
		ops = append(ops, op)
		total += n
	}
	slices.SortFunc(ops, func(a, b trace.Opcode) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	p := message.NewPrinter(language.English)
	for _, op := range ops {
		n := counts[op]
		p.Fprintf(w, "%-28s %10d %5.1f%%\n", op.String(), n, 100*float64(n)/float64(total))
	}
	p.Fprintf(w, "%-28s %10d\n", "total", total)
}

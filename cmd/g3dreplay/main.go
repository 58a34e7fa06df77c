// Command g3dreplay replays a g3d trace on a chosen driver.
//
// Usage:
//
//	g3dreplay [-driver name] [-record out.bin] [-screenshot frame.png] trace.bin
//
// The last presented frame can be saved as PNG or BMP, chosen by the
// screenshot file extension. With -record the replay is traced again, which
// reproduces the input byte for byte on the same driver.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/driver"
	"github.com/gogpu/g3d/driver/software"
	"github.com/gogpu/g3d/replay"
	"github.com/gogpu/g3d/trace"
)

// drivers lists the drivers offered to negotiation. Hardware drivers add
// themselves from build-tagged files.
var drivers = []driver.Driver{software.New()}

func main() {
	var (
		driverName = flag.String("driver", "", "driver to force (default: negotiate)")
		recordTo   = flag.String("record", "", "re-record the replay to this trace file")
		screenshot = flag.String("screenshot", "", "save the last frame (.png or .bmp)")
		verbose    = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: g3dreplay [flags] trace.bin")
		flag.PrintDefaults()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	g3d.SetLogger(logger)

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read trace: %v", err)
	}
	w, h, err := backbufferSize(data)
	if err != nil {
		log.Fatalf("Invalid trace: %v", err)
	}

	opts := []g3d.Option{g3d.WithLogger(logger), g3d.WithoutTrace()}
	if *driverName != "" {
		opts = append(opts, g3d.WithDriverOverride(*driverName))
	}
	if *recordTo != "" {
		opts = append(opts, g3d.WithTrace(*recordTo))
	}
	rt := g3d.NewRuntime(opts...)
	for _, d := range drivers {
		rt.Register(d)
	}

	window := software.NewWindow(w, h)
	var frames int
	hook := replay.WithFrameHook(func(_ *replay.Player, n int) { frames = n })
	if err := replay.Run(rt, bytes.NewReader(data), window, hook, replay.WithLogger(logger)); err != nil {
		log.Fatalf("Replay failed: %v", err)
	}
	log.Printf("Replayed %d frames on %s\n", frames, rt.Selected())

	if *screenshot != "" {
		if err := save(*screenshot, window.Snapshot()); err != nil {
			log.Fatalf("Failed to save screenshot: %v", err)
		}
		log.Printf("Screenshot saved to %s (%dx%d)\n", *screenshot, w, h)
	}
}

// backbufferSize reads the presentation size from the CreateDevice record.
func backbufferSize(data []byte) (w, h int, err error) {
	rec, err := trace.NewReader(bytes.NewReader(data)).Next()
	if errors.Is(err, io.EOF) {
		return 0, 0, replay.ErrNoCreateDevice
	}
	if err != nil {
		return 0, 0, err
	}
	cd, ok := rec.(*trace.CreateDevice)
	if !ok {
		return 0, 0, replay.ErrNoCreateDevice
	}
	return int(cd.Params.BackBufferWidth), int(cd.Params.BackBufferHeight), nil
}

func save(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp":
		err = bmp.Encode(f, img)
	default:
		err = png.Encode(f, img)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

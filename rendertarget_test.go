package g3d

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNeedsResolve(t *testing.T) {
	tests := []struct {
		name string
		b    RenderTargetBinding
		want bool
	}{
		{"single level", RenderTargetBinding{LevelCount: 1}, false},
		{"mipmapped", RenderTargetBinding{LevelCount: 4}, true},
		{"multisampled", RenderTargetBinding{LevelCount: 1, ColorBuffer: Renderbuffer{handle{gen: 1}}}, true},
		{"sample count alone", RenderTargetBinding{LevelCount: 1, MultiSampleCount: 4}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.b.NeedsResolve(); got != tt.want {
				t.Errorf("NeedsResolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTargetTracker(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	mip := RenderTargetBinding{LevelCount: 4, Texture: Texture{handle{index: 1, gen: 1}}}
	flat := RenderTargetBinding{LevelCount: 1, Texture: Texture{handle{index: 2, gen: 1}}}

	var tr targetTracker
	tr.set(log, []RenderTargetBinding{mip, flat})
	tr.set(log, nil)
	if len(tr.pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(tr.pending))
	}
	tr.resolve(&mip)
	tr.present(log)
	if buf.Len() != 0 {
		t.Errorf("resolved target warned: %s", buf.String())
	}

	tr.set(log, []RenderTargetBinding{mip})
	tr.set(log, nil)
	tr.present(log)
	if !strings.Contains(buf.String(), "without ResolveTarget") {
		t.Errorf("missing warning, got %q", buf.String())
	}
}

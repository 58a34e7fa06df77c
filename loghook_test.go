package g3d

import (
	"log/slog"
	"testing"
)

func TestHookLogFunctions(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var info, warn, errs []string
	HookLogFunctions(
		func(msg string) { info = append(info, msg) },
		func(msg string) { warn = append(warn, msg) },
		func(msg string) { errs = append(errs, msg) },
	)

	log := Logger()
	log.Debug("dropped")
	log.Info("g3d: driver selected", "driver", "software")
	log.Warn("g3d: stale or foreign handle", "op", "Clear")
	log.Error("g3d: no driver accepted window negotiation")
	log.With("device", 1).WithGroup("tex").Warn("upload", "w", 4, slog.Group("rect", "x", 1))

	if len(info) != 1 || info[0] != "g3d: driver selected driver=software" {
		t.Errorf("info = %q", info)
	}
	wantWarn := []string{
		"g3d: stale or foreign handle op=Clear",
		"upload device=1 tex.w=4 tex.rect.x=1",
	}
	if len(warn) != len(wantWarn) {
		t.Fatalf("warn = %q, want %q", warn, wantWarn)
	}
	for i := range wantWarn {
		if warn[i] != wantWarn[i] {
			t.Errorf("warn[%d] = %q, want %q", i, warn[i], wantWarn[i])
		}
	}
	if len(errs) != 1 || errs[0] != "g3d: no driver accepted window negotiation" {
		t.Errorf("error = %q", errs)
	}
}

func TestHookLogFunctionsNilSink(t *testing.T) {
	orig := Logger()
	origDefault := slog.Default()
	t.Cleanup(func() {
		SetLogger(orig)
		slog.SetDefault(origDefault)
	})

	var fallback []string
	slog.SetDefault(slog.New(&hookHandler{sinks: &hookSinks{
		info: func(msg string) { fallback = append(fallback, msg) },
		warn: func(msg string) { fallback = append(fallback, msg) },
		err:  func(msg string) { fallback = append(fallback, msg) },
	}}))

	var info []string
	HookLogFunctions(func(msg string) { info = append(info, msg) }, nil, nil)
	Logger().Info("kept")
	Logger().Warn("forwarded")

	if len(info) != 1 || info[0] != "kept" {
		t.Errorf("info = %q", info)
	}
	if len(fallback) != 1 || fallback[0] != "forwarded" {
		t.Errorf("fallback = %q", fallback)
	}
}

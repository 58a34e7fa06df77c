package g3d

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// LogFunc receives one fully rendered log line.
type LogFunc func(msg string)

// HookLogFunctions replaces the logger with one that renders each record to
// a single string ("message key=value ...") and hands it to the sink for its
// severity. Debug and info records go to info, warnings to warn, errors to
// errorFn. A nil sink forwards that severity to slog.Default.
func HookLogFunctions(info, warn, errorFn LogFunc) {
	SetLogger(slog.New(&hookHandler{sinks: &hookSinks{info: info, warn: warn, err: errorFn}}))
}

type hookSinks struct {
	info, warn, err LogFunc
}

func (s *hookSinks) pick(l slog.Level) LogFunc {
	switch {
	case l >= slog.LevelError:
		return s.err
	case l >= slog.LevelWarn:
		return s.warn
	default:
		return s.info
	}
}

type hookHandler struct {
	sinks  *hookSinks
	attrs  []slog.Attr
	groups []string
}

func (h *hookHandler) Enabled(ctx context.Context, l slog.Level) bool {
	if l < slog.LevelInfo {
		return false
	}
	if h.sinks.pick(l) == nil {
		return slog.Default().Enabled(ctx, l)
	}
	return true
}

func (h *hookHandler) Handle(ctx context.Context, r slog.Record) error {
	sink := h.sinks.pick(r.Level)
	if sink == nil {
		return slog.Default().Handler().Handle(ctx, r)
	}
	var b strings.Builder
	b.WriteString(r.Message)
	prefix := strings.Join(h.groups, ".")
	for _, a := range h.attrs {
		writeAttr(&b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, prefix, a)
		return true
	})
	sink(b.String())
	return nil
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(b, key, ga)
		}
		return
	}
	fmt.Fprintf(b, " %s=%v", key, a.Value.Any())
}

func (h *hookHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefix := strings.Join(h.groups, ".")
	nh := &hookHandler{sinks: h.sinks, groups: h.groups}
	nh.attrs = append(append([]slog.Attr(nil), h.attrs...), prefixed(prefix, attrs)...)
	return nh
}

func prefixed(prefix string, attrs []slog.Attr) []slog.Attr {
	if prefix == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + "." + a.Key, Value: a.Value}
	}
	return out
}

func (h *hookHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &hookHandler{
		sinks:  h.sinks,
		attrs:  h.attrs,
		groups: append(append([]string(nil), h.groups...), name),
	}
}

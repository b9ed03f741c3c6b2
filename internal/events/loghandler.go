package events

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// LogHandler forwards log records at or above Level to an Emitter as log
// events and then passes them on to the wrapped handler.
type LogHandler struct {
	next    slog.Handler
	emitter Emitter
	level   slog.Leveler
	attrs   string
	group   string
	self    bool
}

func NewLogHandler(next slog.Handler, e Emitter, level slog.Leveler) *LogHandler {
	return &LogHandler{next: next, emitter: e, level: level}
}

// Wrap returns a decorator usable with log.InitializeDefaultLogger.
func Wrap(e Emitter, level slog.Leveler) func(slog.Handler) slog.Handler {
	return func(h slog.Handler) slog.Handler {
		return NewLogHandler(h, e, level)
	}
}

func (h *LogHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= h.level.Level() || h.next.Enabled(ctx, l)
}

func (h *LogHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.level.Level() && !h.self {
		var sb strings.Builder
		sb.WriteString(r.Level.String())
		sb.WriteString(" ")
		sb.WriteString(r.Message)
		sb.WriteString(h.attrs)
		fromSelf := false
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == componentKey && a.Value.String() == "events" {
				fromSelf = true
				return false
			}
			sb.WriteString(" ")
			sb.WriteString(h.qualify(a.Key))
			sb.WriteString("=")
			sb.WriteString(a.Value.String())
			return true
		})
		if !fromSelf {
			h.emitter.Emit(Log(sb.String()))
		}
	}
	if !h.next.Enabled(ctx, r.Level) {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.next = h.next.WithAttrs(attrs)
	var sb strings.Builder
	sb.WriteString(h.attrs)
	for _, a := range attrs {
		if a.Key == componentKey && a.Value.String() == "events" {
			c.self = true
		}
		fmt.Fprintf(&sb, " %s=%s", h.qualify(a.Key), a.Value.String())
	}
	c.attrs = sb.String()
	return &c
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.next = h.next.WithGroup(name)
	c.group = h.qualify(name)
	return &c
}

func (h *LogHandler) qualify(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}

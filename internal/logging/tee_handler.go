package logging

import (
	"context"
	"log/slog"
)

// teeHandler writes each record to every child handler whose level admits it.
type teeHandler []slog.Handler

// TeeHandler duplicates records across handlers. Nil handlers are dropped and
// each remaining handler keeps its own level filter.
func TeeHandler(handlers ...slog.Handler) slog.Handler {
	var tee teeHandler
	for _, h := range handlers {
		if h != nil {
			tee = append(tee, h)
		}
	}
	if len(tee) == 0 {
		return NoopHandler{}
	}
	if len(tee) == 1 {
		return tee[0]
	}
	return tee
}

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	last := len(t) - 1
	for i, h := range t {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		// Handlers may retain the record; only the final one gets the original.
		r := record
		if i < last {
			r = record.Clone()
		}
		if err := h.Handle(ctx, r); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t teeHandler) each(fn func(slog.Handler) slog.Handler) teeHandler {
	next := make(teeHandler, len(t))
	for i, h := range t {
		next[i] = fn(h)
	}
	return next
}

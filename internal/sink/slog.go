package sink

import (
	"context"
	"log/slog"

	"github.com/tkingovr/logfilter/api"
	"github.com/tkingovr/logfilter/internal/diag"
)

// LoggerKey is the attribute that names the logger of a slog record.
const LoggerKey = "logger"

// SlogHandler forwards only the records its gate admits. The event's
// diagnostic context comes from the record's context (see package diag).
type SlogHandler struct {
	next   slog.Handler
	gate   *Gate
	logger string
}

// NewSlogHandler wraps next with gate.
func NewSlogHandler(next slog.Handler, gate *Gate) *SlogHandler {
	return &SlogHandler{next: next, gate: gate}
}

func (h *SlogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *SlogHandler) Handle(ctx context.Context, r slog.Record) error {
	ev := &api.Event{
		Logger:    h.logger,
		Level:     LevelFromSlog(r.Level),
		Message:   r.Message,
		Timestamp: r.Time,
		Context:   diag.Snapshot(ctx),
	}
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == LoggerKey {
			ev.Logger = a.Value.String()
			return false
		}
		return true
	})

	if !h.gate.Admit(ctx, ev) {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.next = h.next.WithAttrs(attrs)
	for _, a := range attrs {
		if a.Key == LoggerKey {
			c.logger = a.Value.String()
		}
	}
	return &c
}

func (h *SlogHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.next = h.next.WithGroup(name)
	return &c
}

// LevelFromSlog maps a slog level onto the event level scale. Levels below
// Debug become TRACE and levels above Error become FATAL.
func LevelFromSlog(l slog.Level) api.Level {
	switch {
	case l < slog.LevelDebug:
		return api.LevelTrace
	case l < slog.LevelInfo:
		return api.LevelDebug
	case l < slog.LevelWarn:
		return api.LevelInfo
	case l < slog.LevelError:
		return api.LevelWarn
	case l == slog.LevelError:
		return api.LevelError
	default:
		return api.LevelFatal
	}
}

package sink

import (
	"context"

	"go.uber.org/zap/zapcore"

	"github.com/tkingovr/logfilter/api"
)

// NDCField is the zap field key carried into the event as its nested
// diagnostic context. Every other string field becomes a mapped entry.
const NDCField = "ndc"

// gatedCore wraps a zapcore.Core and writes only the entries its gate admits.
type gatedCore struct {
	zapcore.Core
	gate *Gate
	ndc  string
	mdc  map[string]string
}

// NewZapCore wraps core with gate.
func NewZapCore(core zapcore.Core, gate *Gate) zapcore.Core {
	return &gatedCore{Core: core, gate: gate}
}

func (c *gatedCore) With(fields []zapcore.Field) zapcore.Core {
	clone := &gatedCore{
		Core: c.Core.With(fields),
		gate: c.gate,
		ndc:  c.ndc,
		mdc:  make(map[string]string, len(c.mdc)+len(fields)),
	}
	for k, v := range c.mdc {
		clone.mdc[k] = v
	}
	clone.ndc = collect(fields, clone.ndc, clone.mdc)
	return clone
}

func (c *gatedCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *gatedCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	mdc := make(map[string]string, len(c.mdc)+len(fields))
	for k, v := range c.mdc {
		mdc[k] = v
	}
	ndc := collect(fields, c.ndc, mdc)

	ev := &api.Event{
		Logger:    entry.LoggerName,
		Level:     LevelFromZap(entry.Level),
		Message:   entry.Message,
		Timestamp: entry.Time,
		Context:   api.Diag{Nested: ndc, Mapped: mdc},
	}
	if !c.gate.Admit(context.Background(), ev) {
		return nil
	}
	return c.Core.Write(entry, fields)
}

// collect copies string fields into mdc and returns the updated NDC.
func collect(fields []zapcore.Field, ndc string, mdc map[string]string) string {
	for _, f := range fields {
		if f.Type != zapcore.StringType {
			continue
		}
		if f.Key == NDCField {
			ndc = f.String
			continue
		}
		mdc[f.Key] = f.String
	}
	return ndc
}

// LevelFromZap maps a zap level onto the event level scale.
func LevelFromZap(l zapcore.Level) api.Level {
	switch {
	case l < zapcore.DebugLevel:
		return api.LevelTrace
	case l == zapcore.DebugLevel:
		return api.LevelDebug
	case l == zapcore.InfoLevel:
		return api.LevelInfo
	case l == zapcore.WarnLevel:
		return api.LevelWarn
	case l == zapcore.ErrorLevel:
		return api.LevelError
	default:
		return api.LevelFatal
	}
}

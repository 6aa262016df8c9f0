package sink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tkingovr/logfilter/api"
	"github.com/tkingovr/logfilter/internal/filter"
)

func newZapLogger(t *testing.T, chain *filter.Chain) (*zap.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(NewZapCore(core, NewGate("zap", chain))), logs
}

func TestZapCore_FiltersByLevel(t *testing.T) {
	logger, logs := newZapLogger(t, warnOnly(t))

	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept too")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
}

func TestZapCore_FieldsBecomeContext(t *testing.T) {
	chain, err := filter.NewChain(nil,
		filter.NewMDCMatchFilter(
			filter.WithMDCKeyToMatch("tenant"),
			filter.WithMDCValueToMatch("acme"),
		),
		filter.NewNDCMatchFilter(filter.WithNDCToMatch("batch"), filter.WithNDCMatchAccept(false)),
	)
	require.NoError(t, err)
	logger, logs := newZapLogger(t, chain)

	acme := logger.With(zap.String("tenant", "acme"))
	acme.Info("acme event")
	logger.Info("globex event", zap.String("tenant", "globex"))
	logger.Info("batch event", zap.String(NDCField, "batch"))
	logger.Info("plain event", zap.Int("tenant", 7))

	var msgs []string
	for _, e := range logs.All() {
		msgs = append(msgs, e.Message)
	}
	assert.Equal(t, []string{"acme event", "plain event"}, msgs)
}

func TestZapCore_LoggerName(t *testing.T) {
	chain, err := filter.NewChain(nil,
		filter.NewFunctionFilter("named", func(ev *api.Event) api.Result {
			if ev.Logger == "payments" {
				return api.ResultAccept
			}
			return api.ResultDeny
		}),
	)
	require.NoError(t, err)
	logger, logs := newZapLogger(t, chain)

	logger.Named("payments").Info("charged")
	logger.Named("http").Info("served")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "charged", logs.All()[0].Message)
}

func TestLevelFromZap(t *testing.T) {
	assert.Equal(t, api.LevelTrace, LevelFromZap(zapcore.Level(-2)))
	assert.Equal(t, api.LevelDebug, LevelFromZap(zapcore.DebugLevel))
	assert.Equal(t, api.LevelInfo, LevelFromZap(zapcore.InfoLevel))
	assert.Equal(t, api.LevelWarn, LevelFromZap(zapcore.WarnLevel))
	assert.Equal(t, api.LevelError, LevelFromZap(zapcore.ErrorLevel))
	assert.Equal(t, api.LevelFatal, LevelFromZap(zapcore.DPanicLevel))
	assert.Equal(t, api.LevelFatal, LevelFromZap(zapcore.FatalLevel))
}

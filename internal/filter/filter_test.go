package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkingovr/logfilter/api"
	"github.com/tkingovr/logfilter/internal/properties"
)

func event(level api.Level, msg string) *api.Event {
	return &api.Event{Logger: "test", Level: level, Message: msg}
}

func eventWithContext(level api.Level, msg, ndc string, mdc map[string]string) *api.Event {
	ev := event(level, msg)
	ev.Context = api.Diag{Nested: ndc, Mapped: mdc}
	return ev
}

var (
	debugEv = event(api.LevelDebug, "debug log message")
	infoEv  = event(api.LevelInfo, "info log message")
	emptyEv = event(api.LevelInfo, "")
	warnEv  = event(api.LevelWarn, "warn log message")
	errorEv = event(api.LevelError, "error log message")
	fatalEv = event(api.LevelFatal, "fatal log message")
)

func props(kv ...string) properties.Properties {
	p := properties.Properties{}
	for i := 0; i+1 < len(kv); i += 2 {
		p[kv[i]] = kv[i+1]
	}
	return p
}

func TestDenyAllFilter(t *testing.T) {
	f := NewDenyAllFilter()
	assert.Equal(t, api.ResultDeny, f.Decide(infoEv))
	assert.Equal(t, api.ResultDeny, Check(f, infoEv))

	built, err := Build("DenyAllFilter", props("Ignored", "yes"))
	require.NoError(t, err)
	assert.Equal(t, api.ResultDeny, built.Decide(fatalEv))
}

func TestLogLevelMatchFilter(t *testing.T) {
	t.Run("unset level is neutral", func(t *testing.T) {
		f := NewLogLevelMatchFilter()
		for _, ev := range []*api.Event{debugEv, infoEv, errorEv} {
			assert.Equal(t, api.ResultNeutral, f.Decide(ev))
		}
	})

	t.Run("accept level", func(t *testing.T) {
		f, err := NewLogLevelMatchFilterFromProperties(props("LogLevelToMatch", "INFO"))
		require.NoError(t, err)
		assert.Equal(t, api.ResultAccept, f.Decide(infoEv))
		assert.Equal(t, api.ResultNeutral, f.Decide(errorEv))
	})

	t.Run("deny level", func(t *testing.T) {
		f, err := NewLogLevelMatchFilterFromProperties(props(
			"LogLevelToMatch", "INFO",
			"AcceptOnMatch", "false",
		))
		require.NoError(t, err)
		assert.Equal(t, api.ResultDeny, f.Decide(infoEv))
		assert.Equal(t, api.ResultNeutral, f.Decide(errorEv))
	})

	t.Run("unparsable AcceptOnMatch keeps default", func(t *testing.T) {
		f, err := NewLogLevelMatchFilterFromProperties(props(
			"LogLevelToMatch", "WARN",
			"AcceptOnMatch", "maybe",
		))
		require.NoError(t, err)
		assert.Equal(t, api.ResultAccept, f.Decide(warnEv))
	})

	t.Run("unknown level name fails binding", func(t *testing.T) {
		_, err := NewLogLevelMatchFilterFromProperties(props("LogLevelToMatch", "LOUD"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LogLevelToMatch")
	})
}

func TestLogLevelRangeFilter(t *testing.T) {
	t.Run("accept in range", func(t *testing.T) {
		f, err := NewLogLevelRangeFilterFromProperties(props(
			"LogLevelMin", "WARN",
			"LogLevelMax", "ERROR",
		))
		require.NoError(t, err)
		assert.Equal(t, api.ResultDeny, f.Decide(infoEv))
		assert.Equal(t, api.ResultAccept, f.Decide(warnEv))
		assert.Equal(t, api.ResultAccept, f.Decide(errorEv))
		assert.Equal(t, api.ResultDeny, f.Decide(fatalEv))
	})

	t.Run("neutral in range", func(t *testing.T) {
		f, err := NewLogLevelRangeFilterFromProperties(props(
			"LogLevelMin", "WARN",
			"LogLevelMax", "ERROR",
			"AcceptOnMatch", "false",
		))
		require.NoError(t, err)
		assert.Equal(t, api.ResultDeny, f.Decide(infoEv))
		assert.Equal(t, api.ResultNeutral, f.Decide(warnEv))
		assert.Equal(t, api.ResultNeutral, f.Decide(errorEv))
		assert.Equal(t, api.ResultDeny, f.Decide(fatalEv))
	})

	t.Run("open bounds", func(t *testing.T) {
		minOnly := NewLogLevelRangeFilter(WithLevelMin(api.LevelWarn))
		assert.Equal(t, api.ResultDeny, minOnly.Decide(infoEv))
		assert.Equal(t, api.ResultAccept, minOnly.Decide(fatalEv))

		maxOnly := NewLogLevelRangeFilter(WithLevelMax(api.LevelInfo), WithLevelRangeAccept(false))
		assert.Equal(t, api.ResultNeutral, maxOnly.Decide(debugEv))
		assert.Equal(t, api.ResultDeny, maxOnly.Decide(warnEv))

		unbounded := NewLogLevelRangeFilter()
		assert.Equal(t, api.ResultAccept, unbounded.Decide(debugEv))
	})

	t.Run("unknown bound fails binding", func(t *testing.T) {
		_, err := NewLogLevelRangeFilterFromProperties(props("LogLevelMax", "SEVERE"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LogLevelMax")
	})
}

func TestStringMatchFilter(t *testing.T) {
	t.Run("empty string to match is neutral", func(t *testing.T) {
		f := NewStringMatchFilter()
		assert.Equal(t, api.ResultNeutral, f.Decide(infoEv))
		assert.Equal(t, api.ResultNeutral, f.Decide(errorEv))
	})

	t.Run("not found is neutral", func(t *testing.T) {
		f := NewStringMatchFilterFromProperties(props("StringToMatch", "nonexistent"))
		assert.Equal(t, api.ResultNeutral, f.Decide(infoEv))
		assert.Equal(t, api.ResultNeutral, f.Decide(errorEv))
	})

	t.Run("empty event is neutral", func(t *testing.T) {
		f := NewStringMatchFilterFromProperties(props("StringToMatch", "message"))
		assert.Equal(t, api.ResultNeutral, f.Decide(emptyEv))
	})

	t.Run("accept on match", func(t *testing.T) {
		f := NewStringMatchFilterFromProperties(props("StringToMatch", "warn"))
		assert.Equal(t, api.ResultAccept, f.Decide(warnEv))
		assert.Equal(t, api.ResultNeutral, f.Decide(infoEv))
	})

	t.Run("deny on match", func(t *testing.T) {
		f := NewStringMatchFilterFromProperties(props(
			"StringToMatch", "message",
			"AcceptOnMatch", "false",
		))
		assert.Equal(t, api.ResultNeutral, f.Decide(emptyEv))
		assert.Equal(t, api.ResultDeny, f.Decide(infoEv))
		assert.Equal(t, api.ResultDeny, f.Decide(warnEv))
	})
}

func TestFunctionFilter(t *testing.T) {
	f := NewFunctionFilter("info_or_above", func(ev *api.Event) api.Result {
		if ev.Level >= api.LevelInfo {
			return api.ResultAccept
		}
		return api.ResultDeny
	})
	assert.Equal(t, "info_or_above", f.Name())
	assert.Equal(t, api.ResultAccept, f.Decide(infoEv))
	assert.Equal(t, api.ResultDeny, f.Decide(debugEv))

	assert.Equal(t, api.ResultNeutral, NewFunctionFilter("", nil).Decide(infoEv))
	assert.Equal(t, "function", NewFunctionFilter("", nil).Name())
}

func TestNDCMatchFilter(t *testing.T) {
	noNDC := eventWithContext(api.LevelError, "NDC error log message", "", nil)
	withNDC := eventWithContext(api.LevelError, "NDC error log message", "ndc-match", nil)

	t.Run("NeutralOnEmpty is true", func(t *testing.T) {
		assert.Equal(t, api.ResultNeutral, NewNDCMatchFilter().Decide(noNDC),
			"string to match is empty")

		f := NewNDCMatchFilterFromProperties(props("NDCToMatch", "ndc-match"))
		assert.Equal(t, api.ResultNeutral, f.Decide(noNDC), "ndc string empty")
		assert.Equal(t, api.ResultAccept, f.Decide(withNDC), "ndc string match")

		f = NewNDCMatchFilterFromProperties(props("NDCToMatch", "no-match"))
		assert.Equal(t, api.ResultDeny, f.Decide(withNDC), "ndc string mismatch")

		f = NewNDCMatchFilterFromProperties(props(
			"NDCToMatch", "ndc-match",
			"AcceptOnMatch", "False",
		))
		assert.Equal(t, api.ResultDeny, f.Decide(withNDC), "match, AcceptOnMatch false")

		f = NewNDCMatchFilterFromProperties(props(
			"NDCToMatch", "no-match",
			"AcceptOnMatch", "False",
		))
		assert.Equal(t, api.ResultAccept, f.Decide(withNDC), "mismatch, AcceptOnMatch false")
	})

	t.Run("NeutralOnEmpty is false", func(t *testing.T) {
		f := NewNDCMatchFilterFromProperties(props("NeutralOnEmpty", "False"))
		assert.Equal(t, api.ResultAccept, f.Decide(noNDC), "both sides empty")

		f = NewNDCMatchFilterFromProperties(props(
			"NeutralOnEmpty", "False",
			"NDCToMatch", "ndc-match",
		))
		assert.Equal(t, api.ResultDeny, f.Decide(noNDC), "ndc empty, match set")

		f = NewNDCMatchFilterFromProperties(props("NeutralOnEmpty", "False"))
		assert.Equal(t, api.ResultDeny, f.Decide(withNDC), "ndc set, match empty")
	})

	t.Run("event without diagnostics", func(t *testing.T) {
		f := NewNDCMatchFilter(WithNDCToMatch("x"), WithNDCNeutralOnEmpty(false))
		assert.Equal(t, api.ResultDeny, f.Decide(errorEv))
	})
}

func TestMDCMatchFilter(t *testing.T) {
	noMDC := eventWithContext(api.LevelError, "MDC error log message", "", nil)
	match := eventWithContext(api.LevelError, "MDC error log message", "",
		map[string]string{"KeyToMatch": "mdc-match"})
	mismatch := eventWithContext(api.LevelError, "MDC error log message", "",
		map[string]string{"KeyToMatch": "mdc-no-match"})

	t.Run("NeutralOnEmpty is true", func(t *testing.T) {
		f := NewMDCMatchFilterFromProperties(props("MDCValueToMatch", "mdc-match"))
		assert.Equal(t, api.ResultNeutral, f.Decide(match), "key to match empty")

		assert.Equal(t, api.ResultNeutral, NewMDCMatchFilter().Decide(match), "value to match empty")

		f = NewMDCMatchFilterFromProperties(props(
			"MDCValueToMatch", "mdc-match",
			"MDCKeyToMatch", "KeyToMatch",
		))
		assert.Equal(t, api.ResultAccept, f.Decide(match))
		assert.Equal(t, api.ResultDeny, f.Decide(mismatch))
		assert.Equal(t, api.ResultNeutral, f.Decide(noMDC), "absent value")

		f = NewMDCMatchFilterFromProperties(props(
			"AcceptOnMatch", "False",
			"MDCValueToMatch", "mdc-match",
			"MDCKeyToMatch", "KeyToMatch",
		))
		assert.Equal(t, api.ResultDeny, f.Decide(match))
		assert.Equal(t, api.ResultAccept, f.Decide(mismatch))
	})

	t.Run("NeutralOnEmpty is false", func(t *testing.T) {
		f := NewMDCMatchFilterFromProperties(props("NeutralOnEmpty", "False"))
		assert.Equal(t, api.ResultAccept, f.Decide(noMDC), "both sides empty")

		f = NewMDCMatchFilterFromProperties(props(
			"NeutralOnEmpty", "False",
			"MDCValueToMatch", "mdc-match",
		))
		assert.Equal(t, api.ResultDeny, f.Decide(noMDC))

		f = NewMDCMatchFilterFromProperties(props(
			"NeutralOnEmpty", "False",
			"MDCKeyToMatch", "KeyToMatch",
			"MDCValueToMatch", "mdc-match",
		))
		assert.Equal(t, api.ResultDeny, f.Decide(noMDC), "configured key, absent value")
	})
}

func TestNoOpConfigurationsAreNeutral(t *testing.T) {
	filters := []Filter{
		NewLogLevelMatchFilter(),
		NewStringMatchFilter(),
		NewNDCMatchFilter(),
		NewMDCMatchFilter(),
		NewFunctionFilter("nil", nil),
	}
	events := []*api.Event{
		debugEv, infoEv, emptyEv, warnEv, errorEv, fatalEv,
		eventWithContext(api.LevelInfo, "ctx", "ndc", map[string]string{"k": "v"}),
	}
	for _, f := range filters {
		for _, ev := range events {
			assert.Equal(t, api.ResultNeutral, f.Decide(ev), "%s on %s", f.Name(), ev.Level)
		}
	}
}

func TestDecideIsIdempotent(t *testing.T) {
	ev := eventWithContext(api.LevelWarn, "warn log message", "ndc-match",
		map[string]string{"KeyToMatch": "mdc-match"})
	filters := []Filter{
		NewDenyAllFilter(),
		NewLogLevelMatchFilter(WithLevelToMatch(api.LevelWarn)),
		NewLogLevelRangeFilter(WithLevelMin(api.LevelInfo)),
		NewStringMatchFilter(WithStringToMatch("warn")),
		NewNDCMatchFilter(WithNDCToMatch("ndc-match")),
		NewMDCMatchFilter(WithMDCKeyToMatch("KeyToMatch"), WithMDCValueToMatch("other")),
		NewSecretMatchFilter(),
	}
	for _, f := range filters {
		first := f.Decide(ev)
		assert.Equal(t, first, f.Decide(ev), f.Name())
	}
	assert.Equal(t, "warn log message", ev.Message)
	assert.Equal(t, "ndc-match", ev.NDC())
}

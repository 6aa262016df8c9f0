package filter

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkingovr/logfilter/api"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// countingFilter records how often it was consulted.
func countingFilter(name string, r api.Result, calls *int) *FunctionFilter {
	return NewFunctionFilter(name, func(*api.Event) api.Result {
		*calls++
		return r
	})
}

func TestCheck_EmptyChainAccepts(t *testing.T) {
	assert.Equal(t, api.ResultAccept, Check(nil, infoEv))

	c, err := NewChain(nil)
	require.NoError(t, err)
	assert.Equal(t, api.ResultAccept, c.Decide(infoEv))
	assert.Equal(t, 0, c.Len())
}

func TestCheck_AllNeutralAccepts(t *testing.T) {
	c, err := NewChain(newTestLogger(),
		NewLogLevelMatchFilter(),
		NewStringMatchFilter(),
	)
	require.NoError(t, err)

	d := c.Evaluate(infoEv)
	assert.Equal(t, api.ResultAccept, d.Result)
	assert.Equal(t, DefaultDecider, d.DecidedBy)
	assert.Equal(t, 2, d.Consulted)
}

func TestCheck_ShortCircuit(t *testing.T) {
	var neutralCalls, lastCalls int
	c, err := NewChain(newTestLogger(),
		countingFilter("neutral", api.ResultNeutral, &neutralCalls),
		NewDenyAllFilter(),
		countingFilter("never", api.ResultAccept, &lastCalls),
	)
	require.NoError(t, err)

	assert.Equal(t, api.ResultDeny, c.Decide(infoEv))
	assert.Equal(t, api.ResultDeny, Check(c.Head(), infoEv))
	assert.Equal(t, 2, neutralCalls)
	assert.Equal(t, 0, lastCalls, "filters after a verdict must not be consulted")

	d := c.Evaluate(infoEv)
	assert.Equal(t, "deny_all", d.DecidedBy)
	assert.Equal(t, 2, d.Consulted)
}

func TestCheck_ShortCircuitBeforeLevelMatch(t *testing.T) {
	c, err := NewChain(nil,
		NewStringMatchFilter(WithStringToMatch("absent")),
		NewDenyAllFilter(),
		NewLogLevelMatchFilter(WithLevelToMatch(api.LevelInfo)),
	)
	require.NoError(t, err)
	assert.Equal(t, api.ResultDeny, c.Decide(infoEv))
}

func TestChain_AcceptBeforeDenyAll(t *testing.T) {
	c, err := NewChain(nil,
		NewLogLevelMatchFilter(WithLevelToMatch(api.LevelError)),
		NewDenyAllFilter(),
	)
	require.NoError(t, err)
	assert.Equal(t, api.ResultAccept, c.Decide(errorEv))
	assert.Equal(t, api.ResultDeny, c.Decide(infoEv))
}

func TestAppend_PreservesOrder(t *testing.T) {
	a := NewFunctionFilter("a", nil)
	b := NewFunctionFilter("b", nil)
	d := NewDenyAllFilter()

	require.NoError(t, Append(a, b))
	require.NoError(t, Append(a, d))

	assert.Same(t, b, a.Next())
	assert.Same(t, d, b.Next())
	assert.Nil(t, d.Next())

	c, err := NewChain(nil, a)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "deny_all"}, c.Filters())
	assert.Equal(t, 3, c.Len())
}

func TestAppend_RejectsNilAndCycles(t *testing.T) {
	a := NewFunctionFilter("a", nil)
	b := NewFunctionFilter("b", nil)
	require.NoError(t, Append(a, b))

	assert.True(t, errors.Is(Append(a, nil), ErrNilFilter))
	assert.True(t, errors.Is(Append(a, a), ErrCycle), "self append")
	assert.True(t, errors.Is(Append(a, b), ErrCycle), "reachable node")
	assert.True(t, errors.Is(Append(b, a), ErrCycle), "head reachable from appended chain")
	assert.Nil(t, b.Next(), "rejected append must leave the chain unchanged")

	c, err := NewChain(nil)
	require.NoError(t, err)
	assert.True(t, errors.Is(c.Append(nil), ErrNilFilter))

	_, err = NewChain(nil, a, nil)
	assert.True(t, errors.Is(err, ErrNilFilter))
}

func TestChain_Explain(t *testing.T) {
	c, err := NewChain(nil,
		NewStringMatchFilter(WithStringToMatch("absent")),
		NewLogLevelRangeFilter(WithLevelMin(api.LevelWarn)),
		NewDenyAllFilter(),
	)
	require.NoError(t, err)

	steps := c.Explain(infoEv)
	assert.Equal(t, []api.Step{
		{Filter: "string_match", Result: api.ResultNeutral},
		{Filter: "log_level_range", Result: api.ResultDeny},
	}, steps)

	steps = c.Explain(errorEv)
	require.Len(t, steps, 2)
	assert.Equal(t, api.ResultAccept, steps[1].Result)
}

func TestChain_DebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c, err := NewChain(logger, NewDenyAllFilter())
	require.NoError(t, err)

	c.Decide(infoEv)
	assert.Contains(t, buf.String(), "filter=deny_all")
	assert.Contains(t, buf.String(), "result=deny")
}

func TestChain_ConcurrentDecide(t *testing.T) {
	c, err := NewChain(nil,
		NewLogLevelRangeFilter(WithLevelMin(api.LevelWarn), WithLevelRangeAccept(false)),
		NewStringMatchFilter(WithStringToMatch("error"), WithStringMatchAccept(true)),
		NewDenyAllFilter(),
	)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, api.ResultAccept, c.Decide(errorEv))
				assert.Equal(t, api.ResultDeny, c.Decide(warnEv))
				assert.Equal(t, api.ResultDeny, c.Decide(infoEv))
			}
		}()
	}
	wg.Wait()
}

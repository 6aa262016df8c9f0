package filter

import (
	"fmt"

	"github.com/tkingovr/logfilter/api"
	"github.com/tkingovr/logfilter/internal/properties"
)

// LogLevelRangeFilter denies events outside [min, max]. An unset bound does
// not constrain its side. In-range events are accepted when AcceptOnMatch is
// set and left to later filters otherwise; they are never denied.
type LogLevelRangeFilter struct {
	link
	levelMin      api.Level
	levelMax      api.Level
	acceptOnMatch bool
}

// LevelRangeOption configures a LogLevelRangeFilter.
type LevelRangeOption func(*LogLevelRangeFilter)

// WithLevelMin sets the lowest admitted level.
func WithLevelMin(l api.Level) LevelRangeOption {
	return func(f *LogLevelRangeFilter) { f.levelMin = l }
}

// WithLevelMax sets the highest admitted level.
func WithLevelMax(l api.Level) LevelRangeOption {
	return func(f *LogLevelRangeFilter) { f.levelMax = l }
}

// WithLevelRangeAccept sets whether in-range events are accepted outright.
func WithLevelRangeAccept(accept bool) LevelRangeOption {
	return func(f *LogLevelRangeFilter) { f.acceptOnMatch = accept }
}

func NewLogLevelRangeFilter(opts ...LevelRangeOption) *LogLevelRangeFilter {
	f := &LogLevelRangeFilter{
		levelMin:      api.LevelNotSet,
		levelMax:      api.LevelNotSet,
		acceptOnMatch: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewLogLevelRangeFilterFromProperties binds AcceptOnMatch, LogLevelMin and LogLevelMax.
func NewLogLevelRangeFilterFromProperties(props properties.Properties) (*LogLevelRangeFilter, error) {
	f := NewLogLevelRangeFilter()
	props.GetBool(&f.acceptOnMatch, "AcceptOnMatch")

	var err error
	if f.levelMin, err = api.ParseLevel(props.Get("LogLevelMin")); err != nil {
		return nil, fmt.Errorf("LogLevelMin: %w", err)
	}
	if f.levelMax, err = api.ParseLevel(props.Get("LogLevelMax")); err != nil {
		return nil, fmt.Errorf("LogLevelMax: %w", err)
	}
	return f, nil
}

func (f *LogLevelRangeFilter) Name() string { return "log_level_range" }

func (f *LogLevelRangeFilter) Decide(ev *api.Event) api.Result {
	if f.levelMin.IsSet() && ev.Level < f.levelMin {
		return api.ResultDeny
	}
	if f.levelMax.IsSet() && ev.Level > f.levelMax {
		return api.ResultDeny
	}
	if f.acceptOnMatch {
		return api.ResultAccept
	}
	return api.ResultNeutral
}

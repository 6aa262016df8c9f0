package filter

import (
	"fmt"

	"github.com/tkingovr/logfilter/api"
	"github.com/tkingovr/logfilter/internal/properties"
)

// LogLevelMatchFilter matches events whose level equals a configured level.
// A match accepts or denies according to AcceptOnMatch; anything else is neutral.
type LogLevelMatchFilter struct {
	link
	levelToMatch  api.Level
	acceptOnMatch bool
}

// LevelMatchOption configures a LogLevelMatchFilter.
type LevelMatchOption func(*LogLevelMatchFilter)

// WithLevelToMatch sets the level compared against each event.
func WithLevelToMatch(l api.Level) LevelMatchOption {
	return func(f *LogLevelMatchFilter) { f.levelToMatch = l }
}

// WithLevelMatchAccept sets the match polarity.
func WithLevelMatchAccept(accept bool) LevelMatchOption {
	return func(f *LogLevelMatchFilter) { f.acceptOnMatch = accept }
}

func NewLogLevelMatchFilter(opts ...LevelMatchOption) *LogLevelMatchFilter {
	f := &LogLevelMatchFilter{
		levelToMatch:  api.LevelNotSet,
		acceptOnMatch: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewLogLevelMatchFilterFromProperties binds AcceptOnMatch and LogLevelToMatch.
func NewLogLevelMatchFilterFromProperties(props properties.Properties) (*LogLevelMatchFilter, error) {
	f := NewLogLevelMatchFilter()
	props.GetBool(&f.acceptOnMatch, "AcceptOnMatch")

	l, err := api.ParseLevel(props.Get("LogLevelToMatch"))
	if err != nil {
		return nil, fmt.Errorf("LogLevelToMatch: %w", err)
	}
	f.levelToMatch = l
	return f, nil
}

func (f *LogLevelMatchFilter) Name() string { return "log_level_match" }

func (f *LogLevelMatchFilter) Decide(ev *api.Event) api.Result {
	if !f.levelToMatch.IsSet() {
		return api.ResultNeutral
	}
	if ev.Level == f.levelToMatch {
		return onMatch(f.acceptOnMatch)
	}
	return api.ResultNeutral
}

package filter

import (
	"strings"

	"github.com/tkingovr/logfilter/api"
	"github.com/tkingovr/logfilter/internal/properties"
)

// StringMatchFilter matches events whose message contains a substring.
// An empty pattern or an empty message never matches.
type StringMatchFilter struct {
	link
	stringToMatch string
	acceptOnMatch bool
}

// StringMatchOption configures a StringMatchFilter.
type StringMatchOption func(*StringMatchFilter)

// WithStringToMatch sets the substring searched for in each message.
func WithStringToMatch(s string) StringMatchOption {
	return func(f *StringMatchFilter) { f.stringToMatch = s }
}

// WithStringMatchAccept sets the match polarity.
func WithStringMatchAccept(accept bool) StringMatchOption {
	return func(f *StringMatchFilter) { f.acceptOnMatch = accept }
}

func NewStringMatchFilter(opts ...StringMatchOption) *StringMatchFilter {
	f := &StringMatchFilter{acceptOnMatch: true}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewStringMatchFilterFromProperties binds AcceptOnMatch and StringToMatch.
func NewStringMatchFilterFromProperties(props properties.Properties) *StringMatchFilter {
	f := NewStringMatchFilter()
	props.GetBool(&f.acceptOnMatch, "AcceptOnMatch")
	f.stringToMatch = props.Get("StringToMatch")
	return f
}

func (f *StringMatchFilter) Name() string { return "string_match" }

func (f *StringMatchFilter) Decide(ev *api.Event) api.Result {
	if f.stringToMatch == "" || ev.Message == "" {
		return api.ResultNeutral
	}
	if !strings.Contains(ev.Message, f.stringToMatch) {
		return api.ResultNeutral
	}
	return onMatch(f.acceptOnMatch)
}

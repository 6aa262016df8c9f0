package filter

import (
	"github.com/tkingovr/logfilter/api"
	"github.com/tkingovr/logfilter/internal/properties"
)

// NDCMatchFilter compares the event's nested diagnostic context with a
// configured value. Unlike the level and string filters, a mismatch is not
// neutral: it yields the opposite of the match result.
type NDCMatchFilter struct {
	link
	ndcToMatch     string
	acceptOnMatch  bool
	neutralOnEmpty bool
}

// NDCMatchOption configures an NDCMatchFilter.
type NDCMatchOption func(*NDCMatchFilter)

// WithNDCToMatch sets the nested context value to compare against.
func WithNDCToMatch(s string) NDCMatchOption {
	return func(f *NDCMatchFilter) { f.ndcToMatch = s }
}

// WithNDCMatchAccept sets the match polarity.
func WithNDCMatchAccept(accept bool) NDCMatchOption {
	return func(f *NDCMatchFilter) { f.acceptOnMatch = accept }
}

// WithNDCNeutralOnEmpty sets whether an empty pattern or context is neutral.
func WithNDCNeutralOnEmpty(neutral bool) NDCMatchOption {
	return func(f *NDCMatchFilter) { f.neutralOnEmpty = neutral }
}

func NewNDCMatchFilter(opts ...NDCMatchOption) *NDCMatchFilter {
	f := &NDCMatchFilter{
		acceptOnMatch:  true,
		neutralOnEmpty: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewNDCMatchFilterFromProperties binds AcceptOnMatch, NeutralOnEmpty and NDCToMatch.
func NewNDCMatchFilterFromProperties(props properties.Properties) *NDCMatchFilter {
	f := NewNDCMatchFilter()
	props.GetBool(&f.acceptOnMatch, "AcceptOnMatch")
	props.GetBool(&f.neutralOnEmpty, "NeutralOnEmpty")
	f.ndcToMatch = props.Get("NDCToMatch")
	return f
}

func (f *NDCMatchFilter) Name() string { return "ndc_match" }

func (f *NDCMatchFilter) Decide(ev *api.Event) api.Result {
	ndc := ev.NDC()
	if f.neutralOnEmpty && (f.ndcToMatch == "" || ndc == "") {
		return api.ResultNeutral
	}
	if ndc == f.ndcToMatch {
		return onMatch(f.acceptOnMatch)
	}
	return onMismatch(f.acceptOnMatch)
}

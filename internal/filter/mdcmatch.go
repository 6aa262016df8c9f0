package filter

import (
	"github.com/tkingovr/logfilter/api"
	"github.com/tkingovr/logfilter/internal/properties"
)

// MDCMatchFilter compares one mapped diagnostic context entry with a
// configured value. As with NDCMatchFilter, a mismatch yields the opposite
// of the match result.
type MDCMatchFilter struct {
	link
	keyToMatch     string
	valueToMatch   string
	acceptOnMatch  bool
	neutralOnEmpty bool
}

// MDCMatchOption configures an MDCMatchFilter.
type MDCMatchOption func(*MDCMatchFilter)

// WithMDCKeyToMatch sets the mapped context key to look up.
func WithMDCKeyToMatch(key string) MDCMatchOption {
	return func(f *MDCMatchFilter) { f.keyToMatch = key }
}

// WithMDCValueToMatch sets the value the looked-up entry is compared with.
func WithMDCValueToMatch(value string) MDCMatchOption {
	return func(f *MDCMatchFilter) { f.valueToMatch = value }
}

// WithMDCMatchAccept sets the match polarity.
func WithMDCMatchAccept(accept bool) MDCMatchOption {
	return func(f *MDCMatchFilter) { f.acceptOnMatch = accept }
}

// WithMDCNeutralOnEmpty sets whether empty configuration or context is neutral.
func WithMDCNeutralOnEmpty(neutral bool) MDCMatchOption {
	return func(f *MDCMatchFilter) { f.neutralOnEmpty = neutral }
}

func NewMDCMatchFilter(opts ...MDCMatchOption) *MDCMatchFilter {
	f := &MDCMatchFilter{
		acceptOnMatch:  true,
		neutralOnEmpty: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewMDCMatchFilterFromProperties binds AcceptOnMatch, NeutralOnEmpty,
// MDCKeyToMatch and MDCValueToMatch.
func NewMDCMatchFilterFromProperties(props properties.Properties) *MDCMatchFilter {
	f := NewMDCMatchFilter()
	props.GetBool(&f.acceptOnMatch, "AcceptOnMatch")
	props.GetBool(&f.neutralOnEmpty, "NeutralOnEmpty")
	f.valueToMatch = props.Get("MDCValueToMatch")
	f.keyToMatch = props.Get("MDCKeyToMatch")
	return f
}

func (f *MDCMatchFilter) Name() string { return "mdc_match" }

func (f *MDCMatchFilter) Decide(ev *api.Event) api.Result {
	if f.neutralOnEmpty && (f.keyToMatch == "" || f.valueToMatch == "") {
		return api.ResultNeutral
	}

	value := ev.MDC(f.keyToMatch)
	if f.neutralOnEmpty && value == "" {
		return api.ResultNeutral
	}

	if value == f.valueToMatch {
		return onMatch(f.acceptOnMatch)
	}
	return onMismatch(f.acceptOnMatch)
}

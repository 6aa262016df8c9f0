package filter

import "github.com/tkingovr/logfilter/api"

// Func is a caller-supplied decision. It must not modify the event.
type Func func(ev *api.Event) api.Result

// FunctionFilter delegates the decision to an arbitrary function.
type FunctionFilter struct {
	link
	name string
	fn   Func
}

// NewFunctionFilter wraps fn as a filter. A nil fn is always neutral.
func NewFunctionFilter(name string, fn Func) *FunctionFilter {
	if name == "" {
		name = "function"
	}
	return &FunctionFilter{name: name, fn: fn}
}

func (f *FunctionFilter) Name() string { return f.name }

func (f *FunctionFilter) Decide(ev *api.Event) api.Result {
	if f.fn == nil {
		return api.ResultNeutral
	}
	return f.fn(ev)
}

// Package filter implements the event filters and the chain evaluator that
// folds their results into a final accept/deny verdict.
package filter

import (
	"errors"

	"github.com/tkingovr/logfilter/api"
)

var (
	// ErrNilFilter is returned when a nil filter is appended to a chain.
	ErrNilFilter = errors.New("filter: cannot append nil filter")

	// ErrCycle is returned when appending a filter would link a chain back onto itself.
	ErrCycle = errors.New("filter: append would create a cycle")
)

// Filter is a single decision unit in a filter chain.
//
// Decide must be a pure function of the event and the filter's own
// configuration: it may not mutate either, and it must always return one of
// the three results.
type Filter interface {
	// Name returns the filter name for logging.
	Name() string

	// Decide returns the filter's opinion of the event.
	Decide(ev *api.Event) api.Result

	// Next returns the following filter in the chain, or nil at the tail.
	Next() Filter

	setNext(f Filter)
}

// link is embedded by every filter and owns the forward pointer to its successor.
type link struct {
	next Filter
}

func (l *link) Next() Filter { return l.next }

func (l *link) setNext(f Filter) { l.next = f }

// Append links f after the last filter reachable from head.
// It refuses nil filters and any append that would make the chain cyclic;
// in both cases the chain is left unchanged.
func Append(head, f Filter) error {
	if head == nil || f == nil {
		return ErrNilFilter
	}

	seen := make(map[Filter]struct{})
	tail := head
	for n := head; n != nil; n = n.Next() {
		seen[n] = struct{}{}
		tail = n
	}
	for n := f; n != nil; n = n.Next() {
		if _, ok := seen[n]; ok {
			return ErrCycle
		}
	}

	tail.setNext(f)
	return nil
}

// Check walks the chain starting at head and returns the first non-neutral
// result. A nil head, or a chain in which every filter is neutral, accepts.
func Check(head Filter, ev *api.Event) api.Result {
	for f := head; f != nil; f = f.Next() {
		if r := f.Decide(ev); r != api.ResultNeutral {
			return r
		}
	}
	return api.ResultAccept
}

// onMatch returns the result for a predicate match under the given polarity.
func onMatch(acceptOnMatch bool) api.Result {
	if acceptOnMatch {
		return api.ResultAccept
	}
	return api.ResultDeny
}

// onMismatch returns the opposite of onMatch.
func onMismatch(acceptOnMatch bool) api.Result {
	if acceptOnMatch {
		return api.ResultDeny
	}
	return api.ResultAccept
}

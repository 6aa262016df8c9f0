package filter

import (
	"io"
	"log/slog"

	"github.com/tkingovr/logfilter/api"
)

// DefaultDecider names the implicit accept returned when no filter expresses an opinion.
const DefaultDecider = "_default"

// Decision is the outcome of evaluating a chain against one event.
type Decision struct {
	Result    api.Result
	DecidedBy string
	Consulted int
}

// Chain is an ordered list of filters evaluated front to back.
//
// A Chain must be fully built before it is shared: Decide and friends are
// safe for concurrent use, Append is not.
type Chain struct {
	head   Filter
	logger *slog.Logger
}

// NewChain creates a new filter chain. A nil logger discards output.
func NewChain(logger *slog.Logger, filters ...Filter) (*Chain, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &Chain{logger: logger}
	for _, f := range filters {
		if err := c.Append(f); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Append adds a filter to the end of the chain.
func (c *Chain) Append(f Filter) error {
	if f == nil {
		return ErrNilFilter
	}
	if c.head == nil {
		c.head = f
		return nil
	}
	return Append(c.head, f)
}

// Head returns the first filter, or nil for an empty chain.
func (c *Chain) Head() Filter { return c.head }

// Decide returns the final verdict for ev: ResultAccept or ResultDeny.
func (c *Chain) Decide(ev *api.Event) api.Result {
	return c.Evaluate(ev).Result
}

// Evaluate runs the chain and reports which filter settled the verdict.
func (c *Chain) Evaluate(ev *api.Event) Decision {
	d := Decision{Result: api.ResultAccept, DecidedBy: DefaultDecider}
	for f := c.head; f != nil; f = f.Next() {
		r := f.Decide(ev)
		d.Consulted++
		c.logger.Debug("filter executed",
			"filter", f.Name(),
			"logger", ev.Logger,
			"level", ev.Level,
			"result", r,
		)
		if r != api.ResultNeutral {
			d.Result = r
			d.DecidedBy = f.Name()
			return d
		}
	}
	return d
}

// Explain runs the chain and returns the result of every filter consulted.
func (c *Chain) Explain(ev *api.Event) []api.Step {
	var steps []api.Step
	for f := c.head; f != nil; f = f.Next() {
		r := f.Decide(ev)
		steps = append(steps, api.Step{Filter: f.Name(), Result: r})
		if r != api.ResultNeutral {
			break
		}
	}
	return steps
}

// Filters returns the names of the filters in evaluation order.
func (c *Chain) Filters() []string {
	var names []string
	for f := c.head; f != nil; f = f.Next() {
		names = append(names, f.Name())
	}
	return names
}

// Len returns the number of filters in the chain.
func (c *Chain) Len() int {
	n := 0
	for f := c.head; f != nil; f = f.Next() {
		n++
	}
	return n
}

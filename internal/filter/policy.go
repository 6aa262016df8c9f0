package filter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tkingovr/logfilter/api"
	"github.com/tkingovr/logfilter/internal/policy"
	"github.com/tkingovr/logfilter/internal/properties"
)

// PolicyFilter evaluates the event against a policy engine.
type PolicyFilter struct {
	link
	engine  policy.Engine
	mdcKeys []string
	onError api.Result
}

// PolicyOption configures a PolicyFilter.
type PolicyOption func(*PolicyFilter)

// WithPolicyMDCKeys limits the mapped context entries passed to the policy.
func WithPolicyMDCKeys(keys ...string) PolicyOption {
	return func(f *PolicyFilter) { f.mdcKeys = keys }
}

// WithPolicyOnError sets the result returned when the engine fails.
func WithPolicyOnError(r api.Result) PolicyOption {
	return func(f *PolicyFilter) { f.onError = r }
}

func NewPolicyFilter(engine policy.Engine, opts ...PolicyOption) *PolicyFilter {
	f := &PolicyFilter{
		engine:  engine,
		onError: api.ResultNeutral,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewPolicyFilterFromProperties binds PolicyFile or Policy (inline Rego),
// OnError and MDCKeys (comma separated).
func NewPolicyFilterFromProperties(props properties.Properties) (*PolicyFilter, error) {
	var (
		engine *policy.OPAEngine
		err    error
	)
	switch {
	case props.Get("PolicyFile") != "":
		engine, err = policy.NewOPAEngine(props.Get("PolicyFile"))
	case props.Get("Policy") != "":
		engine, err = policy.NewOPAEngineFromSource(props.Get("Policy"))
	default:
		return nil, errors.New("PolicyFilter requires PolicyFile or Policy")
	}
	if err != nil {
		return nil, err
	}

	var opts []PolicyOption
	if raw := props.Get("OnError"); raw != "" {
		r, err := api.ParseResult(raw)
		if err != nil {
			return nil, fmt.Errorf("OnError: %w", err)
		}
		opts = append(opts, WithPolicyOnError(r))
	}
	if raw := props.Get("MDCKeys"); raw != "" {
		opts = append(opts, WithPolicyMDCKeys(splitList(raw)...))
	}
	return NewPolicyFilter(engine, opts...), nil
}

func (f *PolicyFilter) Name() string { return "policy" }

func (f *PolicyFilter) Decide(ev *api.Event) api.Result {
	if f.engine == nil {
		return api.ResultNeutral
	}
	res, err := f.engine.Evaluate(context.Background(), policy.InputFromEvent(ev, f.mdcKeys))
	if err != nil {
		return f.onError
	}
	return res.Result
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

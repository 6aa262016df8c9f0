package policy

import (
	"github.com/tkingovr/logfilter/api"
)

// EvalInput is the input to a policy engine evaluation.
type EvalInput struct {
	Logger     string            `json:"logger"`
	Level      string            `json:"level"`
	LevelValue int               `json:"level_value"`
	Message    string            `json:"message"`
	NDC        string            `json:"ndc"`
	MDC        map[string]string `json:"mdc,omitempty"`
}

// InputFromEvent builds the evaluation input for ev. mdcKeys selects the
// mapped context entries exposed to the policy.
func InputFromEvent(ev *api.Event, mdcKeys []string) *EvalInput {
	in := &EvalInput{
		Logger:     ev.Logger,
		Level:      ev.Level.String(),
		LevelValue: int(ev.Level),
		Message:    ev.Message,
		NDC:        ev.NDC(),
	}
	if d, ok := ev.Context.(api.Diag); ok && len(mdcKeys) == 0 {
		in.MDC = d.Mapped
		return in
	}
	for _, k := range mdcKeys {
		if v := ev.MDC(k); v != "" {
			if in.MDC == nil {
				in.MDC = make(map[string]string, len(mdcKeys))
			}
			in.MDC[k] = v
		}
	}
	return in
}

// EvalResult is the output of a policy engine evaluation.
type EvalResult struct {
	Result  api.Result `json:"result"`
	Rule    string     `json:"rule,omitempty"`
	Message string     `json:"message,omitempty"`
}

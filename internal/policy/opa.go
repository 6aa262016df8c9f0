package policy

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/open-policy-agent/opa/ast"
	"github.com/open-policy-agent/opa/rego"
	"github.com/open-policy-agent/opa/storage/inmem"
	"github.com/open-policy-agent/opa/topdown"

	"github.com/tkingovr/logfilter/api"
)

// OPAEngine implements the Engine interface using embedded OPA/Rego.
type OPAEngine struct {
	mu   sync.RWMutex
	path string

	// Compiled query for evaluation
	query rego.PreparedEvalQuery
}

// NewOPAEngine creates a new OPA engine from a .rego policy file.
func NewOPAEngine(path string) (*OPAEngine, error) {
	e := &OPAEngine{path: path}
	if err := e.Reload(context.Background()); err != nil {
		return nil, err
	}
	return e, nil
}

// NewOPAEngineFromSource creates a new OPA engine from raw Rego source.
func NewOPAEngineFromSource(source string) (*OPAEngine, error) {
	e := &OPAEngine{}
	if err := e.loadSource(source); err != nil {
		return nil, err
	}
	return e, nil
}

// Evaluate runs the OPA policy against the given event input.
//
// The Rego policy must live in package logfilter and may define:
//
//	result: "accept" | "deny" | "neutral"
//	rule_name: string (optional)
//	message: string (optional)
//
// Input available to the policy:
//
//	input.logger: string
//	input.level: string ("INFO", "WARN", ...)
//	input.level_value: number
//	input.message: string
//	input.ndc: string
//	input.mdc: object
//
// A policy that leaves result undefined is neutral.
func (e *OPAEngine) Evaluate(ctx context.Context, input *EvalInput) (*EvalResult, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	inputMap := map[string]any{
		"logger":      input.Logger,
		"level":       input.Level,
		"level_value": input.LevelValue,
		"message":     input.Message,
		"ndc":         input.NDC,
	}
	mdc := make(map[string]any, len(input.MDC))
	for k, v := range input.MDC {
		mdc[k] = v
	}
	inputMap["mdc"] = mdc

	rs, err := e.query.Eval(ctx, rego.EvalInput(inputMap))
	if err != nil {
		if topdown.IsError(err) {
			return nil, fmt.Errorf("OPA evaluation error: %w", err)
		}
		return nil, fmt.Errorf("OPA evaluation failed: %w", err)
	}

	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return &EvalResult{
			Result:  api.ResultNeutral,
			Rule:    "_opa_default",
			Message: "OPA policy returned no result",
		}, nil
	}

	resultMap, ok := rs[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected OPA result type %T", rs[0].Expressions[0].Value)
	}

	return parseOPAResult(resultMap)
}

// Reload re-reads the Rego policy file from disk and recompiles.
func (e *OPAEngine) Reload(_ context.Context) error {
	if e.path == "" {
		return nil
	}
	data, err := os.ReadFile(e.path)
	if err != nil {
		return fmt.Errorf("reading OPA policy file: %w", err)
	}
	return e.loadSource(string(data))
}

func (e *OPAEngine) loadSource(source string) error {
	_, err := ast.ParseModuleWithOpts("policy.rego", source, ast.ParserOptions{RegoVersion: ast.RegoV1})
	if err != nil {
		return fmt.Errorf("parsing Rego policy: %w", err)
	}

	store := inmem.New()

	r := rego.New(
		rego.Query("data.logfilter"),
		rego.Module("policy.rego", source),
		rego.Store(store),
	)

	query, err := r.PrepareForEval(context.Background())
	if err != nil {
		return fmt.Errorf("preparing OPA query: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.query = query

	return nil
}

func parseOPAResult(m map[string]any) (*EvalResult, error) {
	result := &EvalResult{
		Result: api.ResultNeutral, // default if not set
	}

	if v, ok := m["result"].(string); ok {
		r, err := api.ParseResult(v)
		if err != nil {
			return nil, fmt.Errorf("OPA policy: %w", err)
		}
		result.Result = r
	}

	if r, ok := m["rule_name"].(string); ok {
		result.Rule = r
	}
	if msg, ok := m["message"].(string); ok {
		result.Message = msg
	}

	return result, nil
}

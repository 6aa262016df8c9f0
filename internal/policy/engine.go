package policy

import "context"

// Engine is the interface for policy evaluation backends.
type Engine interface {
	// Evaluate checks an event against loaded policies and returns a result.
	Evaluate(ctx context.Context, input *EvalInput) (*EvalResult, error)

	// Reload reloads policies from the source (file, inline, etc.).
	Reload(ctx context.Context) error
}

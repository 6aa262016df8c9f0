// Package diag carries the nested (NDC) and mapped (MDC) diagnostic contexts
// on a context.Context. Every mutation returns a new context; stored values
// are never modified in place, so contexts can be shared between goroutines.
package diag

import (
	"context"
	"maps"

	"github.com/tkingovr/logfilter/api"
)

type ndcKey struct{}

type mdcKey struct{}

// ndcFrame is one entry of the nested context stack. full holds the
// space-joined messages from the bottom of the stack up to this frame.
type ndcFrame struct {
	parent  *ndcFrame
	message string
	full    string
}

// PushNDC returns a context with message pushed onto the nested context.
func PushNDC(ctx context.Context, message string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	parent := ndcTop(ctx)
	full := message
	if parent != nil {
		full = parent.full + " " + message
	}
	return context.WithValue(ctx, ndcKey{}, &ndcFrame{
		parent:  parent,
		message: message,
		full:    full,
	})
}

// PopNDC returns a context with the innermost nested context entry removed,
// along with the removed message.
func PopNDC(ctx context.Context) (context.Context, string) {
	top := ndcTop(ctx)
	if top == nil {
		return ctx, ""
	}
	return context.WithValue(ctx, ndcKey{}, top.parent), top.message
}

// NDC returns the full nested diagnostic context for ctx.
func NDC(ctx context.Context) string {
	if top := ndcTop(ctx); top != nil {
		return top.full
	}
	return ""
}

// Depth returns the number of entries on the nested context stack.
func Depth(ctx context.Context) int {
	n := 0
	for f := ndcTop(ctx); f != nil; f = f.parent {
		n++
	}
	return n
}

func ndcTop(ctx context.Context) *ndcFrame {
	if ctx == nil {
		return nil
	}
	f, _ := ctx.Value(ndcKey{}).(*ndcFrame)
	return f
}

// PutMDC returns a context whose mapped context has key set to value.
func PutMDC(ctx context.Context, key, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	cur := mdcMap(ctx)
	next := make(map[string]string, len(cur)+1)
	maps.Copy(next, cur)
	next[key] = value
	return context.WithValue(ctx, mdcKey{}, next)
}

// RemoveMDC returns a context whose mapped context no longer holds key.
func RemoveMDC(ctx context.Context, key string) context.Context {
	cur := mdcMap(ctx)
	if _, ok := cur[key]; !ok {
		return ctx
	}
	next := maps.Clone(cur)
	delete(next, key)
	return context.WithValue(ctx, mdcKey{}, next)
}

// MDC looks up key in the mapped context of ctx.
func MDC(ctx context.Context, key string) (string, bool) {
	v, ok := mdcMap(ctx)[key]
	return v, ok
}

func mdcMap(ctx context.Context) map[string]string {
	if ctx == nil {
		return nil
	}
	m, _ := ctx.Value(mdcKey{}).(map[string]string)
	return m
}

// Snapshot captures the diagnostic contexts of ctx for attaching to an event.
func Snapshot(ctx context.Context) api.Diag {
	return api.Diag{
		Nested: NDC(ctx),
		Mapped: mdcMap(ctx),
	}
}

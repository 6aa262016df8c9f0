// Package sink puts a filter chain in front of a log destination.
package sink

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/tkingovr/logfilter/api"
	"github.com/tkingovr/logfilter/internal/audit"
	"github.com/tkingovr/logfilter/internal/filter"
	"github.com/tkingovr/logfilter/internal/metrics"
)

// Gate evaluates events against a named chain and reports every decision
// to the configured recorders.
type Gate struct {
	name    string
	chain   *filter.Chain
	store   audit.Store
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithStore records every decision in the given store.
func WithStore(s audit.Store) GateOption {
	return func(g *Gate) { g.store = s }
}

// WithMetrics counts every decision with the given recorder.
func WithMetrics(m *metrics.Recorder) GateOption {
	return func(g *Gate) { g.metrics = m }
}

// WithLogger sets the logger used to report recorder failures.
func WithLogger(l *slog.Logger) GateOption {
	return func(g *Gate) { g.logger = l }
}

// NewGate creates a gate for chain. A nil chain admits everything.
func NewGate(name string, chain *filter.Chain, opts ...GateOption) *Gate {
	g := &Gate{name: name, chain: chain}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if g.chain == nil {
		g.chain, _ = filter.NewChain(g.logger)
	}
	return g
}

// Name returns the chain name the gate reports decisions under.
func (g *Gate) Name() string { return g.name }

// Chain returns the gate's filter chain.
func (g *Gate) Chain() *filter.Chain { return g.chain }

// Admit reports whether ev should reach the destination.
func (g *Gate) Admit(ctx context.Context, ev *api.Event) bool {
	return g.Evaluate(ctx, ev).Result == api.ResultAccept
}

// Evaluate runs the chain and records the decision.
func (g *Gate) Evaluate(ctx context.Context, ev *api.Event) filter.Decision {
	start := time.Now()
	d := g.chain.Evaluate(ev)
	took := time.Since(start)

	if g.metrics != nil {
		g.metrics.Observe(g.name, d.Result, d.DecidedBy, took)
	}
	if g.store != nil {
		rec := &api.DecisionRecord{
			Timestamp: ev.Timestamp,
			Chain:     g.name,
			Logger:    ev.Logger,
			Level:     ev.Level,
			Message:   ev.Message,
			NDC:       ev.NDC(),
			Result:    d.Result,
			DecidedBy: d.DecidedBy,
			Consulted: d.Consulted,
			Duration:  took,
		}
		if err := g.store.Write(ctx, rec); err != nil {
			g.logger.Warn("failed to record decision", "chain", g.name, "error", err)
		}
	}
	return d
}

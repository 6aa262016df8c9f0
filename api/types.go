package api

import (
	"fmt"
	"strings"
	"time"
)

// Result is the outcome of a single filter decision.
type Result string

const (
	ResultDeny    Result = "deny"
	ResultNeutral Result = "neutral"
	ResultAccept  Result = "accept"
)

// ParseResult converts a case-insensitive result name into a Result.
func ParseResult(s string) (Result, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deny":
		return ResultDeny, nil
	case "neutral":
		return ResultNeutral, nil
	case "accept":
		return ResultAccept, nil
	}
	return "", fmt.Errorf("unknown filter result %q", s)
}

// DecisionRecord represents a single gated event and the verdict it received.
type DecisionRecord struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Chain     string        `json:"chain"`
	Logger    string        `json:"logger,omitempty"`
	Level     Level         `json:"level"`
	Message   string        `json:"message,omitempty"`
	NDC       string        `json:"ndc,omitempty"`
	Result    Result        `json:"result"`
	DecidedBy string        `json:"decided_by,omitempty"`
	Consulted int           `json:"consulted"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// CheckRequest is used by the CLI `check` command and the HTTP API.
type CheckRequest struct {
	Chain string      `json:"chain"`
	Event EventRecord `json:"event"`
}

// Step is the result a single filter returned while a chain was evaluated.
type Step struct {
	Filter string `json:"filter"`
	Result Result `json:"result"`
}

// CheckResponse is the result of a dry-run chain evaluation.
type CheckResponse struct {
	Chain     string `json:"chain"`
	Result    Result `json:"result"`
	DecidedBy string `json:"decided_by"`
	Steps     []Step `json:"steps,omitempty"`
}

// EventsRequest submits a batch of events to be gated by a chain.
type EventsRequest struct {
	Chain  string        `json:"chain"`
	Events []EventRecord `json:"events"`
}

// EventsResponse reports the verdict for every submitted event, in order.
type EventsResponse struct {
	Chain    string   `json:"chain"`
	Accepted int      `json:"accepted"`
	Denied   int      `json:"denied"`
	Results  []Result `json:"results"`
}

// ChainInfo describes a configured chain.
type ChainInfo struct {
	Name    string   `json:"name"`
	Filters []string `json:"filters"`
}

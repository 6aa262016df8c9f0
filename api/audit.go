package api

import "time"

// QueryFilter defines criteria for querying decision records.
type QueryFilter struct {
	Since  time.Time `json:"since,omitzero"`
	Until  time.Time `json:"until,omitzero"`
	Chain  string    `json:"chain,omitempty"`
	Logger string    `json:"logger,omitempty"`
	Result Result    `json:"result,omitempty"`
	Limit  int       `json:"limit,omitempty"`
	Offset int       `json:"offset,omitempty"`

	// Newest walks the log from the most recent record, so Offset and
	// Limit page backwards in time and results come newest first.
	Newest bool `json:"newest,omitempty"`
}

// DecisionStats provides summary statistics over recorded decisions.
type DecisionStats struct {
	TotalEvents int            `json:"total_events"`
	AcceptCount int            `json:"accept_count"`
	DenyCount   int            `json:"deny_count"`
	ByChain     map[string]int `json:"by_chain"`
	ByLevel     map[string]int `json:"by_level"`
	ByDecider   map[string]int `json:"by_decider"`
}

// Package audit persists gate decisions and serves them back for queries,
// statistics and live streaming.
package audit

import (
	"context"

	"github.com/tkingovr/logfilter/api"
)

// Store defines the interface for decision record persistence and retrieval.
type Store interface {
	// Write appends a decision record.
	Write(ctx context.Context, record *api.DecisionRecord) error

	// Query retrieves decision records matching the filter.
	Query(ctx context.Context, filter api.QueryFilter) ([]*api.DecisionRecord, error)

	// Stats returns aggregate statistics.
	Stats(ctx context.Context) (*api.DecisionStats, error)

	// Subscribe returns a channel that receives new records in real time.
	// The returned function cancels the subscription.
	Subscribe(ctx context.Context) (<-chan *api.DecisionRecord, func())

	// Close shuts down the store and flushes any buffers.
	Close() error
}

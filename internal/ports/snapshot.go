package ports

import (
	"context"

	"github.com/vshulcz/Twintick/internal/domain"
)

// SnapshotSource answers "what are the current values" for request handlers.
type SnapshotSource interface {
	Current(ctx context.Context) (domain.Snapshot, error)
}

// QueryEndpoint is the aggregator side of the query exchange.
type QueryEndpoint interface {
	Requests() chan<- domain.Query
	Done() <-chan struct{}
}

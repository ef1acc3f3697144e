// Package bridge turns the aggregator's channel exchange into a blocking call.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vshulcz/Twintick/internal/domain"
	"github.com/vshulcz/Twintick/internal/ports"
)

// Client asks an aggregator for its current snapshot.
type Client struct {
	ep      ports.QueryEndpoint
	timeout time.Duration
}

var _ ports.SnapshotSource = (*Client)(nil)

// New returns a client. A zero timeout waits as long as the caller's context allows.
func New(ep ports.QueryEndpoint, timeout time.Duration) *Client {
	return &Client{ep: ep, timeout: max(timeout, 0)}
}

// Current sends one query and waits for its reply.
//
// Failures to deliver the query or receive the reply wrap domain.ErrCommunication;
// an expired deadline wraps domain.ErrTimeout instead.
func (c *Client) Current(ctx context.Context) (domain.Snapshot, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	reply := make(chan domain.Snapshot, 1)
	select {
	case c.ep.Requests() <- domain.Query{Reply: reply}:
	case <-c.ep.Done():
		return domain.Snapshot{}, fmt.Errorf("%w: aggregator stopped before accepting query", domain.ErrCommunication)
	case <-ctx.Done():
		return domain.Snapshot{}, contextError(ctx, "sending query")
	}

	select {
	case snap := <-reply:
		return snap, nil
	case <-c.ep.Done():
		// The reply may have been sent just before the loop stopped.
		select {
		case snap := <-reply:
			return snap, nil
		default:
		}
		return domain.Snapshot{}, fmt.Errorf("%w: aggregator stopped before replying", domain.ErrCommunication)
	case <-ctx.Done():
		return domain.Snapshot{}, contextError(ctx, "waiting for reply")
	}
}

func contextError(ctx context.Context, stage string) error {
	err := ctx.Err()
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %w", domain.ErrTimeout, stage, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrCommunication, stage, err)
}

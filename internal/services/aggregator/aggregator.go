// Package aggregator owns the latest value of every producer and answers snapshot queries.
//
// All state lives on the goroutine running Run. Producers and callers only
// reach it through channels, so nothing here needs a mutex.
package aggregator

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/vshulcz/Twintick/internal/domain"
	"github.com/vshulcz/Twintick/internal/ports"
	"github.com/vshulcz/Twintick/pkg/observer"
	"go.uber.org/zap"
)

// Aggregator multiplexes producer updates and snapshot queries in a single loop.
type Aggregator struct {
	sources []<-chan uint64
	queries chan domain.Query
	updates chan domain.Update
	done    chan struct{}
	events  observer.Publisher[domain.Update]
	logger  *zap.Logger
	wg      sync.WaitGroup
	started atomic.Bool
}

var _ ports.QueryEndpoint = (*Aggregator)(nil)

// New builds an aggregator with one slot per source, in the given order.
// events may be nil; it is called from the aggregator goroutine after each applied update.
func New(logger *zap.Logger, events observer.Publisher[domain.Update], sources ...<-chan uint64) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		sources: append([]<-chan uint64(nil), sources...),
		queries: make(chan domain.Query),
		updates: make(chan domain.Update),
		done:    make(chan struct{}),
		events:  events,
		logger:  logger.Named("aggregator"),
	}
}

// Requests is where callers send queries.
func (a *Aggregator) Requests() chan<- domain.Query { return a.queries }

// Done is closed once Run has stopped answering queries.
func (a *Aggregator) Done() <-chan struct{} { return a.done }

// Slots returns the number of producers feeding the aggregator.
func (a *Aggregator) Slots() int { return len(a.sources) }

// Run serves updates and queries until ctx is done.
func (a *Aggregator) Run(ctx context.Context) error {
	if !a.started.CompareAndSwap(false, true) {
		return domain.ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		close(a.done)
		cancel()
		a.wg.Wait()
	}()

	for slot, src := range a.sources {
		a.wg.Add(1)
		go a.forward(ctx, slot, src)
	}

	a.logger.Info("aggregator started", zap.Int("slots", len(a.sources)))

	last := make([]uint64, len(a.sources))
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("aggregator stopped", zap.Uint64s("last", last))
			return nil
		case u := <-a.updates:
			last[u.Slot] = u.Value
			if a.events != nil {
				a.events.Publish(ctx, u)
			}
		case q := <-a.queries:
			a.answer(q, last)
		}
	}
}

// forward moves one producer's values onto the shared update channel in arrival order.
// A closed source freezes its slot at the last value received.
func (a *Aggregator) forward(ctx context.Context, slot int, src <-chan uint64) {
	defer a.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-src:
			if !ok {
				a.logger.Warn("producer channel closed, slot frozen", zap.Int("slot", slot))
				return
			}
			select {
			case a.updates <- domain.Update{Slot: slot, Value: v}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// answer never blocks: a caller that cannot take the reply right now has given up on it.
func (a *Aggregator) answer(q domain.Query, last []uint64) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("reply channel closed by caller", zap.Any("panic", r))
		}
	}()
	if q.Reply == nil {
		a.logger.Warn("query without reply channel dropped")
		return
	}
	select {
	case q.Reply <- domain.NewSnapshot(last):
	default:
		a.logger.Warn("caller abandoned query, reply dropped")
	}
}

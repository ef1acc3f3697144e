package loop

import (
	"context"
	"time"
	clock "time"
)

func bad() {
	time.Sleep(time.Millisecond) // want "time.Sleep ignores cancellation"
}

func aliased() {
	clock.Sleep(clock.Second) // want "time.Sleep ignores cancellation"
}

func good(ctx context.Context) error {
	t := time.NewTimer(time.Millisecond)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type sleeper struct{}

func (sleeper) Sleep(time.Duration) {}

func notTheTimePackage() {
	var s sleeper
	s.Sleep(time.Second)
}

// Package observer provides a small generic fan-out for in-process events.
package observer

import (
	"context"
	"fmt"
	"sync"
)

// Observer receives published events of type T.
type Observer[T any] interface {
	Notify(context.Context, T) error
}

// ObserverFunc adapts a standalone function into an Observer.
//
//revive:disable-next-line:exported
type ObserverFunc[T any] func(context.Context, T) error

// Notify executes the wrapped function.
func (f ObserverFunc[T]) Notify(ctx context.Context, evt T) error {
	if f == nil {
		return nil
	}
	return f(ctx, evt)
}

// Publisher publishes events to downstream observers.
type Publisher[T any] interface {
	Publish(context.Context, T) int
}

// Subject fans events out to registered observers in registration order.
// A failing or panicking observer does not prevent the others from running.
type Subject[T any] struct {
	mu        sync.RWMutex
	observers []Observer[T]
	onError   func(T, error)
}

var _ Publisher[struct{}] = (*Subject[struct{}])(nil)

// NewSubject constructs a Subject with optional initial observers.
func NewSubject[T any](observers ...Observer[T]) *Subject[T] {
	s := &Subject[T]{}
	s.Attach(observers...)
	return s
}

// Publish notifies every observer and returns how many of them failed.
func (s *Subject[T]) Publish(ctx context.Context, evt T) int {
	if s == nil {
		return 0
	}

	s.mu.RLock()
	observers := append([]Observer[T](nil), s.observers...)
	errHandler := s.onError
	s.mu.RUnlock()

	failed := 0
	for _, obs := range observers {
		if err := notify(ctx, obs, evt); err != nil {
			failed++
			if errHandler != nil {
				errHandler(evt, err)
			}
		}
	}
	return failed
}

func notify[T any](ctx context.Context, obs Observer[T], evt T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer panic: %v", r)
		}
	}()
	return obs.Notify(ctx, evt)
}

// Attach registers additional observers; nil observers are skipped.
func (s *Subject[T]) Attach(observers ...Observer[T]) {
	if s == nil {
		return
	}
	s.mu.Lock()
	for _, obs := range observers {
		if obs != nil {
			s.observers = append(s.observers, obs)
		}
	}
	s.mu.Unlock()
}

// Len reports the number of registered observers.
func (s *Subject[T]) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}

// SetErrorHandler configures a callback for observer failures.
func (s *Subject[T]) SetErrorHandler(fn func(T, error)) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.onError = fn
	s.mu.Unlock()
}

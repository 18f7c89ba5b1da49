// Package lifecycle exposes database events as a lifecycle.Source so they can
// be consumed next to signals and other sources in a lifecycle runtime.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
)

// DefaultBuffer is the channel size used when subscribing to a bus.
const DefaultBuffer = 64

type eventSource struct {
	subscribe func(ctx context.Context) <-chan core.Event
	out       chan lifecycle.Event
}

// NewSource wraps an already open event channel, such as the one returned by
// fs.Repository.Watch.
func NewSource(events <-chan core.Event) lifecycle.Source {
	return &eventSource{
		subscribe: func(context.Context) <-chan core.Event { return events },
		out:       make(chan lifecycle.Event),
	}
}

// BusSource subscribes to bus when the source is started and unsubscribes
// when its context ends.
func BusSource(bus *core.Bus) lifecycle.Source {
	return &eventSource{
		subscribe: func(ctx context.Context) <-chan core.Event { return bus.Watch(ctx, DefaultBuffer) },
		out:       make(chan lifecycle.Event),
	}
}

func (s *eventSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *eventSource) Start(ctx context.Context) error {
	events := s.subscribe(ctx)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}

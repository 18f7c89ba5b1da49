package core

import (
	"github.com/aretw0/introspection"
)

// BusState exposes internal state for observability.
type BusState struct {
	Subscribers map[EventType]int `json:"subscribers"`
	Watchers    int               `json:"watchers"`
	Published   int               `json:"published"`
}

// State implements introspection.Introspectable.
func (b *Bus) State() any {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subs := make(map[EventType]int, len(b.handlers))
	for t, hs := range b.handlers {
		if len(hs) > 0 {
			subs[t] = len(hs)
		}
	}
	return BusState{
		Subscribers: subs,
		Watchers:    len(b.any),
		Published:   b.sent,
	}
}

// ComponentType implements introspection.Component.
func (b *Bus) ComponentType() string {
	return "event_bus"
}

var _ introspection.Introspectable = (*Bus)(nil)
var _ introspection.Component = (*Bus)(nil)

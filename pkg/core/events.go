package core

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
)

// EventType names a notification published on the Bus.
type EventType string

const (
	EventCollectionInitialized EventType = "collection.initialized"
	EventAttachmentDeleted     EventType = "attachment.deleted"
	EventUserLoggedOut         EventType = "user.loggedOut"
	EventItemChanged           EventType = "item.changed"
	EventItemRemoved           EventType = "item.removed"

	// Filesystem events raised by stores that can watch their backing files.
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change in the database.
type Event struct {
	Type       EventType
	Collection string
	ID         string
	Timestamp  int64 // Unix milliseconds
}

// Handler observes events of one type.
type Handler func(ctx context.Context, e Event)

type subscription struct {
	id int
	fn Handler
}

// Bus is a synchronous publish/subscribe hub. Collections receive it at
// construction and use it for lifecycle notifications only; nothing waits on it.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]subscription
	any      []subscription
	next     int
	sent     int
	logger   *slog.Logger
}

// NewBus creates an empty bus. A nil logger discards output.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bus{handlers: make(map[EventType][]subscription), logger: logger}
}

// Subscribe registers fn for events of type t. The returned func removes it.
func (b *Bus) Subscribe(t EventType, fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	id := b.next
	b.handlers[t] = append(b.handlers[t], subscription{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.handlers[t] = without(b.handlers[t], id)
	}
}

// SubscribeAll registers fn for every event type.
func (b *Bus) SubscribeAll(fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	id := b.next
	b.any = append(b.any, subscription{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.any = without(b.any, id)
	}
}

// Publish delivers e to every subscriber in registration order.
// A panicking handler is logged and does not stop delivery.
func (b *Bus) Publish(ctx context.Context, e Event) {
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().UnixMilli()
	}
	b.mu.Lock()
	b.sent++
	subs := make([]subscription, 0, len(b.handlers[e.Type])+len(b.any))
	subs = append(subs, b.handlers[e.Type]...)
	subs = append(subs, b.any...)
	b.mu.Unlock()

	for _, s := range subs {
		b.deliver(ctx, s.fn, e)
	}
}

func (b *Bus) deliver(ctx context.Context, fn Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panic", "event", e.Type, "panic", r)
		}
	}()
	fn(ctx, e)
}

// Watch streams every published event into a buffered channel until ctx is done.
// Events are dropped when the reader falls behind.
func (b *Bus) Watch(ctx context.Context, buffer int) <-chan Event {
	ch := make(chan Event, buffer)
	var (
		mu     sync.Mutex
		closed bool
	)
	unsubscribe := b.SubscribeAll(func(_ context.Context, e Event) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- e:
		default:
			b.logger.Warn("event dropped, watcher is slow", "event", e.Type, "id", e.ID)
		}
	})

	lifecycle.Go(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		unsubscribe()
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		b.logger.Error("event watcher stopped", "error", err)
	}))

	return ch
}

func without(subs []subscription, id int) []subscription {
	out := make([]subscription, 0, len(subs))
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}

func (e Event) String() string {
	if e.Collection == "" {
		return string(e.Type) + " " + e.ID
	}
	return string(e.Type) + " " + e.Collection + "/" + e.ID
}

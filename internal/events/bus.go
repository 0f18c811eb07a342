package events

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Subscriber receives events for the types it registered for.
type Subscriber func(Event)

// Bus is an in-process publish/subscribe dispatcher. Publish is
// fire-and-forget: subscribers run on their own goroutine so producers
// never block on consumer processing.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Type][]Subscriber
	logger      *zap.Logger
}

// NewBus constructs an event bus.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{subscribers: make(map[Type][]Subscriber), logger: logger}
}

// Subscribe registers a subscriber for the given event types.
func (b *Bus) Subscribe(sub Subscriber, types ...Type) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range types {
		b.subscribers[t] = append(b.subscribers[t], sub)
	}
}

// Publish delivers the event to all subscribers asynchronously.
func (b *Bus) Publish(event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	b.mu.RLock()
	subs := make([]Subscriber, len(b.subscribers[event.Type]))
	copy(subs, b.subscribers[event.Type])
	b.mu.RUnlock()

	if len(subs) == 0 {
		return
	}

	b.logger.Debug("event published",
		zap.String("type", string(event.Type)),
		zap.String("workshop_id", event.WorkshopID),
		zap.String("participant_id", event.ParticipantID),
	)

	for _, sub := range subs {
		go sub(event)
	}
}

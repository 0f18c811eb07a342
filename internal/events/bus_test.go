package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBusDeliversToSubscribedTypesOnly(t *testing.T) {
	bus := NewBus(nil)

	var mu sync.Mutex
	var received []Type
	done := make(chan struct{}, 1)

	bus.Subscribe(func(e Event) {
		mu.Lock()
		received = append(received, e.Type)
		mu.Unlock()
		done <- struct{}{}
	}, TypeRegistrationBooked)

	bus.Publish(Event{Type: TypeRegistrationCancelled})
	bus.Publish(Event{Type: TypeRegistrationBooked})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("subscriber was never invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Type{TypeRegistrationBooked}, received)
}

func TestBusStampsOccurredAt(t *testing.T) {
	bus := NewBus(nil)
	done := make(chan Event, 1)

	bus.Subscribe(func(e Event) { done <- e }, TypeRewardIssued)
	bus.Publish(Event{Type: TypeRewardIssued})

	select {
	case event := <-done:
		assert.False(t, event.OccurredAt.IsZero())
	case <-time.After(time.Second):
		t.Fatal("subscriber was never invoked")
	}
}

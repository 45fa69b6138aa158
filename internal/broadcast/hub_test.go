package broadcast

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	hub := NewHub()
	_, a := hub.Subscribe(4)
	_, b := hub.Subscribe(4)

	delivered := hub.Publish(Event{Type: EventUpdate, Data: "wheat"})
	assert.Equal(t, 2, delivered)

	for _, ch := range []<-chan Event{a, b} {
		ev := <-ch
		assert.Equal(t, EventUpdate, ev.Type)
		assert.Equal(t, "wheat", ev.Data)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	id, ch := hub.Subscribe(1)

	hub.Unsubscribe(id)
	hub.Unsubscribe(id) // idempotent

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.Len())

	assert.Equal(t, 0, hub.Publish(Event{Type: EventUpdate}))
}

func TestFullSubscriberIsPruned(t *testing.T) {
	hub := NewHub()
	_, slow := hub.Subscribe(1)
	_, healthy := hub.Subscribe(4)

	// First publish fills the slow subscriber's buffer.
	assert.Equal(t, 2, hub.Publish(Event{Type: EventUpdate, Data: 1}))
	// Second publish finds it full, drops it, and still serves the rest.
	assert.Equal(t, 1, hub.Publish(Event{Type: EventUpdate, Data: 2}))
	assert.Equal(t, 1, hub.Len())

	// The slow channel holds its one buffered event and is then closed.
	ev, open := <-slow
	require.True(t, open)
	assert.Equal(t, 1, ev.Data)
	_, open = <-slow
	assert.False(t, open)

	assert.Len(t, healthy, 2)
}

func TestConcurrentSubscribePublishUnsubscribe(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, ch := hub.Subscribe(8)
			hub.Publish(Event{Type: EventUpdate})
			// Drain whatever arrived before dropping the subscription.
			for len(ch) > 0 {
				<-ch
			}
			hub.Unsubscribe(id)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, hub.Len())
}

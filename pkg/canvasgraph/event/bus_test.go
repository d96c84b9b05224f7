package event_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canvasgraph/canvasgraph/pkg/canvasgraph/event"
)

// collector gathers delivered events behind a mutex, since handlers run
// on subscription goroutines.
type collector struct {
	mu     sync.Mutex
	events []event.Event
	signal chan struct{}
}

func newCollector() *collector {
	return &collector{signal: make(chan struct{}, 64)}
}

func (c *collector) handle(e event.Event) {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
	c.signal <- struct{}{}
}

func (c *collector) wait(t *testing.T, n int) []event.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		c.mu.Lock()
		if len(c.events) >= n {
			out := make([]event.Event, len(c.events))
			copy(out, c.events)
			c.mu.Unlock()
			return out
		}
		c.mu.Unlock()
		select {
		case <-c.signal:
		case <-deadline:
			t.Fatalf("timed out waiting for %d events", n)
		}
	}
}

func TestBusPublishSubscribe(t *testing.T) {
	bus := event.NewBus(event.BusConfig{})
	defer bus.Close()

	col := newCollector()
	sub := bus.Subscribe([]event.Type{event.TypeNodeSelected}, col.handle)
	require.NotNil(t, sub)
	defer sub.Unsubscribe()

	bus.Publish(event.New(event.TypeNodeSelected, "p1").WithNode("n1"))

	got := col.wait(t, 1)
	assert.Equal(t, event.TypeNodeSelected, got[0].Type)
	assert.Equal(t, "p1", got[0].ProjectID)
	assert.Equal(t, "n1", got[0].NodeID)
	assert.NotEmpty(t, got[0].ID)
	assert.False(t, got[0].At.IsZero())
}

// TestBusTypeFiltering delivers only subscribed types.
func TestBusTypeFiltering(t *testing.T) {
	bus := event.NewBus(event.BusConfig{})
	defer bus.Close()

	col := newCollector()
	sub := bus.Subscribe([]event.Type{event.TypeEdgeCreated}, col.handle)
	defer sub.Unsubscribe()

	bus.Publish(event.New(event.TypeNodeSelected, "p1"))
	bus.Publish(event.New(event.TypeEdgeCreated, "p1").WithEdge("e1"))

	got := col.wait(t, 1)
	require.Len(t, got, 1)
	assert.Equal(t, event.TypeEdgeCreated, got[0].Type)
}

func TestBusSubscribeAll(t *testing.T) {
	bus := event.NewBus(event.BusConfig{})
	defer bus.Close()

	col := newCollector()
	sub := bus.SubscribeAll(col.handle)
	defer sub.Unsubscribe()

	bus.Publish(event.New(event.TypeNodeSelected, "p1"))
	bus.Publish(event.New(event.TypeLockChanged, "p1"))

	got := col.wait(t, 2)
	assert.Len(t, got, 2)
}

func TestBusUnsubscribe(t *testing.T) {
	bus := event.NewBus(event.BusConfig{})
	defer bus.Close()

	col := newCollector()
	sub := bus.SubscribeAll(col.handle)

	bus.Publish(event.New(event.TypeNodeSelected, "p1"))
	col.wait(t, 1)

	sub.Unsubscribe()
	bus.Publish(event.New(event.TypeNodeSelected, "p1"))

	// No further deliveries after unsubscribing.
	time.Sleep(50 * time.Millisecond)
	col.mu.Lock()
	defer col.mu.Unlock()
	assert.Len(t, col.events, 1)
}

func TestBusClose(t *testing.T) {
	bus := event.NewBus(event.BusConfig{})

	col := newCollector()
	sub := bus.SubscribeAll(col.handle)
	require.NotNil(t, sub)

	require.NoError(t, bus.Close())
	// Idempotent.
	require.NoError(t, bus.Close())

	// Closed bus drops publishes and rejects subscriptions.
	bus.Publish(event.New(event.TypeNodeSelected, "p1"))
	assert.Nil(t, bus.SubscribeAll(col.handle))

	// Unsubscribing after close must not panic.
	sub.Unsubscribe()
}

func TestBusNilHandler(t *testing.T) {
	bus := event.NewBus(event.BusConfig{})
	defer bus.Close()
	assert.Nil(t, bus.SubscribeAll(nil))
}

// TestBusDropOnFullBuffer verifies Publish never blocks: overflow goes
// to the drop callback instead.
func TestBusDropOnFullBuffer(t *testing.T) {
	var mu sync.Mutex
	dropped := 0
	bus := event.NewBus(event.BusConfig{
		BufferSize: 1,
		OnDrop: func(event.Event, string) {
			mu.Lock()
			dropped++
			mu.Unlock()
		},
	})
	defer bus.Close()

	block := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	sub := bus.SubscribeAll(func(event.Event) {
		once.Do(func() { close(started) })
		<-block
	})
	defer sub.Unsubscribe()

	// First event occupies the handler, second fills the buffer, the
	// rest overflow.
	bus.Publish(event.New(event.TypeNodeSelected, "p1"))
	<-started
	bus.Publish(event.New(event.TypeNodeSelected, "p1"))
	for i := 0; i < 5; i++ {
		bus.Publish(event.New(event.TypeNodeSelected, "p1"))
	}
	close(block)

	mu.Lock()
	defer mu.Unlock()
	assert.Greater(t, dropped, 0)
}

func TestEventBuilders(t *testing.T) {
	e := event.New(event.TypeRebuilt, "p1").
		WithNode("n1").
		WithEdge("e1").
		WithPayload("nodes", 3).
		WithPayload("edges", 2)

	assert.Equal(t, "n1", e.NodeID)
	assert.Equal(t, "e1", e.EdgeID)
	assert.Equal(t, 3, e.Payload["nodes"])
	assert.Equal(t, 2, e.Payload["edges"])

	// WithPayload copies: the original event is untouched.
	base := event.New(event.TypeRebuilt, "p1").WithPayload("a", 1)
	derived := base.WithPayload("b", 2)
	assert.Len(t, base.Payload, 1)
	assert.Len(t, derived.Payload, 2)
}

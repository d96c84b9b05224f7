package event

import (
	"strconv"
	"sync"
	"sync/atomic"
)

// Handler receives events on a subscription's delivery goroutine.
type Handler func(Event)

// BusConfig configures bus behavior.
type BusConfig struct {
	// BufferSize is the channel buffer size per subscription.
	// Default: 64
	BufferSize int

	// OnDrop is called when a subscription's buffer is full and an
	// event is dropped for it.
	OnDrop func(evt Event, subscriberID string)
}

// DefaultBusConfig provides reasonable defaults.
var DefaultBusConfig = BusConfig{
	BufferSize: 64,
}

// Bus is an in-memory canvas event bus. Publish never blocks: when a
// subscriber's buffer is full the event is dropped for that subscriber
// only. Canvas events are advisory; the authoritative state always
// arrives through the next structural sync.
type Bus struct {
	config BusConfig

	mu        sync.RWMutex
	subs      map[string]*Subscription
	byType    map[Type]map[string]*Subscription
	wildcards map[string]*Subscription

	nextID atomic.Int64
	closed atomic.Bool
}

// NewBus creates a new canvas event bus.
func NewBus(config BusConfig) *Bus {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultBusConfig.BufferSize
	}
	return &Bus{
		config:    config,
		subs:      make(map[string]*Subscription),
		byType:    make(map[Type]map[string]*Subscription),
		wildcards: make(map[string]*Subscription),
	}
}

// Publish delivers an event to all matching subscribers.
// Publishing on a closed bus is a no-op.
func (b *Bus) Publish(evt Event) {
	if b.closed.Load() {
		return
	}

	b.mu.RLock()
	matching := make([]*Subscription, 0, len(b.wildcards))
	if typed, ok := b.byType[evt.Type]; ok {
		for _, sub := range typed {
			matching = append(matching, sub)
		}
	}
	for _, sub := range b.wildcards {
		matching = append(matching, sub)
	}
	b.mu.RUnlock()

	for _, sub := range matching {
		select {
		case sub.events <- evt:
		default:
			if b.config.OnDrop != nil {
				b.config.OnDrop(evt, sub.id)
			}
		}
	}
}

// Subscribe creates a subscription for specific event types.
// Returns nil if the bus is closed.
func (b *Bus) Subscribe(types []Type, handler Handler) *Subscription {
	return b.subscribe(types, handler)
}

// SubscribeAll subscribes to all events.
// Returns nil if the bus is closed.
func (b *Bus) SubscribeAll(handler Handler) *Subscription {
	return b.subscribe(nil, handler)
}

func (b *Bus) subscribe(types []Type, handler Handler) *Subscription {
	if b.closed.Load() || handler == nil {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscription{
		id:      strconv.FormatInt(b.nextID.Add(1), 10),
		types:   types,
		handler: handler,
		events:  make(chan Event, b.config.BufferSize),
		done:    make(chan struct{}),
		bus:     b,
	}
	b.subs[sub.id] = sub

	if len(types) == 0 {
		b.wildcards[sub.id] = sub
	} else {
		for _, t := range types {
			if b.byType[t] == nil {
				b.byType[t] = make(map[string]*Subscription)
			}
			b.byType[t][sub.id] = sub
		}
	}

	go sub.process()
	return sub
}

// Close shuts down the bus and all subscriptions.
func (b *Bus) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		sub.once.Do(func() { close(sub.done) })
	}
	b.subs = make(map[string]*Subscription)
	b.byType = make(map[Type]map[string]*Subscription)
	b.wildcards = make(map[string]*Subscription)
	return nil
}

// Subscription is an active event subscription.
type Subscription struct {
	id      string
	types   []Type
	handler Handler
	events  chan Event
	done    chan struct{}
	once    sync.Once
	bus     *Bus
}

// Unsubscribe removes the subscription and stops delivery.
func (s *Subscription) Unsubscribe() {
	s.bus.mu.Lock()
	delete(s.bus.subs, s.id)
	delete(s.bus.wildcards, s.id)
	for _, t := range s.types {
		if typed, ok := s.bus.byType[t]; ok {
			delete(typed, s.id)
		}
	}
	s.bus.mu.Unlock()

	s.once.Do(func() { close(s.done) })
}

// process delivers buffered events until the subscription ends.
func (s *Subscription) process() {
	for {
		select {
		case evt := <-s.events:
			s.handler(evt)
		case <-s.done:
			return
		}
	}
}

package streaming

import (
	"sync"

	"tidepool/internal/model"
)

// Handler receives one event per remote message, in arrival order.
type Handler func(model.Event)

// Bus fans out decoded events to subscribers. Dispatch happens with the bus
// lock held, so Unsubscribe blocks until any in-flight delivery to that
// handler finishes: once it returns, the handler is never invoked again.
type Bus struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	bus *Bus
	id  int
}

// Subscribe registers h for all future events.
func (b *Bus) Subscribe(h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	return &Subscription{bus: b, id: id}
}

// Unsubscribe stops delivery. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	delete(s.bus.handlers, s.id)
}

// Publish delivers e to every current subscriber.
func (b *Bus) Publish(e model.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, h := range b.handlers {
		h(e)
	}
}

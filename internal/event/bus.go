package event

import (
	"sync"
	"sync/atomic"
)

// Bus dispatches events synchronously to subscribed handlers.
// Publish is safe for concurrent use; handlers run on the publisher's
// goroutine and must not block (hand off to a channel for slow work).
type Bus struct {
	mu       sync.RWMutex
	handlers map[Kind][]subscription
	all      []subscription
	nextID   uint64

	published atomic.Uint64
}

type subscription struct {
	id uint64
	fn func(Event)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Kind][]subscription)}
}

// Publish delivers e to handlers of its kind, then to catch-all handlers.
// A nil bus drops the event.
func (b *Bus) Publish(e Event) {
	if b == nil || e == nil {
		return
	}
	b.published.Add(1)

	b.mu.RLock()
	typed := b.handlers[e.Kind()]
	all := b.all
	b.mu.RUnlock()

	for _, s := range typed {
		s.fn(e)
	}
	for _, s := range all {
		s.fn(e)
	}
}

// Published returns number of events published so far.
func (b *Bus) Published() uint64 {
	return b.published.Load()
}

// SubscribeAll registers fn for every event kind.
func (b *Bus) SubscribeAll(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.all = append(b.all, subscription{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.all = without(b.all, id)
	}
}

func (b *Bus) subscribe(kind Kind, fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[kind] = append(b.handlers[kind], subscription{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.handlers[kind] = without(b.handlers[kind], id)
	}
}

// Subscribe registers a typed handler for events of type E.
//
//	event.Subscribe(bus, func(e event.EnemyDied) { ... })
func Subscribe[E Event](b *Bus, fn func(E)) (unsubscribe func()) {
	var zero E
	return b.subscribe(zero.Kind(), func(e Event) {
		if typed, ok := e.(E); ok {
			fn(typed)
		}
	})
}

// without returns a copy of subs without id. Copying keeps slices handed to
// in-flight Publish calls unchanged.
func without(subs []subscription, id uint64) []subscription {
	out := make([]subscription, 0, len(subs))
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}

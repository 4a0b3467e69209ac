// Package event provides a small synchronous publish/subscribe bus
// used to notify collaborators (highlighters, diagnostics overlays,
// document sync) about buffer changes.
package event

import (
	"sync"
)

// Topic names an event category. Handlers subscribe by exact topic.
type Topic string

// Handler receives published events for a topic.
type Handler func(event any)

// Bus delivers events synchronously on the publisher's goroutine, in
// subscription order. All methods are safe for concurrent use.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Topic][]subscription
	nextID   uint64
}

type subscription struct {
	id uint64
	fn Handler
}

// Subscription identifies a registered handler for later removal.
type Subscription struct {
	topic Topic
	id    uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Topic][]subscription)}
}

// Subscribe registers fn for topic and returns a handle to remove it.
func (b *Bus) Subscribe(topic Topic, fn Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.handlers[topic] = append(b.handlers[topic], subscription{id: b.nextID, fn: fn})
	return Subscription{topic: topic, id: b.nextID}
}

// Unsubscribe removes a previously registered handler. It is a no-op
// for an unknown subscription.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[sub.topic]
	for i, s := range subs {
		if s.id == sub.id {
			b.handlers[sub.topic] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish delivers event to every handler subscribed to topic. A
// panicking handler is recovered so one bad subscriber cannot take
// down the publisher or starve later handlers.
func (b *Bus) Publish(topic Topic, event any) {
	b.mu.RLock()
	subs := make([]subscription, len(b.handlers[topic]))
	copy(subs, b.handlers[topic])
	b.mu.RUnlock()

	for _, s := range subs {
		deliver(s.fn, event)
	}
}

func deliver(fn Handler, event any) {
	defer func() {
		_ = recover()
	}()
	fn(event)
}

// SubscriberCount returns the number of handlers on a topic.
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[topic])
}

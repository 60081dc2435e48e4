// Package events is the in-process publish/subscribe hub. Order lifecycle
// events and session change notifications both travel through it.
package events

import (
	"context"
	"sync"

	EventBus "github.com/asaskevich/EventBus"

	"eatzone/internal/infra"
)

type Handler func(data any)

type Bus struct {
	bus EventBus.Bus

	// topicMu serializes attaching and detaching dispatchers. It is held
	// while calling into EventBus, so it must never be taken by a handler.
	topicMu sync.Mutex

	mu     sync.RWMutex
	nextID int
	topics map[string]map[int]Handler
	// dispatchers holds the exact callback attached per topic, since
	// EventBus matches on it when detaching.
	dispatchers map[string]func(data any)
}

var _ infra.PublisherInterface = (*Bus)(nil)

func New() *Bus {
	return &Bus{
		bus:    EventBus.New(),
		topics:      make(map[string]map[int]Handler),
		dispatchers: make(map[string]func(data any)),
	}
}

// Publish delivers data synchronously to every subscriber of routingKey.
// Handlers must not subscribe, unsubscribe or publish on the same bus.
func (b *Bus) Publish(_ context.Context, routingKey string, data any) error {
	b.bus.Publish(routingKey, data)
	return nil
}

// Subscribe registers fn on topic and returns the function that removes it.
// EventBus identifies callbacks by code pointer, which cannot tell two
// closures of the same literal apart, so handlers are kept here and a single
// dispatcher per topic is registered with the underlying bus.
func (b *Bus) Subscribe(topic string, fn Handler) (func(), error) {
	b.topicMu.Lock()
	defer b.topicMu.Unlock()

	b.mu.RLock()
	_, attached := b.dispatchers[topic]
	b.mu.RUnlock()
	if !attached {
		d := b.dispatcher(topic)
		if err := b.bus.Subscribe(topic, d); err != nil {
			return nil, err
		}
		b.mu.Lock()
		b.dispatchers[topic] = d
		b.mu.Unlock()
	}

	b.mu.Lock()
	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[int]Handler)
		b.topics[topic] = subs
	}
	b.nextID++
	id := b.nextID
	subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(topic, id) })
	}, nil
}

func (b *Bus) HasSubscribers(topic string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic]) > 0
}

func (b *Bus) dispatcher(topic string) func(data any) {
	return func(data any) {
		b.mu.RLock()
		handlers := make([]Handler, 0, len(b.topics[topic]))
		for _, h := range b.topics[topic] {
			handlers = append(handlers, h)
		}
		b.mu.RUnlock()

		for _, h := range handlers {
			h(data)
		}
	}
}

func (b *Bus) remove(topic string, id int) {
	b.topicMu.Lock()
	defer b.topicMu.Unlock()

	b.mu.Lock()
	subs, ok := b.topics[topic]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(subs, id)
	d := b.dispatchers[topic]
	empty := len(subs) == 0 && d != nil
	if empty {
		delete(b.topics, topic)
		delete(b.dispatchers, topic)
	}
	b.mu.Unlock()

	if empty {
		// the registered dispatcher is the only callback on this topic
		_ = b.bus.Unsubscribe(topic, d)
	}
}

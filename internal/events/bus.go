// Package events provides the in-process notification bus that carries range
// selections from individual charts to the dashboard.
package events

import (
	"sync"

	"github.com/j-veylop/syncgrid-tui/internal/models"
)

// Topic names a notification channel on the bus.
type Topic string

const (
	// TopicChartSetRange carries ranges committed by a chart drag-select.
	TopicChartSetRange Topic = "charts:set-range"
	// TopicProviderSetRange carries ranges the dashboard should apply.
	TopicProviderSetRange Topic = "charts:provider:set-range"
)

// SetRangeEvent is the payload of both range topics.
type SetRangeEvent struct {
	Range models.DateRange
}

// Handler receives published events.
type Handler func(SetRangeEvent)

type subscription struct {
	id      int
	handler Handler
}

// Bus is a synchronous publish/subscribe hub. Publishing is fire-and-forget:
// handlers run in subscription order on the publisher's goroutine.
type Bus struct {
	mu     sync.RWMutex
	subs   map[Topic][]subscription
	nextID int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]subscription)}
}

// Subscribe registers a handler and returns a function that removes it.
func (b *Bus) Subscribe(topic Topic, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, handler: h})

	return func() { b.unsubscribe(topic, id) }
}

func (b *Bus) unsubscribe(topic Topic, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[topic]
	for i, s := range subs {
		if s.id == id {
			b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the event to every handler on the topic.
func (b *Bus) Publish(topic Topic, e SetRangeEvent) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.subs[topic]))
	for i, s := range b.subs[topic] {
		handlers[i] = s.handler
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}

// Bridge forwards every chart-level range to the provider-level topic,
// one to one. The returned function detaches the bridge.
func Bridge(b *Bus) func() {
	return b.Subscribe(TopicChartSetRange, func(e SetRangeEvent) {
		b.Publish(TopicProviderSetRange, e)
	})
}

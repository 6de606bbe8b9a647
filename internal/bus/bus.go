// Package bus is the in-process pub/sub registry between the server event
// stream and its consumers. Dispatch is synchronous: exact-type subscribers
// run in registration order, then wildcard subscribers in registration order.
package bus

import (
	"sync"

	"occtl/internal/logging"
	"occtl/internal/types"
)

type Handler func(event types.StreamEvent)

// Subscription identifies one registered handler. Unsubscribing removes the
// subscription by identity, so the same handler func can be registered more
// than once and removed individually.
type Subscription struct {
	eventType types.EventType
	handler   Handler
}

type Bus struct {
	mu       sync.Mutex
	handlers map[types.EventType][]*Subscription
	log      logging.Logger
}

func New(log logging.Logger) *Bus {
	if log == nil {
		log = logging.Nop()
	}
	return &Bus{
		handlers: make(map[types.EventType][]*Subscription),
		log:      log,
	}
}

func (b *Bus) Subscribe(eventType types.EventType, handler Handler) *Subscription {
	if handler == nil {
		return nil
	}
	sub := &Subscription{eventType: eventType, handler: handler}
	b.mu.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], sub)
	b.mu.Unlock()
	b.log.Debug("event handler registered", logging.F("type", string(eventType)))
	return sub
}

// Unsubscribe removes the first identity-equal registration. Removing a
// subscription that is absent is a no-op.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.handlers[sub.eventType]
	for i, candidate := range subs {
		if candidate == sub {
			b.handlers[sub.eventType] = append(subs[:i:i], subs[i+1:]...)
			b.log.Debug("event handler removed", logging.F("type", string(sub.eventType)))
			return
		}
	}
}

// Publish delivers the event to every subscriber of its exact type, then to
// every wildcard subscriber. A panicking handler is recovered and logged;
// remaining handlers still run and the publisher never sees the failure.
func (b *Bus) Publish(event types.StreamEvent) {
	b.mu.Lock()
	exact := append([]*Subscription(nil), b.handlers[event.Type]...)
	var wild []*Subscription
	if event.Type != types.EventWildcard {
		wild = append(wild, b.handlers[types.EventWildcard]...)
	}
	b.mu.Unlock()

	for _, sub := range exact {
		b.invoke(sub, event)
	}
	for _, sub := range wild {
		b.invoke(sub, event)
	}
}

func (b *Bus) invoke(sub *Subscription, event types.StreamEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked",
				logging.F("type", string(event.Type)),
				logging.F("panic", r))
		}
	}()
	sub.handler(event)
}

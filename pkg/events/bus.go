package events

import "sync"

// Handler receives a published payload and the name it was published under.
type Handler func(payload any, name string)

// SubscriptionID identifies one subscription on a Bus.
type SubscriptionID uint64

type subscription struct {
	id      SubscriptionID
	matcher Matcher
	handler Handler
}

// Bus is a name and pattern based synchronous dispatcher.
// It is safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	nextID SubscriptionID
	subs   []subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h for every name m matches.
func (b *Bus) Subscribe(m Matcher, h Handler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs = append(b.subs, subscription{id: b.nextID, matcher: m, handler: h})
	return b.nextID
}

// On registers h for the exact event name.
func (b *Bus) On(name string, h Handler) SubscriptionID {
	return b.Subscribe(Exact(name), h)
}

// Publish delivers payload to every matching handler in subscription order
// and returns the number of handlers invoked.
func (b *Bus) Publish(name string, payload any) int {
	b.mu.RLock()
	targets := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if s.matcher.Match(name) {
			targets = append(targets, s.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range targets {
		h(payload, name)
	}
	return len(targets)
}

// Unsubscribe removes one subscription. It reports whether id was registered.
func (b *Bus) Unsubscribe(id SubscriptionID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// UnsubscribeAll removes every subscription registered with a matcher equal
// to m and returns how many were removed.
func (b *Bus) UnsubscribeAll(m Matcher) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := make([]subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if !s.matcher.Equal(m) {
			kept = append(kept, s)
		}
	}
	removed := len(b.subs) - len(kept)
	b.subs = kept
	return removed
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

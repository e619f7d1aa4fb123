package clock

import (
	"context"
	"sync"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// subscriptionBuffer is how many events a subscriber may lag behind before it is dropped.
const subscriptionBuffer = 16

// hub fans events out to subscribers without ever blocking the publisher.
type hub struct {
	mu   sync.Mutex
	subs map[*subscription]struct{}
}

func newHub() *hub {
	return &hub{
		subs: make(map[*subscription]struct{}),
	}
}

// subscribe registers a subscriber that is removed when ctx ends.
func (h *hub) subscribe(ctx context.Context) *subscription {
	sub := &subscription{
		hub:  h,
		ch:   make(chan domain.Event, subscriptionBuffer),
		stop: make(chan struct{}),
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			_ = sub.Close()
		case <-sub.stop:
		}
	}()

	return sub
}

// publish delivers event to every subscriber; full subscribers are dropped.
func (h *hub) publish(event domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		select {
		case sub.ch <- event:
		default:
			h.removeLocked(sub)
		}
	}
}

// remove unregisters sub and closes its channel once.
func (h *hub) remove(sub *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(sub)
}

func (h *hub) removeLocked(sub *subscription) {
	if _, ok := h.subs[sub]; !ok {
		return
	}

	delete(h.subs, sub)
	close(sub.ch)
	close(sub.stop)
}

// subscription implements domain.Subscription.
type subscription struct {
	hub *hub
	ch  chan domain.Event
	// stop releases the context watcher.
	stop chan struct{}
}

// C returns the event channel; it is closed when the subscription ends.
func (s *subscription) C() <-chan domain.Event {
	return s.ch
}

// Close unsubscribes. It is safe to call more than once.
func (s *subscription) Close() error {
	s.hub.remove(s)

	return nil
}

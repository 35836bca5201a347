package whatsapp

import (
	"sync"
	"time"
)

// DeliveryTracker remembers recently handled message ids so that webhook
// redeliveries do not record the same sale or expense twice.
type DeliveryTracker struct {
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
	mu   sync.Mutex
}

// NewDeliveryTracker creates a tracker that forgets ids after ttl.
func NewDeliveryTracker(ttl time.Duration) *DeliveryTracker {
	return &DeliveryTracker{
		seen: make(map[string]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

// FirstDelivery records id and reports whether it had not been seen within the ttl.
func (t *DeliveryTracker) FirstDelivery(id string) bool {
	if id == "" {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	for key, at := range t.seen {
		if now.Sub(at) > t.ttl {
			delete(t.seen, key)
		}
	}

	if _, exists := t.seen[id]; exists {
		return false
	}
	t.seen[id] = now
	return true
}

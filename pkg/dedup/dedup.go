package dedup

import (
	"sync"
	"time"
)

// Window drops repeats of an id seen within the TTL. Used to discard QoS1
// redeliveries of identical payloads.
type Window struct {
	mu   sync.Mutex
	ttl  time.Duration
	cap  int
	seen map[string]time.Time
}

func New(ttl time.Duration, capacity int) *Window {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if capacity <= 0 {
		capacity = 10000
	}
	return &Window{ttl: ttl, cap: capacity, seen: make(map[string]time.Time, capacity)}
}

// Admit reports whether the id is new inside the window, recording it if
// so. An empty id is always admitted.
func (w *Window) Admit(id string) bool {
	if id == "" {
		return true
	}
	now := time.Now()
	w.mu.Lock()
	defer w.mu.Unlock()

	if exp, ok := w.seen[id]; ok && now.Before(exp) {
		return false
	}
	w.seen[id] = now.Add(w.ttl)

	// Over capacity: shed expired entries opportunistically.
	if len(w.seen) > w.cap {
		for k, exp := range w.seen {
			if now.After(exp) {
				delete(w.seen, k)
			}
			if len(w.seen) <= w.cap {
				break
			}
		}
	}
	return true
}

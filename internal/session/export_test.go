package session

import "time"

// SetClock replaces the registry's clock in tests.
func SetClock(r *Registry, now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

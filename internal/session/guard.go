package session

import "sync"

// DispatchGuard serializes everything that observes or mutates the active
// scope, the plugin registry, or the run state: change dispatch, guardfile
// reload, and signal- or console-driven scope mutation. There is no queueing
// or fairness beyond what the mutex provides; callers block until the lock is
// free.
type DispatchGuard struct {
	mu sync.Mutex
}

// Exclusive runs fn while holding the guard. The lock is released on every
// exit path, including a panic inside fn.
func (g *DispatchGuard) Exclusive(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn()
}

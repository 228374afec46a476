package syncengine

import "sync"

// LockRegistry hands out per-connection locks with try-lock semantics.
// Acquire never blocks, so an overlapping trigger can be rejected with
// Busy immediately instead of queueing a duplicate run.
type LockRegistry struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLockRegistry creates an empty lock registry
func NewLockRegistry() *LockRegistry {
	return &LockRegistry{held: make(map[string]bool)}
}

// TryAcquire takes the lock for connectionID if it is free
func (r *LockRegistry) TryAcquire(connectionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.held[connectionID] {
		return false
	}
	r.held[connectionID] = true
	return true
}

// Release frees the lock for connectionID
func (r *LockRegistry) Release(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.held, connectionID)
}

// IsHeld reports whether a sync for connectionID is in flight
func (r *LockRegistry) IsHeld(connectionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.held[connectionID]
}

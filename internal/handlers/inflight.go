package handlers

import (
	"fmt"
	"sync"
)

// InflightRegistry enforces at most one pending mutating action per
// (action, target) pair from this gateway instance. It is a busy-flag,
// not a queue: a second invocation while the first is pending is rejected
// outright and the caller must retry after the first resolves. Cross-
// instance conflicts remain the marketplace's problem to arbitrate.
type InflightRegistry struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

// NewInflightRegistry creates an empty registry
func NewInflightRegistry() *InflightRegistry {
	return &InflightRegistry{
		pending: make(map[string]struct{}),
	}
}

// Acquire marks (action, targetID) as pending. It returns false when the
// pair is already pending.
func (r *InflightRegistry) Acquire(action string, targetID int64) bool {
	key := inflightKey(action, targetID)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.pending[key]; busy {
		return false
	}

	r.pending[key] = struct{}{}
	return true
}

// Release clears the pending mark for (action, targetID)
func (r *InflightRegistry) Release(action string, targetID int64) {
	key := inflightKey(action, targetID)

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.pending, key)
}

func inflightKey(action string, targetID int64) string {
	return fmt.Sprintf("%s:%d", action, targetID)
}

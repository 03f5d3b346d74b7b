package pkg

import "sync"

// IdempotencyGuard serializes the side-effecting method notification step.
// The ACS retries callbacks at will and the gateway rejects a duplicate
// process-method call, so deduplication happens before the network call.
type IdempotencyGuard interface {
	// TryBegin atomically marks the order as being processed. Exactly one
	// concurrent caller gets true, everyone else must short-circuit.
	TryBegin(azulOrderId string) bool
	// Rollback clears the marker after a failed attempt so a legitimate
	// retry is not wedged forever.
	Rollback(azulOrderId string)
}

type memoryIdempotencyGuard struct {
	mu        sync.Mutex
	processed map[string]struct{}
}

func NewMemoryIdempotencyGuard() IdempotencyGuard {
	return &memoryIdempotencyGuard{
		processed: make(map[string]struct{}),
	}
}

func (g *memoryIdempotencyGuard) TryBegin(azulOrderId string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.processed[azulOrderId]; ok {
		return false
	}
	g.processed[azulOrderId] = struct{}{}
	return true
}

func (g *memoryIdempotencyGuard) Rollback(azulOrderId string) {
	g.mu.Lock()
	delete(g.processed, azulOrderId)
	g.mu.Unlock()
}

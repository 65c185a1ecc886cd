package subsidy

import "sync"

// Guard is a binary lock scoped to the lifetime of one orchestration
// call. It protects the whole component, not a single beneficiary: the
// underlying ledger serializes all state-mutating calls into one causal
// order, so at most one chain may be in flight.
type Guard struct {
	mu   sync.Mutex
	held bool
}

// Enter acquires the lock, failing with ErrReentrantCall if it is held.
func (g *Guard) Enter() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held {
		return ErrReentrantCall
	}
	g.held = true
	return nil
}

// Exit releases the lock. Callers defer it immediately after Enter so the
// release happens on every exit path, including failures mid-chain.
func (g *Guard) Exit() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.held = false
}

// Held reports the current lock state.
func (g *Guard) Held() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held
}

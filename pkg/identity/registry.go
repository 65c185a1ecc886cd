package identity

import (
	"context"
	"errors"
	"sync"
)

// ErrAccountUnknown is returned by registries that refuse to resolve
// unregistered accounts.
var ErrAccountUnknown = errors.New("identity: account not registered")

// KeyRegistry resolves the signer currently authorized to act for an
// account. The controlling signer may be a delegate key, so callers must
// never assume an account self-signs.
type KeyRegistry interface {
	ControllingSigner(ctx context.Context, account Address) (Address, error)
}

// InMemoryRegistry is a KeyRegistry backed by a map. Accounts with no
// registered delegate resolve to themselves.
type InMemoryRegistry struct {
	mu      sync.RWMutex
	signers map[Address]Address
}

// NewInMemoryRegistry creates an empty registry.
func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{signers: make(map[Address]Address)}
}

// Authorize registers signer as the controlling key for account,
// replacing any previous delegate.
func (r *InMemoryRegistry) Authorize(account, signer Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signers[account] = signer
}

// Revoke removes any delegate registration, restoring self-signing.
func (r *InMemoryRegistry) Revoke(account Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.signers, account)
}

// ControllingSigner implements KeyRegistry.
func (r *InMemoryRegistry) ControllingSigner(_ context.Context, account Address) (Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if signer, ok := r.signers[account]; ok {
		return signer, nil
	}
	return account, nil
}

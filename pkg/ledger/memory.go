package ledger

import (
	"context"
	"sync"

	"github.com/waldyrious/celo-monorepo/pkg/crypto"
	"github.com/waldyrious/celo-monorepo/pkg/identity"
)

type allowanceKey struct {
	owner   identity.Address
	spender identity.Address
}

// MemoryLedger is an in-process Ledger for tests and local operation.
// It enforces balances and allowances but leaves full authorization
// re-verification (nonce, replay) to the real account layer; here a
// well-formedness check stands in for it.
type MemoryLedger struct {
	mu         sync.Mutex
	balances   map[identity.Address]uint64
	allowances map[allowanceKey]uint64
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances:   make(map[identity.Address]uint64),
		allowances: make(map[allowanceKey]uint64),
	}
}

// Mint credits an account, for test and local setup.
func (l *MemoryLedger) Mint(account identity.Address, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] += amount
}

// Balance returns the current balance of an account.
func (l *MemoryLedger) Balance(account identity.Address) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account]
}

// Allowance returns the remaining allowance spender holds over owner.
func (l *MemoryLedger) Allowance(owner, spender identity.Address) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.allowances[allowanceKey{owner, spender}]
}

// AuthorizeSpend implements Ledger. The new allowance replaces any
// previous grant from owner to spender.
func (l *MemoryLedger) AuthorizeSpend(_ context.Context, owner, spender identity.Address, amount uint64, auth crypto.Signature) error {
	if !auth.WellFormed() {
		return ErrAuthorizationRejected
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.allowances[allowanceKey{owner, spender}] = amount
	return nil
}

// Transfer implements Ledger.
func (l *MemoryLedger) Transfer(_ context.Context, spender, from, to identity.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := allowanceKey{owner: from, spender: spender}
	if spender != from && l.allowances[key] < amount {
		return ErrInsufficientAllowance
	}
	if l.balances[from] < amount {
		return ErrInsufficientBalance
	}
	if spender != from {
		l.allowances[key] -= amount
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}

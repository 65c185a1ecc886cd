// Package ledger defines the value-ledger boundary the orchestrator
// drives: allowance grants and allowance-consuming transfers. The ledger
// serializes all state-mutating calls into one causal order and has no
// transactional rollback once a transfer is committed.
package ledger

import (
	"context"
	"errors"

	"github.com/waldyrious/celo-monorepo/pkg/crypto"
	"github.com/waldyrious/celo-monorepo/pkg/identity"
)

var (
	// ErrAuthorizationRejected is returned when a spend authorization is not acceptable.
	ErrAuthorizationRejected = errors.New("ledger: spend authorization rejected")
	// ErrInsufficientBalance is returned when the source account cannot cover a transfer.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")
	// ErrInsufficientAllowance is returned when the spender's allowance cannot cover a transfer.
	ErrInsufficientAllowance = errors.New("ledger: insufficient allowance")
)

// Ledger is the external value-transfer collaborator.
type Ledger interface {
	// AuthorizeSpend grants spender an allowance of amount over owner's
	// funds, on the strength of the owner's signed authorization.
	AuthorizeSpend(ctx context.Context, owner, spender identity.Address, amount uint64, auth crypto.Signature) error

	// Transfer moves amount from the from account to the to account,
	// initiated by spender. When spender differs from the source account
	// the move consumes the spender's allowance.
	Transfer(ctx context.Context, spender, from, to identity.Address, amount uint64) error
}

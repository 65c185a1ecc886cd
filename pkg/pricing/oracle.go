// Package pricing derives the total cost of a batch of metered operations
// from a per-unit price supplied by an external oracle.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/waldyrious/celo-monorepo/pkg/identity"
)

var (
	// ErrUnpricedOperation is returned when the oracle has no price for an operation.
	ErrUnpricedOperation = errors.New("pricing: no unit price for operation")
	// ErrFeeOverflow is returned when unitPrice * requestedUnits does not fit in uint64.
	ErrFeeOverflow = errors.New("pricing: fee computation overflow")
)

// Oracle supplies the current per-unit price for a metered operation.
type Oracle interface {
	CurrentUnitPrice(ctx context.Context, op identity.Operation) (uint64, error)
}

// StaticOracle is an Oracle backed by a fixed price table. Prices may be
// replaced at runtime by an operator.
type StaticOracle struct {
	mu     sync.RWMutex
	prices map[identity.Operation]uint64
}

// NewStaticOracle creates an oracle with the given initial price table.
func NewStaticOracle(prices map[identity.Operation]uint64) *StaticOracle {
	table := make(map[identity.Operation]uint64, len(prices))
	for op, p := range prices {
		table[op] = p
	}
	return &StaticOracle{prices: table}
}

// SetPrice installs or replaces the unit price for an operation.
func (o *StaticOracle) SetPrice(op identity.Operation, unitPrice uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prices[op] = unitPrice
}

// CurrentUnitPrice implements Oracle.
func (o *StaticOracle) CurrentUnitPrice(_ context.Context, op identity.Operation) (uint64, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	price, ok := o.prices[op]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnpricedOperation, op)
	}
	return price, nil
}

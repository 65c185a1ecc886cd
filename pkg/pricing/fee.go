package pricing

import (
	"context"
	"fmt"
	"math/bits"

	"github.com/waldyrious/celo-monorepo/pkg/identity"
)

// FeeCalculator computes total fees with overflow-checked arithmetic.
// Fees are expressed in the ledger's base unit; integer math only.
type FeeCalculator struct {
	oracle Oracle
}

// NewFeeCalculator creates a calculator backed by the given oracle.
func NewFeeCalculator(oracle Oracle) *FeeCalculator {
	return &FeeCalculator{oracle: oracle}
}

// TotalFee returns unitPrice(op) * requestedUnits. The multiplication is
// overflow-checked: a product that does not fit in uint64 fails with
// ErrFeeOverflow instead of wrapping.
func (c *FeeCalculator) TotalFee(ctx context.Context, op identity.Operation, requestedUnits uint64) (uint64, error) {
	unitPrice, err := c.oracle.CurrentUnitPrice(ctx, op)
	if err != nil {
		return 0, fmt.Errorf("pricing: unit price lookup failed: %w", err)
	}
	hi, lo := bits.Mul64(unitPrice, requestedUnits)
	if hi != 0 {
		return 0, ErrFeeOverflow
	}
	return lo, nil
}

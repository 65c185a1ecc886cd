package metering_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waldyrious/celo-monorepo/pkg/identity"
	"github.com/waldyrious/celo-monorepo/pkg/metering"
)

var (
	testOp      = identity.OperationFromName("attestation_request")
	otherOp     = identity.OperationFromName("sms_delivery")
	testAccount = identity.MustParseAddress("0x0000000000000000000000000000000000000001")
)

func TestMemoryMeter_ReadAndApply(t *testing.T) {
	m := metering.NewMemoryMeter()
	ctx := context.Background()

	before, err := m.ReadUsage(ctx, testOp, testAccount)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), before)

	require.NoError(t, m.ApplyConsumption(ctx, testOp, testAccount, 5))
	require.NoError(t, m.ApplyConsumption(ctx, testOp, testAccount, 3))

	after, err := m.ReadUsage(ctx, testOp, testAccount)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), after)
}

func TestMemoryMeter_CountersAreIndependent(t *testing.T) {
	m := metering.NewMemoryMeter()
	ctx := context.Background()

	require.NoError(t, m.ApplyConsumption(ctx, testOp, testAccount, 5))

	usage, err := m.ReadUsage(ctx, otherOp, testAccount)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), usage, "different operation must have its own counter")
}

func TestMemoryMeter_ZeroUnits(t *testing.T) {
	m := metering.NewMemoryMeter()
	err := m.ApplyConsumption(context.Background(), testOp, testAccount, 0)
	assert.ErrorIs(t, err, metering.ErrZeroUnits)
}

func TestMemoryMeter_Overflow(t *testing.T) {
	m := metering.NewMemoryMeter()
	ctx := context.Background()

	require.NoError(t, m.ApplyConsumption(ctx, testOp, testAccount, math.MaxUint64))
	err := m.ApplyConsumption(ctx, testOp, testAccount, 1)
	assert.ErrorIs(t, err, metering.ErrCounterOverflow)
}

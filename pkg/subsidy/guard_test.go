package subsidy_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waldyrious/celo-monorepo/pkg/audit"
	"github.com/waldyrious/celo-monorepo/pkg/crypto"
	"github.com/waldyrious/celo-monorepo/pkg/identity"
	"github.com/waldyrious/celo-monorepo/pkg/ledger"
	"github.com/waldyrious/celo-monorepo/pkg/metering"
	"github.com/waldyrious/celo-monorepo/pkg/policy"
	"github.com/waldyrious/celo-monorepo/pkg/pricing"
	"github.com/waldyrious/celo-monorepo/pkg/subsidy"
)

func TestGuard_EnterExit(t *testing.T) {
	var g subsidy.Guard

	require.NoError(t, g.Enter())
	assert.True(t, g.Held())

	err := g.Enter()
	assert.ErrorIs(t, err, subsidy.ErrReentrantCall)

	g.Exit()
	assert.False(t, g.Held())
	require.NoError(t, g.Enter(), "the lock is reusable after release")
	g.Exit()
}

// reentrantMeter calls back into the orchestrator from inside the chain,
// simulating a downstream collaborator that re-enters during an external
// call.
type reentrantMeter struct {
	inner   *metering.MemoryMeter
	orch    *subsidy.Orchestrator
	request subsidy.Request
	callErr error
}

func (m *reentrantMeter) ReadUsage(ctx context.Context, op identity.Operation, account identity.Address) (uint64, error) {
	if m.orch != nil {
		_, m.callErr = m.orch.ExecuteSubsidizedChain(ctx, m.request)
		m.orch = nil // only re-enter once
	}
	return m.inner.ReadUsage(ctx, op, account)
}

func (m *reentrantMeter) ApplyConsumption(ctx context.Context, op identity.Operation, account identity.Address, units uint64) error {
	return m.inner.ApplyConsumption(ctx, op, account, units)
}

func TestExecuteSubsidizedChain_ReentrantInvocationFails(t *testing.T) {
	beneficiary, err := crypto.NewSigner()
	require.NoError(t, err)

	pol, err := policy.New(adminAddr, policy.Config{MaxUnitsPerRequest: 10})
	require.NoError(t, err)
	oracle := pricing.NewStaticOracle(map[identity.Operation]uint64{testOp: 2})
	led := ledger.NewMemoryLedger()
	led.Mint(beneficiary.Address(), 1000)
	meter := &reentrantMeter{inner: metering.NewMemoryMeter()}

	orch, err := subsidy.NewOrchestrator(subsidy.Deps{
		Policy:   pol,
		Fees:     pricing.NewFeeCalculator(oracle),
		Verifier: crypto.NewVerifier(identity.NewInMemoryRegistry()),
		Meter:    meter,
		Ledger:   led,
		Relay:    relayAddr,
		Audit:    audit.NewLoggerWithWriter(&bytes.Buffer{}),
	})
	require.NoError(t, err)

	approvalDigest, err := crypto.ApprovalDigest(beneficiary.Address(), relayAddr, 10)
	require.NoError(t, err)
	approvalSig, err := beneficiary.Sign(approvalDigest)
	require.NoError(t, err)
	consumptionDigest, err := crypto.ConsumptionDigest(beneficiary.Address(), testOp, 5)
	require.NoError(t, err)
	consumptionSig, err := beneficiary.Sign(consumptionDigest)
	require.NoError(t, err)

	req := subsidy.Request{
		Beneficiary:    beneficiary.Address(),
		Operation:      testOp,
		RequestedUnits: 5,
		Approval:       subsidy.AuthorizedAction{Signer: beneficiary.Address(), Operation: testOp, Sig: approvalSig},
		Consumption:    subsidy.AuthorizedAction{Signer: beneficiary.Address(), Operation: testOp, Sig: consumptionSig},
	}
	meter.orch = orch
	meter.request = req

	// The outer call succeeds; the nested call made from inside the
	// chain fails with ErrReentrantCall.
	_, err = orch.ExecuteSubsidizedChain(context.Background(), req)
	require.NoError(t, err)
	assert.ErrorIs(t, meter.callErr, subsidy.ErrReentrantCall)
	assert.False(t, orch.LockHeld())
}

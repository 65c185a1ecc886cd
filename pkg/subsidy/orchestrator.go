// Package subsidy implements the subsidized meta-transaction orchestrator:
// it accepts two independently-signed authorizations from a beneficiary,
// verifies them, and executes the authorize-spend, fund-relay, consume
// chain as a single guarded unit, proving afterwards that the paid-for
// effect actually occurred.
package subsidy

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/waldyrious/celo-monorepo/pkg/audit"
	"github.com/waldyrious/celo-monorepo/pkg/crypto"
	"github.com/waldyrious/celo-monorepo/pkg/escalation"
	"github.com/waldyrious/celo-monorepo/pkg/identity"
	"github.com/waldyrious/celo-monorepo/pkg/ledger"
	"github.com/waldyrious/celo-monorepo/pkg/metering"
	"github.com/waldyrious/celo-monorepo/pkg/observability"
	"github.com/waldyrious/celo-monorepo/pkg/policy"
	"github.com/waldyrious/celo-monorepo/pkg/pricing"
)

// Deps are the orchestrator's collaborators. Policy, Fees, Verifier,
// Meter and Ledger are required; Audit, Pager and Obs default to
// stdout audit, log paging and no-op telemetry.
type Deps struct {
	Policy   *policy.SubsidyPolicy
	Fees     *pricing.FeeCalculator
	Verifier *crypto.Verifier
	Meter    metering.Meter
	Ledger   ledger.Ledger
	Relay    identity.Address
	Audit    audit.Logger
	Pager    escalation.Pager
	Obs      *observability.Provider
}

// Orchestrator composes the subsidy chain. One instance guards the whole
// component; concurrent calls beyond the first in flight fail with
// ErrReentrantCall.
type Orchestrator struct {
	policy   *policy.SubsidyPolicy
	fees     *pricing.FeeCalculator
	verifier *crypto.Verifier
	meter    metering.Meter
	ledger   ledger.Ledger
	relay    identity.Address
	audit    audit.Logger
	pager    escalation.Pager
	obs      *observability.Provider
	guard    Guard
	logger   *slog.Logger
}

// NewOrchestrator wires the orchestrator from its collaborators.
func NewOrchestrator(deps Deps) (*Orchestrator, error) {
	if deps.Policy == nil || deps.Fees == nil || deps.Verifier == nil || deps.Meter == nil || deps.Ledger == nil {
		return nil, fmt.Errorf("subsidy: missing required collaborator")
	}
	if deps.Relay.IsZero() {
		return nil, fmt.Errorf("subsidy: relay account must be configured")
	}
	if deps.Audit == nil {
		deps.Audit = audit.NewLogger()
	}
	if deps.Pager == nil {
		deps.Pager = escalation.NewLogPager()
	}
	return &Orchestrator{
		policy:   deps.Policy,
		fees:     deps.Fees,
		verifier: deps.Verifier,
		meter:    deps.Meter,
		ledger:   deps.Ledger,
		relay:    deps.Relay,
		audit:    deps.Audit,
		pager:    deps.Pager,
		obs:      deps.Obs,
		logger:   slog.Default().With("component", "subsidy.orchestrator"),
	}, nil
}

// SetLimit updates the per-request unit ceiling. Administrator-only.
func (o *Orchestrator) SetLimit(ctx context.Context, caller identity.Address, newLimit uint64) error {
	return o.policy.SetLimit(ctx, caller, newLimit)
}

// LockHeld reports the reentrancy lock state, for invariant checks.
func (o *Orchestrator) LockHeld() bool {
	return o.guard.Held()
}

// ExecuteSubsidizedChain runs the full authorize-spend, fund-relay,
// consume chain for one request.
//
// Preconditions are checked in order, first failure wins: request shape,
// unit ceiling, reentrancy lock. Only then does any downstream call
// happen. After the consume step the usage counter must have advanced by
// exactly RequestedUnits; any other delta is fatal and pages an operator.
//
// A consumption-signature failure after the transfer leaves the relay
// holding the moved funds: the ledger has no rollback primitive, so this
// partial state is surfaced as ErrSignatureRejected and the caller must
// start over with fresh authorizations.
func (o *Orchestrator) ExecuteSubsidizedChain(ctx context.Context, req Request) (event *Event, err error) {
	if o.obs != nil {
		var done func(error)
		ctx, done = o.obs.TrackOperation(ctx, "subsidy.execute_chain",
			attribute.String("beneficiary", req.Beneficiary.String()),
			attribute.String("operation", req.Operation.String()),
		)
		defer func() { done(err) }()
	}

	if err = req.validateShape(); err != nil {
		return nil, err
	}
	if !o.policy.CheckWithinLimit(req.RequestedUnits) {
		return nil, fmt.Errorf("%w: %d units, limit %d", ErrLimitExceeded, req.RequestedUnits, o.policy.Limit())
	}
	if err = o.guard.Enter(); err != nil {
		return nil, err
	}
	defer o.guard.Exit()

	usageBefore, err := o.meter.ReadUsage(ctx, req.Operation, req.Beneficiary)
	if err != nil {
		return nil, fmt.Errorf("subsidy: usage read failed: %w", err)
	}

	totalFee, err := o.fees.TotalFee(ctx, req.Operation, req.RequestedUnits)
	if err != nil {
		return nil, err
	}

	// The approval authorizes the relay to move totalFee of the
	// beneficiary's funds. Nothing has been committed yet, so a failure
	// here needs no unwinding beyond the lock release.
	approvalDigest, err := crypto.ApprovalDigest(req.Beneficiary, o.relay, totalFee)
	if err != nil {
		return nil, fmt.Errorf("subsidy: approval digest failed: %w", err)
	}
	if !o.verifier.Verify(ctx, req.Beneficiary, approvalDigest, req.Approval.Sig) {
		return nil, fmt.Errorf("%w: approval", ErrSignatureRejected)
	}

	if err = o.ledger.AuthorizeSpend(ctx, req.Beneficiary, o.relay, totalFee, req.Approval.Sig); err != nil {
		return nil, fmt.Errorf("subsidy: spend authorization failed: %w", err)
	}
	if err = o.ledger.Transfer(ctx, o.relay, req.Beneficiary, o.relay, totalFee); err != nil {
		return nil, fmt.Errorf("subsidy: funding transfer failed: %w", err)
	}

	// The consumption authorization is deliberately checked only after
	// the transfer: the two signatures cover two distinct operations
	// signed once off-chain, and the consume side effect must not happen
	// before its own authorization is confirmed. A failure here is a
	// genuine partial-failure state: the funds have moved and stay with
	// the relay.
	consumptionDigest, err := crypto.ConsumptionDigest(req.Beneficiary, req.Operation, req.RequestedUnits)
	if err != nil {
		return nil, fmt.Errorf("subsidy: consumption digest failed: %w", err)
	}
	if !o.verifier.Verify(ctx, req.Beneficiary, consumptionDigest, req.Consumption.Sig) {
		o.logger.WarnContext(ctx, "consumption authorization rejected after transfer; relay holds unconsumed funds",
			"beneficiary", req.Beneficiary.String(),
			"total_fee", totalFee,
		)
		return nil, fmt.Errorf("%w: consumption", ErrSignatureRejected)
	}

	if err = o.meter.ApplyConsumption(ctx, req.Operation, req.Beneficiary, req.RequestedUnits); err != nil {
		return nil, fmt.Errorf("subsidy: consume failed: %w", err)
	}

	usageAfter, err := o.meter.ReadUsage(ctx, req.Operation, req.Beneficiary)
	if err != nil {
		return nil, fmt.Errorf("subsidy: usage re-read failed: %w", err)
	}
	if usageAfter-usageBefore != req.RequestedUnits {
		pageErr := o.pager.Page(ctx, escalation.SeverityCritical,
			"usage counter diverged from requested units",
			map[string]any{
				"beneficiary":    req.Beneficiary.String(),
				"operation":      req.Operation.String(),
				"expected_delta": req.RequestedUnits,
				"usage_before":   usageBefore,
				"usage_after":    usageAfter,
			})
		if pageErr != nil {
			o.logger.ErrorContext(ctx, "operator page failed", "error", pageErr)
		}
		return nil, fmt.Errorf("%w: expected +%d, observed %d -> %d",
			ErrInvariantViolation, req.RequestedUnits, usageBefore, usageAfter)
	}

	event = newEvent(req, totalFee)
	if auditErr := o.audit.Record(ctx, audit.EventSubsidy, "subsidized_chain", req.Beneficiary.String(), map[string]any{
		"event_id":  event.ID,
		"operation": req.Operation.String(),
		"units":     req.RequestedUnits,
		"total_fee": totalFee,
	}); auditErr != nil {
		o.logger.ErrorContext(ctx, "audit record failed", "error", auditErr)
	}
	o.logger.InfoContext(ctx, "subsidized chain completed",
		"beneficiary", req.Beneficiary.String(),
		"units", req.RequestedUnits,
		"total_fee", totalFee,
	)
	return event, nil
}

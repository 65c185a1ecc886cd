package subsidy

import (
	"time"

	"github.com/google/uuid"

	"github.com/waldyrious/celo-monorepo/pkg/crypto"
	"github.com/waldyrious/celo-monorepo/pkg/identity"
)

// AuthorizedAction is a single-use, off-chain authorization produced by
// the beneficiary's controlling key. It is consumed by exactly one
// orchestration call and never persisted; replay is prevented by the
// nonce bound into the signed payload at the account layer.
type AuthorizedAction struct {
	Signer    identity.Address
	Operation identity.Operation
	Sig       crypto.Signature
}

// Request is the transient input to one orchestration call.
type Request struct {
	Beneficiary    identity.Address
	Operation      identity.Operation
	RequestedUnits uint64
	Approval       AuthorizedAction
	Consumption    AuthorizedAction
}

// validateShape checks the request form: both authorizations present and
// well-formed, signed by the beneficiary, and bound to the requested
// operation. First failure wins; no downstream call happens before this.
func (r Request) validateShape() error {
	if r.Beneficiary.IsZero() {
		return ErrMalformedRequest
	}
	if r.RequestedUnits == 0 {
		return ErrMalformedRequest
	}
	if !r.Approval.Sig.WellFormed() || !r.Consumption.Sig.WellFormed() {
		return ErrMalformedRequest
	}
	if r.Approval.Signer != r.Beneficiary || r.Consumption.Signer != r.Beneficiary {
		return ErrMalformedRequest
	}
	if r.Consumption.Operation != r.Operation {
		return ErrMalformedRequest
	}
	return nil
}

// Event is the append-only audit record emitted once per successful
// orchestration.
type Event struct {
	ID          string             `json:"id"`
	Beneficiary identity.Address   `json:"beneficiary"`
	Operation   identity.Operation `json:"operation"`
	Units       uint64             `json:"units"`
	TotalFee    uint64             `json:"total_fee"`
	Timestamp   time.Time          `json:"timestamp"`
}

func newEvent(req Request, totalFee uint64) *Event {
	return &Event{
		ID:          uuid.New().String(),
		Beneficiary: req.Beneficiary,
		Operation:   req.Operation,
		Units:       req.RequestedUnits,
		TotalFee:    totalFee,
		Timestamp:   time.Now().UTC(),
	}
}

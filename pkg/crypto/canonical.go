package crypto

import (
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
	"golang.org/x/crypto/sha3"

	"github.com/waldyrious/celo-monorepo/pkg/identity"
)

// ApprovalMessage is the payload signed to authorize a spender to move
// value on the owner's behalf.
type ApprovalMessage struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Value   uint64 `json:"value"`
}

// ConsumptionMessage is the payload signed to authorize the metered
// operation itself.
type ConsumptionMessage struct {
	Account   string `json:"account"`
	Operation string `json:"operation"`
	Units     uint64 `json:"units"`
}

// CanonicalDigest marshals v, canonicalizes the JSON per RFC 8785, and
// returns the Keccak-256 digest of the canonical form. Signing and
// verification must both go through this function so that field order and
// whitespace never affect the signed bytes.
func CanonicalDigest(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("crypto: canonical encoding failed: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("crypto: canonical transform failed: %w", err)
	}
	h := sha3.NewLegacyKeccak256()
	h.Write(canonical)
	return h.Sum(nil), nil
}

// ApprovalDigest builds the digest for a spend approval.
func ApprovalDigest(owner, spender identity.Address, value uint64) ([]byte, error) {
	return CanonicalDigest(ApprovalMessage{
		Owner:   owner.String(),
		Spender: spender.String(),
		Value:   value,
	})
}

// ConsumptionDigest builds the digest for a metered-operation authorization.
func ConsumptionDigest(account identity.Address, op identity.Operation, units uint64) ([]byte, error) {
	return CanonicalDigest(ConsumptionMessage{
		Account:   account.String(),
		Operation: op.String(),
		Units:     units,
	})
}

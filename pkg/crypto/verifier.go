package crypto

import (
	"context"
	"log/slog"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/waldyrious/celo-monorepo/pkg/identity"
)

// Verifier checks that an authorization was produced by the key currently
// controlling an account. The controlling key is resolved through the key
// registry and may be a delegate, never assumed to be the account itself.
type Verifier struct {
	registry identity.KeyRegistry
	logger   *slog.Logger
}

// NewVerifier creates a Verifier backed by the given registry.
func NewVerifier(registry identity.KeyRegistry) *Verifier {
	return &Verifier{
		registry: registry,
		logger:   slog.Default().With("component", "crypto.verifier"),
	}
}

// RecoverSigner recovers the address that signed digest. Fails closed:
// any malformed input yields an error, never a panic.
func RecoverSigner(digest []byte, sig Signature) (identity.Address, error) {
	var zero identity.Address
	if !sig.WellFormed() {
		return zero, ErrMalformedSignature
	}
	pub, _, err := ecdsa.RecoverCompact(sig.Compact(), digest)
	if err != nil {
		return zero, err
	}
	return identity.AddressFromPubKey(pub.SerializeUncompressed())
}

// Verify reports whether sig over digest was produced by the controlling
// key of signerAccount. All failure modes return false; nothing escapes
// this boundary as an error or panic.
func (v *Verifier) Verify(ctx context.Context, signerAccount identity.Address, digest []byte, sig Signature) bool {
	recovered, err := RecoverSigner(digest, sig)
	if err != nil {
		v.logger.DebugContext(ctx, "signature recovery failed", "account", signerAccount.String(), "error", err)
		return false
	}
	controlling, err := v.registry.ControllingSigner(ctx, signerAccount)
	if err != nil {
		v.logger.WarnContext(ctx, "key registry lookup failed", "account", signerAccount.String(), "error", err)
		return false
	}
	return recovered == controlling
}

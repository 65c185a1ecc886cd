package crypto

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/waldyrious/celo-monorepo/pkg/identity"
)

// Signer produces recoverable signature triples from a secp256k1 private
// key. Production authorizations are signed off-chain by wallets; this
// signer exists for local operation and tests.
type Signer struct {
	key  *secp256k1.PrivateKey
	addr identity.Address
}

// NewSigner generates a fresh keypair.
func NewSigner() (*Signer, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("crypto: key generation failed: %w", err)
	}
	return NewSignerFromKey(key)
}

// NewSignerFromKey wraps an existing private key.
func NewSignerFromKey(key *secp256k1.PrivateKey) (*Signer, error) {
	addr, err := identity.AddressFromPubKey(key.PubKey().SerializeUncompressed())
	if err != nil {
		return nil, err
	}
	return &Signer{key: key, addr: addr}, nil
}

// Address returns the signer's account address.
func (s *Signer) Address() identity.Address {
	return s.addr
}

// Sign signs a 32-byte digest and returns the recoverable triple.
func (s *Signer) Sign(digest []byte) (Signature, error) {
	compact := ecdsa.SignCompact(s.key, digest, false)
	return SignatureFromCompact(compact)
}

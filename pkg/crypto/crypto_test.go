package crypto_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waldyrious/celo-monorepo/pkg/crypto"
	"github.com/waldyrious/celo-monorepo/pkg/identity"
)

func TestCanonicalDigest_FieldOrderIndependent(t *testing.T) {
	d1, err := crypto.CanonicalDigest(map[string]any{"a": 1, "b": "x"})
	require.NoError(t, err)
	d2, err := crypto.CanonicalDigest(map[string]any{"b": "x", "a": 1})
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
	assert.Len(t, d1, 32)
}

func TestSignAndRecover(t *testing.T) {
	signer, err := crypto.NewSigner()
	require.NoError(t, err)

	digest, err := crypto.ApprovalDigest(signer.Address(), signer.Address(), 100)
	require.NoError(t, err)

	sig, err := signer.Sign(digest)
	require.NoError(t, err)
	assert.True(t, sig.WellFormed())

	recovered, err := crypto.RecoverSigner(digest, sig)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), recovered)
}

func TestVerify_SelfSigned(t *testing.T) {
	signer, err := crypto.NewSigner()
	require.NoError(t, err)

	reg := identity.NewInMemoryRegistry()
	verifier := crypto.NewVerifier(reg)

	digest, err := crypto.ConsumptionDigest(signer.Address(), identity.OperationFromName("attestation_request"), 5)
	require.NoError(t, err)
	sig, err := signer.Sign(digest)
	require.NoError(t, err)

	assert.True(t, verifier.Verify(context.Background(), signer.Address(), digest, sig))
}

func TestVerify_DelegateSigner(t *testing.T) {
	delegate, err := crypto.NewSigner()
	require.NoError(t, err)
	account := identity.MustParseAddress("0x00000000000000000000000000000000000000aa")

	reg := identity.NewInMemoryRegistry()
	reg.Authorize(account, delegate.Address())
	verifier := crypto.NewVerifier(reg)

	digest, err := crypto.ApprovalDigest(account, delegate.Address(), 42)
	require.NoError(t, err)
	sig, err := delegate.Sign(digest)
	require.NoError(t, err)

	// The delegate's signature verifies for the account it controls.
	assert.True(t, verifier.Verify(context.Background(), account, digest, sig))
	// But not for some other account.
	other := identity.MustParseAddress("0x00000000000000000000000000000000000000bb")
	assert.False(t, verifier.Verify(context.Background(), other, digest, sig))
}

func TestVerify_WrongDigestFailsClosed(t *testing.T) {
	signer, err := crypto.NewSigner()
	require.NoError(t, err)
	verifier := crypto.NewVerifier(identity.NewInMemoryRegistry())

	digest, err := crypto.ApprovalDigest(signer.Address(), signer.Address(), 1)
	require.NoError(t, err)
	sig, err := signer.Sign(digest)
	require.NoError(t, err)

	tampered, err := crypto.ApprovalDigest(signer.Address(), signer.Address(), 2)
	require.NoError(t, err)

	assert.False(t, verifier.Verify(context.Background(), signer.Address(), tampered, sig))
}

func TestVerify_MalformedSignatureFailsClosed(t *testing.T) {
	verifier := crypto.NewVerifier(identity.NewInMemoryRegistry())
	account := identity.MustParseAddress("0x00000000000000000000000000000000000000aa")

	var sig crypto.Signature // zero triple, not well-formed
	assert.False(t, verifier.Verify(context.Background(), account, make([]byte, 32), sig))

	sig.V = 26 // out-of-range recovery id
	sig.R[0] = 1
	sig.S[0] = 1
	assert.False(t, sig.WellFormed())
	assert.False(t, verifier.Verify(context.Background(), account, make([]byte, 32), sig))
}

func TestSignatureCompactRoundTrip(t *testing.T) {
	signer, err := crypto.NewSigner()
	require.NoError(t, err)
	digest, err := crypto.CanonicalDigest(map[string]any{"k": "v"})
	require.NoError(t, err)
	sig, err := signer.Sign(digest)
	require.NoError(t, err)

	parsed, err := crypto.SignatureFromCompact(sig.Compact())
	require.NoError(t, err)
	assert.Equal(t, sig, parsed)

	_, err = crypto.SignatureFromCompact(sig.Compact()[:64])
	assert.ErrorIs(t, err, crypto.ErrMalformedSignature)
}

package identity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waldyrious/celo-monorepo/pkg/identity"
)

func TestParseAddress(t *testing.T) {
	a, err := identity.ParseAddress("0x1122334455667788990011223344556677889900")
	require.NoError(t, err)
	assert.Equal(t, "0x1122334455667788990011223344556677889900", a.String())
	assert.False(t, a.IsZero())
}

func TestParseAddress_Invalid(t *testing.T) {
	_, err := identity.ParseAddress("0x1234")
	assert.ErrorIs(t, err, identity.ErrInvalidAddress)

	_, err = identity.ParseAddress("0xzz22334455667788990011223344556677889900")
	assert.ErrorIs(t, err, identity.ErrInvalidAddress)
}

func TestAddressFromPubKey_RejectsCompressed(t *testing.T) {
	_, err := identity.AddressFromPubKey(make([]byte, 33))
	assert.ErrorIs(t, err, identity.ErrInvalidAddress)
}

func TestOperationFromName_Stable(t *testing.T) {
	op1 := identity.OperationFromName("attestation_request")
	op2 := identity.OperationFromName("attestation_request")
	other := identity.OperationFromName("sms_delivery")

	assert.Equal(t, op1, op2)
	assert.NotEqual(t, op1, other)

	parsed, err := identity.ParseOperation(op1.String())
	require.NoError(t, err)
	assert.Equal(t, op1, parsed)
}

func TestInMemoryRegistry_DefaultsToSelf(t *testing.T) {
	reg := identity.NewInMemoryRegistry()
	account := identity.MustParseAddress("0x0000000000000000000000000000000000000001")

	signer, err := reg.ControllingSigner(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, account, signer)
}

func TestInMemoryRegistry_DelegateAndRevoke(t *testing.T) {
	reg := identity.NewInMemoryRegistry()
	account := identity.MustParseAddress("0x0000000000000000000000000000000000000001")
	delegate := identity.MustParseAddress("0x0000000000000000000000000000000000000002")

	reg.Authorize(account, delegate)
	signer, err := reg.ControllingSigner(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, delegate, signer)

	reg.Revoke(account)
	signer, err = reg.ControllingSigner(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, account, signer)
}

package validation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/waldyrious/celo-monorepo/pkg/validation"
)

func TestValidAddressHex(t *testing.T) {
	assert.True(t, validation.ValidAddressHex("0x1122334455667788990011223344556677889900"))
	assert.False(t, validation.ValidAddressHex("1122334455667788990011223344556677889900"), "missing 0x prefix")
	assert.False(t, validation.ValidAddressHex("0x112233"), "too short")
	assert.False(t, validation.ValidAddressHex("0xzz22334455667788990011223344556677889900"), "non-hex")
}

func TestValidHash32Hex(t *testing.T) {
	assert.True(t, validation.ValidHash32Hex("0x"+string(make64hex())))
	assert.False(t, validation.ValidHash32Hex("0x1234"), "not 32 bytes")
}

func make64hex() []byte {
	out := make([]byte, 64)
	for i := range out {
		out[i] = 'a'
	}
	return out
}

func TestWithinSizeLimit(t *testing.T) {
	assert.True(t, validation.WithinSizeLimit(0))
	assert.True(t, validation.WithinSizeLimit(validation.MaxPayloadBytes))
	assert.False(t, validation.WithinSizeLimit(validation.MaxPayloadBytes+1))
	assert.False(t, validation.WithinSizeLimit(-1))
}

func TestFreshTimestamp(t *testing.T) {
	now := time.Now()

	assert.True(t, validation.FreshTimestamp(time.Time{}, now, validation.DefaultExpiryWindow), "zero timestamp passes while timestamps are optional")
	assert.True(t, validation.FreshTimestamp(now.Add(-time.Minute), now, validation.DefaultExpiryWindow))
	assert.False(t, validation.FreshTimestamp(now.Add(-10*time.Minute), now, validation.DefaultExpiryWindow), "stale")
	assert.False(t, validation.FreshTimestamp(now.Add(time.Minute), now, validation.DefaultExpiryWindow), "future")
}

func TestValidateExecutePayload(t *testing.T) {
	valid := `{
		"beneficiary": "0x1122334455667788990011223344556677889900",
		"operation": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		"requested_units": 5,
		"approval": {"v": 27, "r": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "s": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"},
		"consumption": {"v": 28, "r": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "s": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}
	}`
	assert.NoError(t, validation.ValidateExecutePayload([]byte(valid)))
}

func TestValidateExecutePayload_Rejections(t *testing.T) {
	cases := map[string]string{
		"not json":          `{`,
		"missing approval":  `{"beneficiary": "0x1122334455667788990011223344556677889900", "operation": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "requested_units": 5, "consumption": {"v": 27, "r": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "s": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}}`,
		"zero units":        `{"beneficiary": "0x1122334455667788990011223344556677889900", "operation": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "requested_units": 0, "approval": {"v": 27, "r": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "s": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}, "consumption": {"v": 27, "r": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "s": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}}`,
		"bad address":       `{"beneficiary": "not-an-address", "operation": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "requested_units": 5, "approval": {"v": 27, "r": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "s": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}, "consumption": {"v": 27, "r": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "s": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}}`,
		"bad recovery code": `{"beneficiary": "0x1122334455667788990011223344556677889900", "operation": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "requested_units": 5, "approval": {"v": 26, "r": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "s": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}, "consumption": {"v": 27, "r": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "s": "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, validation.ValidateExecutePayload([]byte(payload)))
		})
	}
}

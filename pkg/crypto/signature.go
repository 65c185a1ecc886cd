// Package crypto implements recoverable-signature verification for
// off-chain authorizations: canonical message encoding (RFC 8785),
// Keccak-256 digests, and registry-aware signer recovery.
package crypto

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrMalformedSignature is returned when signature components fail shape checks.
var ErrMalformedSignature = errors.New("crypto: malformed signature components")

// CompactSigLength is the serialized length of a recoverable signature.
const CompactSigLength = 65

// Signature is a standard recoverable-signature triple.
type Signature struct {
	V uint8    `json:"v"`
	R [32]byte `json:"r"`
	S [32]byte `json:"s"`
}

// WellFormed reports whether the components are plausibly a signature:
// recovery id in {27, 28} and non-zero R and S. It says nothing about
// validity against any message.
func (s Signature) WellFormed() bool {
	if s.V != 27 && s.V != 28 {
		return false
	}
	if s.R == ([32]byte{}) || s.S == ([32]byte{}) {
		return false
	}
	return true
}

// Compact serializes the signature in recovery-code-first compact form.
func (s Signature) Compact() []byte {
	out := make([]byte, CompactSigLength)
	out[0] = s.V
	copy(out[1:33], s.R[:])
	copy(out[33:], s.S[:])
	return out
}

// SignatureFromCompact parses a compact serialization produced by Compact.
func SignatureFromCompact(raw []byte) (Signature, error) {
	var sig Signature
	if len(raw) != CompactSigLength {
		return sig, fmt.Errorf("%w: got %d bytes, want %d", ErrMalformedSignature, len(raw), CompactSigLength)
	}
	sig.V = raw[0]
	copy(sig.R[:], raw[1:33])
	copy(sig.S[:], raw[33:])
	if !sig.WellFormed() {
		return sig, ErrMalformedSignature
	}
	return sig, nil
}

// ComponentFromHex decodes a 0x-prefixed 32-byte hex component (r or s).
func ComponentFromHex(s string) ([32]byte, error) {
	var out [32]byte
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("%w: got %d bytes, want 32", ErrMalformedSignature, len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

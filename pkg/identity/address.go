// Package identity defines account and operation identifiers and the
// key-registry abstraction used to resolve an account's controlling signer.
package identity

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

var (
	// ErrInvalidAddress is returned when parsing a malformed account address.
	ErrInvalidAddress = errors.New("identity: invalid address")
	// ErrInvalidOperation is returned when parsing a malformed operation identifier.
	ErrInvalidOperation = errors.New("identity: invalid operation identifier")
)

// AddressLength is the byte length of an account address.
const AddressLength = 20

// OperationLength is the byte length of an operation identifier.
const OperationLength = 32

// Address is a 20-byte account identifier.
type Address [AddressLength]byte

// Operation is a 32-byte metered-operation identifier.
type Operation [OperationLength]byte

// ParseAddress parses a 0x-prefixed hex account address.
func ParseAddress(s string) (Address, error) {
	var a Address
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(raw) != AddressLength {
		return a, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidAddress, len(raw), AddressLength)
	}
	copy(a[:], raw)
	return a, nil
}

// MustParseAddress parses a hex address and panics on failure.
// Intended for tests and static configuration.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the 0x-prefixed lowercase hex form.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// IsZero reports whether the address is all zero bytes.
func (a Address) IsZero() bool {
	return a == Address{}
}

// MarshalJSON encodes the address as a 0x-prefixed hex string.
func (a Address) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON decodes a 0x-prefixed hex string.
func (a *Address) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// AddressFromPubKey derives the account address from an uncompressed
// secp256k1 public key (65 bytes, 0x04 prefix): the last 20 bytes of the
// Keccak-256 digest of the key material.
func AddressFromPubKey(uncompressed []byte) (Address, error) {
	var a Address
	if len(uncompressed) != 65 || uncompressed[0] != 0x04 {
		return a, fmt.Errorf("%w: want 65-byte uncompressed public key", ErrInvalidAddress)
	}
	h := sha3.NewLegacyKeccak256()
	h.Write(uncompressed[1:])
	sum := h.Sum(nil)
	copy(a[:], sum[len(sum)-AddressLength:])
	return a, nil
}

// ParseOperation parses a 0x-prefixed hex operation identifier.
func ParseOperation(s string) (Operation, error) {
	var op Operation
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return op, fmt.Errorf("%w: %v", ErrInvalidOperation, err)
	}
	if len(raw) != OperationLength {
		return op, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidOperation, len(raw), OperationLength)
	}
	copy(op[:], raw)
	return op, nil
}

// OperationFromName derives a stable operation identifier from a
// human-readable service name.
func OperationFromName(name string) Operation {
	var op Operation
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(name))
	copy(op[:], h.Sum(nil))
	return op
}

// String returns the 0x-prefixed lowercase hex form.
func (op Operation) String() string {
	return "0x" + hex.EncodeToString(op[:])
}

// MarshalJSON encodes the operation identifier as a 0x-prefixed hex string.
func (op Operation) MarshalJSON() ([]byte, error) {
	return []byte(`"` + op.String() + `"`), nil
}

// UnmarshalJSON decodes a 0x-prefixed hex string.
func (op *Operation) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOperation, err)
	}
	parsed, err := ParseOperation(s)
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}

func unquote(data []byte) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", err
	}
	return s, nil
}

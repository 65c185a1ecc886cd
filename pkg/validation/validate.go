// Package validation rejects malformed inbound payloads before they reach
// the orchestrator. All checks are pure boolean predicates over untrusted
// input; nothing here holds state.
package validation

import (
	"encoding/hex"
	"strings"
	"time"
)

// MaxPayloadBytes is the upper bound on an inbound request body.
const MaxPayloadBytes = 16 * 1024

// DefaultExpiryWindow is how old a supplied timestamp may be before the
// request is considered stale.
const DefaultExpiryWindow = 5 * time.Minute

// ValidAddressHex reports whether s is a 0x-prefixed 20-byte hex address.
func ValidAddressHex(s string) bool {
	return validHexOfLen(s, 20)
}

// ValidHash32Hex reports whether s is a 0x-prefixed hex string of exactly
// 32 bytes. Hash fields are optional in several payloads; callers skip
// this check when the field is absent.
func ValidHash32Hex(s string) bool {
	return validHexOfLen(s, 32)
}

func validHexOfLen(s string, byteLen int) bool {
	if !strings.HasPrefix(s, "0x") {
		return false
	}
	raw, err := hex.DecodeString(s[2:])
	if err != nil {
		return false
	}
	return len(raw) == byteLen
}

// WithinSizeLimit reports whether a payload of n bytes is acceptable.
func WithinSizeLimit(n int64) bool {
	return n >= 0 && n <= MaxPayloadBytes
}

// FreshTimestamp reports whether ts is within the expiry window of now.
// Timestamps are currently optional on requests, so a zero ts passes;
// freshness is advisory until timestamps become required upstream.
func FreshTimestamp(ts, now time.Time, window time.Duration) bool {
	if ts.IsZero() {
		return true
	}
	if ts.After(now) {
		return false
	}
	return now.Sub(ts) <= window
}

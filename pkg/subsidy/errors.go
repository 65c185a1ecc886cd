package subsidy

import (
	"errors"

	"github.com/waldyrious/celo-monorepo/pkg/policy"
	"github.com/waldyrious/celo-monorepo/pkg/pricing"
)

var (
	// ErrMalformedRequest is returned when the request shape is invalid:
	// missing or ill-formed signature components, zero accounts, or
	// authorizations that do not bind to the request.
	ErrMalformedRequest = errors.New("subsidy: malformed request")

	// ErrLimitExceeded is returned when requestedUnits is not strictly
	// below the configured ceiling.
	ErrLimitExceeded = errors.New("subsidy: requested units exceed subsidy limit")

	// ErrReentrantCall is returned when an orchestration is already in flight.
	ErrReentrantCall = errors.New("subsidy: reentrant orchestration call")

	// ErrSignatureRejected is returned when an authorization fails
	// verification against the beneficiary's controlling key.
	ErrSignatureRejected = errors.New("subsidy: authorization signature rejected")

	// ErrInvariantViolation is returned when the usage counter did not
	// advance by exactly the requested amount. Always fatal; pages an
	// operator and must never be retried.
	ErrInvariantViolation = errors.New("subsidy: usage counter delta mismatch")
)

// Errors raised by collaborators, re-exported so callers handle the whole
// taxonomy from one package.
var (
	ErrUnauthorized = policy.ErrUnauthorized
	ErrInvalidLimit = policy.ErrInvalidLimit
	ErrFeeOverflow  = pricing.ErrFeeOverflow
)

// Package policy holds the administrator-owned subsidy configuration and
// enforces the per-request unit ceiling.
package policy

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/waldyrious/celo-monorepo/pkg/identity"
)

var (
	// ErrUnauthorized is returned when a non-administrator attempts to change the limit.
	ErrUnauthorized = errors.New("policy: caller is not the administrator")
	// ErrInvalidLimit is returned when the new limit is not strictly positive.
	ErrInvalidLimit = errors.New("policy: limit must be strictly positive")
)

// Config is the subsidy configuration created once at initialization.
// The stored limit is always strictly positive.
type Config struct {
	MaxUnitsPerRequest uint64
}

// LimitChange describes a successful limit update.
type LimitChange struct {
	Admin    identity.Address
	OldLimit uint64
	NewLimit uint64
}

// LimitListener is notified after every successful SetLimit.
type LimitListener func(ctx context.Context, change LimitChange)

// SubsidyPolicy guards the unit ceiling. Single administrator writer,
// many concurrent readers.
type SubsidyPolicy struct {
	mu       sync.RWMutex
	admin    identity.Address
	limit    uint64
	listener LimitListener
	logger   *slog.Logger
}

// New creates a policy owned by admin with the given initial limit.
func New(admin identity.Address, initial Config) (*SubsidyPolicy, error) {
	if initial.MaxUnitsPerRequest == 0 {
		return nil, ErrInvalidLimit
	}
	return &SubsidyPolicy{
		admin:  admin,
		limit:  initial.MaxUnitsPerRequest,
		logger: slog.Default().With("component", "policy"),
	}, nil
}

// OnLimitChanged registers the listener notified after limit updates.
func (p *SubsidyPolicy) OnLimitChanged(l LimitListener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listener = l
}

// SetLimit replaces the stored limit. Only the administrator may call it.
func (p *SubsidyPolicy) SetLimit(ctx context.Context, caller identity.Address, newLimit uint64) error {
	if caller != p.admin {
		return ErrUnauthorized
	}
	if newLimit == 0 {
		return ErrInvalidLimit
	}

	p.mu.Lock()
	old := p.limit
	p.limit = newLimit
	listener := p.listener
	p.mu.Unlock()

	p.logger.InfoContext(ctx, "subsidy limit changed", "old", old, "new", newLimit)
	if listener != nil {
		listener(ctx, LimitChange{Admin: caller, OldLimit: old, NewLimit: newLimit})
	}
	return nil
}

// Limit returns the current ceiling.
func (p *SubsidyPolicy) Limit() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.limit
}

// CheckWithinLimit reports whether requestedUnits stays strictly below the
// ceiling. The bound is exclusive: a request equal to the limit is rejected.
func (p *SubsidyPolicy) CheckWithinLimit(requestedUnits uint64) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return requestedUnits < p.limit
}

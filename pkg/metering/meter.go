// Package metering tracks consumed units per (operation, account) pair.
// The counters are owned by the metering service; the orchestrator only
// ever reads them to compute before/after deltas.
package metering

import (
	"context"
	"errors"
	"sync"

	"github.com/waldyrious/celo-monorepo/pkg/identity"
)

var (
	// ErrZeroUnits is returned when a consumption of zero units is applied.
	ErrZeroUnits = errors.New("metering: units must be strictly positive")
	// ErrCounterOverflow is returned when a counter would wrap.
	ErrCounterOverflow = errors.New("metering: usage counter overflow")
)

// Meter is the metering service boundary.
type Meter interface {
	// ReadUsage returns the running total of consumed units.
	ReadUsage(ctx context.Context, op identity.Operation, account identity.Address) (uint64, error)

	// ApplyConsumption adds units to the running total.
	ApplyConsumption(ctx context.Context, op identity.Operation, account identity.Address, units uint64) error
}

type counterKey struct {
	op      identity.Operation
	account identity.Address
}

// MemoryMeter is an in-process Meter for tests and local operation.
type MemoryMeter struct {
	mu       sync.RWMutex
	counters map[counterKey]uint64
}

// NewMemoryMeter creates an empty meter.
func NewMemoryMeter() *MemoryMeter {
	return &MemoryMeter{counters: make(map[counterKey]uint64)}
}

// ReadUsage implements Meter.
func (m *MemoryMeter) ReadUsage(_ context.Context, op identity.Operation, account identity.Address) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[counterKey{op, account}], nil
}

// ApplyConsumption implements Meter.
func (m *MemoryMeter) ApplyConsumption(_ context.Context, op identity.Operation, account identity.Address, units uint64) error {
	if units == 0 {
		return ErrZeroUnits
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := counterKey{op, account}
	current := m.counters[key]
	if current+units < current {
		return ErrCounterOverflow
	}
	m.counters[key] = current + units
	return nil
}

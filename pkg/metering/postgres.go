package metering

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/waldyrious/celo-monorepo/pkg/identity"
)

// PostgresMeter implements Meter with PostgreSQL storage.
type PostgresMeter struct {
	db *sql.DB
}

// NewPostgresMeter creates a new PostgreSQL-backed meter.
func NewPostgresMeter(db *sql.DB) *PostgresMeter {
	return &PostgresMeter{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS usage_counters (
	operation TEXT NOT NULL,
	account TEXT NOT NULL,
	consumed BIGINT NOT NULL DEFAULT 0,
	updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
	PRIMARY KEY (operation, account)
);
`

// Init creates the necessary database tables.
func (m *PostgresMeter) Init(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, schema)
	return err
}

// ReadUsage implements Meter. A missing row reads as zero.
func (m *PostgresMeter) ReadUsage(ctx context.Context, op identity.Operation, account identity.Address) (uint64, error) {
	var consumed int64
	err := m.db.QueryRowContext(ctx, `
		SELECT consumed FROM usage_counters
		WHERE operation = $1 AND account = $2
	`, op.String(), account.String()).Scan(&consumed)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("metering: failed to read usage: %w", err)
	}
	return uint64(consumed), nil
}

// ApplyConsumption implements Meter via an accumulating upsert.
func (m *PostgresMeter) ApplyConsumption(ctx context.Context, op identity.Operation, account identity.Address, units uint64) error {
	if units == 0 {
		return ErrZeroUnits
	}
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO usage_counters (operation, account, consumed, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (operation, account)
		DO UPDATE SET consumed = usage_counters.consumed + $3, updated_at = NOW()
	`, op.String(), account.String(), int64(units))

	if err != nil {
		return fmt.Errorf("metering: failed to apply consumption: %w", err)
	}
	return nil
}

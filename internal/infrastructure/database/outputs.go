package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SaveOutputState records the last confirmed value of a digital output.
//
// Called by the engine after every successful hardware write for outputs
// configured with persist. The write is an upsert: one row per output.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - name: Output module name
//   - value: The confirmed logical value
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (db *DB) SaveOutputState(ctx context.Context, name string, value bool) error {
	v := 0
	if value {
		v = 1
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO output_states (name, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		name, v, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving output state %q: %w", name, err)
	}
	return nil
}

// LoadOutputStates returns the persisted value of every known output.
//
// Outputs present in configuration but absent from the store simply fall
// back to their configured initial value.
//
// Returns:
//   - map[string]bool: Output name to last confirmed value
//   - error: nil on success, or wrapped error describing the failure
func (db *DB) LoadOutputStates(ctx context.Context) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, value FROM output_states`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("loading output states: %w", err)
	}
	defer rows.Close()

	states := make(map[string]bool)
	for rows.Next() {
		var name string
		var value int
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scanning output state: %w", err)
		}
		states[name] = value != 0
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating output states: %w", err)
	}

	return states, nil
}

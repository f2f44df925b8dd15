package alert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL alert state repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves the state of a device.
func (r *PostgresRepository) Get(ctx context.Context, deviceID string) (*State, error) {
	query := `
		SELECT device_id, last_reading, last_morning_report, last_window_start, history, updated_at
		FROM alert_states
		WHERE device_id = $1
	`

	var (
		state   State
		reading []byte
		history []byte
	)
	err := r.pool.QueryRow(ctx, query, deviceID).Scan(
		&state.DeviceID,
		&reading,
		&state.LastMorningReport,
		&state.LastWindowStart,
		&history,
		&state.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStateNotFound
		}
		return nil, err
	}

	if len(reading) > 0 {
		if err := json.Unmarshal(reading, &state.LastReading); err != nil {
			return nil, fmt.Errorf("decode last reading: %w", err)
		}
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &state.History); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
	}

	return &state, nil
}

// Save creates or replaces the state of a device.
func (r *PostgresRepository) Save(ctx context.Context, state *State) error {
	reading, err := json.Marshal(state.LastReading)
	if err != nil {
		return fmt.Errorf("encode last reading: %w", err)
	}
	history := state.History
	if history == nil {
		history = []Notification{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	query := `
		INSERT INTO alert_states (device_id, last_reading, last_morning_report, last_window_start, history, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (device_id) DO UPDATE SET
			last_reading = EXCLUDED.last_reading,
			last_morning_report = EXCLUDED.last_morning_report,
			last_window_start = EXCLUDED.last_window_start,
			history = EXCLUDED.history,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.pool.Exec(ctx, query,
		state.DeviceID,
		reading,
		state.LastMorningReport,
		state.LastWindowStart,
		historyJSON,
		state.UpdatedAt,
	)
	return err
}

// Delete removes the state of a device.
func (r *PostgresRepository) Delete(ctx context.Context, deviceID string) error {
	query := `DELETE FROM alert_states WHERE device_id = $1`

	result, err := r.pool.Exec(ctx, query, deviceID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrStateNotFound
	}

	return nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)

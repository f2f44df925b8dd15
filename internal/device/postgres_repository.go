package device

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

const deviceColumns = `id, platform, push_token, lat, lon, activity_id, units, time_zone, alerts_enabled, created_at, updated_at`

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL device repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves a device by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE id = $1`
	return r.scanDevice(ctx, query, id)
}

// GetByToken retrieves a device by push token.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE push_token = $1`
	return r.scanDevice(ctx, query, token)
}

func (r *PostgresRepository) scanDevice(ctx context.Context, query string, args ...interface{}) (*Device, error) {
	device, err := scanRow(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}
	return device, nil
}

func scanRow(row pgx.Row) (*Device, error) {
	var device Device
	err := row.Scan(
		&device.ID,
		&device.Platform,
		&device.PushToken,
		&device.Lat,
		&device.Lon,
		&device.ActivityID,
		&device.Units,
		&device.TimeZone,
		&device.AlertsEnabled,
		&device.CreatedAt,
		&device.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &device, nil
}

// List pages through devices ordered by ID.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	fetchLimit := limit + 1

	query := `
		SELECT ` + deviceColumns + `
		FROM devices
		WHERE id > $1 AND (NOT $2 OR alerts_enabled)
		ORDER BY id
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, opts.Cursor, opts.AlertsEnabledOnly, fetchLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []*Device
	for rows.Next() {
		device, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, device)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := &ListResult{
		Items: devices,
	}

	if len(devices) > limit {
		result.Items = devices[:limit]
		result.NextCursor = devices[limit-1].ID
	}

	return result, nil
}

// Upsert creates or updates a device based on the push token.
func (r *PostgresRepository) Upsert(ctx context.Context, device *Device) (bool, error) {
	// The token identifies the physical device; the stored id and created_at survive re-registration.
	query := `
		INSERT INTO devices (` + deviceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (push_token) DO UPDATE SET
			platform = EXCLUDED.platform,
			lat = EXCLUDED.lat,
			lon = EXCLUDED.lon,
			activity_id = EXCLUDED.activity_id,
			units = EXCLUDED.units,
			time_zone = EXCLUDED.time_zone,
			alerts_enabled = EXCLUDED.alerts_enabled,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, (xmax = 0) AS inserted
	`

	var inserted bool
	err := r.pool.QueryRow(ctx, query,
		device.ID,
		device.Platform,
		device.PushToken,
		device.Lat,
		device.Lon,
		device.ActivityID,
		device.Units,
		device.TimeZone,
		device.AlertsEnabled,
		device.CreatedAt,
		device.UpdatedAt,
	).Scan(&device.ID, &device.CreatedAt, &inserted)

	if err != nil {
		return false, err
	}

	return inserted, nil
}

// Update updates an existing device.
func (r *PostgresRepository) Update(ctx context.Context, device *Device) error {
	query := `
		UPDATE devices SET
			platform = $2,
			push_token = $3,
			lat = $4,
			lon = $5,
			activity_id = $6,
			units = $7,
			time_zone = $8,
			alerts_enabled = $9,
			updated_at = $10
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		device.ID,
		device.Platform,
		device.PushToken,
		device.Lat,
		device.Lon,
		device.ActivityID,
		device.Units,
		device.TimeZone,
		device.AlertsEnabled,
		device.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrTokenInUse
		}
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}

	return nil
}

// Delete deletes a device. Alert state rows are removed by the foreign key cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM devices WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}

	return nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)

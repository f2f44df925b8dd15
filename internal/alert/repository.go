package alert

import "context"

// Repository persists per-device alert state.
type Repository interface {
	// Get retrieves the state of a device. Returns ErrStateNotFound before the first Save.
	Get(ctx context.Context, deviceID string) (*State, error)

	// Save creates or replaces the state of a device.
	Save(ctx context.Context, state *State) error

	// Delete removes the state of a device.
	Delete(ctx context.Context, deviceID string) error
}

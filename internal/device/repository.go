package device

import "context"

// Repository defines the interface for device persistence.
type Repository interface {
	// Get retrieves a device by ID.
	Get(ctx context.Context, id string) (*Device, error)

	// GetByToken retrieves a device by push token.
	GetByToken(ctx context.Context, token string) (*Device, error)

	// List pages through devices ordered by ID.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// Upsert creates or updates a device based on the push token.
	// Returns true if a new device was created, false if updated. On update the
	// device ID and CreatedAt are set to the stored values.
	Upsert(ctx context.Context, device *Device) (bool, error)

	// Update updates an existing device.
	Update(ctx context.Context, device *Device) error

	// Delete deletes a device.
	Delete(ctx context.Context, id string) error
}

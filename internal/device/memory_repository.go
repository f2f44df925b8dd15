package device

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing and single-instance deployments.
type InMemoryRepository struct {
	mu      sync.RWMutex
	devices map[string]*Device
	tokens  map[string]string // token -> device ID
}

// NewInMemoryRepository creates a new in-memory device repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		devices: make(map[string]*Device),
		tokens:  make(map[string]string),
	}
}

// Get retrieves a device by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	device, ok := r.devices[id]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return copyDevice(device), nil
}

// GetByToken retrieves a device by push token.
func (r *InMemoryRepository) GetByToken(_ context.Context, token string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.tokens[token]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return copyDevice(r.devices[id]), nil
}

// List pages through devices ordered by ID.
func (r *InMemoryRepository) List(_ context.Context, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	r.mu.RLock()
	ids := make([]string, 0, len(r.devices))
	for id, d := range r.devices {
		if id <= opts.Cursor {
			continue
		}
		if opts.AlertsEnabledOnly && !d.AlertsEnabled {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := &ListResult{}
	for _, id := range ids {
		if len(result.Items) == limit {
			result.NextCursor = result.Items[limit-1].ID
			break
		}
		result.Items = append(result.Items, copyDevice(r.devices[id]))
	}
	r.mu.RUnlock()

	return result, nil
}

// Upsert creates or updates a device based on the push token.
func (r *InMemoryRepository) Upsert(_ context.Context, device *Device) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existingID, ok := r.tokens[device.PushToken]; ok {
		existing := r.devices[existingID]
		device.ID = existing.ID
		device.CreatedAt = existing.CreatedAt
		r.devices[existingID] = copyDevice(device)
		return false, nil
	}

	r.devices[device.ID] = copyDevice(device)
	r.tokens[device.PushToken] = device.ID
	return true, nil
}

// Update updates an existing device.
func (r *InMemoryRepository) Update(_ context.Context, device *Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.devices[device.ID]
	if !ok {
		return ErrDeviceNotFound
	}

	if existing.PushToken != device.PushToken {
		if owner, taken := r.tokens[device.PushToken]; taken && owner != device.ID {
			return ErrTokenInUse
		}
		delete(r.tokens, existing.PushToken)
		r.tokens[device.PushToken] = device.ID
	}

	r.devices[device.ID] = copyDevice(device)
	return nil
}

// Delete deletes a device.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	device, ok := r.devices[id]
	if !ok {
		return ErrDeviceNotFound
	}

	delete(r.tokens, device.PushToken)
	delete(r.devices, id)
	return nil
}

func copyDevice(d *Device) *Device {
	if d == nil {
		return nil
	}
	cpy := *d
	return &cpy
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)

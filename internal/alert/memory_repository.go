package alert

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing and single-instance deployments.
type InMemoryRepository struct {
	mu     sync.RWMutex
	states map[string]State
}

// NewInMemoryRepository creates a new in-memory alert state repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		states: make(map[string]State),
	}
}

// Get retrieves the state of a device.
func (r *InMemoryRepository) Get(_ context.Context, deviceID string) (*State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.states[deviceID]
	if !ok {
		return nil, ErrStateNotFound
	}

	cpy := s.Clone()
	return &cpy, nil
}

// Save creates or replaces the state of a device.
func (r *InMemoryRepository) Save(_ context.Context, state *State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.states[state.DeviceID] = state.Clone()
	return nil
}

// Delete removes the state of a device.
func (r *InMemoryRepository) Delete(_ context.Context, deviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.states[deviceID]; !ok {
		return ErrStateNotFound
	}
	delete(r.states, deviceID)
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)

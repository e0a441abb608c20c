package repository

import (
	"context"
	"sync"

	"github.com/sebasr/target-manager/internal/models"
)

// MemoryTargetRepository keeps targets in an ordered in-memory slice.
// Stored values are copied on the way in and out, so callers never share
// memory with the repository.
type MemoryTargetRepository struct {
	mu      sync.RWMutex
	targets []models.Target
}

// NewMemoryTargetRepository creates a repository holding a copy of seed
func NewMemoryTargetRepository(seed ...models.Target) *MemoryTargetRepository {
	r := &MemoryTargetRepository{}
	r.Reset(seed...)
	return r
}

// List implements TargetRepository.List
func (r *MemoryTargetRepository) List(_ context.Context) ([]*models.Target, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Target, len(r.targets))
	for i := range r.targets {
		t := r.targets[i]
		out[i] = &t
	}
	return out, nil
}

// GetByID implements TargetRepository.GetByID
func (r *MemoryTargetRepository) GetByID(_ context.Context, id string) (*models.Target, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrTargetNotFound
	}
	t := r.targets[i]
	return &t, nil
}

// Create implements TargetRepository.Create
func (r *MemoryTargetRepository) Create(_ context.Context, target *models.Target) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.targets = append(r.targets, *target)
	return nil
}

// Update implements TargetRepository.Update
func (r *MemoryTargetRepository) Update(_ context.Context, target *models.Target) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(target.ID)
	if i < 0 {
		return ErrTargetNotFound
	}
	r.targets[i] = *target
	return nil
}

// Delete implements TargetRepository.Delete
func (r *MemoryTargetRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrTargetNotFound
	}
	r.targets = append(r.targets[:i], r.targets[i+1:]...)
	return nil
}

// Reset replaces the whole collection with a copy of targets
func (r *MemoryTargetRepository) Reset(targets ...models.Target) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.targets = make([]models.Target, len(targets))
	copy(r.targets, targets)
}

// Seed appends targets to the collection
func (r *MemoryTargetRepository) Seed(targets ...models.Target) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.targets = append(r.targets, targets...)
}

// Snapshot returns a copy of the collection
func (r *MemoryTargetRepository) Snapshot() []models.Target {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Target, len(r.targets))
	copy(out, r.targets)
	return out
}

// Len returns the number of stored targets
func (r *MemoryTargetRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.targets)
}

func (r *MemoryTargetRepository) indexOf(id string) int {
	for i := range r.targets {
		if r.targets[i].ID == id {
			return i
		}
	}
	return -1
}

package repository

import (
	"context"
	"errors"

	"github.com/sebasr/target-manager/internal/models"
)

// ErrTargetNotFound is returned when a target is not found
var ErrTargetNotFound = errors.New("target not found")

// TargetRepository defines the interface for target data access
type TargetRepository interface {
	// List returns every target in insertion order
	List(ctx context.Context) ([]*models.Target, error)

	// GetByID retrieves a target by its ID
	GetByID(ctx context.Context, id string) (*models.Target, error)

	// Create stores a new target. The ID must already be assigned.
	Create(ctx context.Context, target *models.Target) error

	// Update replaces every field of an existing target
	Update(ctx context.Context, target *models.Target) error

	// Delete removes a target by its ID
	Delete(ctx context.Context, id string) error
}

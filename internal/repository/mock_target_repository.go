package repository

import (
	"context"

	"github.com/sebasr/target-manager/internal/models"
)

// MockTargetRepository is a mock implementation of TargetRepository for testing
type MockTargetRepository struct {
	ListFunc    func(ctx context.Context) ([]*models.Target, error)
	GetByIDFunc func(ctx context.Context, id string) (*models.Target, error)
	CreateFunc  func(ctx context.Context, target *models.Target) error
	UpdateFunc  func(ctx context.Context, target *models.Target) error
	DeleteFunc  func(ctx context.Context, id string) error
}

// NewMockTargetRepository creates a new mock target repository
func NewMockTargetRepository() *MockTargetRepository {
	return &MockTargetRepository{
		ListFunc: func(_ context.Context) ([]*models.Target, error) {
			return []*models.Target{}, nil
		},
		GetByIDFunc: func(_ context.Context, _ string) (*models.Target, error) {
			return nil, ErrTargetNotFound
		},
		CreateFunc: func(_ context.Context, _ *models.Target) error {
			return nil
		},
		UpdateFunc: func(_ context.Context, _ *models.Target) error {
			return nil
		},
		DeleteFunc: func(_ context.Context, _ string) error {
			return nil
		},
	}
}

// List implements TargetRepository.List
func (m *MockTargetRepository) List(ctx context.Context) ([]*models.Target, error) {
	return m.ListFunc(ctx)
}

// GetByID implements TargetRepository.GetByID
func (m *MockTargetRepository) GetByID(ctx context.Context, id string) (*models.Target, error) {
	return m.GetByIDFunc(ctx, id)
}

// Create implements TargetRepository.Create
func (m *MockTargetRepository) Create(ctx context.Context, target *models.Target) error {
	return m.CreateFunc(ctx, target)
}

// Update implements TargetRepository.Update
func (m *MockTargetRepository) Update(ctx context.Context, target *models.Target) error {
	return m.UpdateFunc(ctx, target)
}

// Delete implements TargetRepository.Delete
func (m *MockTargetRepository) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

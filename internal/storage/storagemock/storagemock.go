// Package storagemock contains testify mocks for the storage interfaces.
package storagemock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/wrun/wrun/internal/model"
)

// MockRepository is a mock implementation of storage.Repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateRun(ctx context.Context, run model.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRepository) GetRun(ctx context.Context, id string) (*model.Run, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*model.Run)
	return res, args.Error(1)
}

func (m *MockRepository) ListRuns(ctx context.Context) ([]model.Run, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).([]model.Run)
	return res, args.Error(1)
}

func (m *MockRepository) DeleteRun(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Package schedulermock contains testify mocks for the scheduler interfaces.
package schedulermock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/wrun/wrun/internal/model"
)

// MockTaskRunner is a mock implementation of scheduler.TaskRunner.
type MockTaskRunner struct {
	mock.Mock
}

func (m *MockTaskRunner) RunTask(ctx context.Context, task model.Task) model.TaskResult {
	args := m.Called(ctx, task)
	res, _ := args.Get(0).(model.TaskResult)
	return res
}

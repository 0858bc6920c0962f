package storage

import (
	"context"

	"github.com/wrun/wrun/internal/model"
)

// Repository is the interface for run-history persistence. Only finished
// runs are stored; in-flight scheduler state is never persisted.
type Repository interface {
	CreateRun(ctx context.Context, run model.Run) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	ListRuns(ctx context.Context) ([]model.Run, error)
	DeleteRun(ctx context.Context, id string) error
}

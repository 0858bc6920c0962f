package commands

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wrun/wrun/internal/log"
	"github.com/wrun/wrun/internal/model"
	"github.com/wrun/wrun/internal/storage/storagemock"
)

func runFixture() model.Run {
	return model.Run{
		ID:         "01JD0000000000000000000000",
		TaskFile:   "suite.yaml",
		StartedAt:  time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 8, 1, 10, 0, 42, 0, time.UTC),
		Report: model.Report{
			Success:   true,
			Completed: 1,
			Total:     1,
			Results: []model.TaskResult{
				{TaskID: "login", Success: true},
			},
		},
	}
}

func TestHistoryCommandRun(t *testing.T) {
	tests := map[string]struct {
		args      []string
		mock      func(m *storagemock.MockRepository)
		expOutput []string
		expErr    bool
	}{
		"Stored runs should be listed": {
			args: []string{"history"},
			mock: func(m *storagemock.MockRepository) {
				m.On("ListRuns", mock.Anything).Once().Return([]model.Run{runFixture()}, nil)
			},
			expOutput: []string{"ID", "TASK FILE", "01JD0000000000000000000000", "suite.yaml"},
		},
		"A failing repository should fail the command": {
			args: []string{"history"},
			mock: func(m *storagemock.MockRepository) {
				m.On("ListRuns", mock.Anything).Once().Return(nil, fmt.Errorf("boom"))
			},
			expErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			assert := assert.New(t)

			mrepo := &storagemock.MockRepository{}
			tc.mock(mrepo)

			var out bytes.Buffer
			app := kingpin.New("wrun", "")
			rootCmd := &RootCommand{Stdout: &out, Logger: log.Noop, Repository: mrepo}
			cmd := NewHistoryCommand(rootCmd, app)
			_, err := app.Parse(tc.args)
			require.NoError(err)

			err = cmd.Run(context.Background())

			if tc.expErr {
				require.Error(err)
			} else {
				require.NoError(err)
				for _, s := range tc.expOutput {
					assert.Contains(out.String(), s)
				}
			}
			mrepo.AssertExpectations(t)
		})
	}
}

func TestReportCommandRun(t *testing.T) {
	tests := map[string]struct {
		args      []string
		mock      func(m *storagemock.MockRepository)
		expOutput []string
		expErr    bool
	}{
		"A stored run should be printed": {
			args: []string{"report", "01JD0000000000000000000000"},
			mock: func(m *storagemock.MockRepository) {
				run := runFixture()
				m.On("GetRun", mock.Anything, "01JD0000000000000000000000").Once().Return(&run, nil)
			},
			expOutput: []string{"01JD0000000000000000000000", "suite.yaml", "login", "1/1 tasks completed"},
		},
		"A missing run should fail the command": {
			args: []string{"report", "missing"},
			mock: func(m *storagemock.MockRepository) {
				m.On("GetRun", mock.Anything, "missing").Once().Return(nil, model.ErrNotFound)
			},
			expErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			assert := assert.New(t)

			mrepo := &storagemock.MockRepository{}
			tc.mock(mrepo)

			var out bytes.Buffer
			app := kingpin.New("wrun", "")
			rootCmd := &RootCommand{Stdout: &out, Logger: log.Noop, Repository: mrepo}
			cmd := NewReportCommand(rootCmd, app)
			_, err := app.Parse(tc.args)
			require.NoError(err)

			err = cmd.Run(context.Background())

			if tc.expErr {
				require.Error(err)
			} else {
				require.NoError(err)
				for _, s := range tc.expOutput {
					assert.Contains(out.String(), s)
				}
			}
			mrepo.AssertExpectations(t)
		})
	}
}

func TestRemoveCommandRun(t *testing.T) {
	tests := map[string]struct {
		args      []string
		mock      func(m *storagemock.MockRepository)
		expOutput []string
		expErr    bool
	}{
		"A stored run should be removed": {
			args: []string{"rm", "01JD0000000000000000000000"},
			mock: func(m *storagemock.MockRepository) {
				m.On("DeleteRun", mock.Anything, "01JD0000000000000000000000").Once().Return(nil)
			},
			expOutput: []string{"Removed run: 01JD0000000000000000000000"},
		},
		"Removing a missing run should fail the command": {
			args: []string{"rm", "missing"},
			mock: func(m *storagemock.MockRepository) {
				m.On("DeleteRun", mock.Anything, "missing").Once().Return(model.ErrNotFound)
			},
			expErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			assert := assert.New(t)

			mrepo := &storagemock.MockRepository{}
			tc.mock(mrepo)

			var out bytes.Buffer
			app := kingpin.New("wrun", "")
			rootCmd := &RootCommand{Stdout: &out, Logger: log.Noop, Repository: mrepo}
			cmd := NewRemoveCommand(rootCmd, app)
			_, err := app.Parse(tc.args)
			require.NoError(err)

			err = cmd.Run(context.Background())

			if tc.expErr {
				require.Error(err)
			} else {
				require.NoError(err)
				for _, s := range tc.expOutput {
					assert.Contains(out.String(), s)
				}
			}
			mrepo.AssertExpectations(t)
		})
	}
}

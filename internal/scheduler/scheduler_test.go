package scheduler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wrun/wrun/internal/log"
	"github.com/wrun/wrun/internal/model"
	"github.com/wrun/wrun/internal/scheduler"
	"github.com/wrun/wrun/internal/scheduler/schedulermock"
)

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config scheduler.ServiceConfig
		expErr bool
	}{
		"valid config should create service": {
			config: scheduler.ServiceConfig{
				Runner: &schedulermock.MockTaskRunner{},
				Logger: log.Noop,
			},
			expErr: false,
		},
		"missing runner should fail": {
			config: scheduler.ServiceConfig{
				Logger: log.Noop,
			},
			expErr: true,
		},
		"nil logger should default to noop": {
			config: scheduler.ServiceConfig{
				Runner: &schedulermock.MockTaskRunner{},
			},
			expErr: false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			svc, err := scheduler.NewService(test.config)

			if test.expErr {
				require.Error(err)
				require.Nil(svc)
			} else {
				require.NoError(err)
				require.NotNil(svc)
			}
		})
	}
}

func TestService_Run(t *testing.T) {
	success := func(id string) model.TaskResult {
		return model.TaskResult{TaskID: id, Success: true}
	}
	failure := func(id, errMsg string) model.TaskResult {
		return model.TaskResult{TaskID: id, Error: errMsg}
	}

	tests := map[string]struct {
		tasks     []model.Task
		req       scheduler.Request
		mock      func(m *schedulermock.MockTaskRunner)
		expReport *model.Report
		expErr    bool
	}{
		"a single successful task should complete": {
			tasks: []model.Task{{ID: "a"}},
			mock: func(m *schedulermock.MockTaskRunner) {
				m.On("RunTask", mock.Anything, mock.MatchedBy(taskWithID("a"))).Once().Return(success("a"))
			},
			expReport: &model.Report{
				Success:   true,
				Completed: 1,
				Total:     1,
				Results:   []model.TaskResult{success("a")},
			},
		},

		"a cyclic graph should fail before any task runs": {
			tasks: []model.Task{
				{ID: "a", DependsOn: []string{"b"}},
				{ID: "b", DependsOn: []string{"a"}},
			},
			mock:   func(m *schedulermock.MockTaskRunner) {},
			expErr: true,
		},

		"an unknown dependency should fail before any task runs": {
			tasks:  []model.Task{{ID: "a", DependsOn: []string{"ghost"}}},
			mock:   func(m *schedulermock.MockTaskRunner) {},
			expErr: true,
		},

		"a duplicate id should fail before any task runs": {
			tasks:  []model.Task{{ID: "a"}, {ID: "a"}},
			mock:   func(m *schedulermock.MockTaskRunner) {},
			expErr: true,
		},

		"a failed task should skip its dependents transitively": {
			tasks: []model.Task{
				{ID: "a"},
				{ID: "b", DependsOn: []string{"a"}},
				{ID: "c", DependsOn: []string{"b"}},
			},
			mock: func(m *schedulermock.MockTaskRunner) {
				m.On("RunTask", mock.Anything, mock.MatchedBy(taskWithID("a"))).Once().Return(failure("a", "boom"))
			},
			expReport: &model.Report{
				Success: false,
				Failed:  3,
				Total:   3,
				Results: []model.TaskResult{
					failure("a", "boom"),
					{TaskID: "b", Skipped: true, Error: `skipped: dependency "a" failed`},
					{TaskID: "c", Skipped: true, Error: `skipped: dependency "b" failed`},
				},
			},
		},

		"a failed branch should not stop an independent branch": {
			tasks: []model.Task{
				{ID: "a"},
				{ID: "b", DependsOn: []string{"a"}},
				{ID: "c"},
			},
			mock: func(m *schedulermock.MockTaskRunner) {
				m.On("RunTask", mock.Anything, mock.MatchedBy(taskWithID("a"))).Once().Return(failure("a", "boom"))
				m.On("RunTask", mock.Anything, mock.MatchedBy(taskWithID("c"))).Once().Return(success("c"))
			},
			expReport: &model.Report{
				Success:   false,
				Completed: 1,
				Failed:    2,
				Total:     3,
				Results: []model.TaskResult{
					failure("a", "boom"),
					{TaskID: "b", Skipped: true, Error: `skipped: dependency "a" failed`},
					success("c"),
				},
			},
		},

		"a diamond should complete all tasks": {
			tasks: []model.Task{
				{ID: "a"},
				{ID: "b", DependsOn: []string{"a"}},
				{ID: "c", DependsOn: []string{"a"}},
				{ID: "d", DependsOn: []string{"b", "c"}},
			},
			mock: func(m *schedulermock.MockTaskRunner) {
				for _, id := range []string{"a", "b", "c", "d"} {
					m.On("RunTask", mock.Anything, mock.MatchedBy(taskWithID(id))).Once().Return(success(id))
				}
			},
			expReport: &model.Report{
				Success:   true,
				Completed: 4,
				Total:     4,
				Results: []model.TaskResult{
					success("a"), success("b"), success("c"), success("d"),
				},
			},
		},

		"fail fast should abort undispatched tasks": {
			tasks: []model.Task{
				{ID: "a"},
				{ID: "b"},
			},
			req: scheduler.Request{MaxParallel: 1, FailFast: true},
			mock: func(m *schedulermock.MockTaskRunner) {
				m.On("RunTask", mock.Anything, mock.MatchedBy(taskWithID("a"))).Once().Return(failure("a", "boom"))
			},
			expReport: &model.Report{
				Success: false,
				Failed:  2,
				Total:   2,
				Aborted: true,
				Results: []model.TaskResult{
					failure("a", "boom"),
					{TaskID: "b", Skipped: true, Error: "not run: run aborted"},
				},
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			assert := assert.New(t)

			m := &schedulermock.MockTaskRunner{}
			test.mock(m)

			svc, err := scheduler.NewService(scheduler.ServiceConfig{Runner: m, Logger: log.Noop})
			require.NoError(err)

			req := test.req
			req.Tasks = test.tasks

			report, err := svc.Run(context.Background(), req)

			if test.expErr {
				require.Error(err)
				require.ErrorIs(err, model.ErrNotValid)
				require.Nil(report)
			} else {
				require.NoError(err)
				assert.Equal(test.expReport, report)
			}

			m.AssertExpectations(t)
		})
	}
}

// taskWithID matches a dispatched task by id.
func taskWithID(id string) func(model.Task) bool {
	return func(t model.Task) bool { return t.ID == id }
}

// trackingRunner records concurrency so scheduling properties can be
// asserted without mock bookkeeping.
type trackingRunner struct {
	delay time.Duration
	fail  map[string]bool

	mu      sync.Mutex
	current int
	peak    int
	order   []string
}

func (r *trackingRunner) RunTask(ctx context.Context, task model.Task) model.TaskResult {
	r.mu.Lock()
	r.current++
	if r.current > r.peak {
		r.peak = r.current
	}
	r.order = append(r.order, task.ID)
	r.mu.Unlock()

	if r.delay > 0 {
		time.Sleep(r.delay)
	}

	r.mu.Lock()
	r.current--
	r.mu.Unlock()

	if r.fail[task.ID] {
		return model.TaskResult{TaskID: task.ID, Error: "boom"}
	}
	return model.TaskResult{TaskID: task.ID, Success: true}
}

func TestService_RunMaxParallelBound(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	tasks := make([]model.Task, 0, 8)
	for _, id := range []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8"} {
		tasks = append(tasks, model.Task{ID: id})
	}

	runner := &trackingRunner{delay: 20 * time.Millisecond}
	svc, err := scheduler.NewService(scheduler.ServiceConfig{Runner: runner, Logger: log.Noop})
	require.NoError(err)

	report, err := svc.Run(context.Background(), scheduler.Request{
		Tasks:       tasks,
		MaxParallel: 3,
	})
	require.NoError(err)

	assert.True(report.Success)
	assert.Equal(8, report.Completed)
	assert.LessOrEqual(runner.peak, 3)
}

func TestService_RunIndependentTasksInterleave(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	runner := &trackingRunner{delay: 50 * time.Millisecond}
	svc, err := scheduler.NewService(scheduler.ServiceConfig{Runner: runner, Logger: log.Noop})
	require.NoError(err)

	report, err := svc.Run(context.Background(), scheduler.Request{
		Tasks: []model.Task{
			{ID: "a"},
			{ID: "b"},
		},
		MaxParallel: 2,
	})
	require.NoError(err)

	assert.True(report.Success)
	assert.Equal(2, report.Completed)
	assert.GreaterOrEqual(runner.peak, 2)
}

func TestService_RunDependentsWaitForDependencies(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	runner := &trackingRunner{delay: 10 * time.Millisecond}
	svc, err := scheduler.NewService(scheduler.ServiceConfig{Runner: runner, Logger: log.Noop})
	require.NoError(err)

	report, err := svc.Run(context.Background(), scheduler.Request{
		Tasks: []model.Task{
			{ID: "a"},
			{ID: "b", DependsOn: []string{"a"}},
			{ID: "c", DependsOn: []string{"b"}},
		},
		MaxParallel: 4,
	})
	require.NoError(err)

	assert.True(report.Success)
	assert.Equal([]string{"a", "b", "c"}, runner.order)
}

func TestService_RunContextCancelAborts(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &trackingRunner{}
	svc, err := scheduler.NewService(scheduler.ServiceConfig{Runner: runner, Logger: log.Noop})
	require.NoError(err)

	report, err := svc.Run(ctx, scheduler.Request{
		Tasks: []model.Task{
			{ID: "a"},
			{ID: "b", DependsOn: []string{"a"}},
		},
		MaxParallel: 1,
	})
	require.NoError(err)

	assert.True(report.Aborted)
	assert.False(report.Success)
	// The already dispatched task finishes, the dependent never starts.
	assert.Equal([]string{"a"}, runner.order)

	res := report.Result("b")
	require.NotNil(res)
	assert.Equal("not run: run aborted", res.Error)
}

// Package scheduler drives a DAG of tasks to completion with bounded
// concurrency. A single control loop owns all run state: task goroutines
// report their outcome over a channel and only the loop applies state
// transitions, so the state sets need no locks.
package scheduler

import (
	"context"
	"fmt"

	"github.com/wrun/wrun/internal/dag"
	"github.com/wrun/wrun/internal/log"
	"github.com/wrun/wrun/internal/model"
)

const defaultMaxParallel = 4

// TaskRunner executes one task and reports its outcome. Implementations must
// be safe for concurrent use; the scheduler runs up to MaxParallel tasks at
// once, each on its own goroutine.
type TaskRunner interface {
	RunTask(ctx context.Context, task model.Task) model.TaskResult
}

// ServiceConfig is the configuration for the scheduler service.
type ServiceConfig struct {
	Runner TaskRunner
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Runner == nil {
		return fmt.Errorf("task runner is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "scheduler.Service"})
	return nil
}

// Service schedules task execution over a dependency graph.
type Service struct {
	runner TaskRunner
	logger log.Logger
}

// NewService creates a new scheduler service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{runner: cfg.Runner, logger: cfg.Logger}, nil
}

// Request contains the parameters for one scheduler run.
type Request struct {
	Tasks []model.Task
	// MaxParallel bounds in-flight tasks (default 4).
	MaxParallel int
	// FailFast stops dispatching new tasks after the first failure.
	// In-flight tasks always finish naturally; nothing is hard-killed.
	FailFast bool
}

// Run executes the tasks and returns the aggregate report. A graph
// validation error (duplicate id, unknown dependency, cycle) aborts before
// any task runs. Task and step failures never surface as an error here; they
// are absorbed into the report.
func (s *Service) Run(ctx context.Context, req Request) (*model.Report, error) {
	maxParallel := req.MaxParallel
	if maxParallel <= 0 {
		maxParallel = defaultMaxParallel
	}

	graph, err := dag.Build(req.Tasks)
	if err != nil {
		return nil, fmt.Errorf("invalid task graph: %w", err)
	}

	s.logger.Infof("Running %d tasks (max parallel %d)", graph.Len(), maxParallel)

	st := newRunState()
	done := make(chan model.TaskResult)
	aborted := false

	for {
		// Sweep until a fixpoint: each pass marks dependents of failed
		// tasks as skipped and dispatches ready tasks. Skips propagate
		// transitively because the sweep repeats while it makes progress,
		// so multi-level chains resolve without waiting on running tasks.
		for s.sweep(ctx, graph, st, maxParallel, aborted, done) {
		}

		if st.runningCount() == 0 {
			break
		}

		// Progress blocks on the first running task to finish, never on the
		// whole batch: a freed slot is refilled on the next sweep.
		res := <-done
		st.apply(res)

		if res.Success {
			s.logger.Infof("Task %q completed", res.TaskID)
		} else {
			s.logger.Warningf("Task %q failed: %s", res.TaskID, res.Error)
			if req.FailFast {
				aborted = true
			}
		}

		// Context cancellation behaves like failFast: stop dispatching and
		// let in-flight tasks wind down on their own cancelled contexts.
		if ctx.Err() != nil {
			aborted = true
		}
	}

	// Tasks never dispatched because the run aborted are reported as failed,
	// never silently dropped.
	for _, id := range graph.Order() {
		if !st.terminal(id) {
			st.markNotRun(id)
		}
	}

	report := st.report(graph, aborted)
	s.logger.Infof("Run finished: %d/%d completed, aborted=%t", report.Completed, report.Total, report.Aborted)

	return &report, nil
}

// sweep walks the tasks in input order, skipping dependents of failed tasks
// and dispatching ready ones up to the parallelism bound. It reports whether
// it changed anything.
func (s *Service) sweep(ctx context.Context, graph *dag.Graph, st *runState, maxParallel int, aborted bool, done chan<- model.TaskResult) bool {
	progressed := false

	for _, id := range graph.Order() {
		if st.terminal(id) || st.isRunning(id) {
			continue
		}

		// Failure propagation has priority over readiness: a dependent of a
		// failed task is skipped, never executed.
		if depID, failed := st.failedDep(graph, id); failed {
			s.logger.Warningf("Task %q skipped: dependency %q failed", id, depID)
			st.markSkipped(id, depID)
			progressed = true
			continue
		}

		if aborted {
			continue
		}
		if !st.depsCompleted(graph, id) {
			continue
		}
		if st.runningCount() >= maxParallel {
			continue
		}

		task, _ := graph.Task(id)
		st.markRunning(id)
		s.logger.Debugf("Dispatching task %q", id)
		go func(t model.Task) {
			done <- s.runner.RunTask(ctx, t)
		}(task)
		progressed = true
	}

	return progressed
}

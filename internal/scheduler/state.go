package scheduler

import (
	"fmt"

	"github.com/wrun/wrun/internal/dag"
	"github.com/wrun/wrun/internal/model"
)

// runState tracks one run. A task id belongs to at most one of completed,
// failed or running at any time; once completed or failed it never moves.
// Only the scheduler control loop touches this, so it carries no lock.
type runState struct {
	completed map[string]struct{}
	failed    map[string]struct{}
	running   map[string]struct{}
	results   map[string]model.TaskResult
}

func newRunState() *runState {
	return &runState{
		completed: map[string]struct{}{},
		failed:    map[string]struct{}{},
		running:   map[string]struct{}{},
		results:   map[string]model.TaskResult{},
	}
}

func (s *runState) terminal(id string) bool {
	if _, ok := s.completed[id]; ok {
		return true
	}
	_, ok := s.failed[id]
	return ok
}

func (s *runState) isRunning(id string) bool {
	_, ok := s.running[id]
	return ok
}

func (s *runState) runningCount() int {
	return len(s.running)
}

// failedDep returns the first failed dependency of the task, if any.
func (s *runState) failedDep(graph *dag.Graph, id string) (string, bool) {
	for _, depID := range graph.Deps(id) {
		if _, ok := s.failed[depID]; ok {
			return depID, true
		}
	}
	return "", false
}

func (s *runState) depsCompleted(graph *dag.Graph, id string) bool {
	for _, depID := range graph.Deps(id) {
		if _, ok := s.completed[depID]; !ok {
			return false
		}
	}
	return true
}

func (s *runState) markRunning(id string) {
	s.running[id] = struct{}{}
}

func (s *runState) markSkipped(id, failedDepID string) {
	s.failed[id] = struct{}{}
	s.results[id] = model.TaskResult{
		TaskID:  id,
		Skipped: true,
		Error:   fmt.Sprintf("skipped: dependency %q failed", failedDepID),
	}
}

func (s *runState) markNotRun(id string) {
	s.failed[id] = struct{}{}
	s.results[id] = model.TaskResult{
		TaskID:  id,
		Skipped: true,
		Error:   "not run: run aborted",
	}
}

// apply moves a finished task out of running into its terminal set.
func (s *runState) apply(res model.TaskResult) {
	delete(s.running, res.TaskID)
	if res.Success {
		s.completed[res.TaskID] = struct{}{}
	} else {
		s.failed[res.TaskID] = struct{}{}
	}
	s.results[res.TaskID] = res
}

// report builds the final report, enumerating every task from the input list
// exactly once, in input order.
func (s *runState) report(graph *dag.Graph, aborted bool) model.Report {
	report := model.Report{
		Total:   graph.Len(),
		Aborted: aborted,
		Results: make([]model.TaskResult, 0, graph.Len()),
	}

	for _, id := range graph.Order() {
		res, ok := s.results[id]
		if !ok {
			// Every task must end in a terminal state; surface the gap
			// instead of dropping the task from the report.
			res = model.TaskResult{TaskID: id, Error: "no result recorded"}
		}
		report.Results = append(report.Results, res)
		if res.Success {
			report.Completed++
		} else {
			report.Failed++
		}
	}

	report.Success = report.Failed == 0
	return report
}

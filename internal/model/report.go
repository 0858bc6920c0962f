package model

import "time"

// StepResult is the outcome of one executed step.
type StepResult struct {
	Step     Step          `json:"-"`
	Action   Action        `json:"action"`
	Selector string        `json:"selector,omitempty"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// TaskResult is the outcome of one task. Skipped tasks carry Skipped=true and
// never ran any step; their Steps slice is empty.
type TaskResult struct {
	TaskID  string       `json:"task_id"`
	Success bool         `json:"success"`
	Skipped bool         `json:"skipped,omitempty"`
	Error   string       `json:"error,omitempty"`
	Steps   []StepResult `json:"steps,omitempty"`
}

// Report is the aggregate outcome of one scheduler run. It enumerates every
// task from the input exactly once.
type Report struct {
	Success   bool         `json:"success"`
	Completed int          `json:"completed"`
	Failed    int          `json:"failed"`
	Total     int          `json:"total"`
	Aborted   bool         `json:"aborted"`
	Results   []TaskResult `json:"results"`
}

// Result returns the result for a task id, or nil if absent.
func (r Report) Result(taskID string) *TaskResult {
	for i := range r.Results {
		if r.Results[i].TaskID == taskID {
			return &r.Results[i]
		}
	}
	return nil
}

// Run is a finished scheduler run stored in the history repository.
type Run struct {
	ID         string
	TaskFile   string
	StartedAt  time.Time
	FinishedAt time.Time
	Report     Report
}

package model

import (
	"fmt"
	"time"
)

// Action identifies one kind of browser step.
type Action string

const (
	ActionNavigate        Action = "navigate"
	ActionClick           Action = "click"
	ActionFill            Action = "fill"
	ActionSelect          Action = "select"
	ActionCheck           Action = "check"
	ActionUncheck         Action = "uncheck"
	ActionWait            Action = "wait"
	ActionWaitForSelector Action = "waitForSelector"
	ActionScreenshot      Action = "screenshot"
	ActionEvaluate        Action = "evaluate"
	ActionType            Action = "type"
	ActionHover           Action = "hover"
	ActionPress           Action = "press"
)

// WaitPolicy selects the navigation wait condition.
type WaitPolicy string

const (
	// WaitPolicyDOMReady waits for the document to be loaded. It is the
	// default: long-polling and websocket pages never reach network idle.
	WaitPolicyDOMReady WaitPolicy = "domcontentloaded"
	// WaitPolicyLoad waits for the full load event.
	WaitPolicyLoad WaitPolicy = "load"
	// WaitPolicyNetworkIdle waits for the network to settle.
	WaitPolicyNetworkIdle WaitPolicy = "networkidle"
)

// InterruptPolicy governs how a wallet popup spawned by a step is resolved.
type InterruptPolicy string

const (
	InterruptApprove InterruptPolicy = "approve"
	InterruptReject  InterruptPolicy = "reject"
	InterruptIgnore  InterruptPolicy = "ignore"
)

// Step is one atomic browser action inside a task. Which fields are
// meaningful depends on Action; Validate enforces the per-action contract.
// Steps are immutable once scheduling starts.
type Step struct {
	Action   Action
	Selector string
	Value    string
	URL      string
	Script   string
	Key      string

	// Name is the screenshot file name (without extension).
	Name     string
	FullPage bool

	// Duration is the sleep time for wait steps.
	Duration time.Duration
	// TypeDelay is the per-keystroke delay for type steps.
	TypeDelay time.Duration
	// Timeout bounds the action. Zero means the executor default.
	Timeout time.Duration

	Wait WaitPolicy

	// Interrupt governs wallet popup handling after click steps.
	Interrupt InterruptPolicy
}

// Validate checks that the step carries the fields its action requires.
func (s Step) Validate() error {
	switch s.Action {
	case ActionNavigate:
		if s.URL == "" {
			return fmt.Errorf("navigate step requires url: %w", ErrNotValid)
		}
	case ActionClick, ActionCheck, ActionUncheck, ActionWaitForSelector, ActionHover:
		if s.Selector == "" {
			return fmt.Errorf("%s step requires selector: %w", s.Action, ErrNotValid)
		}
	case ActionFill, ActionSelect, ActionType:
		if s.Selector == "" {
			return fmt.Errorf("%s step requires selector: %w", s.Action, ErrNotValid)
		}
	case ActionPress:
		if s.Selector == "" || s.Key == "" {
			return fmt.Errorf("press step requires selector and key: %w", ErrNotValid)
		}
	case ActionWait:
		if s.Duration <= 0 {
			return fmt.Errorf("wait step requires a positive duration: %w", ErrNotValid)
		}
	case ActionScreenshot:
		if s.Name == "" {
			return fmt.Errorf("screenshot step requires a name: %w", ErrNotValid)
		}
	case ActionEvaluate:
		if s.Script == "" {
			return fmt.Errorf("evaluate step requires a script: %w", ErrNotValid)
		}
	default:
		return fmt.Errorf("unknown action %q: %w", s.Action, ErrNotValid)
	}

	switch s.Interrupt {
	case InterruptApprove, InterruptReject, InterruptIgnore:
	case "":
		return fmt.Errorf("interrupt policy is unset: %w", ErrNotValid)
	default:
		return fmt.Errorf("unknown interrupt policy %q: %w", s.Interrupt, ErrNotValid)
	}

	return nil
}

// Task is a named sequence of steps with dependencies on other tasks.
type Task struct {
	ID        string
	DependsOn []string
	// StopOnError aborts the task's remaining steps when a step fails.
	StopOnError bool
	Steps       []Step
}

// Validate checks the task and all its steps.
func (t Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task id is required: %w", ErrNotValid)
	}

	for i, s := range t.Steps {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("task %q step %d: %w", t.ID, i, err)
		}
	}

	return nil
}

// Package taskfile loads test suites from YAML (or JSON, which YAML
// subsumes) files and turns them into validated domain tasks.
package taskfile

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wrun/wrun/internal/model"
)

// Suite is a named list of tasks loaded from one file.
type Suite struct {
	Name  string
	Tasks []model.Task
}

// YAMLRepository loads suites from YAML files.
type YAMLRepository struct {
	fs fs.FS
}

// NewYAMLRepository creates a new YAML suite repository.
func NewYAMLRepository(filesystem fs.FS) *YAMLRepository {
	return &YAMLRepository{fs: filesystem}
}

// GetSuite loads a suite from a file and returns validated domain tasks.
func (r *YAMLRepository) GetSuite(ctx context.Context, path string) (*Suite, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading task file: %w", err)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var sf suiteFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	suite, err := sf.toModel()
	if err != nil {
		return nil, fmt.Errorf("invalid task file: %w", err)
	}

	return suite, nil
}

// suiteFile is the on-disk schema.
type suiteFile struct {
	Name  string     `yaml:"name"`
	Tasks []taskFile `yaml:"tasks"`
}

type taskFile struct {
	ID          string     `yaml:"id"`
	Depends     []string   `yaml:"depends"`
	StopOnError *bool      `yaml:"stopOnError"`
	Steps       []stepFile `yaml:"steps"`
}

type stepFile struct {
	Action     string `yaml:"action"`
	Selector   string `yaml:"selector"`
	Value      string `yaml:"value"`
	URL        string `yaml:"url"`
	Ms         int    `yaml:"ms"`
	TimeoutMs  int    `yaml:"timeout"`
	Script     string `yaml:"script"`
	Screenshot string `yaml:"screenshot"`
	FullPage   bool   `yaml:"fullPage"`
	Wait       string `yaml:"wait"`
	Key        string `yaml:"key"`
	DelayMs    int    `yaml:"delay"`
	Interrupt  string `yaml:"interruptPolicy"`
}

func (f suiteFile) toModel() (*Suite, error) {
	if len(f.Tasks) == 0 {
		return nil, fmt.Errorf("task file has no tasks: %w", model.ErrNotValid)
	}

	suite := &Suite{Name: f.Name, Tasks: make([]model.Task, 0, len(f.Tasks))}
	for i, tf := range f.Tasks {
		task, err := tf.toModel()
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		suite.Tasks = append(suite.Tasks, task)
	}

	return suite, nil
}

func (f taskFile) toModel() (model.Task, error) {
	task := model.Task{
		ID:          f.ID,
		DependsOn:   append([]string(nil), f.Depends...),
		StopOnError: true,
	}
	if f.StopOnError != nil {
		task.StopOnError = *f.StopOnError
	}

	for i, sf := range f.Steps {
		step, err := sf.toModel()
		if err != nil {
			return model.Task{}, fmt.Errorf("step %d: %w", i, err)
		}
		task.Steps = append(task.Steps, step)
	}

	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}

	return task, nil
}

func (f stepFile) toModel() (model.Step, error) {
	step := model.Step{
		Action:    model.Action(f.Action),
		Selector:  f.Selector,
		Value:     f.Value,
		URL:       f.URL,
		Script:    f.Script,
		Key:       f.Key,
		Name:      f.Screenshot,
		FullPage:  f.FullPage,
		Duration:  time.Duration(f.Ms) * time.Millisecond,
		TypeDelay: time.Duration(f.DelayMs) * time.Millisecond,
		Timeout:   time.Duration(f.TimeoutMs) * time.Millisecond,
		Wait:      model.WaitPolicy(f.Wait),
		Interrupt: model.InterruptPolicy(f.Interrupt),
	}

	if step.Interrupt == "" {
		step.Interrupt = model.InterruptApprove
	}

	switch step.Wait {
	case "", model.WaitPolicyDOMReady, model.WaitPolicyLoad, model.WaitPolicyNetworkIdle:
	default:
		return model.Step{}, fmt.Errorf("unknown wait policy %q: %w", f.Wait, model.ErrNotValid)
	}

	return step, nil
}

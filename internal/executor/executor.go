// Package executor runs the steps of one task sequentially against a browser
// page and feeds click steps through the wallet interrupt handler.
package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wrun/wrun/internal/browser"
	"github.com/wrun/wrun/internal/log"
	"github.com/wrun/wrun/internal/model"
	"github.com/wrun/wrun/internal/wallet"
)

const (
	defaultStepTimeout     = 10 * time.Second
	defaultNavigateTimeout = 30 * time.Second
	defaultInterruptWait   = 3 * time.Second
)

// InterruptHandler resolves wallet popups spawned by click steps.
type InterruptHandler interface {
	Handle(ctx context.Context, bctx browser.Context, policy model.InterruptPolicy, waitTimeout time.Duration) (wallet.Result, error)
}

// ServiceConfig is the configuration for the executor service.
type ServiceConfig struct {
	Driver     browser.Driver
	Interrupts InterruptHandler
	// ArtifactsDir is where screenshots are written. Empty disables
	// persistence (the steps still succeed).
	ArtifactsDir string
	// StepTimeout applies to steps that carry no explicit timeout.
	StepTimeout     time.Duration
	NavigateTimeout time.Duration
	// InterruptWait bounds the wait for a popup to appear after a click.
	InterruptWait time.Duration
	Logger        log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Driver == nil {
		return fmt.Errorf("driver is required")
	}
	if c.Interrupts == nil {
		return fmt.Errorf("interrupt handler is required")
	}
	if c.StepTimeout <= 0 {
		c.StepTimeout = defaultStepTimeout
	}
	if c.NavigateTimeout <= 0 {
		c.NavigateTimeout = defaultNavigateTimeout
	}
	if c.InterruptWait <= 0 {
		c.InterruptWait = defaultInterruptWait
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "executor.Service"})
	return nil
}

// Service executes tasks step by step. It implements scheduler.TaskRunner.
type Service struct {
	driver     browser.Driver
	interrupts InterruptHandler
	cfg        ServiceConfig
	logger     log.Logger
}

// NewService creates a new executor service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		driver:     cfg.Driver,
		interrupts: cfg.Interrupts,
		cfg:        cfg,
		logger:     cfg.Logger,
	}, nil
}

// RunTask executes all steps of a task on its own isolated browsing context.
// Steps run strictly sequentially. The returned result always carries the
// results of every step that ran, even when the task aborted early.
func (s *Service) RunTask(ctx context.Context, task model.Task) model.TaskResult {
	logger := s.logger.WithValues(log.Kv{"task": task.ID})
	result := model.TaskResult{TaskID: task.ID}

	bctx, err := s.driver.NewContext(ctx)
	if err != nil {
		result.Error = fmt.Sprintf("could not create browsing context: %v", err)
		return result
	}
	defer bctx.Close()

	page, err := bctx.NewPage(ctx)
	if err != nil {
		result.Error = fmt.Sprintf("could not open page: %v", err)
		return result
	}

	failed := false
	for i, step := range task.Steps {
		stepRes := s.runStep(ctx, bctx, page, step)
		result.Steps = append(result.Steps, stepRes)

		if !stepRes.Success {
			failed = true
			logger.Warningf("step %d (%s) failed: %s", i, step.Action, stepRes.Error)
			if result.Error == "" {
				result.Error = fmt.Sprintf("step %d (%s): %s", i, step.Action, stepRes.Error)
			}
			if task.StopOnError {
				break
			}
		}
	}

	result.Success = !failed
	if result.Success {
		logger.Debugf("task completed, %d steps", len(result.Steps))
	}

	return result
}

func (s *Service) runStep(ctx context.Context, bctx browser.Context, page browser.Page, step model.Step) model.StepResult {
	start := time.Now()

	err := s.dispatch(ctx, page, step)

	// Only click steps spawn wallet popups; other actions never interrupt.
	if err == nil && step.Action == model.ActionClick && step.Interrupt != model.InterruptIgnore {
		err = s.handleInterrupt(ctx, bctx, step.Interrupt)
	}

	res := model.StepResult{
		Step:     step,
		Action:   step.Action,
		Selector: step.Selector,
		Duration: time.Since(start),
	}
	if err != nil {
		res.Error = err.Error()
	} else {
		res.Success = true
	}

	return res
}

func (s *Service) handleInterrupt(ctx context.Context, bctx browser.Context, policy model.InterruptPolicy) error {
	ir, err := s.interrupts.Handle(ctx, bctx, policy, s.cfg.InterruptWait)
	if err != nil {
		return fmt.Errorf("could not handle wallet popup: %w", err)
	}

	switch {
	case ir.TestFailed:
		return fmt.Errorf("wallet reported a failed %s, popup rejected", ir.Kind)
	case ir.HasPopup && !ir.Success:
		return fmt.Errorf("no %s control found on %s popup", ir.Action, ir.Kind)
	}

	return nil
}

// dispatch routes one step to the matching driver primitive. The switch is
// exhaustive over the action set; taskfile validation rejects unknown
// actions before anything runs.
func (s *Service) dispatch(ctx context.Context, page browser.Page, step model.Step) error {
	timeout := step.Timeout
	if timeout <= 0 {
		timeout = s.cfg.StepTimeout
	}

	switch step.Action {
	case model.ActionNavigate:
		navTimeout := step.Timeout
		if navTimeout <= 0 {
			navTimeout = s.cfg.NavigateTimeout
		}
		wait := step.Wait
		if wait == "" {
			wait = model.WaitPolicyDOMReady
		}
		return page.Navigate(ctx, step.URL, wait, navTimeout)
	case model.ActionClick:
		return page.Click(ctx, step.Selector, timeout)
	case model.ActionFill:
		return page.Fill(ctx, step.Selector, step.Value, timeout)
	case model.ActionSelect:
		return page.SelectOption(ctx, step.Selector, step.Value, timeout)
	case model.ActionCheck:
		return page.SetChecked(ctx, step.Selector, true, timeout)
	case model.ActionUncheck:
		return page.SetChecked(ctx, step.Selector, false, timeout)
	case model.ActionWait:
		return sleepCtx(ctx, step.Duration)
	case model.ActionWaitForSelector:
		return page.WaitForSelector(ctx, step.Selector, timeout)
	case model.ActionScreenshot:
		s.screenshot(ctx, page, step)
		return nil
	case model.ActionEvaluate:
		_, err := page.Evaluate(ctx, step.Script)
		return err
	case model.ActionType:
		return page.Type(ctx, step.Selector, step.Value, step.TypeDelay, timeout)
	case model.ActionHover:
		return page.Hover(ctx, step.Selector, timeout)
	case model.ActionPress:
		return page.Press(ctx, step.Selector, step.Key, timeout)
	default:
		return fmt.Errorf("unknown action %q: %w", step.Action, model.ErrNotValid)
	}
}

// screenshot is best effort: visual evidence is advisory, a persistence
// failure must not pollute the test outcome.
func (s *Service) screenshot(ctx context.Context, page browser.Page, step model.Step) {
	data, err := page.Screenshot(ctx, step.FullPage)
	if err != nil {
		s.logger.Warningf("could not capture screenshot %q: %v", step.Name, err)
		return
	}

	if s.cfg.ArtifactsDir == "" {
		return
	}

	if err := os.MkdirAll(s.cfg.ArtifactsDir, 0o755); err != nil {
		s.logger.Warningf("could not create artifacts dir: %v", err)
		return
	}

	path := filepath.Join(s.cfg.ArtifactsDir, step.Name+".png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Warningf("could not write screenshot %q: %v", path, err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

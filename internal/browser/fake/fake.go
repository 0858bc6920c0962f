// Package fake implements a scripted in-memory browser driver for tests. It
// simulates page actions and wallet popups without a real browser.
package fake

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/wrun/wrun/internal/browser"
	"github.com/wrun/wrun/internal/log"
	"github.com/wrun/wrun/internal/model"
)

// DriverConfig is the configuration for the fake driver.
type DriverConfig struct {
	// FailSelectors lists selectors whose actions fail.
	FailSelectors []string
	// FailURLs lists URLs whose navigation fails.
	FailURLs []string
	// ActionDelay is applied to every page action.
	ActionDelay time.Duration
	// PopupTrigger is a click selector that opens a wallet popup.
	PopupTrigger string
	// PopupURL is the URL of the spawned popup.
	PopupURL string
	// PopupText is the visible text of the spawned popup.
	PopupText string
	// PopupButtons lists the selectors that are clickable on the popup.
	PopupButtons []string
	Logger       log.Logger
}

func (c *DriverConfig) defaults() error {
	if c.PopupURL == "" {
		c.PopupURL = "chrome-extension://fake/notification.html"
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "browser.Fake"})
	return nil
}

// Driver is a fake implementation of the browser.Driver interface.
type Driver struct {
	cfg    DriverConfig
	logger log.Logger

	mu       sync.Mutex
	contexts int
	actions  []string
	closed   bool
}

// NewDriver creates a new fake driver.
func NewDriver(cfg DriverConfig) (*Driver, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Driver{cfg: cfg, logger: cfg.Logger}, nil
}

// Check always passes.
func (d *Driver) Check(ctx context.Context) []model.CheckResult {
	return []model.CheckResult{{ID: "fake_driver", Message: "fake driver ready", Status: model.CheckStatusOK}}
}

// NewContext returns a fresh fake browsing context.
func (d *Driver) NewContext(ctx context.Context) (browser.Context, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, fmt.Errorf("driver is closed: %w", model.ErrNotValid)
	}
	d.contexts++

	return &Context{driver: d, popupCh: make(chan *Page, 1)}, nil
}

// Close marks the driver closed.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// ContextCount returns how many browsing contexts were handed out.
func (d *Driver) ContextCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.contexts
}

// Actions returns the recorded page actions in order.
func (d *Driver) Actions() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.actions...)
}

func (d *Driver) record(action string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actions = append(d.actions, action)
}

// Context is a fake browsing context.
type Context struct {
	driver *Driver

	mu      sync.Mutex
	pages   []*Page
	popupCh chan *Page
}

func (c *Context) NewPage(ctx context.Context) (browser.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := &Page{ctx: c, url: "about:blank"}
	c.pages = append(c.pages, p)
	return p, nil
}

func (c *Context) Pages(ctx context.Context) ([]browser.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]browser.Page, 0, len(c.pages))
	for _, p := range c.pages {
		result = append(result, p)
	}
	return result, nil
}

func (c *Context) WaitForPage(ctx context.Context, timeout time.Duration) (browser.Page, error) {
	select {
	case p := <-c.popupCh:
		return p, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("no page opened within %s: %w", timeout, model.ErrNotFound)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.pages {
		p.closed = true
	}
	return nil
}

// openPopup spawns the configured wallet popup in the context.
func (c *Context) openPopup() {
	cfg := c.driver.cfg
	p := &Page{
		ctx:     c,
		url:     cfg.PopupURL,
		text:    cfg.PopupText,
		buttons: append([]string(nil), cfg.PopupButtons...),
	}

	c.mu.Lock()
	c.pages = append(c.pages, p)
	c.mu.Unlock()

	select {
	case c.popupCh <- p:
	default:
	}
}

// Page is a fake page that records actions and fails on configured
// selectors/URLs.
type Page struct {
	ctx *Context

	mu      sync.Mutex
	url     string
	text    string
	buttons []string
	closed  bool
}

func (p *Page) act(ctx context.Context, action, target string) error {
	cfg := p.ctx.driver.cfg

	if cfg.ActionDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.ActionDelay):
		}
	}

	p.ctx.driver.record(action + " " + target)

	if slices.Contains(cfg.FailSelectors, target) {
		return fmt.Errorf("element %q: %w", target, model.ErrNotFound)
	}
	return nil
}

func (p *Page) Navigate(ctx context.Context, url string, wait model.WaitPolicy, timeout time.Duration) error {
	if err := p.act(ctx, "navigate", url); err != nil {
		return err
	}
	if slices.Contains(p.ctx.driver.cfg.FailURLs, url) {
		return fmt.Errorf("navigation to %q failed: %w", url, model.ErrNotFound)
	}

	p.mu.Lock()
	p.url = url
	p.mu.Unlock()
	return nil
}

func (p *Page) Click(ctx context.Context, selector string, timeout time.Duration) error {
	if err := p.act(ctx, "click", selector); err != nil {
		return err
	}
	if selector == p.ctx.driver.cfg.PopupTrigger {
		p.ctx.openPopup()
	}
	return nil
}

func (p *Page) Fill(ctx context.Context, selector, value string, timeout time.Duration) error {
	return p.act(ctx, "fill", selector)
}

func (p *Page) SelectOption(ctx context.Context, selector, value string, timeout time.Duration) error {
	return p.act(ctx, "select", selector)
}

func (p *Page) SetChecked(ctx context.Context, selector string, checked bool, timeout time.Duration) error {
	return p.act(ctx, "check", selector)
}

func (p *Page) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	p.mu.Lock()
	isPopup := len(p.buttons) > 0
	p.mu.Unlock()

	// Popup pages are immediately interactive; regular pages resolve any
	// selector that is not configured to fail.
	if isPopup && selector == "button" {
		return nil
	}
	return p.act(ctx, "waitForSelector", selector)
}

func (p *Page) Evaluate(ctx context.Context, script string) (string, error) {
	if err := p.act(ctx, "evaluate", script); err != nil {
		return "", err
	}
	return "", nil
}

func (p *Page) Type(ctx context.Context, selector, text string, delay, timeout time.Duration) error {
	return p.act(ctx, "type", selector)
}

func (p *Page) Hover(ctx context.Context, selector string, timeout time.Duration) error {
	return p.act(ctx, "hover", selector)
}

func (p *Page) Press(ctx context.Context, selector, key string, timeout time.Duration) error {
	return p.act(ctx, "press", selector)
}

func (p *Page) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	if err := p.act(ctx, "screenshot", p.URL()); err != nil {
		return nil, err
	}
	return []byte("png"), nil
}

func (p *Page) Text(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.text, nil
}

func (p *Page) ClickFirstVisible(ctx context.Context, selectors []string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, sel := range selectors {
		if slices.Contains(p.buttons, sel) {
			p.ctx.driver.record("popupClick " + sel)
			p.closed = true
			return sel, nil
		}
	}
	return "", fmt.Errorf("no visible enabled control matched: %w", model.ErrNotFound)
}

func (p *Page) WaitClosed(ctx context.Context, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	return fmt.Errorf("page still open after %s: %w", timeout, model.ErrTimeout)
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

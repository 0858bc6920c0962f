package rod

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"

	"github.com/wrun/wrun/internal/model"
)

var lifecycleEvents = map[model.WaitPolicy]proto.PageLifecycleEventName{
	model.WaitPolicyDOMReady:    proto.PageLifecycleEventNameDOMContentLoaded,
	model.WaitPolicyLoad:        proto.PageLifecycleEventNameLoad,
	model.WaitPolicyNetworkIdle: proto.PageLifecycleEventNameNetworkIdle,
}

// Named keys accepted by press steps. Single printable characters work
// without an entry.
var namedKeys = map[string]input.Key{
	"Enter":      input.Enter,
	"Tab":        input.Tab,
	"Escape":     input.Escape,
	"Backspace":  input.Backspace,
	"Delete":     input.Delete,
	"ArrowUp":    input.ArrowUp,
	"ArrowDown":  input.ArrowDown,
	"ArrowLeft":  input.ArrowLeft,
	"ArrowRight": input.ArrowRight,
	"Home":       input.Home,
	"End":        input.End,
	"PageUp":     input.PageUp,
	"PageDown":   input.PageDown,
}

// page wraps a rod page as a driver page.
type page struct {
	p *rod.Page
}

func (pg *page) Navigate(ctx context.Context, url string, wait model.WaitPolicy, timeout time.Duration) error {
	event, ok := lifecycleEvents[wait]
	if !ok {
		event = proto.PageLifecycleEventNameDOMContentLoaded
	}

	p := pg.p.Context(ctx).Timeout(timeout)
	waitNav := p.WaitNavigation(event)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("could not navigate to %s: %w", url, err)
	}
	waitNav()

	return nil
}

func (pg *page) element(ctx context.Context, selector string, timeout time.Duration) (*rod.Element, error) {
	el, err := pg.p.Context(ctx).Timeout(timeout).Element(selector)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("element %q not present after %s: %w", selector, timeout, model.ErrTimeout)
		}
		return nil, fmt.Errorf("element %q: %w", selector, err)
	}
	return el, nil
}

func (pg *page) Click(ctx context.Context, selector string, timeout time.Duration) error {
	el, err := pg.element(ctx, selector, timeout)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (pg *page) Fill(ctx context.Context, selector, value string, timeout time.Duration) error {
	el, err := pg.element(ctx, selector, timeout)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("could not select text on %q: %w", selector, err)
	}
	return el.Input(value)
}

func (pg *page) SelectOption(ctx context.Context, selector, value string, timeout time.Duration) error {
	el, err := pg.element(ctx, selector, timeout)
	if err != nil {
		return err
	}
	return el.Select([]string{value}, true, rod.SelectorTypeText)
}

func (pg *page) SetChecked(ctx context.Context, selector string, checked bool, timeout time.Duration) error {
	el, err := pg.element(ctx, selector, timeout)
	if err != nil {
		return err
	}

	prop, err := el.Property("checked")
	if err != nil {
		return fmt.Errorf("could not read checked state of %q: %w", selector, err)
	}
	if prop.Bool() == checked {
		return nil
	}

	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (pg *page) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	_, err := pg.element(ctx, selector, timeout)
	return err
}

func (pg *page) Evaluate(ctx context.Context, script string) (string, error) {
	js := strings.TrimSpace(script)
	// rod evaluates functions; wrap bare statements.
	if !strings.HasPrefix(js, "(") && !strings.HasPrefix(js, "function") {
		js = "() => { " + js + " }"
	}

	res, err := pg.p.Context(ctx).Eval(js)
	if err != nil {
		return "", fmt.Errorf("script failed: %w", err)
	}
	return res.Value.String(), nil
}

func (pg *page) Type(ctx context.Context, selector, text string, delay time.Duration, timeout time.Duration) error {
	el, err := pg.element(ctx, selector, timeout)
	if err != nil {
		return err
	}
	if err := el.Focus(); err != nil {
		return fmt.Errorf("could not focus %q: %w", selector, err)
	}

	if delay <= 0 {
		return el.Input(text)
	}

	for _, r := range text {
		if err := el.Type(input.Key(r)); err != nil {
			return fmt.Errorf("could not type into %q: %w", selector, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil
}

func (pg *page) Hover(ctx context.Context, selector string, timeout time.Duration) error {
	el, err := pg.element(ctx, selector, timeout)
	if err != nil {
		return err
	}
	return el.Hover()
}

func (pg *page) Press(ctx context.Context, selector, key string, timeout time.Duration) error {
	el, err := pg.element(ctx, selector, timeout)
	if err != nil {
		return err
	}
	if err := el.Focus(); err != nil {
		return fmt.Errorf("could not focus %q: %w", selector, err)
	}

	k, ok := namedKeys[key]
	if !ok {
		runes := []rune(key)
		if len(runes) != 1 {
			return fmt.Errorf("unknown key %q: %w", key, model.ErrNotValid)
		}
		k = input.Key(runes[0])
	}

	return pg.p.Context(ctx).Keyboard.Press(k)
}

func (pg *page) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	data, err := pg.p.Context(ctx).Screenshot(fullPage, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("could not capture screenshot: %w", err)
	}
	return data, nil
}

func (pg *page) Text(ctx context.Context) (string, error) {
	el, err := pg.p.Context(ctx).Element("body")
	if err != nil {
		return "", fmt.Errorf("could not find body: %w", err)
	}
	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("could not read body text: %w", err)
	}
	return text, nil
}

func (pg *page) ClickFirstVisible(ctx context.Context, selectors []string) (string, error) {
	for _, selector := range selectors {
		el, err := pg.p.Context(ctx).Timeout(time.Second).Element(selector)
		if err != nil {
			continue
		}

		visible, err := el.Visible()
		if err != nil || !visible {
			continue
		}
		if prop, err := el.Property("disabled"); err == nil && prop.Bool() {
			continue
		}

		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			continue
		}
		return selector, nil
	}

	return "", fmt.Errorf("no visible enabled control matched: %w", model.ErrNotFound)
}

func (pg *page) WaitClosed(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if pg.Closed() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return fmt.Errorf("page still open after %s: %w", timeout, model.ErrTimeout)
}

func (pg *page) URL() string {
	info, err := pg.p.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (pg *page) Closed() bool {
	_, err := pg.p.Info()
	return err != nil
}

func (pg *page) Close() error {
	return pg.p.Close()
}

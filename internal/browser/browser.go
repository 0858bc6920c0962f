// Package browser defines the driver boundary against the real browser.
// Everything above this package (executor, scheduler, wallet handler) talks
// to these interfaces only; the rod implementation and the test fakes live
// in subpackages.
package browser

import (
	"context"
	"time"

	"github.com/wrun/wrun/internal/model"
)

// Driver owns one browser process and hands out isolated browsing contexts.
type Driver interface {
	// Check performs preflight checks and returns the results. Checks verify
	// that the browser binary exists and can be driven.
	Check(ctx context.Context) []model.CheckResult

	// NewContext returns a fresh, isolated browsing context. Each task owns
	// exactly one context for its lifetime; contexts are never shared.
	NewContext(ctx context.Context) (Context, error)

	Close() error
}

// Context is one isolated browsing context (cookie jar, pages, extensions).
type Context interface {
	// NewPage opens a blank page in the context.
	NewPage(ctx context.Context) (Page, error)

	// Pages enumerates the currently open pages of the context.
	Pages(ctx context.Context) ([]Page, error)

	// WaitForPage blocks until a new page opens in the context or the
	// timeout elapses. A timeout is reported as model.ErrNotFound.
	WaitForPage(ctx context.Context, timeout time.Duration) (Page, error)

	Close() error
}

// Page is one tab/window. All operations honor the given context and bound
// themselves with the given timeout where one is taken.
type Page interface {
	Navigate(ctx context.Context, url string, wait model.WaitPolicy, timeout time.Duration) error
	Click(ctx context.Context, selector string, timeout time.Duration) error
	Fill(ctx context.Context, selector, value string, timeout time.Duration) error
	SelectOption(ctx context.Context, selector, value string, timeout time.Duration) error
	SetChecked(ctx context.Context, selector string, checked bool, timeout time.Duration) error
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
	Evaluate(ctx context.Context, script string) (string, error)
	Type(ctx context.Context, selector, text string, delay time.Duration, timeout time.Duration) error
	Hover(ctx context.Context, selector string, timeout time.Duration) error
	Press(ctx context.Context, selector, key string, timeout time.Duration) error

	// Screenshot captures the page as PNG bytes.
	Screenshot(ctx context.Context, fullPage bool) ([]byte, error)

	// Text returns the visible text of the page body.
	Text(ctx context.Context) (string, error)

	// ClickFirstVisible clicks the first selector from the list that matches
	// a visible, enabled element and returns it. model.ErrNotFound when none
	// matches.
	ClickFirstVisible(ctx context.Context, selectors []string) (string, error)

	// WaitClosed blocks until the page closes or the timeout elapses. A
	// timeout is reported as model.ErrNotFound.
	WaitClosed(ctx context.Context, timeout time.Duration) error

	URL() string
	Closed() bool
	Close() error
}

// Package wallet resolves the asynchronous wallet-extension popups that
// click steps can spawn in a second tab. The handler finds the popup,
// classifies it, and approves or rejects it within bounded waits so a broken
// popup can never hang a task.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wrun/wrun/internal/browser"
	"github.com/wrun/wrun/internal/log"
	"github.com/wrun/wrun/internal/model"
)

const (
	defaultSettleDelay  = 500 * time.Millisecond
	defaultReadyTimeout = 5 * time.Second
	defaultCloseTimeout = 5 * time.Second
)

// Result is the outcome of one interrupt-handling call.
type Result struct {
	// HasPopup is false when no popup appeared within the wait. That is not
	// an error; most steps have no interrupt.
	HasPopup bool
	Kind     Kind
	// Action is what was done to the popup: "approve" or "reject".
	Action string
	// Success is false when no matching control could be clicked. The caller
	// decides whether that fails the enclosing step.
	Success bool
	// TestFailed is set when the popup carried an error classification (e.g.
	// insufficient funds). Approving a failing transaction is never a valid
	// automated action, so the popup is force-rejected.
	TestFailed bool
}

// HandlerConfig is the configuration for the interrupt handler.
type HandlerConfig struct {
	Classifier Classifier
	// SettleDelay gives a side-channel window time to materialize before
	// existing pages are searched.
	SettleDelay  time.Duration
	ReadyTimeout time.Duration
	CloseTimeout time.Duration
	// PopupURLParts mark a page as a wallet popup when its URL contains any
	// of them.
	PopupURLParts    []string
	RejectSelectors  []string
	ApproveSelectors map[Kind][]string
	Logger           log.Logger
}

func (c *HandlerConfig) defaults() error {
	if c.Classifier == nil {
		c.Classifier = NewPatternClassifier()
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = defaultSettleDelay
	}
	if c.ReadyTimeout <= 0 {
		c.ReadyTimeout = defaultReadyTimeout
	}
	if c.CloseTimeout <= 0 {
		c.CloseTimeout = defaultCloseTimeout
	}
	if len(c.PopupURLParts) == 0 {
		c.PopupURLParts = []string{"chrome-extension://", "notification.html", "popup.html"}
	}
	if len(c.RejectSelectors) == 0 {
		c.RejectSelectors = []string{
			`button[data-testid="page-container-footer-cancel"]`,
			`button[data-testid="cancel-btn"]`,
			`button[data-testid="confirm-footer-cancel-button"]`,
		}
	}
	if c.ApproveSelectors == nil {
		// Signature, transaction and connection popups each have distinct
		// canonical control locations.
		c.ApproveSelectors = map[Kind][]string{
			KindSignature: {
				`button[data-testid="confirm-footer-button"]`,
				`button[data-testid="signature-sign-button"]`,
				`button[data-testid="page-container-footer-next"]`,
			},
			KindTransaction: {
				`button[data-testid="confirm-footer-button"]`,
				`button[data-testid="page-container-footer-next"]`,
			},
			KindConnect: {
				`button[data-testid="connect-button"]`,
				`button[data-testid="confirm-btn"]`,
				`button[data-testid="page-container-footer-next"]`,
			},
			KindUnknown: {
				`button[data-testid="confirm-footer-button"]`,
				`button[data-testid="page-container-footer-next"]`,
			},
		}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "wallet.Handler"})
	return nil
}

// Handler implements the popup detection and resolution protocol.
type Handler struct {
	cfg    HandlerConfig
	logger log.Logger
}

// NewHandler creates a new interrupt handler.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Handler{cfg: cfg, logger: cfg.Logger}, nil
}

// Handle searches the browsing context for a wallet popup and resolves it
// according to the policy. With policy ignore it returns immediately without
// any detection or wait. Ownership of a found popup page is scoped to this
// call: it is closed on normal approve/reject completion and only left open
// when no popup was found.
func (h *Handler) Handle(ctx context.Context, bctx browser.Context, policy model.InterruptPolicy, waitTimeout time.Duration) (Result, error) {
	if policy == model.InterruptIgnore {
		return Result{}, nil
	}

	if err := sleepCtx(ctx, h.cfg.SettleDelay); err != nil {
		return Result{}, err
	}

	popup, err := h.findPopup(ctx, bctx, waitTimeout)
	if err != nil {
		return Result{}, err
	}
	if popup == nil {
		return Result{}, nil
	}

	// Bounded wait for a minimally interactive popup. A failure here is
	// tolerated: classification still runs on whatever rendered, and the
	// resolution step reports the missing control.
	if err := popup.WaitForSelector(ctx, "button", h.cfg.ReadyTimeout); err != nil {
		h.logger.Debugf("popup did not become interactive: %v", err)
	}

	text, err := popup.Text(ctx)
	if err != nil {
		h.logger.Warningf("could not read popup text: %v", err)
	}
	cls := h.cfg.Classifier.Classify(text)

	return h.resolve(ctx, popup, cls, policy)
}

// findPopup searches existing pages for a wallet popup and otherwise races a
// new-page event against the wait timeout. Returns nil when nothing appears.
func (h *Handler) findPopup(ctx context.Context, bctx browser.Context, waitTimeout time.Duration) (browser.Page, error) {
	pages, err := bctx.Pages(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not enumerate pages: %w", err)
	}
	for _, p := range pages {
		if !p.Closed() && h.isPopupURL(p.URL()) {
			return p, nil
		}
	}

	page, err := bctx.WaitForPage(ctx, waitTimeout)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not wait for popup page: %w", err)
	}
	if h.isPopupURL(page.URL()) {
		return page, nil
	}

	// A page opened but it is not a wallet window (e.g. an app-controlled
	// tab). Leave it alone.
	return nil, nil
}

func (h *Handler) isPopupURL(url string) bool {
	for _, part := range h.cfg.PopupURLParts {
		if strings.Contains(url, part) {
			return true
		}
	}
	return false
}

func (h *Handler) resolve(ctx context.Context, popup browser.Page, cls Classification, policy model.InterruptPolicy) (Result, error) {
	// Error classification forces rejection no matter what was requested.
	if cls.Failed() {
		h.logger.Warningf("popup reports a failed interaction (%s), rejecting", cls.ErrorKind)
		h.clickAndClose(ctx, popup, h.cfg.RejectSelectors)
		return Result{
			HasPopup:   true,
			Kind:       cls.Kind,
			Action:     "reject",
			Success:    false,
			TestFailed: true,
		}, nil
	}

	selectors := h.cfg.ApproveSelectors[cls.Kind]
	action := "approve"
	if policy == model.InterruptReject {
		selectors = h.cfg.RejectSelectors
		action = "reject"
	}
	if len(selectors) == 0 {
		selectors = h.cfg.ApproveSelectors[KindUnknown]
	}

	clicked := h.clickAndClose(ctx, popup, selectors)
	if !clicked {
		// The popup is there but carries no clickable control for the
		// requested action.
		return Result{HasPopup: true, Kind: cls.Kind, Action: action, Success: false}, nil
	}

	h.logger.Debugf("popup %s resolved with %s", cls.Kind, action)
	return Result{HasPopup: true, Kind: cls.Kind, Action: action, Success: true}, nil
}

// clickAndClose clicks the first visible and enabled control from the
// selector list, then waits (bounded) for the popup to close. Timing out on
// the close wait is tolerated; the page is then closed explicitly so popup
// ownership ends with this call.
func (h *Handler) clickAndClose(ctx context.Context, popup browser.Page, selectors []string) bool {
	sel, err := popup.ClickFirstVisible(ctx, selectors)
	if err != nil {
		h.logger.Debugf("no matching popup control: %v", err)
		return false
	}
	h.logger.Debugf("clicked popup control %q", sel)

	if err := popup.WaitClosed(ctx, h.cfg.CloseTimeout); err != nil {
		if !popup.Closed() {
			_ = popup.Close()
		}
	}
	return true
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

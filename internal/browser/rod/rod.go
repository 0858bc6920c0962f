// Package rod implements the browser driver on top of go-rod driving a real
// Chromium instance over the DevTools protocol.
package rod

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/wrun/wrun/internal/browser"
	"github.com/wrun/wrun/internal/log"
	"github.com/wrun/wrun/internal/model"
)

// DriverConfig is the configuration for the rod driver.
type DriverConfig struct {
	// Bin is the browser binary. Empty uses the launcher's lookup.
	Bin      string
	Headless bool
	// UserDataDir is the browser profile directory. Empty uses a temporary
	// profile.
	UserDataDir string
	// ExtensionDir loads an unpacked extension (e.g. a wallet) into the
	// browser.
	ExtensionDir string
	Logger       log.Logger
}

func (c *DriverConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "browser.Rod"})
	return nil
}

// Driver drives one Chromium process. The browser is launched lazily on the
// first context request.
type Driver struct {
	cfg    DriverConfig
	logger log.Logger

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewDriver creates a new rod driver. The browser process is not started
// until NewContext is first called.
func NewDriver(cfg DriverConfig) (*Driver, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Driver{cfg: cfg, logger: cfg.Logger}, nil
}

// Check performs preflight checks for the driver.
func (d *Driver) Check(ctx context.Context) []model.CheckResult {
	var results []model.CheckResult

	bin := d.cfg.Bin
	if bin == "" {
		found, ok := launcher.LookPath()
		if !ok {
			results = append(results, model.CheckResult{
				ID:      "browser_binary",
				Message: "no Chromium-based browser found in known locations",
				Status:  model.CheckStatusError,
			})
		} else {
			bin = found
			results = append(results, model.CheckResult{
				ID:      "browser_binary",
				Message: fmt.Sprintf("found %s", bin),
				Status:  model.CheckStatusOK,
			})
		}
	} else {
		if _, err := os.Stat(bin); err != nil {
			results = append(results, model.CheckResult{
				ID:      "browser_binary",
				Message: fmt.Sprintf("binary %s not accessible: %v", bin, err),
				Status:  model.CheckStatusError,
			})
		} else {
			results = append(results, model.CheckResult{
				ID:      "browser_binary",
				Message: fmt.Sprintf("using %s", bin),
				Status:  model.CheckStatusOK,
			})
		}
	}

	if d.cfg.ExtensionDir != "" {
		if _, err := os.Stat(d.cfg.ExtensionDir); err != nil {
			results = append(results, model.CheckResult{
				ID:      "wallet_extension",
				Message: fmt.Sprintf("extension dir %s not accessible: %v", d.cfg.ExtensionDir, err),
				Status:  model.CheckStatusError,
			})
		} else {
			results = append(results, model.CheckResult{
				ID:      "wallet_extension",
				Message: fmt.Sprintf("loading unpacked extension from %s", d.cfg.ExtensionDir),
				Status:  model.CheckStatusOK,
			})
		}

		if d.cfg.Headless {
			results = append(results, model.CheckResult{
				ID:      "headless_extension",
				Message: "extensions in headless mode require a recent Chromium (headless=new)",
				Status:  model.CheckStatusWarning,
			})
		}
	}

	return results
}

// NewContext returns an isolated browsing context. Without a wallet
// extension this is an incognito context; with one it is the main browser
// context, because Chromium does not run extensions in incognito windows.
func (d *Driver) NewContext(ctx context.Context) (browser.Context, error) {
	b, err := d.ensureStarted(ctx)
	if err != nil {
		return nil, err
	}

	if d.cfg.ExtensionDir != "" {
		return &browsingContext{browser: b, shared: true}, nil
	}

	incognito, err := b.Incognito()
	if err != nil {
		return nil, fmt.Errorf("could not create incognito context: %w", err)
	}

	return &browsingContext{browser: incognito}, nil
}

func (d *Driver) ensureStarted(ctx context.Context) (*rod.Browser, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.browser != nil {
		return d.browser, nil
	}

	l := launcher.New().Headless(d.cfg.Headless)
	if d.cfg.Bin != "" {
		l = l.Bin(d.cfg.Bin)
	}
	if d.cfg.UserDataDir != "" {
		l = l.UserDataDir(d.cfg.UserDataDir)
	}
	if d.cfg.ExtensionDir != "" {
		l = l.Set(flags.Flag("load-extension"), d.cfg.ExtensionDir)
		l = l.Set(flags.Flag("disable-extensions-except"), d.cfg.ExtensionDir)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("could not connect to browser: %w", err)
	}

	d.logger.Debugf("Browser started at %s", controlURL)
	d.launcher = l
	d.browser = b

	return b, nil
}

// Close shuts down the browser process.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.browser == nil {
		return nil
	}

	err := d.browser.Close()
	d.launcher.Cleanup()
	d.browser = nil
	d.launcher = nil

	if err != nil {
		return fmt.Errorf("could not close browser: %w", err)
	}
	return nil
}

// browsingContext wraps one rod browser (incognito or main) as an isolated
// context.
type browsingContext struct {
	browser *rod.Browser
	// shared marks the main browser context; closing it must not kill the
	// browser owned by the driver.
	shared bool
}

func (c *browsingContext) NewPage(ctx context.Context) (browser.Page, error) {
	p, err := c.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("could not open page: %w", err)
	}
	return &page{p: p}, nil
}

func (c *browsingContext) Pages(ctx context.Context) ([]browser.Page, error) {
	pages, err := c.browser.Context(ctx).Pages()
	if err != nil {
		return nil, fmt.Errorf("could not list pages: %w", err)
	}

	result := make([]browser.Page, 0, len(pages))
	for _, p := range pages {
		result = append(result, &page{p: p})
	}
	return result, nil
}

func (c *browsingContext) WaitForPage(ctx context.Context, timeout time.Duration) (browser.Page, error) {
	b := c.browser.Context(ctx).Timeout(timeout)

	var ev proto.TargetTargetCreated
	wait := b.WaitEvent(&ev)
	wait()

	// The wait returns with an empty event when the timeout fired first.
	if ev.TargetInfo == nil || ev.TargetInfo.Type != proto.TargetTargetInfoTypePage {
		return nil, fmt.Errorf("no page opened within %s: %w", timeout, model.ErrNotFound)
	}

	p, err := c.browser.PageFromTarget(ev.TargetInfo.TargetID)
	if err != nil {
		return nil, fmt.Errorf("could not attach to new page: %w", err)
	}

	return &page{p: p}, nil
}

func (c *browsingContext) Close() error {
	if c.shared {
		// The driver owns the main browser; it is closed in Driver.Close.
		return nil
	}
	return c.browser.Close()
}

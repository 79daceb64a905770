package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog"

	"github.com/polzovatel/mmid-page-model/internal/session"
)

const (
	defaultNavTimeout = 30 * time.Second
	defaultActionTime = 10 * time.Second
	defaultStableWait = 2 * time.Second
	quietPeriod       = 300 * time.Millisecond
)

// Options configures the browser.
type Options struct {
	Headless   bool
	NavTimeout time.Duration
}

// Controller exposes page navigation and identifier-addressed actions.
type Controller interface {
	Close(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
	GoBack(ctx context.Context) error
	Click(ctx context.Context, mmid int) error
	Fill(ctx context.Context, mmid int, text string) error
	Read(ctx context.Context, mmid int) (string, error)
	Hover(ctx context.Context, mmid int) error
	WaitForStableDOM(ctx context.Context, timeout time.Duration) error
	SaveState(ctx context.Context, path string) error
	Page() playwright.Page
}

// Launcher owns playwright lifecycle.
type Launcher struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
	logger  zerolog.Logger
}

func NewLauncher(ctx context.Context, opts Options, logger zerolog.Logger) (*Launcher, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = defaultNavTimeout
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	logger.Debug().Bool("headless", opts.Headless).Msg("browser launched")
	return &Launcher{pw: pw, browser: browser, opts: opts, logger: logger}, nil
}

// NewController opens a page in a fresh context, loading storage state from
// storagePath when the file exists.
func (l *Launcher) NewController(ctx context.Context, storagePath string) (Controller, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := playwright.BrowserNewContextOptions{
		IgnoreHttpsErrors: playwright.Bool(true),
	}
	if strings.TrimSpace(storagePath) != "" {
		if _, err := os.Stat(storagePath); err == nil {
			opts.StorageStatePath = playwright.String(storagePath)
		}
	}
	bctx, err := l.browser.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("new context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("new page: %w", err)
	}
	page.SetDefaultTimeout(float64(l.opts.NavTimeout.Milliseconds()))
	return &controller{context: bctx, page: page, navTimeout: l.opts.NavTimeout}, nil
}

func (l *Launcher) Close() error {
	if l.browser != nil {
		_ = l.browser.Close()
	}
	if l.pw != nil {
		return l.pw.Stop()
	}
	return nil
}

// Selector addresses the element tagged with mmid.
func Selector(mmid int) string {
	return fmt.Sprintf("[%s=%q]", session.Attribute, fmt.Sprint(mmid))
}

type controller struct {
	context    playwright.BrowserContext
	page       playwright.Page
	navTimeout time.Duration
}

func (c *controller) Page() playwright.Page {
	return c.page
}

func (c *controller) Close(ctx context.Context) error {
	_ = ctx
	if c.page != nil {
		_ = c.page.Close()
	}
	if c.context != nil {
		return c.context.Close()
	}
	return nil
}

// Navigate loads url. Identifiers of the previous page are gone afterwards
// and must be injected again.
func (c *controller) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(float64(c.navTimeout.Milliseconds())),
	})
	return wrap(err)
}

func (c *controller) GoBack(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.page.GoBack()
	return wrap(err)
}

func (c *controller) locate(mmid int) (playwright.Locator, error) {
	first := c.page.Locator(Selector(mmid)).First()
	if err := first.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(defaultActionTime.Milliseconds())),
	}); err != nil {
		return nil, wrap(err)
	}
	return first, nil
}

func (c *controller) Click(ctx context.Context, mmid int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	loc, err := c.locate(mmid)
	if err != nil {
		return err
	}
	// click anyway if scrolling fails
	_ = loc.ScrollIntoViewIfNeeded()
	return wrap(loc.Click())
}

func (c *controller) Fill(ctx context.Context, mmid int, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	loc, err := c.locate(mmid)
	if err != nil {
		return err
	}
	return wrap(loc.Fill(text))
}

// Read returns the inner text of the element, or its value for form controls.
func (c *controller) Read(ctx context.Context, mmid int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	loc, err := c.locate(mmid)
	if err != nil {
		return "", err
	}
	tag, err := loc.Evaluate(`el => el.tagName.toLowerCase()`, nil)
	if err != nil {
		return "", wrap(err)
	}
	switch tag {
	case "input", "textarea", "select":
		val, err := loc.InputValue()
		return val, wrap(err)
	}
	val, err := loc.InnerText()
	return val, wrap(err)
}

// Hover reveals content that only appears on pointer-over.
func (c *controller) Hover(ctx context.Context, mmid int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	loc, err := c.locate(mmid)
	if err != nil {
		return err
	}
	return wrap(loc.Hover())
}

// WaitForStableDOM waits for network idle and then for a quiet period
// without DOM mutations.
func (c *controller) WaitForStableDOM(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = defaultStableWait
	}
	if err := c.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	}); err != nil {
		_ = c.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
			State:   playwright.LoadStateDomcontentloaded,
			Timeout: playwright.Float(1000),
		})
	}
	script := `(quiet) => new Promise((resolve) => {
		let timeoutId;
		const observer = new MutationObserver(() => {
			clearTimeout(timeoutId);
			timeoutId = setTimeout(() => { observer.disconnect(); resolve(); }, quiet);
		});
		observer.observe(document.documentElement, {childList: true, subtree: true, attributes: true});
		timeoutId = setTimeout(() => { observer.disconnect(); resolve(); }, quiet);
	})`
	_, err := c.page.Evaluate(script, quietPeriod.Milliseconds())
	return wrap(err)
}

func (c *controller) SaveState(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	state, err := c.context.StorageState()
	if err != nil {
		return wrap(err)
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal storage: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("playwright: %w", err)
}

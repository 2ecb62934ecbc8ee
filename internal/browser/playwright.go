package browser

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// PlaywrightLauncher starts Chromium through playwright-go.
// Browsers must already be installed:
// go run github.com/playwright-community/playwright-go/cmd/playwright@latest install chromium
type PlaywrightLauncher struct {
	opts Options
}

// Launch starts Playwright and a Chromium instance
func (l *PlaywrightLauncher) Launch(ctx context.Context) (Browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.opts.Headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch chromium: %w", err)
	}

	l.opts.Logger.Info("browser launched",
		zap.String("driver", DriverPlaywright),
		zap.Bool("headless", l.opts.Headless),
		zap.String("version", b.Version()),
	)

	return &playwrightBrowser{pw: pw, browser: b, opts: l.opts}, nil
}

type playwrightBrowser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
}

// NewPage opens a page in its own browser context so cookies and storage do
// not leak between scenarios.
func (b *playwrightBrowser) NewPage(ctx context.Context) (Page, error) {
	bctx, err := b.browser.NewContext(playwright.BrowserNewContextOptions{
		BaseURL: playwright.String(b.opts.BaseURL),
		Locale:  playwright.String(b.opts.Locale),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	if b.opts.ActionTimeout > 0 {
		page.SetDefaultTimeout(float64(b.opts.ActionTimeout.Milliseconds()))
	}

	return &playwrightPage{page: page, bctx: bctx, baseURL: b.opts.BaseURL}, nil
}

func (b *playwrightBrowser) Close() error {
	if err := b.browser.Close(); err != nil {
		b.pw.Stop()
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return b.pw.Stop()
}

type playwrightPage struct {
	page    playwright.Page
	bctx    playwright.BrowserContext
	baseURL string
}

func (p *playwrightPage) first(selector string) playwright.Locator {
	return p.page.Locator(selector).First()
}

// present guards single-element reads so they fail fast instead of waiting
// for the driver's default timeout.
func (p *playwrightPage) present(selector string) (playwright.Locator, error) {
	loc := p.page.Locator(selector)
	n, err := loc.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", selector, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return loc.First(), nil
}

func (p *playwrightPage) Goto(ctx context.Context, path string) error {
	if _, err := p.page.Goto(resolve(p.baseURL, path)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", path, err)
	}
	return nil
}

func (p *playwrightPage) Reload(ctx context.Context) error {
	if _, err := p.page.Reload(); err != nil {
		return fmt.Errorf("failed to reload page: %w", err)
	}
	return nil
}

func (p *playwrightPage) URL(ctx context.Context) (string, error) {
	return p.page.URL(), nil
}

func (p *playwrightPage) Click(ctx context.Context, selector string) error {
	if err := p.first(selector).Click(); err != nil {
		return fmt.Errorf("failed to click %s: %w", selector, err)
	}
	return nil
}

func (p *playwrightPage) Fill(ctx context.Context, selector, value string) error {
	if err := p.first(selector).Fill(value); err != nil {
		return fmt.Errorf("failed to fill %s: %w", selector, err)
	}
	return nil
}

func (p *playwrightPage) Clear(ctx context.Context, selector string) error {
	if err := p.first(selector).Clear(); err != nil {
		return fmt.Errorf("failed to clear %s: %w", selector, err)
	}
	return nil
}

func (p *playwrightPage) SelectOption(ctx context.Context, selector, value string) error {
	_, err := p.first(selector).SelectOption(playwright.SelectOptionValues{
		Values: &[]string{value},
	})
	if err != nil {
		return fmt.Errorf("failed to select %q in %s: %w", value, selector, err)
	}
	return nil
}

func (p *playwrightPage) Count(ctx context.Context, selector string) (int, error) {
	n, err := p.page.Locator(selector).Count()
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", selector, err)
	}
	return n, nil
}

func (p *playwrightPage) IsVisible(ctx context.Context, selector string) (bool, error) {
	return p.first(selector).IsVisible()
}

func (p *playwrightPage) IsEnabled(ctx context.Context, selector string) (bool, error) {
	loc, err := p.present(selector)
	if err != nil {
		return false, err
	}
	return loc.IsEnabled()
}

func (p *playwrightPage) TextContent(ctx context.Context, selector string) (string, error) {
	loc, err := p.present(selector)
	if err != nil {
		return "", err
	}
	return loc.TextContent()
}

func (p *playwrightPage) AllTextContents(ctx context.Context, selector string) ([]string, error) {
	return p.page.Locator(selector).AllTextContents()
}

func (p *playwrightPage) InputValue(ctx context.Context, selector string) (string, error) {
	loc, err := p.present(selector)
	if err != nil {
		return "", err
	}
	return loc.InputValue()
}

func (p *playwrightPage) Attribute(ctx context.Context, selector, name string) (string, bool, error) {
	loc, err := p.present(selector)
	if err != nil {
		return "", false, err
	}
	v, err := loc.Evaluate("(el, name) => el.getAttribute(name)", name)
	if err != nil {
		return "", false, fmt.Errorf("failed to read attribute %s of %s: %w", name, selector, err)
	}
	s, ok := v.(string)
	return s, ok, nil
}

func (p *playwrightPage) Property(ctx context.Context, selector, name string) (string, error) {
	loc, err := p.present(selector)
	if err != nil {
		return "", err
	}
	v, err := loc.Evaluate(`(el, name) => el[name] == null ? "" : String(el[name])`, name)
	if err != nil {
		return "", fmt.Errorf("failed to read property %s of %s: %w", name, selector, err)
	}
	s, _ := v.(string)
	return s, nil
}

func (p *playwrightPage) OptionValues(ctx context.Context, selector string) ([]string, error) {
	loc, err := p.present(selector)
	if err != nil {
		return nil, err
	}
	v, err := loc.Evaluate("el => Array.from(el.querySelectorAll('option')).map(o => o.value)", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read options of %s: %w", selector, err)
	}
	return toStrings(v), nil
}

func (p *playwrightPage) HasText(ctx context.Context, text string) (bool, error) {
	return p.page.GetByText(text).First().IsVisible()
}

func (p *playwrightPage) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, err := p.page.Evaluate("key => window.localStorage.getItem(key)", key)
	if err != nil {
		return "", false, fmt.Errorf("failed to read storage key %s: %w", key, err)
	}
	s, ok := v.(string)
	return s, ok, nil
}

func (p *playwrightPage) SetItem(ctx context.Context, key, value string) error {
	_, err := p.page.Evaluate("([key, value]) => window.localStorage.setItem(key, value)", []string{key, value})
	if err != nil {
		return fmt.Errorf("failed to write storage key %s: %w", key, err)
	}
	return nil
}

func (p *playwrightPage) RemoveItem(ctx context.Context, key string) error {
	if _, err := p.page.Evaluate("key => window.localStorage.removeItem(key)", key); err != nil {
		return fmt.Errorf("failed to remove storage key %s: %w", key, err)
	}
	return nil
}

func (p *playwrightPage) ClearStorage(ctx context.Context) error {
	if _, err := p.page.Evaluate("() => window.localStorage.clear()"); err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}
	return nil
}

func (p *playwrightPage) Close() error {
	if err := p.page.Close(); err != nil {
		p.bctx.Close()
		return fmt.Errorf("failed to close page: %w", err)
	}
	return p.bctx.Close()
}

func toStrings(v interface{}) []string {
	items, _ := v.([]interface{})
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

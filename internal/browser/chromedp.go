package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ChromedpLauncher drives a local Chrome through the DevTools protocol.
type ChromedpLauncher struct {
	opts Options
}

// Launch starts Chrome with an exec allocator
func (l *ChromedpLauncher) Launch(ctx context.Context) (Browser, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(),
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", l.opts.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("lang", l.opts.Locale),
			chromedp.WindowSize(1280, 900),
		)...,
	)

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}

	l.opts.Logger.Info("browser launched",
		zap.String("driver", DriverChromedp),
		zap.Bool("headless", l.opts.Headless),
	)

	return &chromedpBrowser{
		ctx:           browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		opts:          l.opts,
	}, nil
}

type chromedpBrowser struct {
	ctx           context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	opts          Options
}

// NewPage opens a tab in a fresh browser context so storage is isolated
func (b *chromedpBrowser) NewPage(ctx context.Context) (Page, error) {
	tabCtx, cancel := chromedp.NewContext(b.ctx, chromedp.WithNewBrowserContext())
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}
	return &chromedpPage{tab: tabCtx, cancel: cancel, opts: b.opts}, nil
}

func (b *chromedpBrowser) Close() error {
	b.cancelBrowser()
	b.cancelAlloc()
	return nil
}

type chromedpPage struct {
	tab    context.Context
	cancel context.CancelFunc
	opts   Options
}

// run executes actions on the tab, bounded by the action timeout and by the
// caller's context.
func (p *chromedpPage) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if p.opts.ActionTimeout > 0 {
		runCtx, cancel = context.WithTimeout(p.tab, p.opts.ActionTimeout)
	} else {
		runCtx, cancel = context.WithCancel(p.tab)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

// eval calls fn with JSON-encoded args in the page and decodes the result
func (p *chromedpPage) eval(ctx context.Context, out interface{}, fn string, args ...interface{}) error {
	encoded := make([]string, 0, len(args))
	for _, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("failed to encode script argument: %w", err)
		}
		encoded = append(encoded, string(b))
	}
	expr := fmt.Sprintf("(%s)(%s)", fn, strings.Join(encoded, ","))
	return p.run(ctx, chromedp.Evaluate(expr, out))
}

type lookup struct {
	Found bool   `json:"found"`
	Value string `json:"value"`
}

// read runs a per-element getter on the first match of selector
func (p *chromedpPage) read(ctx context.Context, selector, getter string, args ...interface{}) (string, error) {
	fn := fmt.Sprintf(`(sel, ...args) => {
		const el = document.querySelector(sel);
		if (!el) return {found: false, value: ""};
		const v = (%s)(el, ...args);
		return {found: true, value: v === null || v === undefined ? "" : String(v)};
	}`, getter)

	var res lookup
	if err := p.eval(ctx, &res, fn, append([]interface{}{selector}, args...)...); err != nil {
		return "", fmt.Errorf("failed to query %s: %w", selector, err)
	}
	if !res.Found {
		return "", fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return res.Value, nil
}

const jsVisible = `el => {
	const s = window.getComputedStyle(el);
	return s.visibility !== 'hidden' && s.display !== 'none' &&
		!!(el.offsetWidth || el.offsetHeight || el.getClientRects().length);
}`

func (p *chromedpPage) Goto(ctx context.Context, path string) error {
	if err := p.run(ctx, chromedp.Navigate(resolve(p.opts.BaseURL, path))); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", path, err)
	}
	return nil
}

func (p *chromedpPage) Reload(ctx context.Context) error {
	if err := p.run(ctx, chromedp.Reload()); err != nil {
		return fmt.Errorf("failed to reload page: %w", err)
	}
	return nil
}

func (p *chromedpPage) URL(ctx context.Context) (string, error) {
	var url string
	if err := p.run(ctx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return url, nil
}

func (p *chromedpPage) Click(ctx context.Context, selector string) error {
	if err := p.run(ctx, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to click %s: %w", selector, err)
	}
	return nil
}

// setValue assigns through the native setter and dispatches the event a
// framework-controlled input listens for.
const jsSetValue = `(sel, value, event) => {
	const el = document.querySelector(sel);
	if (!el) return false;
	const proto = Object.getPrototypeOf(el);
	const setter = Object.getOwnPropertyDescriptor(proto, 'value').set;
	setter.call(el, value);
	el.dispatchEvent(new Event(event, {bubbles: true}));
	return true;
}`

func (p *chromedpPage) Fill(ctx context.Context, selector, value string) error {
	if err := p.Clear(ctx, selector); err != nil {
		return err
	}
	if err := p.run(ctx, chromedp.SendKeys(selector, value, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to fill %s: %w", selector, err)
	}
	return nil
}

func (p *chromedpPage) Clear(ctx context.Context, selector string) error {
	if err := p.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", selector, err)
	}
	var ok bool
	if err := p.eval(ctx, &ok, jsSetValue, selector, "", "input"); err != nil {
		return fmt.Errorf("failed to clear %s: %w", selector, err)
	}
	return nil
}

func (p *chromedpPage) SelectOption(ctx context.Context, selector, value string) error {
	if err := p.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to select %q in %s: %w", value, selector, err)
	}
	var ok bool
	if err := p.eval(ctx, &ok, jsSetValue, selector, value, "change"); err != nil {
		return fmt.Errorf("failed to select %q in %s: %w", value, selector, err)
	}
	return nil
}

func (p *chromedpPage) Count(ctx context.Context, selector string) (int, error) {
	var n int
	if err := p.eval(ctx, &n, `sel => document.querySelectorAll(sel).length`, selector); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", selector, err)
	}
	return n, nil
}

func (p *chromedpPage) IsVisible(ctx context.Context, selector string) (bool, error) {
	v, err := p.read(ctx, selector, jsVisible)
	if err != nil {
		if errors.Is(err, ErrElementNotFound) {
			return false, nil
		}
		return false, err
	}
	return v == "true", nil
}

func (p *chromedpPage) IsEnabled(ctx context.Context, selector string) (bool, error) {
	v, err := p.read(ctx, selector, `el => !el.disabled`)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

func (p *chromedpPage) TextContent(ctx context.Context, selector string) (string, error) {
	return p.read(ctx, selector, `el => el.textContent`)
}

func (p *chromedpPage) AllTextContents(ctx context.Context, selector string) ([]string, error) {
	var out []string
	fn := `sel => Array.from(document.querySelectorAll(sel)).map(el => el.textContent || "")`
	if err := p.eval(ctx, &out, fn, selector); err != nil {
		return nil, fmt.Errorf("failed to read texts of %s: %w", selector, err)
	}
	return out, nil
}

func (p *chromedpPage) InputValue(ctx context.Context, selector string) (string, error) {
	return p.read(ctx, selector, `el => el.value`)
}

func (p *chromedpPage) Attribute(ctx context.Context, selector, name string) (string, bool, error) {
	has, err := p.read(ctx, selector, `(el, name) => el.hasAttribute(name)`, name)
	if err != nil {
		return "", false, err
	}
	if has != "true" {
		return "", false, nil
	}
	v, err := p.read(ctx, selector, `(el, name) => el.getAttribute(name)`, name)
	return v, true, err
}

func (p *chromedpPage) Property(ctx context.Context, selector, name string) (string, error) {
	return p.read(ctx, selector, `(el, name) => el[name]`, name)
}

func (p *chromedpPage) OptionValues(ctx context.Context, selector string) ([]string, error) {
	var res struct {
		Found  bool     `json:"found"`
		Values []string `json:"values"`
	}
	fn := `sel => {
		const el = document.querySelector(sel);
		if (!el) return {found: false, values: []};
		return {found: true, values: Array.from(el.querySelectorAll('option')).map(o => o.value)};
	}`
	if err := p.eval(ctx, &res, fn, selector); err != nil {
		return nil, fmt.Errorf("failed to read options of %s: %w", selector, err)
	}
	if !res.Found {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return res.Values, nil
}

func (p *chromedpPage) HasText(ctx context.Context, text string) (bool, error) {
	fn := fmt.Sprintf(`text => {
		const visible = %s;
		return Array.from(document.querySelectorAll('body *'))
			.some(el => el.children.length === 0 && (el.textContent || "").includes(text) && visible(el));
	}`, jsVisible)
	var found bool
	if err := p.eval(ctx, &found, fn, text); err != nil {
		return false, fmt.Errorf("failed to search text %q: %w", text, err)
	}
	return found, nil
}

func (p *chromedpPage) GetItem(ctx context.Context, key string) (string, bool, error) {
	var res lookup
	fn := `key => { const v = window.localStorage.getItem(key); return {found: v !== null, value: v === null ? "" : v}; }`
	if err := p.eval(ctx, &res, fn, key); err != nil {
		return "", false, fmt.Errorf("failed to read storage key %s: %w", key, err)
	}
	return res.Value, res.Found, nil
}

func (p *chromedpPage) SetItem(ctx context.Context, key, value string) error {
	var ok bool
	fn := `(key, value) => { window.localStorage.setItem(key, value); return true; }`
	if err := p.eval(ctx, &ok, fn, key, value); err != nil {
		return fmt.Errorf("failed to write storage key %s: %w", key, err)
	}
	return nil
}

func (p *chromedpPage) RemoveItem(ctx context.Context, key string) error {
	var ok bool
	fn := `key => { window.localStorage.removeItem(key); return true; }`
	if err := p.eval(ctx, &ok, fn, key); err != nil {
		return fmt.Errorf("failed to remove storage key %s: %w", key, err)
	}
	return nil
}

func (p *chromedpPage) ClearStorage(ctx context.Context) error {
	var ok bool
	if err := p.eval(ctx, &ok, `() => { window.localStorage.clear(); return true; }`); err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}
	return nil
}

func (p *chromedpPage) Close() error {
	p.cancel()
	return nil
}

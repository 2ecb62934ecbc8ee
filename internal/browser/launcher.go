package browser

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Supported drivers
const (
	DriverPlaywright = "playwright"
	DriverChromedp   = "chromedp"
)

// Options configures a browser launch
type Options struct {
	BaseURL string
	// Headless is false when a visible browser is wanted for debugging.
	Headless bool
	// ActionTimeout bounds the driver's own waits on Click/Fill/Select.
	ActionTimeout time.Duration
	Locale        string
	Logger        *zap.Logger
}

// NewLauncher returns the launcher for the named driver
func NewLauncher(driver string, opts Options) (Launcher, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Locale == "" {
		opts.Locale = "en-US"
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	switch strings.ToLower(driver) {
	case "", DriverPlaywright:
		return &PlaywrightLauncher{opts: opts}, nil
	case DriverChromedp:
		return &ChromedpLauncher{opts: opts}, nil
	default:
		return nil, fmt.Errorf("unsupported browser driver %q", driver)
	}
}

// resolve joins a route with the base URL. Absolute URLs pass through.
func resolve(baseURL, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return baseURL + path
}

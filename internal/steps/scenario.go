// Package steps binds the storefront feature phrases to page objects and
// storage commands. Each scenario gets its own Scenario value holding a fresh
// page and everything built on it.
package steps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cucumber/godog"
	"go.uber.org/zap"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/commands"
	"github.com/adyen/storefront-e2e/internal/expect"
	"github.com/adyen/storefront-e2e/internal/pages"
	sf "github.com/adyen/storefront-e2e/internal/storefront"
)

// ErrNoBrowser is returned when a scenario starts without a browser
var ErrNoBrowser = errors.New("no browser configured")

// Settings are the timing knobs of a run
type Settings struct {
	AssertTimeout time.Duration
	PollInterval  time.Duration
	StorageSettle time.Duration
	PageSettle    time.Duration
}

// Result is the outcome of one scenario
type Result struct {
	Name     string
	URI      string
	Err      error
	Duration time.Duration
}

// Recorder receives every finished scenario
type Recorder interface {
	RecordScenario(ctx context.Context, result Result) error
}

type nopRecorder struct{}

func (nopRecorder) RecordScenario(context.Context, Result) error { return nil }

// Dependencies are shared by every scenario of a run
type Dependencies struct {
	Browser  browser.Browser
	Settings Settings
	Recorder Recorder
	Logger   *zap.Logger
}

// Scenario is the per-scenario world
type Scenario struct {
	deps Dependencies

	page     browser.Page
	expect   *expect.Asserter
	pages    *pages.Pages
	commands *commands.Commands
	started  time.Time
}

// NewScenario returns an unopened world. Missing recorder and logger
// dependencies are replaced with no-ops.
func NewScenario(deps Dependencies) *Scenario {
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Scenario{deps: deps}
}

// Open starts the scenario on a fresh page at the homepage with empty storage
func (s *Scenario) Open(ctx context.Context) error {
	if s.deps.Browser == nil {
		return ErrNoBrowser
	}
	page, err := s.deps.Browser.NewPage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	s.Attach(page)

	if err := page.Goto(ctx, sf.RouteHome); err != nil {
		return fmt.Errorf("failed to load homepage: %w", err)
	}
	if err := page.ClearStorage(ctx); err != nil {
		return fmt.Errorf("failed to reset storage: %w", err)
	}
	return nil
}

// Attach builds the page objects and commands on page
func (s *Scenario) Attach(page browser.Page) {
	st := s.deps.Settings
	s.page = page
	s.expect = expect.New(page, st.AssertTimeout, st.PollInterval)
	s.pages = pages.New(page, s.expect)
	s.commands = commands.New(page, s.expect, s.deps.Logger, st.StorageSettle)
	s.started = time.Now()
}

// Close records the outcome and closes the page
func (s *Scenario) Close(ctx context.Context, name, uri string, stepErr error) error {
	result := Result{Name: name, URI: uri, Err: stepErr}
	if !s.started.IsZero() {
		result.Duration = time.Since(s.started)
	}

	fields := []zap.Field{zap.String("scenario", name), zap.Duration("duration", result.Duration)}
	if stepErr != nil {
		s.deps.Logger.Warn("scenario failed", append(fields, zap.Error(stepErr))...)
	} else {
		s.deps.Logger.Info("scenario passed", fields...)
	}

	if err := s.deps.Recorder.RecordScenario(ctx, result); err != nil {
		s.deps.Logger.Error("failed to record scenario", zap.String("scenario", name), zap.Error(err))
	}

	if s.page == nil {
		return nil
	}
	err := s.page.Close()
	s.page = nil
	if err != nil {
		return fmt.Errorf("failed to close page: %w", err)
	}
	return nil
}

// Register binds the hooks and every step on sc
func (s *Scenario) Register(sc *godog.ScenarioContext) error {
	sc.Before(func(ctx context.Context, pickle *godog.Scenario) (context.Context, error) {
		s.deps.Logger.Debug("scenario started", zap.String("scenario", pickle.Name), zap.String("uri", pickle.Uri))
		return ctx, s.Open(ctx)
	})
	sc.After(func(ctx context.Context, pickle *godog.Scenario, err error) (context.Context, error) {
		return ctx, s.Close(ctx, pickle.Name, pickle.Uri, err)
	})

	r := NewRegistry(sc)
	s.RegisterSteps(r)
	return r.Err()
}

// RegisterSteps binds every step definition on r
func (s *Scenario) RegisterSteps(r *Registry) {
	s.homepageSteps(r)
	s.productSteps(r)
	s.cartSteps(r)
	s.storageSteps(r)
	s.checkoutSteps(r)
	s.flowSteps(r)
}

// settle sleeps for d unless ctx ends first
func settle(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cucumber/godog"
	"go.uber.org/zap"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/config"
	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/adyen/storefront-e2e/internal/steps"
)

// RunRecorder receives scenario results and closes the recorded run
type RunRecorder interface {
	steps.Recorder
	Finish(suiteStatus int) error
	Abort() error
}

// RunDependencies holds everything needed for one suite run
type RunDependencies struct {
	Config   *config.SuiteConfig
	Launcher browser.Launcher
	// Recorder is optional. A nil recorder keeps no history.
	Recorder RunRecorder
	Logger   *zap.Logger
	// Output receives the godog formatter output. Nil means stdout.
	Output io.Writer
	// Signals replaces os/signal registration when non-nil.
	Signals chan os.Signal
}

// ErrInterrupted is returned when a signal or the parent context stops the suite
var ErrInterrupted = errors.New("suite interrupted")

// RunSuite launches the browser and runs the feature files. The returned
// status is the godog exit status.
func RunSuite(ctx context.Context, deps RunDependencies) (int, error) {
	if deps.Config == nil {
		return 1, fmt.Errorf("suite configuration is required")
	}
	if deps.Launcher == nil {
		return 1, fmt.Errorf("browser launcher is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := deps.Config

	ctx, stop := WatchSignals(ctx, deps.Signals, logger)
	defer stop()

	b, err := deps.Launcher.Launch(ctx)
	if err != nil {
		return 1, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Warn("failed to close browser", zap.Error(err))
		}
	}()

	stepDeps := steps.Dependencies{
		Browser: b,
		Settings: steps.Settings{
			AssertTimeout: cfg.AssertTimeout,
			PollInterval:  cfg.PollInterval,
			StorageSettle: cfg.StorageSettle,
			PageSettle:    cfg.PageSettle,
		},
		Logger: logger,
	}
	if deps.Recorder != nil {
		stepDeps.Recorder = deps.Recorder
	}

	initializer, err := steps.InitializeScenario(stepDeps)
	if err != nil {
		return 1, err
	}

	suite := godog.TestSuite{
		Name:                "storefront",
		ScenarioInitializer: initializer,
		Options: &godog.Options{
			Format:         cfg.Format,
			Paths:          cfg.Features,
			Tags:           cfg.Tags,
			Strict:         true,
			Concurrency:    1,
			Output:         deps.Output,
			DefaultContext: ctx,
		},
	}

	logger.Info("suite starting",
		zap.String("baseURL", cfg.BaseURL),
		zap.String("driver", cfg.Driver),
		zap.String("tags", cfg.Tags),
		zap.Strings("features", cfg.Features),
	)
	status := suite.Run()

	if ctx.Err() != nil {
		logger.Warn("suite interrupted", zap.Int("status", status))
		if deps.Recorder != nil {
			if err := deps.Recorder.Abort(); err != nil {
				logger.Error("failed to abort recorded run", zap.Error(err))
			}
		}
		return status, ErrInterrupted
	}

	logger.Info("suite finished", zap.Int("status", status))
	if deps.Recorder != nil {
		if err := deps.Recorder.Finish(status); err != nil {
			return status, fmt.Errorf("failed to finish recorded run: %w", err)
		}
	}
	return status, nil
}

// WatchSignals returns a context cancelled on SIGINT or SIGTERM.
// If signals is nil, a new channel will be created and registered with signal.Notify.
func WatchSignals(ctx context.Context, signals chan os.Signal, logger *zap.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	registered := false
	if signals == nil {
		signals = make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
		registered = true
	}

	go func() {
		select {
		case sig := <-signals:
			logger.Warn("received signal, stopping suite", zap.Stringer("signal", sig))
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		if registered {
			signal.Stop(signals)
		}
		cancel()
	}
}

// ListSteps writes every registered step expression, one per line
func ListSteps(w io.Writer) error {
	r, err := steps.Catalogue()
	if err != nil {
		return err
	}
	for _, expr := range r.Expressions() {
		if _, err := fmt.Fprintln(w, expr); err != nil {
			return fmt.Errorf("failed to write step: %w", err)
		}
	}
	return nil
}

// RunLister reads recorded runs
type RunLister interface {
	RecentRuns(limit int) ([]*models.Run, error)
}

// PrintHistory writes a summary line per recent run, newest first
func PrintHistory(w io.Writer, runs RunLister, limit int) error {
	list, err := runs.RecentRuns(limit)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "no recorded runs")
		return err
	}
	for _, run := range list {
		if _, err := fmt.Fprintf(w, "%s %s\n", run.ID, run.Summary()); err != nil {
			return fmt.Errorf("failed to write run: %w", err)
		}
	}
	return nil
}

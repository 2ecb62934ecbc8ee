package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/adyen/storefront-e2e/internal/browser"
	internalcli "github.com/adyen/storefront-e2e/internal/cli"
	"github.com/adyen/storefront-e2e/internal/config"
	"github.com/adyen/storefront-e2e/internal/database"
	"github.com/adyen/storefront-e2e/internal/logger"
	"github.com/adyen/storefront-e2e/internal/repository"
	"github.com/adyen/storefront-e2e/internal/services"
)

var version = "0.1.0"

// suiteConfig loads the environment and applies command line overrides
func suiteConfig(c *cli.Context) (*config.SuiteConfig, error) {
	cfg, err := config.LoadSuiteConfig(os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("invalid suite configuration: %w", err)
	}

	if c.IsSet("base-url") {
		cfg.BaseURL = c.String("base-url")
	}
	if c.IsSet("driver") {
		cfg.Driver = c.String("driver")
	}
	if c.IsSet("tags") {
		cfg.Tags = c.String("tags")
	}
	if c.IsSet("format") {
		cfg.Format = c.String("format")
	}
	if c.IsSet("features") {
		cfg.Features = c.StringSlice("features")
	}
	if c.Bool("headed") {
		cfg.Headless = false
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}

	return cfg, nil
}

// startRecording connects to the history database and opens a run
func startRecording(cfg *config.SuiteConfig, logger *zap.Logger) (*services.Recorder, error) {
	if err := database.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("connected to run history database")

	if err := database.RunMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	runService := services.NewRunService(repository.NewRunRepository())
	run, err := runService.StartRun(cfg.BaseURL, cfg.Driver, cfg.Tags)
	if err != nil {
		return nil, err
	}
	logger.Info("recording run", zap.String("runID", run.ID))

	return services.NewRecorder(runService, run), nil
}

// RunCommand returns the run command
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the feature files against a storefront",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "base-url", Usage: "storefront URL (BASE_URL)"},
			&cli.StringFlag{Name: "driver", Usage: "playwright or chromedp (BROWSER_DRIVER)"},
			&cli.StringFlag{Name: "tags", Usage: "godog tag expression (TAGS)"},
			&cli.StringFlag{Name: "format", Usage: "godog formatter (FORMAT)"},
			&cli.StringSliceFlag{Name: "features", Usage: "feature files or directories (FEATURES)"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error (LOG_LEVEL)"},
			&cli.BoolFlag{Name: "headed", Usage: "show the browser window"},
			&cli.BoolFlag{Name: "record", Usage: "store the run in the history database"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := suiteConfig(c)
			if err != nil {
				return err
			}

			zapLogger, err := logger.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer zapLogger.Sync()

			launcher, err := browser.NewLauncher(cfg.Driver, browser.Options{
				BaseURL:       cfg.BaseURL,
				Headless:      cfg.Headless,
				ActionTimeout: cfg.AssertTimeout,
				Logger:        zapLogger,
			})
			if err != nil {
				return err
			}

			deps := internalcli.RunDependencies{
				Config:   cfg,
				Launcher: launcher,
				Logger:   zapLogger,
			}
			if c.Bool("record") {
				defer database.Close()
				recorder, err := startRecording(cfg, zapLogger)
				if err != nil {
					return err
				}
				deps.Recorder = recorder
			}

			status, err := internalcli.RunSuite(c.Context, deps)
			if err != nil {
				return err
			}
			if status != 0 {
				return cli.Exit("", status)
			}
			return nil
		},
	}
}

// StepsCommand returns the steps command
func StepsCommand() *cli.Command {
	return &cli.Command{
		Name:  "steps",
		Usage: "List every registered step expression",
		Action: func(c *cli.Context) error {
			return internalcli.ListSteps(c.App.Writer)
		},
	}
}

// HistoryCommand returns the history command
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recently recorded runs",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: services.DefaultHistoryLimit, Usage: "number of runs to show"},
		},
		Action: func(c *cli.Context) error {
			if err := database.Connect(); err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close()

			runService := services.NewRunService(repository.NewRunRepository())
			return internalcli.PrintHistory(c.App.Writer, runService, c.Int("limit"))
		},
	}
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	app := &cli.App{
		Name:    "storefront-e2e",
		Usage:   "End-to-end UI suite for the storefront",
		Version: version,
		Commands: []*cli.Command{
			RunCommand(),
			StepsCommand(),
			HistoryCommand(),
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SuiteConfig holds configuration for a run of the storefront suite
type SuiteConfig struct {
	BaseURL       string
	Driver        string
	Headless      bool
	AssertTimeout time.Duration
	PollInterval  time.Duration
	StorageSettle time.Duration
	PageSettle    time.Duration
	Features      []string
	Tags          string
	Format        string
	LogLevel      string
}

// DefaultTags skips scenarios that document open application defects
const DefaultTags = "~@known-defect"

// LoadSuiteConfig loads suite configuration from environment variables
func LoadSuiteConfig(getenv func(string) string) (*SuiteConfig, error) {
	config := &SuiteConfig{
		BaseURL:  orDefault(getenv("BASE_URL"), "http://localhost:3000"),
		Driver:   orDefault(strings.ToLower(getenv("BROWSER_DRIVER")), "playwright"),
		Headless: true,
		Features: []string{"features"},
		Tags:     orDefault(getenv("TAGS"), DefaultTags),
		Format:   orDefault(getenv("FORMAT"), "pretty"),
		LogLevel: orDefault(getenv("LOG_LEVEL"), "info"),
	}

	if v := getenv("HEADLESS"); v != "" {
		headless, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("HEADLESS must be a boolean: %w", err)
		}
		config.Headless = headless
	}

	if v := getenv("FEATURES"); v != "" {
		config.Features = splitList(v)
	}

	durations := []struct {
		key string
		dst *time.Duration
		def time.Duration
	}{
		{"ASSERT_TIMEOUT", &config.AssertTimeout, 4 * time.Second},
		{"POLL_INTERVAL", &config.PollInterval, 100 * time.Millisecond},
		{"STORAGE_SETTLE", &config.StorageSettle, 100 * time.Millisecond},
		{"PAGE_SETTLE", &config.PageSettle, time.Second},
	}
	for _, d := range durations {
		*d.dst = d.def
		v := getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%s must be a duration: %w", d.key, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("%s must be positive", d.key)
		}
		*d.dst = parsed
	}

	// Validate
	if !strings.HasPrefix(config.BaseURL, "http://") && !strings.HasPrefix(config.BaseURL, "https://") {
		return nil, fmt.Errorf("BASE_URL must be an http(s) URL, got %q", config.BaseURL)
	}
	if config.Driver != "playwright" && config.Driver != "chromedp" {
		return nil, fmt.Errorf("BROWSER_DRIVER must be playwright or chromedp, got %q", config.Driver)
	}
	if len(config.Features) == 0 {
		return nil, fmt.Errorf("FEATURES must name at least one path")
	}

	return config, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

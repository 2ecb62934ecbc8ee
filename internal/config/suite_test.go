package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func envFrom(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestLoadSuiteConfig_Defaults(t *testing.T) {
	// GIVEN an empty environment
	getenv := envFrom(nil)

	// WHEN
	config, err := LoadSuiteConfig(getenv)

	// THEN
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &SuiteConfig{
		BaseURL:       "http://localhost:3000",
		Driver:        "playwright",
		Headless:      true,
		AssertTimeout: 4 * time.Second,
		PollInterval:  100 * time.Millisecond,
		StorageSettle: 100 * time.Millisecond,
		PageSettle:    time.Second,
		Features:      []string{"features"},
		Tags:          DefaultTags,
		Format:        "pretty",
		LogLevel:      "info",
	}
	if !reflect.DeepEqual(config, want) {
		t.Errorf("expected %+v, got %+v", want, config)
	}
}

func TestLoadSuiteConfig_Overrides(t *testing.T) {
	// GIVEN
	getenv := envFrom(map[string]string{
		"BASE_URL":       "https://shop.example.com",
		"BROWSER_DRIVER": "ChromeDP",
		"HEADLESS":       "false",
		"ASSERT_TIMEOUT": "10s",
		"STORAGE_SETTLE": "250ms",
		"FEATURES":       "features/cart.feature, features/checkout.feature,",
		"TAGS":           "@smoke",
		"FORMAT":         "cucumber",
		"LOG_LEVEL":      "debug",
	})

	// WHEN
	config, err := LoadSuiteConfig(getenv)

	// THEN
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.BaseURL != "https://shop.example.com" {
		t.Errorf("expected base url override, got %s", config.BaseURL)
	}
	if config.Driver != "chromedp" {
		t.Errorf("expected chromedp, got %s", config.Driver)
	}
	if config.Headless {
		t.Error("expected headed browser")
	}
	if config.AssertTimeout != 10*time.Second || config.StorageSettle != 250*time.Millisecond {
		t.Errorf("unexpected durations: %s, %s", config.AssertTimeout, config.StorageSettle)
	}
	if config.PollInterval != 100*time.Millisecond {
		t.Errorf("expected default poll interval, got %s", config.PollInterval)
	}
	wantFeatures := []string{"features/cart.feature", "features/checkout.feature"}
	if !reflect.DeepEqual(config.Features, wantFeatures) {
		t.Errorf("expected %v, got %v", wantFeatures, config.Features)
	}
	if config.Tags != "@smoke" || config.Format != "cucumber" || config.LogLevel != "debug" {
		t.Errorf("unexpected strings: %+v", config)
	}
}

func TestLoadSuiteConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "bad headless", env: map[string]string{"HEADLESS": "maybe"}, wantErr: "HEADLESS"},
		{name: "bad duration", env: map[string]string{"ASSERT_TIMEOUT": "soon"}, wantErr: "ASSERT_TIMEOUT"},
		{name: "negative duration", env: map[string]string{"PAGE_SETTLE": "-1s"}, wantErr: "PAGE_SETTLE must be positive"},
		{name: "bad base url", env: map[string]string{"BASE_URL": "localhost:3000"}, wantErr: "BASE_URL"},
		{name: "bad driver", env: map[string]string{"BROWSER_DRIVER": "selenium"}, wantErr: "BROWSER_DRIVER"},
		{name: "empty features", env: map[string]string{"FEATURES": " , "}, wantErr: "FEATURES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// WHEN
			_, err := LoadSuiteConfig(envFrom(tt.env))

			// THEN
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/browser/browsertest"
	"github.com/adyen/storefront-e2e/internal/config"
	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/adyen/storefront-e2e/internal/steps"
)

type fakeLauncher struct {
	err     error
	browser *fakeBrowser
}

func (l *fakeLauncher) Launch(context.Context) (browser.Browser, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.browser, nil
}

type fakeBrowser struct {
	mu     sync.Mutex
	pages  int
	closed bool
}

func (b *fakeBrowser) NewPage(context.Context) (browser.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pages++
	return browsertest.New(), nil
}

func (b *fakeBrowser) Close() error {
	b.closed = true
	return nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	results  []steps.Result
	finished []int
	aborted  bool
}

func (r *fakeRecorder) RecordScenario(_ context.Context, result steps.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
	return nil
}

func (r *fakeRecorder) Finish(status int) error {
	r.finished = append(r.finished, status)
	return nil
}

func (r *fakeRecorder) Abort() error {
	r.aborted = true
	return nil
}

// testConfig points the suite at the repository's feature files
func testConfig(tags string) *config.SuiteConfig {
	return &config.SuiteConfig{
		BaseURL:       "http://storefront.test",
		Driver:        browser.DriverPlaywright,
		AssertTimeout: 200 * time.Millisecond,
		PollInterval:  2 * time.Millisecond,
		StorageSettle: time.Millisecond,
		PageSettle:    time.Millisecond,
		Features:      []string{"../../features"},
		Tags:          tags,
		Format:        "progress",
	}
}

func TestRunSuite_RecordsAndFinishes(t *testing.T) {
	// GIVEN
	b := &fakeBrowser{}
	rec := &fakeRecorder{}
	deps := RunDependencies{
		Config:   testConfig(config.DefaultTags),
		Launcher: &fakeLauncher{browser: b},
		Recorder: rec,
		Output:   io.Discard,
		Signals:  make(chan os.Signal, 1),
	}

	// WHEN
	status, err := RunSuite(context.Background(), deps)

	// THEN
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	assert.Equal(t, []int{0}, rec.finished)
	assert.False(t, rec.aborted)
	assert.Len(t, rec.results, b.pages)
	assert.True(t, b.closed, "browser is closed after the run")
}

func TestRunSuite_KnownDefectsFailTheRun(t *testing.T) {
	rec := &fakeRecorder{}
	deps := RunDependencies{
		Config:   testConfig("@known-defect"),
		Launcher: &fakeLauncher{browser: &fakeBrowser{}},
		Recorder: rec,
		Output:   io.Discard,
		Signals:  make(chan os.Signal, 1),
	}

	status, err := RunSuite(context.Background(), deps)

	require.NoError(t, err)
	assert.Equal(t, 1, status)
	assert.Equal(t, []int{1}, rec.finished)
}

func TestRunSuite_InterruptedRunIsAborted(t *testing.T) {
	// GIVEN a parent context that is already cancelled
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &fakeRecorder{}
	deps := RunDependencies{
		Config:   testConfig(config.DefaultTags),
		Launcher: &fakeLauncher{browser: &fakeBrowser{}},
		Recorder: rec,
		Output:   io.Discard,
		Signals:  make(chan os.Signal, 1),
	}

	// WHEN
	_, err := RunSuite(ctx, deps)

	// THEN
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.True(t, rec.aborted)
	assert.Empty(t, rec.finished)
}

func TestRunSuite_SetupErrors(t *testing.T) {
	boom := errors.New("no chromium")
	tests := []struct {
		name string
		deps RunDependencies
		want string
	}{
		{
			name: "missing config",
			deps: RunDependencies{Launcher: &fakeLauncher{}},
			want: "suite configuration is required",
		},
		{
			name: "missing launcher",
			deps: RunDependencies{Config: testConfig("")},
			want: "browser launcher is required",
		},
		{
			name: "launch failure",
			deps: RunDependencies{Config: testConfig(""), Launcher: &fakeLauncher{err: boom}, Signals: make(chan os.Signal, 1)},
			want: "failed to launch browser: no chromium",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := RunSuite(context.Background(), tt.deps)

			assert.Equal(t, 1, status)
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestWatchSignals(t *testing.T) {
	tests := []struct {
		name string
		sig  os.Signal
	}{
		{name: "SIGTERM", sig: syscall.SIGTERM},
		{name: "SIGINT", sig: syscall.SIGINT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN
			signals := make(chan os.Signal, 1)
			ctx, stop := WatchSignals(context.Background(), signals, zap.NewNop())
			defer stop()

			// WHEN
			signals <- tt.sig

			// THEN
			select {
			case <-ctx.Done():
			case <-time.After(5 * time.Second):
				t.Fatal("context was not cancelled by the signal")
			}
		})
	}
}

func TestWatchSignals_StopCancels(t *testing.T) {
	ctx, stop := WatchSignals(context.Background(), make(chan os.Signal, 1), zap.NewNop())

	stop()

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestListSteps(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, ListSteps(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Contains(t, lines, `^I am on the homepage$`)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "^"), line)
	}
}

type fakeLister struct {
	runs []*models.Run
	err  error
}

func (f fakeLister) RecentRuns(int) ([]*models.Run, error) {
	return f.runs, f.err
}

func TestPrintHistory(t *testing.T) {
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		lister  fakeLister
		want    string
		wantErr bool
	}{
		{
			name:   "no runs",
			lister: fakeLister{},
			want:   "no recorded runs\n",
		},
		{
			name: "one run",
			lister: fakeLister{runs: []*models.Run{{
				ID:        "run-1",
				BaseURL:   "http://localhost:3000",
				Status:    models.RunStatusPassed,
				Passed:    3,
				StartedAt: started,
			}}},
			want: "run-1 2024-05-01T12:00:00Z passed   3/3 passed http://localhost:3000\n",
		},
		{
			name:    "lister error",
			lister:  fakeLister{err: errors.New("database error")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			err := PrintHistory(&buf, tt.lister, 10)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

package steps

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/adyen/storefront-e2e/internal/browser"
	"github.com/adyen/storefront-e2e/internal/browser/browsertest"
	"github.com/adyen/storefront-e2e/internal/catalog"
	sf "github.com/adyen/storefront-e2e/internal/storefront"
)

var testSettings = Settings{
	AssertTimeout: 200 * time.Millisecond,
	PollInterval:  2 * time.Millisecond,
	StorageSettle: time.Millisecond,
	PageSettle:    time.Millisecond,
}

type fakeBrowser struct {
	numericSort bool
	failNewPage error

	mu    sync.Mutex
	pages []*browsertest.Storefront
}

func (b *fakeBrowser) NewPage(context.Context) (browser.Page, error) {
	if b.failNewPage != nil {
		return nil, b.failNewPage
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p := browsertest.New()
	p.NumericSort = b.numericSort
	b.pages = append(b.pages, p)
	return p, nil
}

func (b *fakeBrowser) Close() error { return nil }

type memRecorder struct {
	mu      sync.Mutex
	results []Result
}

func (m *memRecorder) RecordScenario(_ context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, r)
	return nil
}

func runFeatures(t *testing.T, deps Dependencies, tags string, tt *testing.T) int {
	t.Helper()
	initializer, err := InitializeScenario(deps)
	require.NoError(t, err)
	suite := godog.TestSuite{
		Name:                "storefront",
		ScenarioInitializer: initializer,
		Options: &godog.Options{
			Format:      "progress",
			Paths:       []string{featuresDir},
			Tags:        tags,
			Strict:      true,
			Concurrency: 1,
			Output:      io.Discard,
			NoColors:    true,
			TestingT:    tt,
		},
	}
	return suite.Run()
}

func TestFeatures_AgainstInMemoryStorefront(t *testing.T) {
	b := &fakeBrowser{}
	rec := &memRecorder{}

	status := runFeatures(t, Dependencies{Browser: b, Settings: testSettings, Recorder: rec}, "~@known-defect", t)

	require.Equal(t, 0, status, "non-zero status returned, failed to run feature tests")
	require.NotEmpty(t, rec.results)
	for _, r := range rec.results {
		assert.NoError(t, r.Err, r.Name)
	}
	require.Len(t, b.pages, len(rec.results), "one page per scenario")
	for _, p := range b.pages {
		assert.True(t, p.Closed())
	}
}

func TestFeatures_KnownDefects(t *testing.T) {
	tests := []struct {
		name        string
		numericSort bool
		wantStatus  int
	}{
		{name: "fail against lexicographic sort", numericSort: false, wantStatus: 1},
		{name: "pass once prices sort numerically", numericSort: true, wantStatus: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := Dependencies{Browser: &fakeBrowser{numericSort: tt.numericSort}, Settings: testSettings}

			status := runFeatures(t, deps, "@known-defect", nil)

			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestScenario_OpenResetsStorage(t *testing.T) {
	ctx := context.Background()
	s := NewScenario(Dependencies{Browser: &fakeBrowser{}, Settings: testSettings})

	require.NoError(t, s.Open(ctx))

	p := s.page.(*browsertest.Storefront)
	assert.Equal(t, sf.RouteHome, p.Path())
	_, ok, err := p.GetItem(ctx, sf.StorageKeyCart)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScenario_OpenFailures(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		browser browser.Browser
		want    error
	}{
		{name: "no browser", browser: nil, want: ErrNoBrowser},
		{name: "page cannot open", browser: &fakeBrowser{failNewPage: boom}, want: boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScenario(Dependencies{Browser: tt.browser, Settings: testSettings})

			err := s.Open(context.Background())

			assert.ErrorIs(t, err, tt.want)
			assert.NoError(t, s.Close(context.Background(), "scenario", "f.feature", err), "close without a page is a no-op")
		})
	}
}

func TestScenario_CloseRecordsAndLogs(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.InfoLevel)
	rec := &memRecorder{}
	b := &fakeBrowser{}
	s := NewScenario(Dependencies{Browser: b, Settings: testSettings, Recorder: rec, Logger: zap.New(core)})
	require.NoError(t, s.Open(ctx))
	stepErr := errors.New("step failed")

	// WHEN
	err := s.Close(ctx, "Buy a product", "features/checkout.feature", stepErr)

	// THEN
	require.NoError(t, err)
	require.Len(t, rec.results, 1)
	assert.Equal(t, "Buy a product", rec.results[0].Name)
	assert.Equal(t, "features/checkout.feature", rec.results[0].URI)
	assert.ErrorIs(t, rec.results[0].Err, stepErr)
	assert.True(t, b.pages[0].Closed())
	assert.Equal(t, 1, logs.FilterMessage("scenario failed").Len())
}

func TestScenarioInitializer_LogsRegistrationErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantLogs int
	}{
		{name: "registered", err: nil, wantLogs: 0},
		{name: "duplicate expression", err: ErrDuplicateStep, wantLogs: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN
			core, logs := observer.New(zapcore.ErrorLevel)
			calls := 0
			initialize := scenarioInitializer(Dependencies{Logger: zap.New(core)}, func(*Scenario, *godog.ScenarioContext) error {
				calls++
				return tt.err
			})

			// WHEN
			initialize(nil)

			// THEN
			assert.Equal(t, 1, calls)
			entries := logs.FilterMessage("failed to register steps")
			require.Equal(t, tt.wantLogs, entries.Len())
			if tt.wantLogs > 0 {
				assert.Equal(t, tt.err.Error(), entries.All()[0].ContextMap()["error"])
			}
		})
	}
}

func TestCartRequests(t *testing.T) {
	tests := []struct {
		name    string
		table   *godog.Table
		want    []catalog.CartRequest
		wantErr bool
	}{
		{
			name:  "rows by header",
			table: table([]string{"quantity", "id"}, []string{"2", "1"}, []string{"1", "3"}),
			want:  []catalog.CartRequest{{ID: 1, Quantity: 2}, {ID: 3, Quantity: 1}},
		},
		{name: "bad id", table: table([]string{"id", "quantity"}, []string{"x", "1"}), wantErr: true},
		{name: "bad quantity", table: table([]string{"id", "quantity"}, []string{"1", "many"}), wantErr: true},
		{name: "header only", table: table([]string{"id", "quantity"}), wantErr: true},
		{name: "ragged row", table: table([]string{"id", "quantity"}, []string{"1"}), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cartRequests(tt.table)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaymentData(t *testing.T) {
	got, err := paymentData(table(
		[]string{"cardHolder", "cardNumber", "expiry", "cvv"},
		[]string{"Jane Smith", "5555555555554444", "06/26", "456"},
	))
	require.NoError(t, err)
	assert.Equal(t, catalog.PaymentData{CardHolder: "Jane Smith", CardNumber: "5555555555554444", Expiry: "06/26", CVV: "456"}, got)

	_, err = paymentData(table([]string{"pin"}, []string{"0000"}))
	assert.ErrorContains(t, err, `unknown payment field "pin"`)
}

func TestSplitIDs(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3"}, splitIDs(" 1, 2 ,3,"))
	assert.Empty(t, splitIDs(""))
}

func table(rows ...[]string) *godog.Table {
	t := &godog.Table{}
	for _, row := range rows {
		r := &messages.PickleTableRow{}
		for _, v := range row {
			r.Cells = append(r.Cells, &messages.PickleTableCell{Value: v})
		}
		t.Rows = append(t.Rows, r)
	}
	return t
}

//go:build integration
// +build integration

package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/adyen/storefront-e2e/internal/repository/testutil"
	"github.com/google/uuid"
)

func newTestRun(t *testing.T, repo *RunRepository) *models.Run {
	t.Helper()
	run, err := models.NewRun("http://localhost:3000", "playwright", "~@known-defect")
	if err != nil {
		t.Fatalf("NewRun() error = %v", err)
	}
	if err := repo.CreateRun(run); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	return run
}

func TestRunRepository_CreateAndGetRun_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)

	repo := NewRunRepositoryWithDB(testDB.DB)

	// GIVEN a stored run
	run := newTestRun(t, repo)

	// WHEN it is read back
	got, err := repo.GetRun(run.ID)

	// THEN every column round trips
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if got.BaseURL != run.BaseURL || got.Driver != run.Driver || got.Tags != run.Tags {
		t.Errorf("GetRun() = %+v, want %+v", got, run)
	}
	if got.Status != models.RunStatusRunning {
		t.Errorf("Expected status %s, got %s", models.RunStatusRunning, got.Status)
	}
	if !got.FinishedAt.IsZero() {
		t.Error("FinishedAt should be empty for a running run")
	}
}

func TestRunRepository_GetRun_NotFound_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)

	repo := NewRunRepositoryWithDB(testDB.DB)

	_, err := repo.GetRun(uuid.New().String())

	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound, got %v", err)
	}
}

func TestRunRepository_UpdateRun_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)

	repo := NewRunRepositoryWithDB(testDB.DB)

	tests := []struct {
		name    string
		setup   func() *models.Run
		wantErr error
	}{
		{
			name: "finish an existing run",
			setup: func() *models.Run {
				run := newTestRun(t, repo)
				run.Passed = 3
				if err := run.Finish(0); err != nil {
					t.Fatalf("Finish() error = %v", err)
				}
				return run
			},
		},
		{
			name: "unknown run",
			setup: func() *models.Run {
				run, _ := models.NewRun("http://localhost:3000", "chromedp", "")
				return run
			},
			wantErr: ErrRunNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := tt.setup()

			err := repo.UpdateRun(run)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("UpdateRun() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			got, err := repo.GetRun(run.ID)
			if err != nil {
				t.Fatalf("GetRun() error = %v", err)
			}
			if got.Status != models.RunStatusPassed || got.Passed != 3 {
				t.Errorf("Expected passed run with 3 scenarios, got %s with %d", got.Status, got.Passed)
			}
			if got.FinishedAt.IsZero() {
				t.Error("FinishedAt should be stored")
			}
		})
	}
}

func TestRunRepository_ScenarioResults_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)

	repo := NewRunRepositoryWithDB(testDB.DB)
	run := newTestRun(t, repo)

	// GIVEN two results for the run
	passed, _ := models.NewScenarioResult(run.ID, "Add to cart", "features/cart.feature", nil, 1500*time.Millisecond)
	failed, _ := models.NewScenarioResult(run.ID, "Place order", "features/checkout.feature", errors.New("timed out"), 2*time.Second)
	failed.CreatedAt = passed.CreatedAt.Add(time.Second)
	for _, r := range []*models.ScenarioResult{passed, failed} {
		if err := repo.CreateScenarioResult(r); err != nil {
			t.Fatalf("CreateScenarioResult() error = %v", err)
		}
	}

	// WHEN
	results, err := repo.ListScenarioResults(run.ID)

	// THEN
	if err != nil {
		t.Fatalf("ListScenarioResults() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Name != "Add to cart" || results[0].Duration != 1500*time.Millisecond {
		t.Errorf("Unexpected first result %+v", results[0])
	}
	if results[1].Status != models.ScenarioStatusFailed || results[1].Error != "timed out" {
		t.Errorf("Unexpected second result %+v", results[1])
	}
}

func TestRunRepository_ListRuns_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)

	repo := NewRunRepositoryWithDB(testDB.DB)
	older := newTestRun(t, repo)
	time.Sleep(10 * time.Millisecond)
	newer := newTestRun(t, repo)

	runs, err := repo.ListRuns(1)

	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Expected limit to apply, got %d runs", len(runs))
	}
	if runs[0].ID != newer.ID {
		t.Errorf("Expected newest run %s first, got %s (older %s)", newer.ID, runs[0].ID, older.ID)
	}
}

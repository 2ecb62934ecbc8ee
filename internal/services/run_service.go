package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/adyen/storefront-e2e/internal/steps"
)

// RunRepository defines the interface for run history persistence
type RunRepository interface {
	CreateRun(run *models.Run) error
	GetRun(id string) (*models.Run, error)
	UpdateRun(run *models.Run) error
	ListRuns(limit int) ([]*models.Run, error)
	CreateScenarioResult(result *models.ScenarioResult) error
	ListScenarioResults(runID string) ([]*models.ScenarioResult, error)
}

// RunService handles the lifecycle of recorded suite runs
type RunService interface {
	StartRun(baseURL, driver, tags string) (*models.Run, error)
	RecordScenario(run *models.Run, name, uri string, stepErr error, duration time.Duration) error
	FinishRun(run *models.Run, suiteStatus int) error
	AbortRun(run *models.Run) error
	GetRun(id string) (*models.Run, []*models.ScenarioResult, error)
	RecentRuns(limit int) ([]*models.Run, error)
}

// DefaultHistoryLimit is used when RecentRuns is asked for a non-positive limit
const DefaultHistoryLimit = 20

// RunServiceImpl implements RunService
type RunServiceImpl struct {
	runRepo RunRepository
}

// NewRunService creates a new run service
func NewRunService(runRepo RunRepository) RunService {
	return &RunServiceImpl{
		runRepo: runRepo,
	}
}

// StartRun creates and persists a running run
func (s *RunServiceImpl) StartRun(baseURL, driver, tags string) (*models.Run, error) {
	run, err := models.NewRun(baseURL, driver, tags)
	if err != nil {
		return nil, fmt.Errorf("invalid run: %w", err)
	}

	if err := s.runRepo.CreateRun(run); err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}

	return run, nil
}

// RecordScenario stores a scenario result and the run's updated counters
func (s *RunServiceImpl) RecordScenario(run *models.Run, name, uri string, stepErr error, duration time.Duration) error {
	result, err := models.NewScenarioResult(run.ID, name, uri, stepErr, duration)
	if err != nil {
		return fmt.Errorf("invalid scenario result: %w", err)
	}

	if err := run.Record(result); err != nil {
		return fmt.Errorf("cannot record scenario: %w", err)
	}

	if err := s.runRepo.CreateScenarioResult(result); err != nil {
		return fmt.Errorf("failed to record scenario: %w", err)
	}

	if err := s.runRepo.UpdateRun(run); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return nil
}

// FinishRun closes the run from the godog exit status
func (s *RunServiceImpl) FinishRun(run *models.Run, suiteStatus int) error {
	if err := run.Finish(suiteStatus); err != nil {
		return fmt.Errorf("cannot finish run: %w", err)
	}

	if err := s.runRepo.UpdateRun(run); err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	return nil
}

// AbortRun marks an interrupted run
func (s *RunServiceImpl) AbortRun(run *models.Run) error {
	if err := run.Abort(); err != nil {
		return fmt.Errorf("cannot abort run: %w", err)
	}

	if err := s.runRepo.UpdateRun(run); err != nil {
		return fmt.Errorf("failed to abort run: %w", err)
	}

	return nil
}

// GetRun retrieves a run with its scenario results
func (s *RunServiceImpl) GetRun(id string) (*models.Run, []*models.ScenarioResult, error) {
	run, err := s.runRepo.GetRun(id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get run: %w", err)
	}

	results, err := s.runRepo.ListScenarioResults(id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get scenario results: %w", err)
	}

	return run, results, nil
}

// RecentRuns lists the newest runs
func (s *RunServiceImpl) RecentRuns(limit int) ([]*models.Run, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	runs, err := s.runRepo.ListRuns(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	return runs, nil
}

// Recorder feeds scenario results from the step layer into a recorded run
type Recorder struct {
	service RunService

	mu  sync.Mutex
	run *models.Run
}

// NewRecorder returns a steps.Recorder bound to run
func NewRecorder(service RunService, run *models.Run) *Recorder {
	return &Recorder{service: service, run: run}
}

// RecordScenario implements steps.Recorder
func (r *Recorder) RecordScenario(_ context.Context, result steps.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.service.RecordScenario(r.run, result.Name, result.URI, result.Err, result.Duration)
}

// Finish closes the bound run
func (r *Recorder) Finish(suiteStatus int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.service.FinishRun(r.run, suiteStatus)
}

// Abort marks the bound run interrupted
func (r *Recorder) Abort() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.service.AbortRun(r.run)
}

// Run returns the bound run
func (r *Recorder) Run() *models.Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.run
}

var _ steps.Recorder = (*Recorder)(nil)

package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunStatus represents valid suite run states
type RunStatus string

// Run statuses
const (
	RunStatusRunning RunStatus = "running"
	RunStatusPassed  RunStatus = "passed"
	RunStatusFailed  RunStatus = "failed"
	RunStatusAborted RunStatus = "aborted"
)

// ScenarioStatus is the outcome of a single scenario
type ScenarioStatus string

// Scenario statuses
const (
	ScenarioStatusPassed ScenarioStatus = "passed"
	ScenarioStatusFailed ScenarioStatus = "failed"
)

// Run is one execution of the feature suite against a storefront
type Run struct {
	ID         string
	BaseURL    string
	Driver     string
	Tags       string
	Status     RunStatus
	Passed     int
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
}

// ScenarioResult is the recorded outcome of one scenario within a run
type ScenarioResult struct {
	ID        string
	RunID     string
	Name      string
	URI       string
	Status    ScenarioStatus
	Error     string
	Duration  time.Duration
	CreatedAt time.Time
}

// Domain errors
var (
	ErrInvalidBaseURL          = errors.New("base URL cannot be empty")
	ErrInvalidDriver           = errors.New("browser driver cannot be empty")
	ErrInvalidScenarioName     = errors.New("scenario name cannot be empty")
	ErrInvalidStatusTransition = errors.New("invalid run status transition")
	ErrRunMismatch             = errors.New("scenario result belongs to another run")
)

// NewRun starts a run record with validation
func NewRun(baseURL, driver, tags string) (*Run, error) {
	if baseURL == "" {
		return nil, ErrInvalidBaseURL
	}
	if driver == "" {
		return nil, ErrInvalidDriver
	}

	return &Run{
		ID:        uuid.New().String(),
		BaseURL:   baseURL,
		Driver:    driver,
		Tags:      tags,
		Status:    RunStatusRunning,
		StartedAt: time.Now(),
	}, nil
}

// NewScenarioResult builds the result of a scenario. A nil stepErr is a pass.
func NewScenarioResult(runID, name, uri string, stepErr error, duration time.Duration) (*ScenarioResult, error) {
	if name == "" {
		return nil, ErrInvalidScenarioName
	}

	result := &ScenarioResult{
		ID:        uuid.New().String(),
		RunID:     runID,
		Name:      name,
		URI:       uri,
		Status:    ScenarioStatusPassed,
		Duration:  duration,
		CreatedAt: time.Now(),
	}
	if stepErr != nil {
		result.Status = ScenarioStatusFailed
		result.Error = stepErr.Error()
	}
	return result, nil
}

// Record counts a scenario result against a running run
func (r *Run) Record(result *ScenarioResult) error {
	if r.Status != RunStatusRunning {
		return fmt.Errorf("%w: cannot record a scenario on a %s run", ErrInvalidStatusTransition, r.Status)
	}
	if result.RunID != r.ID {
		return ErrRunMismatch
	}

	if result.Status == ScenarioStatusFailed {
		r.Failed++
	} else {
		r.Passed++
	}
	return nil
}

// Finish closes the run from the suite exit status. Zero is a pass.
func (r *Run) Finish(suiteStatus int) error {
	if r.Status != RunStatusRunning {
		return fmt.Errorf("%w: cannot finish a %s run", ErrInvalidStatusTransition, r.Status)
	}

	r.Status = RunStatusPassed
	if suiteStatus != 0 || r.Failed > 0 {
		r.Status = RunStatusFailed
	}
	r.FinishedAt = time.Now()
	return nil
}

// Abort marks a run interrupted before the suite finished
func (r *Run) Abort() error {
	if r.Status != RunStatusRunning {
		return fmt.Errorf("%w: cannot abort a %s run", ErrInvalidStatusTransition, r.Status)
	}

	r.Status = RunStatusAborted
	r.FinishedAt = time.Now()
	return nil
}

// IsRunning returns true while the suite is still executing
func (r *Run) IsRunning() bool {
	return r.Status == RunStatusRunning
}

// IsPassed returns true if the run finished without failures
func (r *Run) IsPassed() bool {
	return r.Status == RunStatusPassed
}

// Total returns the number of recorded scenarios
func (r *Run) Total() int {
	return r.Passed + r.Failed
}

// Duration returns the wall time of a finished run, or zero while running
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary returns a one-line description for listings
func (r *Run) Summary() string {
	return fmt.Sprintf("%s %-8s %d/%d passed %s", r.StartedAt.Format(time.RFC3339), r.Status, r.Passed, r.Total(), r.BaseURL)
}

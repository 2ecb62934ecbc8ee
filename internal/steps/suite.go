package steps

import (
	"fmt"

	"github.com/cucumber/godog"
	"go.uber.org/zap"
)

// InitializeScenario returns the godog scenario initializer. The catalogue is
// checked once up front so a duplicate or malformed expression fails the run
// before any browser work.
func InitializeScenario(deps Dependencies) (func(*godog.ScenarioContext), error) {
	if _, err := Catalogue(); err != nil {
		return nil, fmt.Errorf("invalid step catalogue: %w", err)
	}
	return scenarioInitializer(deps, (*Scenario).Register), nil
}

// scenarioInitializer builds a fresh world per scenario. A registration
// failure is logged since godog gives the initializer no error return.
func scenarioInitializer(deps Dependencies, register func(*Scenario, *godog.ScenarioContext) error) func(*godog.ScenarioContext) {
	return func(sc *godog.ScenarioContext) {
		s := NewScenario(deps)
		if err := register(s, sc); err != nil {
			s.deps.Logger.Error("failed to register steps", zap.Error(err))
		}
	}
}

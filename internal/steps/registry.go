package steps

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrDuplicateStep is returned when two definitions share an expression
var ErrDuplicateStep = errors.New("duplicate step expression")

// registrar is the part of godog.ScenarioContext the registry needs
type registrar interface {
	Step(expr, stepFunc interface{})
}

// Registry forwards step definitions to godog and rejects duplicates, so a
// phrase is bound exactly once however many feature areas use it.
type Registry struct {
	target registrar
	exprs  []*regexp.Regexp
	seen   map[string]bool
	errs   []error
}

// NewRegistry forwards to target. A nil target only records expressions.
func NewRegistry(target registrar) *Registry {
	return &Registry{target: target, seen: make(map[string]bool)}
}

// Step binds fn to the anchored regular expression expr
func (r *Registry) Step(expr string, fn interface{}) {
	if r.seen[expr] {
		r.errs = append(r.errs, fmt.Errorf("%w: %s", ErrDuplicateStep, expr))
		return
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid step expression %q: %w", expr, err))
		return
	}
	r.seen[expr] = true
	r.exprs = append(r.exprs, re)
	if r.target != nil {
		r.target.Step(re, fn)
	}
}

// Err joins every registration failure
func (r *Registry) Err() error {
	return errors.Join(r.errs...)
}

// Expressions lists the bound expressions in registration order
func (r *Registry) Expressions() []string {
	out := make([]string, len(r.exprs))
	for i, re := range r.exprs {
		out[i] = re.String()
	}
	return out
}

// Matches lists every expression that matches text
func (r *Registry) Matches(text string) []string {
	var out []string
	for _, re := range r.exprs {
		if re.MatchString(text) {
			out = append(out, re.String())
		}
	}
	return out
}

// Catalogue builds the full step registry without a browser
func Catalogue() (*Registry, error) {
	r := NewRegistry(nil)
	NewScenario(Dependencies{}).RegisterSteps(r)
	return r, r.Err()
}

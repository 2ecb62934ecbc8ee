// Package expect turns browser queries into assertions that poll until the
// condition holds or a timeout elapses.
package expect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/adyen/storefront-e2e/internal/browser"
)

// Defaults match the browser automation tool the suite was first written for.
const (
	DefaultTimeout  = 4 * time.Second
	DefaultInterval = 100 * time.Millisecond
)

// Check evaluates a condition once. It returns whether the condition holds
// and a rendering of what was observed. A non-nil error is treated as a
// transient miss and polling continues.
type Check func(ctx context.Context, page browser.Page) (ok bool, actual string, err error)

// Condition is a named, repeatable check
type Condition struct {
	Description string
	Check       Check
}

// TimeoutError reports a condition that never held
type TimeoutError struct {
	Condition string
	Actual    string
	Timeout   time.Duration
	Err       error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("timed out after %s waiting for %s", e.Timeout, e.Condition)
	if e.Actual != "" {
		msg += fmt.Sprintf(" (last observed: %s)", e.Actual)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// Asserter polls conditions against one page
type Asserter struct {
	page     browser.Page
	timeout  time.Duration
	interval time.Duration
}

// New creates an asserter. Zero durations fall back to the defaults.
func New(page browser.Page, timeout, interval time.Duration) *Asserter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Asserter{page: page, timeout: timeout, interval: interval}
}

// Within returns a copy of the asserter using a different timeout
func (a *Asserter) Within(timeout time.Duration) *Asserter {
	cp := *a
	cp.timeout = timeout
	return &cp
}

// Timeout returns the asserter's timeout
func (a *Asserter) Timeout() time.Duration {
	return a.timeout
}

// Page returns the page the asserter polls
func (a *Asserter) Page() browser.Page {
	return a.page
}

// That waits for each condition in order and stops at the first failure
func (a *Asserter) That(ctx context.Context, conds ...Condition) error {
	for _, c := range conds {
		if err := a.poll(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// Holds evaluates a condition exactly once, without waiting
func (a *Asserter) Holds(ctx context.Context, c Condition) (bool, error) {
	ok, _, err := c.Check(ctx, a.page)
	return ok, err
}

func (a *Asserter) poll(ctx context.Context, c Condition) error {
	var (
		lastActual string
		lastErr    error
	)

	err := wait.PollUntilContextTimeout(ctx, a.interval, a.timeout, true, func(ctx context.Context) (bool, error) {
		ok, actual, err := c.Check(ctx, a.page)
		lastActual, lastErr = actual, err
		if err != nil {
			return false, nil
		}
		return ok, nil
	})
	if err == nil {
		return nil
	}

	if wait.Interrupted(err) && ctx.Err() == nil {
		return &TimeoutError{
			Condition: c.Description,
			Actual:    lastActual,
			Timeout:   a.timeout,
			Err:       lastErr,
		}
	}
	return fmt.Errorf("waiting for %s: %w", c.Description, errors.Join(err, lastErr))
}

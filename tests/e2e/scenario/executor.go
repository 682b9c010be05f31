package scenario

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds. Drivers wrap their errors with one of these so the
// executor and tests can classify a failure with errors.Is.
var (
	ErrElementNotFound = errors.New("element not found")
	ErrNavigation      = errors.New("navigation failed")
	ErrAssertion       = errors.New("assertion failed")
	ErrSession         = errors.New("browser session failed")
)

// Driver is the browser surface a scenario needs. Every lookup is bounded
// by the driver's implicit wait.
type Driver interface {
	Navigate(url string) error
	Fill(target Locator, value string) error
	Submit(target Locator) error
	Click(target Locator) error
	CurrentURL() string
	WaitForURL(match func(url string) bool) error
	WaitVisible(target Locator) error
	Text(target Locator) (string, error)
}

// State is the position of a scenario in its linear lifecycle.
type State int

const (
	NotStarted State = iota
	Navigated
	FormFilled
	Submitted
	Passed
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case Navigated:
		return "Navigated"
	case FormFilled:
		return "FormFilled"
	case Submitted:
		return "Submitted"
	case Passed:
		return "Asserted(Pass)"
	case Failed:
		return "Asserted(Fail)"
	}
	return "Unknown"
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool { return s == Passed || s == Failed }

// Result is the outcome of one scenario run.
type Result struct {
	Scenario string
	State    State
	// Reached is the last non-terminal state before the run ended.
	Reached State
	Err     error
}

// Passed reports whether the scenario's assertion held.
func (r Result) Passed() bool { return r.State == Passed }

// Executor runs scenarios one at a time against a single driver.
type Executor struct {
	driver Driver
	logf   func(format string, args ...any)
}

// NewExecutor returns an executor bound to d. logf may be nil.
func NewExecutor(d Driver, logf func(format string, args ...any)) *Executor {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Executor{driver: d, logf: logf}
}

// Run executes s to completion. Any error aborts the scenario; there are no
// retries.
func (e *Executor) Run(s Scenario) Result {
	res := Result{Scenario: s.Name, State: NotStarted, Reached: NotStarted}

	fail := func(err error) Result {
		res.Reached = res.State
		res.State = Failed
		res.Err = err
		e.logf("scenario %q failed after %s: %v", s.Name, res.Reached, err)
		return res
	}
	advance := func(next State) {
		res.State = next
		res.Reached = next
	}

	for _, step := range s.Setup {
		if err := e.do(step); err != nil {
			return fail(fmt.Errorf("setup: %s: %w", step, err))
		}
	}

	if err := e.driver.Navigate(s.URL); err != nil {
		return fail(fmt.Errorf("navigate %s: %w", s.URL, err))
	}
	advance(Navigated)

	for _, field := range s.Fields {
		if err := e.do(field); err != nil {
			return fail(fmt.Errorf("%s: %w", field, err))
		}
	}
	advance(FormFilled)

	if err := e.do(s.Action); err != nil {
		return fail(fmt.Errorf("%s: %w", s.Action, err))
	}
	advance(Submitted)

	if err := e.assert(s.Expect); err != nil {
		return fail(err)
	}
	res.State = Passed
	e.logf("scenario %q passed: %s", s.Name, s.Expect)
	return res
}

func (e *Executor) do(step Step) error {
	switch step.Kind {
	case StepNavigate:
		return e.driver.Navigate(step.URL)
	case StepFill:
		return e.driver.Fill(step.Target, step.Value)
	case StepSubmit:
		return e.driver.Submit(step.Target)
	case StepClick:
		return e.driver.Click(step.Target)
	}
	return fmt.Errorf("unsupported step kind %d", step.Kind)
}

func (e *Executor) assert(o Outcome) error {
	switch o.Kind {
	case URLContains:
		err := e.driver.WaitForURL(func(url string) bool { return strings.Contains(url, o.Substring) })
		if err != nil {
			return fmt.Errorf("%w: url %q does not contain %q", ErrAssertion, e.driver.CurrentURL(), o.Substring)
		}
		return nil

	case URLNotContains:
		err := e.driver.WaitForURL(func(url string) bool { return !strings.Contains(url, o.Substring) })
		if err != nil {
			return fmt.Errorf("%w: url %q still contains %q", ErrAssertion, e.driver.CurrentURL(), o.Substring)
		}
		return nil

	case ErrorVisible:
		if err := e.driver.WaitVisible(o.Element); err != nil {
			return fmt.Errorf("expected %s to be visible: %w", o.Element, err)
		}
		return nil

	case ErrorContains:
		text, err := e.driver.Text(o.Element)
		if err != nil {
			return fmt.Errorf("read %s: %w", o.Element, err)
		}
		if !containsText(text, o.Substring, o.IgnoreCase) {
			return fmt.Errorf("%w: %s text %q does not contain %q", ErrAssertion, o.Element, text, o.Substring)
		}
		return nil
	}
	return fmt.Errorf("unsupported outcome kind %d", o.Kind)
}

func containsText(text, sub string, ignoreCase bool) bool {
	if ignoreCase {
		return strings.Contains(strings.ToLower(text), strings.ToLower(sub))
	}
	return strings.Contains(text, sub)
}

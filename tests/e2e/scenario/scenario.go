// Package scenario models the ordered browser scenarios of the inventory
// regression suite and executes them against a Driver.
package scenario

import (
	"fmt"
	"sort"
	"strconv"
)

// Strategy is how a Locator finds its element.
type Strategy string

const (
	ByID       Strategy = "id"
	ByName     Strategy = "name"
	ByTag      Strategy = "tag"
	ByLinkText Strategy = "linkText"
	ByCSS      Strategy = "css"
)

// Locator identifies one element on the page.
type Locator struct {
	By    Strategy
	Value string
}

func ID(id string) Locator         { return Locator{By: ByID, Value: id} }
func Name(name string) Locator     { return Locator{By: ByName, Value: name} }
func Tag(tag string) Locator       { return Locator{By: ByTag, Value: tag} }
func LinkText(text string) Locator { return Locator{By: ByLinkText, Value: text} }
func CSS(selector string) Locator  { return Locator{By: ByCSS, Value: selector} }

// Selector renders the locator as a browser selector. Link text matches the
// full visible text exactly.
func (l Locator) Selector() string {
	switch l.By {
	case ByID:
		return "[id=" + strconv.Quote(l.Value) + "]"
	case ByName:
		return "[name=" + strconv.Quote(l.Value) + "]"
	case ByLinkText:
		return "a:text-is(" + strconv.Quote(l.Value) + ")"
	default:
		return l.Value
	}
}

func (l Locator) String() string {
	return string(l.By) + "=" + l.Value
}

// StepKind enumerates the browser actions a scenario can perform.
type StepKind int

const (
	StepNavigate StepKind = iota
	StepFill
	StepSubmit
	StepClick
)

func (k StepKind) String() string {
	switch k {
	case StepNavigate:
		return "navigate"
	case StepFill:
		return "fill"
	case StepSubmit:
		return "submit"
	case StepClick:
		return "click"
	}
	return "unknown"
}

// Step is a single browser action.
type Step struct {
	Kind   StepKind
	URL    string
	Target Locator
	Value  string
}

func Navigate(url string) Step               { return Step{Kind: StepNavigate, URL: url} }
func Fill(target Locator, value string) Step { return Step{Kind: StepFill, Target: target, Value: value} }
func Submit(target Locator) Step             { return Step{Kind: StepSubmit, Target: target} }
func Click(target Locator) Step              { return Step{Kind: StepClick, Target: target} }

func (s Step) String() string {
	switch s.Kind {
	case StepNavigate:
		return fmt.Sprintf("navigate %s", s.URL)
	case StepFill:
		return fmt.Sprintf("fill %s with %q", s.Target, s.Value)
	default:
		return fmt.Sprintf("%s %s", s.Kind, s.Target)
	}
}

// OutcomeKind enumerates the single assertion a scenario ends with.
type OutcomeKind int

const (
	URLContains OutcomeKind = iota
	URLNotContains
	ErrorVisible
	ErrorContains
)

// Outcome is the expected page state after the scenario's action.
type Outcome struct {
	Kind       OutcomeKind
	Substring  string
	Element    Locator
	IgnoreCase bool
}

func ExpectURLContains(sub string) Outcome {
	return Outcome{Kind: URLContains, Substring: sub}
}

func ExpectURLNotContains(sub string) Outcome {
	return Outcome{Kind: URLNotContains, Substring: sub}
}

func ExpectErrorVisible(element Locator) Outcome {
	return Outcome{Kind: ErrorVisible, Element: element}
}

// ExpectErrorContains expects element to become visible with text
// containing sub.
func ExpectErrorContains(element Locator, sub string, ignoreCase bool) Outcome {
	return Outcome{Kind: ErrorContains, Element: element, Substring: sub, IgnoreCase: ignoreCase}
}

func (o Outcome) String() string {
	switch o.Kind {
	case URLContains:
		return fmt.Sprintf("url contains %q", o.Substring)
	case URLNotContains:
		return fmt.Sprintf("url does not contain %q", o.Substring)
	case ErrorVisible:
		return fmt.Sprintf("%s is visible", o.Element)
	case ErrorContains:
		if o.IgnoreCase {
			return fmt.Sprintf("%s text contains %q (ignoring case)", o.Element, o.Substring)
		}
		return fmt.Sprintf("%s text contains %q", o.Element, o.Substring)
	}
	return "unknown outcome"
}

// Scenario is one self-contained browser test case. Setup holds private
// preparation steps (for example a login) run before the scenario's own
// navigation.
type Scenario struct {
	Order  int
	Name   string
	Setup  []Step
	URL    string
	Fields []Step
	Action Step
	Expect Outcome
}

// Validate reports structural problems that would make the scenario
// impossible to execute.
func (s Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario %d has no name", s.Order)
	}
	if s.URL == "" {
		return fmt.Errorf("scenario %q has no url", s.Name)
	}
	for _, f := range s.Fields {
		if f.Kind != StepFill {
			return fmt.Errorf("scenario %q: field step %s is not a fill", s.Name, f)
		}
	}
	if s.Action.Kind != StepSubmit && s.Action.Kind != StepClick {
		return fmt.Errorf("scenario %q: action must be submit or click, got %s", s.Name, s.Action.Kind)
	}
	return nil
}

// Ordered returns a copy of scenarios sorted by Order. Duplicate orders are
// rejected because the declared order is part of the suite contract.
func Ordered(scenarios []Scenario) ([]Scenario, error) {
	out := make([]Scenario, len(scenarios))
	copy(out, scenarios)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })

	seen := make(map[int]string, len(out))
	for _, s := range out {
		if prev, ok := seen[s.Order]; ok {
			return nil, fmt.Errorf("scenarios %q and %q share order %d", prev, s.Name, s.Order)
		}
		seen[s.Order] = s.Name
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

package helpers

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/TayyabaHussain58/InventoryApp/tests/e2e/scenario"
)

// dispatchSubmitScript fires a cancelable submit event on the form
// enclosing the element, the first half of WebDriver's form submit. It
// returns false when a handler prevented the default action.
const dispatchSubmitScript = `(el) => {
	const form = el.tagName === 'FORM' ? el : (el.form || el.closest('form'));
	if (!form) {
		throw new Error('element is not inside a form');
	}
	const event = new Event('submit', { bubbles: true, cancelable: true });
	return form.dispatchEvent(event);
}`

// nativeSubmitScript submits without constraint validation, so the
// server's validation is what gets exercised.
const nativeSubmitScript = `(el) => {
	const form = el.tagName === 'FORM' ? el : (el.form || el.closest('form'));
	form.submit();
}`

// PlaywrightDriver implements scenario.Driver on a playwright page.
type PlaywrightDriver struct {
	page playwright.Page
	wait time.Duration
}

var _ scenario.Driver = (*PlaywrightDriver)(nil)

// NewPlaywrightDriver binds a driver to page. Every lookup waits up to wait.
func NewPlaywrightDriver(page playwright.Page, wait time.Duration) *PlaywrightDriver {
	return &PlaywrightDriver{page: page, wait: wait}
}

func (d *PlaywrightDriver) timeout() *float64 {
	return playwright.Float(float64(d.wait.Milliseconds()))
}

func (d *PlaywrightDriver) locate(target scenario.Locator) playwright.Locator {
	return d.page.Locator(target.Selector()).First()
}

// find waits for target to be attached to the DOM.
func (d *PlaywrightDriver) find(target scenario.Locator) (playwright.Locator, error) {
	loc := d.locate(target)
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: d.timeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", scenario.ErrElementNotFound, target, err)
	}
	return loc, nil
}

func (d *PlaywrightDriver) Navigate(url string) error {
	if _, err := d.page.Goto(url); err != nil {
		return fmt.Errorf("%w: %s: %v", scenario.ErrNavigation, url, err)
	}
	return nil
}

func (d *PlaywrightDriver) Fill(target scenario.Locator, value string) error {
	loc, err := d.find(target)
	if err != nil {
		return err
	}
	if err := loc.Fill(value); err != nil {
		return fmt.Errorf("fill %s: %w", target, err)
	}
	return nil
}

// Submit submits the form enclosing target. When no handler takes over the
// submit event the form is posted natively and Submit waits for the
// resulting navigation.
func (d *PlaywrightDriver) Submit(target scenario.Locator) error {
	loc, err := d.find(target)
	if err != nil {
		return err
	}

	result, err := loc.Evaluate(dispatchSubmitScript, nil)
	if err != nil {
		return fmt.Errorf("submit %s: %w", target, err)
	}
	if proceed, _ := result.(bool); !proceed {
		return nil
	}

	_, err = d.page.ExpectNavigation(func() error {
		_, err := loc.Evaluate(nativeSubmitScript, nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("submit %s: %w", target, err)
	}
	return nil
}

func (d *PlaywrightDriver) Click(target scenario.Locator) error {
	loc, err := d.find(target)
	if err != nil {
		return err
	}
	if err := loc.Click(); err != nil {
		return fmt.Errorf("click %s: %w", target, err)
	}
	return nil
}

func (d *PlaywrightDriver) CurrentURL() string {
	return d.page.URL()
}

func (d *PlaywrightDriver) WaitForURL(match func(url string) bool) error {
	return d.page.WaitForURL(match, playwright.PageWaitForURLOptions{Timeout: d.timeout()})
}

func (d *PlaywrightDriver) WaitVisible(target scenario.Locator) error {
	err := d.locate(target).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: d.timeout(),
	})
	if err != nil {
		return fmt.Errorf("%w: %s not visible: %v", scenario.ErrElementNotFound, target, err)
	}
	return nil
}

func (d *PlaywrightDriver) Text(target scenario.Locator) (string, error) {
	if err := d.WaitVisible(target); err != nil {
		return "", err
	}
	text, err := d.locate(target).InnerText()
	if err != nil {
		return "", fmt.Errorf("read text of %s: %w", target, err)
	}
	return text, nil
}
